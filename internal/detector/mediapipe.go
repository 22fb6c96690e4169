package detector

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// MediaPipeDetector implements Detector using a Python MediaPipe subprocess.
type MediaPipeDetector struct {
	svc *service
}

// NewMediaPipeDetector creates a new MediaPipe hand detector.
// The Python process is started lazily on first detection.
func NewMediaPipeDetector(config Config) (*MediaPipeDetector, error) {
	svc, err := newService(modeHands, config)
	if err != nil {
		return nil, err
	}
	return &MediaPipeDetector{svc: svc}, nil
}

// Detect analyzes a frame and returns detected hand landmarks.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	line, err := d.svc.request(frame)
	if err != nil {
		return nil, err
	}
	return parseHands(line)
}

// Close shuts down the Python process.
func (d *MediaPipeDetector) Close() error {
	return d.svc.close()
}

// MediaPipeSegmenter implements Segmenter using the selfie segmentation model
// served by the same Python script.
type MediaPipeSegmenter struct {
	svc *service
}

// NewMediaPipeSegmenter creates a new MediaPipe person segmenter.
func NewMediaPipeSegmenter(config Config) (*MediaPipeSegmenter, error) {
	svc, err := newService(modeSegment, config)
	if err != nil {
		return nil, err
	}
	return &MediaPipeSegmenter{svc: svc}, nil
}

// Segment returns the person mask for frame, resized to the frame if needed.
func (s *MediaPipeSegmenter) Segment(frame *gocv.Mat) (gocv.Mat, error) {
	line, err := s.svc.request(frame)
	if err != nil {
		return gocv.NewMat(), err
	}

	mask, err := decodeMask(line)
	if err != nil {
		return gocv.NewMat(), err
	}

	if mask.Cols() != frame.Cols() || mask.Rows() != frame.Rows() {
		resized := gocv.NewMat()
		gocv.Resize(mask, &resized, image.Pt(frame.Cols(), frame.Rows()), 0, 0, gocv.InterpolationLinear)
		mask.Close()
		return resized, nil
	}
	return mask, nil
}

// Close shuts down the Python process.
func (s *MediaPipeSegmenter) Close() error {
	return s.svc.close()
}

// jsonHand represents the JSON structure from the Python service.
type jsonHand struct {
	Points     []jsonPoint `json:"points"`
	Handedness string      `json:"handedness"`
	Score      float64     `json:"score"`
}

type jsonPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (h jsonHand) toHandLandmarks() HandLandmarks {
	lm := HandLandmarks{
		Handedness: h.Handedness,
		Score:      h.Score,
	}

	for i := 0; i < NumLandmarks && i < len(h.Points); i++ {
		lm.Points[i] = Point3D{
			X: h.Points[i].X,
			Y: h.Points[i].Y,
			Z: h.Points[i].Z,
		}
	}

	return lm
}

func parseHands(line []byte) ([]HandLandmarks, error) {
	var response struct {
		Hands []jsonHand `json:"hands"`
		Error string     `json:"error"`
	}
	if err := json.Unmarshal(line, &response); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if response.Error != "" {
		return nil, fmt.Errorf("mediapipe: %s", response.Error)
	}

	result := make([]HandLandmarks, 0, len(response.Hands))
	for _, h := range response.Hands {
		if len(h.Points) < NumLandmarks {
			continue
		}
		result = append(result, h.toHandLandmarks())
	}
	return result, nil
}

func decodeMask(line []byte) (gocv.Mat, error) {
	var response struct {
		Mask  string `json:"mask"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(line, &response); err != nil {
		return gocv.NewMat(), fmt.Errorf("parse response: %w", err)
	}
	if response.Error != "" {
		return gocv.NewMat(), fmt.Errorf("mediapipe: %s", response.Error)
	}
	if response.Mask == "" {
		return gocv.NewMat(), fmt.Errorf("response has no mask")
	}

	data, err := base64.StdEncoding.DecodeString(response.Mask)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("decode mask: %w", err)
	}

	mask, err := gocv.IMDecode(data, gocv.IMReadGrayScale)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("decode mask image: %w", err)
	}
	if mask.Empty() {
		mask.Close()
		return gocv.NewMat(), fmt.Errorf("mask image is empty")
	}
	return mask, nil
}
