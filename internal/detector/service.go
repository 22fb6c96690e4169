package detector

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/bunshin/internal/logging"
)

// Service modes understood by mediapipe_service.py.
const (
	modeHands   = "hands"
	modeSegment = "segment"
)

// service owns one MediaPipe Python subprocess.
// Frames are written to stdin as a 4-byte big-endian length followed by JPEG bytes;
// the process answers each frame with a single JSON line on stdout.
type service struct {
	mode      string
	config    Config
	log       *slog.Logger
	script    string
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	mu        sync.Mutex
	started   bool
	lastUsed  time.Time
	idleTimer *time.Timer
}

func newService(mode string, config Config) (*service, error) {
	script := findMediaPipeScript()
	if script == "" {
		return nil, ErrServiceNotFound
	}
	return &service{
		mode:   mode,
		config: config,
		script: script,
		log:    serviceLogger(mode),
	}, nil
}

func serviceLogger(mode string) *slog.Logger {
	return logging.WithComponent("mediapipe").With("mode", mode)
}

// request sends one frame and returns the raw JSON reply line.
func (s *service) request(frame *gocv.Mat) ([]byte, error) {
	if frame == nil || frame.Empty() {
		return nil, fmt.Errorf("empty frame")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureStarted(); err != nil {
		return nil, err
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()

	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))

	if _, err := s.stdin.Write(length); err != nil {
		s.shutdown()
		return nil, fmt.Errorf("write length: %w", err)
	}
	if _, err := s.stdin.Write(data); err != nil {
		s.shutdown()
		return nil, fmt.Errorf("write data: %w", err)
	}

	line, err := s.stdout.ReadBytes('\n')
	if err != nil {
		s.shutdown()
		return nil, fmt.Errorf("read response: %w", err)
	}

	s.lastUsed = time.Now()
	s.resetIdleTimer()

	return line, nil
}

func (s *service) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdown()
}

func (s *service) ensureStarted() error {
	if s.started {
		return nil
	}

	pythonPath := findVenvPython()
	if pythonPath == "" {
		pythonPath = "python3"
	}

	s.cmd = exec.Command(pythonPath, s.script,
		"--mode", s.mode,
		"--max-hands", strconv.Itoa(s.config.MaxHands),
		"--min-confidence", strconv.FormatFloat(s.config.MinConfidence, 'f', 2, 64),
		"--min-tracking", strconv.FormatFloat(s.config.MinTrackingConf, 'f', 2, 64),
	)

	stdin, err := s.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}

	stdout, err := s.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	s.cmd.Stderr = os.Stderr

	if err := s.cmd.Start(); err != nil {
		return fmt.Errorf("start mediapipe %s service: %w", s.mode, err)
	}

	s.log.Debug("MediaPipe service started", "pid", s.cmd.Process.Pid)

	s.stdin = stdin
	s.stdout = bufio.NewReader(stdout)
	s.started = true
	s.lastUsed = time.Now()

	return nil
}

func (s *service) shutdown() error {
	if !s.started {
		return nil
	}

	if s.idleTimer != nil {
		s.idleTimer.Stop()
		s.idleTimer = nil
	}

	if s.stdin != nil {
		s.stdin.Close()
	}

	err := s.cmd.Wait()
	s.started = false
	s.cmd = nil
	s.stdin = nil
	s.stdout = nil

	return err
}

func (s *service) resetIdleTimer() {
	if s.config.IdleShutdown <= 0 {
		return
	}
	if s.idleTimer != nil {
		s.idleTimer.Stop()
	}
	s.idleTimer = time.AfterFunc(s.config.IdleShutdown, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if err := s.shutdown(); err != nil {
			s.log.Debug("MediaPipe service idle shutdown", "error", err)
		}
	})
}

func findMediaPipeScript() string {
	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		"scripts/mediapipe_service.py",
		"../scripts/mediapipe_service.py",
		filepath.Join(execDir, "scripts/mediapipe_service.py"),
		filepath.Join(os.Getenv("HOME"), ".bunshin/scripts/mediapipe_service.py"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

// findVenvPython looks for a Python interpreter in a virtual environment.
func findVenvPython() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
		"../../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".bunshin/venv/bin/python"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}
