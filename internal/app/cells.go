package app

import (
	"sync"

	"gocv.io/x/gocv"
)

// matCell holds the latest Mat written by one goroutine for readers on others.
// Writes replace the previous value; reads get a private clone.
type matCell struct {
	mu  sync.Mutex
	mat *gocv.Mat
}

// Store takes ownership of m and releases the value it replaces.
func (c *matCell) Store(m gocv.Mat) {
	c.mu.Lock()
	prev := c.mat
	c.mat = &m
	c.mu.Unlock()

	if prev != nil {
		prev.Close()
	}
}

// Load returns a clone of the current value. ok is false while the cell is empty.
func (c *matCell) Load() (gocv.Mat, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mat == nil || c.mat.Empty() {
		return gocv.Mat{}, false
	}
	return c.mat.Clone(), true
}

// Clear empties the cell.
func (c *matCell) Clear() {
	c.mu.Lock()
	prev := c.mat
	c.mat = nil
	c.mu.Unlock()

	if prev != nil {
		prev.Close()
	}
}
