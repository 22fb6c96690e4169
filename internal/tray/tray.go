// Package tray provides the system tray menu that controls a running session.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"
)

// Controller is the part of a session the tray drives.
type Controller interface {
	SetEnabled(enabled bool)
	IsEnabled() bool
	Deactivate() bool
	Resize(width, height int)
}

// Viewport is a named surface size offered in the menu.
type Viewport struct {
	Name   string
	Width  int
	Height int
}

// DefaultViewports are the sizes offered when none are configured.
var DefaultViewports = []Viewport{
	{Name: "720p", Width: 1280, Height: 720},
	{Name: "1080p", Width: 1920, Height: 1080},
	{Name: "Square", Width: 720, Height: 720},
}

// Tray represents the system tray application.
type Tray struct {
	ctrl      Controller
	viewports []Viewport
	onQuit    func()
	mu        sync.RWMutex

	status string
	count  int

	// Menu items stored for later updates
	menuStatus *systray.MenuItem
	menuToggle *systray.MenuItem
	ready      bool
}

// New creates a tray for ctrl. A nil viewports list uses DefaultViewports.
func New(ctrl Controller, viewports []Viewport) *Tray {
	if viewports == nil {
		viewports = DefaultViewports
	}
	return &Tray{
		ctrl:      ctrl,
		viewports: viewports,
		status:    "idle",
	}
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray from outside the menu.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("Bunshin")
	systray.SetTooltip("Bunshin clone effect")

	t.mu.Lock()
	t.menuStatus = systray.AddMenuItem(StatusLine(t.status, t.count), "Current gesture and clone count")
	t.menuStatus.Disable()
	systray.AddSeparator()

	t.menuToggle = systray.AddMenuItem(toggleTitle(t.ctrl.IsEnabled()), "Pause or resume gesture tracking")
	t.ready = true
	t.mu.Unlock()

	menuRelease := systray.AddMenuItem("Release clones", "Dismiss every clone")
	systray.AddSeparator()

	menuViewport := systray.AddMenuItem("Viewport", "Surface size")
	presets := make([]*systray.MenuItem, len(t.viewports))
	for i, v := range t.viewports {
		presets[i] = menuViewport.AddSubMenuItem(fmt.Sprintf("%s (%dx%d)", v.Name, v.Width, v.Height), "")
	}
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Bunshin")

	for i, item := range presets {
		go func(i int, item *systray.MenuItem) {
			for range item.ClickedCh {
				t.handleViewport(i)
			}
		}(i, item)
	}

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuRelease.ClickedCh:
				t.handleRelease()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

// handleToggle flips the session between tracking and paused.
func (t *Tray) handleToggle() {
	enabled := !t.ctrl.IsEnabled()
	t.ctrl.SetEnabled(enabled)

	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
}

func (t *Tray) handleRelease() {
	t.ctrl.Deactivate()
}

func (t *Tray) handleViewport(i int) {
	if i < 0 || i >= len(t.viewports) {
		return
	}
	v := t.viewports[i]
	t.ctrl.Resize(v.Width, v.Height)
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetStatus updates the gesture status shown in the menu.
func (t *Tray) SetStatus(status string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = status
	t.refresh()
}

// SetCount updates the clone count shown in the menu.
func (t *Tray) SetCount(count int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.count = count
	t.refresh()
}

// Line returns the text of the status entry.
func (t *Tray) Line() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return StatusLine(t.status, t.count)
}

// refresh must be called with mu held.
func (t *Tray) refresh() {
	if !t.ready || t.menuStatus == nil {
		return
	}
	t.menuStatus.SetTitle(StatusLine(t.status, t.count))
}

// StatusLine formats the status entry.
func StatusLine(status string, count int) string {
	switch count {
	case 0:
		return "Status: " + status
	case 1:
		return "Status: " + status + " · 1 clone"
	default:
		return fmt.Sprintf("Status: %s · %d clones", status, count)
	}
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Tracking"
	}
	return "○ Paused"
}
