package window

import (
	"errors"
	"time"

	"github.com/bitcoin-os/shell/internal/shared/id"
)

var (
	ErrWindowNotFound  = errors.New("window not found")
	ErrInvalidViewport = errors.New("invalid viewport")
	ErrInvalidPointer  = errors.New("invalid pointer event")
)

// Sandbox is the iframe sandbox policy for hosted apps.
const Sandbox = "allow-scripts allow-same-origin allow-forms allow-popups allow-modals"

// Mode is the window chrome state.
type Mode string

const (
	ModeNormal    Mode = "normal"
	ModeMaximized Mode = "maximized"
	ModeMinimized Mode = "minimized"
)

// Window is one hosted app window.
type Window struct {
	ID          id.WindowID `json:"id"`
	AppID       string      `json:"app_id"`
	AppName     string      `json:"app_name"`
	URL         string      `json:"url"`
	Frame       Frame       `json:"frame"`
	NormalFrame Frame       `json:"normal_frame"`
	Mode        Mode        `json:"mode"`
	Active      bool        `json:"is_active"`
	Ready       bool        `json:"ready"`
	Embeddable  bool        `json:"embeddable"`
	FallbackURL string      `json:"fallback_url,omitempty"`
	Sandbox     string      `json:"sandbox"`
	OpenedAt    time.Time   `json:"opened_at"`

	// restoreMode is the mode to return to when un-minimizing.
	restoreMode Mode
	pointer     pointerState
}

// Minimized reports whether the window is hidden.
func (w *Window) Minimized() bool { return w.Mode == ModeMinimized }

// Maximized reports whether the window fills the viewport.
func (w *Window) Maximized() bool { return w.Mode == ModeMaximized }

// Dragging reports whether a header drag is in progress.
func (w *Window) Dragging() bool { return w.pointer.phase == phaseDragging }

// Resizing reports whether a resize is in progress.
func (w *Window) Resizing() bool { return w.pointer.phase == phaseResizing }

// Maximize saves the normal frame and fills the viewport.
func (w *Window) Maximize(v Viewport) {
	switch w.Mode {
	case ModeMaximized:
		w.Frame = v.Maximized()
		return
	case ModeMinimized:
		if w.restoreMode != ModeMaximized {
			w.NormalFrame = w.Frame
		}
	default:
		w.NormalFrame = w.Frame
	}
	w.pointer = pointerState{}
	w.Frame = v.Maximized()
	w.Mode = ModeMaximized
}

// Minimize hides the window and remembers the mode to restore.
func (w *Window) Minimize() {
	if w.Mode == ModeMinimized {
		return
	}
	w.restoreMode = w.Mode
	w.Mode = ModeMinimized
	w.Active = false
	w.pointer = pointerState{}
}

// Restore un-minimizes to the previous mode, or returns a maximized
// window to its saved frame.
func (w *Window) Restore() {
	switch w.Mode {
	case ModeMinimized:
		w.Mode = w.restoreMode
		if w.Mode == "" {
			w.Mode = ModeNormal
		}
	case ModeMaximized:
		w.Frame = w.NormalFrame
		w.Mode = ModeNormal
	}
	w.pointer = pointerState{}
}

// ToggleMaximize maximizes a normal window and restores a maximized one.
func (w *Window) ToggleMaximize(v Viewport) {
	if w.Mode == ModeMaximized {
		w.Restore()
		return
	}
	w.Maximize(v)
}

// fit re-applies the viewport after it changed.
func (w *Window) fit(v Viewport, minSize Size) {
	w.NormalFrame = v.Clamp(w.NormalFrame, minSize)
	switch {
	case w.Mode == ModeMaximized || (w.Mode == ModeMinimized && w.restoreMode == ModeMaximized):
		w.Frame = v.Maximized()
	default:
		w.Frame = v.Clamp(w.Frame, minSize)
	}
}
