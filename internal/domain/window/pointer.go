package window

import "fmt"

// PointerKind is the pointer event phase.
type PointerKind string

const (
	PointerDown PointerKind = "down"
	PointerMove PointerKind = "move"
	PointerUp   PointerKind = "up"
)

// Target is the chrome region under the pointer on a down event.
type Target string

const (
	TargetHeader Target = "header"
	TargetBody   Target = "body"
	TargetResize Target = "resize"
)

// PointerEvent is a pointer event in viewport coordinates.
type PointerEvent struct {
	Kind   PointerKind `json:"kind"`
	X      int         `json:"x"`
	Y      int         `json:"y"`
	Target Target      `json:"target,omitempty"`
}

// Validate checks the event kind and, for down events, the target.
func (e PointerEvent) Validate() error {
	switch e.Kind {
	case PointerMove, PointerUp:
		return nil
	case PointerDown:
		switch e.Target {
		case TargetHeader, TargetBody, TargetResize:
			return nil
		}
		return fmt.Errorf("%w: target %q", ErrInvalidPointer, e.Target)
	}
	return fmt.Errorf("%w: kind %q", ErrInvalidPointer, e.Kind)
}

type phase int

const (
	phaseIdle phase = iota
	phaseDragging
	phaseResizing
)

// pointerState holds the gesture in progress. Move events are only
// consumed between a down and the matching up.
type pointerState struct {
	phase     phase
	offset    Position
	origin    Position
	startSize Size
}

// HandlePointer advances the gesture state machine and reports whether
// the frame changed. Gestures never start on a maximized or minimized window.
func (w *Window) HandlePointer(e PointerEvent, v Viewport, minSize Size) bool {
	switch e.Kind {
	case PointerDown:
		if w.Mode != ModeNormal {
			return false
		}
		switch e.Target {
		case TargetHeader:
			w.pointer = pointerState{
				phase:  phaseDragging,
				offset: Position{X: e.X - w.Frame.Position.X, Y: e.Y - w.Frame.Position.Y},
			}
		case TargetResize:
			w.pointer = pointerState{
				phase:     phaseResizing,
				origin:    Position{X: e.X, Y: e.Y},
				startSize: w.Frame.Size,
			}
		}
		return false

	case PointerMove:
		before := w.Frame
		switch w.pointer.phase {
		case phaseDragging:
			next := w.Frame
			next.Position = Position{X: e.X - w.pointer.offset.X, Y: e.Y - w.pointer.offset.Y}
			w.Frame = v.Clamp(next, minSize)
		case phaseResizing:
			next := w.Frame
			next.Size = Size{
				Width:  minInt(w.pointer.startSize.Width+e.X-w.pointer.origin.X, v.Width-next.Position.X),
				Height: minInt(w.pointer.startSize.Height+e.Y-w.pointer.origin.Y, v.Height-next.Position.Y),
			}
			w.Frame = v.Clamp(next, minSize)
		default:
			return false
		}
		return w.Frame != before

	case PointerUp:
		w.pointer = pointerState{}
	}
	return false
}
