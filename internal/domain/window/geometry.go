package window

import "fmt"

// Position is the top-left corner of a window in viewport pixels.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size is a window's outer dimensions.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Frame is a window's position and size.
type Frame struct {
	Position Position `json:"position"`
	Size     Size     `json:"size"`
}

// Viewport is the desktop area. The band above TopInset belongs to the menu bar.
type Viewport struct {
	Width    int `json:"width"`
	Height   int `json:"height"`
	TopInset int `json:"top_inset"`
}

// Validate checks that the viewport leaves room below the inset.
func (v Viewport) Validate() error {
	if v.Width <= 0 || v.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidViewport, v.Width, v.Height)
	}
	if v.TopInset < 0 || v.TopInset >= v.Height {
		return fmt.Errorf("%w: top inset %d", ErrInvalidViewport, v.TopInset)
	}
	return nil
}

// Usable returns the largest size a window may have.
func (v Viewport) Usable() Size {
	return Size{Width: v.Width, Height: v.Height - v.TopInset}
}

// Maximized returns the frame filling the viewport below the inset.
func (v Viewport) Maximized() Frame {
	return Frame{
		Position: Position{X: 0, Y: v.TopInset},
		Size:     v.Usable(),
	}
}

// Clamp fits f inside the viewport: size between min and the usable area,
// and the header never above the inset.
func (v Viewport) Clamp(f Frame, minSize Size) Frame {
	usable := v.Usable()

	f.Size.Width = clampInt(f.Size.Width, minInt(minSize.Width, usable.Width), usable.Width)
	f.Size.Height = clampInt(f.Size.Height, minInt(minSize.Height, usable.Height), usable.Height)

	f.Position.X = clampInt(f.Position.X, 0, v.Width-f.Size.Width)
	f.Position.Y = clampInt(f.Position.Y, v.TopInset, v.Height-f.Size.Height)
	return f
}

// Cascade places a new window of the given size, offset diagonally by slot.
func (v Viewport) Cascade(size Size, slot int, minSize Size) Frame {
	const step = 32
	usable := v.Usable()
	f := Frame{
		Position: Position{
			X: (v.Width-size.Width)/2 + (slot%8)*step - 3*step,
			Y: v.TopInset + (usable.Height-size.Height)/2 + (slot%8)*step - 3*step,
		},
		Size: size,
	}
	return v.Clamp(f, minSize)
}

func clampInt(n, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
