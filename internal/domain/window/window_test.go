package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	testViewport = Viewport{Width: 1440, Height: 900, TopInset: 28}
	testMin      = Size{Width: 320, Height: 200}
)

func newTestWindow() *Window {
	f := Frame{Position: Position{X: 100, Y: 100}, Size: Size{Width: 800, Height: 600}}
	return &Window{Frame: f, NormalFrame: f, Mode: ModeNormal}
}

func TestDragStopsAfterPointerUp(t *testing.T) {
	w := newTestWindow()

	w.HandlePointer(PointerEvent{Kind: PointerDown, X: 150, Y: 110, Target: TargetHeader}, testViewport, testMin)
	assert.True(t, w.Dragging())

	for i := 1; i <= 5; i++ {
		w.HandlePointer(PointerEvent{Kind: PointerMove, X: 150 + i*10, Y: 110 + i*10}, testViewport, testMin)
	}
	assert.Equal(t, Position{X: 150, Y: 150}, w.Frame.Position)

	w.HandlePointer(PointerEvent{Kind: PointerUp}, testViewport, testMin)
	assert.False(t, w.Dragging())

	released := w.Frame
	for i := 0; i < 5; i++ {
		changed := w.HandlePointer(PointerEvent{Kind: PointerMove, X: 700 + i, Y: 500 + i}, testViewport, testMin)
		assert.False(t, changed)
	}
	assert.Equal(t, released, w.Frame)
}

func TestMoveWithoutDownIsIgnored(t *testing.T) {
	w := newTestWindow()
	before := w.Frame

	w.HandlePointer(PointerEvent{Kind: PointerMove, X: 10, Y: 10}, testViewport, testMin)
	assert.Equal(t, before, w.Frame)

	// A body press focuses but does not start a drag.
	w.HandlePointer(PointerEvent{Kind: PointerDown, X: 300, Y: 300, Target: TargetBody}, testViewport, testMin)
	w.HandlePointer(PointerEvent{Kind: PointerMove, X: 10, Y: 10}, testViewport, testMin)
	assert.Equal(t, before, w.Frame)
}

func TestDragClampsToTopInset(t *testing.T) {
	w := newTestWindow()

	w.HandlePointer(PointerEvent{Kind: PointerDown, X: 110, Y: 105, Target: TargetHeader}, testViewport, testMin)
	w.HandlePointer(PointerEvent{Kind: PointerMove, X: 110, Y: -400}, testViewport, testMin)
	assert.Equal(t, testViewport.TopInset, w.Frame.Position.Y)

	w.HandlePointer(PointerEvent{Kind: PointerMove, X: -500, Y: 2000}, testViewport, testMin)
	assert.Equal(t, 0, w.Frame.Position.X)
	assert.Equal(t, testViewport.Height-w.Frame.Size.Height, w.Frame.Position.Y)
}

func TestResizeHonorsMinimum(t *testing.T) {
	w := newTestWindow()

	w.HandlePointer(PointerEvent{Kind: PointerDown, X: 900, Y: 700, Target: TargetResize}, testViewport, testMin)
	assert.True(t, w.Resizing())

	w.HandlePointer(PointerEvent{Kind: PointerMove, X: 1000, Y: 750}, testViewport, testMin)
	assert.Equal(t, Size{Width: 900, Height: 650}, w.Frame.Size)
	assert.Equal(t, Position{X: 100, Y: 100}, w.Frame.Position)

	w.HandlePointer(PointerEvent{Kind: PointerMove, X: 0, Y: 0}, testViewport, testMin)
	assert.Equal(t, testMin, w.Frame.Size)

	w.HandlePointer(PointerEvent{Kind: PointerUp}, testViewport, testMin)
	assert.False(t, w.Resizing())
}

func TestMaximizeAndRestore(t *testing.T) {
	w := newTestWindow()
	original := w.Frame

	w.Maximize(testViewport)
	assert.Equal(t, ModeMaximized, w.Mode)
	assert.Equal(t, Position{X: 0, Y: testViewport.TopInset}, w.Frame.Position)
	assert.Equal(t, Size{Width: testViewport.Width, Height: testViewport.Height - testViewport.TopInset}, w.Frame.Size)

	w.Restore()
	assert.Equal(t, ModeNormal, w.Mode)
	assert.Equal(t, original, w.Frame)
}

func TestNoDragWhileMaximized(t *testing.T) {
	w := newTestWindow()
	w.Maximize(testViewport)
	maximized := w.Frame

	w.HandlePointer(PointerEvent{Kind: PointerDown, X: 10, Y: 30, Target: TargetHeader}, testViewport, testMin)
	w.HandlePointer(PointerEvent{Kind: PointerMove, X: 300, Y: 300}, testViewport, testMin)
	assert.Equal(t, maximized, w.Frame)
}

func TestMinimizeRestoresPreviousMode(t *testing.T) {
	w := newTestWindow()
	original := w.Frame

	w.Maximize(testViewport)
	w.Minimize()
	assert.True(t, w.Minimized())

	w.Restore()
	assert.Equal(t, ModeMaximized, w.Mode)

	w.Restore()
	assert.Equal(t, ModeNormal, w.Mode)
	assert.Equal(t, original, w.Frame)
}

func TestToggleMaximize(t *testing.T) {
	w := newTestWindow()
	original := w.Frame

	w.ToggleMaximize(testViewport)
	assert.True(t, w.Maximized())
	w.ToggleMaximize(testViewport)
	assert.Equal(t, original, w.Frame)
}

func TestViewportClamp(t *testing.T) {
	tests := []struct {
		name string
		in   Frame
		want Frame
	}{
		{
			name: "inside stays",
			in:   Frame{Position{10, 40}, Size{400, 300}},
			want: Frame{Position{10, 40}, Size{400, 300}},
		},
		{
			name: "above inset",
			in:   Frame{Position{10, 0}, Size{400, 300}},
			want: Frame{Position{10, 28}, Size{400, 300}},
		},
		{
			name: "too large",
			in:   Frame{Position{-20, -20}, Size{5000, 5000}},
			want: Frame{Position{0, 28}, Size{1440, 872}},
		},
		{
			name: "too small",
			in:   Frame{Position{1400, 880}, Size{10, 10}},
			want: Frame{Position{1120, 700}, Size{320, 200}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, testViewport.Clamp(tt.in, testMin))
		})
	}
}

func TestViewportValidate(t *testing.T) {
	assert.NoError(t, testViewport.Validate())
	assert.ErrorIs(t, Viewport{Width: 0, Height: 10}.Validate(), ErrInvalidViewport)
	assert.ErrorIs(t, Viewport{Width: 10, Height: 10, TopInset: 10}.Validate(), ErrInvalidViewport)
	assert.ErrorIs(t, Viewport{Width: 10, Height: 10, TopInset: -1}.Validate(), ErrInvalidViewport)
}

func TestPointerEventValidate(t *testing.T) {
	assert.NoError(t, PointerEvent{Kind: PointerMove}.Validate())
	assert.NoError(t, PointerEvent{Kind: PointerDown, Target: TargetResize}.Validate())
	assert.ErrorIs(t, PointerEvent{Kind: PointerDown}.Validate(), ErrInvalidPointer)
	assert.ErrorIs(t, PointerEvent{Kind: "click"}.Validate(), ErrInvalidPointer)
}
