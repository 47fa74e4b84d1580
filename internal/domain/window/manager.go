package window

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bitcoin-os/shell/internal/domain/registry"
	"github.com/bitcoin-os/shell/internal/infrastructure/monitoring"
	"github.com/bitcoin-os/shell/internal/shared/id"
	"go.uber.org/zap"
)

// Catalog looks up apps and their URLs for the running environment.
type Catalog interface {
	Get(appID string) (registry.AppDescriptor, error)
	Resolve(appID string) (string, error)
}

// EmbedChecker decides whether a URL may be hosted in an iframe.
type EmbedChecker interface {
	Embeddable(ctx context.Context, url string) (bool, error)
}

// Config holds window geometry defaults.
type Config struct {
	Viewport    Viewport
	DefaultSize Size
	MinSize     Size
}

// Placement is the persisted layout of one window.
type Placement struct {
	AppID       string `json:"app_id"`
	Frame       Frame  `json:"frame"`
	NormalFrame Frame  `json:"normal_frame"`
	Mode        Mode   `json:"mode"`
	Active      bool   `json:"active"`
}

// Stats contains window manager statistics
type Stats struct {
	TotalWindows   int      `json:"total_windows"`
	Visible        int      `json:"visible"`
	Minimized      int      `json:"minimized"`
	Maximized      int      `json:"maximized"`
	Ready          int      `json:"ready"`
	ActiveWindowID *string  `json:"active_window_id,omitempty"`
	Viewport       Viewport `json:"viewport"`
}

// Manager owns every open window. One window per app; at most one
// window is active and a minimized window is never active.
type Manager struct {
	mu       sync.RWMutex
	windows  map[id.WindowID]*Window // Protected by mu
	order    []id.WindowID           // open order, protected by mu
	history  []id.WindowID           // focus order, most recent last, protected by mu
	activeID id.WindowID             // Protected by mu
	viewport Viewport                // Protected by mu
	launched int                     // Protected by mu

	defaultSize Size
	minSize     Size
	catalog     Catalog
	checker     EmbedChecker
	onClose     []func(id.WindowID)
	metrics     *monitoring.Metrics
	logger      *zap.Logger
	now         func() time.Time
}

// NewManager creates a new window manager
func NewManager(cfg Config, catalog Catalog) (*Manager, error) {
	if err := cfg.Viewport.Validate(); err != nil {
		return nil, err
	}
	if cfg.DefaultSize.Width <= 0 || cfg.DefaultSize.Height <= 0 {
		cfg.DefaultSize = Size{Width: 1024, Height: 700}
	}
	if cfg.MinSize.Width <= 0 || cfg.MinSize.Height <= 0 {
		cfg.MinSize = Size{Width: 320, Height: 200}
	}

	return &Manager{
		windows:     make(map[id.WindowID]*Window),
		viewport:    cfg.Viewport,
		defaultSize: cfg.DefaultSize,
		minSize:     cfg.MinSize,
		catalog:     catalog,
		logger:      zap.NewNop(),
		now:         time.Now,
	}, nil
}

// WithMetrics adds metrics tracking to the manager
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// WithLogger sets the manager's logger
func (m *Manager) WithLogger(logger *zap.Logger) *Manager {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// WithEmbedChecker enables the cannot-embed heuristic for launched apps
func (m *Manager) WithEmbedChecker(checker EmbedChecker) *Manager {
	m.checker = checker
	return m
}

// WithCloseHook registers fn to run after a window closes, outside the lock
func (m *Manager) WithCloseHook(fn func(windowID id.WindowID)) *Manager {
	m.onClose = append(m.onClose, fn)
	return m
}

// Launch opens appID, or brings its existing window forward.
// The returned bool is true when a new window was created.
func (m *Manager) Launch(ctx context.Context, appID string) (*Window, bool, error) {
	return m.launch(ctx, appID, nil)
}

// launch opens appID and, when place is set, applies the saved layout under
// the same lock that creates the window.
func (m *Manager) launch(ctx context.Context, appID string, place *Placement) (*Window, bool, error) {
	if place == nil {
		if w, ok := m.raise(appID); ok {
			return w, false, nil
		}
	}

	app, err := m.catalog.Get(appID)
	if err != nil {
		return nil, false, err
	}
	url, err := m.catalog.Resolve(appID)
	if err != nil {
		return nil, false, err
	}

	embeddable := !app.IsExternal
	if embeddable && m.checker != nil {
		ok, err := m.checker.Embeddable(ctx, url)
		if err != nil {
			m.logger.Debug("Embed check failed, assuming embeddable",
				zap.String("app_id", appID), zap.Error(err))
		} else {
			embeddable = ok
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Another launch may have won while the checks ran.
	if existing := m.findByApp(appID); existing != nil {
		m.raiseLocked(existing)
		if place != nil {
			m.placeLocked(existing, *place)
		}
		return m.copyOf(existing), false, nil
	}

	frame := m.viewport.Cascade(m.defaultSize, m.launched, m.minSize)
	w := &Window{
		ID:          id.NewWindowID(),
		AppID:       appID,
		AppName:     app.Name,
		URL:         url,
		Frame:       frame,
		NormalFrame: frame,
		Mode:        ModeNormal,
		Embeddable:  embeddable,
		Sandbox:     Sandbox,
		OpenedAt:    m.now(),
	}
	if !embeddable {
		w.FallbackURL = url
	}

	m.windows[w.ID] = w
	m.order = append(m.order, w.ID)
	m.launched++
	m.focusLocked(w)
	if place != nil {
		m.placeLocked(w, *place)
	}

	m.logger.Info("Window opened",
		zap.String("window_id", w.ID.String()),
		zap.String("app_id", appID),
		zap.Bool("embeddable", embeddable))
	if m.metrics != nil {
		m.metrics.RecordLaunch()
	}
	m.updateGauge()

	return m.copyOf(w), true, nil
}

func (m *Manager) raise(appID string) (*Window, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w := m.findByApp(appID)
	if w == nil {
		return nil, false
	}
	m.raiseLocked(w)
	return m.copyOf(w), true
}

func (m *Manager) raiseLocked(w *Window) {
	if w.Minimized() {
		w.Restore()
	}
	m.focusLocked(w)
}

// Get retrieves a window by ID
func (m *Manager) Get(windowID id.WindowID) (*Window, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	w, ok := m.windows[windowID]
	if !ok {
		return nil, ErrWindowNotFound
	}
	return m.copyOf(w), nil
}

// FindByApp returns the window hosting appID.
func (m *Manager) FindByApp(appID string) (*Window, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	w := m.findByApp(appID)
	if w == nil {
		return nil, false
	}
	return m.copyOf(w), true
}

// List returns all windows in open order
func (m *Manager) List() []*Window {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Window, 0, len(m.order))
	for _, wid := range m.order {
		out = append(out, m.copyOf(m.windows[wid]))
	}
	return out
}

// OpenApps returns the app ids of open windows in open order.
func (m *Manager) OpenApps() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.order))
	for _, wid := range m.order {
		out = append(out, m.windows[wid].AppID)
	}
	return out
}

// Active returns the active window, if any.
func (m *Manager) Active() (*Window, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.activeID == "" {
		return nil, false
	}
	return m.copyOf(m.windows[m.activeID]), true
}

// Focus activates a window, un-minimizing it if needed.
func (m *Manager) Focus(windowID id.WindowID) (*Window, error) {
	return m.mutate(windowID, "focus", func(w *Window) {
		m.raiseLocked(w)
	})
}

// Minimize hides a window and hands focus to the most recently focused visible window.
func (m *Manager) Minimize(windowID id.WindowID) (*Window, error) {
	return m.mutate(windowID, "minimize", func(w *Window) {
		wasActive := w.Active
		w.Minimize()
		if wasActive {
			m.activeID = ""
			m.focusFallbackLocked()
		}
	})
}

// Maximize fills the viewport below the top inset and focuses the window.
func (m *Manager) Maximize(windowID id.WindowID) (*Window, error) {
	return m.mutate(windowID, "maximize", func(w *Window) {
		w.Maximize(m.viewport)
		m.focusLocked(w)
	})
}

// Restore returns a window to its pre-maximize frame or un-minimizes it.
func (m *Manager) Restore(windowID id.WindowID) (*Window, error) {
	return m.mutate(windowID, "restore", func(w *Window) {
		w.Restore()
		m.focusLocked(w)
	})
}

// ToggleMaximize flips between maximized and normal.
func (m *Manager) ToggleMaximize(windowID id.WindowID) (*Window, error) {
	return m.mutate(windowID, "toggle", func(w *Window) {
		if w.Minimized() {
			w.Restore()
		}
		w.ToggleMaximize(m.viewport)
		m.focusLocked(w)
	})
}

// Pointer feeds a pointer event to a window. A down event anywhere in a
// visible window focuses it.
func (m *Manager) Pointer(windowID id.WindowID, e PointerEvent) (*Window, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[windowID]
	if !ok {
		return nil, ErrWindowNotFound
	}
	if w.Minimized() {
		return m.copyOf(w), nil
	}

	if e.Kind == PointerDown {
		m.focusLocked(w)
	}
	w.HandlePointer(e, m.viewport, m.minSize)
	return m.copyOf(w), nil
}

// Close removes a window. When it was active, focus passes to the most
// recently focused visible window.
func (m *Manager) Close(windowID id.WindowID) error {
	m.mu.Lock()
	w, ok := m.windows[windowID]
	if !ok {
		m.mu.Unlock()
		return ErrWindowNotFound
	}

	delete(m.windows, windowID)
	m.order = without(m.order, windowID)
	m.history = without(m.history, windowID)

	if m.activeID == windowID {
		m.activeID = ""
		m.focusFallbackLocked()
	}

	m.logger.Info("Window closed",
		zap.String("window_id", windowID.String()),
		zap.String("app_id", w.AppID))
	if m.metrics != nil {
		m.metrics.RecordWindowCommand("close")
	}
	m.updateGauge()
	m.mu.Unlock()

	m.notifyClosed(windowID)
	return nil
}

// CloseAll closes every window.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	closed := m.order
	m.windows = make(map[id.WindowID]*Window)
	m.order = nil
	m.history = nil
	m.activeID = ""
	m.updateGauge()
	m.mu.Unlock()

	m.notifyClosed(closed...)
}

func (m *Manager) notifyClosed(ids ...id.WindowID) {
	for _, windowID := range ids {
		for _, fn := range m.onClose {
			fn(windowID)
		}
	}
}

// Viewport returns the current viewport.
func (m *Manager) Viewport() Viewport {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.viewport
}

// SetViewport changes the desktop size and refits every window.
func (m *Manager) SetViewport(v Viewport) error {
	if err := v.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.viewport = v
	for _, w := range m.windows {
		w.fit(v, m.minSize)
	}
	return nil
}

// MarkReady records that the app in a window sent app-ready.
func (m *Manager) MarkReady(windowID id.WindowID) (*Window, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[windowID]
	if !ok {
		return nil, ErrWindowNotFound
	}
	w.Ready = true
	return m.copyOf(w), nil
}

// Snapshot captures the layout of every window in open order.
func (m *Manager) Snapshot() []Placement {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Placement, 0, len(m.order))
	for _, wid := range m.order {
		w := m.windows[wid]
		out = append(out, Placement{
			AppID:       w.AppID,
			Frame:       w.Frame,
			NormalFrame: w.NormalFrame,
			Mode:        w.Mode,
			Active:      w.Active,
		})
	}
	return out
}

// RestoreSnapshot closes every window and relaunches the saved layout.
// Apps no longer in the catalog are skipped and returned.
func (m *Manager) RestoreSnapshot(ctx context.Context, placements []Placement) ([]string, error) {
	m.CloseAll()

	var (
		skipped []string
		active  id.WindowID
	)
	for _, p := range placements {
		if err := ctx.Err(); err != nil {
			return skipped, err
		}

		w, _, err := m.launch(ctx, p.AppID, &p)
		if err != nil {
			m.logger.Warn("Skipping saved window", zap.String("app_id", p.AppID), zap.Error(err))
			skipped = append(skipped, p.AppID)
			continue
		}

		if p.Active {
			active = w.ID
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.windows[active]; ok && !w.Minimized() {
		m.focusLocked(w)
	} else if m.activeID == "" {
		m.focusFallbackLocked()
	}
	return skipped, nil
}

func (m *Manager) placeLocked(w *Window, p Placement) {
	w.NormalFrame = m.viewport.Clamp(p.NormalFrame, m.minSize)
	w.Frame = m.viewport.Clamp(p.Frame, m.minSize)
	switch p.Mode {
	case ModeMaximized:
		w.Mode = ModeNormal
		w.Frame = w.NormalFrame
		w.Maximize(m.viewport)
	case ModeMinimized:
		w.Minimize()
		if m.activeID == w.ID {
			m.activeID = ""
		}
	}
}

// Stats returns manager statistics
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Stats{TotalWindows: len(m.windows), Viewport: m.viewport}
	for _, w := range m.windows {
		switch w.Mode {
		case ModeMinimized:
			s.Minimized++
		case ModeMaximized:
			s.Maximized++
			s.Visible++
		default:
			s.Visible++
		}
		if w.Ready {
			s.Ready++
		}
	}
	if m.activeID != "" {
		active := m.activeID.String()
		s.ActiveWindowID = &active
	}
	return s
}

// mutate runs fn on a window under the lock and returns a copy.
func (m *Manager) mutate(windowID id.WindowID, command string, fn func(w *Window)) (*Window, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[windowID]
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", command, windowID, ErrWindowNotFound)
	}
	fn(w)

	if m.metrics != nil {
		m.metrics.RecordWindowCommand(command)
	}
	return m.copyOf(w), nil
}

// focusLocked makes w the only active window (must hold lock).
func (m *Manager) focusLocked(w *Window) {
	if w.Minimized() {
		return
	}
	if m.activeID != "" && m.activeID != w.ID {
		if prev, ok := m.windows[m.activeID]; ok {
			prev.Active = false
			prev.pointer = pointerState{}
		}
	}
	w.Active = true
	m.activeID = w.ID
	m.history = append(without(m.history, w.ID), w.ID)
}

// focusFallbackLocked focuses the most recently focused visible window (must hold lock).
func (m *Manager) focusFallbackLocked() {
	for i := len(m.history) - 1; i >= 0; i-- {
		if w, ok := m.windows[m.history[i]]; ok && !w.Minimized() {
			m.focusLocked(w)
			return
		}
	}
}

func (m *Manager) findByApp(appID string) *Window {
	for _, w := range m.windows {
		if w.AppID == appID {
			return w
		}
	}
	return nil
}

func (m *Manager) copyOf(w *Window) *Window {
	c := *w
	return &c
}

func (m *Manager) updateGauge() {
	if m.metrics != nil {
		m.metrics.SetWindowsOpen(len(m.windows))
	}
}

func without(ids []id.WindowID, target id.WindowID) []id.WindowID {
	out := ids[:0:0]
	for _, wid := range ids {
		if wid != target {
			out = append(out, wid)
		}
	}
	return out
}
