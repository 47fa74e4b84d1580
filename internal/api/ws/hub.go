package ws

import (
	"context"
	"errors"
	"sync"

	"github.com/bitcoin-os/shell/internal/bridge"
	"github.com/bitcoin-os/shell/internal/domain/window"
	"github.com/bitcoin-os/shell/internal/infrastructure/logging"
	"github.com/bitcoin-os/shell/internal/infrastructure/monitoring"
	"github.com/bitcoin-os/shell/internal/shared/id"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

// Role is which end of a window's channel a connection is
type Role string

const (
	RoleHost Role = "host"
	RoleApp  Role = "app"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleHost || r == RoleApp
}

func (r Role) peer() Role {
	if r == RoleHost {
		return RoleApp
	}
	return RoleHost
}

var ErrInvalidRole = errors.New("role must be host or app")

// Desktop is the window state the hub consults
type Desktop interface {
	Get(windowID id.WindowID) (*window.Window, error)
	MarkReady(windowID id.WindowID) (*window.Window, error)
	Viewport() window.Viewport
}

// ThemeApplier persists and applies a theme chosen by the shell
type ThemeApplier interface {
	Apply(ctx context.Context, theme bridge.Theme) error
}

// endpoint is one attached connection and the bridge reading from it
type endpoint struct {
	conn   bridge.Conn
	bridge *bridge.Bridge
}

type pair struct {
	host *endpoint
	app  *endpoint
}

func (p *pair) get(r Role) *endpoint {
	if r == RoleHost {
		return p.host
	}
	return p.app
}

func (p *pair) set(r Role, e *endpoint) {
	if r == RoleHost {
		p.host = e
	} else {
		p.app = e
	}
}

// Stats reports hub state
type Stats struct {
	Windows     int          `json:"windows"`
	Hosts       int          `json:"hosts"`
	Apps        int          `json:"apps"`
	Theme       bridge.Theme `json:"theme"`
	Forwarded   uint64       `json:"forwarded"`
	Dropped     uint64       `json:"dropped"`
	Broadcasted uint64       `json:"broadcasted"`
}

// Hub relays bridge messages between the shell and the app in each window
type Hub struct {
	desktop   Desktop
	themes    ThemeApplier
	metrics   *monitoring.Metrics
	logger    *zap.Logger
	sanitizer *bluemonday.Policy

	mu          sync.RWMutex
	pairs       map[id.WindowID]*pair
	theme       bridge.Theme
	locale      string
	features    map[string]bool
	forwarded   uint64
	dropped     uint64
	broadcasted uint64
}

// NewHub creates a hub over the desktop
func NewHub(desktop Desktop) *Hub {
	return &Hub{
		desktop:   desktop,
		logger:    zap.NewNop(),
		sanitizer: bluemonday.StrictPolicy(),
		pairs:     make(map[id.WindowID]*pair),
		theme:     bridge.DefaultTheme,
		locale:    "en",
	}
}

// WithMetrics records message and connection metrics
func (h *Hub) WithMetrics(metrics *monitoring.Metrics) *Hub {
	h.metrics = metrics
	return h
}

// WithLogger sets the hub logger
func (h *Hub) WithLogger(logger *zap.Logger) *Hub {
	h.logger = logging.OrNop(logger).Named("bridge")
	return h
}

// WithThemes routes theme changes from the shell through themes, which
// persists them and calls back into SetTheme.
func (h *Hub) WithThemes(themes ThemeApplier) *Hub {
	h.themes = themes
	return h
}

// Theme returns the current shell theme
func (h *Hub) Theme() bridge.Theme {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.theme
}

// SetTheme validates and applies a theme, broadcasting it to every app
func (h *Hub) SetTheme(ctx context.Context, theme bridge.Theme) error {
	if err := theme.Validate(); err != nil {
		return err
	}
	h.mu.Lock()
	h.theme = theme
	h.mu.Unlock()

	h.broadcast(ctx, bridge.ThemeChange{Theme: theme})
	return nil
}

// Config builds the os-config an app receives after app-ready
func (h *Hub) Config() bridge.OSConfig {
	h.mu.RLock()
	defer h.mu.RUnlock()

	features := make(map[string]bool, len(h.features))
	for k, v := range h.features {
		features[k] = v
	}
	return bridge.OSConfig{
		Theme:       h.theme,
		TopInset:    h.desktop.Viewport().TopInset,
		ShowMenuBar: true,
		Locale:      h.locale,
		Features:    features,
	}
}

// Attach registers conn as role for windowID and pumps its frames through a
// bridge until the connection fails or ctx ends. A newer connection for the
// same slot replaces and closes the older one.
func (h *Hub) Attach(ctx context.Context, windowID id.WindowID, role Role, conn bridge.Conn) error {
	if !role.Valid() {
		return ErrInvalidRole
	}
	if _, err := h.desktop.Get(windowID); err != nil {
		return err
	}

	ep := &endpoint{
		conn:   conn,
		bridge: bridge.New(conn, bridge.WithLogger(h.logger), bridge.WithDropHook(h.drop)),
	}
	h.listen(ctx, windowID, role, ep.bridge)

	h.mu.Lock()
	p, ok := h.pairs[windowID]
	if !ok {
		p = &pair{}
		h.pairs[windowID] = p
	}
	old := p.get(role)
	p.set(role, ep)
	h.mu.Unlock()

	if old != nil {
		_ = old.conn.Close()
	}
	if h.metrics != nil {
		h.metrics.IncWSConnections()
		defer h.metrics.DecWSConnections()
	}
	defer h.detach(windowID, role, ep)

	h.logger.Debug("bridge attached", zap.String("window", windowID.String()), zap.String("role", string(role)))
	return ep.bridge.Run(ctx, conn)
}

func (h *Hub) detach(windowID id.WindowID, role Role, ep *endpoint) {
	h.mu.Lock()
	if p, ok := h.pairs[windowID]; ok && p.get(role) == ep {
		p.set(role, nil)
		if p.host == nil && p.app == nil {
			delete(h.pairs, windowID)
		}
	}
	h.mu.Unlock()
	_ = ep.conn.Close()
	h.logger.Debug("bridge detached", zap.String("window", windowID.String()), zap.String("role", string(role)))
}

// Disconnect closes both ends of a window's channel, used when the window closes
func (h *Hub) Disconnect(windowID id.WindowID) {
	h.mu.Lock()
	p, ok := h.pairs[windowID]
	delete(h.pairs, windowID)
	h.mu.Unlock()
	if !ok {
		return
	}
	for _, ep := range []*endpoint{p.host, p.app} {
		if ep != nil {
			_ = ep.conn.Close()
		}
	}
}

// Close disconnects every window
func (h *Hub) Close() {
	h.mu.RLock()
	ids := make([]id.WindowID, 0, len(h.pairs))
	for windowID := range h.pairs {
		ids = append(ids, windowID)
	}
	h.mu.RUnlock()
	for _, windowID := range ids {
		h.Disconnect(windowID)
	}
}

// listen wires the hub's routing onto b. Frames that fail to decode never
// reach a listener; the bridge reports them through the drop hook.
func (h *Hub) listen(ctx context.Context, windowID id.WindowID, from Role, b *bridge.Bridge) {
	on := func(t bridge.Type, fn func(bridge.Message)) {
		b.On(t, func(m bridge.Message) {
			h.recordMessage(m.Type(), "in")
			fn(m)
		})
	}

	on(bridge.TypeAppReady, func(m bridge.Message) {
		if from == RoleApp {
			if _, err := h.desktop.MarkReady(windowID); err != nil {
				h.logger.Debug("app-ready for closed window", zap.String("window", windowID.String()))
			}
			h.send(ctx, windowID, RoleApp, h.Config())
		}
		h.forward(ctx, windowID, from, m)
	})
	on(bridge.TypeThemeChange, func(m bridge.Message) {
		if from == RoleHost {
			if err := h.applyTheme(ctx, m.(bridge.ThemeChange).Theme); err != nil {
				h.drop("invalid_theme")
			}
			return
		}
		h.forward(ctx, windowID, from, m)
	})
	on(bridge.TypeOSConfig, func(m bridge.Message) {
		if from == RoleHost {
			h.configure(ctx, m.(bridge.OSConfig))
		}
		h.forward(ctx, windowID, from, m)
	})
	on(bridge.TypeInsertAIText, func(m bridge.Message) {
		text := m.(bridge.InsertAIText)
		text.Text = h.sanitizer.Sanitize(text.Text)
		h.forward(ctx, windowID, from, text)
	})
	on(bridge.TypeNavigateHome, func(m bridge.Message) {
		h.forward(ctx, windowID, from, m)
	})
}

func (h *Hub) applyTheme(ctx context.Context, theme bridge.Theme) error {
	if h.themes != nil {
		return h.themes.Apply(ctx, theme)
	}
	return h.SetTheme(ctx, theme)
}

// configure takes locale and features from a host os-config. A valid theme
// that differs from the current one is applied like a theme-change.
func (h *Hub) configure(ctx context.Context, cfg bridge.OSConfig) {
	h.mu.Lock()
	if cfg.Locale != "" {
		h.locale = cfg.Locale
	}
	if cfg.Features != nil {
		h.features = cfg.Features
	}
	current := h.theme
	h.mu.Unlock()

	if cfg.Theme.Validate() == nil && cfg.Theme != current {
		if err := h.applyTheme(ctx, cfg.Theme); err != nil {
			h.logger.Debug("os-config theme rejected", zap.Error(err))
		}
	}
}

// forward delivers to the other end of the window's channel; with no peer
// attached the message is dropped.
func (h *Hub) forward(ctx context.Context, windowID id.WindowID, from Role, msg bridge.Message) {
	if !h.send(ctx, windowID, from.peer(), msg) {
		h.drop("no_peer")
		return
	}
	h.mu.Lock()
	h.forwarded++
	h.mu.Unlock()
}

func (h *Hub) send(ctx context.Context, windowID id.WindowID, to Role, msg bridge.Message) bool {
	h.mu.RLock()
	var ep *endpoint
	if p, ok := h.pairs[windowID]; ok {
		ep = p.get(to)
	}
	h.mu.RUnlock()
	if ep == nil {
		return false
	}
	return h.post(ctx, ep, msg)
}

func (h *Hub) post(ctx context.Context, ep *endpoint, msg bridge.Message) bool {
	if err := ep.bridge.Send(ctx, msg); err != nil {
		h.logger.Debug("post failed", zap.String("type", string(msg.Type())), zap.Error(err))
		return false
	}
	h.recordMessage(msg.Type(), "out")
	return true
}

func (h *Hub) broadcast(ctx context.Context, msg bridge.Message) {
	h.mu.RLock()
	apps := make([]*endpoint, 0, len(h.pairs))
	for _, p := range h.pairs {
		if p.app != nil {
			apps = append(apps, p.app)
		}
	}
	h.mu.RUnlock()

	sent := 0
	for _, ep := range apps {
		if h.post(ctx, ep, msg) {
			sent++
		}
	}
	h.mu.Lock()
	h.broadcasted += uint64(sent)
	h.mu.Unlock()
}

func (h *Hub) drop(reason string) {
	h.mu.Lock()
	h.dropped++
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.RecordBridgeDrop(reason)
	}
}

func (h *Hub) recordMessage(t bridge.Type, direction string) {
	if h.metrics != nil {
		h.metrics.RecordBridgeMessage(string(t), direction)
	}
}

// Stats returns hub counters
func (h *Hub) Stats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s := Stats{
		Windows:     len(h.pairs),
		Theme:       h.theme,
		Forwarded:   h.forwarded,
		Dropped:     h.dropped,
		Broadcasted: h.broadcasted,
	}
	for _, p := range h.pairs {
		if p.host != nil {
			s.Hosts++
		}
		if p.app != nil {
			s.Apps++
		}
	}
	return s
}
