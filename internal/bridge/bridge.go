package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Poster delivers an encoded frame to the other side of the channel.
type Poster interface {
	Post(ctx context.Context, data []byte) error
}

// Conn is a bidirectional frame transport.
type Conn interface {
	Poster
	Read(ctx context.Context) ([]byte, error)
	Close() error
}

// Listener receives decoded messages.
type Listener func(Message)

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Bridge) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithProbe decides the embedding context from probe.
func WithProbe(probe EmbedProbe) Option {
	return func(b *Bridge) { b.embedded = DetectEmbedded(probe) }
}

// WithEmbedded forces the embedding context.
func WithEmbedded(embedded bool) Option {
	return func(b *Bridge) { b.embedded = embedded }
}

// WithDropHook is called with the reason whenever an inbound frame is dropped.
func WithDropHook(hook func(reason string)) Option {
	return func(b *Bridge) { b.onDrop = hook }
}

// Bridge is one side of a host/app channel. It is created explicitly per
// pair; there is no process-wide instance.
type Bridge struct {
	parent   Poster
	embedded bool
	logger   *zap.Logger
	onDrop   func(reason string)

	mu        sync.RWMutex
	theme     Theme
	config    *OSConfig
	listeners map[Type]map[uint64]Listener
	nextID    uint64
}

// New creates a bridge that posts to parent. Without an embedding option the
// bridge considers itself embedded whenever parent is non-nil.
func New(parent Poster, opts ...Option) *Bridge {
	b := &Bridge{
		parent:    parent,
		embedded:  parent != nil,
		logger:    zap.NewNop(),
		theme:     DefaultTheme,
		listeners: make(map[Type]map[uint64]Listener),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.parent == nil {
		b.embedded = false
	}
	return b
}

// Embedded reports whether Send reaches a parent.
func (b *Bridge) Embedded() bool {
	return b.embedded
}

// Send posts m to the parent. It is a no-op when not embedded.
// Delivery is fire-and-forget: there is no acknowledgement or retry.
func (b *Bridge) Send(ctx context.Context, m Message) error {
	if !b.embedded {
		return nil
	}
	data, err := Encode(m)
	if err != nil {
		return err
	}
	if err := b.parent.Post(ctx, data); err != nil {
		return fmt.Errorf("post %s: %w", m.Type(), err)
	}
	return nil
}

// On registers listener for messages of type t and returns a func that removes it.
func (b *Bridge) On(t Type, listener Listener) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	if b.listeners[t] == nil {
		b.listeners[t] = make(map[uint64]Listener)
	}
	b.listeners[t][id] = listener

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.listeners[t], id)
			b.mu.Unlock()
		})
	}
}

// Receive handles one inbound frame. Malformed and unknown frames are
// dropped; the returned error says why, and callers may ignore it.
func (b *Bridge) Receive(data []byte) (Message, error) {
	msg, err := Decode(data)
	if err != nil {
		reason := "malformed"
		if errors.Is(err, ErrUnknownType) {
			reason = "unknown_type"
		}
		b.logger.Debug("Dropping bridge frame", zap.String("reason", reason), zap.Error(err))
		if b.onDrop != nil {
			b.onDrop(reason)
		}
		return nil, err
	}

	b.apply(msg)
	b.emit(msg)
	return msg, nil
}

func (b *Bridge) apply(msg Message) {
	switch m := msg.(type) {
	case OSConfig:
		b.mu.Lock()
		cfg := m
		b.config = &cfg
		if m.Theme.Validate() == nil {
			b.theme = m.Theme
		}
		b.mu.Unlock()
	case ThemeChange:
		if m.Theme.Validate() != nil {
			b.logger.Debug("Ignoring invalid theme", zap.String("mode", string(m.Theme.Mode)))
			return
		}
		b.mu.Lock()
		b.theme = m.Theme
		b.mu.Unlock()
	case AppReady, NavigateHome, InsertAIText:
	}
}

func (b *Bridge) emit(msg Message) {
	b.mu.RLock()
	set := b.listeners[msg.Type()]
	targets := make([]Listener, 0, len(set))
	for _, l := range set {
		targets = append(targets, l)
	}
	b.mu.RUnlock()

	for _, l := range targets {
		l(msg)
	}
}

// Theme returns the currently applied theme.
func (b *Bridge) Theme() Theme {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.theme
}

// Config returns the last applied os-config, if any.
func (b *Bridge) Config() (OSConfig, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.config == nil {
		return OSConfig{}, false
	}
	return *b.config, true
}

// Run feeds frames from conn into Receive until ctx is done or the read fails.
func (b *Bridge) Run(ctx context.Context, conn Conn) error {
	for {
		data, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		_, _ = b.Receive(data)
	}
}
