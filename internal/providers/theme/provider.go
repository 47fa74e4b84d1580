package theme

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/bitcoin-os/shell/internal/bridge"
	"github.com/bitcoin-os/shell/internal/infrastructure/logging"
	"github.com/bitcoin-os/shell/internal/infrastructure/storage"
	"github.com/bitcoin-os/shell/internal/shared/types"
	"github.com/bitcoin-os/shell/internal/shared/utils"
	"go.uber.org/zap"
)

const currentKey = "theme"

// ErrInvalid marks a theme with an unknown mode or malformed accent
var ErrInvalid = errors.New("invalid theme")

var (
	accentPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
	idPattern     = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,31}$`)
)

// Applier receives the active theme. The bridge hub broadcasts it to
// every connected app.
type Applier interface {
	Theme() bridge.Theme
	SetTheme(ctx context.Context, theme bridge.Theme) error
}

// Preset is a named theme
type Preset struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Mode    bridge.ThemeMode `json:"mode"`
	Accent  string           `json:"accent"`
	BuiltIn bool             `json:"built_in"`
}

// Theme converts the preset into the bridge payload
func (p Preset) Theme() bridge.Theme {
	return bridge.Theme{Mode: p.Mode, Accent: p.Accent}
}

func (p Preset) validate() error {
	if !idPattern.MatchString(p.ID) {
		return fmt.Errorf("invalid theme id %q", p.ID)
	}
	if err := p.Theme().Validate(); err != nil {
		return err
	}
	if !accentPattern.MatchString(p.Accent) {
		return fmt.Errorf("invalid accent %q", p.Accent)
	}
	return nil
}

var builtIns = []Preset{
	{ID: "bitcoin-dark", Name: "Bitcoin Dark", Mode: bridge.ThemeDark, Accent: "#f7931a", BuiltIn: true},
	{ID: "bitcoin-light", Name: "Bitcoin Light", Mode: bridge.ThemeLight, Accent: "#f7931a", BuiltIn: true},
	{ID: "terminal", Name: "Terminal", Mode: bridge.ThemeDark, Accent: "#39ff14", BuiltIn: true},
}

// Provider is the "theme" service. Custom presets and the active theme
// survive restarts through the store.
type Provider struct {
	store   storage.Store
	applier Applier
	logger  *zap.Logger

	mu      sync.RWMutex
	presets map[string]Preset
}

// NewProvider creates the theme provider
func NewProvider(store storage.Store, applier Applier, logger *zap.Logger) *Provider {
	p := &Provider{
		store:   store,
		applier: applier,
		logger:  logging.OrNop(logger).Named("theme"),
		presets: make(map[string]Preset, len(builtIns)),
	}
	for _, b := range builtIns {
		p.presets[b.ID] = b
	}
	return p
}

// Restore loads custom presets and reapplies the persisted theme
func (p *Provider) Restore(ctx context.Context) error {
	custom, skipped, err := storage.ListJSON[Preset](ctx, p.store, storage.BucketThemes)
	if err != nil {
		return fmt.Errorf("load themes: %w", err)
	}
	if skipped > 0 {
		p.logger.Warn("Skipped unreadable themes", zap.Int("count", skipped))
	}
	p.mu.Lock()
	for _, c := range custom {
		if c.validate() == nil {
			c.BuiltIn = false
			p.presets[c.ID] = c
		}
	}
	p.mu.Unlock()

	var current bridge.Theme
	err = storage.GetJSON(ctx, p.store, storage.BucketSettings, currentKey, &current)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load current theme: %w", err)
	}
	if err := p.applier.SetTheme(ctx, current); err != nil {
		p.logger.Warn("Ignoring persisted theme", zap.Error(err))
	}
	return nil
}

// Definition returns service metadata
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:           "theme",
		Name:         "Theme",
		Description:  "Shell appearance shared with every app window",
		Category:     types.CategoryShell,
		Capabilities: []string{"list", "apply", "customize"},
		Tools: []types.Tool{
			{ID: "theme.list", Name: "List Themes", Description: "List built-in and custom presets", Returns: "array"},
			{ID: "theme.current", Name: "Current Theme", Description: "Get the active theme", Returns: "object"},
			{
				ID:          "theme.get",
				Name:        "Get Theme",
				Description: "Get a preset by ID",
				Parameters: []types.Parameter{
					{Name: "id", Type: "string", Description: "Preset ID", Required: true},
				},
				Returns: "object",
			},
			{
				ID:          "theme.set",
				Name:        "Apply Theme",
				Description: "Apply a preset, or an explicit mode and accent",
				Parameters: []types.Parameter{
					{Name: "id", Type: "string", Description: "Preset ID", Required: false},
					{Name: "mode", Type: "string", Description: "light or dark", Required: false},
					{Name: "accent", Type: "string", Description: "Accent color (#rrggbb)", Required: false},
				},
				Returns: "object",
			},
			{
				ID:          "theme.create",
				Name:        "Create Theme",
				Description: "Save a custom preset",
				Parameters: []types.Parameter{
					{Name: "id", Type: "string", Description: "Preset ID", Required: true},
					{Name: "name", Type: "string", Description: "Display name", Required: true},
					{Name: "mode", Type: "string", Description: "light or dark", Required: true},
					{Name: "accent", Type: "string", Description: "Accent color (#rrggbb)", Required: true},
				},
				Returns: "object",
			},
			{
				ID:          "theme.delete",
				Name:        "Delete Theme",
				Description: "Remove a custom preset",
				Parameters: []types.Parameter{
					{Name: "id", Type: "string", Description: "Preset ID", Required: true},
				},
				Returns: "boolean",
			},
		},
	}
}

// Execute runs a theme operation
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	switch toolID {
	case "theme.list":
		return types.Success(map[string]interface{}{"themes": p.list()})
	case "theme.current":
		return types.Success(map[string]interface{}{"theme": p.applier.Theme()})
	case "theme.get":
		return p.get(params)
	case "theme.set":
		return p.set(ctx, params)
	case "theme.create":
		return p.create(ctx, params)
	case "theme.delete":
		return p.remove(ctx, params)
	default:
		return types.Failure(fmt.Sprintf("unknown action: %s", toolID))
	}
}

func (p *Provider) list() []Preset {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]Preset, 0, len(p.presets))
	for _, preset := range p.presets {
		out = append(out, preset)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BuiltIn != out[j].BuiltIn {
			return out[i].BuiltIn
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (p *Provider) lookup(id string) (Preset, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	preset, ok := p.presets[id]
	return preset, ok
}

func (p *Provider) get(params map[string]interface{}) (*types.Result, error) {
	id := utils.StringParam(params, "id")
	if id == "" {
		return types.Failure("id required")
	}
	preset, ok := p.lookup(id)
	if !ok {
		return types.FailureStatus(http.StatusNotFound, fmt.Sprintf("theme not found: %s", id))
	}
	return types.Success(map[string]interface{}{"theme": preset})
}

func (p *Provider) set(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	var next bridge.Theme
	if id := utils.StringParam(params, "id"); id != "" {
		preset, ok := p.lookup(id)
		if !ok {
			return types.FailureStatus(http.StatusNotFound, fmt.Sprintf("theme not found: %s", id))
		}
		next = preset.Theme()
	} else {
		next = p.applier.Theme()
		if mode := utils.StringParam(params, "mode"); mode != "" {
			next.Mode = bridge.ThemeMode(strings.ToLower(mode))
		}
		if accent := utils.StringParam(params, "accent"); accent != "" {
			next.Accent = accent
		}
	}

	if err := p.Apply(ctx, next); err != nil {
		if errors.Is(err, ErrInvalid) {
			return types.Failure(err.Error())
		}
		return nil, err
	}
	return types.Success(map[string]interface{}{"theme": next})
}

// Apply validates theme, pushes it to every app and persists it as the
// active theme.
func (p *Provider) Apply(ctx context.Context, theme bridge.Theme) error {
	if theme.Accent != "" && !accentPattern.MatchString(theme.Accent) {
		return fmt.Errorf("%w: accent %q", ErrInvalid, theme.Accent)
	}
	if err := theme.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := p.applier.SetTheme(ctx, theme); err != nil {
		return err
	}
	if err := storage.PutJSON(ctx, p.store, storage.BucketSettings, currentKey, theme); err != nil {
		return fmt.Errorf("persist theme: %w", err)
	}
	p.logger.Info("Theme applied", zap.String("mode", string(theme.Mode)), zap.String("accent", theme.Accent))
	return nil
}

func (p *Provider) create(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	preset := Preset{
		ID:     utils.StringParam(params, "id"),
		Name:   strings.TrimSpace(utils.StringParam(params, "name")),
		Mode:   bridge.ThemeMode(strings.ToLower(utils.StringParam(params, "mode"))),
		Accent: utils.StringParam(params, "accent"),
	}
	if err := utils.ValidateString(preset.Name, "name", 1, 64, true); err != nil {
		return types.Failure(err.Error())
	}
	if err := preset.validate(); err != nil {
		return types.Failure(err.Error())
	}
	if existing, ok := p.lookup(preset.ID); ok && existing.BuiltIn {
		return types.FailureStatus(http.StatusConflict, fmt.Sprintf("cannot replace built-in theme: %s", preset.ID))
	}

	if err := storage.PutJSON(ctx, p.store, storage.BucketThemes, preset.ID, preset); err != nil {
		return nil, fmt.Errorf("save theme: %w", err)
	}
	p.mu.Lock()
	p.presets[preset.ID] = preset
	p.mu.Unlock()
	return types.Success(map[string]interface{}{"theme": preset})
}

func (p *Provider) remove(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	id := utils.StringParam(params, "id")
	preset, ok := p.lookup(id)
	if !ok {
		return types.FailureStatus(http.StatusNotFound, fmt.Sprintf("theme not found: %s", id))
	}
	if preset.BuiltIn {
		return types.FailureStatus(http.StatusConflict, fmt.Sprintf("cannot delete built-in theme: %s", id))
	}

	if err := p.store.Delete(ctx, storage.BucketThemes, id); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("delete theme: %w", err)
	}
	p.mu.Lock()
	delete(p.presets, id)
	p.mu.Unlock()
	return types.Success(map[string]interface{}{"deleted": true})
}
