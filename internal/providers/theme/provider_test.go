package theme

import (
	"context"
	"net/http"
	"testing"

	"github.com/bitcoin-os/shell/internal/bridge"
	"github.com/bitcoin-os/shell/internal/infrastructure/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingApplier struct {
	theme   bridge.Theme
	applied []bridge.Theme
}

func (r *recordingApplier) Theme() bridge.Theme { return r.theme }

func (r *recordingApplier) SetTheme(ctx context.Context, theme bridge.Theme) error {
	if err := theme.Validate(); err != nil {
		return err
	}
	r.theme = theme
	r.applied = append(r.applied, theme)
	return nil
}

func newTestProvider(t *testing.T) (*Provider, *recordingApplier, storage.Store) {
	t.Helper()
	store := storage.NewMemory()
	applier := &recordingApplier{theme: bridge.DefaultTheme}
	return NewProvider(store, applier, nil), applier, store
}

func TestListBuiltIns(t *testing.T) {
	p, _, _ := newTestProvider(t)
	res, err := p.Execute(context.Background(), "theme.list", nil, nil)
	require.NoError(t, err)
	themes := res.Data["themes"].([]Preset)
	require.Len(t, themes, len(builtIns))
	assert.Equal(t, "bitcoin-dark", themes[0].ID)
}

func TestSetPresetPersistsAndApplies(t *testing.T) {
	p, applier, store := newTestProvider(t)
	ctx := context.Background()

	res, err := p.Execute(ctx, "theme.set", map[string]interface{}{"id": "bitcoin-light"}, nil)
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, bridge.ThemeLight, applier.theme.Mode)

	var saved bridge.Theme
	require.NoError(t, storage.GetJSON(ctx, store, storage.BucketSettings, currentKey, &saved))
	assert.Equal(t, applier.theme, saved)
}

func TestSetExplicitFields(t *testing.T) {
	p, applier, _ := newTestProvider(t)
	ctx := context.Background()

	res, err := p.Execute(ctx, "theme.set", map[string]interface{}{"accent": "#123456"}, nil)
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, bridge.Theme{Mode: bridge.ThemeDark, Accent: "#123456"}, applier.theme)

	res, err = p.Execute(ctx, "theme.set", map[string]interface{}{"mode": "sepia"}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, res.HTTPStatus())

	res, err = p.Execute(ctx, "theme.set", map[string]interface{}{"accent": "orange"}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, res.HTTPStatus())

	res, err = p.Execute(ctx, "theme.set", map[string]interface{}{"id": "missing"}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, res.HTTPStatus())
	assert.Len(t, applier.applied, 1)
}

func TestCustomPresetLifecycle(t *testing.T) {
	p, _, store := newTestProvider(t)
	ctx := context.Background()

	res, err := p.Execute(ctx, "theme.create", map[string]interface{}{
		"id": "satoshi", "name": "Satoshi", "mode": "Light", "accent": "#00aa55",
	}, nil)
	require.NoError(t, err)
	require.True(t, res.Success)

	res, err = p.Execute(ctx, "theme.get", map[string]interface{}{"id": "satoshi"}, nil)
	require.NoError(t, err)
	assert.Equal(t, bridge.ThemeLight, res.Data["theme"].(Preset).Mode)

	_, err = store.Get(ctx, storage.BucketThemes, "satoshi")
	require.NoError(t, err)

	res, err = p.Execute(ctx, "theme.delete", map[string]interface{}{"id": "satoshi"}, nil)
	require.NoError(t, err)
	require.True(t, res.Success)

	res, err = p.Execute(ctx, "theme.get", map[string]interface{}{"id": "satoshi"}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, res.HTTPStatus())
}

func TestBuiltInsAreProtected(t *testing.T) {
	p, _, _ := newTestProvider(t)
	ctx := context.Background()

	res, err := p.Execute(ctx, "theme.delete", map[string]interface{}{"id": "terminal"}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, res.HTTPStatus())

	res, err = p.Execute(ctx, "theme.create", map[string]interface{}{
		"id": "terminal", "name": "Mine", "mode": "dark", "accent": "#000000",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, res.HTTPStatus())

	res, err = p.Execute(ctx, "theme.create", map[string]interface{}{
		"id": "Bad Id", "name": "Mine", "mode": "dark", "accent": "#000000",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, res.HTTPStatus())
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	require.NoError(t, storage.PutJSON(ctx, store, storage.BucketThemes, "ocean",
		Preset{ID: "ocean", Name: "Ocean", Mode: bridge.ThemeDark, Accent: "#0077be"}))
	require.NoError(t, storage.PutJSON(ctx, store, storage.BucketSettings, currentKey,
		bridge.Theme{Mode: bridge.ThemeLight, Accent: "#0077be"}))

	applier := &recordingApplier{theme: bridge.DefaultTheme}
	p := NewProvider(store, applier, nil)
	require.NoError(t, p.Restore(ctx))

	assert.Equal(t, bridge.ThemeLight, applier.theme.Mode)
	_, ok := p.lookup("ocean")
	assert.True(t, ok)
}

func TestRestoreEmptyStore(t *testing.T) {
	p, applier, _ := newTestProvider(t)
	require.NoError(t, p.Restore(context.Background()))
	assert.Empty(t, applier.applied)
}
