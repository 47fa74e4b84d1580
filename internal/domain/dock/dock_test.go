package dock

import (
	"testing"

	"github.com/bitcoin-os/shell/internal/domain/registry"
	"github.com/bitcoin-os/shell/internal/domain/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var apps = []registry.AppDescriptor{
	{ID: "wallet", Name: "Wallet", Pinned: true, URL: "https://w.app"},
	{ID: "email", Name: "Email", Pinned: true, URL: "https://e.app"},
	{ID: "jobs", Name: "Jobs", URL: "https://j.app"},
	{ID: "music", Name: "Music", URL: "https://m.app"},
}

func ids(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.AppID)
	}
	return out
}

func TestDock(t *testing.T) {
	windows := []*window.Window{
		{ID: "win_1", AppID: "music", Mode: window.ModeNormal, Active: true},
		{ID: "win_2", AppID: "email", Mode: window.ModeMinimized},
	}

	items := Dock(apps, windows, nil)
	require.Equal(t, []string{"wallet", "email", "music"}, ids(items))

	assert.False(t, items[0].Open)
	assert.True(t, items[1].Open)
	assert.True(t, items[1].Minimized)
	assert.False(t, items[1].Active)
	assert.True(t, items[2].Active)
	assert.Equal(t, "win_1", items[2].WindowID)
}

func TestDockWithoutPinnedShowsAll(t *testing.T) {
	unpinned := []registry.AppDescriptor{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}
	assert.Equal(t, []string{"a", "b"}, ids(Dock(unpinned, nil, nil)))
}

func TestTaskbarOpenOrder(t *testing.T) {
	windows := []*window.Window{
		{ID: "win_1", AppID: "jobs"},
		{ID: "win_2", AppID: "wallet", Active: true},
		{ID: "win_3", AppID: "gone", AppName: "Removed App"},
	}

	items := Taskbar(apps, windows, nil)
	require.Equal(t, []string{"jobs", "wallet", "gone"}, ids(items))
	assert.True(t, items[1].Active)
	assert.Equal(t, "Removed App", items[2].Name)
}

func TestDrawer(t *testing.T) {
	resolve := func(id string) (string, error) { return "https://" + id + ".example", nil }

	items := Drawer(apps, nil, "", resolve)
	assert.Equal(t, []string{"email", "jobs", "music", "wallet"}, ids(items))
	assert.Equal(t, "https://email.example", items[0].URL)

	assert.Equal(t, []string{"music"}, ids(Drawer(apps, nil, "MUS", resolve)))
	assert.Equal(t, []string{"wallet"}, ids(Drawer(apps, nil, " wall ", resolve)))
	assert.Empty(t, Drawer(apps, nil, "zzz", resolve))
}
