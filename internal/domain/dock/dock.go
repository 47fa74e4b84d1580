package dock

import (
	"sort"
	"strings"

	"github.com/bitcoin-os/shell/internal/domain/registry"
	"github.com/bitcoin-os/shell/internal/domain/window"
)

// Item is one entry in the dock, taskbar or app drawer.
type Item struct {
	AppID     string `json:"app_id"`
	Name      string `json:"name"`
	Icon      string `json:"icon,omitempty"`
	Color     string `json:"color,omitempty"`
	URL       string `json:"url,omitempty"`
	Open      bool   `json:"open"`
	Active    bool   `json:"active"`
	Minimized bool   `json:"minimized"`
	Pinned    bool   `json:"pinned"`
	WindowID  string `json:"window_id,omitempty"`
}

// Resolver maps an app id to its URL for the running environment.
type Resolver func(appID string) (string, error)

type index map[string]*window.Window

func indexWindows(windows []*window.Window) index {
	idx := make(index, len(windows))
	for _, w := range windows {
		idx[w.AppID] = w
	}
	return idx
}

func item(app registry.AppDescriptor, idx index, resolve Resolver) Item {
	it := Item{
		AppID:  app.ID,
		Name:   app.Name,
		Icon:   app.Icon,
		Color:  app.Color,
		Pinned: app.Pinned,
	}
	if resolve != nil {
		if url, err := resolve(app.ID); err == nil {
			it.URL = url
		}
	}
	if w, ok := idx[app.ID]; ok {
		it.Open = true
		it.Active = w.Active
		it.Minimized = w.Minimized()
		it.WindowID = w.ID.String()
	}
	return it
}

// Dock lists pinned apps in catalog order followed by open apps that are
// not pinned, in open order. With no pinned apps every app is shown.
func Dock(apps []registry.AppDescriptor, windows []*window.Window, resolve Resolver) []Item {
	idx := indexWindows(windows)
	byID := make(map[string]registry.AppDescriptor, len(apps))

	var pinned []registry.AppDescriptor
	for _, app := range apps {
		byID[app.ID] = app
		if app.Pinned {
			pinned = append(pinned, app)
		}
	}
	if len(pinned) == 0 {
		pinned = apps
	}

	out := make([]Item, 0, len(pinned)+len(windows))
	shown := make(map[string]bool, len(pinned))
	for _, app := range pinned {
		out = append(out, item(app, idx, resolve))
		shown[app.ID] = true
	}
	for _, w := range windows {
		if shown[w.AppID] {
			continue
		}
		if app, ok := byID[w.AppID]; ok {
			out = append(out, item(app, idx, resolve))
			shown[w.AppID] = true
		}
	}
	return out
}

// Taskbar lists open apps in open order.
func Taskbar(apps []registry.AppDescriptor, windows []*window.Window, resolve Resolver) []Item {
	idx := indexWindows(windows)
	byID := make(map[string]registry.AppDescriptor, len(apps))
	for _, app := range apps {
		byID[app.ID] = app
	}

	out := make([]Item, 0, len(windows))
	for _, w := range windows {
		app, ok := byID[w.AppID]
		if !ok {
			app = registry.AppDescriptor{ID: w.AppID, Name: w.AppName}
		}
		out = append(out, item(app, idx, resolve))
	}
	return out
}

// Drawer lists every app sorted by name, filtered case-insensitively by
// query against the name and id.
func Drawer(apps []registry.AppDescriptor, windows []*window.Window, query string, resolve Resolver) []Item {
	idx := indexWindows(windows)
	q := strings.ToLower(strings.TrimSpace(query))

	out := make([]Item, 0, len(apps))
	for _, app := range apps {
		if q != "" &&
			!strings.Contains(strings.ToLower(app.Name), q) &&
			!strings.Contains(strings.ToLower(app.ID), q) {
			continue
		}
		out = append(out, item(app, idx, resolve))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}
