package pwa

import (
	"github.com/bitcoin-os/shell/internal/domain/registry"
)

// Manifest is a web app manifest
type Manifest struct {
	Name            string     `json:"name"`
	ShortName       string     `json:"short_name"`
	Description     string     `json:"description"`
	StartURL        string     `json:"start_url"`
	Scope           string     `json:"scope"`
	Display         string     `json:"display"`
	BackgroundColor string     `json:"background_color"`
	ThemeColor      string     `json:"theme_color"`
	Icons           []Icon     `json:"icons"`
	Shortcuts       []Shortcut `json:"shortcuts,omitempty"`
}

// Icon is a manifest icon
type Icon struct {
	Src     string `json:"src"`
	Sizes   string `json:"sizes"`
	Type    string `json:"type"`
	Purpose string `json:"purpose,omitempty"`
}

// Shortcut launches an app from the installed shell's jump list
type Shortcut struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// BuildManifest describes the shell, with shortcuts for pinned apps
func BuildManifest(apps []registry.AppDescriptor) Manifest {
	m := Manifest{
		Name:            "Bitcoin OS",
		ShortName:       "Bitcoin OS",
		Description:     "A desktop for Bitcoin apps",
		StartURL:        "/",
		Scope:           "/",
		Display:         "standalone",
		BackgroundColor: "#000000",
		ThemeColor:      "#f7931a",
		Icons: []Icon{
			{Src: "/icons/icon-192.png", Sizes: "192x192", Type: "image/png"},
			{Src: "/icons/icon-512.png", Sizes: "512x512", Type: "image/png", Purpose: "any maskable"},
		},
	}
	for _, app := range apps {
		if app.Pinned {
			m.Shortcuts = append(m.Shortcuts, Shortcut{Name: app.Name, URL: "/?app=" + app.ID})
		}
	}
	return m
}
