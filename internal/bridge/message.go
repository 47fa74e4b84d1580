package bridge

import "fmt"

// Type identifies a bridge message. The set is closed.
type Type string

const (
	TypeAppReady     Type = "app-ready"
	TypeOSConfig     Type = "os-config"
	TypeNavigateHome Type = "navigate-home"
	TypeThemeChange  Type = "theme-change"
	TypeInsertAIText Type = "INSERT_AI_TEXT"
)

// Types returns every message type in a fixed order.
func Types() []Type {
	return []Type{TypeAppReady, TypeOSConfig, TypeNavigateHome, TypeThemeChange, TypeInsertAIText}
}

// Valid reports whether t is a known message type.
func (t Type) Valid() bool {
	switch t {
	case TypeAppReady, TypeOSConfig, TypeNavigateHome, TypeThemeChange, TypeInsertAIText:
		return true
	}
	return false
}

// Message is one of AppReady, OSConfig, NavigateHome, ThemeChange or InsertAIText.
type Message interface {
	Type() Type
	isMessage()
}

// ThemeMode is the shell color scheme.
type ThemeMode string

const (
	ThemeLight ThemeMode = "light"
	ThemeDark  ThemeMode = "dark"
)

// Theme is the visual theme pushed from the shell to apps.
type Theme struct {
	Mode   ThemeMode `json:"mode"`
	Accent string    `json:"accent,omitempty"`
}

// DefaultTheme is applied before any config arrives.
var DefaultTheme = Theme{Mode: ThemeDark, Accent: "#f7931a"}

// Validate checks the theme mode.
func (t Theme) Validate() error {
	switch t.Mode {
	case ThemeLight, ThemeDark:
		return nil
	}
	return fmt.Errorf("invalid theme mode %q", t.Mode)
}

// AppReady is sent by an app once it has loaded.
type AppReady struct {
	AppID   string `json:"appId,omitempty"`
	Version string `json:"version,omitempty"`
}

// OSConfig is sent by the shell in reply to app-ready.
type OSConfig struct {
	Theme       Theme           `json:"theme"`
	TopInset    int             `json:"topInset"`
	ShowMenuBar bool            `json:"showMenuBar"`
	Locale      string          `json:"locale,omitempty"`
	Features    map[string]bool `json:"features,omitempty"`
}

// NavigateHome asks the shell to return to the desktop.
type NavigateHome struct{}

// ThemeChange announces a new theme.
type ThemeChange struct {
	Theme Theme `json:"theme"`
}

// InsertAIText asks the focused app to insert generated text.
type InsertAIText struct {
	Text   string `json:"text"`
	Target string `json:"target,omitempty"`
}

func (AppReady) Type() Type     { return TypeAppReady }
func (OSConfig) Type() Type     { return TypeOSConfig }
func (NavigateHome) Type() Type { return TypeNavigateHome }
func (ThemeChange) Type() Type  { return TypeThemeChange }
func (InsertAIText) Type() Type { return TypeInsertAIText }

func (AppReady) isMessage()     {}
func (OSConfig) isMessage()     {}
func (NavigateHome) isMessage() {}
func (ThemeChange) isMessage()  {}
func (InsertAIText) isMessage() {}
