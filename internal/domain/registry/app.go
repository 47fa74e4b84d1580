package registry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bitcoin-os/shell/internal/shared/utils"
)

// ErrAppNotFound is returned for ids missing from the registry.
var ErrAppNotFound = errors.New("app not found")

// Environment selects which URL an app resolves to.
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
	Test        Environment = "test"
)

// ParseEnvironment reads a NODE_ENV style value. Unknown values mean development.
func ParseEnvironment(s string) Environment {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "production", "prod":
		return Production
	case "test":
		return Test
	default:
		return Development
	}
}

// AppDescriptor is a static catalog entry for one bApp.
type AppDescriptor struct {
	ID          string `json:"id" yaml:"id" toml:"id"`
	Name        string `json:"name" yaml:"name" toml:"name"`
	Description string `json:"description,omitempty" yaml:"description" toml:"description"`
	Icon        string `json:"icon,omitempty" yaml:"icon" toml:"icon"`
	Color       string `json:"color,omitempty" yaml:"color" toml:"color"`
	URL         string `json:"url" yaml:"url" toml:"url"`
	DevURL      string `json:"dev_url,omitempty" yaml:"dev_url" toml:"dev_url"`
	DevPort     int    `json:"dev_port,omitempty" yaml:"dev_port" toml:"dev_port"`
	Category    string `json:"category,omitempty" yaml:"category" toml:"category"`
	IsExternal  bool   `json:"is_external,omitempty" yaml:"is_external" toml:"is_external"`
	ChromeAppID string `json:"chrome_app_id,omitempty" yaml:"chrome_app_id" toml:"chrome_app_id"`
	Pinned      bool   `json:"pinned,omitempty" yaml:"pinned" toml:"pinned"`
}

// URLFor returns the app URL for env. Development prefers the local dev
// server and falls back to the hosted URL; production does the reverse.
func (a AppDescriptor) URLFor(env Environment) string {
	dev := a.DevURL
	if dev == "" && a.DevPort > 0 {
		dev = "http://localhost:" + strconv.Itoa(a.DevPort)
	}

	if env == Production {
		if a.URL != "" {
			return a.URL
		}
		return dev
	}
	if dev != "" {
		return dev
	}
	return a.URL
}

// Validate checks the descriptor fields.
func (a AppDescriptor) Validate() error {
	if err := utils.ValidateID(a.ID, "id", true); err != nil {
		return err
	}
	if err := utils.ValidateName(a.Name, "name"); err != nil {
		return fmt.Errorf("%s: %w", a.ID, err)
	}
	if a.URL == "" && a.DevURL == "" && a.DevPort == 0 {
		return fmt.Errorf("%s: url, dev_url or dev_port is required", a.ID)
	}
	if a.URL != "" {
		if err := utils.ValidateURL(a.URL, "url"); err != nil {
			return fmt.Errorf("%s: %w", a.ID, err)
		}
	}
	if a.DevURL != "" {
		if err := utils.ValidateURL(a.DevURL, "dev_url"); err != nil {
			return fmt.Errorf("%s: %w", a.ID, err)
		}
	}
	if a.DevPort < 0 || a.DevPort > 65535 {
		return fmt.Errorf("%s: dev_port %d out of range", a.ID, a.DevPort)
	}
	return nil
}
