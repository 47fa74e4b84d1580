package session

import (
	"time"

	"github.com/bitcoin-os/shell/internal/domain/window"
)

// DefaultID is the id SaveDefault writes to.
const DefaultID = "default"

// Session is a saved desktop layout.
type Session struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Workspace   Workspace `json:"workspace"`
}

// Workspace is the captured window layout.
type Workspace struct {
	Windows  []window.Placement `json:"windows"`
	Viewport window.Viewport    `json:"viewport"`
}

// Metadata contains summary information
type Metadata struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	WindowCount int       `json:"window_count"`
}

// ToMetadata extracts metadata from session
func (s *Session) ToMetadata() Metadata {
	return Metadata{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
		WindowCount: len(s.Workspace.Windows),
	}
}

// Stats contains session manager statistics
type Stats struct {
	TotalSessions int        `json:"total_sessions"`
	LastSaved     *time.Time `json:"last_saved,omitempty"`
	LastRestored  *time.Time `json:"last_restored,omitempty"`
}

// RestoreResult reports a restore.
type RestoreResult struct {
	Session *Session `json:"session"`
	Skipped []string `json:"skipped,omitempty"`
}
