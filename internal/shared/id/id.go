// Package id provides centralized ID generation for the shell backend.
//
// Every ID is a ULID with a type prefix (win_*, desk_*, req_*), so IDs sort by
// creation time and read clearly in logs. Separate string types keep a window
// ID from being passed where a session ID is expected.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// WindowID identifies an open window on the desktop
type WindowID string

// SessionID identifies a saved desktop layout
type SessionID string

// RequestID identifies an API request
type RequestID string

// ChallengeID identifies an outstanding auth challenge
type ChallengeID string

// FileID identifies a drive file
type FileID string

const (
	WindowPrefix    = "win"
	SessionPrefix   = "desk"
	RequestPrefix   = "req"
	ChallengePrefix = "chal"
	FilePrefix      = "file"
)

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the process-wide generator
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by crypto/rand
func NewGenerator() *Generator {
	return &Generator{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateString creates a new ULID as a string
func (g *Generator) GenerateString() string {
	return g.Generate().String()
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.GenerateString())
}

// NewWindowID generates a new window ID
func NewWindowID() WindowID {
	return WindowID(Default().GenerateWithPrefix(WindowPrefix))
}

// NewSessionID generates a new desktop session ID
func NewSessionID() SessionID {
	return SessionID(Default().GenerateWithPrefix(SessionPrefix))
}

// NewRequestID generates a new request ID
func NewRequestID() RequestID {
	return RequestID(Default().GenerateWithPrefix(RequestPrefix))
}

// NewChallengeID generates a new challenge ID
func NewChallengeID() ChallengeID {
	return ChallengeID(Default().GenerateWithPrefix(ChallengePrefix))
}

// NewFileID generates a new drive file ID
func NewFileID() FileID {
	return FileID(Default().GenerateWithPrefix(FilePrefix))
}

func (id WindowID) String() string    { return string(id) }
func (id SessionID) String() string   { return string(id) }
func (id RequestID) String() string   { return string(id) }
func (id ChallengeID) String() string { return string(id) }
func (id FileID) String() string      { return string(id) }

// IsValid checks if an ID string is a valid ULID
func IsValid(id string) bool {
	_, err := ulid.Parse(id)
	return err == nil
}

// HasPrefix reports whether a prefixed ID carries the given prefix and a valid ULID
func HasPrefix(id, prefix string) bool {
	rest, ok := strings.CutPrefix(id, prefix+"_")
	return ok && IsValid(rest)
}
