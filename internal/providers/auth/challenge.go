package auth

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/bitcoin-os/shell/internal/shared/id"
)

// Challenge is a one-time nonce a wallet signs to prove key ownership
type Challenge struct {
	Value     string    `json:"challenge"`
	ExpiresAt time.Time `json:"expires_at"`
}

type challenges struct {
	mu      sync.Mutex
	pending map[string]time.Time
	ttl     time.Duration
	now     func() time.Time
}

func newChallenges(ttl time.Duration, now func() time.Time) *challenges {
	return &challenges{pending: make(map[string]time.Time), ttl: ttl, now: now}
}

func (c *challenges) issue() (Challenge, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return Challenge{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	c.prune(now)

	value := "bitcoin-os:" + id.NewChallengeID().String() + ":" + hex.EncodeToString(nonce)
	expires := now.Add(c.ttl)
	c.pending[value] = expires
	return Challenge{Value: value, ExpiresAt: expires}, nil
}

// outstanding reports whether value was issued and has not expired
func (c *challenges) outstanding(value string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	expires, ok := c.pending[value]
	return ok && c.now().Before(expires)
}

// consume removes value; it returns false when another caller got there first
func (c *challenges) consume(value string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	expires, ok := c.pending[value]
	delete(c.pending, value)
	return ok && c.now().Before(expires)
}

func (c *challenges) prune(now time.Time) {
	for value, expires := range c.pending {
		if !now.Before(expires) {
			delete(c.pending, value)
		}
	}
}

func (c *challenges) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
