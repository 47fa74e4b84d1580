package id

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	gen := NewGenerator()

	id1 := gen.Generate()
	id2 := gen.Generate()

	assert.NotEqual(t, id1.String(), id2.String())
	assert.Len(t, gen.GenerateString(), 26)
}

func TestGenerateWithPrefix(t *testing.T) {
	gen := NewGenerator()

	for _, prefix := range []string{WindowPrefix, SessionPrefix, RequestPrefix} {
		got := gen.GenerateWithPrefix(prefix)

		require.True(t, strings.HasPrefix(got, prefix+"_"), got)
		assert.True(t, HasPrefix(got, prefix))
	}
}

func TestTypedIDs(t *testing.T) {
	assert.True(t, HasPrefix(NewWindowID().String(), "win"))
	assert.True(t, HasPrefix(NewSessionID().String(), "desk"))
	assert.True(t, HasPrefix(NewRequestID().String(), "req"))
	assert.True(t, HasPrefix(NewChallengeID().String(), "chal"))
	assert.True(t, HasPrefix(NewFileID().String(), "file"))
	assert.False(t, HasPrefix("win_not-a-ulid", "win"))
}

func TestMonotonicOrder(t *testing.T) {
	gen := NewGenerator()

	prev := gen.GenerateString()
	for i := 0; i < 100; i++ {
		next := gen.GenerateString()
		assert.Less(t, prev, next)
		prev = next
	}
}

func TestConcurrentGeneration(t *testing.T) {
	gen := NewGenerator()
	seen := sync.Map{}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, dup := seen.LoadOrStore(gen.GenerateString(), true)
				assert.False(t, dup)
			}
		}()
	}
	wg.Wait()
}
