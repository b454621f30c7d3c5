package id

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateUnique(t *testing.T) {
	gen := NewGenerator()
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		s := gen.Generate().String()
		require.False(t, seen[s], "duplicate id %s", s)
		seen[s] = true
	}
}

func TestGenerateSortable(t *testing.T) {
	gen := NewGenerator()
	prev := gen.Generate().String()
	for i := 0; i < 100; i++ {
		next := gen.Generate().String()
		assert.Less(t, prev, next)
		prev = next
	}
}

func TestPrefixedIDs(t *testing.T) {
	tests := []struct {
		id     string
		prefix string
	}{
		{NewWorkspaceID().String(), WorkspacePrefix},
		{NewConnID().String(), ConnPrefix},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			assert.True(t, strings.HasPrefix(tt.id, tt.prefix+"_"))
			assert.True(t, HasPrefix(tt.id, tt.prefix))
			assert.False(t, HasPrefix(tt.id, "other"))
		})
	}
}

func TestHasPrefixRejectsGarbage(t *testing.T) {
	assert.False(t, HasPrefix("ws_not-a-ulid", WorkspacePrefix))
	assert.False(t, HasPrefix("", WorkspacePrefix))
	assert.False(t, HasPrefix("ws", WorkspacePrefix))
}

func TestGeneratorWithEntropy(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	gen := NewGeneratorWithEntropy(bytes.NewReader(make([]byte, 1024)))
	gen.now = func() time.Time { return fixed }

	got := gen.Generate()
	assert.True(t, fixed.Equal(ulid.Time(got.Time())))
	assert.Equal(t, ulid.ULID{}.Entropy(), got.Entropy())
}

func TestConcurrentGenerate(t *testing.T) {
	gen := NewGenerator()
	var (
		mu   sync.Mutex
		seen = make(map[string]bool)
		wg   sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s := gen.Generate().String()
				mu.Lock()
				seen[s] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 800)
}
