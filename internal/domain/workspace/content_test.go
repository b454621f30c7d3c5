package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSeedsOnce(t *testing.T) {
	store := NewContentStore(newTestTree(t))
	calls := map[string]int{}
	seed := countingSeed(calls)

	first := store.Read("/src/App.tsx", seed)
	second := store.Read("/src/App.tsx", seed)

	assert.Equal(t, "seed:/src/App.tsx", first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls["/src/App.tsx"])
	assert.False(t, store.Modified("/src/App.tsx"))
}

func TestReadWithoutSeed(t *testing.T) {
	store := NewContentStore(newTestTree(t))

	assert.Equal(t, "", store.Read("/README.md", nil))
	assert.True(t, store.Has("/README.md"))
}

func TestWriteThenRead(t *testing.T) {
	store := NewContentStore(newTestTree(t))
	calls := map[string]int{}

	require.NoError(t, store.Write("/README.md", "x"))

	assert.Equal(t, "x", store.Read("/README.md", countingSeed(calls)))
	assert.Zero(t, calls["/README.md"])
	assert.True(t, store.Modified("/README.md"))
}

func TestWriteOverwritesSeeded(t *testing.T) {
	store := NewContentStore(newTestTree(t))
	seed := countingSeed(map[string]int{})

	store.Read("/package.json", seed)
	require.NoError(t, store.Write("/package.json", "{}"))

	assert.Equal(t, "{}", store.Read("/package.json", seed))
	assert.Equal(t, 1, store.Len())
}

func TestWriteRejectsNonFiles(t *testing.T) {
	store := NewContentStore(newTestTree(t))

	for _, path := range []string{"/src", "/missing.ts", RootPath} {
		t.Run(path, func(t *testing.T) {
			err := store.Write(path, "x")
			assert.ErrorIs(t, err, ErrInvalidPath)
			assert.False(t, store.Has(path))
		})
	}
	assert.Zero(t, store.Len())
}
