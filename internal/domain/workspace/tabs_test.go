package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertTabInvariant checks that the active tab is empty exactly when no
// tabs are open, and is one of the open tabs otherwise.
func assertTabInvariant(t *testing.T, tabs *Tabs) {
	t.Helper()
	if tabs.Len() == 0 {
		assert.Empty(t, tabs.ActiveTab())
		return
	}
	assert.Contains(t, tabs.OpenTabs(), tabs.ActiveTab())
}

func openAll(t *testing.T, tabs *Tabs, paths ...string) {
	t.Helper()
	for _, p := range paths {
		require.NoError(t, tabs.Open(p))
	}
}

const (
	pathA = "/src/App.tsx"
	pathB = "/src/index.tsx"
	pathC = "/README.md"
)

func TestOpen(t *testing.T) {
	tabs := NewTabs(newTestTree(t))

	require.NoError(t, tabs.Open(pathA))

	assert.Equal(t, []string{pathA}, tabs.OpenTabs())
	assert.Equal(t, pathA, tabs.ActiveTab())
	assertTabInvariant(t, tabs)
}

func TestOpenTwiceKeepsOrder(t *testing.T) {
	tabs := NewTabs(newTestTree(t))
	openAll(t, tabs, pathA, pathB)

	require.NoError(t, tabs.Open(pathA))

	assert.Equal(t, []string{pathA, pathB}, tabs.OpenTabs())
	assert.Equal(t, pathA, tabs.ActiveTab())
}

func TestOpenRejectsFoldersAndMissing(t *testing.T) {
	tabs := NewTabs(newTestTree(t))

	assert.ErrorIs(t, tabs.Open("/src"), ErrNotFound)
	assert.ErrorIs(t, tabs.Open("/nope.ts"), ErrNotFound)
	assert.Zero(t, tabs.Len())
	assertTabInvariant(t, tabs)
}

func TestActivate(t *testing.T) {
	tabs := NewTabs(newTestTree(t))
	openAll(t, tabs, pathA, pathB)

	require.NoError(t, tabs.Activate(pathA))
	assert.Equal(t, pathA, tabs.ActiveTab())

	assert.ErrorIs(t, tabs.Activate(pathC), ErrNotOpen)
	assert.ErrorIs(t, tabs.Activate("/gone.ts"), ErrNotFound)
	assert.Equal(t, pathA, tabs.ActiveTab())
}

func TestCloseOrder(t *testing.T) {
	tabs := NewTabs(newTestTree(t))
	openAll(t, tabs, pathA, pathB, pathC)

	assert.True(t, tabs.Close(pathB))

	assert.Equal(t, []string{pathA, pathC}, tabs.OpenTabs())
	assertTabInvariant(t, tabs)
}

func TestCloseActiveSelectsNeighbour(t *testing.T) {
	tests := []struct {
		name       string
		active     string
		close      string
		wantActive string
		wantTabs   []string
	}{
		{"middle picks left", pathB, pathB, pathA, []string{pathA, pathC}},
		{"first picks new first", pathA, pathA, pathB, []string{pathB, pathC}},
		{"last picks left", pathC, pathC, pathB, []string{pathA, pathB}},
		{"inactive keeps active", pathC, pathA, pathC, []string{pathB, pathC}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tabs := NewTabs(newTestTree(t))
			openAll(t, tabs, pathA, pathB, pathC)
			require.NoError(t, tabs.Activate(tt.active))

			tabs.Close(tt.close)

			assert.Equal(t, tt.wantTabs, tabs.OpenTabs())
			assert.Equal(t, tt.wantActive, tabs.ActiveTab())
			assertTabInvariant(t, tabs)
		})
	}
}

func TestCloseLastTab(t *testing.T) {
	tabs := NewTabs(newTestTree(t))
	openAll(t, tabs, pathA)

	tabs.Close(pathA)

	assert.Empty(t, tabs.OpenTabs())
	assert.Empty(t, tabs.ActiveTab())
}

func TestCloseNotOpenIsNoop(t *testing.T) {
	tabs := NewTabs(newTestTree(t))
	openAll(t, tabs, pathA, pathB)

	assert.False(t, tabs.Close(pathC))
	assert.False(t, tabs.Close("/never/existed"))

	assert.Equal(t, []string{pathA, pathB}, tabs.OpenTabs())
	assert.Equal(t, pathB, tabs.ActiveTab())
}

func TestOpenTabsReturnsCopy(t *testing.T) {
	tabs := NewTabs(newTestTree(t))
	openAll(t, tabs, pathA)

	got := tabs.OpenTabs()
	got[0] = "mutated"

	assert.Equal(t, []string{pathA}, tabs.OpenTabs())
}

func TestTabInvariantUnderRandomCommands(t *testing.T) {
	tabs := NewTabs(newTestTree(t))
	paths := []string{pathA, pathB, pathC, "/package.json", "/src"}

	// Deterministic walk over open/activate/close combinations.
	for i := 0; i < 200; i++ {
		p := paths[(i*7+i/3)%len(paths)]
		switch i % 3 {
		case 0:
			_ = tabs.Open(p)
		case 1:
			_ = tabs.Activate(p)
		case 2:
			tabs.Close(p)
		}
		assertTabInvariant(t, tabs)
	}
}
