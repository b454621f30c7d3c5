package workspace

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func file(path string) *FileNode {
	return &FileNode{Name: DisplayName(path), Path: path, Kind: KindFile}
}

func folder(path string, children ...*FileNode) *FileNode {
	return &FileNode{Name: DisplayName(path), Path: path, Kind: KindFolder, Children: children}
}

func projectRoots() []*FileNode {
	return []*FileNode{
		folder("/src",
			file("/src/App.tsx"),
			file("/src/index.tsx"),
			file("/src/styles.css"),
			folder("/src/components", file("/src/components/Button.tsx")),
		),
		folder("/public", file("/public/index.html")),
		folder("/empty"),
		file("/package.json"),
		file("/README.md"),
	}
}

func newTestTree(t *testing.T) *Tree {
	t.Helper()
	tree, err := NewTree(projectRoots())
	require.NoError(t, err)
	return tree
}

// countingSeed returns a seed that records how often each path was seeded.
func countingSeed(calls map[string]int) SeedFunc {
	return func(path string) string {
		calls[path]++
		return "seed:" + path
	}
}

func newTestSession(t *testing.T) (*Session, map[string]int) {
	t.Helper()
	calls := map[string]int{}
	return New(newTestTree(t), countingSeed(calls)), calls
}

func visiblePaths(tree *Tree) []string {
	paths := []string{}
	for n := range tree.Traverse() {
		paths = append(paths, n.Path)
	}
	return paths
}
