package workspace

import (
	"fmt"
	"iter"
	"maps"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Kind distinguishes files from folders.
type Kind string

const (
	KindFile   Kind = "file"
	KindFolder Kind = "folder"
)

// RootPath is the implicit folder that holds the top-level nodes.
const RootPath = "/"

// FileNode is one entry of the project tree. Nodes are never mutated after
// a Tree is built from them.
type FileNode struct {
	Name     string      `json:"name"`
	Path     string      `json:"path"`
	Kind     Kind        `json:"kind"`
	Children []*FileNode `json:"children,omitempty"`
}

// IsFolder reports whether the node is a folder.
func (n *FileNode) IsFolder() bool {
	return n.Kind == KindFolder
}

// FileLookup resolves a path to a node of the current tree.
type FileLookup interface {
	Lookup(path string) (*FileNode, bool)
}

// Tree is the project hierarchy plus per-folder expansion state.
// It is not safe for concurrent use; Session serializes access.
type Tree struct {
	root     *FileNode
	index    map[string]*FileNode
	expanded map[string]struct{}
}

// NewTree validates roots and builds a tree with only the root expanded.
// The nodes are copied, so later changes to roots do not leak in.
func NewTree(roots []*FileNode) (*Tree, error) {
	root := &FileNode{Name: RootPath, Path: RootPath, Kind: KindFolder}
	index := map[string]*FileNode{RootPath: root}

	children, err := cloneNodes(roots, RootPath, index)
	if err != nil {
		return nil, err
	}
	root.Children = children

	return &Tree{
		root:     root,
		index:    index,
		expanded: map[string]struct{}{RootPath: {}},
	}, nil
}

func cloneNodes(nodes []*FileNode, parent string, index map[string]*FileNode) ([]*FileNode, error) {
	prefix := parent
	if prefix != RootPath {
		prefix += "/"
	}

	out := make([]*FileNode, 0, len(nodes))
	for _, n := range nodes {
		if n == nil {
			return nil, fmt.Errorf("%w: nil node under %s", ErrInvalidTree, parent)
		}
		if n.Name == "" {
			return nil, fmt.Errorf("%w: empty name at %q", ErrInvalidTree, n.Path)
		}
		if !strings.HasPrefix(n.Path, prefix) || len(n.Path) == len(prefix) {
			return nil, fmt.Errorf("%w: path %q is not under %q", ErrInvalidTree, n.Path, parent)
		}
		if _, dup := index[n.Path]; dup {
			return nil, fmt.Errorf("%w: duplicate path %q", ErrInvalidTree, n.Path)
		}

		c := &FileNode{Name: n.Name, Path: n.Path, Kind: n.Kind}
		index[c.Path] = c

		switch n.Kind {
		case KindFile:
			if len(n.Children) > 0 {
				return nil, fmt.Errorf("%w: file %q has children", ErrInvalidTree, n.Path)
			}
		case KindFolder:
			children, err := cloneNodes(n.Children, n.Path, index)
			if err != nil {
				return nil, err
			}
			c.Children = children
		default:
			return nil, fmt.Errorf("%w: unknown kind %q at %q", ErrInvalidTree, n.Kind, n.Path)
		}
		out = append(out, c)
	}
	return out, nil
}

// WithRoots builds a replacement tree from roots that keeps the expansion
// of every folder still present.
func (t *Tree) WithRoots(roots []*FileNode) (*Tree, error) {
	next, err := NewTree(roots)
	if err != nil {
		return nil, err
	}
	next.expanded = make(map[string]struct{}, len(t.expanded))
	for path := range t.expanded {
		if n, ok := next.index[path]; ok && n.IsFolder() {
			next.expanded[path] = struct{}{}
		}
	}
	return next, nil
}

// Lookup returns the node at path. The root is addressable as RootPath.
func (t *Tree) Lookup(path string) (*FileNode, bool) {
	n, ok := t.index[path]
	return n, ok
}

// Roots returns the top-level nodes.
func (t *Tree) Roots() []*FileNode {
	return t.root.Children
}

// IsExpanded reports whether the folder at path shows its children.
func (t *Tree) IsExpanded(path string) bool {
	_, ok := t.expanded[path]
	return ok
}

// Toggle flips the expansion of the folder at path. Files are left alone.
func (t *Tree) Toggle(path string) error {
	n, ok := t.index[path]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if !n.IsFolder() {
		return nil
	}
	if _, open := t.expanded[path]; open {
		delete(t.expanded, path)
	} else {
		t.expanded[path] = struct{}{}
	}
	return nil
}

// Traverse yields the visible nodes depth-first in pre-order, descending
// only into expanded folders. Top-level nodes have depth 0.
func (t *Tree) Traverse() iter.Seq2[*FileNode, int] {
	return t.traverse(t.expanded)
}

func (t *Tree) traverse(expanded map[string]struct{}) iter.Seq2[*FileNode, int] {
	return func(yield func(*FileNode, int) bool) {
		if _, ok := expanded[RootPath]; !ok {
			return
		}

		type frame struct {
			node  *FileNode
			depth int
		}
		stack := make([]frame, 0, len(t.root.Children))
		push := func(nodes []*FileNode, depth int) {
			for i := len(nodes) - 1; i >= 0; i-- {
				stack = append(stack, frame{node: nodes[i], depth: depth})
			}
		}

		push(t.root.Children, 0)
		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if !yield(f.node, f.depth) {
				return
			}
			if _, open := expanded[f.node.Path]; open && f.node.IsFolder() {
				push(f.node.Children, f.depth+1)
			}
		}
	}
}

// Files yields every file node in pre-order, ignoring expansion.
func (t *Tree) Files() iter.Seq[*FileNode] {
	return func(yield func(*FileNode) bool) {
		stack := []*FileNode{t.root}
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if n.Kind == KindFile {
				if !yield(n) {
					return
				}
				continue
			}
			for i := len(n.Children) - 1; i >= 0; i-- {
				stack = append(stack, n.Children[i])
			}
		}
	}
}

// Find returns the file paths matching a doublestar pattern. Patterns
// without a separator match against the file name, others against the
// path relative to the root.
func (t *Tree) Find(pattern string) ([]string, error) {
	pattern = strings.TrimPrefix(pattern, RootPath)
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("bad pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}
	byName := !strings.Contains(pattern, "/")

	matches := []string{}
	for n := range t.Files() {
		subject := strings.TrimPrefix(n.Path, RootPath)
		if byName {
			subject = n.Name
		}
		if ok, _ := doublestar.Match(pattern, subject); ok {
			matches = append(matches, n.Path)
		}
	}
	return matches, nil
}

// frozen returns a copy of the expansion set for consistent reads.
func (t *Tree) frozen() map[string]struct{} {
	return maps.Clone(t.expanded)
}
