package workspace

import (
	"fmt"
	"sync"
)

// Session composes the tree, content store and tabs of one workspace and
// is the only way to mutate them. All methods are safe for concurrent use
// and each runs to completion before the next.
type Session struct {
	mu      sync.Mutex
	tree    *Tree
	content *ContentStore
	tabs    *Tabs
	seed    SeedFunc
}

// Stats summarises a session for health and listing endpoints.
type Stats struct {
	OpenTabs     int    `json:"open_tabs"`
	ActiveTab    string `json:"active_tab"`
	Materialized int    `json:"materialized"`
	Modified     int    `json:"modified"`
}

// New creates a session over tree. seed supplies file bodies on first read
// and may be nil, in which case unopened files read as empty.
func New(tree *Tree, seed SeedFunc) *Session {
	return &Session{
		tree:    tree,
		content: NewContentStore(tree),
		tabs:    NewTabs(tree),
		seed:    seed,
	}
}

// SelectFile opens path in a tab, or activates its existing tab.
func (s *Session) SelectFile(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tree.Lookup(path); !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return s.tabs.Open(path)
}

// ActivateTab switches to an already open tab.
func (s *Session) ActivateTab(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tabs.Activate(path)
}

// CloseTab closes the tab for path. Closing a tab that is not open is a
// no-op, reported by the return value.
func (s *Session) CloseTab(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tabs.Close(path)
}

// EditActive replaces the content of the active tab.
func (s *Session) EditActive(content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := s.tabs.ActiveTab()
	if active == "" {
		return ErrNoActiveTab
	}
	return s.content.Write(active, content)
}

// ToggleFolder expands or collapses the folder at path.
func (s *Session) ToggleFolder(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tree.Toggle(path)
}

// IsExpanded reports whether the folder at path is expanded.
func (s *Session) IsExpanded(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tree.IsExpanded(path)
}

// Find returns file paths matching pattern.
func (s *Session) Find(pattern string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tree.Find(pattern)
}

// Refresh swaps in a tree built from roots. Open tabs and content of paths
// that no longer exist are kept: they can still be closed, but not
// activated or reopened. A non-nil seed replaces the seed used for files
// not yet read.
func (s *Session) Refresh(roots []*FileNode, seed SeedFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.tree.WithRoots(roots)
	if err != nil {
		return err
	}
	s.tree = next
	if seed != nil {
		s.seed = seed
	}
	s.content.rebind(next)
	s.tabs.rebind(next)
	return nil
}

// Stats returns counters for the session.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	modified := 0
	for path := range s.content.entries {
		if s.content.Modified(path) {
			modified++
		}
	}
	return Stats{
		OpenTabs:     s.tabs.Len(),
		ActiveTab:    s.tabs.ActiveTab(),
		Materialized: s.content.Len(),
		Modified:     modified,
	}
}
