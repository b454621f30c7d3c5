package workspace

import (
	"fmt"
	"slices"
)

// Tabs tracks the ordered open tabs and which one is active.
// The zero active value "" means no tab is active.
type Tabs struct {
	files  FileLookup
	open   []string
	active string
}

// NewTabs creates an empty tab session validating opens against files.
func NewTabs(files FileLookup) *Tabs {
	return &Tabs{files: files}
}

// Open adds a tab for the file at path, if not already open, and activates it.
func (t *Tabs) Open(path string) error {
	n, ok := t.files.Lookup(path)
	if !ok || n.Kind != KindFile {
		return fmt.Errorf("%w: no file at %s", ErrNotFound, path)
	}
	if !t.IsOpen(path) {
		t.open = append(t.open, path)
	}
	t.active = path
	return nil
}

// Activate makes an already open tab the active one. A tab whose file has
// vanished from the tree cannot be activated.
func (t *Tabs) Activate(path string) error {
	n, ok := t.files.Lookup(path)
	if !ok || n.Kind != KindFile {
		return fmt.Errorf("%w: no file at %s", ErrNotFound, path)
	}
	if !t.IsOpen(path) {
		return fmt.Errorf("%w: %s", ErrNotOpen, path)
	}
	t.active = path
	return nil
}

// Close removes the tab for path and reports whether one was open.
// When the active tab closes, its left neighbour becomes active, or the
// new first tab when it was first.
func (t *Tabs) Close(path string) bool {
	idx := slices.Index(t.open, path)
	if idx < 0 {
		return false
	}
	t.open = slices.Delete(t.open, idx, idx+1)

	if t.active != path {
		return true
	}
	switch {
	case len(t.open) == 0:
		t.active = ""
	case idx == 0:
		t.active = t.open[0]
	default:
		t.active = t.open[idx-1]
	}
	return true
}

// OpenTabs returns a copy of the open tab paths in display order.
func (t *Tabs) OpenTabs() []string {
	return append([]string{}, t.open...)
}

// ActiveTab returns the active path, or "" when no tab is open.
func (t *Tabs) ActiveTab() string {
	return t.active
}

// IsOpen reports whether path has a tab.
func (t *Tabs) IsOpen(path string) bool {
	return slices.Contains(t.open, path)
}

// Len returns the number of open tabs.
func (t *Tabs) Len() int {
	return len(t.open)
}

func (t *Tabs) rebind(files FileLookup) {
	t.files = files
}
