package workspace

import "fmt"

// SeedFunc supplies the initial body of a file the first time it is read.
type SeedFunc func(path string) string

type contentEntry struct {
	text     string
	modified bool
}

// ContentStore maps file paths to their current text. Files that were never
// read have no entry and are materialized from the seed on first read.
type ContentStore struct {
	files   FileLookup
	entries map[string]*contentEntry
}

// NewContentStore creates an empty store validating writes against files.
func NewContentStore(files FileLookup) *ContentStore {
	return &ContentStore{
		files:   files,
		entries: make(map[string]*contentEntry),
	}
}

// Read returns the stored text for path, seeding it on first access.
// seed is invoked at most once per path.
func (c *ContentStore) Read(path string, seed SeedFunc) string {
	if e, ok := c.entries[path]; ok {
		return e.text
	}
	var text string
	if seed != nil {
		text = seed(path)
	}
	c.entries[path] = &contentEntry{text: text}
	return text
}

// Write overwrites the text of path, which must name a file in the tree.
func (c *ContentStore) Write(path, content string) error {
	n, ok := c.files.Lookup(path)
	if !ok || n.Kind != KindFile {
		return fmt.Errorf("%w: %s is not a file", ErrInvalidPath, path)
	}
	if e, ok := c.entries[path]; ok {
		e.text = content
		e.modified = true
		return nil
	}
	c.entries[path] = &contentEntry{text: content, modified: true}
	return nil
}

// Modified reports whether path was written since it was seeded.
func (c *ContentStore) Modified(path string) bool {
	e, ok := c.entries[path]
	return ok && e.modified
}

// Has reports whether path has been materialized.
func (c *ContentStore) Has(path string) bool {
	_, ok := c.entries[path]
	return ok
}

// Len returns the number of materialized files.
func (c *ContentStore) Len() int {
	return len(c.entries)
}

func (c *ContentStore) rebind(files FileLookup) {
	c.files = files
}
