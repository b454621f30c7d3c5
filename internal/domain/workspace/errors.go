package workspace

import "errors"

var (
	// ErrNotFound is returned when a path is absent from the tree, or names
	// a node of the wrong kind for the operation.
	ErrNotFound = errors.New("path not found")
	// ErrNotOpen is returned when activating a path that has no open tab.
	ErrNotOpen = errors.New("path is not open")
	// ErrInvalidPath is returned when writing content to a path that is not a file.
	ErrInvalidPath = errors.New("invalid path")
	// ErrNoActiveTab is returned when editing with no active tab.
	ErrNoActiveTab = errors.New("no active tab")
	// ErrInvalidTree is returned when a project description cannot form a tree.
	ErrInvalidTree = errors.New("invalid tree")
)
