package session

import "errors"

var (
	// ErrWorkspaceNotFound is returned for an unknown workspace id.
	ErrWorkspaceNotFound = errors.New("workspace not found")
	// ErrTooManyWorkspaces is returned when the session limit is reached.
	ErrTooManyWorkspaces = errors.New("workspace limit reached")
	// ErrUnknownTemplate is returned when a named template source is not registered.
	ErrUnknownTemplate = errors.New("unknown template")
	// ErrUnknownCommand is returned for a command type Apply does not handle.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrContentTooLarge is returned when an edit exceeds the content limit.
	ErrContentTooLarge = errors.New("content too large")
)
