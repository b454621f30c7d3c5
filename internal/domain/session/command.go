package session

import (
	"errors"
	"fmt"

	"github.com/GriffinCanCode/WebIDE/backend/internal/domain/workspace"
)

// CommandType names a workspace mutation.
type CommandType string

const (
	CommandSelect   CommandType = "select"
	CommandActivate CommandType = "activate"
	CommandClose    CommandType = "close"
	CommandToggle   CommandType = "toggle"
	CommandEdit     CommandType = "edit"
)

// Command is one user action against a workspace.
type Command struct {
	Type    CommandType `json:"type"`
	Path    string      `json:"path,omitempty"`
	Content string      `json:"content,omitempty"`
}

func (c Command) apply(s *workspace.Session, maxContent int64) error {
	switch c.Type {
	case CommandSelect:
		return s.SelectFile(c.Path)
	case CommandActivate:
		return s.ActivateTab(c.Path)
	case CommandClose:
		s.CloseTab(c.Path)
		return nil
	case CommandToggle:
		return s.ToggleFolder(c.Path)
	case CommandEdit:
		if maxContent > 0 && int64(len(c.Content)) > maxContent {
			return fmt.Errorf("%w: %d bytes, limit %d", ErrContentTooLarge, len(c.Content), maxContent)
		}
		return s.EditActive(c.Content)
	}
	return fmt.Errorf("%w: %q", ErrUnknownCommand, c.Type)
}

// Outcome classifies an error for metrics and wire responses.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, workspace.ErrNotFound):
		return "not_found"
	case errors.Is(err, workspace.ErrNotOpen):
		return "not_open"
	case errors.Is(err, workspace.ErrNoActiveTab):
		return "no_active_tab"
	case errors.Is(err, workspace.ErrInvalidPath):
		return "invalid_path"
	case errors.Is(err, ErrContentTooLarge):
		return "too_large"
	case errors.Is(err, ErrUnknownCommand):
		return "unknown_command"
	case errors.Is(err, ErrWorkspaceNotFound):
		return "workspace_not_found"
	}
	return "error"
}
