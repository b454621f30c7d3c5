package ws

import (
	"github.com/GriffinCanCode/WebIDE/backend/internal/domain/session"
	"github.com/GriffinCanCode/WebIDE/backend/internal/domain/workspace"
)

// Client frame types beyond the workspace commands.
const (
	FrameSnapshot = "snapshot"
	FramePing     = "ping"
)

// Server frame types.
const (
	FrameError  = "error"
	FramePong   = "pong"
	FrameSystem = "system"
)

// ClientFrame is a message from the editor. Type is a session command
// type, "snapshot" or "ping". Seq is echoed back on errors.
type ClientFrame struct {
	Type    string `json:"type"`
	Path    string `json:"path,omitempty"`
	Content string `json:"content,omitempty"`
	Seq     int64  `json:"seq,omitempty"`
}

func (f ClientFrame) command() (session.Command, bool) {
	switch t := session.CommandType(f.Type); t {
	case session.CommandSelect, session.CommandActivate, session.CommandClose,
		session.CommandToggle, session.CommandEdit:
		return session.Command{Type: t, Path: f.Path, Content: f.Content}, true
	}
	return session.Command{}, false
}

// ServerFrame is a message to the editor.
type ServerFrame struct {
	Type      string              `json:"type"`
	Workspace string              `json:"workspace,omitempty"`
	Conn      string              `json:"conn,omitempty"`
	Message   string              `json:"message,omitempty"`
	Error     string              `json:"error,omitempty"`
	Code      string              `json:"code,omitempty"`
	Seq       int64               `json:"seq,omitempty"`
	Snapshot  *workspace.Snapshot `json:"snapshot,omitempty"`
}
