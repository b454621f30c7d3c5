// Package session keeps the live workspaces of the server.
//
// A Manager creates workspaces from named template sources, hands out
// their ids, and enforces the session limit. Each Workspace wraps one
// workspace.Session and is the single entry point for commands coming
// from HTTP or a stream connection, so metrics, logging and change
// notification happen in one place.
//
//	mgr := session.NewManager(session.Options{MaxSessions: 64})
//	ws, err := mgr.Create(ctx, "")
//	snap, err := ws.Apply(session.Command{Type: session.CommandSelect, Path: "/README.md"})
package session
