// Package ws serves the workspace command stream over WebSocket.
//
// A connection is bound to one workspace. The client sends commands as
// JSON frames ({"type":"select","path":"/src/App.tsx"}); the server answers
// failures with error frames and pushes a full snapshot after every change,
// whichever client made it. Deleting the workspace closes its streams.
package ws
