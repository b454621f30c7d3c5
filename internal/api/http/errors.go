package http

import (
	"errors"
	"net/http"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/WebIDE/backend/internal/domain/session"
	"github.com/GriffinCanCode/WebIDE/backend/internal/domain/template"
	"github.com/GriffinCanCode/WebIDE/backend/internal/domain/workspace"
)

// errBadRequest marks malformed input rejected before reaching a workspace.
var errBadRequest = errors.New("bad request")

var errorTable = []struct {
	err    error
	status int
	code   string
}{
	{errBadRequest, http.StatusBadRequest, "bad_request"},
	{workspace.ErrNotFound, http.StatusNotFound, "not_found"},
	{workspace.ErrNotOpen, http.StatusConflict, "not_open"},
	{workspace.ErrNoActiveTab, http.StatusConflict, "no_active_tab"},
	{workspace.ErrInvalidPath, http.StatusBadRequest, "invalid_path"},
	{doublestar.ErrBadPattern, http.StatusBadRequest, "bad_pattern"},
	{session.ErrWorkspaceNotFound, http.StatusNotFound, "workspace_not_found"},
	{session.ErrTooManyWorkspaces, http.StatusServiceUnavailable, "workspace_limit"},
	{session.ErrUnknownTemplate, http.StatusBadRequest, "unknown_template"},
	{session.ErrUnknownCommand, http.StatusBadRequest, "unknown_command"},
	{session.ErrContentTooLarge, http.StatusRequestEntityTooLarge, "too_large"},
	{template.ErrInvalidTemplate, http.StatusUnprocessableEntity, "invalid_template"},
}

// Classify maps an error to an HTTP status and a stable error code.
func Classify(err error) (int, string) {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return http.StatusRequestEntityTooLarge, "too_large"
	}
	for _, e := range errorTable {
		if errors.Is(err, e.err) {
			return e.status, e.code
		}
	}
	return http.StatusInternalServerError, "internal"
}

// abortWithError records err on the context and writes {"error","code"}.
func abortWithError(c *gin.Context, err error) {
	status, code := Classify(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{
		"error": err.Error(),
		"code":  code,
	})
}

// ErrorForCode is the inverse of Classify: it returns the error a code was
// produced from, or nil for codes without one.
func ErrorForCode(code string) error {
	for _, e := range errorTable {
		if e.code == code {
			return e.err
		}
	}
	return nil
}
