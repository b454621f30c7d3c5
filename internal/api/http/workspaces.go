package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/WebIDE/backend/internal/domain/session"
	"github.com/GriffinCanCode/WebIDE/backend/internal/domain/workspace"
	"github.com/GriffinCanCode/WebIDE/backend/internal/shared/id"
	"github.com/GriffinCanCode/WebIDE/backend/internal/shared/utils"
)

// CreateRequest is the body of POST /workspaces.
type CreateRequest struct {
	Template string `json:"template"`
}

// CreateResponse is returned by POST /workspaces.
type CreateResponse struct {
	ID       string             `json:"id"`
	Snapshot workspace.Snapshot `json:"snapshot"`
}

// PathRequest is the body of the tab and folder commands.
type PathRequest struct {
	Path string `json:"path"`
}

// ContentRequest is the body of PUT /workspaces/:id/content.
type ContentRequest struct {
	Content string `json:"content"`
}

// FindResponse is returned by the file finder.
type FindResponse struct {
	Pattern string   `json:"pattern"`
	Matches []string `json:"matches"`
}

// workspaceFor resolves the :id parameter or aborts the request.
func (h *Handlers) workspaceFor(c *gin.Context) (*session.Workspace, bool) {
	wsID := c.Param("id")
	if err := utils.ValidateID(wsID, "workspace id", true); err != nil {
		abortWithError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return nil, false
	}
	if !id.HasPrefix(wsID, id.WorkspacePrefix) {
		abortWithError(c, fmt.Errorf("%w: %s", session.ErrWorkspaceNotFound, wsID))
		return nil, false
	}
	w, err := h.manager.Get(wsID)
	if err != nil {
		abortWithError(c, err)
		return nil, false
	}
	return w, true
}

// ListWorkspaces lists live workspaces.
func (h *Handlers) ListWorkspaces(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"workspaces": h.manager.List(),
		"stats":      h.manager.Stats(),
	})
}

// CreateWorkspace creates a workspace from a named template.
func (h *Handlers) CreateWorkspace(c *gin.Context) {
	var req CreateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
	}
	if err := utils.ValidateString(req.Template, "template", 1, utils.MaxTemplateLength, false); err != nil {
		abortWithError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	w, err := h.manager.Create(c.Request.Context(), req.Template)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, CreateResponse{ID: w.ID(), Snapshot: w.Snapshot()})
}

// GetWorkspace returns the workspace snapshot with an ETag, answering
// 304 when If-None-Match still matches.
func (h *Handlers) GetWorkspace(c *gin.Context) {
	w, ok := h.workspaceFor(c)
	if !ok {
		return
	}

	body, err := sonic.Marshal(w.Snapshot())
	if err != nil {
		abortWithError(c, err)
		return
	}
	etag := utils.ETag(body)
	c.Header("ETag", etag)
	if utils.MatchesETag(c.GetHeader("If-None-Match"), etag) {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// DeleteWorkspace drops a workspace.
func (h *Handlers) DeleteWorkspace(c *gin.Context) {
	wsID := c.Param("id")
	if err := h.manager.Delete(wsID); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "id": wsID})
}

// command builds the handler for a path-addressed command.
func (h *Handlers) command(typ session.CommandType) gin.HandlerFunc {
	return func(c *gin.Context) {
		w, ok := h.workspaceFor(c)
		if !ok {
			return
		}

		var req PathRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
		if err := utils.ValidatePath(req.Path, "path"); err != nil {
			abortWithError(c, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}

		snap, err := w.Apply(session.Command{Type: typ, Path: req.Path})
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}

// EditContent replaces the active tab's content.
func (h *Handlers) EditContent(c *gin.Context) {
	w, ok := h.workspaceFor(c)
	if !ok {
		return
	}

	if h.maxContent > 0 {
		// Leave room for the JSON envelope and escaping.
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 2*h.maxContent+1024)
	}
	var req ContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			abortWithError(c, err)
			return
		}
		abortWithError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	snap, err := w.Apply(session.Command{Type: session.CommandEdit, Content: req.Content})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Find lists files matching ?pattern=.
func (h *Handlers) Find(c *gin.Context) {
	w, ok := h.workspaceFor(c)
	if !ok {
		return
	}

	pattern := c.Query("pattern")
	if err := utils.ValidateString(pattern, "pattern", 1, utils.MaxPatternLength, true); err != nil {
		abortWithError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	matches, err := w.Find(pattern)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, FindResponse{Pattern: pattern, Matches: matches})
}

// Preview renders the active tab. ?raw=1 returns the HTML fragment itself.
func (h *Handlers) Preview(c *gin.Context) {
	w, ok := h.workspaceFor(c)
	if !ok {
		return
	}

	snap := w.Snapshot()
	if snap.ActiveTab == "" {
		abortWithError(c, workspace.ErrNoActiveTab)
		return
	}

	p, err := h.renderer.Render(snap.ActiveTab, snap.ActiveContent)
	if err != nil {
		abortWithError(c, err)
		return
	}

	if c.Query("raw") == "1" {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(p.HTML))
		return
	}
	c.JSON(http.StatusOK, p)
}

// Refresh reloads the workspace tree from its template source.
func (h *Handlers) Refresh(c *gin.Context) {
	w, ok := h.workspaceFor(c)
	if !ok {
		return
	}

	snap, err := w.Refresh(c.Request.Context())
	if err != nil {
		h.logger.Warn("refresh failed", zap.String("workspace", w.ID()), zap.Error(err))
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}
