package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/GriffinCanCode/DriveDeck/backend/internal/events"
	"github.com/GriffinCanCode/DriveDeck/backend/internal/logging"
	"github.com/GriffinCanCode/DriveDeck/backend/internal/middleware"
	"github.com/GriffinCanCode/DriveDeck/backend/internal/providers/media"
	"github.com/GriffinCanCode/DriveDeck/backend/internal/service"
	"github.com/GriffinCanCode/DriveDeck/backend/internal/types"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	provider    *media.Provider
	registry    *service.Registry
	broadcaster *events.Broadcaster
	log         *logging.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(
	provider *media.Provider,
	registry *service.Registry,
	broadcaster *events.Broadcaster,
	log *logging.Logger,
) *Handlers {
	return &Handlers{
		provider:    provider,
		registry:    registry,
		broadcaster: broadcaster,
		log:         log,
	}
}

// Root handles health check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "DriveDeck Service (Go)",
		"version": "0.1.0",
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":           "healthy",
		"service_registry": h.registry.Stats(),
		"subscribers":      h.broadcaster.Count(),
	})
}

// ListMounts lists candidate media roots
func (h *Handlers) ListMounts(c *gin.Context) {
	mounts := h.provider.Mounts(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"mounts": mounts,
		"count":  len(mounts),
	})
}

// ListFiles recursively lists files under a root
func (h *Handlers) ListFiles(c *gin.Context) {
	root := c.Query("root")
	if root == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "root query parameter required"})
		return
	}
	showHidden, _ := strconv.ParseBool(c.DefaultQuery("show_hidden", "false"))

	listing, err := h.provider.ListFiles(c.Request.Context(), root, media.ListOptions{ShowHidden: showHidden})
	if err != nil {
		fileError(c, err)
		return
	}

	// Listings can run to tens of thousands of entries, so encode with
	// sonic instead of the default JSON path.
	payload, err := sonic.Marshal(gin.H{
		"root":       listing.Root,
		"files":      listing.Files,
		"skipped":    listing.Skipped,
		"count":      len(listing.Files),
		"elapsed_ms": listing.ElapsedMS,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}

// SearchFiles finds files matching a glob pattern
func (h *Handlers) SearchFiles(c *gin.Context) {
	root := c.Query("root")
	if root == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "root query parameter required"})
		return
	}
	pattern := c.Query("pattern")
	if pattern == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pattern query parameter required"})
		return
	}
	showHidden, _ := strconv.ParseBool(c.DefaultQuery("show_hidden", "false"))

	result, err := h.provider.Search(c.Request.Context(), root, pattern, media.ListOptions{ShowHidden: showHidden})
	if err != nil {
		if errors.Is(err, doublestar.ErrBadPattern) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		fileError(c, err)
		return
	}

	payload, err := sonic.Marshal(gin.H{
		"root":       result.Root,
		"pattern":    result.Pattern,
		"files":      result.Files,
		"skipped":    result.Skipped,
		"count":      len(result.Files),
		"elapsed_ms": result.ElapsedMS,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}

// RenameFile renames a file in place
func (h *Handlers) RenameFile(c *gin.Context) {
	var req media.RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	toRel, err := h.provider.Rename(c.Request.Context(), req)
	if err != nil {
		fileError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"root":    req.Root,
		"from":    req.RelativePath,
		"to":      toRel,
	})
}

// DeleteFile deletes a single regular file
func (h *Handlers) DeleteFile(c *gin.Context) {
	var req media.DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.provider.Delete(c.Request.Context(), req); err != nil {
		fileError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"root":    req.Root,
		"path":    req.RelativePath,
	})
}

// MoveFile moves a file into another directory under the same root
func (h *Handlers) MoveFile(c *gin.Context) {
	var req media.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	toRel, err := h.provider.Move(c.Request.Context(), req)
	if err != nil {
		fileError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"root":    req.Root,
		"from":    req.FromRelative,
		"to":      toRel,
	})
}

// CreateFolder creates a directory chain under a root
func (h *Handlers) CreateFolder(c *gin.Context) {
	var req media.CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.provider.CreateFolder(c.Request.Context(), req)
	if err != nil {
		fileError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"root":    req.Root,
		"path":    created,
	})
}

// ListServices lists all available services
func (h *Handlers) ListServices(c *gin.Context) {
	categoryStr := c.Query("category")

	var category *types.Category
	if categoryStr != "" {
		cat := types.Category(categoryStr)
		category = &cat
	}

	services := h.registry.List(category)
	stats := h.registry.Stats()

	c.JSON(http.StatusOK, gin.H{
		"services": services,
		"stats":    stats,
	})
}

// ExecuteService executes a service tool
func (h *Handlers) ExecuteService(c *gin.Context) {
	var req types.ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	requestID := c.GetString(middleware.RequestIDKey)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	appCtx := &types.Context{
		RequestID: &requestID,
		ClientID:  req.ClientID,
	}

	result, err := h.registry.Execute(c.Request.Context(), req.ToolID, req.Params, appCtx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
