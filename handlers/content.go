package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/luminedge/academy-cms/internal/audit"
	"github.com/luminedge/academy-cms/internal/content"
	"github.com/luminedge/academy-cms/internal/editor"
	"github.com/luminedge/academy-cms/pkg/middleware"
)

// SaveSectionRequest is the wire form of one audited save attempt.
type SaveSectionRequest struct {
	Payload map[string]any `json:"payload" binding:"required"`
	// Baseline is the RFC3339 metadata.updatedAt captured at load time;
	// omit (or null) for the first save of a section.
	Baseline *time.Time `json:"baseline"`
	Force    bool       `json:"force"`
	// Dependents are extra sections to invalidate beyond the content
	// type's declared list.
	Dependents []string `json:"dependents"`
}

// ContentHandler exposes the CMS section API consumed by the admin panel.
type ContentHandler struct {
	accessor *content.Accessor
	saver    *content.Saver
	trail    *audit.Log
}

func NewContentHandler(accessor *content.Accessor, saver *content.Saver, trail *audit.Log) *ContentHandler {
	return &ContentHandler{accessor: accessor, saver: saver, trail: trail}
}

// Register routes under /cms
func (h *ContentHandler) Register(rg *gin.RouterGroup) {
	s := rg.Group("/cms/sections")
	s.GET("/:name", h.GetSection)
	s.PUT("/:name", h.SaveSection)
	s.DELETE("/:name/items/:key", h.DeleteItem)
	s.GET("/:name/audit", h.SectionAudit)
}

// GetSection returns the stored payload and the baseline timestamp the
// client must echo back on save. An absent section returns an empty payload
// and a null baseline.
func (h *ContentHandler) GetSection(c *gin.Context) {
	name := c.Param("name")
	payload, err := h.accessor.Load(c.Request.Context(), name)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "load failed", "message": content.UserMessage(err)})
		return
	}
	var baseline *time.Time
	if meta := content.ExtractMetadata(payload); meta != nil {
		baseline = &meta.UpdatedAt
	}
	if payload == nil {
		payload = map[string]any{}
	}
	c.JSON(http.StatusOK, gin.H{"section": name, "payload": payload, "baseline": baseline})
}

// SaveSection runs one attempt through the audited save protocol. Conflicts
// come back as 409 with the conflict record so the panel can offer the
// reload-or-force choice instead of a generic error toast.
func (h *ContentHandler) SaveSection(c *gin.Context) {
	name := c.Param("name")
	var req SaveSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, reserved := req.Payload[content.MetadataKey]; reserved {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payload may not set the metadata key"})
		return
	}

	dependents := req.Dependents
	if def, ok := editor.DefinitionFor(name); ok {
		if err := def.Limits.Validate(req.Payload); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}
		dependents = append(dependents, def.Dependents...)
	}

	id := content.Identity{
		Email: middleware.ClaimString(c, "email"),
		UID:   middleware.ClaimString(c, "sub"),
	}
	meta, err := h.saver.Save(c.Request.Context(), content.SaveRequest{
		Section:    name,
		Payload:    req.Payload,
		Baseline:   req.Baseline,
		Force:      req.Force,
		Identity:   id,
		Dependents: dependents,
	})
	if err != nil {
		h.saveError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"section": name, "baseline": meta.UpdatedAt})
}

func (h *ContentHandler) saveError(c *gin.Context, err error) {
	if ce, ok := content.IsConflict(err); ok {
		c.JSON(http.StatusConflict, gin.H{
			"error":        "conflict",
			"lastEditor":   ce.LastEditor,
			"lastEditedAt": ce.LastEditedAt,
			"message":      content.UserMessage(err),
		})
		return
	}
	switch {
	case errors.Is(err, content.ErrSaveInFlight):
		c.JSON(http.StatusLocked, gin.H{"error": "save in flight", "message": content.UserMessage(err)})
	case errors.Is(err, content.ErrPermission):
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied", "message": content.UserMessage(err)})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": "save failed", "message": content.UserMessage(err)})
	}
}

// DeleteItem removes one keyed item from a map-of-items section.
func (h *ContentHandler) DeleteItem(c *gin.Context) {
	name := c.Param("name")
	key := c.Param("key")
	var dependents []string
	if def, ok := editor.DefinitionFor(name); ok {
		dependents = def.Dependents
	}
	if err := h.accessor.Remove(c.Request.Context(), name, key, dependents...); err != nil {
		switch {
		case errors.Is(err, content.ErrReservedKey):
			c.JSON(http.StatusBadRequest, gin.H{"error": "key is reserved", "message": content.UserMessage(err)})
		case errors.Is(err, content.ErrPermission):
			c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": "delete failed", "message": content.UserMessage(err)})
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// SectionAudit returns the recent save attempts recorded for a section.
func (h *ContentHandler) SectionAudit(c *gin.Context) {
	name := c.Param("name")
	entries, err := h.trail.RecentForSection(c.Request.Context(), name, 20)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "audit lookup failed"})
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	c.JSON(http.StatusOK, gin.H{"section": name, "entries": entries})
}
