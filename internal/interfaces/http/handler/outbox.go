package handler

import (
	"github.com/gin-gonic/gin"

	eventapp "github.com/kahawa/backend/internal/application/event"
)

// OutboxHandler exposes outbox delivery state and dead-letter recovery for
// operators
type OutboxHandler struct {
	BaseHandler
	service *eventapp.OutboxService
}

// NewOutboxHandler creates a new OutboxHandler
func NewOutboxHandler(service *eventapp.OutboxService) *OutboxHandler {
	return &OutboxHandler{service: service}
}

// RegisterRoutes registers outbox admin routes
func (h *OutboxHandler) RegisterRoutes(rg *gin.RouterGroup) {
	outbox := rg.Group("/admin/outbox")
	{
		outbox.GET("/stats", h.GetStats)
		outbox.GET("/dead-letters", h.ListDeadLetters)
		outbox.GET("/entries/:id", h.GetEntry)
		outbox.POST("/dead-letters/:id/retry", h.RetryDeadEntry)
		outbox.POST("/dead-letters/retry-all", h.RetryAllDeadEntries)
	}
}

// GetStats handles GET /admin/outbox/stats
func (h *OutboxHandler) GetStats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// ListDeadLetters handles GET /admin/outbox/dead-letters
func (h *OutboxHandler) ListDeadLetters(c *gin.Context) {
	var filter eventapp.OutboxFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.service.DeadLetters(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// GetEntry handles GET /admin/outbox/entries/:id
func (h *OutboxHandler) GetEntry(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid entry ID")
		return
	}

	entry, err := h.service.GetEntry(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// RetryDeadEntry handles POST /admin/outbox/dead-letters/:id/retry
func (h *OutboxHandler) RetryDeadEntry(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid entry ID")
		return
	}

	entry, err := h.service.RetryDeadEntry(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// RetryAllDeadEntries handles POST /admin/outbox/dead-letters/retry-all
func (h *OutboxHandler) RetryAllDeadEntries(c *gin.Context) {
	count, err := h.service.RetryAllDeadEntries(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"retried": count})
}
