package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/chanpio/honbob/internal/models"
	"github.com/chanpio/honbob/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RosterHandler handles the roster and appointment endpoints
type RosterHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewRosterHandler creates a new RosterHandler
func NewRosterHandler(services *service.Services, log zerolog.Logger) *RosterHandler {
	return &RosterHandler{
		services: services,
		log:      log.With().Str("handler", "roster").Logger(),
	}
}

// GetRoster handles GET /v1/roster
func (h *RosterHandler) GetRoster(c *gin.Context) {
	ctx := c.Request.Context()

	snapshot, err := h.services.Roster.Snapshot(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read roster")
		c.JSON(http.StatusBadGateway, gin.H{
			"error":     "store_read_failed",
			"message":   storeFailureMessage,
			"retryable": true,
		})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// StreamEvents handles GET /v1/roster/events: a server-sent events
// stream pushing a full roster snapshot on every store change.
func (h *RosterHandler) StreamEvents(c *gin.Context) {
	ch := make(chan *models.RosterResponse, 8)

	unsubscribe := h.services.Roster.SubscribeSnapshots(func(snapshot *models.RosterResponse) {
		// Drop rather than block when the client reads slowly; the
		// next snapshot supersedes this one anyway.
		select {
		case ch <- snapshot:
		default:
		}
	})
	defer unsubscribe()

	// Seed the stream so a new viewer renders immediately.
	if snapshot, err := h.services.Roster.Snapshot(c.Request.Context()); err == nil {
		ch <- snapshot
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case snapshot := <-ch:
			c.SSEvent("roster", snapshot)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// Reserve handles POST /v1/roster/reserve
func (h *RosterHandler) Reserve(c *gin.Context) {
	ctx := c.Request.Context()

	var req models.ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "record_ids is required and must be non-empty"})
		return
	}

	result, err := h.services.Roster.Reserve(ctx, &req)
	if err != nil {
		if errors.Is(err, service.ErrEmptySelection) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "record_ids is required and must be non-empty"})
			return
		}
		h.log.Error().Err(err).Msg("Reserve failed")
		c.JSON(http.StatusBadGateway, gin.H{
			"error":     "store_read_failed",
			"message":   storeFailureMessage,
			"retryable": true,
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Delete handles DELETE /v1/roster/:id
func (h *RosterHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	recordID := c.Param("id")
	if recordID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
		return
	}

	result, err := h.services.Undo.Delete(ctx, sessionID(c), recordID)
	if err != nil {
		if errors.Is(err, service.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
			return
		}
		h.log.Error().Err(err).Str("record_id", recordID).Msg("Delete failed")
		c.JSON(http.StatusBadGateway, gin.H{
			"error":     "store_write_failed",
			"message":   storeFailureMessage,
			"retryable": true,
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Undo handles POST /v1/roster/undo
func (h *RosterHandler) Undo(c *gin.Context) {
	ctx := c.Request.Context()

	result, err := h.services.Undo.Undo(ctx, sessionID(c))
	if err != nil {
		h.log.Error().Err(err).Msg("Undo failed")
		c.JSON(http.StatusBadGateway, gin.H{
			"error":     "store_write_failed",
			"message":   storeFailureMessage,
			"retryable": true,
		})
		return
	}

	c.JSON(http.StatusOK, result)
}
