package api

import (
	"errors"
	"net/http"

	"github.com/chanpio/honbob/internal/models"
	"github.com/chanpio/honbob/internal/service"
	"github.com/chanpio/honbob/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// storeFailureMessage is the generic retry-prompting dialog for any
// store write failure. The client keeps the entered field values; no
// automatic retry.
const storeFailureMessage = "저장에 실패했어요. 다시 시도해주세요."

// AvailabilityHandler handles the intake form endpoints
type AvailabilityHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewAvailabilityHandler creates a new AvailabilityHandler
func NewAvailabilityHandler(services *service.Services, log zerolog.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		services: services,
		log:      log.With().Str("handler", "availability").Logger(),
	}
}

// Submit handles POST /v1/availability
func (h *AvailabilityHandler) Submit(c *gin.Context) {
	ctx := c.Request.Context()

	var req models.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.services.Submission.Submit(ctx, sessionID(c), &req)
	if err != nil {
		var verr *validation.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   verr.Code,
				"message": verr.Message,
			})
			return
		}

		h.log.Error().Err(err).Msg("Submission failed")
		c.JSON(http.StatusBadGateway, gin.H{
			"error":     "store_write_failed",
			"message":   storeFailureMessage,
			"retryable": true,
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// MyRecord handles GET /v1/availability/me. It returns the session's
// own record and primes edit mode: the next submission writes back to
// the same handle.
func (h *AvailabilityHandler) MyRecord(c *gin.Context) {
	ctx := c.Request.Context()

	record, err := h.services.Submission.MyRecord(ctx, sessionID(c))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load own record")
		c.JSON(http.StatusBadGateway, gin.H{
			"error":     "store_read_failed",
			"message":   storeFailureMessage,
			"retryable": true,
		})
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no record for this session"})
		return
	}

	c.JSON(http.StatusOK, record)
}
