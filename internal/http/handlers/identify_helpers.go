package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/phambaophuc/ecovision/internal/http/middleware"
	"github.com/phambaophuc/ecovision/internal/models"
	"github.com/phambaophuc/ecovision/internal/services/identifier"
	"github.com/phambaophuc/ecovision/internal/services/processor"
	"github.com/phambaophuc/ecovision/pkg/utils"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

// === ERROR MAPPING ===

// statusFor maps a pipeline error to an HTTP status and a client message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, utils.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge, "Image too large"
	case errors.Is(err, utils.ErrInvalidData), errors.Is(err, models.ErrMissingImage):
		return http.StatusBadRequest, "Invalid image payload"
	case errors.Is(err, processor.ErrUnsupportedType), errors.Is(err, processor.ErrInvalidImage), errors.Is(err, utils.ErrEmptyImage):
		return http.StatusUnprocessableEntity, "Invalid image: " + err.Error()
	case errors.Is(err, identifier.ErrFetchImage):
		return http.StatusUnprocessableEntity, "Could not fetch image from URL"
	case errors.Is(err, identifier.ErrNotConfigured):
		return http.StatusServiceUnavailable, "Identification service not configured"
	case errors.Is(err, identifier.ErrRecognition):
		return http.StatusBadGateway, "Identification service failed"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Identification timed out"
	default:
		return http.StatusInternalServerError, "Failed to identify image"
	}
}

// === RESPONSE HANDLING ===

func (h *IdentifyHandler) respondError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, models.APIResponse{
		Success: false,
		Error:   message,
	})
}

func (h *IdentifyHandler) respondBindError(c *gin.Context, err error) {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr):
		h.respondError(c, http.StatusRequestEntityTooLarge, "Request body too large")
	case errors.Is(err, models.ErrMissingImage), errors.Is(err, models.ErrAmbiguousImage):
		h.respondError(c, http.StatusBadRequest, err.Error())
	default:
		h.respondError(c, http.StatusBadRequest, "Invalid request body")
	}
}

// === EVENTS ===

func (h *IdentifyHandler) publishEvent(c *gin.Context, source string, elapsed time.Duration, result *models.IdentificationResult, failure error) {
	event := &models.IdentificationEvent{
		ID:         eventID(c),
		Source:     source,
		Status:     models.StatusCompleted,
		CreatedAt:  time.Now(),
		DurationMS: elapsed.Milliseconds(),
		Result:     result,
	}
	if failure != nil {
		event.Status = models.StatusFailed
		event.Error = failure.Error()
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), publishTimeout)
	defer cancel()

	if err := h.events.Publish(ctx, event); err != nil {
		h.logger.Warn("Failed to publish identification event", zap.String("event_id", event.ID), zap.Error(err))
	}
}

func eventID(c *gin.Context) string {
	if id := strings.TrimSpace(c.GetString(middleware.RequestIDKey)); id != "" {
		return id
	}
	return uuid.NewString()
}

// === UTILITY METHODS ===

func (h *IdentifyHandler) calculateOverallHealth(services map[string]string) string {
	for _, status := range services {
		if status != models.HealthHealthy && status != models.HealthNotConfigured {
			return models.HealthUnhealthy
		}
	}
	return models.HealthHealthy
}
