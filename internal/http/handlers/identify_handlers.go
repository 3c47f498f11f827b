package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/ecovision/internal/metrics"
	"github.com/phambaophuc/ecovision/internal/models"
	"github.com/phambaophuc/ecovision/internal/services/events"
	"github.com/phambaophuc/ecovision/internal/services/tokens"
	"go.uber.org/zap"
)

// Identifier is the server-side identification pipeline.
type Identifier interface {
	Identify(ctx context.Context, ref models.ImageRef) (models.IdentificationResult, error)
	Configured() bool
}

type IdentifyHandler struct {
	identifier Identifier
	tokens     tokens.Store
	events     events.Publisher
	logger     *zap.Logger
}

func NewIdentifyHandler(
	identifier Identifier,
	tokens tokens.Store,
	events events.Publisher,
	logger *zap.Logger,
) *IdentifyHandler {
	return &IdentifyHandler{
		identifier: identifier,
		tokens:     tokens,
		events:     events,
		logger:     logger,
	}
}

// === MAIN API ENDPOINTS ===

// Identify answers POST /api/identify with the four identification fields.
func (h *IdentifyHandler) Identify(c *gin.Context) {
	var req models.IdentificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	if err := h.tokens.Validate(c.Request.Context(), req.Credential); err != nil {
		if errors.Is(err, tokens.ErrInvalidToken) {
			h.respondError(c, http.StatusUnauthorized, "Invalid or expired access token")
			return
		}
		h.logger.Error("Token validation failed", zap.Error(err))
		h.respondError(c, http.StatusServiceUnavailable, "Token store unavailable")
		return
	}

	source := req.Image.Source()
	start := time.Now()
	result, err := h.identifier.Identify(c.Request.Context(), req.Image)
	elapsed := time.Since(start)

	if err != nil {
		status, message := statusFor(err)
		metrics.ObserveIdentify(source, "error", elapsed)
		h.logger.Warn("Identification failed",
			zap.String("source", source),
			zap.Int("status", status),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		h.publishEvent(c, source, elapsed, nil, err)
		h.respondError(c, status, message)
		return
	}

	metrics.ObserveIdentify(source, "ok", elapsed)
	h.publishEvent(c, source, elapsed, &result, nil)
	c.JSON(http.StatusOK, result)
}

// IssueToken answers POST /api/token with a short-lived access token.
func (h *IdentifyHandler) IssueToken(c *gin.Context) {
	token, err := h.tokens.Issue(c.Request.Context())
	if errors.Is(err, tokens.ErrStoreFull) {
		h.logger.Warn("Token store full", zap.String("client_ip", c.ClientIP()))
		c.Header("Retry-After", "60")
		h.respondError(c, http.StatusTooManyRequests, "Too many access tokens, try again later")
		return
	}
	if err != nil {
		h.logger.Error("Failed to issue token", zap.Error(err))
		h.respondError(c, http.StatusServiceUnavailable, "Token store unavailable")
		return
	}

	metrics.IncTokensIssued()
	c.JSON(http.StatusOK, token)
}

// HealthCheck
func (h *IdentifyHandler) HealthCheck(c *gin.Context) {
	services := map[string]string{
		"tokens": h.tokens.HealthCheck(c.Request.Context()),
		"events": h.events.HealthCheck(),
	}
	if h.identifier.Configured() {
		services["recognizer"] = models.HealthHealthy
	} else {
		services["recognizer"] = models.HealthUnhealthy + ": not configured"
	}

	overall := h.calculateOverallHealth(services)

	statusCode := http.StatusOK
	if overall == models.HealthUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, models.APIResponse{
		Success: overall == models.HealthHealthy,
		Data: models.HealthCheck{
			Status:    overall,
			Timestamp: time.Now(),
			Services:  services,
		},
	})
}
