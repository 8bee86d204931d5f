// Package api exposes the analysis service over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Intervyou-site/intervyou/domain/entities"
	"github.com/Intervyou-site/intervyou/domain/repositories"
	"github.com/Intervyou-site/intervyou/internal/analysis"
	"github.com/Intervyou-site/intervyou/internal/auth"
	"github.com/Intervyou-site/intervyou/internal/jobs"
	"github.com/Intervyou-site/intervyou/internal/websocket"
)

// QualityChecker runs the quality gate synchronously
type QualityChecker interface {
	Validate(ctx context.Context, path string) (entities.QualityReport, error)
}

// JobService queues and looks up background analyses
type JobService interface {
	Submit(ctx context.Context, videoPath, transcript string) (*entities.Job, error)
	Get(ctx context.Context, id string) (*entities.Job, error)
}

// Handler serves the HTTP API
type Handler struct {
	quality   QualityChecker
	jobs      JobService
	hub       *websocket.Hub
	tokens    *auth.TokenIssuer
	validator *validator.Validate
	logger    *zap.Logger
}

// NewHandler creates the API handler. tokens may be nil to accept
// anonymous websocket connections.
func NewHandler(quality QualityChecker, jobService JobService, hub *websocket.Hub, tokens *auth.TokenIssuer, logger *zap.Logger) *Handler {
	return &Handler{
		quality:   quality,
		jobs:      jobService,
		hub:       hub,
		tokens:    tokens,
		validator: validator.New(),
		logger:    logger,
	}
}

// InitRoutes initializes all API routes
func InitRoutes(e *echo.Echo, h *Handler) {
	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "intervyou-analysis",
		})
	})

	// API v1 routes
	v1 := e.Group("/api/v1")
	if h.tokens != nil {
		v1.Use(h.requireToken)
	}
	v1.POST("/validate", h.validate)
	v1.POST("/analyses", h.submitAnalysis)
	v1.GET("/analyses/:id", h.getAnalysis)

	e.GET("/ws/realtime_analysis", h.realtime)
}

// userIDKey holds the authenticated user in the echo context.
const userIDKey = "userID"

// requireToken rejects requests without a valid bearer token
func (h *Handler) requireToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, errResp := h.authenticate(c)
		if errResp != nil {
			return c.JSON(http.StatusUnauthorized, errResp)
		}
		c.Set(userIDKey, userID)
		return next(c)
	}
}

// authenticate resolves the user from the Authorization header or, for
// websocket upgrades, the token query parameter
func (h *Handler) authenticate(c echo.Context) (string, *ErrorResponse) {
	token := bearerToken(c.Request().Header.Get("Authorization"))
	if token == "" {
		// browsers cannot set headers on websocket requests
		token = c.QueryParam("token")
	}
	if token == "" {
		h.logger.Warn("Request rejected: missing token", zap.String("path", c.Path()))
		return "", &ErrorResponse{
			Error:   "missing_token",
			Message: "JWT token is required",
		}
	}

	claims, err := h.tokens.ValidateToken(token)
	if err != nil {
		h.logger.Warn("Request rejected: invalid token", zap.String("path", c.Path()), zap.Error(err))
		return "", &ErrorResponse{
			Error:   "invalid_token",
			Message: "Invalid or expired JWT token",
		}
	}
	return claims.UserID, nil
}

func (h *Handler) validate(c echo.Context) error {
	var req ValidateRequest
	if errResp := h.bind(c, &req); errResp != nil {
		return c.JSON(http.StatusBadRequest, errResp)
	}

	report, err := h.quality.Validate(c.Request().Context(), req.VideoPath)
	if err != nil {
		if errors.Is(err, analysis.ErrUnreadableInput) {
			return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
				Error:   "unreadable_input",
				Message: err.Error(),
			})
		}
		h.logger.Error("Validation failed", zap.String("path", req.VideoPath), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to validate video",
		})
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) submitAnalysis(c echo.Context) error {
	var req AnalyzeRequest
	if errResp := h.bind(c, &req); errResp != nil {
		return c.JSON(http.StatusBadRequest, errResp)
	}

	job, err := h.jobs.Submit(c.Request().Context(), req.VideoPath, req.Transcript)
	switch {
	case errors.Is(err, jobs.ErrRateLimited):
		return c.JSON(http.StatusTooManyRequests, ErrorResponse{
			Error:   "rate_limited",
			Message: err.Error(),
		})
	case errors.Is(err, jobs.ErrQueueFull), errors.Is(err, jobs.ErrStopped):
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:   "unavailable",
			Message: err.Error(),
		})
	case err != nil:
		h.logger.Error("Failed to submit analysis", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to submit analysis",
		})
	}

	return c.JSON(http.StatusAccepted, AnalyzeResponse{JobID: job.ID, State: job.State})
}

func (h *Handler) getAnalysis(c echo.Context) error {
	job, err := h.jobs.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrJobNotFound) {
			return c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Analysis not found",
			})
		}
		h.logger.Error("Failed to load analysis", zap.String("jobID", c.Param("id")), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to load analysis",
		})
	}
	return c.JSON(http.StatusOK, job)
}

// realtime upgrades to the live analysis websocket, checking the bearer
// token when auth is enabled
func (h *Handler) realtime(c echo.Context) error {
	if h.tokens == nil {
		return websocket.HandleWebSocket(h.hub, c, "")
	}

	userID, errResp := h.authenticate(c)
	if errResp != nil {
		return c.JSON(http.StatusUnauthorized, errResp)
	}

	h.logger.Info("WebSocket connection authenticated", zap.String("userID", userID))
	return websocket.HandleWebSocket(h.hub, c, userID)
}

// bind decodes and validates the request body
func (h *Handler) bind(c echo.Context, req any) *ErrorResponse {
	if err := c.Bind(req); err != nil {
		return &ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		}
	}
	if err := h.validator.Struct(req); err != nil {
		return &ErrorResponse{
			Error:   "missing_fields",
			Message: err.Error(),
		}
	}
	return nil
}

func bearerToken(header string) string {
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}
