// Package api exposes the risk engine over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/banking/withdrawal-risk-service/internal/domain"
	"github.com/banking/withdrawal-risk-service/internal/events"
	"github.com/banking/withdrawal-risk-service/internal/pkg/logger"
	"github.com/banking/withdrawal-risk-service/internal/risk"
)

const publishTimeout = 2 * time.Second

// Assessor is the engine surface used by the handler
type Assessor interface {
	Assess(ctx context.Context, in *domain.WithdrawalRiskInput) (*domain.RiskAssessmentResult, error)
	Stats() risk.Stats
}

// ErrorResponse is the body of every non-2xx answer
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Handler serves risk assessment requests
type Handler struct {
	engine    Assessor
	publisher events.Publisher
	log       *logger.Logger
}

// NewHandler creates a handler. A nil publisher disables events.
func NewHandler(engine Assessor, publisher events.Publisher, log *logger.Logger) *Handler {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Handler{
		engine:    engine,
		publisher: publisher,
		log:       log.Named("api"),
	}
}

// Register mounts the routes on g. Middleware such as auth is applied by the caller.
func (h *Handler) Register(g *echo.Group) {
	g.POST("/withdrawals/risk-assessment", h.AssessWithdrawal)
	g.GET("/risk/stats", h.GetStats)
}

// AssessWithdrawal handles POST /api/v1/withdrawals/risk-assessment
func (h *Handler) AssessWithdrawal(c echo.Context) error {
	var in domain.WithdrawalRiskInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "malformed request body",
		})
	}

	if err := in.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
	}

	ctx := c.Request().Context()
	if reqID := c.Response().Header().Get(echo.HeaderXRequestID); reqID != "" {
		ctx = context.WithValue(ctx, logger.RequestIDKey, reqID)
	}

	result, err := h.engine.Assess(ctx, &in)
	if err != nil {
		h.log.WithContext(ctx).Error("risk assessment unavailable",
			logger.StringField("user_id", in.UserID),
			logger.ErrorField(err),
		)
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:   "service_unavailable",
			Message: "risk assessment could not be completed",
		})
	}
	h.publish(ctx, &in, result)

	return c.JSON(http.StatusOK, result)
}

// GetStats handles GET /api/v1/risk/stats
func (h *Handler) GetStats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.engine.Stats())
}

// publish emits the completion event. Failures are logged only.
func (h *Handler) publish(ctx context.Context, in *domain.WithdrawalRiskInput, result *domain.RiskAssessmentResult) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	event := events.NewAssessmentCompleted(in, result)
	if err := h.publisher.PublishAssessment(ctx, event); err != nil {
		h.log.WithContext(ctx).Warn("failed to publish assessment event",
			logger.StringField("assessment_id", result.AssessmentID.String()),
			logger.ErrorField(err),
		)
	}
}
