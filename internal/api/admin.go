package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/banking/withdrawal-risk-service/internal/pkg/logger"
	"github.com/banking/withdrawal-risk-service/internal/watchlist"
)

// AdminScope is the token scope required for the admin routes
const AdminScope = "risk:admin"

// WatchlistWriter adds addresses to a watchlist
type WatchlistWriter interface {
	Add(ctx context.Context, list watchlist.List, addresses ...string) error
}

// IPRangeWriter registers high-risk network ranges
type IPRangeWriter interface {
	AddHighRisk(cidr string) error
}

// SignalWriter overrides market and network signals
type SignalWriter interface {
	SetHighVolatility(v bool)
	SetCongested(chainID int64, congested bool)
}

type addAddressesRequest struct {
	Addresses []string `json:"addresses"`
}

type addIPRangeRequest struct {
	CIDR string `json:"cidr"`
}

type marketSignalRequest struct {
	HighVolatility *bool `json:"high_volatility"`
}

type networkSignalRequest struct {
	Congested *bool `json:"congested"`
}

// AdminHandler lets operators feed the risk data sources at runtime
type AdminHandler struct {
	watchlists WatchlistWriter
	ipRanges   IPRangeWriter
	signals    SignalWriter
	log        *logger.Logger
}

// NewAdminHandler creates an admin handler
func NewAdminHandler(watchlists WatchlistWriter, ipRanges IPRangeWriter, signals SignalWriter, log *logger.Logger) *AdminHandler {
	return &AdminHandler{
		watchlists: watchlists,
		ipRanges:   ipRanges,
		signals:    signals,
		log:        log.Named("admin_api"),
	}
}

// Register mounts the admin routes on g behind RequireScope(AdminScope).
// Authentication is applied by the caller.
func (h *AdminHandler) Register(g *echo.Group) {
	admin := g.Group("/admin", RequireScope(AdminScope))
	admin.POST("/watchlists/:list", h.AddToWatchlist)
	admin.POST("/ip-ranges/high-risk", h.AddHighRiskRange)
	admin.PUT("/signals/market", h.SetMarketSignal)
	admin.PUT("/signals/networks/:chain_id", h.SetNetworkSignal)
}

// AddToWatchlist handles POST /api/v1/admin/watchlists/:list
func (h *AdminHandler) AddToWatchlist(c echo.Context) error {
	list, ok := watchlist.ParseList(c.Param("list"))
	if !ok {
		return badRequest(c, fmt.Sprintf("unknown watchlist %q", c.Param("list")))
	}

	var req addAddressesRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "malformed request body")
	}
	if len(req.Addresses) == 0 {
		return badRequest(c, "addresses is required")
	}
	for _, a := range req.Addresses {
		if !common.IsHexAddress(strings.TrimSpace(a)) {
			return badRequest(c, fmt.Sprintf("address %q is invalid", a))
		}
	}

	ctx := c.Request().Context()
	if err := h.watchlists.Add(ctx, list, req.Addresses...); err != nil {
		h.log.WithContext(ctx).Error("failed to update watchlist",
			logger.StringField("list", string(list)),
			logger.ErrorField(err),
		)
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:   "service_unavailable",
			Message: "watchlist could not be updated",
		})
	}

	h.audit(c, "watchlist updated",
		logger.StringField("list", string(list)),
		logger.IntField("count", len(req.Addresses)),
	)
	return c.NoContent(http.StatusNoContent)
}

// AddHighRiskRange handles POST /api/v1/admin/ip-ranges/high-risk
func (h *AdminHandler) AddHighRiskRange(c echo.Context) error {
	var req addIPRangeRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "malformed request body")
	}
	if err := h.ipRanges.AddHighRisk(strings.TrimSpace(req.CIDR)); err != nil {
		return badRequest(c, fmt.Sprintf("cidr %q is invalid", req.CIDR))
	}

	h.audit(c, "high risk range added", logger.StringField("cidr", req.CIDR))
	return c.NoContent(http.StatusNoContent)
}

// SetMarketSignal handles PUT /api/v1/admin/signals/market
func (h *AdminHandler) SetMarketSignal(c echo.Context) error {
	var req marketSignalRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "malformed request body")
	}
	if req.HighVolatility == nil {
		return badRequest(c, "high_volatility is required")
	}

	h.signals.SetHighVolatility(*req.HighVolatility)
	h.audit(c, "market signal updated", logger.BoolField("high_volatility", *req.HighVolatility))
	return c.NoContent(http.StatusNoContent)
}

// SetNetworkSignal handles PUT /api/v1/admin/signals/networks/:chain_id
func (h *AdminHandler) SetNetworkSignal(c echo.Context) error {
	chainID, err := strconv.ParseInt(c.Param("chain_id"), 10, 64)
	if err != nil || chainID <= 0 {
		return badRequest(c, "chain_id must be a positive integer")
	}

	var req networkSignalRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "malformed request body")
	}
	if req.Congested == nil {
		return badRequest(c, "congested is required")
	}

	h.signals.SetCongested(chainID, *req.Congested)
	h.audit(c, "network signal updated",
		logger.Int64Field("chain_id", chainID),
		logger.BoolField("congested", *req.Congested),
	)
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) audit(c echo.Context, msg string, fields ...zap.Field) {
	subject, _ := c.Get(ContextKeySubject).(string)
	fields = append(fields, logger.StringField("subject", subject))
	h.log.WithContext(c.Request().Context()).Info(msg, fields...)
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: msg})
}
