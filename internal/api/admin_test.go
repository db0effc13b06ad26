package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/netip"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banking/withdrawal-risk-service/internal/config"
	"github.com/banking/withdrawal-risk-service/internal/pkg/logger"
	"github.com/banking/withdrawal-risk-service/internal/watchlist"
)

type fakeWatchlists struct {
	mu    sync.Mutex
	added map[watchlist.List][]string
	err   error
}

func (f *fakeWatchlists) Add(_ context.Context, list watchlist.List, addresses ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.added == nil {
		f.added = map[watchlist.List][]string{}
	}
	f.added[list] = append(f.added[list], addresses...)
	return nil
}

type fakeIPRanges struct {
	ranges []string
}

func (f *fakeIPRanges) AddHighRisk(cidr string) error {
	if _, err := netip.ParsePrefix(cidr); err != nil {
		return err
	}
	f.ranges = append(f.ranges, cidr)
	return nil
}

type fakeSignals struct {
	volatile  *bool
	congested map[int64]bool
}

func (f *fakeSignals) SetHighVolatility(v bool) { f.volatile = &v }

func (f *fakeSignals) SetCongested(chainID int64, congested bool) {
	if f.congested == nil {
		f.congested = map[int64]bool{}
	}
	f.congested[chainID] = congested
}

type adminFixture struct {
	watchlists *fakeWatchlists
	ipRanges   *fakeIPRanges
	signals    *fakeSignals
}

func newAdminServer(f *adminFixture) *echo.Echo {
	e := echo.New()
	g := e.Group("/api/v1", JWTMiddleware(config.SecurityConfig{
		JWTSecret: testSecret,
		JWTIssuer: testIssuer,
	}))
	NewAdminHandler(f.watchlists, f.ipRanges, f.signals, logger.NewNop()).Register(g)
	return e
}

func newAdminFixture() *adminFixture {
	return &adminFixture{
		watchlists: &fakeWatchlists{},
		ipRanges:   &fakeIPRanges{},
		signals:    &fakeSignals{},
	}
}

func signScopedToken(t *testing.T, scope string) string {
	t.Helper()
	claims := Claims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "ops-console",
			Issuer:    testIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func TestAdminRequiresScope(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"no scope", signToken(t, testSecret, testIssuer, time.Hour), http.StatusForbidden},
		{"other scope", signScopedToken(t, "risk:read"), http.StatusForbidden},
		{"admin scope", signScopedToken(t, "risk:read risk:admin"), http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAdminFixture()
			e := newAdminServer(f)

			rec := doRequest(e, http.MethodPut, "/api/v1/admin/signals/market", `{"high_volatility":true}`, tt.token)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want != http.StatusNoContent {
				assert.Nil(t, f.signals.volatile)
			}
		})
	}
}

func TestAdminAddToWatchlist(t *testing.T) {
	f := newAdminFixture()
	e := newAdminServer(f)
	token := signScopedToken(t, AdminScope)

	rec := doRequest(e, http.MethodPost, "/api/v1/admin/watchlists/SANCTIONS",
		`{"addresses":["0x8589427373D6D84E98730D7795D8f6f8731FDA16"]}`, token)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"0x8589427373D6D84E98730D7795D8f6f8731FDA16"}, f.watchlists.added[watchlist.ListSanctions])
	assert.Empty(t, f.watchlists.added[watchlist.ListBlacklist])
}

func TestAdminAddToWatchlistValidation(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		body    string
		message string
	}{
		{"unknown list", "/api/v1/admin/watchlists/greylist", `{"addresses":["0x8589427373D6D84E98730D7795D8f6f8731FDA16"]}`, "unknown watchlist"},
		{"no addresses", "/api/v1/admin/watchlists/blacklist", `{"addresses":[]}`, "addresses is required"},
		{"bad address", "/api/v1/admin/watchlists/blacklist", `{"addresses":["not-an-address"]}`, "is invalid"},
		{"malformed json", "/api/v1/admin/watchlists/blacklist", `{"addresses":`, "malformed request body"},
	}

	token := signScopedToken(t, AdminScope)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAdminFixture()
			e := newAdminServer(f)

			rec := doRequest(e, http.MethodPost, tt.path, tt.body, token)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Contains(t, resp.Message, tt.message)
			assert.Empty(t, f.watchlists.added)
		})
	}
}

func TestAdminAddToWatchlistStoreFailure(t *testing.T) {
	f := newAdminFixture()
	f.watchlists.err = errors.New("redis down")
	e := newAdminServer(f)

	rec := doRequest(e, http.MethodPost, "/api/v1/admin/watchlists/blacklist",
		`{"addresses":["0x8589427373D6D84E98730D7795D8f6f8731FDA16"]}`, signScopedToken(t, AdminScope))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAdminAddHighRiskRange(t *testing.T) {
	f := newAdminFixture()
	e := newAdminServer(f)
	token := signScopedToken(t, AdminScope)

	rec := doRequest(e, http.MethodPost, "/api/v1/admin/ip-ranges/high-risk", `{"cidr":"203.0.113.0/24"}`, token)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"203.0.113.0/24"}, f.ipRanges.ranges)

	rec = doRequest(e, http.MethodPost, "/api/v1/admin/ip-ranges/high-risk", `{"cidr":"203.0.113.0"}`, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, f.ipRanges.ranges, 1)
}

func TestAdminSetNetworkSignal(t *testing.T) {
	f := newAdminFixture()
	e := newAdminServer(f)
	token := signScopedToken(t, AdminScope)

	rec := doRequest(e, http.MethodPut, "/api/v1/admin/signals/networks/56", `{"congested":true}`, token)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, f.signals.congested[56])

	rec = doRequest(e, http.MethodPut, "/api/v1/admin/signals/networks/56", `{"congested":false}`, token)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, f.signals.congested[56])

	rec = doRequest(e, http.MethodPut, "/api/v1/admin/signals/networks/abc", `{"congested":true}`, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(e, http.MethodPut, "/api/v1/admin/signals/networks/1", `{}`, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotContains(t, f.signals.congested, int64(1))
}

func TestAdminSetMarketSignal(t *testing.T) {
	f := newAdminFixture()
	e := newAdminServer(f)
	token := signScopedToken(t, AdminScope)

	rec := doRequest(e, http.MethodPut, "/api/v1/admin/signals/market", `{}`, token)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, f.signals.volatile)

	rec = doRequest(e, http.MethodPut, "/api/v1/admin/signals/market", `{"high_volatility":false}`, token)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, f.signals.volatile)
	assert.False(t, *f.signals.volatile)
}
