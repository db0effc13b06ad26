package watchlist

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banking/withdrawal-risk-service/internal/config"
	"github.com/banking/withdrawal-risk-service/internal/domain"
	"github.com/banking/withdrawal-risk-service/internal/pkg/logger"
)

const (
	seededAddr   = "0x8617E340B3D01FA5F11F306F4090FD50E238070D"
	remoteAddr   = "0x52908400098527886e0f7030069857d2e4169ee7"
	unlistedAddr = "0xde709f2102306220921060314715629080e2fb77"
)

// --- Fake Store ---

type fakeStore struct {
	mu      sync.Mutex
	sets    map[List]map[string]bool
	err     error
	lookups int
}

func newFakeStore() *fakeStore {
	return &fakeStore{sets: map[List]map[string]bool{
		ListBlacklist: {},
		ListSanctions: {},
	}}
}

func (f *fakeStore) IsMember(_ context.Context, list List, address string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	if f.err != nil {
		return false, f.err
	}
	return f.sets[list][address], nil
}

func (f *fakeStore) Members(_ context.Context, list List) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []string
	for a := range f.sets[list] {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeStore) Add(_ context.Context, list List, addresses ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, a := range addresses {
		f.sets[list][a] = true
	}
	return nil
}

func newTestScreener(store Store) *Screener {
	riskCfg := config.RiskConfig{
		BlacklistedAddrs: []string{seededAddr},
	}
	breakerCfg := config.BreakerConfig{
		MaxRequests:         1,
		Timeout:             time.Minute,
		ConsecutiveFailures: 3,
	}
	return NewScreener(store, riskCfg, breakerCfg, logger.NewNop())
}

func TestSeededBlacklistIsCaseInsensitive(t *testing.T) {
	s := newTestScreener(nil)
	ctx := context.Background()

	hit, err := s.IsBlacklisted(ctx, seededAddr)
	require.NoError(t, err)
	assert.True(t, hit)

	hit, err = s.IsBlacklisted(ctx, "0x8617e340b3d01fa5f11f306f4090fd50e238070d")
	require.NoError(t, err)
	assert.True(t, hit)

	hit, err = s.IsSanctioned(ctx, seededAddr)
	require.NoError(t, err)
	assert.False(t, hit, "blacklist seeds must not leak into sanctions")
}

func TestEmptyAddressNeverMatches(t *testing.T) {
	store := newFakeStore()
	s := newTestScreener(store)

	hit, err := s.IsSanctioned(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Zero(t, store.lookups)
}

func TestFallsBackToStore(t *testing.T) {
	store := newFakeStore()
	store.sets[ListSanctions][remoteAddr] = true
	s := newTestScreener(store)
	ctx := context.Background()

	hit, err := s.IsSanctioned(ctx, remoteAddr)
	require.NoError(t, err)
	assert.True(t, hit)

	hit, err = s.IsSanctioned(ctx, unlistedAddr)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, store.lookups)
}

func TestStoreErrorPropagates(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("connection refused")
	s := newTestScreener(store)

	_, err := s.IsBlacklisted(context.Background(), unlistedAddr)
	require.Error(t, err)

	// Seeded entries still resolve without the store
	hit, err := s.IsBlacklisted(context.Background(), seededAddr)
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("timeout")
	s := newTestScreener(store)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.IsSanctioned(ctx, unlistedAddr)
		require.Error(t, err)
	}

	_, err := s.IsSanctioned(ctx, unlistedAddr)
	assert.ErrorIs(t, err, domain.ErrCircuitOpen)
	assert.Equal(t, 3, store.lookups, "open breaker must not reach the store")
}

func TestLoadIndexMergesStoreAndSeeds(t *testing.T) {
	store := newFakeStore()
	store.sets[ListBlacklist][remoteAddr] = true
	store.sets[ListSanctions][unlistedAddr] = true
	s := newTestScreener(store)

	require.NoError(t, s.LoadIndex(context.Background()))

	assert.Equal(t, 2, s.Size(ListBlacklist))
	assert.Equal(t, 1, s.Size(ListSanctions))

	// Indexed hits do not touch the store
	hit, err := s.IsBlacklisted(context.Background(), remoteAddr)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Zero(t, store.lookups)
}

func TestAddUpdatesIndexAndStore(t *testing.T) {
	store := newFakeStore()
	s := newTestScreener(store)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, ListSanctions, "0x52908400098527886E0F7030069857D2E4169EE7"))

	assert.True(t, store.sets[ListSanctions][remoteAddr])
	hit, err := s.IsSanctioned(ctx, remoteAddr)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Zero(t, store.lookups)
}

func TestRunStopsOnCancel(t *testing.T) {
	store := newFakeStore()
	s := newTestScreener(store)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.NoError(t, store.Add(ctx, ListBlacklist, remoteAddr))
	require.Eventually(t, func() bool {
		return s.Size(ListBlacklist) == 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
