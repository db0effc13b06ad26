package watchlist

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/banking/withdrawal-risk-service/internal/chain"
	"github.com/banking/withdrawal-risk-service/internal/config"
	"github.com/banking/withdrawal-risk-service/internal/pkg/breaker"
	"github.com/banking/withdrawal-risk-service/internal/pkg/logger"
)

// List names a watchlist
type List string

const (
	ListBlacklist List = "blacklist"
	ListSanctions List = "sanctions"
)

// ParseList maps a list name to a List
func ParseList(name string) (List, bool) {
	switch l := List(strings.ToLower(name)); l {
	case ListBlacklist, ListSanctions:
		return l, true
	}
	return "", false
}

// Store is the shared backing store for watchlists
type Store interface {
	IsMember(ctx context.Context, list List, address string) (bool, error)
	Members(ctx context.Context, list List) ([]string, error)
	Add(ctx context.Context, list List, addresses ...string) error
}

// Screener checks wallet addresses against the internal blacklist and the
// sanctions list. Lookups hit an in-memory index first and fall back to the
// store behind a circuit breaker.
type Screener struct {
	store   Store
	breaker *gobreaker.CircuitBreaker
	log     *logger.Logger

	// Seed entries from configuration; always present in the index
	seeds map[List][]string

	index   map[List]map[string]struct{}
	indexMu sync.RWMutex
}

// NewScreener creates a screener seeded from configuration. store may be nil,
// in which case only the seeded index is consulted.
func NewScreener(store Store, riskCfg config.RiskConfig, breakerCfg config.BreakerConfig, log *logger.Logger) *Screener {
	s := &Screener{
		store: store,
		log:   log.Named("address_screener"),
		seeds: map[List][]string{
			ListBlacklist: riskCfg.BlacklistedAddrs,
			ListSanctions: riskCfg.SanctionedAddrs,
		},
	}
	s.breaker = breaker.New("watchlist_store", breakerCfg, s.log)
	s.rebuild(nil)
	return s
}

// IsBlacklisted reports whether address is on the internal blacklist
func (s *Screener) IsBlacklisted(ctx context.Context, address string) (bool, error) {
	return s.check(ctx, ListBlacklist, address)
}

// IsSanctioned reports whether address is on the sanctions list
func (s *Screener) IsSanctioned(ctx context.Context, address string) (bool, error) {
	return s.check(ctx, ListSanctions, address)
}

func (s *Screener) check(ctx context.Context, list List, address string) (bool, error) {
	if address == "" {
		return false, nil
	}
	key := chain.CanonicalAddress(address)

	// 1. In-memory index
	if s.indexed(list, key) {
		return true, nil
	}

	if s.store == nil {
		return false, nil
	}

	// 2. Backing store
	return breaker.Execute(s.breaker, func() (bool, error) {
		return s.store.IsMember(ctx, list, key)
	})
}

// Add puts addresses on a list, both in the index and in the store
func (s *Screener) Add(ctx context.Context, list List, addresses ...string) error {
	keys := make([]string, 0, len(addresses))
	for _, a := range addresses {
		keys = append(keys, chain.CanonicalAddress(a))
	}

	if s.store != nil {
		if err := s.store.Add(ctx, list, keys...); err != nil {
			return err
		}
	}

	s.indexMu.Lock()
	for _, k := range keys {
		s.index[list][k] = struct{}{}
	}
	s.indexMu.Unlock()
	return nil
}

// LoadIndex reloads both lists from the store into the in-memory index
func (s *Screener) LoadIndex(ctx context.Context) error {
	if s.store == nil {
		return nil
	}

	loaded := make(map[List][]string, 2)
	for _, list := range []List{ListBlacklist, ListSanctions} {
		members, err := breaker.Execute(s.breaker, func() ([]string, error) {
			return s.store.Members(ctx, list)
		})
		if err != nil {
			return err
		}
		loaded[list] = members
	}

	s.rebuild(loaded)
	for list, members := range loaded {
		s.log.WatchlistLoaded(string(list), len(members))
	}
	return nil
}

// Run refreshes the index every interval until ctx is cancelled
func (s *Screener) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 || s.store == nil {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.LoadIndex(ctx); err != nil {
				s.log.Warn("watchlist refresh failed", logger.ErrorField(err))
			}
		}
	}
}

// Size returns the number of indexed entries on list
func (s *Screener) Size(list List) int {
	s.indexMu.RLock()
	defer s.indexMu.RUnlock()
	return len(s.index[list])
}

// rebuild replaces the index with seeds plus the given store contents
func (s *Screener) rebuild(loaded map[List][]string) {
	index := map[List]map[string]struct{}{
		ListBlacklist: {},
		ListSanctions: {},
	}
	for list, seeds := range s.seeds {
		for _, a := range seeds {
			index[list][chain.CanonicalAddress(a)] = struct{}{}
		}
	}
	for list, members := range loaded {
		for _, a := range members {
			index[list][chain.CanonicalAddress(a)] = struct{}{}
		}
	}

	s.indexMu.Lock()
	s.index = index
	s.indexMu.Unlock()
}

// indexed checks the in-memory index
func (s *Screener) indexed(list List, key string) bool {
	s.indexMu.RLock()
	defer s.indexMu.RUnlock()

	_, found := s.index[list][key]
	return found
}
