package intel

import (
	"context"
	"sync"
	"time"

	"github.com/banking/withdrawal-risk-service/internal/config"
	"github.com/banking/withdrawal-risk-service/internal/domain"
)

// StaticSignals holds market and network state set by configuration or ops
type StaticSignals struct {
	mu             sync.RWMutex
	highVolatility bool
	congested      map[int64]bool
	updatedAt      time.Time
}

// NewStaticSignals seeds signals from the risk configuration
func NewStaticSignals(cfg config.RiskConfig) *StaticSignals {
	s := &StaticSignals{
		highVolatility: cfg.HighMarketVolatility,
		congested:      make(map[int64]bool, len(cfg.CongestedChains)),
		updatedAt:      time.Now(),
	}
	for _, id := range cfg.CongestedChains {
		s.congested[id] = true
	}
	return s
}

// GetMarketConditions returns the current market state
func (s *StaticSignals) GetMarketConditions(_ context.Context) (*domain.MarketConditions, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &domain.MarketConditions{
		HighVolatility: s.highVolatility,
		UpdatedAt:      s.updatedAt,
	}, nil
}

// GetNetworkStatus returns the state of chainID
func (s *StaticSignals) GetNetworkStatus(_ context.Context, chainID int64) (*domain.NetworkStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &domain.NetworkStatus{
		ChainID:   chainID,
		Congested: s.congested[chainID],
	}, nil
}

// SetHighVolatility flips the market volatility flag
func (s *StaticSignals) SetHighVolatility(v bool) {
	s.mu.Lock()
	s.highVolatility = v
	s.updatedAt = time.Now()
	s.mu.Unlock()
}

// SetCongested marks chainID as congested or clear
func (s *StaticSignals) SetCongested(chainID int64, congested bool) {
	s.mu.Lock()
	if congested {
		s.congested[chainID] = true
	} else {
		delete(s.congested, chainID)
	}
	s.updatedAt = time.Now()
	s.mu.Unlock()
}
