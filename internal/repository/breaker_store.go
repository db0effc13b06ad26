package repository

import (
	"context"
	"errors"

	"github.com/sony/gobreaker"

	"github.com/banking/withdrawal-risk-service/internal/config"
	"github.com/banking/withdrawal-risk-service/internal/domain"
	"github.com/banking/withdrawal-risk-service/internal/pkg/breaker"
	"github.com/banking/withdrawal-risk-service/internal/pkg/logger"
)

// Store is the read interface the risk engine consumes
type Store interface {
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	GetRecentWithdrawals(ctx context.Context, userID string, limit int) ([]domain.Withdrawal, error)
	HasDeviceFingerprint(ctx context.Context, userID, fingerprint string) (bool, error)
}

// BreakerStore guards a Store with a circuit breaker so a database outage
// fails fast instead of stalling every assessor until its timeout.
type BreakerStore struct {
	next Store
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerStore wraps next
func NewBreakerStore(next Store, cfg config.BreakerConfig, log *logger.Logger) *BreakerStore {
	return &BreakerStore{
		next: next,
		cb:   breaker.New("postgres_store", cfg, log.Named("postgres_store")),
	}
}

// GetUser delegates to the wrapped store. A missing user is a valid answer
// and does not count as a breaker failure.
func (b *BreakerStore) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	var notFound bool
	user, err := breaker.Execute(b.cb, func() (*domain.User, error) {
		u, err := b.next.GetUser(ctx, userID)
		if errors.Is(err, domain.ErrUserNotFound) {
			notFound = true
			return nil, nil
		}
		return u, err
	})
	if notFound {
		return nil, domain.ErrUserNotFound
	}
	return user, err
}

// GetRecentWithdrawals delegates to the wrapped store
func (b *BreakerStore) GetRecentWithdrawals(ctx context.Context, userID string, limit int) ([]domain.Withdrawal, error) {
	return breaker.Execute(b.cb, func() ([]domain.Withdrawal, error) {
		return b.next.GetRecentWithdrawals(ctx, userID, limit)
	})
}

// HasDeviceFingerprint delegates to the wrapped store
func (b *BreakerStore) HasDeviceFingerprint(ctx context.Context, userID, fingerprint string) (bool, error) {
	return breaker.Execute(b.cb, func() (bool, error) {
		return b.next.HasDeviceFingerprint(ctx, userID, fingerprint)
	})
}

// State returns the breaker state name
func (b *BreakerStore) State() string {
	return b.cb.State().String()
}
