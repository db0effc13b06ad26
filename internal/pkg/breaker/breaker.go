// Package breaker builds circuit breakers for remote collaborators.
package breaker

import (
	"context"
	"errors"
	"fmt"

	"github.com/sony/gobreaker"

	"github.com/banking/withdrawal-risk-service/internal/config"
	"github.com/banking/withdrawal-risk-service/internal/domain"
	"github.com/banking/withdrawal-risk-service/internal/pkg/logger"
)

// New creates a breaker that opens after cfg.ConsecutiveFailures failures in a row.
// Cancelled or expired caller contexts are not failures of the collaborator.
func New(name string, cfg config.BreakerConfig, log *logger.Logger) *gobreaker.CircuitBreaker {
	threshold := cfg.ConsecutiveFailures
	if threshold == 0 {
		threshold = 5
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful:  isSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.BreakerStateChanged(name, from.String(), to.String())
		},
	})
}

func isSuccessful(err error) bool {
	return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Execute runs fn through cb and returns its typed result.
// Open-state rejections are reported as domain.ErrCircuitOpen.
func Execute[T any](cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	var zero T
	out, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%s: %w", cb.Name(), domain.ErrCircuitOpen)
		}
		return zero, err
	}
	v, _ := out.(T)
	return v, nil
}
