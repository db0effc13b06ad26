package risk

import (
	"context"
	"fmt"

	"github.com/banking/withdrawal-risk-service/internal/domain"
)

const defaultHistoryLimit = 50

// Amount tiers
const (
	veryLargeAmount   = 100000.0
	largeAmount       = 50000.0
	significantAmount = 10000.0
)

// historyStats summarises a user's recent withdrawals
type historyStats struct {
	count24h    int
	count7d     int
	rejected30d int
	avgAmount   float64
	maxAmount   float64
	hasHistory  bool
}

func (e *Engine) summarizeHistory(history []domain.Withdrawal) historyStats {
	now := e.now()
	dayAgo := now.Add(-day)
	weekAgo := now.Add(-7 * day)
	monthAgo := now.Add(-30 * day)

	var s historyStats
	var total float64
	for i, w := range history {
		if w.CreatedAt.After(dayAgo) {
			s.count24h++
		}
		if w.CreatedAt.After(weekAgo) {
			s.count7d++
		}
		if w.Status == domain.WithdrawalStatusRejected && w.CreatedAt.After(monthAgo) {
			s.rejected30d++
		}
		total += w.Amount
		if i == 0 || w.Amount > s.maxAmount {
			s.maxAmount = w.Amount
		}
	}
	if len(history) > 0 {
		s.hasHistory = true
		s.avgAmount = total / float64(len(history))
	}
	return s
}

// assessBehavior scores withdrawal frequency, amount anomalies and rejections
func (e *Engine) assessBehavior(ctx context.Context, in *domain.WithdrawalRiskInput) (assessment, error) {
	limit := e.cfg.HistoryLimit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	history, err := e.store.GetRecentWithdrawals(ctx, in.UserID, limit)
	if err != nil {
		return assessment{}, fmt.Errorf("get recent withdrawals: %w", err)
	}

	stats := e.summarizeHistory(history)

	var a assessment

	// Frequency
	if stats.count24h >= 5 {
		a.add(newFactor(FactorHighFrequency24h,
			fmt.Sprintf("%d withdrawals in the last 24 hours", stats.count24h)))
	} else if stats.count24h >= 3 {
		a.add(newFactor(FactorMediumFrequency24h,
			fmt.Sprintf("%d withdrawals in the last 24 hours", stats.count24h)))
	}
	if stats.count7d >= 15 {
		a.add(newFactor(FactorHighFrequency7d,
			fmt.Sprintf("%d withdrawals in the last 7 days", stats.count7d)))
	}

	// Amount against history
	if stats.hasHistory {
		if in.Amount > stats.avgAmount*5 {
			a.add(newFactor(FactorAmountVsAverage,
				fmt.Sprintf("Amount %.2f exceeds 5x the average of %.2f", in.Amount, stats.avgAmount)))
		}
		if in.Amount > stats.maxAmount*2 {
			a.add(newFactor(FactorAmountVsMax,
				fmt.Sprintf("Amount %.2f exceeds 2x the maximum of %.2f", in.Amount, stats.maxAmount)))
		}
	}

	// Absolute amount
	switch {
	case in.Amount >= veryLargeAmount:
		a.add(newFactor(FactorVeryLargeAmount, ""))
	case in.Amount >= largeAmount:
		a.add(newFactor(FactorLargeAmount, ""))
	case in.Amount >= significantAmount:
		a.add(newFactor(FactorSignificantAmount, ""))
	}

	// Rejections
	if stats.rejected30d >= 3 {
		a.add(newFactor(FactorManyRejections,
			fmt.Sprintf("%d rejected withdrawals in the last 30 days", stats.rejected30d)))
	} else if stats.rejected30d >= 1 {
		a.add(newFactor(FactorRecentRejection,
			fmt.Sprintf("%d rejected withdrawal(s) in the last 30 days", stats.rejected30d)))
	}

	return a, nil
}
