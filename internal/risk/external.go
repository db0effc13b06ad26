package risk

import (
	"context"
	"fmt"

	"github.com/banking/withdrawal-risk-service/internal/chain"
	"github.com/banking/withdrawal-risk-service/internal/domain"
)

// assessExternal scores market volatility and chain congestion
func (e *Engine) assessExternal(ctx context.Context, in *domain.WithdrawalRiskInput) (assessment, error) {
	var a assessment

	market, err := e.signals.GetMarketConditions(ctx)
	if err != nil {
		return assessment{}, fmt.Errorf("market conditions: %w", err)
	}
	if market != nil && market.HighVolatility {
		a.add(newFactor(FactorMarketVolatility, ""))
	}

	network, err := e.signals.GetNetworkStatus(ctx, in.ChainID)
	if err != nil {
		return assessment{}, fmt.Errorf("network status: %w", err)
	}
	if network != nil && network.Congested {
		a.add(newFactor(FactorNetworkCongestion,
			fmt.Sprintf("Network %s is congested", chain.Name(in.ChainID))))
	}

	return a, nil
}
