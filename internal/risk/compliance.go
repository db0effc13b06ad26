package risk

import (
	"context"
	"fmt"

	"github.com/banking/withdrawal-risk-service/internal/domain"
)

const (
	amlMediumRiskAmount = 50000.0
	reportingThreshold  = 10000.0
)

// amlRisk is the outcome of the AML amount heuristic
type amlRisk int

const (
	amlRiskNone amlRisk = iota
	amlRiskMedium
	// amlRiskHigh has no rule yet; see checkAML.
	amlRiskHigh
)

// checkAML applies the AML amount heuristic.
// TODO: add a high-risk rule once compliance defines its threshold.
func checkAML(amount float64) amlRisk {
	if amount >= amlMediumRiskAmount {
		return amlRiskMedium
	}
	return amlRiskNone
}

// assessCompliance scores AML, sanctions and reporting obligations
func (e *Engine) assessCompliance(ctx context.Context, in *domain.WithdrawalRiskInput) (assessment, error) {
	var a assessment

	if checkAML(in.Amount) == amlRiskMedium {
		a.add(newFactor(FactorAMLMediumRisk, ""))
	}

	sanctioned, err := e.screener.IsSanctioned(ctx, in.WalletAddress)
	if err != nil {
		return assessment{}, fmt.Errorf("sanctions lookup: %w", err)
	}
	if sanctioned {
		a.add(newFactor(FactorSanctioned, ""))
	}

	if in.Amount >= reportingThreshold {
		a.add(newFactor(FactorReportingNeeded, ""))
	}

	return a, nil
}
