package risk

import (
	"context"
	"fmt"

	"github.com/banking/withdrawal-risk-service/internal/chain"
	"github.com/banking/withdrawal-risk-service/internal/domain"
)

// assessTechnical scores the destination address, client IP and device
func (e *Engine) assessTechnical(ctx context.Context, in *domain.WithdrawalRiskInput) (assessment, error) {
	var a assessment

	if !e.chains.IsValidAddress(in.WalletAddress, in.ChainID) {
		a.add(newFactor(FactorInvalidAddress,
			fmt.Sprintf("Address is not valid for chain %d (%s)", in.ChainID, chain.Name(in.ChainID))))
	}

	blacklisted, err := e.screener.IsBlacklisted(ctx, in.WalletAddress)
	if err != nil {
		return assessment{}, fmt.Errorf("blacklist lookup: %w", err)
	}
	if blacklisted {
		a.add(newFactor(FactorBlacklisted, ""))
	}

	if ip := in.IPAddress(); ip != "" {
		class, err := e.ipClassifier.ClassifyIP(ctx, ip)
		if err != nil {
			return assessment{}, fmt.Errorf("classify ip: %w", err)
		}
		switch {
		case class == nil:
		case class.HighRisk:
			a.add(newFactor(FactorHighRiskIP, ipDetail(FactorHighRiskIP, class.Reason)))
		case class.MediumRisk:
			a.add(newFactor(FactorMediumRiskIP, ipDetail(FactorMediumRiskIP, class.Reason)))
		}
	}

	if fp := in.DeviceFingerprint(); fp != "" {
		seen, err := e.store.HasDeviceFingerprint(ctx, in.UserID, fp)
		if err != nil {
			return assessment{}, fmt.Errorf("device lookup: %w", err)
		}
		if !seen {
			a.add(newFactor(FactorNewDevice, ""))
		}
	}

	return a, nil
}

func ipDetail(name, reason string) string {
	if reason == "" {
		return ""
	}
	return factorCatalog[name].Description + ": " + reason
}
