package risk

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/banking/withdrawal-risk-service/internal/domain"
	"github.com/banking/withdrawal-risk-service/internal/pkg/logger"
)

const (
	day           = 24 * time.Hour
	dormantAfter  = 90 * day
	newAccount1d  = 1 * day
	newAccount7d  = 7 * day
	newAccount30d = 30 * day
)

// assessIdentity scores KYC state, account age and login recency
func (e *Engine) assessIdentity(ctx context.Context, in *domain.WithdrawalRiskInput) (assessment, error) {
	var a assessment

	user, err := e.store.GetUser(ctx, in.UserID)
	if errors.Is(err, domain.ErrUserNotFound) || (err == nil && user == nil) {
		a.add(newFactor(FactorUserNotFound, ""))
		return a, nil
	}
	if err != nil {
		return assessment{}, fmt.Errorf("get user: %w", err)
	}

	switch user.KYCStatus {
	case domain.KYCStatusPending:
		a.add(newFactor(FactorKYCPending, ""))
	case domain.KYCStatusRejected:
		a.add(newFactor(FactorKYCRejected, ""))
	case domain.KYCStatusExpired:
		a.add(newFactor(FactorKYCExpired, ""))
	case domain.KYCStatusApproved:
		a.add(newFactor(FactorKYCApproved, ""))
	default:
		// Unverified until proven otherwise
		e.log.Warn("unrecognised KYC status",
			logger.StringField("user_id", in.UserID),
			logger.StringField("kyc_status", string(user.KYCStatus)),
		)
		a.add(newFactor(FactorKYCPending,
			fmt.Sprintf("KYC status %q is not recognised", user.KYCStatus)))
	}

	now := e.now()
	switch age := user.AccountAge(now); {
	case age < newAccount1d:
		a.add(newFactor(FactorNewAccount1d, ""))
	case age < newAccount7d:
		a.add(newFactor(FactorNewAccount7d, ""))
	case age < newAccount30d:
		a.add(newFactor(FactorNewAccount30, ""))
	}

	if inactive, ok := user.InactiveFor(now); ok && inactive > dormantAfter {
		a.add(newFactor(FactorDormant,
			fmt.Sprintf("No login for %d days", int(inactive/day))))
	}

	return a, nil
}
