package risk

import (
	"strings"

	"github.com/banking/withdrawal-risk-service/internal/domain"
)

// criticalFactorScore is the individual score at which a factor counts as critical
const criticalFactorScore = 50

// Recommendation text
const (
	RecommendationApprove = "Low risk withdrawal. Approve automatically."
	RecommendationReview  = "Medium risk withdrawal. Manual review recommended before approval."
	RecommendationVerify  = "High risk withdrawal. Detailed review and additional verification required before approval."
	RecommendationReject  = "Critical risk withdrawal. Reject and escalate to the compliance team."

	WarningModerateRisk    = "Withdrawal shows moderate risk indicators"
	WarningHighRisk        = "Multiple high-risk indicators detected"
	WarningSeniorReview    = "Approval requires a senior reviewer"
	WarningCriticalRisk    = "Critical risk level detected"
	WarningDoNotProcess    = "Do not process without compliance sign-off"
	WarningSanctionedParty = "Destination address appears on a blacklist or sanctions list"

	ActionVerifyKYC         = "Verify user KYC status"
	ActionUpdateKYC         = "Request updated KYC documentation"
	ActionSourceOfFunds     = "Verify source of funds"
	ActionPatternAnalysis   = "Analyze recent withdrawal patterns"
	ActionFreezeAccount     = "Immediately freeze account"
	ActionFullInvestigation = "Open a full investigation"
	ActionRegulatoryReport  = "Consider filing a regulatory report"
)

// Recommendation is the actionable part of an assessment
type Recommendation struct {
	Recommendation  string
	Warnings        []string
	RequiredActions []string
	AutoApproved    bool
}

// GenerateRecommendations turns a tier and its factors into reviewer guidance
func GenerateRecommendations(score int, level domain.RiskLevel, factors []domain.RiskFactor) Recommendation {
	rec := Recommendation{
		Warnings:        []string{},
		RequiredActions: []string{},
	}

	hasKYCIssues := anyFactor(factors, func(f domain.RiskFactor) bool {
		return strings.Contains(f.Name, "kyc")
	})
	hasBlacklistIssues := anyFactor(factors, func(f domain.RiskFactor) bool {
		return f.Name == FactorBlacklisted || f.Name == FactorSanctioned
	})
	hasCriticalFactors := anyFactor(factors, func(f domain.RiskFactor) bool {
		return f.Score >= criticalFactorScore
	})

	switch level {
	case domain.RiskLevelLow:
		rec.Recommendation = RecommendationApprove
		rec.AutoApproved = true

	case domain.RiskLevelMedium:
		rec.Recommendation = RecommendationReview
		rec.Warnings = append(rec.Warnings, WarningModerateRisk)
		if hasKYCIssues {
			rec.RequiredActions = append(rec.RequiredActions, ActionVerifyKYC)
		}

	case domain.RiskLevelHigh:
		rec.Recommendation = RecommendationVerify
		rec.Warnings = append(rec.Warnings, WarningHighRisk, WarningSeniorReview)
		if hasKYCIssues {
			rec.RequiredActions = append(rec.RequiredActions, ActionUpdateKYC)
		}
		if anyFactorNameContains(factors, "amount") {
			rec.RequiredActions = append(rec.RequiredActions, ActionSourceOfFunds)
		}
		if anyFactorNameContains(factors, "frequency") {
			rec.RequiredActions = append(rec.RequiredActions, ActionPatternAnalysis)
		}

	case domain.RiskLevelCritical:
		rec.Recommendation = RecommendationReject
		rec.Warnings = append(rec.Warnings, WarningCriticalRisk, WarningDoNotProcess)
		if hasBlacklistIssues {
			rec.Warnings = append(rec.Warnings, WarningSanctionedParty)
			rec.RequiredActions = append(rec.RequiredActions, ActionFreezeAccount)
		}
		if hasCriticalFactors {
			rec.RequiredActions = append(rec.RequiredActions, ActionFullInvestigation, ActionRegulatoryReport)
		}
	}

	return rec
}

func anyFactor(factors []domain.RiskFactor, pred func(domain.RiskFactor) bool) bool {
	for _, f := range factors {
		if pred(f) {
			return true
		}
	}
	return false
}

func anyFactorNameContains(factors []domain.RiskFactor, substr string) bool {
	return anyFactor(factors, func(f domain.RiskFactor) bool {
		return strings.Contains(f.Name, substr)
	})
}
