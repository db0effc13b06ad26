package domain

import (
	"time"

	"github.com/google/uuid"
)

// RiskLevel represents the risk severity
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "LOW"
	RiskLevelMedium   RiskLevel = "MEDIUM"
	RiskLevelHigh     RiskLevel = "HIGH"
	RiskLevelCritical RiskLevel = "CRITICAL"
)

// RiskCategory groups risk factors by the assessor that produced them
type RiskCategory string

const (
	CategoryIdentity   RiskCategory = "identity"
	CategoryBehavior   RiskCategory = "behavior"
	CategoryTechnical  RiskCategory = "technical"
	CategoryCompliance RiskCategory = "compliance"
	CategoryExternal   RiskCategory = "external"
)

// Risk tier boundaries (inclusive lower bounds)
const (
	MediumRiskThreshold   = 25
	HighRiskThreshold     = 50
	CriticalRiskThreshold = 80

	MinRiskScore = 0
	MaxRiskScore = 100
)

// RiskFactor is a single triggered risk signal.
// Weight is informational: Score is what gets summed.
type RiskFactor struct {
	Category    RiskCategory `json:"category"`
	Name        string       `json:"name"`
	Weight      float64      `json:"weight"`
	Score       int          `json:"score"`
	Description string       `json:"description"`
}

// RiskAssessmentResult is the outcome of a withdrawal risk assessment
type RiskAssessmentResult struct {
	AssessmentID uuid.UUID `json:"assessment_id"`
	UserID       string    `json:"user_id"`

	RiskScore   int          `json:"risk_score"` // 0-100
	RiskLevel   RiskLevel    `json:"risk_level"`
	RiskFactors []RiskFactor `json:"risk_factors"`

	AutoApproved    bool     `json:"auto_approved"`
	Recommendation  string   `json:"recommendation"`
	Warnings        []string `json:"warnings"`
	RequiredActions []string `json:"required_actions"`

	// Assessors that could not complete and contributed nothing
	DegradedAssessors []string `json:"degraded_assessors,omitempty"`

	DurationMs int64     `json:"duration_ms"`
	AssessedAt time.Time `json:"assessed_at"`
}

// DetermineRiskLevel maps a clamped risk score to its tier
func DetermineRiskLevel(score int) RiskLevel {
	switch {
	case score >= CriticalRiskThreshold:
		return RiskLevelCritical
	case score >= HighRiskThreshold:
		return RiskLevelHigh
	case score >= MediumRiskThreshold:
		return RiskLevelMedium
	default:
		return RiskLevelLow
	}
}

// ClampRiskScore bounds a raw factor sum to [0, 100]
func ClampRiskScore(score int) int {
	if score > MaxRiskScore {
		return MaxRiskScore
	}
	if score < MinRiskScore {
		return MinRiskScore
	}
	return score
}

// IsHighRisk returns true if the result needs more than a manual glance
func (r *RiskAssessmentResult) IsHighRisk() bool {
	return r.RiskLevel == RiskLevelHigh || r.RiskLevel == RiskLevelCritical
}

// ShouldBlock returns true if the calling workflow should hold the withdrawal
func (r *RiskAssessmentResult) ShouldBlock() bool {
	return r.RiskLevel == RiskLevelCritical
}

// IsDegraded returns true if any assessor failed to contribute
func (r *RiskAssessmentResult) IsDegraded() bool {
	return len(r.DegradedAssessors) > 0
}

// FactorNames returns the names of all triggered factors in order
func (r *RiskAssessmentResult) FactorNames() []string {
	names := make([]string, 0, len(r.RiskFactors))
	for _, f := range r.RiskFactors {
		names = append(names, f.Name)
	}
	return names
}
