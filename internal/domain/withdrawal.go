package domain

import (
	"strings"
	"time"
)

// WithdrawalType represents how funds leave the platform
type WithdrawalType string

const (
	WithdrawalTypeCrypto   WithdrawalType = "CRYPTO"
	WithdrawalTypeFiat     WithdrawalType = "FIAT"
	WithdrawalTypeInternal WithdrawalType = "INTERNAL_TRANSFER"
)

// IsValid reports whether t is a known withdrawal type
func (t WithdrawalType) IsValid() bool {
	switch t {
	case WithdrawalTypeCrypto, WithdrawalTypeFiat, WithdrawalTypeInternal:
		return true
	}
	return false
}

// WithdrawalStatus represents the lifecycle state of a historical withdrawal
type WithdrawalStatus string

const (
	WithdrawalStatusPending   WithdrawalStatus = "PENDING"
	WithdrawalStatusApproved  WithdrawalStatus = "APPROVED"
	WithdrawalStatusRejected  WithdrawalStatus = "REJECTED"
	WithdrawalStatusCompleted WithdrawalStatus = "COMPLETED"
	WithdrawalStatusFailed    WithdrawalStatus = "FAILED"
)

// Withdrawal is a historical withdrawal record read from the store
type Withdrawal struct {
	ID        string           `json:"id" db:"id"`
	UserID    string           `json:"user_id" db:"user_id"`
	Amount    float64          `json:"amount" db:"amount"`
	Status    WithdrawalStatus `json:"status" db:"status"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

// RequestMetadata carries optional client context for a withdrawal
type RequestMetadata struct {
	IPAddress         string `json:"ip_address,omitempty"`
	UserAgent         string `json:"user_agent,omitempty"`
	DeviceFingerprint string `json:"device_fingerprint,omitempty"`
}

// WithdrawalRiskInput is the request to assess.
// It is not mutated during an assessment.
type WithdrawalRiskInput struct {
	UserID         string           `json:"user_id"`
	Amount         float64          `json:"amount"`
	WithdrawalType WithdrawalType   `json:"withdrawal_type"`
	WalletAddress  string           `json:"wallet_address"`
	ChainID        int64            `json:"chain_id"`
	Metadata       *RequestMetadata `json:"metadata,omitempty"`
}

// IPAddress returns the client IP, or "" when no metadata was sent
func (in *WithdrawalRiskInput) IPAddress() string {
	if in.Metadata == nil {
		return ""
	}
	return in.Metadata.IPAddress
}

// DeviceFingerprint returns the device fingerprint, or "" when absent
func (in *WithdrawalRiskInput) DeviceFingerprint() string {
	if in.Metadata == nil {
		return ""
	}
	return in.Metadata.DeviceFingerprint
}

// Validate checks the boundary preconditions. The engine itself does not call it.
func (in *WithdrawalRiskInput) Validate() error {
	var problems []string
	if strings.TrimSpace(in.UserID) == "" {
		problems = append(problems, "user_id is required")
	}
	if in.Amount <= 0 {
		problems = append(problems, "amount must be positive")
	}
	if !in.WithdrawalType.IsValid() {
		problems = append(problems, "withdrawal_type is invalid")
	}
	if strings.TrimSpace(in.WalletAddress) == "" {
		problems = append(problems, "wallet_address is required")
	}
	if in.ChainID <= 0 {
		problems = append(problems, "chain_id must be positive")
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// AssessmentCompletedEvent is published after each assessment served over HTTP
type AssessmentCompletedEvent struct {
	EventID   string                `json:"event_id"`
	EventType string                `json:"event_type"`
	Timestamp time.Time             `json:"timestamp"`
	ChainID   int64                 `json:"chain_id"`
	Amount    float64               `json:"amount"`
	Result    *RiskAssessmentResult `json:"payload"`
}

// EventTypeAssessmentCompleted is the event_type of AssessmentCompletedEvent
const EventTypeAssessmentCompleted = "risk.assessment.completed"
