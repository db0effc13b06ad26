package domain

import (
	"time"
)

// KYCStatus represents a user's identity verification state
type KYCStatus string

const (
	KYCStatusPending  KYCStatus = "PENDING"
	KYCStatusApproved KYCStatus = "APPROVED"
	KYCStatusRejected KYCStatus = "REJECTED"
	KYCStatusExpired  KYCStatus = "EXPIRED"
)

// User is the subset of the user record the risk engine reads
type User struct {
	ID          string     `json:"id" db:"id"`
	Email       string     `json:"email" db:"email"`
	KYCStatus   KYCStatus  `json:"kyc_status" db:"kyc_status"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
}

// AccountAge returns how long the account has existed at now
func (u *User) AccountAge(now time.Time) time.Duration {
	return now.Sub(u.CreatedAt)
}

// InactiveFor returns the time since last login, and false if the user never logged in
func (u *User) InactiveFor(now time.Time) (time.Duration, bool) {
	if u.LastLoginAt == nil {
		return 0, false
	}
	return now.Sub(*u.LastLoginAt), true
}

// IPClassification is the verdict of an IP reputation lookup
type IPClassification struct {
	HighRisk   bool   `json:"high_risk"`
	MediumRisk bool   `json:"medium_risk"`
	Reason     string `json:"reason,omitempty"`
}

// MarketConditions describes global market state
type MarketConditions struct {
	HighVolatility bool      `json:"high_volatility"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NetworkStatus describes the state of one chain
type NetworkStatus struct {
	ChainID   int64 `json:"chain_id"`
	Congested bool  `json:"congested"`
}
