package risk

import (
	"github.com/banking/withdrawal-risk-service/internal/domain"
)

// Factor names. These are stable identifiers consumed by the recommendation
// generator and by downstream audit tooling.
const (
	FactorUserNotFound = "user_not_found"
	FactorKYCPending   = "kyc_pending"
	FactorKYCRejected  = "kyc_rejected"
	FactorKYCExpired   = "kyc_expired"
	FactorKYCApproved  = "kyc_approved"
	FactorNewAccount1d = "new_account_24h"
	FactorNewAccount7d = "new_account_7d"
	FactorNewAccount30 = "new_account_30d"
	FactorDormant      = "dormant_account"

	FactorHighFrequency24h   = "high_frequency_24h"
	FactorMediumFrequency24h = "medium_frequency_24h"
	FactorHighFrequency7d    = "high_frequency_7d"
	FactorAmountVsAverage    = "unusual_amount_vs_average"
	FactorAmountVsMax        = "amount_exceeds_historical_max"
	FactorVeryLargeAmount    = "very_large_amount"
	FactorLargeAmount        = "large_amount"
	FactorSignificantAmount  = "significant_amount"
	FactorManyRejections     = "multiple_recent_rejections"
	FactorRecentRejection    = "recent_rejection"

	FactorInvalidAddress = "invalid_address_format"
	FactorBlacklisted    = "blacklisted_address"
	FactorHighRiskIP     = "high_risk_ip"
	FactorMediumRiskIP   = "medium_risk_ip"
	FactorNewDevice      = "new_device"

	FactorAMLMediumRisk   = "aml_medium_risk"
	FactorSanctioned      = "sanctions_listed"
	FactorReportingNeeded = "regulatory_reporting_required"

	FactorMarketVolatility  = "high_market_volatility"
	FactorNetworkCongestion = "network_congestion"
)

// factorDef defines the fixed attributes of a factor
type factorDef struct {
	Category    domain.RiskCategory
	Weight      float64
	Score       int
	Description string
}

var factorCatalog = map[string]factorDef{
	FactorUserNotFound: {domain.CategoryIdentity, 1.0, 100, "User account not found"},
	FactorKYCPending:   {domain.CategoryIdentity, 0.8, 40, "KYC verification is pending"},
	FactorKYCRejected:  {domain.CategoryIdentity, 1.0, 60, "KYC verification was rejected"},
	FactorKYCExpired:   {domain.CategoryIdentity, 0.9, 50, "KYC verification has expired"},
	FactorKYCApproved:  {domain.CategoryIdentity, 0.1, -5, "KYC verification approved"},
	FactorNewAccount1d: {domain.CategoryIdentity, 0.7, 30, "Account created less than 24 hours ago"},
	FactorNewAccount7d: {domain.CategoryIdentity, 0.5, 20, "Account created less than 7 days ago"},
	FactorNewAccount30: {domain.CategoryIdentity, 0.3, 10, "Account created less than 30 days ago"},
	FactorDormant:      {domain.CategoryIdentity, 0.4, 15, "No login for more than 90 days"},

	FactorHighFrequency24h:   {domain.CategoryBehavior, 0.8, 35, "5 or more withdrawals in the last 24 hours"},
	FactorMediumFrequency24h: {domain.CategoryBehavior, 0.5, 20, "3 or more withdrawals in the last 24 hours"},
	FactorHighFrequency7d:    {domain.CategoryBehavior, 0.6, 25, "15 or more withdrawals in the last 7 days"},
	FactorAmountVsAverage:    {domain.CategoryBehavior, 0.7, 30, "Amount is more than 5x the historical average"},
	FactorAmountVsMax:        {domain.CategoryBehavior, 0.6, 25, "Amount is more than 2x the historical maximum"},
	FactorVeryLargeAmount:    {domain.CategoryBehavior, 0.8, 40, "Withdrawal of 100,000 or more"},
	FactorLargeAmount:        {domain.CategoryBehavior, 0.6, 30, "Withdrawal of 50,000 or more"},
	FactorSignificantAmount:  {domain.CategoryBehavior, 0.4, 15, "Withdrawal of 10,000 or more"},
	FactorManyRejections:     {domain.CategoryBehavior, 0.8, 35, "3 or more rejected withdrawals in the last 30 days"},
	FactorRecentRejection:    {domain.CategoryBehavior, 0.4, 15, "Rejected withdrawal in the last 30 days"},

	FactorInvalidAddress: {domain.CategoryTechnical, 0.7, 30, "Wallet address format is invalid for the chain"},
	FactorBlacklisted:    {domain.CategoryTechnical, 1.0, 80, "Wallet address is blacklisted"},
	FactorHighRiskIP:     {domain.CategoryTechnical, 0.8, 40, "Request from a high-risk IP address"},
	FactorMediumRiskIP:   {domain.CategoryTechnical, 0.5, 20, "Request from a medium-risk IP address"},
	FactorNewDevice:      {domain.CategoryTechnical, 0.4, 15, "Request from an unrecognised device"},

	FactorAMLMediumRisk:   {domain.CategoryCompliance, 0.6, 30, "AML screening flagged medium risk"},
	FactorSanctioned:      {domain.CategoryCompliance, 1.0, 100, "Wallet address is on a sanctions list"},
	FactorReportingNeeded: {domain.CategoryCompliance, 0.2, 10, "Amount requires regulatory reporting"},

	FactorMarketVolatility:  {domain.CategoryExternal, 0.2, 10, "High market volatility"},
	FactorNetworkCongestion: {domain.CategoryExternal, 0.1, 5, "Blockchain network is congested"},
}

// newFactor builds a factor from the catalog. A non-empty detail replaces the
// catalog description.
func newFactor(name, detail string) domain.RiskFactor {
	def, ok := factorCatalog[name]
	if !ok {
		panic("risk: unknown factor " + name)
	}
	desc := def.Description
	if detail != "" {
		desc = detail
	}
	return domain.RiskFactor{
		Category:    def.Category,
		Name:        name,
		Weight:      def.Weight,
		Score:       def.Score,
		Description: desc,
	}
}
