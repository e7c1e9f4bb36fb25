package store

// Ad Campaign ENUMs
const (
	AdCampaignStatusDraft  = "draft"
	AdCampaignStatusActive = "active"
	AdCampaignStatusPaused = "paused"
	AdCampaignStatusEnded  = "ended"
)

// Placement ENUMs
const (
	PlacementFeed        = "feed"
	PlacementSidebar     = "sidebar"
	PlacementThread      = "thread"
	PlacementMarketplace = "marketplace"
)

// Commission type ENUMs
const (
	CommissionTypePercentage = "percentage"
	CommissionTypeFixed      = "fixed"
)

// Transaction status ENUMs
const (
	TransactionStatusPending   = "pending"
	TransactionStatusSucceeded = "succeeded"
	TransactionStatusFailed    = "failed"
	TransactionStatusRefunded  = "refunded"
)

// Conversion payout ENUMs
const (
	PayoutStatusPending = "pending"
	PayoutStatusPaid    = "paid"
	PayoutStatusVoided  = "voided"
)

// Fraud alert ENUMs
const (
	FraudSeverityLow      = "low"
	FraudSeverityMedium   = "medium"
	FraudSeverityHigh     = "high"
	FraudSeverityCritical = "critical"
)

const (
	FraudAlertStatusPendingReview = "pending_review"
	FraudAlertStatusConfirmed     = "confirmed"
	FraudAlertStatusDismissed     = "dismissed"
)

// Fraud evidence ENUMs
const (
	FraudEvidenceRapidClicks  = "rapid_clicks"
	FraudEvidenceBotDetection = "bot_detection"
)
