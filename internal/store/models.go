package store

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// JSONB is a custom type for JSONB fields
type JSONB map[string]interface{}

// Value implements the driver.Valuer interface for JSONB
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements the sql.Scanner interface for JSONB
func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("incompatible type for JSONB")
	}

	// Handle empty or null JSON
	if len(bytes) == 0 || string(bytes) == "null" {
		*j = make(JSONB)
		return nil
	}

	result := make(JSONB)
	err := json.Unmarshal(bytes, &result)
	if err != nil {
		return err
	}
	*j = result
	return nil
}

// StringArray is a custom type for PostgreSQL text[] arrays
type StringArray []string

// Value implements the driver.Valuer interface for StringArray
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	if len(a) == 0 {
		return "{}", nil
	}
	// PostgreSQL array format: {item1,item2,item3}
	return "{" + strings.Join(a, ",") + "}", nil
}

// Scan implements the sql.Scanner interface for StringArray
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}

	var str string
	switch v := value.(type) {
	case []byte:
		str = string(v)
	case string:
		str = v
	default:
		return fmt.Errorf("unsupported type for StringArray: %T", value)
	}

	// Handle empty array
	str = strings.Trim(str, "{}")
	if str == "" {
		*a = []string{}
		return nil
	}

	*a = strings.Split(str, ",")
	return nil
}

// AdCampaign represents an advertising campaign eligible for placement
// serving. Authoring lives in the management flows; this service reads the
// campaign and its budget counters at decision time.
type AdCampaign struct {
	ID                uuid.UUID   `db:"id" json:"id"`
	Name              string      `db:"name" json:"name"`
	Status            string      `db:"status" json:"status"`
	BudgetCents       int64       `db:"budget_cents" json:"budget_cents"`
	SpentCents        int64       `db:"spent_cents" json:"spent_cents"`
	DailyBudgetCents  int64       `db:"daily_budget_cents" json:"daily_budget_cents"`
	BidAmountCents    int64       `db:"bid_amount_cents" json:"bid_amount_cents"`
	StartDate         time.Time   `db:"start_date" json:"start_date"`
	EndDate           *time.Time  `db:"end_date" json:"end_date,omitempty"`
	TargetingKeywords StringArray `db:"targeting_keywords" json:"targeting_keywords"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	// Loaded separately, not from the campaigns table
	Creatives []AdCreative `db:"-" json:"creatives,omitempty"`
}

// AdCreative represents a renderable creative belonging to a campaign
type AdCreative struct {
	ID         uuid.UUID `db:"id" json:"id"`
	CampaignID uuid.UUID `db:"campaign_id" json:"campaign_id"`
	Title      string    `db:"title" json:"title"`
	Body       string    `db:"body" json:"body"`
	ImageURL   *string   `db:"image_url" json:"image_url,omitempty"`
	TargetURL  string    `db:"target_url" json:"target_url"`
	IsPrimary  bool      `db:"is_primary" json:"is_primary"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// AffiliateCampaign represents a referral campaign whose clicks can be
// attributed a commission on conversion
type AffiliateCampaign struct {
	ID                   uuid.UUID `db:"id" json:"id"`
	AffiliateID          uuid.UUID `db:"affiliate_id" json:"affiliate_id"`
	ItemID               uuid.UUID `db:"item_id" json:"item_id"`
	CommissionType       string    `db:"commission_type" json:"commission_type"`
	CommissionRate       float64   `db:"commission_rate" json:"commission_rate"`
	FixedCommissionCents int64     `db:"fixed_commission_cents" json:"fixed_commission_cents"`
	MaxConversions       *int      `db:"max_conversions" json:"max_conversions,omitempty"`
	TotalConversions     int       `db:"total_conversions" json:"total_conversions"`
	IsActive             bool      `db:"is_active" json:"is_active"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Click represents a recorded referral click. It is created at referral
// time and mutated exactly once, when a conversion is attributed to it.
type Click struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	CampaignID   uuid.UUID  `db:"campaign_id" json:"campaign_id"`
	AffiliateID  uuid.UUID  `db:"affiliate_id" json:"affiliate_id"`
	IPAddress    string     `db:"ip_address" json:"-"`
	UserAgent    string     `db:"user_agent" json:"-"`
	Converted    bool       `db:"converted" json:"converted"`
	ConversionID *uuid.UUID `db:"conversion_id" json:"conversion_id,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// Conversion represents the attributed link between a click and a completed
// transaction, carrying the computed commission
type Conversion struct {
	ID                    uuid.UUID `db:"id" json:"id"`
	ClickID               uuid.UUID `db:"click_id" json:"click_id"`
	CampaignID            uuid.UUID `db:"campaign_id" json:"campaign_id"`
	TransactionID         uuid.UUID `db:"transaction_id" json:"transaction_id"`
	CommissionAmountCents int64     `db:"commission_amount_cents" json:"commission_amount_cents"`
	CommissionRate        float64   `db:"commission_rate" json:"commission_rate"`
	Currency              string    `db:"currency" json:"currency"`
	PayoutStatus          string    `db:"payout_status" json:"payout_status"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`
}

// Transaction represents a completed (or failed) payment this service only
// reads for attribution. Rows are written by the payment webhook.
type Transaction struct {
	ID          uuid.UUID `db:"id" json:"id"`
	AmountCents int64     `db:"amount_cents" json:"amount_cents"`
	Currency    string    `db:"currency" json:"currency"`
	Status      string    `db:"status" json:"status"`
	ExternalID  *string   `db:"external_id" json:"external_id,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Impression represents a served-ad event
type Impression struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	CampaignID uuid.UUID  `db:"campaign_id" json:"campaign_id"`
	CreativeID *uuid.UUID `db:"creative_id" json:"creative_id,omitempty"`
	UserID     *uuid.UUID `db:"user_id" json:"user_id,omitempty"`
	ThreadID   *uuid.UUID `db:"thread_id" json:"thread_id,omitempty"`
	Placement  string     `db:"placement" json:"placement"`
	IsViewable bool       `db:"is_viewable" json:"is_viewable"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// FraudAlert represents a persisted alert raised by a fraud detection run
type FraudAlert struct {
	ID         uuid.UUID   `db:"id" json:"id"`
	CampaignID uuid.UUID   `db:"campaign_id" json:"campaign_id"`
	FraudScore float64     `db:"fraud_score" json:"fraud_score"`
	Severity   string      `db:"severity" json:"severity"`
	Reasons    StringArray `db:"reasons" json:"reasons"`
	Status     string      `db:"status" json:"status"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
}
