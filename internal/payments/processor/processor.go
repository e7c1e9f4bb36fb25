package processor

import (
	affiliateProcessor "ad-server/internal/affiliate/processor"
	"ad-server/internal/observability"
	"ad-server/internal/store"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
)

// PaymentStore defines the database operations required by PaymentProcessor
type PaymentStore interface {
	UpsertTransactionByExternalID(ctx context.Context, amountCents int64, currency string, status string, externalID string) (store.Transaction, error)
}

// Attributor links completed transactions to referral clicks
type Attributor interface {
	AttributeConversion(ctx context.Context, clickID, transactionID uuid.UUID) (affiliateProcessor.AttributionResult, error)
}

type PaymentProcessor struct {
	store         PaymentStore
	attributor    Attributor
	logger        *observability.Logger
	WebhookSecret string
}

func New(paymentStore PaymentStore, attributor Attributor, webhookSecret string, logger *observability.Logger) PaymentProcessor {
	return PaymentProcessor{
		store:         paymentStore,
		attributor:    attributor,
		logger:        logger,
		WebhookSecret: webhookSecret,
	}
}

// metadataClickKey is set on the payment intent by the referral flow when a
// purchase originated from an affiliate click.
const metadataClickKey = "click_id"

// HandleWebhook records the transaction behind a payment event and, for
// succeeded payments carrying a click id, attributes the conversion. A click
// that was already converted is not an error here: webhook deliveries repeat.
func (p *PaymentProcessor) HandleWebhook(ctx context.Context, event stripe.Event) error {
	switch event.Type {
	case "payment_intent.succeeded":
		return p.handlePaymentIntent(ctx, event, store.TransactionStatusSucceeded)
	case "payment_intent.payment_failed":
		return p.handlePaymentIntent(ctx, event, store.TransactionStatusFailed)
	default:
		p.logger.Info(ctx, fmt.Sprintf("ignoring webhook event %s", event.Type))
		return nil
	}
}

func (p *PaymentProcessor) handlePaymentIntent(ctx context.Context, event stripe.Event, status string) error {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return fmt.Errorf("failed to parse payment intent: %w", err)
	}

	ctx = observability.WithFields(ctx,
		observability.Field{Key: "payment_intent_id", Value: intent.ID},
		observability.Field{Key: "status", Value: status},
	)

	transaction, err := p.store.UpsertTransactionByExternalID(ctx, intent.Amount, string(intent.Currency), status, intent.ID)
	if err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}

	if status != store.TransactionStatusSucceeded {
		return nil
	}

	clickIDValue, ok := intent.Metadata[metadataClickKey]
	if !ok || clickIDValue == "" {
		return nil
	}
	clickID, err := uuid.Parse(clickIDValue)
	if err != nil {
		p.logger.Error(ctx, "payment intent carries a malformed click id", err)
		return nil
	}

	if _, err := p.attributor.AttributeConversion(ctx, clickID, transaction.ID); err != nil {
		if errors.Is(err, affiliateProcessor.ErrAlreadyConverted) {
			return nil
		}
		return fmt.Errorf("failed to attribute conversion: %w", err)
	}
	return nil
}
