package processor

import (
	affiliateProcessor "ad-server/internal/affiliate/processor"
	"ad-server/internal/observability"
	"ad-server/internal/store"
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
)

type fakePaymentStore struct {
	transactions map[string]store.Transaction
}

func (f *fakePaymentStore) UpsertTransactionByExternalID(ctx context.Context, amountCents int64, currency string, status string, externalID string) (store.Transaction, error) {
	transaction, ok := f.transactions[externalID]
	if !ok {
		transaction = store.Transaction{ID: uuid.New(), ExternalID: &externalID}
	}
	transaction.AmountCents = amountCents
	transaction.Currency = currency
	transaction.Status = status
	f.transactions[externalID] = transaction
	return transaction, nil
}

type fakeAttributor struct {
	calls        []uuid.UUID
	conversionID uuid.UUID
	err          error
}

func (f *fakeAttributor) AttributeConversion(ctx context.Context, clickID, transactionID uuid.UUID) (affiliateProcessor.AttributionResult, error) {
	f.calls = append(f.calls, clickID)
	return affiliateProcessor.AttributionResult{ConversionID: f.conversionID}, f.err
}

func paymentIntentEvent(t *testing.T, eventType string, intentID string, amount int64, metadata map[string]string) stripe.Event {
	t.Helper()
	raw, err := json.Marshal(map[string]interface{}{
		"id":       intentID,
		"amount":   amount,
		"currency": "usd",
		"metadata": metadata,
	})
	require.NoError(t, err)
	return stripe.Event{
		Type: stripe.EventType(eventType),
		Data: &stripe.EventData{Raw: raw},
	}
}

func TestHandleWebhook(t *testing.T) {
	ctx := context.Background()
	logger := observability.NewLogger()

	t.Run("succeeded payment with click id attributes a conversion", func(t *testing.T) {
		paymentStore := &fakePaymentStore{transactions: make(map[string]store.Transaction)}
		attributor := &fakeAttributor{conversionID: uuid.New()}
		p := New(paymentStore, attributor, "whsec_test", logger)

		clickID := uuid.New()
		event := paymentIntentEvent(t, "payment_intent.succeeded", "pi_123", 10000, map[string]string{"click_id": clickID.String()})

		require.NoError(t, p.HandleWebhook(ctx, event))
		require.Len(t, attributor.calls, 1)
		assert.Equal(t, clickID, attributor.calls[0])

		transaction := paymentStore.transactions["pi_123"]
		assert.Equal(t, int64(10000), transaction.AmountCents)
		assert.Equal(t, store.TransactionStatusSucceeded, transaction.Status)
	})

	t.Run("succeeded payment without click id only records the transaction", func(t *testing.T) {
		paymentStore := &fakePaymentStore{transactions: make(map[string]store.Transaction)}
		attributor := &fakeAttributor{}
		p := New(paymentStore, attributor, "whsec_test", logger)

		event := paymentIntentEvent(t, "payment_intent.succeeded", "pi_456", 2500, nil)

		require.NoError(t, p.HandleWebhook(ctx, event))
		assert.Empty(t, attributor.calls)
		assert.Contains(t, paymentStore.transactions, "pi_456")
	})

	t.Run("failed payment never attributes", func(t *testing.T) {
		paymentStore := &fakePaymentStore{transactions: make(map[string]store.Transaction)}
		attributor := &fakeAttributor{}
		p := New(paymentStore, attributor, "whsec_test", logger)

		clickID := uuid.New()
		event := paymentIntentEvent(t, "payment_intent.payment_failed", "pi_789", 10000, map[string]string{"click_id": clickID.String()})

		require.NoError(t, p.HandleWebhook(ctx, event))
		assert.Empty(t, attributor.calls)
		assert.Equal(t, store.TransactionStatusFailed, paymentStore.transactions["pi_789"].Status)
	})

	t.Run("redelivery of a converted click is not an error", func(t *testing.T) {
		paymentStore := &fakePaymentStore{transactions: make(map[string]store.Transaction)}
		attributor := &fakeAttributor{err: affiliateProcessor.ErrAlreadyConverted}
		p := New(paymentStore, attributor, "whsec_test", logger)

		clickID := uuid.New()
		event := paymentIntentEvent(t, "payment_intent.succeeded", "pi_123", 10000, map[string]string{"click_id": clickID.String()})

		assert.NoError(t, p.HandleWebhook(ctx, event))
	})

	t.Run("attribution failures propagate", func(t *testing.T) {
		paymentStore := &fakePaymentStore{transactions: make(map[string]store.Transaction)}
		attributor := &fakeAttributor{err: fmt.Errorf("store down")}
		p := New(paymentStore, attributor, "whsec_test", logger)

		clickID := uuid.New()
		event := paymentIntentEvent(t, "payment_intent.succeeded", "pi_123", 10000, map[string]string{"click_id": clickID.String()})

		assert.Error(t, p.HandleWebhook(ctx, event))
	})

	t.Run("unrelated events are ignored", func(t *testing.T) {
		paymentStore := &fakePaymentStore{transactions: make(map[string]store.Transaction)}
		attributor := &fakeAttributor{}
		p := New(paymentStore, attributor, "whsec_test", logger)

		event := stripe.Event{Type: "customer.created", Data: &stripe.EventData{Raw: json.RawMessage(`{}`)}}
		require.NoError(t, p.HandleWebhook(ctx, event))
		assert.Empty(t, paymentStore.transactions)
	})
}
