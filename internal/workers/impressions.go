package workers

import (
	"ad-server/internal/observability"
	"ad-server/internal/store"
	"context"
	"fmt"
)

// ImpressionStore defines the database operations required by the impression
// writer
type ImpressionStore interface {
	CreateImpression(ctx context.Context, params store.CreateImpressionParams) (store.Impression, error)
}

// ImpressionWriter persists impression events consumed from the pipeline
type ImpressionWriter struct {
	store  ImpressionStore
	logger *observability.Logger
}

// NewImpressionWriter creates a new impression writer
func NewImpressionWriter(impressionStore ImpressionStore, logger *observability.Logger) *ImpressionWriter {
	return &ImpressionWriter{
		store:  impressionStore,
		logger: logger,
	}
}

func (w *ImpressionWriter) Name() string {
	return "impression-writer"
}

// Process writes one impression row
func (w *ImpressionWriter) Process(ctx context.Context, event ImpressionEvent) error {
	_, err := w.store.CreateImpression(ctx, store.CreateImpressionParams{
		CampaignID: event.CampaignID,
		CreativeID: event.CreativeID,
		UserID:     event.UserID,
		ThreadID:   event.ThreadID,
		Placement:  event.Placement,
		IsViewable: event.IsViewable,
	})
	if err != nil {
		return fmt.Errorf("failed to write impression: %w", err)
	}
	return nil
}
