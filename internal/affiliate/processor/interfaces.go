package processor

import (
	"ad-server/internal/store"
	"context"

	"github.com/google/uuid"
)

// AffiliateStore defines the database operations required by
// AffiliateProcessor
type AffiliateStore interface {
	GetClickByID(ctx context.Context, clickID uuid.UUID) (store.Click, error)
	GetAffiliateCampaignByID(ctx context.Context, campaignID uuid.UUID) (store.AffiliateCampaign, error)
	GetTransactionByID(ctx context.Context, transactionID uuid.UUID) (store.Transaction, error)
	CreateConversionForClick(ctx context.Context, params store.CreateConversionParams) (store.Conversion, error)
	GetConversionByClickID(ctx context.Context, clickID uuid.UUID) (store.Conversion, error)
}
