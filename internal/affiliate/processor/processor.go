package processor

import (
	"ad-server/internal/observability"
	"ad-server/internal/store"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrClickNotFound           = errors.New("click not found")
	ErrAlreadyConverted        = errors.New("click already converted")
	ErrCampaignNotFound        = errors.New("affiliate campaign not found")
	ErrCampaignInactive        = errors.New("affiliate campaign is not active")
	ErrConversionCapReached    = errors.New("affiliate campaign conversion cap reached")
	ErrTransactionNotFound     = errors.New("transaction not found")
	ErrTransactionNotCompleted = errors.New("transaction has not completed")
	ErrUnknownCommissionType   = errors.New("unknown commission type")
	ErrInvalidCommission       = errors.New("commission outside valid bounds")
)

type AffiliateProcessor struct {
	store  AffiliateStore
	logger *observability.Logger
}

func New(store AffiliateStore, logger *observability.Logger) AffiliateProcessor {
	return AffiliateProcessor{
		store:  store,
		logger: logger,
	}
}

// AttributionResult represents the conversion attributed to a click
type AttributionResult struct {
	ConversionID          uuid.UUID `json:"conversion_id"`
	CommissionAmountCents int64     `json:"commission_amount_cents"`
	CommissionRate        float64   `json:"commission_rate"`
	Currency              string    `json:"currency"`
	PayoutStatus          string    `json:"payout_status"`
}

func resultFromConversion(conversion store.Conversion) AttributionResult {
	return AttributionResult{
		ConversionID:          conversion.ID,
		CommissionAmountCents: conversion.CommissionAmountCents,
		CommissionRate:        conversion.CommissionRate,
		Currency:              conversion.Currency,
		PayoutStatus:          conversion.PayoutStatus,
	}
}

// AttributeConversion links a completed transaction to a referral click,
// computes the commission, and persists the conversion. The operation is
// idempotent per click: a click that is already converted returns the
// existing conversion alongside ErrAlreadyConverted, and concurrent attempts
// on the same click resolve to exactly one new conversion.
func (p *AffiliateProcessor) AttributeConversion(ctx context.Context, clickID, transactionID uuid.UUID) (AttributionResult, error) {
	ctx = observability.WithFields(ctx,
		observability.Field{Key: "click_id", Value: clickID.String()},
		observability.Field{Key: "transaction_id", Value: transactionID.String()},
	)

	click, err := p.store.GetClickByID(ctx, clickID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return AttributionResult{}, ErrClickNotFound
		}
		return AttributionResult{}, fmt.Errorf("failed to load click: %w", err)
	}

	if click.Converted {
		return p.existingConversion(ctx, clickID)
	}

	campaign, err := p.store.GetAffiliateCampaignByID(ctx, click.CampaignID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return AttributionResult{}, ErrCampaignNotFound
		}
		return AttributionResult{}, fmt.Errorf("failed to load affiliate campaign: %w", err)
	}
	if !campaign.IsActive {
		return AttributionResult{}, ErrCampaignInactive
	}
	if campaign.MaxConversions != nil && campaign.TotalConversions >= *campaign.MaxConversions {
		return AttributionResult{}, ErrConversionCapReached
	}

	transaction, err := p.store.GetTransactionByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return AttributionResult{}, ErrTransactionNotFound
		}
		return AttributionResult{}, fmt.Errorf("failed to load transaction: %w", err)
	}
	if transaction.Status != store.TransactionStatusSucceeded {
		return AttributionResult{}, ErrTransactionNotCompleted
	}

	commissionCents, err := calculateCommission(campaign, transaction.AmountCents)
	if err != nil {
		return AttributionResult{}, err
	}
	if commissionCents <= 0 || commissionCents > transaction.AmountCents {
		return AttributionResult{}, ErrInvalidCommission
	}

	rate := 0.0
	if campaign.CommissionType == store.CommissionTypePercentage {
		rate = campaign.CommissionRate
	}

	conversion, err := p.store.CreateConversionForClick(ctx, store.CreateConversionParams{
		ClickID:               clickID,
		CampaignID:            campaign.ID,
		TransactionID:         transactionID,
		CommissionAmountCents: commissionCents,
		CommissionRate:        rate,
		Currency:              transaction.Currency,
	})
	if err != nil {
		if errors.Is(err, store.ErrClickAlreadyConverted) {
			return p.existingConversion(ctx, clickID)
		}
		return AttributionResult{}, fmt.Errorf("failed to persist conversion: %w", err)
	}

	p.logger.Info(ctx, "conversion attributed")
	return resultFromConversion(conversion), nil
}

// existingConversion returns the conversion already attributed to the click
// together with ErrAlreadyConverted, so callers can treat the retry as an
// idempotent success.
func (p *AffiliateProcessor) existingConversion(ctx context.Context, clickID uuid.UUID) (AttributionResult, error) {
	conversion, err := p.store.GetConversionByClickID(ctx, clickID)
	if err != nil {
		p.logger.Error(ctx, "converted click has no conversion row", err)
		return AttributionResult{}, fmt.Errorf("failed to load existing conversion: %w", err)
	}
	return resultFromConversion(conversion), ErrAlreadyConverted
}
