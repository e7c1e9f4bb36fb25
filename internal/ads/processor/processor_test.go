package processor

import (
	"ad-server/internal/config"
	"ad-server/internal/observability"
	"ad-server/internal/store"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAdStore struct {
	campaigns   []store.AdCampaign
	creatives   map[uuid.UUID]store.AdCreative
	impressions []store.CreateImpressionParams
}

func (f *fakeAdStore) GetActiveAdCampaigns(ctx context.Context) ([]store.AdCampaign, error) {
	return f.campaigns, nil
}

func (f *fakeAdStore) GetPrimaryCreative(ctx context.Context, campaignID uuid.UUID) (store.AdCreative, error) {
	creative, ok := f.creatives[campaignID]
	if !ok {
		return store.AdCreative{}, store.ErrNotFound
	}
	return creative, nil
}

func (f *fakeAdStore) CreateImpression(ctx context.Context, params store.CreateImpressionParams) (store.Impression, error) {
	f.impressions = append(f.impressions, params)
	return store.Impression{ID: uuid.New(), CampaignID: params.CampaignID}, nil
}

type fakePublisher struct {
	published []store.CreateImpressionParams
}

func (f *fakePublisher) PublishImpression(ctx context.Context, params store.CreateImpressionParams) error {
	f.published = append(f.published, params)
	return nil
}

func testAdsConfig() config.AdsConfig {
	return config.AdsConfig{
		MaxBidCents:        10000,
		RelevanceThreshold: 0.3,
		ServeTimeout:       150 * time.Millisecond,
		CacheTTL:           30 * time.Second,
	}
}

func activeCampaign(bidCents int64, keywords ...string) store.AdCampaign {
	return store.AdCampaign{
		ID:                uuid.New(),
		Name:              "Test Campaign",
		Status:            store.AdCampaignStatusActive,
		BudgetCents:       100000,
		SpentCents:        0,
		DailyBudgetCents:  10000,
		BidAmountCents:    bidCents,
		StartDate:         time.Now().Add(-24 * time.Hour),
		TargetingKeywords: keywords,
	}
}

func TestIsEligible(t *testing.T) {
	now := time.Now()

	t.Run("active campaign within budget and window", func(t *testing.T) {
		assert.True(t, isEligible(activeCampaign(5000, "travel"), now))
	})

	t.Run("spent equal to daily budget", func(t *testing.T) {
		campaign := activeCampaign(5000, "travel")
		campaign.DailyBudgetCents = 1000
		campaign.SpentCents = 1000
		assert.False(t, isEligible(campaign, now))
	})

	t.Run("paused campaign", func(t *testing.T) {
		campaign := activeCampaign(5000, "travel")
		campaign.Status = store.AdCampaignStatusPaused
		assert.False(t, isEligible(campaign, now))
	})

	t.Run("not yet started", func(t *testing.T) {
		campaign := activeCampaign(5000, "travel")
		campaign.StartDate = now.Add(time.Hour)
		assert.False(t, isEligible(campaign, now))
	})

	t.Run("already ended", func(t *testing.T) {
		campaign := activeCampaign(5000, "travel")
		ended := now.Add(-time.Hour)
		campaign.EndDate = &ended
		assert.False(t, isEligible(campaign, now))
	})

	t.Run("nil end date means open ended", func(t *testing.T) {
		campaign := activeCampaign(5000, "travel")
		campaign.EndDate = nil
		assert.True(t, isEligible(campaign, now))
	})
}

func TestRelevanceScore(t *testing.T) {
	t.Run("interest overlap plus half bid", func(t *testing.T) {
		campaign := activeCampaign(5000, "travel", "food")
		score := relevanceScore(campaign, []string{"travel"}, nil, 10000)
		assert.InDelta(t, 0.5, score, 1e-9)
	})

	t.Run("empty sets contribute zero", func(t *testing.T) {
		campaign := activeCampaign(10000, "travel")
		score := relevanceScore(campaign, nil, nil, 10000)
		assert.InDelta(t, 0.2, score, 1e-9)
	})

	t.Run("full overlap on both sets caps at one", func(t *testing.T) {
		campaign := activeCampaign(20000, "travel", "food")
		score := relevanceScore(campaign, []string{"travel", "food"}, []string{"travel"}, 10000)
		assert.InDelta(t, 1.0, score, 1e-9)
	})

	t.Run("matching is case insensitive", func(t *testing.T) {
		campaign := activeCampaign(0, "Travel")
		score := relevanceScore(campaign, []string{"travel"}, nil, 10000)
		assert.InDelta(t, 0.4, score, 1e-9)
	})

	t.Run("always within bounds", func(t *testing.T) {
		cases := []struct {
			interests []string
			keywords  []string
			bid       int64
		}{
			{nil, nil, 0},
			{[]string{"a", "b", "c"}, nil, 1},
			{nil, []string{"x"}, 999999},
			{[]string{"travel"}, []string{"travel"}, 999999},
		}
		for _, tc := range cases {
			campaign := activeCampaign(tc.bid, "travel", "food")
			score := relevanceScore(campaign, tc.interests, tc.keywords, 10000)
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 1.0)
		}
	})
}

func TestSelectWinner(t *testing.T) {
	t.Run("no campaigns", func(t *testing.T) {
		_, reason := selectWinner(nil, 0.3)
		assert.Equal(t, ReasonNoEligibleCampaigns, reason)
	})

	t.Run("none pass threshold", func(t *testing.T) {
		scored := []scoredCampaign{{campaign: activeCampaign(100), score: 0.1}}
		_, reason := selectWinner(scored, 0.3)
		assert.Equal(t, ReasonNoRelevantAds, reason)
	})

	t.Run("highest score wins", func(t *testing.T) {
		low := scoredCampaign{campaign: activeCampaign(9000), score: 0.4}
		high := scoredCampaign{campaign: activeCampaign(1000), score: 0.8}
		winner, reason := selectWinner([]scoredCampaign{low, high}, 0.3)
		assert.Empty(t, reason)
		assert.Equal(t, high.campaign.ID, winner.campaign.ID)
	})

	t.Run("tie breaks on bid then id", func(t *testing.T) {
		a := scoredCampaign{campaign: activeCampaign(5000), score: 0.6}
		b := scoredCampaign{campaign: activeCampaign(7000), score: 0.6}
		winner, _ := selectWinner([]scoredCampaign{a, b}, 0.3)
		assert.Equal(t, b.campaign.ID, winner.campaign.ID)

		c := scoredCampaign{campaign: activeCampaign(7000), score: 0.6}
		d := scoredCampaign{campaign: activeCampaign(7000), score: 0.6}
		first, _ := selectWinner([]scoredCampaign{c, d}, 0.3)
		second, _ := selectWinner([]scoredCampaign{d, c}, 0.3)
		assert.Equal(t, first.campaign.ID, second.campaign.ID)
	})

	t.Run("deterministic across runs", func(t *testing.T) {
		scored := []scoredCampaign{
			{campaign: activeCampaign(3000), score: 0.5},
			{campaign: activeCampaign(4000), score: 0.7},
			{campaign: activeCampaign(2000), score: 0.7},
		}
		first, _ := selectWinner(scored, 0.3)
		second, _ := selectWinner(scored, 0.3)
		assert.Equal(t, first.campaign.ID, second.campaign.ID)
	})
}

func TestServeAd(t *testing.T) {
	logger := observability.NewLogger()
	ctx := context.Background()

	t.Run("serves the winning campaign with its creative", func(t *testing.T) {
		campaign := activeCampaign(5000, "travel", "food")
		creative := store.AdCreative{
			ID:         uuid.New(),
			CampaignID: campaign.ID,
			Title:      "See the world",
			Body:       "Book now",
			TargetURL:  "https://example.com/travel",
			IsPrimary:  true,
		}
		adStore := &fakeAdStore{
			campaigns: []store.AdCampaign{campaign},
			creatives: map[uuid.UUID]store.AdCreative{campaign.ID: creative},
		}
		p := New(adStore, nil, nil, testAdsConfig(), logger)

		resp, err := p.ServeAd(ctx, ServeRequest{
			Placement:     store.PlacementFeed,
			UserInterests: []string{"travel"},
		})
		require.NoError(t, err)
		require.NotNil(t, resp.Ad)
		assert.Equal(t, campaign.ID, resp.Ad.CampaignID)
		assert.Equal(t, creative.ID, resp.Ad.Creative.ID)
		assert.InDelta(t, 0.5, resp.Ad.Score, 1e-9)
		assert.Empty(t, resp.Reason)
	})

	t.Run("budget exhausted campaign yields no fill", func(t *testing.T) {
		campaign := activeCampaign(5000, "travel")
		campaign.DailyBudgetCents = 1000
		campaign.SpentCents = 1000
		adStore := &fakeAdStore{campaigns: []store.AdCampaign{campaign}}
		p := New(adStore, nil, nil, testAdsConfig(), logger)

		resp, err := p.ServeAd(ctx, ServeRequest{Placement: store.PlacementFeed})
		require.NoError(t, err)
		assert.Nil(t, resp.Ad)
		assert.Equal(t, ReasonNoEligibleCampaigns, resp.Reason)
	})

	t.Run("below threshold yields no relevant ads", func(t *testing.T) {
		campaign := activeCampaign(1000, "travel")
		adStore := &fakeAdStore{campaigns: []store.AdCampaign{campaign}}
		p := New(adStore, nil, nil, testAdsConfig(), logger)

		resp, err := p.ServeAd(ctx, ServeRequest{Placement: store.PlacementSidebar})
		require.NoError(t, err)
		assert.Nil(t, resp.Ad)
		assert.Equal(t, ReasonNoRelevantAds, resp.Reason)
	})

	t.Run("missing creative degrades to no fill", func(t *testing.T) {
		campaign := activeCampaign(5000, "travel")
		adStore := &fakeAdStore{campaigns: []store.AdCampaign{campaign}}
		p := New(adStore, nil, nil, testAdsConfig(), logger)

		resp, err := p.ServeAd(ctx, ServeRequest{
			Placement:     store.PlacementThread,
			UserInterests: []string{"travel"},
		})
		require.NoError(t, err)
		assert.Nil(t, resp.Ad)
		assert.Equal(t, ReasonNoRelevantAds, resp.Reason)
	})
}

func TestTrackImpression(t *testing.T) {
	logger := observability.NewLogger()
	ctx := context.Background()

	t.Run("publishes through the pipeline when configured", func(t *testing.T) {
		adStore := &fakeAdStore{}
		publisher := &fakePublisher{}
		p := New(adStore, nil, publisher, testAdsConfig(), logger)

		campaignID := uuid.New()
		p.TrackImpression(ctx, TrackRequest{
			CampaignID: campaignID,
			Placement:  store.PlacementFeed,
			IsViewable: true,
		})

		require.Len(t, publisher.published, 1)
		assert.Equal(t, campaignID, publisher.published[0].CampaignID)
		assert.Equal(t, store.PlacementFeed, publisher.published[0].Placement)
		assert.True(t, publisher.published[0].IsViewable)
		assert.Empty(t, adStore.impressions)
	})
}
