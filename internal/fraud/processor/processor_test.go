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

type fakeFraudStore struct {
	campaigns map[uuid.UUID]store.AffiliateCampaign
	clicks    map[uuid.UUID][]store.Click
	alerts    []store.FraudAlert
}

func newFakeFraudStore() *fakeFraudStore {
	return &fakeFraudStore{
		campaigns: make(map[uuid.UUID]store.AffiliateCampaign),
		clicks:    make(map[uuid.UUID][]store.Click),
	}
}

func (f *fakeFraudStore) GetAffiliateCampaignByID(ctx context.Context, campaignID uuid.UUID) (store.AffiliateCampaign, error) {
	campaign, ok := f.campaigns[campaignID]
	if !ok {
		return store.AffiliateCampaign{}, store.ErrNotFound
	}
	return campaign, nil
}

func (f *fakeFraudStore) GetClicksByCampaignSince(ctx context.Context, campaignID uuid.UUID, since time.Time) ([]store.Click, error) {
	var within []store.Click
	for _, click := range f.clicks[campaignID] {
		if !click.CreatedAt.Before(since) {
			within = append(within, click)
		}
	}
	return within, nil
}

func (f *fakeFraudStore) CreateFraudAlert(ctx context.Context, params store.CreateFraudAlertParams) (store.FraudAlert, error) {
	alert := store.FraudAlert{
		ID:         uuid.New(),
		CampaignID: params.CampaignID,
		FraudScore: params.FraudScore,
		Severity:   params.Severity,
		Reasons:    params.Reasons,
		Status:     store.FraudAlertStatusPendingReview,
	}
	f.alerts = append(f.alerts, alert)
	return alert, nil
}

func (f *fakeFraudStore) ListActiveAffiliateCampaignIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for id, campaign := range f.campaigns {
		if campaign.IsActive {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func testFraudConfig() config.FraudConfig {
	return config.FraudConfig{
		DefaultLookback: 24 * time.Hour,
		ScanInterval:    6 * time.Hour,
	}
}

func clickAt(campaignID uuid.UUID, ip, userAgent string, at time.Time) store.Click {
	return store.Click{
		ID:         uuid.New(),
		CampaignID: campaignID,
		IPAddress:  ip,
		UserAgent:  userAgent,
		CreatedAt:  at,
	}
}

func TestRapidClickDetector(t *testing.T) {
	campaignID := uuid.New()
	base := time.Now().Add(-time.Hour)

	t.Run("under threshold yields no evidence", func(t *testing.T) {
		var clicks []store.Click
		for i := 0; i < 4; i++ {
			clicks = append(clicks, clickAt(campaignID, "10.0.0.1", "Mozilla/5.0", base.Add(time.Duration(i)*500*time.Millisecond)))
		}
		assert.Nil(t, RapidClickDetector{}.Detect(clicks))
	})

	t.Run("six rapid pairs is high severity", func(t *testing.T) {
		var clicks []store.Click
		for i := 0; i < 7; i++ {
			clicks = append(clicks, clickAt(campaignID, "10.0.0.1", "Mozilla/5.0", base.Add(time.Duration(i)*500*time.Millisecond)))
		}
		evidence := RapidClickDetector{}.Detect(clicks)
		require.NotNil(t, evidence)
		assert.Equal(t, store.FraudEvidenceRapidClicks, evidence.Type)
		assert.Equal(t, store.FraudSeverityHigh, evidence.Severity)
		assert.Equal(t, 6, evidence.Count)
	})

	t.Run("twelve clicks in one second gaps is critical", func(t *testing.T) {
		var clicks []store.Click
		for i := 0; i < 12; i++ {
			clicks = append(clicks, clickAt(campaignID, "10.0.0.1", "Mozilla/5.0", base.Add(time.Duration(i)*800*time.Millisecond)))
		}
		evidence := RapidClickDetector{}.Detect(clicks)
		require.NotNil(t, evidence)
		assert.Equal(t, store.FraudSeverityCritical, evidence.Severity)
	})

	t.Run("pairs sum across IPs but never cross them", func(t *testing.T) {
		var clicks []store.Click
		for i := 0; i < 4; i++ {
			clicks = append(clicks, clickAt(campaignID, "10.0.0.1", "Mozilla/5.0", base.Add(time.Duration(i)*500*time.Millisecond)))
			clicks = append(clicks, clickAt(campaignID, "10.0.0.2", "Mozilla/5.0", base.Add(time.Duration(i)*500*time.Millisecond)))
		}
		evidence := RapidClickDetector{}.Detect(clicks)
		require.NotNil(t, evidence)
		assert.Equal(t, 6, evidence.Count)
	})

	t.Run("slow clicks are ignored", func(t *testing.T) {
		var clicks []store.Click
		for i := 0; i < 20; i++ {
			clicks = append(clicks, clickAt(campaignID, "10.0.0.1", "Mozilla/5.0", base.Add(time.Duration(i)*2*time.Second)))
		}
		assert.Nil(t, RapidClickDetector{}.Detect(clicks))
	})
}

func TestBotDetector(t *testing.T) {
	campaignID := uuid.New()
	now := time.Now()

	t.Run("two bot clicks is under threshold", func(t *testing.T) {
		clicks := []store.Click{
			clickAt(campaignID, "10.0.0.1", "curl/8.0", now),
			clickAt(campaignID, "10.0.0.2", "Googlebot/2.1", now),
			clickAt(campaignID, "10.0.0.3", "Mozilla/5.0", now),
		}
		assert.Nil(t, BotDetector{}.Detect(clicks))
	})

	t.Run("three bot clicks is medium severity", func(t *testing.T) {
		clicks := []store.Click{
			clickAt(campaignID, "10.0.0.1", "curl/8.0", now),
			clickAt(campaignID, "10.0.0.2", "python-requests/2.31", now),
			clickAt(campaignID, "10.0.0.3", "", now),
		}
		evidence := BotDetector{}.Detect(clicks)
		require.NotNil(t, evidence)
		assert.Equal(t, store.FraudEvidenceBotDetection, evidence.Type)
		assert.Equal(t, store.FraudSeverityMedium, evidence.Severity)
		assert.Equal(t, 3, evidence.Count)
	})

	t.Run("ten bot clicks is critical", func(t *testing.T) {
		var clicks []store.Click
		for i := 0; i < 10; i++ {
			clicks = append(clicks, clickAt(campaignID, "10.0.0.1", "Scrapy/2.11 scraper", now))
		}
		evidence := BotDetector{}.Detect(clicks)
		require.NotNil(t, evidence)
		assert.Equal(t, store.FraudSeverityCritical, evidence.Severity)
	})

	t.Run("signature matching is case insensitive", func(t *testing.T) {
		assert.True(t, isBotLike("MyCrawler/1.0"))
		assert.True(t, isBotLike("WGET/1.21"))
		assert.True(t, isBotLike(""))
		assert.False(t, isBotLike("Mozilla/5.0 (Macintosh)"))
	})
}

func TestFraudScore(t *testing.T) {
	t.Run("weights sum per severity", func(t *testing.T) {
		assert.InDelta(t, 0.0, fraudScore(nil), 1e-9)
		assert.InDelta(t, 0.25, fraudScore([]Evidence{{Severity: store.FraudSeverityMedium}}), 1e-9)
		assert.InDelta(t, 0.75, fraudScore([]Evidence{
			{Severity: store.FraudSeverityHigh},
			{Severity: store.FraudSeverityMedium},
		}), 1e-9)
	})

	t.Run("clamped to one", func(t *testing.T) {
		score := fraudScore([]Evidence{
			{Severity: store.FraudSeverityCritical},
			{Severity: store.FraudSeverityCritical},
		})
		assert.InDelta(t, 1.0, score, 1e-9)
	})

	t.Run("monotonically non-decreasing as evidence is added", func(t *testing.T) {
		severities := []string{
			store.FraudSeverityLow,
			store.FraudSeverityMedium,
			store.FraudSeverityHigh,
			store.FraudSeverityCritical,
		}
		var evidence []Evidence
		previous := 0.0
		for _, severity := range severities {
			evidence = append(evidence, Evidence{Severity: severity})
			score := fraudScore(evidence)
			assert.GreaterOrEqual(t, score, previous)
			assert.LessOrEqual(t, score, 1.0)
			previous = score
		}
	})
}

func TestRecommendedAction(t *testing.T) {
	assert.Equal(t, ActionMonitor, recommendedAction(0.0))
	assert.Equal(t, ActionMonitor, recommendedAction(0.49))
	assert.Equal(t, ActionReview, recommendedAction(0.5))
	assert.Equal(t, ActionPauseCampaign, recommendedAction(0.7))
	assert.Equal(t, ActionPauseCampaign, recommendedAction(0.89))
	assert.Equal(t, ActionBlock, recommendedAction(0.9))
	assert.Equal(t, ActionBlock, recommendedAction(1.0))
}

func TestDetectFraud(t *testing.T) {
	ctx := context.Background()
	logger := observability.NewLogger()

	setup := func() (*fakeFraudStore, FraudProcessor, uuid.UUID) {
		fakeStore := newFakeFraudStore()
		campaignID := uuid.New()
		fakeStore.campaigns[campaignID] = store.AffiliateCampaign{ID: campaignID, IsActive: true}
		return fakeStore, New(fakeStore, testFraudConfig(), logger), campaignID
	}

	t.Run("clean campaign scores zero and only monitors", func(t *testing.T) {
		fakeStore, p, campaignID := setup()
		base := time.Now().Add(-time.Hour)
		for i := 0; i < 5; i++ {
			fakeStore.clicks[campaignID] = append(fakeStore.clicks[campaignID],
				clickAt(campaignID, "10.0.0.1", "Mozilla/5.0", base.Add(time.Duration(i)*time.Minute)))
		}

		report, err := p.DetectFraud(ctx, campaignID, 24)
		require.NoError(t, err)
		assert.Equal(t, 0.0, report.FraudScore)
		assert.Empty(t, report.Evidence)
		assert.Equal(t, ActionMonitor, report.RecommendedAction)
		assert.Nil(t, report.AlertID)
		assert.Empty(t, fakeStore.alerts)
	})

	t.Run("click burst blocks and raises a critical alert", func(t *testing.T) {
		fakeStore, p, campaignID := setup()
		base := time.Now().Add(-time.Hour)
		for i := 0; i < 12; i++ {
			fakeStore.clicks[campaignID] = append(fakeStore.clicks[campaignID],
				clickAt(campaignID, "10.0.0.1", "Mozilla/5.0", base.Add(time.Duration(i)*800*time.Millisecond)))
		}

		report, err := p.DetectFraud(ctx, campaignID, 24)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, report.FraudScore, 1e-9)
		assert.Equal(t, ActionBlock, report.RecommendedAction)
		require.NotNil(t, report.AlertID)
		require.Len(t, fakeStore.alerts, 1)
		assert.Equal(t, store.FraudSeverityCritical, fakeStore.alerts[0].Severity)
		assert.Equal(t, store.FraudAlertStatusPendingReview, fakeStore.alerts[0].Status)
	})

	t.Run("review scores do not raise alerts", func(t *testing.T) {
		fakeStore, p, campaignID := setup()
		base := time.Now().Add(-time.Hour)
		for i := 0; i < 7; i++ {
			fakeStore.clicks[campaignID] = append(fakeStore.clicks[campaignID],
				clickAt(campaignID, "10.0.0.1", "Mozilla/5.0", base.Add(time.Duration(i)*500*time.Millisecond)))
		}

		report, err := p.DetectFraud(ctx, campaignID, 24)
		require.NoError(t, err)
		assert.InDelta(t, 0.5, report.FraudScore, 1e-9)
		assert.Equal(t, ActionReview, report.RecommendedAction)
		assert.Nil(t, report.AlertID)
		assert.Empty(t, fakeStore.alerts)
	})

	t.Run("both detectors contribute evidence", func(t *testing.T) {
		fakeStore, p, campaignID := setup()
		base := time.Now().Add(-time.Hour)
		for i := 0; i < 7; i++ {
			fakeStore.clicks[campaignID] = append(fakeStore.clicks[campaignID],
				clickAt(campaignID, "10.0.0.1", "Mozilla/5.0", base.Add(time.Duration(i)*500*time.Millisecond)))
		}
		for i := 0; i < 3; i++ {
			fakeStore.clicks[campaignID] = append(fakeStore.clicks[campaignID],
				clickAt(campaignID, "10.0.0.2", "curl/8.0", base.Add(time.Duration(i)*time.Minute)))
		}

		report, err := p.DetectFraud(ctx, campaignID, 24)
		require.NoError(t, err)
		assert.Len(t, report.Evidence, 2)
		assert.InDelta(t, 0.75, report.FraudScore, 1e-9)
		assert.Equal(t, ActionPauseCampaign, report.RecommendedAction)
		require.NotNil(t, report.AlertID)
		require.Len(t, fakeStore.alerts, 1)
		assert.Equal(t, store.FraudSeverityHigh, fakeStore.alerts[0].Severity)
	})

	t.Run("clicks outside the lookback window are ignored", func(t *testing.T) {
		fakeStore, p, campaignID := setup()
		old := time.Now().Add(-48 * time.Hour)
		for i := 0; i < 12; i++ {
			fakeStore.clicks[campaignID] = append(fakeStore.clicks[campaignID],
				clickAt(campaignID, "10.0.0.1", "Mozilla/5.0", old.Add(time.Duration(i)*500*time.Millisecond)))
		}

		report, err := p.DetectFraud(ctx, campaignID, 24)
		require.NoError(t, err)
		assert.Equal(t, 0.0, report.FraudScore)
	})

	t.Run("zero lookback uses the configured default", func(t *testing.T) {
		_, p, campaignID := setup()
		_, err := p.DetectFraud(ctx, campaignID, 0)
		require.NoError(t, err)
	})

	t.Run("lookback out of range", func(t *testing.T) {
		_, p, campaignID := setup()
		_, err := p.DetectFraud(ctx, campaignID, 200)
		assert.ErrorIs(t, err, ErrInvalidLookback)
	})

	t.Run("unknown campaign", func(t *testing.T) {
		_, p, _ := setup()
		_, err := p.DetectFraud(ctx, uuid.New(), 24)
		assert.ErrorIs(t, err, ErrCampaignNotFound)
	})
}

func TestActiveCampaignIDs(t *testing.T) {
	ctx := context.Background()
	logger := observability.NewLogger()

	fakeStore := newFakeFraudStore()
	activeID := uuid.New()
	inactiveID := uuid.New()
	fakeStore.campaigns[activeID] = store.AffiliateCampaign{ID: activeID, IsActive: true}
	fakeStore.campaigns[inactiveID] = store.AffiliateCampaign{ID: inactiveID}

	p := New(fakeStore, testFraudConfig(), logger)
	ids, err := p.ActiveCampaignIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{activeID}, ids)
}
