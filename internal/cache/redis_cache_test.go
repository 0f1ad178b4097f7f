package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherlabdev/odds-scanner-service/internal/models"
)

// testRedisCacheSetup is a helper struct to hold test dependencies
type testRedisCacheSetup struct {
	cache     *RedisCache
	miniRedis *miniredis.Miniredis
	ctx       context.Context
}

// setupTestRedisCache creates a test cache with miniredis
func setupTestRedisCache(t *testing.T) *testRedisCacheSetup {
	// Create miniredis server
	mr, err := miniredis.Run()
	require.NoError(t, err)

	config := RedisCacheConfig{
		Addr:     mr.Addr(),
		Password: "",
		DB:       0,
		TTL:      2 * time.Minute,
	}

	return &testRedisCacheSetup{
		cache:     NewRedisCache(config, zerolog.Nop()),
		miniRedis: mr,
		ctx:       context.Background(),
	}
}

// cleanup cleans up test resources
func (s *testRedisCacheSetup) cleanup() {
	s.cache.Close()
	s.miniRedis.Close()
}

func testFeedResult() *models.FeedResult {
	return &models.FeedResult{
		Feed:  "sportsbook",
		Sport: "americanfootball_nfl",
		Events: []models.Event{{
			ID:    "evt-1",
			Name:  "Team B @ Team A",
			Sport: "americanfootball_nfl",
			Quotes: []models.Quote{
				models.NewSportsbookQuote("Team A", "BookA", models.MarketHeadToHead, 2.10, nil),
				models.NewSportsbookQuote("Team A", "BookB", models.MarketSpread, 1.91, ptr(-3.5)),
			},
		}},
		FetchedAt: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
	}
}

func ptr(f float64) *float64 { return &f }

func testSnapshot() *models.Snapshot {
	h2h := models.NewSelectionSet()
	h2h.Put(&models.Selection{
		Key:      models.SelectionKey{Market: models.MarketHeadToHead, Outcome: "Team A"},
		Label:    "Team A",
		BestOdds: 2.10,
		BestBook: "BookA",
		Offers: []models.Quote{
			models.NewSportsbookQuote("Team A", "BookA", models.MarketHeadToHead, 2.10, nil),
		},
	})

	return &models.Snapshot{
		ID:    uuid.New(),
		Sport: "americanfootball_nfl",
		SportsbookEvents: []models.EnrichedEvent{{
			ID:         "evt-1",
			Name:       "Team B @ Team A",
			Sport:      "americanfootball_nfl",
			HeadToHead: h2h,
		}},
		PredictionEvents: []models.EnrichedEvent{},
		Opportunities: models.Opportunities{
			ValueBets: []models.ValueBet{},
			Arbitrage: []models.ArbitragePair{{
				EventID: "evt-1", Book1: "BookA", Book2: "BookB", Odds1: 2.10, Odds2: 2.10, ProfitPct: 5,
				Stakes: models.StakePlan{TotalStake: decimal.NewFromInt(100), Stake1: decimal.NewFromInt(50)},
			}},
			LowHold: []models.LowHoldPair{},
			Middles: []models.Middle{},
		},
		GeneratedAt: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
	}
}

// TestNewRedisCache tests cache creation
func TestNewRedisCache(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	assert.NotNil(t, setup.cache)
	assert.NotNil(t, setup.cache.client)
	assert.Equal(t, 2*time.Minute, setup.cache.ttl)
}

// TestKeys tests cache key construction
func TestKeys(t *testing.T) {
	assert.Equal(t, "feed:sportsbook:basketball_nba", FeedKey("sportsbook", "basketball_nba"))
	assert.Equal(t, "feed:polymarket:all", FeedKey("polymarket", ""))

	id := uuid.MustParse("6f1c2a9e-3b0d-4c55-9a43-2d8f0e7b1c11")
	assert.Equal(t, "snapshot:6f1c2a9e-3b0d-4c55-9a43-2d8f0e7b1c11", SnapshotKey(id))
}

// TestSetFeed_Success tests successful feed result caching
func TestSetFeed_Success(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	err := setup.cache.SetFeed(setup.ctx, testFeedResult())
	require.NoError(t, err)

	assert.True(t, setup.miniRedis.Exists("feed:sportsbook:americanfootball_nfl"))
	ttl := setup.miniRedis.TTL("feed:sportsbook:americanfootball_nfl")
	assert.True(t, ttl > 0 && ttl <= 2*time.Minute)
}

// TestSetFeed_ContextCanceled tests set operation with canceled context
func TestSetFeed_ContextCanceled(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	err := setup.cache.SetFeed(ctx, testFeedResult())

	assert.Error(t, err)
}

// TestGetFeed_Success tests that cached events round-trip
func TestGetFeed_Success(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	result := testFeedResult()
	require.NoError(t, setup.cache.SetFeed(setup.ctx, result))

	retrieved, err := setup.cache.GetFeed(setup.ctx, "sportsbook", "americanfootball_nfl")

	require.NoError(t, err)
	require.NotNil(t, retrieved)
	assert.Equal(t, "sportsbook", retrieved.Feed)
	assert.Nil(t, retrieved.Failure)
	assert.True(t, result.FetchedAt.Equal(retrieved.FetchedAt))
	require.Len(t, retrieved.Events, 1)
	require.Len(t, retrieved.Events[0].Quotes, 2)
	assert.Equal(t, result.Events[0].Quotes[0], retrieved.Events[0].Quotes[0])
	require.NotNil(t, retrieved.Events[0].Quotes[1].Point)
	assert.Equal(t, -3.5, *retrieved.Events[0].Quotes[1].Point)
}

// TestGetFeed_Failure tests that a failed fetch is cached for the cycle
func TestGetFeed_Failure(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	failed := &models.FeedResult{
		Feed:    "sportsbook",
		Sport:   "americanfootball_nfl",
		Failure: &models.FeedFailure{Category: "rate_limit", Message: "Odds API rate limit reached. Try again later.", StatusCode: 429},
	}
	require.NoError(t, setup.cache.SetFeed(setup.ctx, failed))

	retrieved, err := setup.cache.GetFeed(setup.ctx, "sportsbook", "americanfootball_nfl")

	require.NoError(t, err)
	assert.Empty(t, retrieved.Events)
	require.NotNil(t, retrieved.Failure)
	assert.Equal(t, *failed.Failure, *retrieved.Failure)
}

// TestGetFeed_NotFound tests retrieval of a feed that was never cached
func TestGetFeed_NotFound(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	require.NoError(t, setup.cache.SetFeed(setup.ctx, testFeedResult()))

	retrieved, err := setup.cache.GetFeed(setup.ctx, "sportsbook", "soccer_epl")

	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, retrieved)
}

// TestGetFeed_ExpiredKey tests that a result expires with its cycle
func TestGetFeed_ExpiredKey(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	require.NoError(t, setup.cache.SetFeed(setup.ctx, testFeedResult()))

	// Fast forward time past TTL
	setup.miniRedis.FastForward(3 * time.Minute)

	retrieved, err := setup.cache.GetFeed(setup.ctx, "sportsbook", "americanfootball_nfl")

	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, retrieved)
}

// TestGetFeed_InvalidJSON tests retrieval of a corrupted entry
func TestGetFeed_InvalidJSON(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	require.NoError(t, setup.miniRedis.Set(FeedKey("polymarket", ""), "invalid json data"))

	retrieved, err := setup.cache.GetFeed(setup.ctx, "polymarket", "")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, retrieved)
}

// TestSnapshot_RoundTrip tests storing and retrieving a snapshot by ID
func TestSnapshot_RoundTrip(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	snapshot := testSnapshot()
	require.NoError(t, setup.cache.SetSnapshot(setup.ctx, snapshot))
	assert.True(t, setup.miniRedis.Exists(SnapshotKey(snapshot.ID)))

	retrieved, err := setup.cache.GetSnapshot(setup.ctx, snapshot.ID)

	require.NoError(t, err)
	require.NotNil(t, retrieved)
	assert.Equal(t, snapshot.ID, retrieved.ID)
	assert.Equal(t, snapshot.Sport, retrieved.Sport)
	assert.True(t, snapshot.GeneratedAt.Equal(retrieved.GeneratedAt))

	require.Len(t, retrieved.SportsbookEvents, 1)
	ev := retrieved.SportsbookEvents[0]
	assert.Equal(t, "evt-1", ev.ID)
	require.Equal(t, 1, ev.HeadToHead.Len())
	sel, ok := ev.HeadToHead.Get(models.SelectionKey{Market: models.MarketHeadToHead, Outcome: "Team A"})
	require.True(t, ok)
	assert.Equal(t, 2.10, sel.BestOdds)
	assert.Len(t, sel.Offers, 1)

	require.Len(t, retrieved.Opportunities.Arbitrage, 1)
	assert.True(t, decimal.NewFromInt(50).Equal(retrieved.Opportunities.Arbitrage[0].Stakes.Stake1))
}

// TestGetSnapshot_NotFound tests retrieval of an unknown or expired snapshot
func TestGetSnapshot_NotFound(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	snapshot := testSnapshot()
	require.NoError(t, setup.cache.SetSnapshot(setup.ctx, snapshot))

	_, err := setup.cache.GetSnapshot(setup.ctx, uuid.New())
	assert.ErrorIs(t, err, ErrCacheMiss)

	setup.miniRedis.FastForward(3 * time.Minute)

	retrieved, err := setup.cache.GetSnapshot(setup.ctx, snapshot.ID)
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, retrieved)
}

// TestPing_Success tests successful ping
func TestPing_Success(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	err := setup.cache.Ping(setup.ctx)

	assert.NoError(t, err)
}

// TestPing_RedisDown tests ping when Redis is down
func TestPing_RedisDown(t *testing.T) {
	setup := setupTestRedisCache(t)

	// Close Redis before ping
	setup.miniRedis.Close()

	err := setup.cache.Ping(setup.ctx)

	assert.Error(t, err)

	// Don't call cleanup() since we already closed Redis
	setup.cache.Close()
}

// TestCache_ConcurrentAccess tests thread safety
func TestCache_ConcurrentAccess(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	result := testFeedResult()
	require.NoError(t, setup.cache.SetFeed(setup.ctx, result))

	done := make(chan bool)

	// Writers
	for i := 0; i < 5; i++ {
		go func() {
			err := setup.cache.SetFeed(setup.ctx, result)
			assert.NoError(t, err)
			done <- true
		}()
	}

	// Readers
	for i := 0; i < 5; i++ {
		go func() {
			retrieved, err := setup.cache.GetFeed(setup.ctx, "sportsbook", "americanfootball_nfl")
			assert.NoError(t, err)
			assert.NotNil(t, retrieved)
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}
