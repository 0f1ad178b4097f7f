package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cypherlabdev/odds-scanner-service/internal/cache"
	"github.com/cypherlabdev/odds-scanner-service/internal/feed"
	"github.com/cypherlabdev/odds-scanner-service/internal/metrics"
	"github.com/cypherlabdev/odds-scanner-service/internal/models"
	"github.com/cypherlabdev/odds-scanner-service/pkg/aggregator"
	"github.com/cypherlabdev/odds-scanner-service/pkg/scanner"
)

// OddsService fetches both feeds once per cycle and builds priced snapshots from them
type OddsService struct {
	sportsbook SportsbookFeed
	prediction PredictionFeed
	aggregator *aggregator.Aggregator
	scanner    *scanner.Scanner
	cache      Cache
	metrics    *metrics.Metrics
	logger     zerolog.Logger
	now        func() time.Time
}

// NewOddsService creates a new odds service
func NewOddsService(
	sportsbook SportsbookFeed,
	prediction PredictionFeed,
	agg *aggregator.Aggregator,
	scn *scanner.Scanner,
	snapshotCache Cache,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *OddsService {
	return &OddsService{
		sportsbook: sportsbook,
		prediction: prediction,
		aggregator: agg,
		scanner:    scn,
		cache:      snapshotCache,
		metrics:    m,
		logger:     logger.With().Str("component", "odds_service").Logger(),
		now:        time.Now,
	}
}

// Refresh fetches both feeds now, replaces their cached results, and builds a snapshot for req
func (s *OddsService) Refresh(ctx context.Context, req models.SnapshotRequest) (*models.Snapshot, error) {
	start := s.now()
	sb, pm := s.loadFeeds(ctx, req.Sport, true)
	return s.assemble(ctx, req, sb, pm, start)
}

// GetSnapshot builds a snapshot for req from the feed results of the current cycle.
// Only feeds without a cached result are fetched; sizing never causes a fetch.
//
// A prediction-market failure yields no prediction events. A sportsbook failure
// still returns the snapshot built from the prediction feed, together with the
// feed error. Failures are cached like results so the cycle does not retry them.
func (s *OddsService) GetSnapshot(ctx context.Context, req models.SnapshotRequest) (*models.Snapshot, error) {
	start := s.now()
	sb, pm := s.loadFeeds(ctx, req.Sport, false)
	return s.assemble(ctx, req, sb, pm, start)
}

// GetSnapshotByID returns a previously generated snapshot that is still cached
func (s *OddsService) GetSnapshotByID(ctx context.Context, id uuid.UUID) (*models.Snapshot, error) {
	snapshot, err := s.cache.GetSnapshot(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve snapshot %s: %w", id, err)
	}
	return snapshot, nil
}

// ProcessQuotes replaces the cached sportsbook result of the batch's sport with the pushed events
func (s *OddsService) ProcessQuotes(ctx context.Context, msg *models.KafkaQuoteSnapshotMessage) error {
	if msg.Sport == "" {
		return fmt.Errorf("%w: batch %s: missing sport", ErrInvalidBatch, msg.BatchID)
	}

	fetchedAt := s.now().UTC()
	if !msg.Timestamp.IsZero() {
		fetchedAt = msg.Timestamp.UTC()
	}

	result := &models.FeedResult{
		Feed:      feed.NameSportsbook,
		Sport:     msg.Sport,
		Events:    msg.Events,
		FetchedAt: fetchedAt,
	}
	if err := s.cache.SetFeed(ctx, result); err != nil {
		return fmt.Errorf("failed to cache pushed events: %w", err)
	}
	s.metrics.FeedEvents.WithLabelValues(feed.NameSportsbook).Set(float64(len(msg.Events)))

	s.logger.Info().
		Str("batch_id", msg.BatchID).
		Str("sport", msg.Sport).
		Int("event_count", len(msg.Events)).
		Msg("cached pushed sportsbook events")

	return nil
}

// RunRefreshLoop refreshes req immediately and then every interval until ctx is done
func (s *OddsService) RunRefreshLoop(ctx context.Context, interval time.Duration, req models.SnapshotRequest) {
	s.logger.Info().
		Dur("interval", interval).
		Str("sport", req.Sport).
		Msg("starting background refresh")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.Refresh(ctx, req); err != nil && ctx.Err() == nil {
			s.logger.Error().Err(err).Str("sport", req.Sport).Msg("background refresh failed")
		}

		select {
		case <-ctx.Done():
			s.logger.Info().Msg("stopping background refresh")
			return
		case <-ticker.C:
		}
	}
}

// Ready reports whether the cache is reachable
func (s *OddsService) Ready(ctx context.Context) error {
	return s.cache.Ping(ctx)
}

// loadFeeds returns the result of both feeds, fetching them concurrently when
// force is set or nothing is cached for the cycle
func (s *OddsService) loadFeeds(ctx context.Context, sport string, force bool) (sb, pm *models.FeedResult) {
	// Neither lookup returns an error to the group, so one cannot cancel the other
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sb = s.feedResult(gctx, feed.NameSportsbook, sport, force, s.fetchSportsbook)
		return nil
	})
	g.Go(func() error {
		pm = s.feedResult(gctx, feed.NamePolymarket, "", force, s.fetchPrediction)
		return nil
	})
	_ = g.Wait()
	return sb, pm
}

func (s *OddsService) feedResult(
	ctx context.Context,
	feedName, sport string,
	force bool,
	fetch func(context.Context, string) *models.FeedResult,
) *models.FeedResult {
	if !force {
		cached, err := s.cache.GetFeed(ctx, feedName, sport)
		switch {
		case err == nil && cached != nil:
			s.metrics.FeedCache.WithLabelValues(feedName, "hit").Inc()
			return cached
		case err == nil || errors.Is(err, cache.ErrCacheMiss):
			s.metrics.FeedCache.WithLabelValues(feedName, "miss").Inc()
		default:
			// Log cache errors (but don't fail on them)
			s.metrics.FeedCache.WithLabelValues(feedName, "error").Inc()
			s.logger.Warn().
				Err(err).
				Str("feed", feedName).
				Str("sport", sport).
				Msg("cache error, fetching feed")
		}
	}

	result := fetch(ctx, sport)

	// A fetch cut short by the caller says nothing about the feed
	if ctx.Err() != nil {
		return result
	}
	if err := s.cache.SetFeed(ctx, result); err != nil {
		s.logger.Warn().
			Err(err).
			Str("feed", feedName).
			Str("sport", sport).
			Msg("failed to cache feed result")
	}
	return result
}

func (s *OddsService) fetchSportsbook(ctx context.Context, sport string) *models.FeedResult {
	start := s.now()
	events, err := s.sportsbook.FetchEvents(ctx, sport)
	s.metrics.FeedDuration.WithLabelValues(feed.NameSportsbook).Observe(s.now().Sub(start).Seconds())

	result := &models.FeedResult{Feed: feed.NameSportsbook, Sport: sport, FetchedAt: s.now().UTC()}
	if err != nil {
		s.metrics.FeedRequests.WithLabelValues(feed.NameSportsbook, string(feed.CategoryOf(err))).Inc()
		s.logger.Error().
			Err(err).
			Str("sport", sport).
			Str("category", string(feed.CategoryOf(err))).
			Msg("sportsbook feed failed")
		result.Failure = feed.FailureOf(err)
		return result
	}

	s.metrics.FeedRequests.WithLabelValues(feed.NameSportsbook, "ok").Inc()
	s.metrics.FeedEvents.WithLabelValues(feed.NameSportsbook).Set(float64(len(events)))
	result.Events = events
	return result
}

func (s *OddsService) fetchPrediction(ctx context.Context, _ string) *models.FeedResult {
	start := s.now()
	events, err := s.prediction.FetchEvents(ctx)
	s.metrics.FeedDuration.WithLabelValues(feed.NamePolymarket).Observe(s.now().Sub(start).Seconds())

	result := &models.FeedResult{Feed: feed.NamePolymarket, FetchedAt: s.now().UTC()}
	if err != nil {
		s.metrics.FeedRequests.WithLabelValues(feed.NamePolymarket, string(feed.CategoryOf(err))).Inc()
		s.logger.Warn().
			Err(err).
			Msg("prediction feed failed, continuing without it")
		result.Failure = feed.FailureOf(err)
		return result
	}

	s.metrics.FeedRequests.WithLabelValues(feed.NamePolymarket, "ok").Inc()
	s.metrics.FeedEvents.WithLabelValues(feed.NamePolymarket).Set(float64(len(events)))
	result.Events = events
	return result
}

// assemble prices the feed results for req, stores the snapshot by ID, and
// reports a sportsbook failure alongside the partial snapshot
func (s *OddsService) assemble(ctx context.Context, req models.SnapshotRequest, sb, pm *models.FeedResult, start time.Time) (*models.Snapshot, error) {
	snapshot := s.buildSnapshot(req, sb.Events, pm.Events)
	snapshot.SportsbookError = sb.Failure

	if err := s.cache.SetSnapshot(ctx, snapshot); err != nil {
		s.logger.Warn().
			Err(err).
			Str("snapshot_id", snapshot.ID.String()).
			Msg("failed to cache snapshot")
		// Don't fail the request on cache errors
	}

	s.metrics.RefreshDuration.Observe(s.now().Sub(start).Seconds())

	if sb.Failure != nil {
		return snapshot, fmt.Errorf("sportsbook feed failed: %w", feed.FromFailure(feed.NameSportsbook, sb.Failure))
	}

	s.logger.Debug().
		Str("snapshot_id", snapshot.ID.String()).
		Str("sport", req.Sport).
		Int("sportsbook_events", len(snapshot.SportsbookEvents)).
		Int("prediction_events", len(snapshot.PredictionEvents)).
		Int("value_bets", len(snapshot.Opportunities.ValueBets)).
		Int("arbitrage", len(snapshot.Opportunities.Arbitrage)).
		Msg("built snapshot")

	return snapshot, nil
}

// buildSnapshot enriches both event sets and scans their union
func (s *OddsService) buildSnapshot(req models.SnapshotRequest, sbEvents, pmEvents []models.Event) *models.Snapshot {
	sbEnriched := s.aggregator.EnrichBatch(sbEvents, req.Sizing)
	pmEnriched := s.aggregator.EnrichBatch(pmEvents, req.Sizing)

	all := make([]models.EnrichedEvent, 0, len(sbEnriched)+len(pmEnriched))
	all = append(all, sbEnriched...)
	all = append(all, pmEnriched...)

	dropped := 0
	for i := range all {
		dropped += all[i].DroppedQuotes
	}
	s.metrics.DroppedQuotes.Add(float64(dropped))

	opps := s.scanner.Scan(all)
	s.metrics.ObserveOpportunities(len(opps.ValueBets), len(opps.Arbitrage), len(opps.LowHold), len(opps.Middles))

	return &models.Snapshot{
		ID:               uuid.New(),
		Sport:            req.Sport,
		SportsbookEvents: sbEnriched,
		PredictionEvents: pmEnriched,
		Opportunities:    opps,
		GeneratedAt:      s.now().UTC(),
	}
}
