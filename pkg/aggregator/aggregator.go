package aggregator

import (
	"github.com/rs/zerolog"

	"github.com/cypherlabdev/odds-scanner-service/internal/models"
	"github.com/cypherlabdev/odds-scanner-service/pkg/pricing"
)

// Aggregator groups per-book quotes into selections and prices them
type Aggregator struct {
	params models.AggregationParams
	logger zerolog.Logger
}

// NewAggregator creates a new selection aggregator
func NewAggregator(params models.AggregationParams, logger zerolog.Logger) *Aggregator {
	if params.Baseline == "" {
		params.Baseline = models.FairBaselineBest
	}
	return &Aggregator{
		params: params,
		logger: logger.With().Str("component", "aggregator").Logger(),
	}
}

// Enrich builds the per-market selections of one event.
// Malformed quotes are dropped and counted, never fatal to the event.
func (a *Aggregator) Enrich(event models.Event, sizing models.SizingParams) models.EnrichedEvent {
	enriched := models.EnrichedEvent{
		ID:           event.ID,
		Name:         event.Name,
		Sport:        event.Sport,
		CommenceTime: event.CommenceTime,
		HeadToHead:   models.NewSelectionSet(),
	}

	// Partition by market, then by selection key, keeping first-seen order
	groups := make(map[models.SelectionKey][]models.Quote)
	var order []models.SelectionKey
	for _, q := range event.Quotes {
		q = q.Normalized()
		if err := q.Validate(); err != nil {
			enriched.DroppedQuotes++
			a.logger.Debug().
				Err(err).
				Str("event_id", event.ID).
				Str("book", q.Book).
				Str("outcome", q.Outcome).
				Msg("dropping malformed quote")
			continue
		}
		key := q.Key()
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], q)
	}

	for _, key := range order {
		sel := a.buildSelection(key, groups[key], sizing)

		switch key.Market {
		case models.MarketSpread:
			if enriched.Spreads == nil {
				set := models.NewSelectionSet()
				enriched.Spreads = &set
			}
			enriched.Spreads.Put(sel)
		case models.MarketTotal:
			if enriched.Totals == nil {
				set := models.NewSelectionSet()
				enriched.Totals = &set
			}
			enriched.Totals.Put(sel)
		default:
			enriched.HeadToHead.Put(sel)
		}
	}

	return enriched
}

// buildSelection prices one group; offers is never empty
func (a *Aggregator) buildSelection(key models.SelectionKey, offers []models.Quote, sizing models.SizingParams) *models.Selection {
	// On equal prices the later quote wins
	best := offers[0]
	for _, q := range offers[1:] {
		if q.DecimalOdds >= best.DecimalOdds {
			best = q
		}
	}

	fair := pricing.FairProbability(offers, a.params.Baseline)

	sel := &models.Selection{
		Key:             key,
		Label:           key.Label(),
		BestOdds:        best.DecimalOdds,
		BestBook:        best.Book,
		BestImplied:     best.ImpliedProb,
		FairImpliedProb: fair,
		IsValue:         pricing.IsValueBet(best.ImpliedProb, fair, a.params.MinEdge),
		Offers:          offers,
	}

	if sizing.Enabled() {
		// Without an explicit estimate the fair baseline stands in for "your probability"
		yourProb := fair
		if sizing.YourProbability != nil {
			yourProb = *sizing.YourProbability
		}
		fraction := pricing.KellyStake(best.DecimalOdds, yourProb, sizing.Kelly)
		amount := pricing.StakeAmount(sizing.Bankroll, fraction)
		sel.KellyFraction = &fraction
		sel.StakeAmount = &amount
	}

	return sel
}

// EnrichBatch enriches every event independently
func (a *Aggregator) EnrichBatch(events []models.Event, sizing models.SizingParams) []models.EnrichedEvent {
	enriched := make([]models.EnrichedEvent, 0, len(events))
	dropped := 0

	for _, ev := range events {
		e := a.Enrich(ev, sizing)
		dropped += e.DroppedQuotes
		enriched = append(enriched, e)
	}

	a.logger.Debug().
		Int("event_count", len(enriched)).
		Int("dropped_quotes", dropped).
		Bool("sizing", sizing.Enabled()).
		Msg("batch enrichment complete")

	return enriched
}
