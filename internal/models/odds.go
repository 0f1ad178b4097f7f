package models

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrMalformedQuote marks a quote that cannot take part in aggregation
var ErrMalformedQuote = errors.New("malformed quote")

// MarketType identifies the market a quote belongs to
type MarketType string

const (
	MarketHeadToHead MarketType = "h2h"
	MarketSpread     MarketType = "spreads"
	MarketTotal      MarketType = "totals"
)

// Source identifies the kind of venue that produced a quote
type Source string

const (
	SourceSportsbook       Source = "sportsbook"
	SourcePredictionMarket Source = "prediction_market"
)

// Quote is one book's price for one outcome of one market on one event
type Quote struct {
	Outcome     string     `json:"outcome"`      // "Team A", "Over", "Yes"
	Book        string     `json:"book"`
	DecimalOdds float64    `json:"decimal_odds"` // Payout multiple per unit staked
	ImpliedProb float64    `json:"implied_prob"`
	Market      MarketType `json:"market"`
	Point       *float64   `json:"point,omitempty"` // Line for spreads and totals
	Source      Source     `json:"source"`
}

// NewSportsbookQuote builds a quote from a decimal price, deriving the implied probability
func NewSportsbookQuote(outcome, book string, market MarketType, decimalOdds float64, point *float64) Quote {
	implied := 0.0
	if decimalOdds > 0 {
		implied = 1 / decimalOdds
	}
	return Quote{
		Outcome:     outcome,
		Book:        book,
		DecimalOdds: decimalOdds,
		ImpliedProb: implied,
		Market:      market,
		Point:       point,
		Source:      SourceSportsbook,
	}
}

// NewPredictionQuote builds a head-to-head quote from a probability-native price
func NewPredictionQuote(outcome, book string, probability float64) Quote {
	odds := 0.0
	if probability > 0 {
		odds = 1 / probability
	}
	return Quote{
		Outcome:     outcome,
		Book:        book,
		DecimalOdds: odds,
		ImpliedProb: probability,
		Market:      MarketHeadToHead,
		Source:      SourcePredictionMarket,
	}
}

// HasPoint reports whether the quote carries a line
func (q Quote) HasPoint() bool {
	return q.Point != nil
}

// Normalized fills the derived price fields of a quote received from outside.
// Sportsbook quotes always take their implied probability from the decimal price;
// prediction quotes supplied as a bare probability get their decimal price.
func (q Quote) Normalized() Quote {
	switch q.Source {
	case SourcePredictionMarket:
		if q.DecimalOdds == 0 && q.ImpliedProb > 0 {
			q.DecimalOdds = 1 / q.ImpliedProb
		}
	default:
		if q.Source == "" {
			q.Source = SourceSportsbook
		}
		if q.DecimalOdds > 0 {
			q.ImpliedProb = 1 / q.DecimalOdds
		}
	}
	return q
}

// Validate checks the quote invariants. Spread and total quotes must carry a line.
func (q Quote) Validate() error {
	if q.Outcome == "" {
		return fmt.Errorf("%w: empty outcome", ErrMalformedQuote)
	}
	if math.IsNaN(q.DecimalOdds) || math.IsInf(q.DecimalOdds, 0) || q.DecimalOdds <= 1.0 {
		return fmt.Errorf("%w: decimal odds %v", ErrMalformedQuote, q.DecimalOdds)
	}

	switch q.Source {
	case SourcePredictionMarket:
		if !(q.ImpliedProb > 0 && q.ImpliedProb < 1) {
			return fmt.Errorf("%w: probability %v", ErrMalformedQuote, q.ImpliedProb)
		}
	default:
		if !(q.ImpliedProb > 0 && q.ImpliedProb <= 1) {
			return fmt.Errorf("%w: implied probability %v", ErrMalformedQuote, q.ImpliedProb)
		}
	}

	switch q.Market {
	case MarketHeadToHead:
	case MarketSpread, MarketTotal:
		if q.Point == nil || math.IsNaN(*q.Point) || math.IsInf(*q.Point, 0) {
			return fmt.Errorf("%w: %s quote without line", ErrMalformedQuote, q.Market)
		}
	default:
		return fmt.Errorf("%w: unknown market %q", ErrMalformedQuote, q.Market)
	}

	return nil
}

// Key returns the selection this quote groups into
func (q Quote) Key() SelectionKey {
	key := SelectionKey{Market: q.Market, Outcome: q.Outcome}
	if q.Market != MarketHeadToHead && q.Point != nil {
		key.Point = *q.Point
	}
	return key
}

// Event is one real-world contest or question, rebuilt on every refresh
type Event struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Sport        string    `json:"sport"`
	CommenceTime time.Time `json:"commence_time"`
	Quotes       []Quote   `json:"quotes"`
}

// EnrichedEvent is an event plus its per-market selections
type EnrichedEvent struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Sport         string        `json:"sport"`
	CommenceTime  time.Time     `json:"commence_time"`
	HeadToHead    SelectionSet  `json:"head_to_head"`
	Spreads       *SelectionSet `json:"spreads,omitempty"`
	Totals        *SelectionSet `json:"totals,omitempty"`
	DroppedQuotes int           `json:"dropped_quotes"`
}

// Markets returns the non-empty selection sets of the event
func (e *EnrichedEvent) Markets() []*SelectionSet {
	markets := []*SelectionSet{&e.HeadToHead}
	if e.Spreads != nil {
		markets = append(markets, e.Spreads)
	}
	if e.Totals != nil {
		markets = append(markets, e.Totals)
	}
	return markets
}

// KellyMultiplier scales the full Kelly stake. Only 1, 0.5 and 0.25 are valid.
type KellyMultiplier float64

const (
	KellyFull    KellyMultiplier = 1
	KellyHalf    KellyMultiplier = 0.5
	KellyQuarter KellyMultiplier = 0.25
)

// Valid reports whether m is one of the supported multipliers
func (m KellyMultiplier) Valid() bool {
	return m == KellyFull || m == KellyHalf || m == KellyQuarter
}

// ParseKellyMultiplier parses "1", "0.5" or "0.25"
func ParseKellyMultiplier(s string) (KellyMultiplier, error) {
	switch s {
	case "1", "1.0":
		return KellyFull, nil
	case "0.5", ".5":
		return KellyHalf, nil
	case "0.25", ".25":
		return KellyQuarter, nil
	default:
		return 0, fmt.Errorf("invalid kelly multiplier %q: must be 1, 0.5 or 0.25", s)
	}
}

// SizingParams carries the optional stake sizing inputs of one request
type SizingParams struct {
	Bankroll        float64         // Zero means not supplied
	Kelly           KellyMultiplier // Zero means not supplied
	YourProbability *float64        // Overrides the fair baseline as "your probability"
}

// Enabled reports whether both bankroll and Kelly multiplier were supplied
func (p SizingParams) Enabled() bool {
	return p.Bankroll > 0 && p.Kelly.Valid()
}

// FairBaseline selects how the fair implied probability is derived
type FairBaseline string

const (
	FairBaselineBest FairBaseline = "best"
	FairBaselineMean FairBaseline = "mean"
)

// AggregationParams holds the aggregator settings
type AggregationParams struct {
	Baseline FairBaseline
	MinEdge  float64 // Minimum fair-minus-offered probability to flag value (0.01 = 1pp)
}

// KafkaQuoteSnapshotMessage is a batch of normalized events pushed by an upstream normalizer
type KafkaQuoteSnapshotMessage struct {
	BatchID   string    `json:"batch_id"`
	Sport     string    `json:"sport"`
	Events    []Event   `json:"events"`
	Timestamp time.Time `json:"timestamp"`
}
