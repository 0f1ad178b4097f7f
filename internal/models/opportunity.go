package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ValueBet is a selection whose best price beats the fair baseline
type ValueBet struct {
	EventID     string           `json:"event_id"`
	EventName   string           `json:"event_name"`
	Market      MarketType       `json:"market"`
	Selection   string           `json:"selection"`
	Odds        float64          `json:"odds"`
	Book        string           `json:"book"`
	EdgePct     float64          `json:"edge_pct"`
	KellyPct    *float64         `json:"kelly_pct,omitempty"`
	StakeAmount *decimal.Decimal `json:"stake_amount,omitempty"`
}

// StakePlan splits a total stake across two legs so both outcomes pay the same
type StakePlan struct {
	TotalStake decimal.Decimal `json:"total_stake"`
	Stake1     decimal.Decimal `json:"stake1"`
	Stake2     decimal.Decimal `json:"stake2"`
	Payout     decimal.Decimal `json:"payout"`
	Profit     decimal.Decimal `json:"profit"`
}

// ArbitragePair is a two-book combination on a binary market with total implied below 1
type ArbitragePair struct {
	EventID   string    `json:"event_id"`
	EventName string    `json:"event_name"`
	Outcome1  string    `json:"outcome1"`
	Outcome2  string    `json:"outcome2"`
	Book1     string    `json:"book1"`
	Book2     string    `json:"book2"`
	Odds1     float64   `json:"odds1"`
	Odds2     float64   `json:"odds2"`
	ProfitPct float64   `json:"profit_pct"`
	Stakes    StakePlan `json:"stakes"`
}

// LowHoldPair is the best price per side of a binary market when the combined hold is small
type LowHoldPair struct {
	EventID   string  `json:"event_id"`
	EventName string  `json:"event_name"`
	Outcome1  string  `json:"outcome1"`
	Outcome2  string  `json:"outcome2"`
	Book1     string  `json:"book1"`
	Book2     string  `json:"book2"`
	Odds1     float64 `json:"odds1"`
	Odds2     float64 `json:"odds2"`
	HoldPct   float64 `json:"hold_pct"`
}

// MiddleLeg is one side of a middle
type MiddleLeg struct {
	Selection string  `json:"selection"` // e.g. "Over 51.5"
	Point     float64 `json:"point"`
	Book      string  `json:"book"`
	Odds      float64 `json:"odds"`
}

// Middle is an Over/Under pair at offset lines where a result in the window wins both
type Middle struct {
	EventID     string    `json:"event_id"`
	EventName   string    `json:"event_name"`
	Over        MiddleLeg `json:"over"`
	Under       MiddleLeg `json:"under"`
	WindowStart int       `json:"window_start"`
	WindowEnd   int       `json:"window_end"`
	Window      string    `json:"window"` // "52" or "52-54"
}

// WindowSize is the number of integer results that win both legs
func (m Middle) WindowSize() int {
	return m.WindowEnd - m.WindowStart + 1
}

// Opportunities holds the four independently ranked scan results
type Opportunities struct {
	ValueBets []ValueBet      `json:"value_bets"`
	Arbitrage []ArbitragePair `json:"arbitrage"`
	LowHold   []LowHoldPair   `json:"low_hold"`
	Middles   []Middle        `json:"middles"`
}

// ScanParams holds the scanner settings
type ScanParams struct {
	LowHoldThreshold float64         // Hold percent below which a pair is reported (5 = 5%)
	ArbitrageStake   decimal.Decimal // Total stake used for arbitrage stake plans
}

// SnapshotRequest is the presentation-side input of one refresh
type SnapshotRequest struct {
	Sport  string
	Sizing SizingParams
}

// FeedFailure describes a primary feed failure carried inside a snapshot
type FeedFailure struct {
	Category   string `json:"category"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code,omitempty"` // Zero for transport failures
}

// FeedResult is the outcome of one feed fetch, reused for the rest of its cycle.
// Exactly one of Events or Failure is meaningful.
type FeedResult struct {
	Feed      string       `json:"feed"`
	Sport     string       `json:"sport,omitempty"` // Empty for feeds not filtered by sport
	Events    []Event      `json:"events"`
	Failure   *FeedFailure `json:"failure,omitempty"`
	FetchedAt time.Time    `json:"fetched_at"`
}

// Snapshot is the full output of one refresh cycle
type Snapshot struct {
	ID               uuid.UUID       `json:"id"`
	Sport            string          `json:"sport"`
	SportsbookEvents []EnrichedEvent `json:"sportsbook_events"`
	PredictionEvents []EnrichedEvent `json:"prediction_events"`
	Opportunities    Opportunities   `json:"opportunities"`
	SportsbookError  *FeedFailure    `json:"sportsbook_error,omitempty"`
	GeneratedAt      time.Time       `json:"generated_at"`
}

// Sport is a supported sport filter value with its display label
type Sport struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Sports lists the sport keys offered to the presentation layer. Values are passed through to the feed untouched.
var Sports = []Sport{
	{ID: "americanfootball_nfl", Label: "NFL"},
	{ID: "americanfootball_ncaaf", Label: "NCAAF"},
	{ID: "basketball_nba", Label: "NBA"},
	{ID: "basketball_ncaab", Label: "NCAAB"},
	{ID: "basketball_wnba", Label: "WNBA"},
	{ID: "baseball_mlb", Label: "MLB"},
	{ID: "icehockey_nhl", Label: "NHL"},
	{ID: "mma_ufc", Label: "UFC"},
	{ID: "soccer_epl", Label: "EPL"},
	{ID: "soccer_mls", Label: "MLS"},
	{ID: "americanfootball_nfl_preseason", Label: "NFL Preseason"},
	{ID: "basketball_nba_preseason", Label: "NBA Preseason"},
}
