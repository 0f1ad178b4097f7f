package models

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// SelectionKey identifies one bettable proposition. Head-to-head keys ignore Point.
type SelectionKey struct {
	Market  MarketType `json:"market"`
	Outcome string     `json:"outcome"`
	Point   float64    `json:"point"`
}

// Label renders the key for display, e.g. "Team A", "Team A +3.5", "Over 51.5"
func (k SelectionKey) Label() string {
	switch k.Market {
	case MarketSpread:
		sign := ""
		if k.Point > 0 {
			sign = "+"
		}
		return k.Outcome + " " + sign + strconv.FormatFloat(k.Point, 'f', -1, 64)
	case MarketTotal:
		return k.Outcome + " " + strconv.FormatFloat(k.Point, 'f', -1, 64)
	default:
		return k.Outcome
	}
}

// IsOver reports whether the key is the Over side of a total
func (k SelectionKey) IsOver() bool {
	return k.Market == MarketTotal && strings.EqualFold(k.Outcome, "over")
}

// IsUnder reports whether the key is the Under side of a total
func (k SelectionKey) IsUnder() bool {
	return k.Market == MarketTotal && strings.EqualFold(k.Outcome, "under")
}

// Selection groups the quotes for one proposition across books
type Selection struct {
	Key             SelectionKey     `json:"key"`
	Label           string           `json:"label"`
	BestOdds        float64          `json:"best_odds"`
	BestBook        string           `json:"best_book"`
	BestImplied     float64          `json:"best_implied_prob"`
	FairImpliedProb float64          `json:"fair_implied_prob"`
	IsValue         bool             `json:"is_value"`
	KellyFraction   *float64         `json:"kelly_fraction,omitempty"`
	StakeAmount     *decimal.Decimal `json:"stake_amount,omitempty"`
	Offers          []Quote          `json:"offers"`
}

// BestQuote returns the member quote carrying the best price
func (s *Selection) BestQuote() (Quote, bool) {
	for _, q := range s.Offers {
		if q.Book == s.BestBook && q.DecimalOdds == s.BestOdds {
			return q, true
		}
	}
	return Quote{}, false
}

// Edge is the fair baseline minus the offered implied probability of the best price
func (s *Selection) Edge() float64 {
	return s.FairImpliedProb - s.BestImplied
}

// SelectionSet maps selection keys to selections, preserving first-seen order
type SelectionSet struct {
	byKey map[SelectionKey]*Selection
	order []SelectionKey
}

// NewSelectionSet creates an empty set
func NewSelectionSet() SelectionSet {
	return SelectionSet{byKey: make(map[SelectionKey]*Selection)}
}

// Put inserts or replaces the selection under its key
func (s *SelectionSet) Put(sel *Selection) {
	if s.byKey == nil {
		s.byKey = make(map[SelectionKey]*Selection)
	}
	if _, exists := s.byKey[sel.Key]; !exists {
		s.order = append(s.order, sel.Key)
	}
	s.byKey[sel.Key] = sel
}

// Get returns the selection for key
func (s SelectionSet) Get(key SelectionKey) (*Selection, bool) {
	sel, ok := s.byKey[key]
	return sel, ok
}

// Len returns the number of selections
func (s SelectionSet) Len() int {
	return len(s.order)
}

// All returns the selections in first-seen order
func (s SelectionSet) All() []*Selection {
	out := make([]*Selection, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.byKey[k])
	}
	return out
}

// MarshalJSON encodes the set as an ordered array of selections
func (s SelectionSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.All())
}

// UnmarshalJSON rebuilds the set from an array of selections
func (s *SelectionSet) UnmarshalJSON(data []byte) error {
	var sels []*Selection
	if err := json.Unmarshal(data, &sels); err != nil {
		return err
	}
	*s = NewSelectionSet()
	for _, sel := range sels {
		if sel != nil {
			s.Put(sel)
		}
	}
	return nil
}
