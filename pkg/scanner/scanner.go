package scanner

import (
	"math"
	"sort"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/cypherlabdev/odds-scanner-service/internal/models"
	"github.com/cypherlabdev/odds-scanner-service/pkg/pricing"
)

// Scanner derives cross-book opportunities from enriched events
type Scanner struct {
	params models.ScanParams
	logger zerolog.Logger
}

// NewScanner creates a new opportunity scanner
func NewScanner(params models.ScanParams, logger zerolog.Logger) *Scanner {
	return &Scanner{
		params: params,
		logger: logger.With().Str("component", "scanner").Logger(),
	}
}

// Scan runs all four scans over the same snapshot
func (s *Scanner) Scan(events []models.EnrichedEvent) models.Opportunities {
	opps := models.Opportunities{
		ValueBets: s.ValueBets(events),
		Arbitrage: s.Arbitrage(events),
		LowHold:   s.LowHold(events),
		Middles:   s.Middles(events),
	}

	s.logger.Debug().
		Int("event_count", len(events)).
		Int("value_bets", len(opps.ValueBets)).
		Int("arbitrage", len(opps.Arbitrage)).
		Int("low_hold", len(opps.LowHold)).
		Int("middles", len(opps.Middles)).
		Msg("scan complete")

	return opps
}

// ValueBets flattens every flagged selection, highest edge first
func (s *Scanner) ValueBets(events []models.EnrichedEvent) []models.ValueBet {
	bets := make([]models.ValueBet, 0)

	for i := range events {
		ev := &events[i]
		for _, market := range ev.Markets() {
			for _, sel := range market.All() {
				if !sel.IsValue {
					continue
				}
				bet := models.ValueBet{
					EventID:     ev.ID,
					EventName:   ev.Name,
					Market:      sel.Key.Market,
					Selection:   sel.Label,
					Odds:        sel.BestOdds,
					Book:        sel.BestBook,
					EdgePct:     sel.Edge() * 100,
					StakeAmount: sel.StakeAmount,
				}
				if sel.KellyFraction != nil {
					pct := *sel.KellyFraction * 100
					bet.KellyPct = &pct
				}
				bets = append(bets, bet)
			}
		}
	}

	sort.SliceStable(bets, func(i, j int) bool {
		return bets[i].EdgePct > bets[j].EdgePct
	})

	return bets
}

// binarySides returns the two head-to-head selections of a binary market
func binarySides(ev *models.EnrichedEvent) (*models.Selection, *models.Selection, bool) {
	// Three-way markets such as 1X2 are out of scope
	if ev.HeadToHead.Len() != 2 {
		return nil, nil, false
	}
	sides := ev.HeadToHead.All()
	return sides[0], sides[1], true
}

// Arbitrage emits every cross-book quote pair on a binary market whose total implied probability is below 1
func (s *Scanner) Arbitrage(events []models.EnrichedEvent) []models.ArbitragePair {
	pairs := make([]models.ArbitragePair, 0)

	for i := range events {
		ev := &events[i]
		side1, side2, ok := binarySides(ev)
		if !ok {
			continue
		}

		for _, q1 := range side1.Offers {
			for _, q2 := range side2.Offers {
				if q1.Book == q2.Book {
					continue
				}
				total := pricing.TotalImplied(q1.DecimalOdds, q2.DecimalOdds)
				if total <= 0 || total >= 1 {
					continue
				}

				pair := models.ArbitragePair{
					EventID:   ev.ID,
					EventName: ev.Name,
					Outcome1:  side1.Label,
					Outcome2:  side2.Label,
					Book1:     q1.Book,
					Book2:     q2.Book,
					Odds1:     q1.DecimalOdds,
					Odds2:     q2.DecimalOdds,
					ProfitPct: pricing.ArbitrageProfitPercent(total),
				}
				if plan, ok := pricing.SplitArbitrageStake(s.params.ArbitrageStake, q1.DecimalOdds, q2.DecimalOdds); ok {
					pair.Stakes = plan
				}
				pairs = append(pairs, pair)
			}
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].ProfitPct > pairs[j].ProfitPct
	})

	return pairs
}

// LowHold reports the best price per side of binary markets when both come from different books and the hold is under the threshold
func (s *Scanner) LowHold(events []models.EnrichedEvent) []models.LowHoldPair {
	pairs := make([]models.LowHoldPair, 0)

	for i := range events {
		ev := &events[i]
		side1, side2, ok := binarySides(ev)
		if !ok {
			continue
		}
		// One book cannot be both sides of a hedge
		if side1.BestBook == side2.BestBook {
			continue
		}

		hold := pricing.HoldPercent(side1.BestOdds, side2.BestOdds)
		if math.IsNaN(hold) || hold >= s.params.LowHoldThreshold {
			continue
		}

		pairs = append(pairs, models.LowHoldPair{
			EventID:   ev.ID,
			EventName: ev.Name,
			Outcome1:  side1.Label,
			Outcome2:  side2.Label,
			Book1:     side1.BestBook,
			Book2:     side2.BestBook,
			Odds1:     side1.BestOdds,
			Odds2:     side2.BestOdds,
			HoldPct:   hold,
		})
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].HoldPct < pairs[j].HoldPct
	})

	return pairs
}

// Middles pairs Over and Under totals at offset lines from different books, widest window first
func (s *Scanner) Middles(events []models.EnrichedEvent) []models.Middle {
	middles := make([]models.Middle, 0)

	for i := range events {
		ev := &events[i]
		if ev.Totals == nil {
			continue
		}

		var overs, unders []*models.Selection
		for _, sel := range ev.Totals.All() {
			switch {
			case sel.Key.IsOver():
				overs = append(overs, sel)
			case sel.Key.IsUnder():
				unders = append(unders, sel)
			}
		}

		for _, over := range overs {
			for _, under := range unders {
				if over.BestBook == under.BestBook {
					continue
				}
				m, ok := middleWindow(over.Key.Point, under.Key.Point)
				if !ok {
					continue
				}
				m.EventID = ev.ID
				m.EventName = ev.Name
				m.Over = middleLeg(over)
				m.Under = middleLeg(under)
				middles = append(middles, m)
			}
		}
	}

	sort.SliceStable(middles, func(i, j int) bool {
		return middles[i].WindowSize() > middles[j].WindowSize()
	})

	return middles
}

// middleWindow computes the integer results that win both an Over at overPoint and an Under at underPoint
func middleWindow(overPoint, underPoint float64) (models.Middle, bool) {
	if overPoint >= underPoint {
		return models.Middle{}, false
	}

	start := int(math.Ceil(overPoint + 0.5))
	end := int(math.Floor(underPoint - 0.5))
	if start > end {
		return models.Middle{}, false
	}

	window := strconv.Itoa(start)
	if end > start {
		window += "-" + strconv.Itoa(end)
	}

	return models.Middle{WindowStart: start, WindowEnd: end, Window: window}, true
}

func middleLeg(sel *models.Selection) models.MiddleLeg {
	return models.MiddleLeg{
		Selection: sel.Label,
		Point:     sel.Key.Point,
		Book:      sel.BestBook,
		Odds:      sel.BestOdds,
	}
}
