// Package pricing holds the pure odds arithmetic: fair baselines, value tests,
// Kelly sizing, hold and arbitrage math. Every function returns a neutral value
// instead of NaN or Inf on degenerate input.
package pricing

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/odds-scanner-service/internal/models"
)

// DefaultMinEdge is the minimum probability edge for a value bet (1 percentage point)
const DefaultMinEdge = 0.01

// neutralProbability is returned when no offers are available
const neutralProbability = 0.5

// edgeTolerance absorbs float rounding at the inclusive min-edge boundary
const edgeTolerance = 1e-12

// ImpliedProbability converts decimal odds to implied probability
func ImpliedProbability(decimalOdds float64) float64 {
	// Implied probability = 1 / decimal_odds
	// Example: 2.50 odds = 1/2.50 = 0.40 = 40%
	if !isFinite(decimalOdds) || decimalOdds <= 0 {
		return 0
	}
	return 1 / decimalOdds
}

// DecimalOdds converts a probability to decimal odds
func DecimalOdds(probability float64) float64 {
	// Decimal odds = 1 / probability
	// Example: 40% probability = 1/0.40 = 2.50 odds
	if !isFinite(probability) || probability <= 0 || probability > 1 {
		return 1 // Safeguard
	}
	return 1 / probability
}

// FairImpliedProbability returns the baseline probability for one selection's offers.
// With useBest it is the inverse of the best price, otherwise the mean implied probability.
func FairImpliedProbability(offers []models.Quote, useBest bool) float64 {
	if len(offers) == 0 {
		return neutralProbability
	}

	if useBest {
		best := 0.0
		for _, o := range offers {
			if isFinite(o.DecimalOdds) && o.DecimalOdds > best {
				best = o.DecimalOdds
			}
		}
		if best <= 0 {
			return neutralProbability
		}
		return 1 / best
	}

	sum := 0.0
	n := 0
	for _, o := range offers {
		if !isFinite(o.DecimalOdds) || o.DecimalOdds <= 0 {
			continue
		}
		sum += 1 / o.DecimalOdds
		n++
	}
	if n == 0 {
		return neutralProbability
	}
	return sum / float64(n)
}

// FairProbability applies the configured baseline
func FairProbability(offers []models.Quote, baseline models.FairBaseline) float64 {
	return FairImpliedProbability(offers, baseline != models.FairBaselineMean)
}

// IsValueBet reports whether fair - offered >= minEdge. The threshold is inclusive.
func IsValueBet(offeredImpliedProb, fairImpliedProb, minEdge float64) bool {
	if !isFinite(offeredImpliedProb) || !isFinite(fairImpliedProb) {
		return false
	}
	// Lower implied prob = better odds = value
	return fairImpliedProb-offeredImpliedProb >= minEdge-edgeTolerance
}

// KellyStake returns the fraction of bankroll to stake, in [0, 1].
//
// f* = (b·p - q) / b with b = decimalOdds - 1, q = 1 - p, scaled by the multiplier.
// Non-positive b or a negative edge yields 0.
func KellyStake(decimalOdds, yourProbability float64, fraction models.KellyMultiplier) float64 {
	if !fraction.Valid() || !isFinite(decimalOdds) || !isFinite(yourProbability) {
		return 0
	}

	b := decimalOdds - 1
	if b <= 0 {
		return 0
	}

	p := yourProbability
	q := 1 - p
	full := (b*p - q) / b

	f := math.Max(0, full) * float64(fraction)
	return math.Min(f, 1) // Never more than the whole bankroll
}

// StakeAmount converts a bankroll fraction into a currency amount rounded to cents
func StakeAmount(bankroll, fraction float64) decimal.Decimal {
	if !isFinite(bankroll) || !isFinite(fraction) || bankroll <= 0 || fraction <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(bankroll).Mul(decimal.NewFromFloat(fraction)).Round(2)
}

// TotalImplied sums the implied probabilities of the given prices
func TotalImplied(odds ...float64) float64 {
	total := 0.0
	for _, o := range odds {
		total += ImpliedProbability(o)
	}
	return total
}

// ArbitrageProfitPercent is the guaranteed return for a combined implied probability below 1
func ArbitrageProfitPercent(totalImplied float64) float64 {
	if !isFinite(totalImplied) || totalImplied <= 0 || totalImplied >= 1 {
		return 0
	}
	return (1/totalImplied - 1) * 100
}

// HoldPercent is the bookmaker margin of a two-way market priced at odds1/odds2
func HoldPercent(odds1, odds2 float64) float64 {
	return (TotalImplied(odds1, odds2) - 1) * 100
}

// SplitArbitrageStake distributes total across both legs so either outcome returns the same payout
func SplitArbitrageStake(total decimal.Decimal, odds1, odds2 float64) (models.StakePlan, bool) {
	if !isFinite(odds1) || !isFinite(odds2) || odds1 <= 0 || odds2 <= 0 || !total.IsPositive() {
		return models.StakePlan{}, false
	}

	one := decimal.NewFromInt(1)
	inv1 := one.Div(decimal.NewFromFloat(odds1))
	inv2 := one.Div(decimal.NewFromFloat(odds2))
	totalImplied := inv1.Add(inv2)
	if totalImplied.IsZero() {
		return models.StakePlan{}, false
	}

	stake1 := total.Mul(inv1).Div(totalImplied).Round(2)
	stake2 := total.Sub(stake1)
	payout := total.Div(totalImplied).Round(2)

	return models.StakePlan{
		TotalStake: total,
		Stake1:     stake1,
		Stake2:     stake2,
		Payout:     payout,
		Profit:     payout.Sub(total),
	}, true
}

// ToAmerican converts decimal odds to American odds
func ToAmerican(decimalOdds float64) (int, bool) {
	if !isFinite(decimalOdds) || decimalOdds <= 1 {
		return 0, false
	}
	if decimalOdds >= 2 {
		return int(math.Round((decimalOdds - 1) * 100)), true
	}
	return int(math.Round(-100 / (decimalOdds - 1))), true
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
