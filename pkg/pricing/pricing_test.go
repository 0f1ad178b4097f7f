package pricing

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherlabdev/odds-scanner-service/internal/models"
)

func quotesAt(odds ...float64) []models.Quote {
	quotes := make([]models.Quote, 0, len(odds))
	for i, o := range odds {
		quotes = append(quotes, models.NewSportsbookQuote("Team A", string(rune('A'+i)), models.MarketHeadToHead, o, nil))
	}
	return quotes
}

// TestImpliedProbability tests odds to probability conversion
func TestImpliedProbability(t *testing.T) {
	tests := []struct {
		name     string
		odds     float64
		expected float64
	}{
		{"Even odds", 2.00, 0.50},
		{"Favorite", 1.50, 0.6667},
		{"Underdog", 4.00, 0.25},
		{"Long shot", 10.00, 0.10},
		{"Zero odds", 0, 0},
		{"Negative odds", -2, 0},
		{"NaN odds", math.NaN(), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, ImpliedProbability(tt.odds), 0.0001)
		})
	}
}

// TestDecimalOdds tests probability to odds conversion
func TestDecimalOdds(t *testing.T) {
	tests := []struct {
		name        string
		probability float64
		expected    float64
	}{
		{"50%", 0.50, 2.00},
		{"40%", 0.40, 2.50},
		{"25%", 0.25, 4.00},
		{"Certain", 1.0, 1.0},
		{"Zero probability", 0, 1.0},
		{"Negative probability", -0.1, 1.0},
		{"Over 100%", 1.5, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, DecimalOdds(tt.probability), 0.0001)
		})
	}
}

// TestOddsProbabilityRoundTrip tests that conversions are inverse operations
func TestOddsProbabilityRoundTrip(t *testing.T) {
	for _, odds := range []float64{1.01, 1.5, 1.91, 2.0, 3.75, 10, 101} {
		assert.InDelta(t, odds, DecimalOdds(ImpliedProbability(odds)), 1e-9, "odds %v", odds)
	}
}

// TestFairImpliedProbability_UseBest tests the best-price baseline
func TestFairImpliedProbability_UseBest(t *testing.T) {
	tests := []struct {
		name string
		odds []float64
	}{
		{"Single offer", []float64{2.0}},
		{"Best first", []float64{2.2, 2.0, 1.9}},
		{"Best last", []float64{1.8, 1.9, 2.05}},
		{"Identical", []float64{1.91, 1.91}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			best := 0.0
			for _, o := range tt.odds {
				best = math.Max(best, o)
			}
			assert.InDelta(t, 1/best, FairImpliedProbability(quotesAt(tt.odds...), true), 1e-12)
		})
	}
}

// TestFairImpliedProbability_Mean tests the mean implied probability baseline
func TestFairImpliedProbability_Mean(t *testing.T) {
	fair := FairImpliedProbability(quotesAt(2.0, 4.0), false)
	assert.InDelta(t, (0.5+0.25)/2, fair, 1e-12)
}

// TestFairImpliedProbability_Empty tests the neutral fallback
func TestFairImpliedProbability_Empty(t *testing.T) {
	assert.Equal(t, 0.5, FairImpliedProbability(nil, true))
	assert.Equal(t, 0.5, FairImpliedProbability(nil, false))
	assert.Equal(t, 0.5, FairImpliedProbability([]models.Quote{}, true))

	degenerate := []models.Quote{{Outcome: "X", DecimalOdds: 0}}
	assert.Equal(t, 0.5, FairImpliedProbability(degenerate, true))
	assert.Equal(t, 0.5, FairImpliedProbability(degenerate, false))
}

// TestFairProbability tests baseline selection
func TestFairProbability(t *testing.T) {
	offers := quotesAt(2.0, 4.0)
	assert.InDelta(t, 0.25, FairProbability(offers, models.FairBaselineBest), 1e-12)
	assert.InDelta(t, 0.375, FairProbability(offers, models.FairBaselineMean), 1e-12)
	assert.InDelta(t, 0.25, FairProbability(offers, ""), 1e-12, "unset baseline falls back to best")
}

// TestIsValueBet tests the inclusive edge threshold
func TestIsValueBet(t *testing.T) {
	tests := []struct {
		name     string
		offered  float64
		fair     float64
		minEdge  float64
		expected bool
	}{
		{"Clear value", 0.40, 0.45, DefaultMinEdge, true},
		{"Exact boundary", 0.40, 0.41, DefaultMinEdge, true},
		{"Below boundary", 0.40, 0.4099, DefaultMinEdge, false},
		{"Negative edge", 0.45, 0.40, DefaultMinEdge, false},
		{"Zero edge", 0.50, 0.50, DefaultMinEdge, false},
		{"Zero min edge", 0.50, 0.50, 0, true},
		{"NaN fair", 0.40, math.NaN(), DefaultMinEdge, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsValueBet(tt.offered, tt.fair, tt.minEdge))
		})
	}
}

// TestKellyStake tests Kelly sizing
func TestKellyStake(t *testing.T) {
	tests := []struct {
		name     string
		odds     float64
		prob     float64
		fraction models.KellyMultiplier
		expected float64
	}{
		{"Full Kelly", 2.0, 0.6, models.KellyFull, 0.2},
		{"Half Kelly", 2.0, 0.6, models.KellyHalf, 0.1},
		{"Quarter Kelly", 2.0, 0.6, models.KellyQuarter, 0.05},
		{"Underdog edge", 3.0, 0.4, models.KellyFull, 0.1},
		{"No edge", 2.0, 0.5, models.KellyFull, 0},
		{"Negative edge", 2.0, 0.3, models.KellyFull, 0},
		{"Odds of one", 1.0, 0.9, models.KellyFull, 0},
		{"Odds below one", 0.5, 0.9, models.KellyFull, 0},
		{"Certain win", 2.0, 1.0, models.KellyFull, 1},
		{"Unsupported fraction", 2.0, 0.6, models.KellyMultiplier(0.33), 0},
		{"NaN probability", 2.0, math.NaN(), models.KellyFull, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, KellyStake(tt.odds, tt.prob, tt.fraction), 1e-9)
		})
	}
}

// TestKellyStake_Bounds tests that the stake never leaves [0, 1] and is zero without edge
func TestKellyStake_Bounds(t *testing.T) {
	fractions := []models.KellyMultiplier{models.KellyFull, models.KellyHalf, models.KellyQuarter}

	for d := 1.01; d <= 20; d += 0.37 {
		for p := 0.0; p <= 1.0; p += 0.05 {
			for _, f := range fractions {
				got := KellyStake(d, p, f)
				assert.GreaterOrEqual(t, got, 0.0)
				assert.LessOrEqual(t, got, 1.0)
				if (d-1)*p-(1-p) <= 0 {
					assert.Equal(t, 0.0, got, "d=%v p=%v f=%v", d, p, f)
				}
			}
		}
	}
}

// TestStakeAmount tests bankroll stake rounding
func TestStakeAmount(t *testing.T) {
	assert.True(t, decimal.RequireFromString("33.33").Equal(StakeAmount(1000, 0.033333)))
	assert.True(t, decimal.RequireFromString("200").Equal(StakeAmount(1000, 0.2)))
	assert.True(t, StakeAmount(0, 0.2).IsZero())
	assert.True(t, StakeAmount(1000, 0).IsZero())
	assert.True(t, StakeAmount(math.Inf(1), 0.2).IsZero())
}

// TestArbitrageProfitPercent tests guaranteed return math
func TestArbitrageProfitPercent(t *testing.T) {
	total := TotalImplied(2.10, 2.10)
	assert.InDelta(t, 0.95238, total, 0.00001)
	assert.InDelta(t, 5.0, ArbitrageProfitPercent(total), 0.0001)

	assert.Equal(t, 0.0, ArbitrageProfitPercent(1.0))
	assert.Equal(t, 0.0, ArbitrageProfitPercent(1.05))
	assert.Equal(t, 0.0, ArbitrageProfitPercent(0))
}

// TestHoldPercent tests bookmaker margin math
func TestHoldPercent(t *testing.T) {
	assert.InDelta(t, 2.564, HoldPercent(1.95, 1.95), 0.001)
	assert.InDelta(t, 4.762, HoldPercent(1.91, 1.91), 0.001)
	assert.InDelta(t, -4.762, HoldPercent(2.10, 2.10), 0.001)
}

// TestSplitArbitrageStake tests the equal-payout stake split
func TestSplitArbitrageStake(t *testing.T) {
	t.Run("Symmetric", func(t *testing.T) {
		plan, ok := SplitArbitrageStake(decimal.NewFromInt(100), 2.10, 2.10)
		require.True(t, ok)

		assert.True(t, decimal.NewFromInt(50).Equal(plan.Stake1))
		assert.True(t, decimal.NewFromInt(50).Equal(plan.Stake2))
		assert.True(t, decimal.NewFromInt(105).Equal(plan.Payout))
		assert.True(t, decimal.NewFromInt(5).Equal(plan.Profit))
	})

	t.Run("Asymmetric", func(t *testing.T) {
		total := decimal.NewFromInt(100)
		plan, ok := SplitArbitrageStake(total, 1.5, 4.0)
		require.True(t, ok)

		// 1/1.5 + 1/4 = 0.916666...
		assert.True(t, total.Equal(plan.Stake1.Add(plan.Stake2)))
		assert.True(t, decimal.RequireFromString("72.73").Equal(plan.Stake1))
		assert.True(t, decimal.RequireFromString("27.27").Equal(plan.Stake2))
		assert.True(t, decimal.RequireFromString("109.09").Equal(plan.Payout))
		assert.True(t, plan.Profit.IsPositive())
	})

	t.Run("Invalid input", func(t *testing.T) {
		_, ok := SplitArbitrageStake(decimal.NewFromInt(100), 0, 2.0)
		assert.False(t, ok)

		_, ok = SplitArbitrageStake(decimal.Zero, 2.0, 2.0)
		assert.False(t, ok)

		_, ok = SplitArbitrageStake(decimal.NewFromInt(100), math.NaN(), 2.0)
		assert.False(t, ok)
	})
}

// TestToAmerican tests decimal to American conversion
func TestToAmerican(t *testing.T) {
	tests := []struct {
		name     string
		odds     float64
		expected int
		ok       bool
	}{
		{"Even money", 2.0, 100, true},
		{"Underdog", 2.5, 150, true},
		{"Favorite", 1.5, -200, true},
		{"Standard juice", 1.909, -110, true},
		{"Odds of one", 1.0, 0, false},
		{"Below one", 0.5, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToAmerican(tt.odds)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}
