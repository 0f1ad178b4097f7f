package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNew tests collector registration
func TestNew(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	require.NotNil(t, m)

	m.FeedRequests.WithLabelValues("sportsbook", "ok").Inc()
	m.DroppedQuotes.Add(3)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "odds_scanner_feed_requests_total")
	assert.Contains(t, names, "odds_scanner_dropped_quotes_total")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FeedRequests.WithLabelValues("sportsbook", "ok")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.DroppedQuotes))
}

// TestNew_DoubleRegistration tests that one registry cannot hold two sets
func TestNew_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)

	assert.Panics(t, func() { New(reg) })
}

// TestNewNop tests independent collector sets
func TestNewNop(t *testing.T) {
	a := NewNop()
	b := NewNop()

	a.DroppedQuotes.Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.DroppedQuotes))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.DroppedQuotes))
}

// TestObserveOpportunities tests per-kind gauges
func TestObserveOpportunities(t *testing.T) {
	m := NewNop()

	m.ObserveOpportunities(4, 1, 2, 0)

	assert.Equal(t, 4.0, testutil.ToFloat64(m.Opportunities.WithLabelValues("value_bet")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Opportunities.WithLabelValues("arbitrage")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Opportunities.WithLabelValues("low_hold")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Opportunities.WithLabelValues("middle")))

	m.ObserveOpportunities(0, 0, 0, 3)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Opportunities.WithLabelValues("value_bet")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Opportunities.WithLabelValues("middle")))
}
