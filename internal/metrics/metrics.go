package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "odds_scanner"

// Metrics holds the service collectors
type Metrics struct {
	FeedRequests    *prometheus.CounterVec   // labels: feed, result
	FeedDuration    *prometheus.HistogramVec // labels: feed
	FeedEvents      *prometheus.GaugeVec     // labels: feed
	DroppedQuotes   prometheus.Counter
	Opportunities   *prometheus.GaugeVec // labels: kind
	RefreshDuration prometheus.Histogram
	FeedCache       *prometheus.CounterVec // labels: feed, result
	KafkaMessages   *prometheus.CounterVec // labels: result
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FeedRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_requests_total",
			Help:      "Feed fetches by feed and result (ok, auth, rate_limit, upstream).",
		}, []string{"feed", "result"}),
		FeedDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "feed_request_duration_seconds",
			Help:      "Feed fetch latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"feed"}),
		FeedEvents: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feed_events",
			Help:      "Events returned by the last fetch of each feed.",
		}, []string{"feed"}),
		DroppedQuotes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_quotes_total",
			Help:      "Malformed quotes discarded during aggregation.",
		}),
		Opportunities: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "opportunities",
			Help:      "Opportunities found by the last scan, by kind.",
		}, []string{"kind"}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      "End-to-end refresh latency.",
			Buckets:   prometheus.DefBuckets,
		}),
		FeedCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_cache_total",
			Help:      "Cached feed result lookups by feed and result (hit, miss, error).",
		}, []string{"feed", "result"}),
		KafkaMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_messages_total",
			Help:      "Consumed quote snapshot messages by result (ok, invalid, failed).",
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.FeedRequests,
		m.FeedDuration,
		m.FeedEvents,
		m.DroppedQuotes,
		m.Opportunities,
		m.RefreshDuration,
		m.FeedCache,
		m.KafkaMessages,
	)

	return m
}

// NewNop creates collectors that are not registered anywhere
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

// ObserveOpportunities records the list sizes of one scan
func (m *Metrics) ObserveOpportunities(valueBets, arbitrage, lowHold, middles int) {
	m.Opportunities.WithLabelValues("value_bet").Set(float64(valueBets))
	m.Opportunities.WithLabelValues("arbitrage").Set(float64(arbitrage))
	m.Opportunities.WithLabelValues("low_hold").Set(float64(lowHold))
	m.Opportunities.WithLabelValues("middle").Set(float64(middles))
}
