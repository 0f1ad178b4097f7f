package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cypherlabdev/odds-scanner-service/internal/models"
)

const (
	polymarketBook  = "Polymarket"
	polymarketSport = "polymarket"
)

// PolymarketConfig holds the Gamma API client configuration
type PolymarketConfig struct {
	BaseURL  string        // e.g., "https://gamma-api.polymarket.com"
	Limit    int           // Events per request
	SeriesID int           // Zero means no series filter
	Timeout  time.Duration // e.g., 10 * time.Second
}

// PolymarketClient fetches active prediction markets from the Polymarket Gamma API
type PolymarketClient struct {
	config     PolymarketConfig
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewPolymarketClient creates a new prediction-market feed client
func NewPolymarketClient(config PolymarketConfig, logger zerolog.Logger) *PolymarketClient {
	if config.Limit <= 0 {
		config.Limit = 20
	}
	return &PolymarketClient{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: logger.With().Str("component", "polymarket_feed").Logger(),
	}
}

// stringList decodes either a JSON array or a JSON-encoded array inside a string,
// e.g. ["Yes","No"] or "[\"Yes\",\"No\"]". Numeric elements are kept as text.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = nil
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var encoded string
		if err := json.Unmarshal(data, &encoded); err != nil {
			return err
		}
		if strings.TrimSpace(encoded) == "" {
			*l = nil
			return nil
		}
		data = []byte(encoded)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make([]string, 0, len(raw))
	for _, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			out = append(out, s)
			continue
		}
		var n json.Number
		if err := json.Unmarshal(r, &n); err != nil {
			return fmt.Errorf("unsupported list element %s", string(r))
		}
		out = append(out, n.String())
	}
	*l = out
	return nil
}

type gammaMarket struct {
	ID            string     `json:"id"`
	Question      string     `json:"question"`
	Outcomes      stringList `json:"outcomes"`
	OutcomePrices stringList `json:"outcomePrices"`
}

// gammaEvent keeps markets raw so one bad market does not fail the batch
type gammaEvent struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	StartDate string            `json:"startDate"`
	Markets   []json.RawMessage `json:"markets"`
}

// FetchEvents returns one event per active Gamma market with at least two priced outcomes
func (c *PolymarketClient) FetchEvents(ctx context.Context) ([]models.Event, error) {
	params := url.Values{}
	params.Set("active", "true")
	params.Set("closed", "false")
	params.Set("limit", strconv.Itoa(c.config.Limit))
	if c.config.SeriesID > 0 {
		params.Set("series_id", strconv.Itoa(c.config.SeriesID))
	}

	rawURL := strings.TrimRight(c.config.BaseURL, "/") + "/events?" + params.Encode()

	body, err := doGet(ctx, c.httpClient, NamePolymarket, rawURL)
	if err != nil {
		return nil, err
	}

	var apiEvents []gammaEvent
	if err := json.Unmarshal(body, &apiEvents); err != nil {
		return nil, transportError(NamePolymarket, fmt.Errorf("decode events: %w", err))
	}

	events := make([]models.Event, 0, len(apiEvents))
	dropped := 0
	for i := range apiEvents {
		ev := &apiEvents[i]
		commence, _ := time.Parse(time.RFC3339, ev.StartDate)

		for _, rawMarket := range ev.Markets {
			var m gammaMarket
			if err := json.Unmarshal(rawMarket, &m); err != nil {
				dropped++
				c.logger.Debug().Err(err).Str("event_id", ev.ID).Msg("dropping unparseable market")
				continue
			}

			quotes := marketQuotes(&m)
			if len(quotes) < 2 {
				dropped++
				c.logger.Debug().Str("event_id", ev.ID).Str("market_id", m.ID).Msg("dropping market with fewer than two priced outcomes")
				continue
			}

			events = append(events, models.Event{
				ID:           ev.ID + "-" + m.ID,
				Name:         ev.Title,
				Sport:        polymarketSport,
				CommenceTime: commence,
				Quotes:       quotes,
			})
		}
	}

	c.logger.Debug().
		Int("event_count", len(events)).
		Int("dropped_markets", dropped).
		Msg("fetched polymarket events")

	return events, nil
}

// marketQuotes pairs outcome names with prices, keeping only probabilities in (0,1)
func marketQuotes(m *gammaMarket) []models.Quote {
	quotes := make([]models.Quote, 0, len(m.Outcomes))
	for i, name := range m.Outcomes {
		if i >= len(m.OutcomePrices) || name == "" {
			continue
		}
		prob, err := strconv.ParseFloat(strings.TrimSpace(m.OutcomePrices[i]), 64)
		if err != nil || !(prob > 0 && prob < 1) {
			continue
		}
		quotes = append(quotes, models.NewPredictionQuote(name, polymarketBook, prob))
	}
	return quotes
}
