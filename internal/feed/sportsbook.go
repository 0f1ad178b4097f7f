package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cypherlabdev/odds-scanner-service/internal/models"
)

// SportsbookConfig holds The Odds API client configuration
type SportsbookConfig struct {
	BaseURL string        // e.g., "https://api.the-odds-api.com/v4"
	APIKey  string        // Empty disables the feed
	Regions string        // e.g., "us"
	Markets string        // e.g., "h2h,spreads,totals"
	Timeout time.Duration // e.g., 10 * time.Second
}

// SportsbookClient fetches decimal sportsbook odds from The Odds API v4
type SportsbookClient struct {
	config     SportsbookConfig
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewSportsbookClient creates a new sportsbook feed client
func NewSportsbookClient(config SportsbookConfig, logger zerolog.Logger) *SportsbookClient {
	return &SportsbookClient{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: logger.With().Str("component", "sportsbook_feed").Logger(),
	}
}

type oddsAPIOutcome struct {
	Name  string   `json:"name"`
	Price float64  `json:"price"`
	Point *float64 `json:"point,omitempty"`
}

type oddsAPIMarket struct {
	Key      string           `json:"key"`
	Outcomes []oddsAPIOutcome `json:"outcomes"`
}

type oddsAPIBookmaker struct {
	Key     string          `json:"key"`
	Title   string          `json:"title"`
	Markets []oddsAPIMarket `json:"markets"`
}

type oddsAPIEvent struct {
	ID           string             `json:"id"`
	SportKey     string             `json:"sport_key"`
	CommenceTime time.Time          `json:"commence_time"`
	HomeTeam     string             `json:"home_team"`
	AwayTeam     string             `json:"away_team"`
	Bookmakers   []oddsAPIBookmaker `json:"bookmakers"`
}

// Enabled reports whether an API key is configured
func (c *SportsbookClient) Enabled() bool {
	return c.config.APIKey != ""
}

// FetchEvents returns the normalized events of one sport.
// Without an API key the feed contributes nothing and reports no error.
func (c *SportsbookClient) FetchEvents(ctx context.Context, sport string) ([]models.Event, error) {
	if !c.Enabled() {
		c.logger.Debug().Str("sport", sport).Msg("no api key configured, skipping sportsbook feed")
		return nil, nil
	}

	params := url.Values{}
	params.Set("regions", c.config.Regions)
	params.Set("markets", c.config.Markets)
	params.Set("oddsFormat", "decimal")
	params.Set("apiKey", c.config.APIKey)

	rawURL := fmt.Sprintf("%s/sports/%s/odds/?%s",
		strings.TrimRight(c.config.BaseURL, "/"), url.PathEscape(sport), params.Encode())

	body, err := doGet(ctx, c.httpClient, NameSportsbook, rawURL)
	if err != nil {
		return nil, err
	}

	var apiEvents []oddsAPIEvent
	if err := json.Unmarshal(body, &apiEvents); err != nil {
		return nil, transportError(NameSportsbook, fmt.Errorf("decode events: %w", err))
	}

	events := make([]models.Event, 0, len(apiEvents))
	for i := range apiEvents {
		events = append(events, c.normalizeEvent(&apiEvents[i]))
	}

	c.logger.Debug().
		Str("sport", sport).
		Int("event_count", len(events)).
		Msg("fetched sportsbook events")

	return events, nil
}

func (c *SportsbookClient) normalizeEvent(e *oddsAPIEvent) models.Event {
	event := models.Event{
		ID:           e.ID,
		Name:         e.AwayTeam + " @ " + e.HomeTeam,
		Sport:        e.SportKey,
		CommenceTime: e.CommenceTime,
	}

	for _, book := range e.Bookmakers {
		bookName := book.Title
		if bookName == "" {
			bookName = book.Key
		}
		for _, market := range book.Markets {
			marketType, ok := marketTypeOf(market.Key)
			if !ok {
				c.logger.Debug().Str("event_id", e.ID).Str("market", market.Key).Msg("skipping unsupported market")
				continue
			}
			for _, o := range market.Outcomes {
				event.Quotes = append(event.Quotes, models.NewSportsbookQuote(o.Name, bookName, marketType, o.Price, o.Point))
			}
		}
	}

	return event
}

func marketTypeOf(key string) (models.MarketType, bool) {
	switch key {
	case "h2h":
		return models.MarketHeadToHead, true
	case "spreads":
		return models.MarketSpread, true
	case "totals":
		return models.MarketTotal, true
	default:
		return "", false
	}
}
