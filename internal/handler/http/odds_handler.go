package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/odds-scanner-service/internal/cache"
	"github.com/cypherlabdev/odds-scanner-service/internal/feed"
	"github.com/cypherlabdev/odds-scanner-service/internal/models"
	"github.com/cypherlabdev/odds-scanner-service/internal/service"
	"github.com/cypherlabdev/odds-scanner-service/pkg/pricing"
)

// OddsHandlerConfig holds request defaults
type OddsHandlerConfig struct {
	DefaultSport   string          // Used when the sport query parameter is absent
	ArbitrageStake decimal.Decimal // Default total stake for the arbitrage calculator
}

// OddsHandler handles HTTP requests for snapshots, opportunities and calculators
type OddsHandler struct {
	service *service.OddsService
	config  OddsHandlerConfig
	logger  zerolog.Logger
}

// NewOddsHandler creates a new odds HTTP handler
func NewOddsHandler(service *service.OddsService, config OddsHandlerConfig, logger zerolog.Logger) *OddsHandler {
	return &OddsHandler{
		service: service,
		config:  config,
		logger:  logger.With().Str("component", "odds_handler").Logger(),
	}
}

// RegisterRoutes registers HTTP routes with the provided router
func (h *OddsHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/odds", h.handleGetOdds)
		r.Get("/opportunities", h.handleGetOpportunities)
		r.Get("/snapshots/{id}", h.handleGetSnapshot)
		r.Get("/sports", h.handleGetSports)

		r.Get("/calc/kelly", h.handleCalcKelly)
		r.Get("/calc/arbitrage", h.handleCalcArbitrage)
		r.Get("/calc/odds", h.handleCalcOdds)
	})
}

// FeedErrorResponse is returned when the sportsbook feed fails
type FeedErrorResponse struct {
	Error    string `json:"error"`
	Details  string `json:"details"`
	Category string `json:"category"`
	Partial  any    `json:"partial,omitempty"`
}

// OpportunitiesResponse is the opportunity lists of one snapshot
type OpportunitiesResponse struct {
	SnapshotID  uuid.UUID `json:"snapshot_id"`
	Sport       string    `json:"sport"`
	GeneratedAt time.Time `json:"generated_at"`
	models.Opportunities
}

func toOpportunitiesResponse(s *models.Snapshot) *OpportunitiesResponse {
	return &OpportunitiesResponse{
		SnapshotID:    s.ID,
		Sport:         s.Sport,
		GeneratedAt:   s.GeneratedAt,
		Opportunities: s.Opportunities,
	}
}

// handleGetOdds handles GET /api/v1/odds?sport=&bankroll=&kelly=&prob=
func (h *OddsHandler) handleGetOdds(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseSnapshotRequest(r)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	snapshot, err := h.service.GetSnapshot(r.Context(), req)
	if err != nil {
		// A nil *Snapshot inside an interface is not omitted by omitempty
		var partial any
		if snapshot != nil {
			partial = snapshot
		}
		h.feedErrorResponse(w, req, err, partial)
		return
	}

	h.jsonResponse(w, http.StatusOK, snapshot)
}

// handleGetOpportunities handles GET /api/v1/opportunities?sport=&bankroll=&kelly=&prob=
func (h *OddsHandler) handleGetOpportunities(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseSnapshotRequest(r)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	snapshot, err := h.service.GetSnapshot(r.Context(), req)
	if err != nil {
		// A nil *Snapshot inside an interface is not omitted by omitempty
		var partial any
		if snapshot != nil {
			partial = toOpportunitiesResponse(snapshot)
		}
		h.feedErrorResponse(w, req, err, partial)
		return
	}

	h.jsonResponse(w, http.StatusOK, toOpportunitiesResponse(snapshot))
}

// handleGetSnapshot handles GET /api/v1/snapshots/{id}
func (h *OddsHandler) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "invalid snapshot id")
		return
	}

	snapshot, err := h.service.GetSnapshotByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			h.errorResponse(w, http.StatusNotFound, "snapshot not found")
			return
		}
		h.logger.Error().
			Err(err).
			Str("snapshot_id", id.String()).
			Msg("failed to retrieve snapshot")
		h.errorResponse(w, http.StatusInternalServerError, "failed to retrieve snapshot")
		return
	}

	h.jsonResponse(w, http.StatusOK, snapshot)
}

// handleGetSports handles GET /api/v1/sports
func (h *OddsHandler) handleGetSports(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"default": h.config.DefaultSport,
		"sports":  models.Sports,
	})
}

// KellyResponse is the output of the Kelly calculator
type KellyResponse struct {
	Odds          float64          `json:"odds"`
	Probability   float64          `json:"probability"`
	Multiplier    float64          `json:"multiplier"`
	EdgePct       float64          `json:"edge_pct"`
	KellyFraction float64          `json:"kelly_fraction"`
	KellyPct      float64          `json:"kelly_pct"`
	StakeAmount   *decimal.Decimal `json:"stake_amount,omitempty"`
}

// handleCalcKelly handles GET /api/v1/calc/kelly?odds=&prob=&fraction=&bankroll=
func (h *OddsHandler) handleCalcKelly(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	odds, err := requiredFloat(q.Get("odds"), "odds")
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if odds <= 1 {
		h.errorResponse(w, http.StatusBadRequest, "odds must be greater than 1")
		return
	}

	prob, err := requiredFloat(q.Get("prob"), "prob")
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if prob <= 0 || prob >= 1 {
		h.errorResponse(w, http.StatusBadRequest, "prob must be between 0 and 1 (exclusive)")
		return
	}

	multiplier := models.KellyFull
	if raw := q.Get("fraction"); raw != "" {
		multiplier, err = models.ParseKellyMultiplier(raw)
		if err != nil {
			h.errorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	bankroll, err := optionalFloat(q.Get("bankroll"), "bankroll")
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if bankroll < 0 {
		h.errorResponse(w, http.StatusBadRequest, "bankroll must not be negative")
		return
	}

	fraction := pricing.KellyStake(odds, prob, multiplier)
	resp := KellyResponse{
		Odds:          odds,
		Probability:   prob,
		Multiplier:    float64(multiplier),
		EdgePct:       (prob - pricing.ImpliedProbability(odds)) * 100,
		KellyFraction: fraction,
		KellyPct:      fraction * 100,
	}
	if bankroll > 0 {
		amount := pricing.StakeAmount(bankroll, fraction)
		resp.StakeAmount = &amount
	}

	h.jsonResponse(w, http.StatusOK, resp)
}

// ArbitrageCalcResponse is the output of the arbitrage calculator
type ArbitrageCalcResponse struct {
	Odds1        float64           `json:"odds1"`
	Odds2        float64           `json:"odds2"`
	TotalImplied float64           `json:"total_implied"`
	IsArbitrage  bool              `json:"is_arbitrage"`
	ProfitPct    float64           `json:"profit_pct"`
	HoldPct      float64           `json:"hold_pct"`
	Stakes       *models.StakePlan `json:"stakes,omitempty"`
}

// handleCalcArbitrage handles GET /api/v1/calc/arbitrage?odds1=&odds2=&stake=
func (h *OddsHandler) handleCalcArbitrage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	odds1, err := requiredFloat(q.Get("odds1"), "odds1")
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	odds2, err := requiredFloat(q.Get("odds2"), "odds2")
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if odds1 <= 1 || odds2 <= 1 {
		h.errorResponse(w, http.StatusBadRequest, "odds1 and odds2 must be greater than 1")
		return
	}

	stake := h.config.ArbitrageStake
	if raw := q.Get("stake"); raw != "" {
		stake, err = decimal.NewFromString(raw)
		if err != nil || stake.IsNegative() {
			h.errorResponse(w, http.StatusBadRequest, "stake must be a non-negative number")
			return
		}
	}

	total := pricing.TotalImplied(odds1, odds2)
	resp := ArbitrageCalcResponse{
		Odds1:        odds1,
		Odds2:        odds2,
		TotalImplied: total,
		IsArbitrage:  total < 1,
		ProfitPct:    pricing.ArbitrageProfitPercent(total),
		HoldPct:      pricing.HoldPercent(odds1, odds2),
	}
	if plan, ok := pricing.SplitArbitrageStake(stake, odds1, odds2); ok {
		resp.Stakes = &plan
	}

	h.jsonResponse(w, http.StatusOK, resp)
}

// OddsCalcResponse is the output of the odds converter
type OddsCalcResponse struct {
	Decimal    float64 `json:"decimal"`
	ImpliedPct float64 `json:"implied_pct"`
	American   int     `json:"american"`
}

// handleCalcOdds handles GET /api/v1/calc/odds?decimal=
func (h *OddsHandler) handleCalcOdds(w http.ResponseWriter, r *http.Request) {
	d, err := requiredFloat(r.URL.Query().Get("decimal"), "decimal")
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	american, ok := pricing.ToAmerican(d)
	if !ok {
		h.errorResponse(w, http.StatusBadRequest, "decimal must be greater than 1")
		return
	}

	h.jsonResponse(w, http.StatusOK, OddsCalcResponse{
		Decimal:    d,
		ImpliedPct: pricing.ImpliedProbability(d) * 100,
		American:   american,
	})
}

// parseSnapshotRequest reads sport and the optional sizing inputs from the query string
func (h *OddsHandler) parseSnapshotRequest(r *http.Request) (models.SnapshotRequest, error) {
	q := r.URL.Query()

	req := models.SnapshotRequest{Sport: q.Get("sport")}
	if req.Sport == "" {
		req.Sport = h.config.DefaultSport
	}
	if req.Sport == "" {
		return req, errors.New("sport is required")
	}

	bankroll, err := optionalFloat(q.Get("bankroll"), "bankroll")
	if err != nil {
		return req, err
	}
	if bankroll < 0 {
		return req, errors.New("bankroll must not be negative")
	}
	req.Sizing.Bankroll = bankroll

	if raw := q.Get("kelly"); raw != "" {
		kelly, err := models.ParseKellyMultiplier(raw)
		if err != nil {
			return req, err
		}
		req.Sizing.Kelly = kelly
	}

	if raw := q.Get("prob"); raw != "" {
		prob, err := requiredFloat(raw, "prob")
		if err != nil {
			return req, err
		}
		if prob <= 0 || prob >= 1 {
			return req, errors.New("prob must be between 0 and 1 (exclusive)")
		}
		req.Sizing.YourProbability = &prob
	}

	return req, nil
}

func requiredFloat(raw, name string) (float64, error) {
	if raw == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	return f, nil
}

func optionalFloat(raw, name string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	return requiredFloat(raw, name)
}

// feedErrorResponse maps a sportsbook feed failure to its status. partial is nil or the result built without the sportsbook.
func (h *OddsHandler) feedErrorResponse(w http.ResponseWriter, req models.SnapshotRequest, err error, partial any) {
	status := feed.StatusOf(err)

	h.logger.Warn().
		Err(err).
		Str("sport", req.Sport).
		Int("status", status).
		Msg("serving sportsbook feed failure")

	h.jsonResponse(w, status, FeedErrorResponse{
		Error:    "sportsbook feed failed",
		Details:  feed.MessageOf(err),
		Category: string(feed.CategoryOf(err)),
		Partial:  partial,
	})
}

// jsonResponse writes a JSON response
func (h *OddsHandler) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// errorResponse writes a JSON error response
func (h *OddsHandler) errorResponse(w http.ResponseWriter, status int, message string) {
	h.jsonResponse(w, status, map[string]string{
		"error": message,
	})
}
