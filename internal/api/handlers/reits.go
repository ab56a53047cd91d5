package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/wonny/jreit-finder/internal/contracts"
	"github.com/wonny/jreit-finder/internal/presenter"
	"github.com/wonny/jreit-finder/internal/selection"
	"github.com/wonny/jreit-finder/internal/weightconfig"
	"github.com/wonny/jreit-finder/pkg/logger"
	"github.com/wonny/jreit-finder/pkg/redis"
)

// MaxTopN is the upper bound of top_n accepted by the API
const MaxTopN = 20

// EntityProvider serves the current J-REIT table
type EntityProvider interface {
	Entities(ctx context.Context) ([]contracts.Entity, error)
	Refresh(ctx context.Context) ([]contracts.Entity, error)
}

// ReitHandler handles J-REIT table and ranking endpoints
// ⭐ SSOT: J-REIT API 핸들러는 이 구조체에서만
type ReitHandler struct {
	provider       EntityProvider
	defaultTopN    int
	refreshLimiter *redis.RateLimiter
	logger         *logger.Logger
}

// NewReitHandler creates a new J-REIT handler
func NewReitHandler(provider EntityProvider, defaultTopN int, log *logger.Logger) *ReitHandler {
	if defaultTopN < 1 || defaultTopN > MaxTopN {
		defaultTopN = 5
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ReitHandler{
		provider:    provider,
		defaultTopN: defaultTopN,
		logger:      log,
	}
}

// WithRefreshLimiter caps forced refetches so the source site is not hammered
func (h *ReitHandler) WithRefreshLimiter(limiter *redis.RateLimiter) *ReitHandler {
	h.refreshLimiter = limiter
	return h
}

// ListResponse is the full current table
type ListResponse struct {
	Count int                `json:"count"`
	Reits []contracts.Entity `json:"reits"`
}

// RankingResponse is one selection run
type RankingResponse struct {
	Weights selection.ScoringWeights `json:"weights"`
	TopN    int                      `json:"top_n"`
	Count   int                      `json:"count"`
	Ranking []contracts.ScoredEntity `json:"ranking"`
	Basic   presenter.Table          `json:"basic"`
	Scores  presenter.Table          `json:"scores"`
}

// RefreshResponse reports a forced refetch
type RefreshResponse struct {
	Status      string    `json:"status"`
	Count       int       `json:"count"`
	RefreshedAt time.Time `json:"refreshed_at"`
}

// requestError carries the HTTP status a ranking failure maps to
type requestError struct {
	status  int
	message string
}

func (e *requestError) Error() string {
	return e.message
}

// ListReits returns the full current table
// GET /api/reits
func (h *ReitHandler) ListReits(w http.ResponseWriter, r *http.Request) {
	table, err := h.provider.Entities(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to get J-REIT table")
		respondError(w, h.logger, http.StatusBadGateway, "Failed to retrieve J-REIT table")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, ListResponse{Count: len(table), Reits: table})
}

// GetRanking scores the table with the requested weights
// GET /api/reits/ranking?top_n=5&distribution_yield=0.25&...
func (h *ReitHandler) GetRanking(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	topN := h.defaultTopN
	if raw := q.Get("top_n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, h.logger, http.StatusBadRequest, fmt.Sprintf("invalid top_n %q", raw))
			return
		}
		topN = n
	}

	weights, err := weightconfig.FromQuery(q)
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.rank(r.Context(), weights, topN)
	if err != nil {
		var reqErr *requestError
		if errors.As(err, &reqErr) {
			respondError(w, h.logger, reqErr.status, reqErr.message)
			return
		}
		respondError(w, h.logger, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, h.logger, http.StatusOK, resp)
}

// GetDefaultWeights returns the default scoring weights
// GET /api/weights/default
func (h *ReitHandler) GetDefaultWeights(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.logger, http.StatusOK, selection.DefaultWeights())
}

// Refresh drops the cached table and refetches it
// POST /api/reits/refresh
func (h *ReitHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	allowed, _, err := h.refreshLimiter.Allow(r.Context(), redis.RefreshRateLimit)
	if err != nil {
		h.logger.WithError(err).Warn("Refresh rate limit check failed")
	} else if !allowed {
		w.Header().Set("Retry-After", strconv.Itoa(int(redis.RefreshRateLimit.Window.Seconds())))
		respondError(w, h.logger, http.StatusTooManyRequests, "Too many refresh requests")
		return
	}

	table, err := h.provider.Refresh(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to refresh J-REIT table")
		respondError(w, h.logger, http.StatusBadGateway, "Failed to refresh J-REIT table")
		return
	}

	h.logger.WithField("count", len(table)).Info("J-REIT table refreshed via API")

	respondJSON(w, h.logger, http.StatusOK, RefreshResponse{
		Status:      "success",
		Count:       len(table),
		RefreshedAt: time.Now(),
	})
}

// rank validates the request, loads the table and runs the selection
func (h *ReitHandler) rank(ctx context.Context, weights selection.ScoringWeights, topN int) (*RankingResponse, error) {
	if topN < 1 || topN > MaxTopN {
		return nil, &requestError{http.StatusBadRequest, fmt.Sprintf("top_n must be between 1 and %d, got %d", MaxTopN, topN)}
	}

	if err := weightconfig.Validate(weights); err != nil {
		return nil, &requestError{http.StatusBadRequest, err.Error()}
	}

	table, err := h.provider.Entities(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get J-REIT table")
		return nil, &requestError{http.StatusBadGateway, "Failed to retrieve J-REIT table"}
	}

	ranked, err := selection.Select(table, weights, topN)
	if err != nil {
		var schemaErr *contracts.SchemaError
		if errors.As(err, &schemaErr) {
			h.logger.WithError(err).Error("J-REIT table failed validation")
			return nil, &requestError{http.StatusBadGateway, err.Error()}
		}
		return nil, err
	}

	return &RankingResponse{
		Weights: weights,
		TopN:    topN,
		Count:   len(ranked),
		Ranking: ranked,
		Basic:   presenter.BasicRows(ranked),
		Scores:  presenter.ScoreRows(ranked),
	}, nil
}

// Helper functions

// respondJSON encodes before writing the status so an unencodable payload
// becomes a logged 500 instead of a truncated 200
func respondJSON(w http.ResponseWriter, log *logger.Logger, status int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		log.WithError(err).WithField("status", status).Error("Failed to encode response")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to encode response"}` + "\n"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		log.WithError(err).Debug("Failed to write response")
	}
}

func respondError(w http.ResponseWriter, log *logger.Logger, status int, message string) {
	respondJSON(w, log, status, map[string]string{
		"error": message,
	})
}
