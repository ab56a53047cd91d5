package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/wonny/jreit-finder/pkg/database"
	"github.com/wonny/jreit-finder/pkg/logger"
)

// SnapshotDB is the optional snapshot database (pkg/database.DB)
type SnapshotDB interface {
	HealthCheck(ctx context.Context) (*database.HealthStatus, error)
}

// CachePinger is the optional redis cache (pkg/redis.Client)
type CachePinger interface {
	Enabled() bool
	Ping(ctx context.Context) error
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status    string                 `json:"status"` // "ok" or "degraded"
	Service   string                 `json:"service"`
	Uptime    string                 `json:"uptime"`
	Cache     string                 `json:"cache"`
	Snapshots string                 `json:"snapshots"`
	Database  *database.HealthStatus `json:"database,omitempty"`
}

// HealthHandler reports the state of the optional collaborators.
// Scoring needs neither redis nor postgres, so a failing one only degrades the status.
type HealthHandler struct {
	db        SnapshotDB
	cache     CachePinger
	startedAt time.Time
	logger    *logger.Logger
}

// NewHealthHandler creates a health handler; db and cache may be nil
func NewHealthHandler(db SnapshotDB, cache CachePinger, log *logger.Logger) *HealthHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &HealthHandler{db: db, cache: cache, startedAt: time.Now(), logger: log}
}

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:    "ok",
		Service:   "jreit-finder-api",
		Uptime:    time.Since(h.startedAt).Truncate(time.Second).String(),
		Cache:     "disabled",
		Snapshots: "disabled",
	}

	if h.cache != nil && h.cache.Enabled() {
		resp.Cache = "ok"
		if err := h.cache.Ping(ctx); err != nil {
			resp.Cache = err.Error()
			resp.Status = "degraded"
		}
	}

	if h.db != nil {
		status, err := h.db.HealthCheck(ctx)
		resp.Database = status
		resp.Snapshots = "ok"
		if err != nil {
			resp.Snapshots = err.Error()
			resp.Status = "degraded"
		}
	}

	respondJSON(w, h.logger, http.StatusOK, resp)
}
