package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/aalfraarauscher/loan-app-admin/internal/database"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	db    *database.Connection
	redis *redis.Client
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.Connection, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{
		db:    db,
		redis: redisClient,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components"`
}

// HandleHealthCheck reports overall service health: database and redis
// connectivity
func (h *HealthHandler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	components := map[string]string{
		"database": "healthy",
		"redis":    "healthy",
	}
	overallStatus := "healthy"

	sqlDB, err := h.db.DB.DB()
	if err != nil || sqlDB.PingContext(ctx) != nil {
		components["database"] = "unhealthy"
		overallStatus = "unhealthy"
	}

	if err := h.redis.Ping(ctx).Err(); err != nil {
		components["redis"] = "unhealthy"
		overallStatus = "unhealthy"
	}

	response := HealthResponse{
		Status:     overallStatus,
		Timestamp:  time.Now(),
		Components: components,
	}

	w.Header().Set("Content-Type", "application/json")
	if overallStatus != "healthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(response)
}

// HandleLivenessProbe handles Kubernetes liveness probe
func (h *HealthHandler) HandleLivenessProbe(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// HandleReadinessProbe handles Kubernetes readiness probe
func (h *HealthHandler) HandleReadinessProbe(w http.ResponseWriter, r *http.Request) {
	sqlDB, err := h.db.DB.DB()
	if err != nil || sqlDB.PingContext(r.Context()) != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("Service Unavailable"))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Ready"))
}
