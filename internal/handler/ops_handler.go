package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/harlowe-audio/studio-api/internal/service"
	"github.com/harlowe-audio/studio-api/pkg/response"
)

// OpsHandler serves health, readiness, and metrics endpoints.
type OpsHandler struct {
	db      *sqlx.DB
	redis   *redis.Client
	metrics *service.MetricsService
	started time.Time
}

// NewOpsHandler builds a new handler.
func NewOpsHandler(db *sqlx.DB, redisClient *redis.Client, metrics *service.MetricsService) *OpsHandler {
	return &OpsHandler{db: db, redis: redisClient, metrics: metrics, started: time.Now().UTC()}
}

// Health godoc
// @Summary Liveness probe
// @Tags Ops
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /health [get]
func (h *OpsHandler) Health(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(h.started).Round(time.Second).String(),
	}, nil)
}

// Ready godoc
// @Summary Readiness probe checking database and cache connectivity
// @Tags Ops
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /ready [get]
func (h *OpsHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{}
	healthy := true

	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			checks["database"] = err.Error()
			healthy = false
		} else {
			checks["database"] = "ok"
		}
	}
	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = err.Error()
			healthy = false
		} else {
			checks["redis"] = "ok"
		}
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	response.JSON(c, status, checks, nil)
}

// Metrics exposes the Prometheus scrape endpoint.
func (h *OpsHandler) Metrics(c *gin.Context) {
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}
