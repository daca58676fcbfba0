package handlers

import (
	"database/sql"
	"net/http"

	"github.com/akinalp/vita/pkg"
	"github.com/akinalp/vita/pkg/redis"
)

// HealthHandler, liveness/readiness endpoint'i.
// Load balancer ve container orchestrator'lar bu endpoint'i yoklar.
type HealthHandler struct {
	db  *sql.DB
	rdb *redis.Client
}

// NewHealthHandler, constructor.
func NewHealthHandler(db *sql.DB, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, rdb: rdb}
}

// Health godoc
// GET /api/health
//
// DB ve Redis'i ayrı ayrı yoklar. Herhangi biri down ise 503 döner
// ama hangi bağımlılığın down olduğu response'ta görünür —
// oncall'un ilk bakışta sorunu görmesi için.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{
		"database": "ok",
		"redis":    "ok",
	}
	healthy := true

	if err := h.db.PingContext(r.Context()); err != nil {
		status["database"] = "unreachable"
		healthy = false
	}
	if err := h.rdb.Ping(r.Context()); err != nil {
		status["redis"] = "unreachable"
		healthy = false
	}

	if !healthy {
		pkg.ErrorWithStatus(w, http.StatusServiceUnavailable, status)
		return
	}
	pkg.JSON(w, http.StatusOK, status)
}
