package controllers

import (
	"context"
	"net/http"

	"github.com/danielcastano/mercato-backend/api/responses"
	pkgerrors "github.com/danielcastano/mercato-backend/pkg/errors"
	"github.com/danielcastano/mercato-backend/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// HealthController serves liveness and readiness probes.
type HealthController struct {
	logg  *logger.Logger
	db    pinger
	redis pinger
}

// NewHealthController wires the probe dependencies. Either pinger may be nil
// and is then skipped by readiness.
func NewHealthController(logg *logger.Logger, db, redis pinger) *HealthController {
	return &HealthController{logg: logg, db: db, redis: redis}
}

// Healthz reports process liveness.
func (c *HealthController) Healthz(w http.ResponseWriter, r *http.Request) {
	responses.WriteSuccess(w, "ok", map[string]string{"status": "alive"})
}

// Readyz reports whether the backing stores answer.
func (c *HealthController) Readyz(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}
	healthy := true

	if c.db != nil {
		checks["database"] = "ok"
		if err := c.db.Ping(r.Context()); err != nil {
			checks["database"] = "unavailable"
			healthy = false
			c.logg.Error(r.Context(), "database ping failed", err)
		}
	}
	if c.redis != nil {
		checks["redis"] = "ok"
		if err := c.redis.Ping(r.Context()); err != nil {
			checks["redis"] = "unavailable"
			healthy = false
			c.logg.Error(r.Context(), "redis ping failed", err)
		}
	}

	if !healthy {
		responses.WriteError(r.Context(), c.logg, w,
			pkgerrors.New(pkgerrors.CodeDependency, "service not ready").WithDetails(checks))
		return
	}
	responses.WriteSuccess(w, "ready", checks)
}
