// Package health contiene el controller de liveness/readiness.
package health

import (
	"net/http"

	"github.com/dropDatabas3/tenantauth/internal/http/errors"
	"github.com/dropDatabas3/tenantauth/internal/http/helpers"
	svc "github.com/dropDatabas3/tenantauth/internal/http/services/health"
	"github.com/dropDatabas3/tenantauth/internal/observability/logger"
)

type Controller struct {
	service svc.Service
}

func NewController(service svc.Service) *Controller {
	return &Controller{service: service}
}

// Healthz maneja GET /healthz: el proceso responde.
func (c *Controller) Healthz(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, c.service.Live(r.Context()))
}

// Readyz maneja GET /readyz. Si alguna dependencia falla responde
// SERVICE_UNAVAILABLE sin exponer qué check cayó.
func (c *Controller) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	report := c.service.Ready(ctx)

	if report.Version != "" {
		w.Header().Set("X-Service-Version", report.Version)
	}

	if !report.OK() {
		failed := make([]string, 0, len(report.Checks))
		for _, ch := range report.Checks {
			if ch.Status != "ok" {
				failed = append(failed, ch.Name)
			}
		}
		logger.From(ctx).Warn("service not ready",
			logger.Layer("controller"), logger.Op("HealthController.Readyz"),
			logger.Strings("failed", failed),
		)
		errors.WriteError(w, errors.ErrServiceUnavailable)
		return
	}

	logger.From(ctx).Debug("readiness check completed",
		logger.Layer("controller"), logger.Op("HealthController.Readyz"),
		logger.String("status", report.Status),
		logger.Count(len(report.Checks)),
	)
	helpers.WriteJSON(w, http.StatusOK, report)
}
