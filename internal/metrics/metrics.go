// Package metrics agrupa los collectors Prometheus del servicio sobre un
// registry propio (no el global).
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Resultados de login.
const (
	LoginSuccess = "success"
	LoginFailure = "failure"
)

// Tipos de token emitidos.
const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	Logins          *prometheus.CounterVec
	TokensIssued    *prometheus.CounterVec
	RefreshRevoked  prometheus.Counter
	JWKSFetches     *prometheus.CounterVec
	RateLimitDenied prometheus.Counter
}

// New crea y registra todos los collectors, más los de proceso y runtime.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Requests HTTP por método, ruta y status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Intentos de login por resultado",
		}, []string{"result"}),
		TokensIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_tokens_issued_total",
			Help: "Tokens emitidos por tipo",
		}, []string{"type"}),
		RefreshRevoked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auth_refresh_revoked_total",
			Help: "Refresh tokens rechazados por revocación",
		}),
		JWKSFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jwks_fetch_total",
			Help: "Fetches al endpoint JWKS por resultado",
		}, []string{"result"}),
		RateLimitDenied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Requests rechazados por rate limit",
		}),
	}
	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.HTTPDuration,
		m.Logins,
		m.TokensIssued,
		m.RefreshRevoked,
		m.JWKSFetches,
		m.RateLimitDenied,
	)
	return m
}

// Handler expone el registry en formato Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// Los helpers son nil-safe para que services y middlewares funcionen sin métricas.

func (m *Metrics) ObserveLogin(result string) {
	if m != nil {
		m.Logins.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) ObserveTokenIssued(kind string) {
	if m != nil {
		m.TokensIssued.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) ObserveRefreshRevoked() {
	if m != nil {
		m.RefreshRevoked.Inc()
	}
}

func (m *Metrics) ObserveJWKSFetch(result string) {
	if m != nil {
		m.JWKSFetches.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) ObserveRateLimited() {
	if m != nil {
		m.RateLimitDenied.Inc()
	}
}
