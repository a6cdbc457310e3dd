// Package router arma el árbol de rutas chi y las cadenas de middlewares.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/tenantauth/internal/domain/types"
	authctrl "github.com/dropDatabas3/tenantauth/internal/http/controllers/auth"
	healthctrl "github.com/dropDatabas3/tenantauth/internal/http/controllers/health"
	oidcctrl "github.com/dropDatabas3/tenantauth/internal/http/controllers/oidc"
	tenantsctrl "github.com/dropDatabas3/tenantauth/internal/http/controllers/tenants"
	usersctrl "github.com/dropDatabas3/tenantauth/internal/http/controllers/users"
	"github.com/dropDatabas3/tenantauth/internal/http/errors"
	"github.com/dropDatabas3/tenantauth/internal/http/helpers"
	mw "github.com/dropDatabas3/tenantauth/internal/http/middlewares"
	"github.com/dropDatabas3/tenantauth/internal/metrics"
	"github.com/dropDatabas3/tenantauth/internal/rate"
)

// Deps contiene todo lo que el router necesita.
type Deps struct {
	Auth    *authctrl.Controller
	Users   *usersctrl.Controller
	Tenants *tenantsctrl.Controller
	JWKS    *oidcctrl.JWKSController
	Health  *healthctrl.Controller

	Access  mw.AccessParser
	Refresh mw.RefreshValidator

	Limiter      rate.Limiter     // opcional
	Metrics      *metrics.Metrics // opcional
	CORSOrigins  []string
	Proxies      helpers.TrustedProxies
	MaxBodyBytes int64
}

// New construye el handler raíz.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithRealIP(d.Proxies),
		mw.WithBodyLimit(d.MaxBodyBytes),
		mw.WithLogging(),
		mw.WithMetrics(d.Metrics),
		mw.WithSecurityHeaders(),
	)
	if len(d.CORSOrigins) > 0 {
		r.Use(mw.WithCORS(d.CORSOrigins))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		errors.WriteError(w, errors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		errors.WriteError(w, errors.ErrMethodNotAllowed)
	})

	// ─── Públicas ───
	r.Get("/healthz", d.Health.Healthz)
	r.Get("/readyz", d.Health.Readyz)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}
	r.Method(http.MethodGet, "/.well-known/jwks.json", http.HandlerFunc(d.JWKS.Get))
	r.Method(http.MethodHead, "/.well-known/jwks.json", http.HandlerFunc(d.JWKS.Get))

	registerAuthRoutes(r, d)
	registerAdminRoutes(r, d)

	return r
}

func registerAuthRoutes(r chi.Router, d Deps) {
	authenticate := mw.Authenticate(d.Access)
	requireRefresh := mw.RequireRefresh(d.Refresh)

	r.Route("/auth", func(r chi.Router) {
		r.Use(mw.WithNoStore())

		// register/login: rate limit por IP + path
		r.Group(func(r chi.Router) {
			r.Use(mw.WithRateLimit(mw.RateLimitConfig{Limiter: d.Limiter, Metrics: d.Metrics}))
			r.Post("/register", d.Auth.Register)
			r.Post("/login", d.Auth.Login)
		})

		r.With(authenticate).Get("/self", d.Auth.Self)
		r.With(requireRefresh).Post("/refresh", d.Auth.Refresh)
		r.With(authenticate, requireRefresh).Post("/logout", d.Auth.Logout)
	})
}

// registerAdminRoutes: /tenants y /users, sólo admin.
func registerAdminRoutes(r chi.Router, d Deps) {
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireRole(d.Access, types.RoleAdmin)...)

		r.Route("/tenants", func(r chi.Router) {
			r.Post("/", d.Tenants.Create)
			r.Get("/", d.Tenants.List)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", d.Tenants.Get)
				r.Patch("/", d.Tenants.Update)
				r.Delete("/", d.Tenants.Delete)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/", d.Users.Create)
			r.Get("/", d.Users.List)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", d.Users.Get)
				r.Patch("/", d.Users.Update)
				r.Delete("/", d.Users.Delete)
			})
		})
	})
}
