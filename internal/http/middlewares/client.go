package middlewares

import (
	"net/http"

	"github.com/dropDatabas3/tenantauth/internal/http/helpers"
)

// WithRealIP resuelve la IP del cliente una vez por request. X-Forwarded-For
// sólo se acepta si el peer directo está en proxies.
func WithRealIP(proxies helpers.TrustedProxies) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := helpers.WithClientIP(r.Context(), proxies.Resolve(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithBodyLimit fija el máximo de body que acepta ReadJSON. n <= 0 deja el default.
func WithBodyLimit(n int64) Middleware {
	return func(next http.Handler) http.Handler {
		if n <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(helpers.WithBodyLimit(r.Context(), n)))
		})
	}
}
