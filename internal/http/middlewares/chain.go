package middlewares

import (
	"net/http"

	"github.com/dropDatabas3/tenantauth/internal/domain/types"
)

// Middleware es un decorador de http.Handler (alias, compatible con chi.Use).
type Middleware = func(http.Handler) http.Handler

// Chain aplica mws de izquierda a derecha: Chain(h, A, B) ejecuta A -> B -> h.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// RequireRole es el stack de rutas protegidas: no-store, access token y rol.
func RequireRole(p AccessParser, roles ...types.Role) []Middleware {
	return []Middleware{WithNoStore(), Authenticate(p), Authorize(roles...)}
}
