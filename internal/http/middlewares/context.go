package middlewares

import (
	"context"

	"github.com/dropDatabas3/tenantauth/internal/domain/types"
)

type ctxKey string

const (
	ctxAuthKey      ctxKey = "auth"
	ctxRefreshKey   ctxKey = "refresh"
	ctxRequestIDKey ctxKey = "request_id"
)

// AuthContext es la identidad resuelta de un token válido.
// TokenID sólo está presente para refresh tokens (jti).
type AuthContext struct {
	UserID  string
	Role    types.Role
	TokenID string
}

// WithAuth inyecta la identidad del access token.
func WithAuth(ctx context.Context, a AuthContext) context.Context {
	return context.WithValue(ctx, ctxAuthKey, a)
}

// GetAuth retorna la identidad del access token; ok=false si la request no
// pasó por Authenticate o el token era inválido.
func GetAuth(ctx context.Context) (AuthContext, bool) {
	a, ok := ctx.Value(ctxAuthKey).(AuthContext)
	return a, ok
}

// WithRefresh inyecta la identidad de un refresh token ya verificado contra el store.
func WithRefresh(ctx context.Context, a AuthContext) context.Context {
	return context.WithValue(ctx, ctxRefreshKey, a)
}

func GetRefresh(ctx context.Context) (AuthContext, bool) {
	a, ok := ctx.Value(ctxRefreshKey).(AuthContext)
	return a, ok
}

func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// GetRequestID obtiene el request ID del contexto.
func GetRequestID(ctx context.Context) string {
	s, _ := ctx.Value(ctxRequestIDKey).(string)
	return s
}
