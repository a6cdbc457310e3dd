package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/dropDatabas3/tenantauth/internal/http/errors"
	"github.com/dropDatabas3/tenantauth/internal/http/helpers"
	jwtx "github.com/dropDatabas3/tenantauth/internal/jwt"
	"github.com/dropDatabas3/tenantauth/internal/observability/logger"
)

// AccessParser valida access tokens (RS256 + JWKS).
type AccessParser interface {
	ParseAccess(ctx context.Context, raw string) (*jwtx.Claims, error)
}

// RefreshValidator valida refresh tokens incluyendo el chequeo de revocación.
type RefreshValidator interface {
	ValidateRefresh(ctx context.Context, raw string) (*jwtx.Claims, error)
}

// accessToken busca el token en Authorization: Bearer y luego en la cookie access_token.
func accessToken(r *http.Request) string {
	if ah := strings.TrimSpace(r.Header.Get("Authorization")); len(ah) > 7 && strings.EqualFold(ah[:7], "bearer ") {
		return strings.TrimSpace(ah[7:])
	}
	if c, err := r.Cookie(helpers.AccessCookie); err == nil {
		return strings.TrimSpace(c.Value)
	}
	return ""
}

func withUserLogger(ctx context.Context, a AuthContext) context.Context {
	return logger.ToContext(ctx, logger.From(ctx).With(logger.UserID(a.UserID), logger.Role(a.Role.String())))
}

// Authenticate valida el access token y deja un AuthContext en el contexto.
// Sin token o con token inválido responde 401.
func Authenticate(p AccessParser) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := accessToken(r)
			if raw == "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
				errors.WriteError(w, errors.ErrTokenMissing)
				return
			}

			claims, err := p.ParseAccess(r.Context(), raw)
			if err != nil {
				logger.From(r.Context()).Debug("access token rejected", logger.Layer("middleware"), logger.Err(err))
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
				errors.WriteError(w, errors.ErrTokenInvalid)
				return
			}

			a := AuthContext{UserID: claims.Subject, Role: claims.Role}
			ctx := withUserLogger(WithAuth(r.Context(), a), a)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRefresh toma el refresh token SOLO de la cookie refresh_token
// (el header Authorization se ignora) y exige que su registro siga vigente.
func RequireRefresh(v RefreshValidator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(helpers.RefreshCookie)
			if err != nil || strings.TrimSpace(c.Value) == "" {
				errors.WriteError(w, errors.ErrTokenMissing.WithDetail("refresh token cookie required"))
				return
			}

			claims, err := v.ValidateRefresh(r.Context(), strings.TrimSpace(c.Value))
			if err != nil {
				// cualquier falla se trata como token revocado
				if ae := errors.FromError(err); ae.IsInternal() {
					err = errors.ErrTokenInvalid
				}
				errors.WriteError(w, err)
				return
			}

			a := AuthContext{UserID: claims.Subject, Role: claims.Role, TokenID: claims.ID}
			ctx := WithRefresh(r.Context(), a)
			if _, ok := GetAuth(ctx); !ok {
				ctx = withUserLogger(ctx, a)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
