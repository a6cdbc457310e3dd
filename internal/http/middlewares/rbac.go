package middlewares

import (
	"net/http"

	"github.com/dropDatabas3/tenantauth/internal/domain/types"
	"github.com/dropDatabas3/tenantauth/internal/http/errors"
)

// Authorize deja pasar sólo si el AuthContext tiene alguno de los roles.
// Va siempre después de Authenticate: sin identidad responde 401.
func Authorize(roles ...types.Role) Middleware {
	allowed := make(map[types.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a, ok := GetAuth(r.Context())
			if !ok {
				errors.WriteError(w, errors.ErrUnauthorized)
				return
			}
			if _, ok := allowed[a.Role]; !ok {
				errors.WriteError(w, errors.ErrForbidden.WithDetail("insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
