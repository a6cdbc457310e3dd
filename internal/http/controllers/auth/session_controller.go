package auth

import (
	"net/http"

	"github.com/dropDatabas3/tenantauth/internal/http/dto"
	usersdto "github.com/dropDatabas3/tenantauth/internal/http/dto/users"
	"github.com/dropDatabas3/tenantauth/internal/http/errors"
	"github.com/dropDatabas3/tenantauth/internal/http/helpers"
	mw "github.com/dropDatabas3/tenantauth/internal/http/middlewares"
	"github.com/dropDatabas3/tenantauth/internal/observability/logger"
)

// Self maneja GET /auth/self (requiere Authenticate).
func (c *Controller) Self(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	a, ok := mw.GetAuth(ctx)
	if !ok {
		errors.WriteError(w, errors.ErrUnauthorized)
		return
	}

	user, err := c.deps.Identity.GetUser(ctx, a.UserID)
	if err != nil {
		// token válido de un usuario ya borrado
		if errors.Is(err, errors.ErrUserNotFound) {
			err = errors.ErrTokenInvalid
		}
		errors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, usersdto.ToUserResponse(user))
}

// Refresh maneja POST /auth/refresh (requiere RequireRefresh).
// Rota: el registro usado se borra y se entrega un par nuevo.
func (c *Controller) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rt, ok := mw.GetRefresh(ctx)
	if !ok {
		errors.WriteError(w, errors.ErrTokenMissing)
		return
	}

	sess, err := c.deps.Sessions.Refresh(ctx, rt.UserID, rt.TokenID)
	if err != nil {
		if errors.Is(err, errors.ErrTokenInvalid) {
			helpers.ClearSessionCookies(w, c.deps.Cookies)
		}
		errors.WriteError(w, err)
		return
	}
	c.writeSession(w, http.StatusOK, sess)
}

// Logout maneja POST /auth/logout (Authenticate + RequireRefresh).
// Ambos tokens tienen que pertenecer al mismo usuario.
func (c *Controller) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("AuthController.Logout"))

	a, okA := mw.GetAuth(ctx)
	rt, okR := mw.GetRefresh(ctx)
	if !okA || !okR {
		errors.WriteError(w, errors.ErrUnauthorized)
		return
	}
	if a.UserID != rt.UserID {
		log.Warn("logout with tokens of different users", logger.TokenID(rt.TokenID))
		errors.WriteError(w, errors.ErrTokenInvalid)
		return
	}

	if err := c.deps.Sessions.Logout(ctx, rt.TokenID); err != nil {
		errors.WriteError(w, err)
		return
	}

	helpers.ClearSessionCookies(w, c.deps.Cookies)
	helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "logged out"})
}
