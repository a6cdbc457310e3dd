// Package auth contiene los controllers de /auth: register, login, self,
// refresh y logout.
package auth

import (
	"net/http"

	"github.com/dropDatabas3/tenantauth/internal/http/dto"
	"github.com/dropDatabas3/tenantauth/internal/http/helpers"
	"github.com/dropDatabas3/tenantauth/internal/http/services/identity"
	"github.com/dropDatabas3/tenantauth/internal/http/services/session"
)

// Deps dependencias del controller.
type Deps struct {
	Identity identity.Service
	Sessions session.Service
	Cookies  helpers.CookieConfig
}

// Controller maneja las rutas /auth/*.
type Controller struct {
	deps Deps
}

// NewController crea el controller de auth.
func NewController(deps Deps) *Controller {
	return &Controller{deps: deps}
}

// writeSession entrega las cookies y el body {id}.
func (c *Controller) writeSession(w http.ResponseWriter, status int, s *session.Session) {
	helpers.SetSessionCookies(w, c.deps.Cookies, helpers.SessionCookies{
		AccessToken:  s.AccessToken,
		AccessTTL:    s.AccessTTL,
		RefreshToken: s.RefreshToken,
		RefreshTTL:   s.RefreshTTL,
	})
	helpers.WriteJSON(w, status, dto.IDResponse{ID: s.UserID})
}
