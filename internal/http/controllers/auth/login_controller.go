package auth

import (
	"net/http"

	authdto "github.com/dropDatabas3/tenantauth/internal/http/dto/auth"
	"github.com/dropDatabas3/tenantauth/internal/http/errors"
	"github.com/dropDatabas3/tenantauth/internal/http/helpers"
)

// Login maneja POST /auth/login.
func (c *Controller) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req authdto.LoginRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		errors.WriteError(w, err)
		return
	}

	user, err := c.deps.Identity.Authenticate(ctx, req)
	if err != nil {
		errors.WriteError(w, err)
		return
	}

	sess, err := c.deps.Sessions.IssueSession(ctx, user)
	if err != nil {
		errors.WriteError(w, err)
		return
	}
	c.writeSession(w, http.StatusOK, sess)
}
