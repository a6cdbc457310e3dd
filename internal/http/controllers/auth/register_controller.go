package auth

import (
	"net/http"

	authdto "github.com/dropDatabas3/tenantauth/internal/http/dto/auth"
	"github.com/dropDatabas3/tenantauth/internal/http/errors"
	"github.com/dropDatabas3/tenantauth/internal/http/helpers"
)

// Register maneja POST /auth/register.
// Crea un customer, persiste el refresh y responde 201 {id} + cookies.
func (c *Controller) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req authdto.RegisterRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		errors.WriteError(w, err)
		return
	}

	user, err := c.deps.Identity.Register(ctx, req)
	if err != nil {
		errors.WriteError(w, err)
		return
	}

	sess, err := c.deps.Sessions.IssueSession(ctx, user)
	if err != nil {
		errors.WriteError(w, err)
		return
	}

	c.writeSession(w, http.StatusCreated, sess)
}
