// Package users contiene el controller de administración de usuarios (/users).
package users

import (
	"net/http"
	"strings"

	"github.com/dropDatabas3/tenantauth/internal/domain/types"
	usersdto "github.com/dropDatabas3/tenantauth/internal/http/dto/users"
	"github.com/dropDatabas3/tenantauth/internal/http/errors"
	"github.com/dropDatabas3/tenantauth/internal/http/helpers"
	"github.com/dropDatabas3/tenantauth/internal/http/services/identity"
)

// Controller maneja /users y /users/{id}. Sólo admins (ver router).
type Controller struct {
	service identity.Service
}

func NewController(service identity.Service) *Controller {
	return &Controller{service: service}
}

// Create maneja POST /users: alta de un manager asociado a un tenant.
func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	var req usersdto.CreateUserRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		errors.WriteError(w, err)
		return
	}

	user, err := c.service.CreateManagedUser(r.Context(), req)
	if err != nil {
		errors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, usersdto.ToUserResponse(user))
}

// List maneja GET /users?role=&name=&email=&page=&limit=
func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	page, err := helpers.ParsePage(r)
	if err != nil {
		errors.WriteError(w, err)
		return
	}

	q := r.URL.Query()
	query := usersdto.ListQuery{
		Name:  strings.TrimSpace(q.Get("name")),
		Email: strings.TrimSpace(q.Get("email")),
		Page:  page.Page,
		Limit: page.Limit,
	}
	if raw := strings.TrimSpace(q.Get("role")); raw != "" {
		role, ok := types.ParseRole(raw)
		if !ok {
			errors.WriteError(w, errors.ErrValidation.WithFields(errors.FieldError{
				Field: "role", Location: "query", Message: "must be one of customer, manager, admin",
			}))
			return
		}
		query.Role = role
	}

	res, err := c.service.ListUsers(r.Context(), query)
	if err != nil {
		errors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, res)
}

// Get maneja GET /users/{id}
func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathUUID(r, "id")
	if err != nil {
		errors.WriteError(w, err)
		return
	}

	user, err := c.service.GetUser(r.Context(), id)
	if err != nil {
		errors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, usersdto.ToUserResponse(user))
}

// Update maneja PATCH /users/{id}
func (c *Controller) Update(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathUUID(r, "id")
	if err != nil {
		errors.WriteError(w, err)
		return
	}

	var req usersdto.UpdateUserRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		errors.WriteError(w, err)
		return
	}

	user, err := c.service.UpdateUser(r.Context(), id, req)
	if err != nil {
		errors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, usersdto.ToUserResponse(user))
}

// Delete maneja DELETE /users/{id}; responde el usuario borrado.
func (c *Controller) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := helpers.PathUUID(r, "id")
	if err != nil {
		errors.WriteError(w, err)
		return
	}

	user, err := c.service.DeleteUser(ctx, id)
	if err != nil {
		errors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, usersdto.ToUserResponse(user))
}
