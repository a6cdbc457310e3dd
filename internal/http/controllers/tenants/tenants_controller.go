// Package tenants contiene el controller de /tenants.
package tenants

import (
	"net/http"

	"github.com/dropDatabas3/tenantauth/internal/http/dto"
	tenantsdto "github.com/dropDatabas3/tenantauth/internal/http/dto/tenants"
	"github.com/dropDatabas3/tenantauth/internal/http/errors"
	"github.com/dropDatabas3/tenantauth/internal/http/helpers"
	"github.com/dropDatabas3/tenantauth/internal/http/services/tenant"
)

type Controller struct {
	service tenant.Service
}

func NewController(service tenant.Service) *Controller {
	return &Controller{service: service}
}

// Create maneja POST /tenants
func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	var req tenantsdto.CreateTenantRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		errors.WriteError(w, err)
		return
	}

	t, err := c.service.Create(r.Context(), req)
	if err != nil {
		errors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, tenantsdto.ToTenantResponse(t))
}

// List maneja GET /tenants?page=&limit=
func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	page, err := helpers.ParsePage(r)
	if err != nil {
		errors.WriteError(w, err)
		return
	}

	res, err := c.service.List(r.Context(), page.Page, page.Limit)
	if err != nil {
		errors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, res)
}

func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathUUID(r, "id")
	if err != nil {
		errors.WriteError(w, err)
		return
	}

	t, err := c.service.Get(r.Context(), id)
	if err != nil {
		errors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, tenantsdto.ToTenantResponse(t))
}

func (c *Controller) Update(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathUUID(r, "id")
	if err != nil {
		errors.WriteError(w, err)
		return
	}

	var req tenantsdto.UpdateTenantRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		errors.WriteError(w, err)
		return
	}

	t, err := c.service.Update(r.Context(), id, req)
	if err != nil {
		errors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, tenantsdto.ToTenantResponse(t))
}

// Delete maneja DELETE /tenants/{id}[?detach=true].
// Sin detach, un tenant con usuarios responde 400 TENANT_HAS_USERS.
func (c *Controller) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := helpers.PathUUID(r, "id")
	if err != nil {
		errors.WriteError(w, err)
		return
	}

	detach := helpers.QueryBool(r, "detach")
	if err := c.service.Delete(ctx, id, detach); err != nil {
		errors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.IDResponse{ID: id})
}
