package repository

import (
	"context"
	"time"
)

// Tenant representa un arrendatario; agrupa usuarios con rol manager.
type Tenant struct {
	ID        string
	Name      string
	Domain    *string
	Address   string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateTenantInput contiene los datos para crear un tenant.
type CreateTenantInput struct {
	Name    string
	Domain  *string
	Address string
	Phone   string
}

// UpdateTenantInput es un patch parcial; nil = no tocar.
type UpdateTenantInput struct {
	Name    *string
	Domain  *string
	Address *string
	Phone   *string
}

// Empty indica que el patch no tiene campos.
func (in UpdateTenantInput) Empty() bool {
	return in.Name == nil && in.Domain == nil && in.Address == nil && in.Phone == nil
}

// TenantRepository define operaciones sobre tenants.
type TenantRepository interface {
	// FindByID retorna (nil, nil) si no existe.
	FindByID(ctx context.Context, id string) (*Tenant, error)

	List(ctx context.Context, limit, offset int) ([]Tenant, int, error)

	// Create retorna ErrConflict si el domain ya existe.
	Create(ctx context.Context, input CreateTenantInput) (*Tenant, error)

	// Update retorna (nil, nil) si no existe.
	Update(ctx context.Context, id string, input UpdateTenantInput) (*Tenant, error)

	// Delete elimina el tenant. Con detach=true primero desasocia sus usuarios
	// (tenant_id = NULL) en la misma transacción; con detach=false una fila
	// referenciada produce ErrForeignKey. Retorna (false, nil) si no existe.
	Delete(ctx context.Context, id string, detach bool) (bool, error)
}
