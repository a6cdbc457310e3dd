package repository

import (
	"context"
	"time"

	"github.com/dropDatabas3/tenantauth/internal/domain/types"
)

// User representa un usuario (principal) del sistema.
type User struct {
	ID           string
	Name         string // "first last"
	Email        string
	PasswordHash *string // nil para identidades sin password
	Role         types.Role
	TenantID     *string
	LastSignInAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateUserInput contiene los datos para crear un usuario.
type CreateUserInput struct {
	Name         string
	Email        string
	PasswordHash string
	Role         types.Role
	TenantID     *string
}

// UpdateUserInput contiene los campos actualizables; nil = no tocar.
// ClearTenant desasocia el tenant (tenant_id = NULL).
type UpdateUserInput struct {
	Name         *string
	Email        *string
	PasswordHash *string
	Role         *types.Role
	TenantID     *string
	ClearTenant  bool
}

// Empty indica que no hay nada para actualizar.
func (in UpdateUserInput) Empty() bool {
	return in.Name == nil && in.Email == nil && in.PasswordHash == nil &&
		in.Role == nil && in.TenantID == nil && !in.ClearTenant
}

// ListUsersFilter opciones para listar usuarios. Strings vacíos = sin filtro.
type ListUsersFilter struct {
	Role   types.Role
	Name   string // substring, case-insensitive
	Email  string // substring, case-insensitive
	Limit  int
	Offset int
}

// UserRepository define operaciones sobre usuarios.
type UserRepository interface {
	// FindByID retorna (nil, nil) si no existe.
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByEmail retorna (nil, nil) si no existe.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// List retorna la página pedida y el total de filas que cumplen el filtro.
	List(ctx context.Context, filter ListUsersFilter) ([]User, int, error)

	// Create retorna ErrConflict si el email ya existe y ErrForeignKey si el tenant no existe.
	Create(ctx context.Context, input CreateUserInput) (*User, error)

	// Update retorna (nil, nil) si el usuario no existe.
	Update(ctx context.Context, id string, input UpdateUserInput) (*User, error)

	// TouchSignIn actualiza last_sign_in_at.
	TouchSignIn(ctx context.Context, id string, at time.Time) error

	// Delete elimina el usuario (y en cascada sus refresh tokens).
	// Retorna (nil, nil) si no existe.
	Delete(ctx context.Context, id string) (*User, error)

	// CountByTenant cuenta los usuarios asociados a un tenant.
	CountByTenant(ctx context.Context, tenantID string) (int, error)
}
