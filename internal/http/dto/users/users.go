package users

import (
	"strings"
	"time"

	"github.com/dropDatabas3/tenantauth/internal/domain/repository"
	"github.com/dropDatabas3/tenantauth/internal/domain/types"
	"github.com/dropDatabas3/tenantauth/internal/http/dto"
	"github.com/dropDatabas3/tenantauth/internal/http/dto/auth"
	"github.com/dropDatabas3/tenantauth/internal/validation"
)

// CreateUserRequest body de POST /users (usuario manager de un tenant).
type CreateUserRequest struct {
	auth.RegisterRequest
	TenantID string `json:"tenantId"`
}

func (r *CreateUserRequest) Normalize() {
	r.RegisterRequest.Normalize()
	r.TenantID = strings.TrimSpace(r.TenantID)
}

func (r CreateUserRequest) Validate() error {
	var c validation.Checker
	c.Required("firstName", r.FirstName)
	c.Required("lastName", r.LastName)
	if c.Required("email", r.Email) {
		c.Email("email", r.Email)
	}
	if c.Required("password", r.Password) {
		c.MinLen("password", r.Password, auth.MinPasswordLength)
	}
	if c.Required("tenantId", r.TenantID) {
		c.UUID("tenantId", r.TenantID)
	}
	return dto.ValidationError("body", &c)
}

// UpdateUserRequest body de PATCH /users/{id}. Campos ausentes no se tocan;
// tenantId "" desasocia el tenant.
type UpdateUserRequest struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Email     *string `json:"email,omitempty"`
	Password  *string `json:"password,omitempty"`
	Role      *string `json:"role,omitempty"`
	TenantID  *string `json:"tenantId,omitempty"`
}

func (r UpdateUserRequest) Empty() bool {
	return r.FirstName == nil && r.LastName == nil && r.Email == nil &&
		r.Password == nil && r.Role == nil && r.TenantID == nil
}

func (r *UpdateUserRequest) Normalize() {
	trim := func(p *string) {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
	trim(r.FirstName)
	trim(r.LastName)
	trim(r.TenantID)
	if r.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*r.Email))
		r.Email = &e
	}
	if r.Role != nil {
		role := strings.ToLower(strings.TrimSpace(*r.Role))
		r.Role = &role
	}
}

func (r UpdateUserRequest) Validate() error {
	var c validation.Checker
	if r.FirstName != nil {
		c.Required("firstName", *r.FirstName)
	}
	if r.LastName != nil {
		c.Required("lastName", *r.LastName)
	}
	if r.Email != nil {
		c.Email("email", *r.Email)
	}
	if r.Password != nil {
		c.MinLen("password", *r.Password, auth.MinPasswordLength)
	}
	if r.Role != nil {
		if _, ok := types.ParseRole(*r.Role); !ok {
			c.Add("role", "must be one of: customer, manager, admin")
		}
	}
	if r.TenantID != nil && *r.TenantID != "" {
		c.UUID("tenantId", *r.TenantID)
	}
	return dto.ValidationError("body", &c)
}

// ListQuery filtros de GET /users.
type ListQuery struct {
	Role  types.Role
	Name  string
	Email string
	Page  int
	Limit int
}

// UserResponse representación pública; nunca incluye el hash.
type UserResponse struct {
	ID           string     `json:"id"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Role         types.Role `json:"role"`
	TenantID     *string    `json:"tenantId"`
	LastSignInAt *time.Time `json:"lastSignInAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// ListUsersResponse página de usuarios.
type ListUsersResponse struct {
	Data       []UserResponse `json:"data"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"totalPages"`
}

// ToUserResponse mapea el modelo de dominio.
func ToUserResponse(u *repository.User) UserResponse {
	first, last := types.SplitName(u.Name)
	return UserResponse{
		ID:           u.ID,
		FirstName:    first,
		LastName:     last,
		Name:         u.Name,
		Email:        u.Email,
		Role:         u.Role,
		TenantID:     u.TenantID,
		LastSignInAt: u.LastSignInAt,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func ToUserResponses(list []repository.User) []UserResponse {
	out := make([]UserResponse, 0, len(list))
	for i := range list {
		out = append(out, ToUserResponse(&list[i]))
	}
	return out
}
