package tenants

import (
	"strings"
	"time"

	"github.com/dropDatabas3/tenantauth/internal/domain/repository"
	"github.com/dropDatabas3/tenantauth/internal/http/dto"
	"github.com/dropDatabas3/tenantauth/internal/validation"
)

const (
	maxName     = 100
	maxAddress  = 255
	minPhone    = 10
	maxPhone    = 32
	fieldName   = "name"
	fieldAddr   = "address"
	fieldPhone  = "phone"
	fieldDomain = "domain"
)

// CreateTenantRequest body de POST /tenants.
type CreateTenantRequest struct {
	Name    string  `json:"name"`
	Domain  *string `json:"domain,omitempty"`
	Address string  `json:"address"`
	Phone   string  `json:"phone"`
}

func (r *CreateTenantRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Address = strings.TrimSpace(r.Address)
	r.Phone = strings.TrimSpace(r.Phone)
	if r.Domain != nil {
		d := strings.ToLower(strings.TrimSpace(*r.Domain))
		if d == "" {
			r.Domain = nil
		} else {
			r.Domain = &d
		}
	}
}

func (r CreateTenantRequest) Validate() error {
	var c validation.Checker
	if c.Required(fieldName, r.Name) {
		c.MaxLen(fieldName, r.Name, maxName)
	}
	if c.Required(fieldAddr, r.Address) {
		c.MaxLen(fieldAddr, r.Address, maxAddress)
	}
	checkPhone(&c, r.Phone)
	if r.Domain != nil {
		c.Domain(fieldDomain, *r.Domain)
	}
	return dto.ValidationError("body", &c)
}

func checkPhone(c *validation.Checker, phone string) {
	if !c.Required(fieldPhone, phone) {
		return
	}
	c.MinLen(fieldPhone, phone, minPhone)
	c.MaxLen(fieldPhone, phone, maxPhone)
	c.Phone(fieldPhone, phone)
}

// UpdateTenantRequest body de PATCH /tenants/{id}. domain "" lo borra.
type UpdateTenantRequest struct {
	Name    *string `json:"name,omitempty"`
	Domain  *string `json:"domain,omitempty"`
	Address *string `json:"address,omitempty"`
	Phone   *string `json:"phone,omitempty"`
}

func (r UpdateTenantRequest) Empty() bool {
	return r.Name == nil && r.Domain == nil && r.Address == nil && r.Phone == nil
}

func (r *UpdateTenantRequest) Normalize() {
	for _, p := range []*string{r.Name, r.Address, r.Phone} {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
	if r.Domain != nil {
		d := strings.ToLower(strings.TrimSpace(*r.Domain))
		r.Domain = &d
	}
}

func (r UpdateTenantRequest) Validate() error {
	var c validation.Checker
	if r.Name != nil && c.Required(fieldName, *r.Name) {
		c.MaxLen(fieldName, *r.Name, maxName)
	}
	if r.Address != nil && c.Required(fieldAddr, *r.Address) {
		c.MaxLen(fieldAddr, *r.Address, maxAddress)
	}
	if r.Phone != nil {
		checkPhone(&c, *r.Phone)
	}
	if r.Domain != nil && *r.Domain != "" {
		c.Domain(fieldDomain, *r.Domain)
	}
	return dto.ValidationError("body", &c)
}

type TenantResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Domain    *string   `json:"domain"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ListTenantsResponse struct {
	Data       []TenantResponse `json:"data"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"totalPages"`
}

func ToTenantResponse(t *repository.Tenant) TenantResponse {
	return TenantResponse{
		ID:        t.ID,
		Name:      t.Name,
		Domain:    t.Domain,
		Address:   t.Address,
		Phone:     t.Phone,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func ToTenantResponses(list []repository.Tenant) []TenantResponse {
	out := make([]TenantResponse, 0, len(list))
	for i := range list {
		out = append(out, ToTenantResponse(&list[i]))
	}
	return out
}
