package auth

import (
	"strings"

	"github.com/dropDatabas3/tenantauth/internal/http/dto"
	"github.com/dropDatabas3/tenantauth/internal/validation"
)

// MinPasswordLength mínimo aceptado en register/login.
const MinPasswordLength = 8

// RegisterRequest body de POST /auth/register.
type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// Normalize recorta espacios y pasa el email a minúsculas.
func (r *RegisterRequest) Normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r RegisterRequest) Validate() error {
	var c validation.Checker
	c.Required("firstName", r.FirstName)
	c.Required("lastName", r.LastName)
	if c.Required("email", r.Email) {
		c.Email("email", r.Email)
	}
	if c.Required("password", r.Password) {
		c.MinLen("password", r.Password, MinPasswordLength)
	}
	return dto.ValidationError("body", &c)
}

// LoginRequest body de POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r LoginRequest) Validate() error {
	var c validation.Checker
	if c.Required("email", r.Email) {
		c.Email("email", r.Email)
	}
	if c.Required("password", r.Password) {
		c.MinLen("password", r.Password, MinPasswordLength)
	}
	return dto.ValidationError("body", &c)
}

