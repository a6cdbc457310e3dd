// Package types define tipos de dominio compartidos entre paquetes.
package types

import "strings"

// Role es el rol de un usuario; determina qué rutas puede usar.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

// Roles lista los roles válidos en orden de privilegio.
var Roles = []Role{RoleCustomer, RoleManager, RoleAdmin}

// IsValid retorna true si el rol es uno de los conocidos.
func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleManager, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// ParseRole normaliza (trim + lower) y valida un rol.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.IsValid()
}
