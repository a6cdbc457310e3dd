// Package memory implementa los repositorios de dominio en memoria.
// Respeta las mismas reglas que el esquema PostgreSQL: email único
// (case-insensitive), FK de usuarios a tenants y borrado en cascada de
// refresh tokens al borrar un usuario.
package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/tenantauth/internal/domain/repository"
)

// Store mantiene todas las tablas detrás de un único lock, para que las
// operaciones que cruzan tablas sean atómicas.
type Store struct {
	mu      sync.RWMutex
	users   map[string]repository.User
	tenants map[string]repository.Tenant
	tokens  map[string]repository.RefreshToken

	now   func() time.Time
	newID func() string
}

// Option configura el Store.
type Option func(*Store)

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New crea un store vacío.
func New(opts ...Option) *Store {
	s := &Store{
		users:   make(map[string]repository.User),
		tenants: make(map[string]repository.Tenant),
		tokens:  make(map[string]repository.RefreshToken),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }
func (s *Store) Tenants() *TenantRepo { return &TenantRepo{s: s} }
func (s *Store) Tokens() *TokenRepo { return &TokenRepo{s: s} }

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTime(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneUser(u repository.User) *repository.User {
	u.PasswordHash = cloneString(u.PasswordHash)
	u.TenantID = cloneString(u.TenantID)
	u.LastSignInAt = cloneTime(u.LastSignInAt)
	return &u
}

func cloneTenant(t repository.Tenant) *repository.Tenant {
	t.Domain = cloneString(t.Domain)
	return &t
}

// newestFirst ordena como el repositorio pg: created_at DESC, id.
func newestFirst[T any](items []T, created func(T) time.Time, id func(T) string) {
	sort.Slice(items, func(i, j int) bool {
		ci, cj := created(items[i]), created(items[j])
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return id(items[i]) < id(items[j])
	})
}

func page[T any](items []T, limit, offset int) []T {
	if offset < 0 || offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(sub)))
}
