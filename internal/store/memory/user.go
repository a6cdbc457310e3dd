package memory

import (
	"context"
	"strings"
	"time"

	"github.com/dropDatabas3/tenantauth/internal/domain/repository"
	"github.com/dropDatabas3/tenantauth/internal/domain/types"
)

// UserRepo implementa repository.UserRepository.
type UserRepo struct{ s *Store }

func (r *UserRepo) FindByID(ctx context.Context, id string) (*repository.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return cloneUser(u), nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*repository.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if u, ok := r.s.findByEmailLocked(email); ok {
		return cloneUser(u), nil
	}
	return nil, nil
}

func (s *Store) findByEmailLocked(email string) (repository.User, bool) {
	email = strings.TrimSpace(email)
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, true
		}
	}
	return repository.User{}, false
}

func (r *UserRepo) List(ctx context.Context, f repository.ListUsersFilter) ([]repository.User, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := make([]repository.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.Name != "" && !containsFold(u.Name, f.Name) {
			continue
		}
		if f.Email != "" && !containsFold(u.Email, f.Email) {
			continue
		}
		matched = append(matched, *cloneUser(u))
	}
	newestFirst(matched,
		func(u repository.User) time.Time { return u.CreatedAt },
		func(u repository.User) string { return u.ID })

	return page(matched, f.Limit, f.Offset), len(matched), nil
}

func (r *UserRepo) Create(ctx context.Context, in repository.CreateUserInput) (*repository.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, taken := r.s.findByEmailLocked(in.Email); taken {
		return nil, repository.ErrConflict
	}
	if in.TenantID != nil {
		if _, ok := r.s.tenants[*in.TenantID]; !ok {
			return nil, repository.ErrForeignKey
		}
	}

	role := in.Role
	if role == "" {
		role = types.RoleCustomer
	}
	now := r.s.now().UTC()
	u := repository.User{
		ID:        r.s.newID(),
		Name:      in.Name,
		Email:     strings.TrimSpace(in.Email),
		Role:      role,
		TenantID:  cloneString(in.TenantID),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.PasswordHash != "" {
		h := in.PasswordHash
		u.PasswordHash = &h
	}
	r.s.users[u.ID] = u
	return cloneUser(u), nil
}

func (r *UserRepo) Update(ctx context.Context, id string, in repository.UpdateUserInput) (*repository.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	if in.Empty() {
		return cloneUser(u), nil
	}
	if in.Email != nil {
		if other, taken := r.s.findByEmailLocked(*in.Email); taken && other.ID != id {
			return nil, repository.ErrConflict
		}
		u.Email = strings.TrimSpace(*in.Email)
	}
	if in.TenantID != nil && !in.ClearTenant {
		if _, ok := r.s.tenants[*in.TenantID]; !ok {
			return nil, repository.ErrForeignKey
		}
		u.TenantID = cloneString(in.TenantID)
	}
	if in.ClearTenant {
		u.TenantID = nil
	}
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.PasswordHash != nil {
		u.PasswordHash = cloneString(in.PasswordHash)
	}
	if in.Role != nil {
		u.Role = *in.Role
	}
	u.UpdatedAt = r.s.now().UTC()
	r.s.users[id] = u
	return cloneUser(u), nil
}

func (r *UserRepo) TouchSignIn(ctx context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		at = at.UTC()
		u.LastSignInAt = &at
		r.s.users[id] = u
	}
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, id string) (*repository.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	delete(r.s.users, id)
	// ON DELETE CASCADE
	for jti, t := range r.s.tokens {
		if t.UserID == id {
			delete(r.s.tokens, jti)
		}
	}
	return cloneUser(u), nil
}

func (r *UserRepo) CountByTenant(ctx context.Context, tenantID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.countByTenantLocked(tenantID), nil
}

func (s *Store) countByTenantLocked(tenantID string) int {
	n := 0
	for _, u := range s.users {
		if u.TenantID != nil && *u.TenantID == tenantID {
			n++
		}
	}
	return n
}
