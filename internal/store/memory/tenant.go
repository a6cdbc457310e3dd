package memory

import (
	"context"
	"strings"
	"time"

	"github.com/dropDatabas3/tenantauth/internal/domain/repository"
)

// TenantRepo implementa repository.TenantRepository.
type TenantRepo struct{ s *Store }

func (r *TenantRepo) FindByID(ctx context.Context, id string) (*repository.Tenant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tenants[id]
	if !ok {
		return nil, nil
	}
	return cloneTenant(t), nil
}

func (r *TenantRepo) List(ctx context.Context, limit, offset int) ([]repository.Tenant, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all := make([]repository.Tenant, 0, len(r.s.tenants))
	for _, t := range r.s.tenants {
		all = append(all, *cloneTenant(t))
	}
	newestFirst(all,
		func(t repository.Tenant) time.Time { return t.CreatedAt },
		func(t repository.Tenant) string { return t.ID })
	return page(all, limit, offset), len(all), nil
}

// domainTakenLocked replica el índice único lower(domain).
func (s *Store) domainTakenLocked(domain *string, exceptID string) bool {
	if domain == nil || *domain == "" {
		return false
	}
	for _, t := range s.tenants {
		if t.ID != exceptID && t.Domain != nil && strings.EqualFold(*t.Domain, *domain) {
			return true
		}
	}
	return false
}

func (r *TenantRepo) Create(ctx context.Context, in repository.CreateTenantInput) (*repository.Tenant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.domainTakenLocked(in.Domain, "") {
		return nil, repository.ErrConflict
	}
	now := r.s.now().UTC()
	t := repository.Tenant{
		ID:        r.s.newID(),
		Name:      in.Name,
		Domain:    cloneString(in.Domain),
		Address:   in.Address,
		Phone:     in.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.s.tenants[t.ID] = t
	return cloneTenant(t), nil
}

func (r *TenantRepo) Update(ctx context.Context, id string, in repository.UpdateTenantInput) (*repository.Tenant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tenants[id]
	if !ok {
		return nil, nil
	}
	if in.Empty() {
		return cloneTenant(t), nil
	}
	if in.Domain != nil {
		if r.s.domainTakenLocked(in.Domain, id) {
			return nil, repository.ErrConflict
		}
		if *in.Domain == "" {
			t.Domain = nil
		} else {
			t.Domain = cloneString(in.Domain)
		}
	}
	if in.Name != nil {
		t.Name = *in.Name
	}
	if in.Address != nil {
		t.Address = *in.Address
	}
	if in.Phone != nil {
		t.Phone = *in.Phone
	}
	t.UpdatedAt = r.s.now().UTC()
	r.s.tenants[id] = t
	return cloneTenant(t), nil
}

func (r *TenantRepo) Delete(ctx context.Context, id string, detach bool) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tenants[id]; !ok {
		return false, nil
	}
	if r.s.countByTenantLocked(id) > 0 {
		if !detach {
			return false, repository.ErrForeignKey
		}
		now := r.s.now().UTC()
		for uid, u := range r.s.users {
			if u.TenantID != nil && *u.TenantID == id {
				u.TenantID = nil
				u.UpdatedAt = now
				r.s.users[uid] = u
			}
		}
	}
	delete(r.s.tenants, id)
	return true, nil
}
