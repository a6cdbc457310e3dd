// Package tenant contiene el CRUD de tenants.
package tenant

import (
	"context"

	"go.uber.org/zap"

	"github.com/dropDatabas3/tenantauth/internal/audit"
	"github.com/dropDatabas3/tenantauth/internal/domain/repository"
	"github.com/dropDatabas3/tenantauth/internal/http/dto"
	tenantsdto "github.com/dropDatabas3/tenantauth/internal/http/dto/tenants"
	"github.com/dropDatabas3/tenantauth/internal/http/errors"
	"github.com/dropDatabas3/tenantauth/internal/observability/logger"
)

// Service define las operaciones sobre tenants.
type Service interface {
	Create(ctx context.Context, in tenantsdto.CreateTenantRequest) (*repository.Tenant, error)
	Get(ctx context.Context, id string) (*repository.Tenant, error)
	List(ctx context.Context, page, limit int) (*tenantsdto.ListTenantsResponse, error)
	Update(ctx context.Context, id string, in tenantsdto.UpdateTenantRequest) (*repository.Tenant, error)
	// Delete con detach=false rechaza si hay usuarios asociados.
	Delete(ctx context.Context, id string, detach bool) error
}

type Deps struct {
	Tenants repository.TenantRepository
	Users   repository.UserRepository
}

type service struct {
	deps Deps
}

func NewService(deps Deps) Service {
	return &service{deps: deps}
}

var errDomainTaken = errors.ErrConflict.WithDetail("domain already in use")

func (s *service) log(ctx context.Context, op string) *zap.Logger {
	return logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("tenant"),
		logger.Op(op),
	)
}

func internal(log *zap.Logger, msg string, err error) error {
	log.Error(msg, logger.Err(err))
	return errors.ErrInternalServerError.WithCause(err)
}

func (s *service) Create(ctx context.Context, in tenantsdto.CreateTenantRequest) (*repository.Tenant, error) {
	log := s.log(ctx, "Create")
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	t, err := s.deps.Tenants.Create(ctx, repository.CreateTenantInput{
		Name:    in.Name,
		Domain:  in.Domain,
		Address: in.Address,
		Phone:   in.Phone,
	})
	if err != nil {
		if repository.IsConflict(err) {
			return nil, errDomainTaken
		}
		return nil, internal(log, "create tenant failed", err)
	}
	log.Info("tenant created", logger.TenantID(t.ID))
	return t, nil
}

func (s *service) Get(ctx context.Context, id string) (*repository.Tenant, error) {
	t, err := s.deps.Tenants.FindByID(ctx, id)
	if err != nil {
		return nil, internal(s.log(ctx, "Get"), "find tenant failed", err)
	}
	if t == nil {
		return nil, errors.ErrTenantNotFound
	}
	return t, nil
}

func (s *service) List(ctx context.Context, page, limit int) (*tenantsdto.ListTenantsResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset, err := dto.Offset(page, limit)
	if err != nil {
		return nil, err
	}
	list, total, err := s.deps.Tenants.List(ctx, limit, offset)
	if err != nil {
		return nil, internal(s.log(ctx, "List"), "list tenants failed", err)
	}
	return &tenantsdto.ListTenantsResponse{
		Data:       tenantsdto.ToTenantResponses(list),
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: dto.TotalPages(total, limit),
	}, nil
}

// Update aplica un patch parcial. Patch vacío => 400.
func (s *service) Update(ctx context.Context, id string, in tenantsdto.UpdateTenantRequest) (*repository.Tenant, error) {
	log := s.log(ctx, "Update").With(logger.TenantID(id))
	if in.Empty() {
		return nil, errors.ErrEmptyPatch
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	t, err := s.deps.Tenants.Update(ctx, id, repository.UpdateTenantInput{
		Name:    in.Name,
		Domain:  in.Domain,
		Address: in.Address,
		Phone:   in.Phone,
	})
	if err != nil {
		if repository.IsConflict(err) {
			return nil, errDomainTaken
		}
		return nil, internal(log, "update tenant failed", err)
	}
	if t == nil {
		return nil, errors.ErrTenantNotFound
	}
	log.Info("tenant updated")
	return t, nil
}

// Delete borra el tenant. Si tiene usuarios y detach=false devuelve
// TENANT_HAS_USERS; con detach=true los usuarios quedan sin tenant.
func (s *service) Delete(ctx context.Context, id string, detach bool) error {
	log := s.log(ctx, "Delete").With(logger.TenantID(id), logger.Bool("detach", detach))

	ok, err := s.deps.Tenants.Delete(ctx, id, detach)
	if err != nil {
		if repository.IsForeignKey(err) {
			n, cerr := s.deps.Users.CountByTenant(ctx, id)
			if cerr != nil {
				log.Warn("count users failed", logger.Err(cerr))
				return errors.ErrTenantHasUsers.WithDetail("retry with ?detach=true to unassign them")
			}
			return errors.ErrTenantHasUsers.WithDetailf("%d user(s) assigned; retry with ?detach=true to unassign them", n)
		}
		return internal(log, "delete tenant failed", err)
	}
	if !ok {
		return errors.ErrTenantNotFound
	}
	audit.Log(ctx, audit.TenantDeleted, logger.TenantID(id), logger.Bool("detach", detach))
	return nil
}
