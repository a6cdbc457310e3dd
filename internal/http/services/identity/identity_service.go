// Package identity contiene el service de usuarios: registro, credenciales y
// administración.
package identity

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dropDatabas3/tenantauth/internal/audit"
	"github.com/dropDatabas3/tenantauth/internal/domain/repository"
	"github.com/dropDatabas3/tenantauth/internal/domain/types"
	"github.com/dropDatabas3/tenantauth/internal/http/dto"
	authdto "github.com/dropDatabas3/tenantauth/internal/http/dto/auth"
	usersdto "github.com/dropDatabas3/tenantauth/internal/http/dto/users"
	"github.com/dropDatabas3/tenantauth/internal/http/errors"
	"github.com/dropDatabas3/tenantauth/internal/metrics"
	"github.com/dropDatabas3/tenantauth/internal/observability/logger"
	"github.com/dropDatabas3/tenantauth/internal/security/password"
)

// Service define las operaciones sobre usuarios.
type Service interface {
	Register(ctx context.Context, in authdto.RegisterRequest) (*repository.User, error)
	CreateManagedUser(ctx context.Context, in usersdto.CreateUserRequest) (*repository.User, error)
	Authenticate(ctx context.Context, in authdto.LoginRequest) (*repository.User, error)
	GetUser(ctx context.Context, id string) (*repository.User, error)
	ListUsers(ctx context.Context, q usersdto.ListQuery) (*usersdto.ListUsersResponse, error)
	UpdateUser(ctx context.Context, id string, in usersdto.UpdateUserRequest) (*repository.User, error)
	DeleteUser(ctx context.Context, id string) (*repository.User, error)
}

// Deps contiene las dependencias del service.
type Deps struct {
	Users   repository.UserRepository
	Tenants repository.TenantRepository
	Hasher  password.Hasher
	Policy  password.Policy
	Metrics *metrics.Metrics // opcional
	Now     func() time.Time // opcional
}

type service struct {
	deps Deps

	// hash de relleno para emails inexistentes (mismo costo de Verify)
	dummyOnce sync.Once
	dummyHash string
}

// NewService crea el service de identidad.
func NewService(deps Deps) Service {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &service{deps: deps}
}

func (s *service) log(ctx context.Context, op string) *zap.Logger {
	return logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("identity"),
		logger.Op(op),
	)
}

// internal loguea la causa y devuelve el 500 genérico.
func internal(log *zap.Logger, msg string, err error) error {
	log.Error(msg, logger.Err(err))
	return errors.ErrInternalServerError.WithCause(err)
}

func (s *service) checkPassword(plain string) error {
	reasons := s.deps.Policy.Validate(plain)
	if len(reasons) == 0 {
		return nil
	}
	msg := "does not meet the password policy"
	switch reasons[0] {
	case "too_short":
		msg = "is too short"
	case "too_common":
		msg = "is too common"
	}
	return errors.ErrValidation.WithFields(errors.FieldError{Field: "password", Location: "body", Message: msg})
}

// ensureEmailFree falla con EMAIL_IN_USE si el email pertenece a otro usuario.
func (s *service) ensureEmailFree(ctx context.Context, log *zap.Logger, email, selfID string) error {
	existing, err := s.deps.Users.FindByEmail(ctx, email)
	if err != nil {
		return internal(log, "find by email failed", err)
	}
	if existing != nil && existing.ID != selfID {
		return errors.ErrEmailAlreadyInUse
	}
	return nil
}

func (s *service) hash(log *zap.Logger, plain string) (string, error) {
	h, err := s.deps.Hasher.Hash(plain)
	if err != nil {
		return "", internal(log, "password hash failed", err)
	}
	return h, nil
}

// Register crea un usuario customer.
func (s *service) Register(ctx context.Context, in authdto.RegisterRequest) (*repository.User, error) {
	log := s.log(ctx, "Register")
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	if err := s.ensureEmailFree(ctx, log, in.Email, ""); err != nil {
		return nil, err
	}
	if err := s.checkPassword(in.Password); err != nil {
		return nil, err
	}
	phc, err := s.hash(log, in.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.deps.Users.Create(ctx, repository.CreateUserInput{
		Name:         types.JoinName(in.FirstName, in.LastName),
		Email:        in.Email,
		PasswordHash: phc,
		Role:         types.RoleCustomer,
	})
	if err != nil {
		if repository.IsConflict(err) {
			return nil, errors.ErrEmailAlreadyInUse
		}
		return nil, internal(log, "user creation failed", err)
	}

	audit.Log(ctx, audit.UserRegistered, logger.UserID(user.ID))
	return user, nil
}

// CreateManagedUser crea un manager asociado a un tenant existente.
func (s *service) CreateManagedUser(ctx context.Context, in usersdto.CreateUserRequest) (*repository.User, error) {
	log := s.log(ctx, "CreateManagedUser")
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	log = log.With(logger.TenantID(in.TenantID))

	tenant, err := s.deps.Tenants.FindByID(ctx, in.TenantID)
	if err != nil {
		return nil, internal(log, "find tenant failed", err)
	}
	if tenant == nil {
		return nil, errors.ErrTenantNotFound
	}
	if err := s.ensureEmailFree(ctx, log, in.Email, ""); err != nil {
		return nil, err
	}
	if err := s.checkPassword(in.Password); err != nil {
		return nil, err
	}
	phc, err := s.hash(log, in.Password)
	if err != nil {
		return nil, err
	}

	tenantID := tenant.ID
	user, err := s.deps.Users.Create(ctx, repository.CreateUserInput{
		Name:         types.JoinName(in.FirstName, in.LastName),
		Email:        in.Email,
		PasswordHash: phc,
		Role:         types.RoleManager,
		TenantID:     &tenantID,
	})
	switch {
	case err == nil:
	case repository.IsConflict(err):
		return nil, errors.ErrEmailAlreadyInUse
	case repository.IsForeignKey(err):
		// el tenant se borró entre el lookup y el insert
		return nil, errors.ErrTenantNotFound
	default:
		return nil, internal(log, "user creation failed", err)
	}

	audit.Log(ctx, audit.UserCreated, logger.UserID(user.ID), logger.TenantID(in.TenantID))
	return user, nil
}

func (s *service) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.deps.Hasher.Hash("dummy-password-for-timing")
	})
	return s.dummyHash
}

// Authenticate verifica email+password. Cualquier fallo de credenciales
// produce el mismo error, sin distinguir email inexistente de password incorrecto.
func (s *service) Authenticate(ctx context.Context, in authdto.LoginRequest) (*repository.User, error) {
	log := s.log(ctx, "Authenticate")
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	user, err := s.deps.Users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, internal(log, "find by email failed", err)
	}
	if user == nil || user.PasswordHash == nil {
		_ = s.deps.Hasher.Verify(in.Password, s.dummy())
		s.deps.Metrics.ObserveLogin(metrics.LoginFailure)
		audit.Log(ctx, audit.LoginFailed, logger.Email(in.Email), logger.String("reason", "unknown_user"))
		return nil, errors.ErrInvalidCredentials
	}
	if !s.deps.Hasher.Verify(in.Password, *user.PasswordHash) {
		s.deps.Metrics.ObserveLogin(metrics.LoginFailure)
		audit.Log(ctx, audit.LoginFailed, logger.UserID(user.ID), logger.String("reason", "bad_password"))
		return nil, errors.ErrInvalidCredentials
	}

	now := s.deps.Now().UTC()
	if err := s.deps.Users.TouchSignIn(ctx, user.ID, now); err != nil {
		// no bloquea el login
		log.Warn("touch sign-in failed", logger.UserID(user.ID), logger.Err(err))
	} else {
		user.LastSignInAt = &now
	}

	s.deps.Metrics.ObserveLogin(metrics.LoginSuccess)
	audit.Log(ctx, audit.LoginSucceeded, logger.UserID(user.ID))
	return user, nil
}

func (s *service) GetUser(ctx context.Context, id string) (*repository.User, error) {
	user, err := s.deps.Users.FindByID(ctx, id)
	if err != nil {
		return nil, internal(s.log(ctx, "GetUser"), "find user failed", err)
	}
	if user == nil {
		return nil, errors.ErrUserNotFound
	}
	return user, nil
}

// ListUsers por defecto lista managers.
func (s *service) ListUsers(ctx context.Context, q usersdto.ListQuery) (*usersdto.ListUsersResponse, error) {
	log := s.log(ctx, "ListUsers")
	if q.Role == "" {
		q.Role = types.RoleManager
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 10
	}

	offset, err := dto.Offset(q.Page, q.Limit)
	if err != nil {
		return nil, err
	}

	list, total, err := s.deps.Users.List(ctx, repository.ListUsersFilter{
		Role:   q.Role,
		Name:   q.Name,
		Email:  q.Email,
		Limit:  q.Limit,
		Offset: offset,
	})
	if err != nil {
		return nil, internal(log, "list users failed", err)
	}

	return &usersdto.ListUsersResponse{
		Data:       usersdto.ToUserResponses(list),
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: dto.TotalPages(total, q.Limit),
	}, nil
}

// UpdateUser aplica un patch parcial.
func (s *service) UpdateUser(ctx context.Context, id string, in usersdto.UpdateUserRequest) (*repository.User, error) {
	log := s.log(ctx, "UpdateUser").With(logger.UserID(id))
	if in.Empty() {
		return nil, errors.ErrEmptyPatch
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	current, err := s.deps.Users.FindByID(ctx, id)
	if err != nil {
		return nil, internal(log, "find user failed", err)
	}
	if current == nil {
		return nil, errors.ErrUserNotFound
	}

	var patch repository.UpdateUserInput
	if in.FirstName != nil || in.LastName != nil {
		name := types.MergeName(current.Name, in.FirstName, in.LastName)
		patch.Name = &name
	}
	if in.Email != nil && *in.Email != current.Email {
		if err := s.ensureEmailFree(ctx, log, *in.Email, id); err != nil {
			return nil, err
		}
		patch.Email = in.Email
	}
	if in.Password != nil {
		if err := s.checkPassword(*in.Password); err != nil {
			return nil, err
		}
		phc, err := s.hash(log, *in.Password)
		if err != nil {
			return nil, err
		}
		patch.PasswordHash = &phc
	}
	if in.Role != nil {
		role, _ := types.ParseRole(*in.Role)
		patch.Role = &role
	}
	if in.TenantID != nil {
		if *in.TenantID == "" {
			patch.ClearTenant = true
		} else {
			tenant, err := s.deps.Tenants.FindByID(ctx, *in.TenantID)
			if err != nil {
				return nil, internal(log, "find tenant failed", err)
			}
			if tenant == nil {
				return nil, errors.ErrTenantNotFound
			}
			patch.TenantID = in.TenantID
		}
	}

	updated, err := s.deps.Users.Update(ctx, id, patch)
	switch {
	case err == nil:
	case repository.IsConflict(err):
		return nil, errors.ErrEmailAlreadyInUse
	case repository.IsForeignKey(err):
		return nil, errors.ErrTenantNotFound
	default:
		return nil, internal(log, "update user failed", err)
	}
	if updated == nil {
		return nil, errors.ErrUserNotFound
	}

	log.Info("user updated")
	return updated, nil
}

// DeleteUser borra el usuario; sus refresh tokens caen en cascada.
func (s *service) DeleteUser(ctx context.Context, id string) (*repository.User, error) {
	log := s.log(ctx, "DeleteUser").With(logger.UserID(id))
	deleted, err := s.deps.Users.Delete(ctx, id)
	if err != nil {
		return nil, internal(log, "delete user failed", err)
	}
	if deleted == nil {
		return nil, errors.ErrUserNotFound
	}
	audit.Log(ctx, audit.UserDeleted, logger.UserID(id))
	return deleted, nil
}
