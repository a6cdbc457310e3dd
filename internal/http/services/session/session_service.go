// Package session emite, rota y revoca las credenciales de sesión
// (access + refresh). El registro de refresh token es la fuente de verdad
// de revocación: sin registro, el token no vale aunque la firma sea válida.
package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dropDatabas3/tenantauth/internal/audit"
	"github.com/dropDatabas3/tenantauth/internal/domain/repository"
	"github.com/dropDatabas3/tenantauth/internal/http/errors"
	jwtx "github.com/dropDatabas3/tenantauth/internal/jwt"
	"github.com/dropDatabas3/tenantauth/internal/metrics"
	"github.com/dropDatabas3/tenantauth/internal/observability/logger"
)

// Session es el par de tokens emitido para un usuario.
type Session struct {
	UserID           string
	AccessToken      string
	AccessExpiresAt  time.Time
	AccessTTL        time.Duration
	RefreshToken     string
	RefreshID        string
	RefreshExpiresAt time.Time
	RefreshTTL       time.Duration
}

// Service define el ciclo de vida de la sesión.
type Service interface {
	// PersistRefreshToken guarda el registro (expires_at = now + refresh TTL).
	PersistRefreshToken(ctx context.Context, user *repository.User) (*repository.RefreshToken, error)
	// IssueSession persiste el registro y recién después firma ambos tokens.
	IssueSession(ctx context.Context, user *repository.User) (*Session, error)
	// ValidateRefresh verifica firma HS256 + registro vigente. Falla cerrado.
	ValidateRefresh(ctx context.Context, raw string) (*jwtx.Claims, error)
	// Refresh rota: borra el registro actual y emite una sesión nueva.
	Refresh(ctx context.Context, userID, tokenID string) (*Session, error)
	// Logout revoca el registro indicado. Idempotente.
	Logout(ctx context.Context, tokenID string) error
	// Prune borra registros vencidos.
	Prune(ctx context.Context) (int, error)
}

type Deps struct {
	Tokens  repository.TokenRepository
	Users   repository.UserRepository
	Issuer  *jwtx.Issuer
	Parser  *jwtx.Parser
	Metrics *metrics.Metrics // opcional
	Now     func() time.Time // opcional
}

type service struct {
	deps Deps
}

func NewService(deps Deps) Service {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &service{deps: deps}
}

func (s *service) log(ctx context.Context, op string) *zap.Logger {
	return logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("session"),
		logger.Op(op),
	)
}

func internal(log *zap.Logger, msg string, err error) error {
	log.Error(msg, logger.Err(err))
	return errors.ErrInternalServerError.WithCause(err)
}

func (s *service) PersistRefreshToken(ctx context.Context, user *repository.User) (*repository.RefreshToken, error) {
	expiresAt := s.deps.Now().UTC().Add(s.deps.Issuer.RefreshTTL())
	rec, err := s.deps.Tokens.Create(ctx, user.ID, expiresAt)
	if err != nil {
		return nil, internal(s.log(ctx, "PersistRefreshToken").With(logger.UserID(user.ID)), "persist refresh token failed", err)
	}
	return rec, nil
}

func (s *service) IssueSession(ctx context.Context, user *repository.User) (*Session, error) {
	log := s.log(ctx, "IssueSession").With(logger.UserID(user.ID))

	rec, err := s.PersistRefreshToken(ctx, user)
	if err != nil {
		return nil, err
	}

	access, accessExp, err := s.deps.Issuer.IssueAccess(user.ID, user.Role)
	if err != nil {
		return nil, internal(log, "sign access token failed", err)
	}
	refresh, refreshExp, err := s.deps.Issuer.IssueRefresh(user.ID, user.Role, rec.ID)
	if err != nil {
		return nil, internal(log, "sign refresh token failed", err)
	}
	s.deps.Metrics.ObserveTokenIssued(metrics.TokenAccess)
	s.deps.Metrics.ObserveTokenIssued(metrics.TokenRefresh)

	log.Debug("session issued", logger.TokenID(rec.ID))
	return &Session{
		UserID:           user.ID,
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		AccessTTL:        s.deps.Issuer.AccessTTL(),
		RefreshToken:     refresh,
		RefreshID:        rec.ID,
		RefreshExpiresAt: refreshExp,
		RefreshTTL:       s.deps.Issuer.RefreshTTL(),
	}, nil
}

func (s *service) ValidateRefresh(ctx context.Context, raw string) (*jwtx.Claims, error) {
	log := s.log(ctx, "ValidateRefresh")

	claims, err := s.deps.Parser.ParseRefresh(raw)
	if err != nil {
		log.Debug("refresh token rejected", logger.Err(err))
		return nil, errors.ErrTokenInvalid
	}

	rec, err := s.deps.Tokens.FindByIDAndUser(ctx, claims.ID, claims.Subject)
	if err != nil {
		// fail-closed: sin poder confirmar el registro, el token no vale
		log.Warn("refresh lookup failed", logger.TokenID(claims.ID), logger.Err(err))
		return nil, errors.ErrTokenInvalid
	}
	if rec == nil {
		s.deps.Metrics.ObserveRefreshRevoked()
		audit.Log(ctx, audit.RefreshReused, logger.UserID(claims.Subject), logger.TokenID(claims.ID))
		return nil, errors.ErrTokenInvalid
	}
	return claims, nil
}

func (s *service) Refresh(ctx context.Context, userID, tokenID string) (*Session, error) {
	log := s.log(ctx, "Refresh").With(logger.UserID(userID), logger.TokenID(tokenID))

	deleted, err := s.deps.Tokens.Delete(ctx, tokenID)
	if err != nil {
		return nil, internal(log, "revoke refresh token failed", err)
	}
	if !deleted {
		// otro request ya lo rotó
		s.deps.Metrics.ObserveRefreshRevoked()
		return nil, errors.ErrTokenInvalid
	}

	user, err := s.deps.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, internal(log, "find user failed", err)
	}
	if user == nil {
		return nil, errors.ErrTokenInvalid
	}
	return s.IssueSession(ctx, user)
}

func (s *service) Logout(ctx context.Context, tokenID string) error {
	deleted, err := s.deps.Tokens.Delete(ctx, tokenID)
	if err != nil {
		return internal(s.log(ctx, "Logout").With(logger.TokenID(tokenID)), "revoke refresh token failed", err)
	}
	if deleted {
		audit.Log(ctx, audit.SessionRevoked, logger.TokenID(tokenID))
	}
	return nil
}

func (s *service) Prune(ctx context.Context) (int, error) {
	n, err := s.deps.Tokens.DeleteExpired(ctx, s.deps.Now().UTC())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log(ctx, "Prune").Info("expired refresh tokens pruned", logger.Count(n))
	}
	return n, nil
}
