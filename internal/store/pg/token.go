package pg

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/tenantauth/internal/domain/repository"
)

// TokenRepo implementa repository.TokenRepository sobre refresh_tokens.
type TokenRepo struct{ db *sql.DB }

// NewTokenRepo crea el repositorio de refresh tokens.
func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{db: db} }

func (r *TokenRepo) Create(ctx context.Context, userID string, expiresAt time.Time) (*repository.RefreshToken, error) {
	const query = `
		INSERT INTO refresh_tokens (id, user_id, expires_at)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at
	`
	rt := &repository.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: expiresAt.UTC(),
	}
	if err := r.db.QueryRowContext(ctx, query, rt.ID, rt.UserID, rt.ExpiresAt).Scan(&rt.CreatedAt, &rt.UpdatedAt); err != nil {
		return nil, mapError("insert refresh token", err)
	}
	return rt, nil
}

func (r *TokenRepo) FindByIDAndUser(ctx context.Context, id, userID string) (*repository.RefreshToken, error) {
	const query = `
		SELECT id, user_id, expires_at, created_at, updated_at
		FROM refresh_tokens
		WHERE id = $1 AND user_id = $2 AND expires_at > NOW()
	`
	var rt repository.RefreshToken
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(&rt.ID, &rt.UserID, &rt.ExpiresAt, &rt.CreatedAt, &rt.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError("find refresh token", err)
	}
	return &rt, nil
}

func (r *TokenRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE id = $1`, id)
	if isInvalidID(err) {
		return false, nil
	}
	n, err := affected(res, err, "delete refresh token")
	return n > 0, err
}

func (r *TokenRepo) DeleteByUser(ctx context.Context, userID string) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	if isInvalidID(err) {
		return 0, nil
	}
	return affected(res, err, "delete refresh tokens by user")
}

func (r *TokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= $1`, now.UTC())
	return affected(res, err, "delete expired refresh tokens")
}

func affected(res sql.Result, err error, op string) (int, error) {
	if err != nil {
		return 0, mapError(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, mapError(op, err)
	}
	return int(n), nil
}
