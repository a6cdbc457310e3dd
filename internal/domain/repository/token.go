package repository

import (
	"context"
	"time"
)

// RefreshToken es el registro que respalda un refresh token emitido.
// Su ID es el jti del token: si el registro no existe, el token está revocado.
type RefreshToken struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TokenRepository define operaciones sobre refresh tokens.
type TokenRepository interface {
	// Create persiste un registro nuevo con el vencimiento dado.
	Create(ctx context.Context, userID string, expiresAt time.Time) (*RefreshToken, error)

	// FindByIDAndUser retorna (nil, nil) si no existe o si ya venció.
	FindByIDAndUser(ctx context.Context, id, userID string) (*RefreshToken, error)

	// Delete revoca un token. Retorna false si no existía.
	Delete(ctx context.Context, id string) (bool, error)

	// DeleteByUser revoca todos los tokens de un usuario.
	DeleteByUser(ctx context.Context, userID string) (int, error)

	// DeleteExpired elimina registros vencidos antes de now.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
