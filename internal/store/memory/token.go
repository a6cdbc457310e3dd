package memory

import (
	"context"
	"time"

	"github.com/dropDatabas3/tenantauth/internal/domain/repository"
)

// TokenRepo implementa repository.TokenRepository.
type TokenRepo struct{ s *Store }

func (r *TokenRepo) Create(ctx context.Context, userID string, expiresAt time.Time) (*repository.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[userID]; !ok {
		return nil, repository.ErrForeignKey
	}
	now := r.s.now().UTC()
	rt := repository.RefreshToken{
		ID:        r.s.newID(),
		UserID:    userID,
		ExpiresAt: expiresAt.UTC(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.s.tokens[rt.ID] = rt
	out := rt
	return &out, nil
}

func (r *TokenRepo) FindByIDAndUser(ctx context.Context, id, userID string) (*repository.RefreshToken, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rt, ok := r.s.tokens[id]
	if !ok || rt.UserID != userID || !rt.ExpiresAt.After(r.s.now()) {
		return nil, nil
	}
	out := rt
	return &out, nil
}

func (r *TokenRepo) Delete(ctx context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tokens[id]; !ok {
		return false, nil
	}
	delete(r.s.tokens, id)
	return true, nil
}

func (r *TokenRepo) DeleteByUser(ctx context.Context, userID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for id, rt := range r.s.tokens {
		if rt.UserID == userID {
			delete(r.s.tokens, id)
			n++
		}
	}
	return n, nil
}

func (r *TokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for id, rt := range r.s.tokens {
		if !rt.ExpiresAt.After(now) {
			delete(r.s.tokens, id)
			n++
		}
	}
	return n, nil
}
