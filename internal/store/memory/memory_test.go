package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/tenantauth/internal/domain/repository"
	"github.com/dropDatabas3/tenantauth/internal/domain/types"
)

func TestEmailUniquenessIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	users := New().Users()

	_, err := users.Create(ctx, repository.CreateUserInput{Name: "Ann Lee", Email: "a@x.com", PasswordHash: "h"})
	require.NoError(t, err)

	_, err = users.Create(ctx, repository.CreateUserInput{Name: "Other", Email: "A@X.COM", PasswordHash: "h"})
	assert.ErrorIs(t, err, repository.ErrConflict)

	u, err := users.FindByEmail(ctx, "A@x.Com")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, types.RoleCustomer, u.Role)
}

func TestFindReturnsNilWhenAbsent(t *testing.T) {
	ctx := context.Background()
	s := New()

	u, err := s.Users().FindByID(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, u)

	tn, err := s.Tenants().FindByID(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, tn)

	rt, err := s.Tokens().FindByIDAndUser(ctx, "missing", "u")
	require.NoError(t, err)
	assert.Nil(t, rt)
}

func TestDeleteUserCascadesRefreshTokens(t *testing.T) {
	ctx := context.Background()
	s := New()
	u, err := s.Users().Create(ctx, repository.CreateUserInput{Name: "Ann Lee", Email: "a@x.com"})
	require.NoError(t, err)

	rt, err := s.Tokens().Create(ctx, u.ID, time.Now().Add(time.Hour))
	require.NoError(t, err)

	deleted, err := s.Users().Delete(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, deleted)

	found, err := s.Tokens().FindByIDAndUser(ctx, rt.ID, u.ID)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestRefreshTokenExpiryAndOwnership(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := New(WithClock(func() time.Time { return now }))
	u, _ := s.Users().Create(ctx, repository.CreateUserInput{Name: "Ann Lee", Email: "a@x.com"})

	rt, err := s.Tokens().Create(ctx, u.ID, now.Add(time.Minute))
	require.NoError(t, err)

	other, err := s.Tokens().FindByIDAndUser(ctx, rt.ID, "someone-else")
	require.NoError(t, err)
	assert.Nil(t, other, "record must match the owning user")

	now = now.Add(2 * time.Minute)
	expired, err := s.Tokens().FindByIDAndUser(ctx, rt.ID, u.ID)
	require.NoError(t, err)
	assert.Nil(t, expired)

	n, err := s.Tokens().DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestTenantDeleteRejectsOrDetaches(t *testing.T) {
	ctx := context.Background()
	s := New()
	tn, err := s.Tenants().Create(ctx, repository.CreateTenantInput{Name: "Acme", Address: "Main street 1", Phone: "0123456789"})
	require.NoError(t, err)
	u, err := s.Users().Create(ctx, repository.CreateUserInput{
		Name: "Bo M", Email: "m@x.com", Role: types.RoleManager, TenantID: &tn.ID,
	})
	require.NoError(t, err)

	ok, err := s.Tenants().Delete(ctx, tn.ID, false)
	assert.ErrorIs(t, err, repository.ErrForeignKey)
	assert.False(t, ok)

	ok, err = s.Tenants().Delete(ctx, tn.ID, true)
	require.NoError(t, err)
	assert.True(t, ok)

	after, _ := s.Users().FindByID(ctx, u.ID)
	require.NotNil(t, after)
	assert.Nil(t, after.TenantID)
}

func TestCreateUserRequiresExistingTenant(t *testing.T) {
	missing := "nope"
	_, err := New().Users().Create(context.Background(), repository.CreateUserInput{
		Name: "Bo M", Email: "m@x.com", Role: types.RoleManager, TenantID: &missing,
	})
	assert.ErrorIs(t, err, repository.ErrForeignKey)
}

func TestListPaginatesNewestFirst(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := New(WithClock(func() time.Time { return now }))
	for _, e := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		_, err := s.Users().Create(ctx, repository.CreateUserInput{Name: e, Email: e, Role: types.RoleManager})
		require.NoError(t, err)
		now = now.Add(time.Minute)
	}

	got, total, err := s.Users().List(ctx, repository.ListUsersFilter{Role: types.RoleManager, Limit: 2, Offset: 0})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, got, 2)
	assert.Equal(t, "c@x.com", got[0].Email)

	got, _, err = s.Users().List(ctx, repository.ListUsersFilter{Role: types.RoleManager, Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a@x.com", got[0].Email)

	got, _, err = s.Users().List(ctx, repository.ListUsersFilter{Role: types.RoleManager, Limit: 10, Offset: -10})
	require.NoError(t, err)
	assert.Empty(t, got)

	tenants, _, err := s.Tenants().List(ctx, 10, -10)
	require.NoError(t, err)
	assert.Empty(t, tenants)
}

func TestStoreSatisfiesRepositories(t *testing.T) {
	s := New()
	var _ repository.UserRepository = s.Users()
	var _ repository.TenantRepository = s.Tenants()
	var _ repository.TokenRepository = s.Tokens()
}
