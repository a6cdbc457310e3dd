package identity

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/tenantauth/internal/domain/repository"
	"github.com/dropDatabas3/tenantauth/internal/domain/types"
	authdto "github.com/dropDatabas3/tenantauth/internal/http/dto/auth"
	usersdto "github.com/dropDatabas3/tenantauth/internal/http/dto/users"
	"github.com/dropDatabas3/tenantauth/internal/http/errors"
	"github.com/dropDatabas3/tenantauth/internal/metrics"
	"github.com/dropDatabas3/tenantauth/internal/security/password"
	"github.com/dropDatabas3/tenantauth/internal/store/memory"
)

type fixture struct {
	svc     Service
	store   *memory.Store
	metrics *metrics.Metrics
	hasher  password.Hasher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memory.New()
	h, err := password.New(password.Options{BcryptCost: 4})
	require.NoError(t, err)
	m := metrics.New()
	svc := NewService(Deps{
		Users:   st.Users(),
		Tenants: st.Tenants(),
		Hasher:  h,
		Policy:  password.Policy{MinLength: 8, Blacklist: password.NewBlacklist("password123")},
		Metrics: m,
	})
	return &fixture{svc: svc, store: st, metrics: m, hasher: h}
}

func ptr[T any](v T) *T { return &v }

func register(t *testing.T, f *fixture, email string) *repository.User {
	t.Helper()
	u, err := f.svc.Register(context.Background(), authdto.RegisterRequest{
		FirstName: "Ada", LastName: "Lovelace", Email: email, Password: "analytical-engine",
	})
	require.NoError(t, err)
	return u
}

func newTenant(t *testing.T, f *fixture) *repository.Tenant {
	t.Helper()
	tn, err := f.store.Tenants().Create(context.Background(), repository.CreateTenantInput{
		Name: "Acme", Address: "1 Main St", Phone: "+1 555 010 0200",
	})
	require.NoError(t, err)
	return tn
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := register(t, f, "  Ada@Example.COM ")
	assert.Equal(t, types.RoleCustomer, u.Role)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, "Ada Lovelace", u.Name)
	require.NotNil(t, u.PasswordHash)
	assert.NotEqual(t, "analytical-engine", *u.PasswordHash)
	assert.True(t, f.hasher.Verify("analytical-engine", *u.PasswordHash))

	t.Run("email taken", func(t *testing.T) {
		_, err := f.svc.Register(ctx, authdto.RegisterRequest{
			FirstName: "Other", LastName: "Person", Email: "ada@example.com", Password: "another-pass",
		})
		assert.ErrorIs(t, err, errors.ErrEmailAlreadyInUse)

		_, total, err := f.store.Users().List(ctx, repository.ListUsersFilter{Role: types.RoleCustomer})
		require.NoError(t, err)
		assert.Equal(t, 1, total, "no new record on duplicate email")
	})

	t.Run("validation", func(t *testing.T) {
		_, err := f.svc.Register(ctx, authdto.RegisterRequest{Email: "bad", Password: "short"})
		require.ErrorIs(t, err, errors.ErrValidation)
		fields := map[string]bool{}
		for _, fe := range errors.FromError(err).Fields {
			fields[fe.Field] = true
		}
		assert.True(t, fields["firstName"])
		assert.True(t, fields["lastName"])
		assert.True(t, fields["email"])
		assert.True(t, fields["password"])
	})

	t.Run("blacklisted password", func(t *testing.T) {
		_, err := f.svc.Register(ctx, authdto.RegisterRequest{
			FirstName: "A", LastName: "B", Email: "weak@example.com", Password: "password123",
		})
		require.ErrorIs(t, err, errors.ErrValidation)
		assert.Equal(t, "password", errors.FromError(err).Fields[0].Field)
	})
}

func TestCreateManagedUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tn := newTenant(t, f)

	in := usersdto.CreateUserRequest{
		RegisterRequest: authdto.RegisterRequest{FirstName: "Mia", LastName: "Manager", Email: "mia@acme.test", Password: "manager-pass"},
		TenantID:        tn.ID,
	}
	u, err := f.svc.CreateManagedUser(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, types.RoleManager, u.Role)
	require.NotNil(t, u.TenantID)
	assert.Equal(t, tn.ID, *u.TenantID)

	_, err = f.svc.CreateManagedUser(ctx, in)
	assert.ErrorIs(t, err, errors.ErrEmailAlreadyInUse)

	in.Email = "other@acme.test"
	in.TenantID = "7b0c5a53-40a2-4f39-9d7c-1d8f0c6b7a11"
	_, err = f.svc.CreateManagedUser(ctx, in)
	assert.ErrorIs(t, err, errors.ErrTenantNotFound)
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := register(t, f, "ada@example.com")

	got, err := f.svc.Authenticate(ctx, authdto.LoginRequest{Email: "ADA@example.com", Password: "analytical-engine"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	require.NotNil(t, got.LastSignInAt)

	stored, err := f.store.Users().FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastSignInAt)
	assert.WithinDuration(t, time.Now(), *stored.LastSignInAt, time.Minute)

	_, errWrong := f.svc.Authenticate(ctx, authdto.LoginRequest{Email: "ada@example.com", Password: "wrong-password"})
	_, errUnknown := f.svc.Authenticate(ctx, authdto.LoginRequest{Email: "ghost@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, errWrong, errors.ErrInvalidCredentials)
	assert.ErrorIs(t, errUnknown, errors.ErrInvalidCredentials)
	assert.Equal(t, errWrong.Error(), errUnknown.Error())

	// usuario sin password (identidad externa)
	_, err = f.store.Users().Create(ctx, repository.CreateUserInput{Name: "No Pass", Email: "nopass@example.com", Role: types.RoleCustomer})
	require.NoError(t, err)
	_, err = f.svc.Authenticate(ctx, authdto.LoginRequest{Email: "nopass@example.com", Password: "whatever-1"})
	assert.ErrorIs(t, err, errors.ErrInvalidCredentials)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Logins.WithLabelValues(metrics.LoginSuccess)))
	assert.Equal(t, 3.0, testutil.ToFloat64(f.metrics.Logins.WithLabelValues(metrics.LoginFailure)))
}

func TestListUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tn := newTenant(t, f)

	register(t, f, "customer@example.com")
	for _, e := range []string{"m1@acme.test", "m2@acme.test", "m3@acme.test"} {
		_, err := f.svc.CreateManagedUser(ctx, usersdto.CreateUserRequest{
			RegisterRequest: authdto.RegisterRequest{FirstName: "M", LastName: "Gr", Email: e, Password: "manager-pass"},
			TenantID:        tn.ID,
		})
		require.NoError(t, err)
	}

	res, err := f.svc.ListUsers(ctx, usersdto.ListQuery{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 2, res.Limit)
	assert.Equal(t, 2, res.TotalPages)
	assert.Len(t, res.Data, 2)
	for _, u := range res.Data {
		assert.Equal(t, types.RoleManager, u.Role)
	}

	res, err = f.svc.ListUsers(ctx, usersdto.ListQuery{Role: types.RoleCustomer})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, 10, res.Limit)

	res, err = f.svc.ListUsers(ctx, usersdto.ListQuery{Email: "M2@ACME"})
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	assert.Equal(t, "m2@acme.test", res.Data[0].Email)
}

func TestUpdateUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := register(t, f, "ada@example.com")
	other := register(t, f, "other@example.com")
	tn := newTenant(t, f)

	t.Run("empty patch", func(t *testing.T) {
		_, err := f.svc.UpdateUser(ctx, u.ID, usersdto.UpdateUserRequest{})
		assert.ErrorIs(t, err, errors.ErrEmptyPatch)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := f.svc.UpdateUser(ctx, "7b0c5a53-40a2-4f39-9d7c-1d8f0c6b7a11", usersdto.UpdateUserRequest{FirstName: ptr("X")})
		assert.ErrorIs(t, err, errors.ErrUserNotFound)
	})

	t.Run("merge name keeps other half", func(t *testing.T) {
		got, err := f.svc.UpdateUser(ctx, u.ID, usersdto.UpdateUserRequest{LastName: ptr("King")})
		require.NoError(t, err)
		assert.Equal(t, "Ada King", got.Name)
	})

	t.Run("same email is not a conflict", func(t *testing.T) {
		_, err := f.svc.UpdateUser(ctx, u.ID, usersdto.UpdateUserRequest{Email: ptr("ADA@example.com")})
		assert.NoError(t, err)
	})

	t.Run("email of another user", func(t *testing.T) {
		_, err := f.svc.UpdateUser(ctx, u.ID, usersdto.UpdateUserRequest{Email: ptr(other.Email)})
		assert.ErrorIs(t, err, errors.ErrEmailAlreadyInUse)
	})

	t.Run("password is re-hashed", func(t *testing.T) {
		got, err := f.svc.UpdateUser(ctx, u.ID, usersdto.UpdateUserRequest{Password: ptr("brand-new-pass")})
		require.NoError(t, err)
		require.NotNil(t, got.PasswordHash)
		assert.True(t, f.hasher.Verify("brand-new-pass", *got.PasswordHash))
		assert.False(t, f.hasher.Verify("analytical-engine", *got.PasswordHash))
	})

	t.Run("invalid role", func(t *testing.T) {
		_, err := f.svc.UpdateUser(ctx, u.ID, usersdto.UpdateUserRequest{Role: ptr("root")})
		assert.ErrorIs(t, err, errors.ErrValidation)
	})

	t.Run("assign and clear tenant", func(t *testing.T) {
		got, err := f.svc.UpdateUser(ctx, u.ID, usersdto.UpdateUserRequest{Role: ptr("manager"), TenantID: ptr(tn.ID)})
		require.NoError(t, err)
		assert.Equal(t, types.RoleManager, got.Role)
		require.NotNil(t, got.TenantID)

		got, err = f.svc.UpdateUser(ctx, u.ID, usersdto.UpdateUserRequest{TenantID: ptr("")})
		require.NoError(t, err)
		assert.Nil(t, got.TenantID)
	})

	t.Run("unknown tenant", func(t *testing.T) {
		_, err := f.svc.UpdateUser(ctx, u.ID, usersdto.UpdateUserRequest{TenantID: ptr("7b0c5a53-40a2-4f39-9d7c-1d8f0c6b7a11")})
		assert.ErrorIs(t, err, errors.ErrTenantNotFound)
	})
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := register(t, f, "ada@example.com")

	rt, err := f.store.Tokens().Create(ctx, u.ID, time.Now().Add(time.Hour))
	require.NoError(t, err)

	deleted, err := f.svc.DeleteUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, deleted.ID)

	found, err := f.store.Tokens().FindByIDAndUser(ctx, rt.ID, u.ID)
	require.NoError(t, err)
	assert.Nil(t, found)

	_, err = f.svc.DeleteUser(ctx, u.ID)
	assert.ErrorIs(t, err, errors.ErrUserNotFound)
	_, err = f.svc.GetUser(ctx, u.ID)
	assert.ErrorIs(t, err, errors.ErrUserNotFound)
}

func TestListUsers_Empty(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.ListUsers(context.Background(), usersdto.ListQuery{})
	require.NoError(t, err)
	assert.NotNil(t, res.Data)
	assert.Empty(t, res.Data)
	assert.Equal(t, 0, res.Total)
	assert.Equal(t, 0, res.TotalPages)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 10, res.Limit)
}

func TestListUsers_PageOutOfRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	register(t, f, "ada@example.com")

	_, err := f.svc.ListUsers(ctx, usersdto.ListQuery{Role: types.RoleCustomer, Page: math.MaxInt, Limit: 10})
	assert.ErrorIs(t, err, errors.ErrValidation)

	// página válida pero más allá del final: vacía, sin error
	res, err := f.svc.ListUsers(ctx, usersdto.ListQuery{Role: types.RoleCustomer, Page: 50, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, res.Data)
	assert.Equal(t, 1, res.Total)
}
