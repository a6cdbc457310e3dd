package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/tenantauth/internal/domain/repository"
	"github.com/dropDatabas3/tenantauth/internal/domain/types"
	"github.com/dropDatabas3/tenantauth/internal/http/errors"
	jwtx "github.com/dropDatabas3/tenantauth/internal/jwt"
	"github.com/dropDatabas3/tenantauth/internal/metrics"
	"github.com/dropDatabas3/tenantauth/internal/store/memory"
)

var secret = []byte("0123456789abcdef0123456789abcdef")

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	svc     Service
	store   *memory.Store
	issuer  *jwtx.Issuer
	parser  *jwtx.Parser
	metrics *metrics.Metrics
	clock   *clock
	user    *repository.User
}

func newFixture(t *testing.T, tokens func(*memory.Store) repository.TokenRepository) *fixture {
	t.Helper()
	clk := &clock{t: time.Now()}
	st := memory.New(memory.WithClock(clk.Now))

	key, err := jwtx.GenerateRSAKey(2048)
	require.NoError(t, err)
	iss, err := jwtx.NewIssuer(jwtx.IssuerConfig{PrivateKey: key, RefreshSecret: secret, Now: clk.Now})
	require.NoError(t, err)
	parser := &jwtx.Parser{Issuer: iss.Issuer(), Keys: iss.StaticKeySet(), RefreshSecret: secret, Now: clk.Now}

	var repo repository.TokenRepository = st.Tokens()
	if tokens != nil {
		repo = tokens(st)
	}
	m := metrics.New()
	svc := NewService(Deps{Tokens: repo, Users: st.Users(), Issuer: iss, Parser: parser, Metrics: m, Now: clk.Now})

	u, err := st.Users().Create(context.Background(), repository.CreateUserInput{
		Name: "Ada Lovelace", Email: "ada@example.com", PasswordHash: "x", Role: types.RoleCustomer,
	})
	require.NoError(t, err)

	return &fixture{svc: svc, store: st, issuer: iss, parser: parser, metrics: m, clock: clk, user: u}
}

func TestIssueSession(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	s, err := f.svc.IssueSession(ctx, f.user)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, s.AccessTTL)
	assert.Equal(t, 30*24*time.Hour, s.RefreshTTL)

	access, err := f.parser.ParseAccess(ctx, s.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, access.Subject)
	assert.Equal(t, types.RoleCustomer, access.Role)
	assert.Equal(t, "auth-service", access.Issuer)

	refresh, err := f.parser.ParseRefresh(s.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, s.RefreshID, refresh.ID)

	// el jti del token es el id del registro persistido
	rec, err := f.store.Tokens().FindByIDAndUser(ctx, s.RefreshID, f.user.ID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.WithinDuration(t, f.clock.Now().Add(30*24*time.Hour), rec.ExpiresAt, time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.TokensIssued.WithLabelValues(metrics.TokenRefresh)))
}

type failingTokens struct {
	repository.TokenRepository
	createErr error
	findErr   error
}

func (f failingTokens) Create(ctx context.Context, userID string, exp time.Time) (*repository.RefreshToken, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.TokenRepository.Create(ctx, userID, exp)
}

func (f failingTokens) FindByIDAndUser(ctx context.Context, id, userID string) (*repository.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.TokenRepository.FindByIDAndUser(ctx, id, userID)
}

func TestIssueSession_NoTokensWithoutRecord(t *testing.T) {
	f := newFixture(t, func(st *memory.Store) repository.TokenRepository {
		return failingTokens{TokenRepository: st.Tokens(), createErr: assert.AnError}
	})

	s, err := f.svc.IssueSession(context.Background(), f.user)
	assert.Nil(t, s)
	assert.ErrorIs(t, err, errors.ErrInternalServerError)
	assert.Equal(t, 0.0, testutil.ToFloat64(f.metrics.TokensIssued.WithLabelValues(metrics.TokenAccess)))
}

func TestValidateRefresh(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	s, err := f.svc.IssueSession(ctx, f.user)
	require.NoError(t, err)

	claims, err := f.svc.ValidateRefresh(ctx, s.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, claims.Subject)

	t.Run("access token is not a refresh token", func(t *testing.T) {
		_, err := f.svc.ValidateRefresh(ctx, s.AccessToken)
		assert.ErrorIs(t, err, errors.ErrTokenInvalid)
	})

	t.Run("revoked", func(t *testing.T) {
		require.NoError(t, f.svc.Logout(ctx, s.RefreshID))
		_, err := f.svc.ValidateRefresh(ctx, s.RefreshToken)
		assert.ErrorIs(t, err, errors.ErrTokenInvalid)
		assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.RefreshRevoked))
	})

	t.Run("logout is idempotent", func(t *testing.T) {
		assert.NoError(t, f.svc.Logout(ctx, s.RefreshID))
	})
}

func TestValidateRefresh_FailClosed(t *testing.T) {
	f := newFixture(t, func(st *memory.Store) repository.TokenRepository {
		return failingTokens{TokenRepository: st.Tokens(), findErr: assert.AnError}
	})
	ctx := context.Background()
	s, err := f.svc.IssueSession(ctx, f.user)
	require.NoError(t, err)

	_, err = f.svc.ValidateRefresh(ctx, s.RefreshToken)
	assert.ErrorIs(t, err, errors.ErrTokenInvalid)
}

func TestRefreshRotation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	s1, err := f.svc.IssueSession(ctx, f.user)
	require.NoError(t, err)

	s2, err := f.svc.Refresh(ctx, f.user.ID, s1.RefreshID)
	require.NoError(t, err)
	assert.NotEqual(t, s1.RefreshID, s2.RefreshID)

	old, err := f.store.Tokens().FindByIDAndUser(ctx, s1.RefreshID, f.user.ID)
	require.NoError(t, err)
	assert.Nil(t, old)

	// segundo uso del mismo registro
	_, err = f.svc.Refresh(ctx, f.user.ID, s1.RefreshID)
	assert.ErrorIs(t, err, errors.ErrTokenInvalid)

	_, err = f.svc.ValidateRefresh(ctx, s2.RefreshToken)
	assert.NoError(t, err)
}

func TestRefresh_ConcurrentUseSingleWinner(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	s, err := f.svc.IssueSession(ctx, f.user)
	require.NoError(t, err)

	const n = 8
	var wg sync.WaitGroup
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Refresh(ctx, f.user.ID, s.RefreshID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	ok := 0
	for err := range results {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, errors.ErrTokenInvalid)
		}
	}
	assert.Equal(t, 1, ok)
}

func TestPrune(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	_, err := f.svc.IssueSession(ctx, f.user)
	require.NoError(t, err)

	n, err := f.svc.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	f.clock.Advance(31 * 24 * time.Hour)
	n, err = f.svc.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
