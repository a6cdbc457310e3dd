package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/tenantauth/internal/config"
	"github.com/dropDatabas3/tenantauth/internal/domain/repository"
	"github.com/dropDatabas3/tenantauth/internal/domain/types"
	"github.com/dropDatabas3/tenantauth/internal/http/helpers"
	jwtx "github.com/dropDatabas3/tenantauth/internal/jwt"
	"github.com/dropDatabas3/tenantauth/internal/security/password"
	"github.com/dropDatabas3/tenantauth/internal/store/memory"
)

type harness struct {
	t   *testing.T
	app *App
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	key, err := jwtx.GenerateRSAKey(2048)
	require.NoError(t, err)
	pemBytes, err := jwtx.EncodePrivateKeyPEM(key)
	require.NoError(t, err)

	cfg.Storage.Driver = "memory"
	cfg.JWT.PrivateKey = string(pemBytes)
	cfg.JWT.PrivateKeyPath = ""
	cfg.JWT.RefreshSecret = "0123456789abcdef0123456789abcdef"
	cfg.JWKS.URI = ""
	cfg.Redis.Addr = ""
	cfg.Security.BcryptCost = 4
	cfg.Security.PasswordBlacklistPath = ""
	cfg.Rate.Enabled = true
	cfg.Rate.MaxRequests = 1000

	mem := memory.New()
	hash, err := password.Bcrypt{Cost: 4}.Hash("admin-pass-1")
	require.NoError(t, err)
	_, err = mem.Users().Create(ctx, repository.CreateUserInput{
		Name: "Ada Admin", Email: "admin@example.com", PasswordHash: hash, Role: types.RoleAdmin,
	})
	require.NoError(t, err)

	app, err := Build(ctx, cfg, &Stores{Users: mem.Users(), Tenants: mem.Tenants(), Tokens: mem.Tokens()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return &harness{t: t, app: app}
}

func (h *harness) do(method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.RemoteAddr = "192.0.2.10:4000"
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	h.app.Handler.ServeHTTP(rr, req)
	return rr
}

func cookie(t *testing.T, rr *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %s not set", name)
	return nil
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &m), rr.Body.String())
	return m
}

func (h *harness) login(email, pass string) (access, refresh *http.Cookie) {
	h.t.Helper()
	rr := h.do(http.MethodPost, "/auth/login", map[string]string{"email": email, "password": pass})
	require.Equal(h.t, http.StatusOK, rr.Code, rr.Body.String())
	return cookie(h.t, rr, helpers.AccessCookie), cookie(h.t, rr, helpers.RefreshCookie)
}

func TestSessionLifecycle(t *testing.T) {
	h := newHarness(t)

	reg := map[string]string{"firstName": "Grace", "lastName": "Hopper", "email": "Grace@Example.com", "password": "cobol-rules"}
	rr := h.do(http.MethodPost, "/auth/register", reg)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	userID := decode(t, rr)["id"].(string)
	require.NotEmpty(t, userID)

	access := cookie(t, rr, helpers.AccessCookie)
	refresh := cookie(t, rr, helpers.RefreshCookie)
	assert.True(t, access.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, access.SameSite)
	assert.Equal(t, 3600, access.MaxAge)
	assert.Equal(t, 2592000, refresh.MaxAge)
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))

	t.Run("duplicate email", func(t *testing.T) {
		rr := h.do(http.MethodPost, "/auth/register", reg)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "EMAIL_IN_USE", decode(t, rr)["code"])
	})

	t.Run("self", func(t *testing.T) {
		rr := h.do(http.MethodGet, "/auth/self", nil, access)
		require.Equal(t, http.StatusOK, rr.Code)
		body := decode(t, rr)
		assert.Equal(t, "grace@example.com", body["email"])
		assert.Equal(t, "customer", body["role"])
		assert.NotContains(t, rr.Body.String(), "password")
	})

	t.Run("customer cannot reach admin routes", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, h.do(http.MethodGet, "/users", nil, access).Code)
		assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/tenants", nil).Code)
	})

	// rotación: el refresh viejo queda revocado
	rr = h.do(http.MethodPost, "/auth/refresh", nil, refresh)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	access2 := cookie(t, rr, helpers.AccessCookie)
	refresh2 := cookie(t, rr, helpers.RefreshCookie)
	assert.NotEqual(t, refresh.Value, refresh2.Value)

	rr = h.do(http.MethodPost, "/auth/refresh", nil, refresh)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "TOKEN_INVALID", decode(t, rr)["code"])

	// logout necesita ambos tokens
	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodPost, "/auth/logout", nil, access2).Code)

	rr = h.do(http.MethodPost, "/auth/logout", nil, access2, refresh2)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, -1, cookie(t, rr, helpers.AccessCookie).MaxAge)

	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodPost, "/auth/refresh", nil, refresh2).Code)
}

func TestLoginFailuresAreUniform(t *testing.T) {
	h := newHarness(t)

	unknown := h.do(http.MethodPost, "/auth/login", map[string]string{"email": "nobody@example.com", "password": "whatever-1"})
	wrong := h.do(http.MethodPost, "/auth/login", map[string]string{"email": "admin@example.com", "password": "whatever-1"})

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, unknown.Body.String(), wrong.Body.String())
	assert.Equal(t, "INVALID_CREDENTIALS", decode(t, wrong)["code"])

	// las reglas del DTO se aplican antes de buscar al usuario y no dependen de la cuenta
	shortUnknown := h.do(http.MethodPost, "/auth/login", map[string]string{"email": "nobody@example.com", "password": "short"})
	shortKnown := h.do(http.MethodPost, "/auth/login", map[string]string{"email": "admin@example.com", "password": "short"})
	assert.Equal(t, http.StatusBadRequest, shortKnown.Code)
	assert.Equal(t, shortUnknown.Code, shortKnown.Code)
	assert.Equal(t, shortUnknown.Body.String(), shortKnown.Body.String())
	assert.Equal(t, "VALIDATION_FAILED", decode(t, shortKnown)["code"])
}

func TestAdminTenantsAndUsers(t *testing.T) {
	h := newHarness(t)
	access, _ := h.login("admin@example.com", "admin-pass-1")

	rr := h.do(http.MethodGet, "/users", nil, access)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.JSONEq(t, `{"data":[],"total":0,"page":1,"limit":10,"totalPages":0}`, rr.Body.String())

	for _, path := range []string{"/users?page=9223372036854775807", "/tenants?page=9223372036854775807", "/users?page=214748366&limit=10"} {
		rr = h.do(http.MethodGet, path, nil, access)
		assert.Equal(t, http.StatusBadRequest, rr.Code, path)
		assert.Equal(t, "VALIDATION_FAILED", decode(t, rr)["code"], path)
	}

	rr = h.do(http.MethodPost, "/tenants", map[string]any{
		"name": "Acme", "address": "1 Main St", "phone": "+1 555 0100 200", "domain": "acme.example.com",
	}, access)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	tenantID := decode(t, rr)["id"].(string)

	rr = h.do(http.MethodPost, "/users", map[string]any{
		"firstName": "Mia", "lastName": "Manager", "email": "mia@acme.example.com",
		"password": "manager-pass", "tenantId": tenantID,
	}, access)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	manager := decode(t, rr)
	assert.Equal(t, "manager", manager["role"])
	managerID := manager["id"].(string)

	rr = h.do(http.MethodGet, "/users?page=1&limit=10", nil, access)
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode(t, rr)
	assert.EqualValues(t, 1, list["total"])
	assert.EqualValues(t, 1, list["totalPages"])

	rr = h.do(http.MethodDelete, "/tenants/"+tenantID, nil, access)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "TENANT_HAS_USERS", decode(t, rr)["code"])

	rr = h.do(http.MethodDelete, "/tenants/"+tenantID+"?detach=true", nil, access)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = h.do(http.MethodGet, "/users/"+managerID, nil, access)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Nil(t, decode(t, rr)["tenantId"])

	rr = h.do(http.MethodGet, "/users/not-a-uuid", nil, access)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "INVALID_PARAMETER", decode(t, rr)["code"])

	rr = h.do(http.MethodGet, "/users?role=root", nil, access)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = h.do(http.MethodDelete, "/users/"+managerID, nil, access)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/users/"+managerID, nil, access).Code)
}

func TestPublicEndpoints(t *testing.T) {
	h := newHarness(t)

	rr := h.do(http.MethodGet, "/.well-known/jwks.json", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var set jwtx.JWKS
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &set))
	require.Len(t, set.Keys, 1)
	assert.Equal(t, h.app.Issuer.KID(), set.Keys[0].Kid)
	assert.Equal(t, "RS256", set.Keys[0].Alg)

	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/healthz", nil).Code)
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/readyz", nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/nope", nil).Code)

	rr = h.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "http_requests_total"))
}

type countingPruner struct{ calls chan struct{} }

func (p *countingPruner) Prune(context.Context) (int, error) {
	p.calls <- struct{}{}
	return 0, nil
}

func TestPruneLoop(t *testing.T) {
	p := &countingPruner{calls: make(chan struct{}, 10)}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		PruneLoop(ctx, p, 5*time.Millisecond)
		close(done)
	}()

	select {
	case <-p.calls:
	case <-time.After(time.Second):
		t.Fatal("prune never ran")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
}
