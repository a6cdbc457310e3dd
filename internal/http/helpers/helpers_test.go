package helpers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/tenantauth/internal/http/errors"
)

func TestSetSessionCookies(t *testing.T) {
	rec := httptest.NewRecorder()
	SetSessionCookies(rec, CookieConfig{Secure: true}, SessionCookies{
		AccessToken: "a", AccessTTL: time.Hour,
		RefreshToken: "r", RefreshTTL: 30 * 24 * time.Hour,
	})

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)
	byName := map[string]*http.Cookie{}
	for _, c := range cookies {
		byName[c.Name] = c
		assert.True(t, c.HttpOnly)
		assert.True(t, c.Secure)
		assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
		assert.Equal(t, "/", c.Path)
	}
	assert.Equal(t, "a", byName[AccessCookie].Value)
	assert.Equal(t, 3600, byName[AccessCookie].MaxAge)
	assert.Equal(t, "r", byName[RefreshCookie].Value)
	assert.Equal(t, 2592000, byName[RefreshCookie].MaxAge)
}

func TestClearSessionCookies(t *testing.T) {
	rec := httptest.NewRecorder()
	ClearSessionCookies(rec, CookieConfig{Domain: "example.com"})

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)
	for _, c := range cookies {
		assert.Empty(t, c.Value)
		assert.Equal(t, -1, c.MaxAge)
		assert.Equal(t, "example.com", c.Domain)
	}
}

func TestParseSameSite(t *testing.T) {
	assert.Equal(t, http.SameSiteLaxMode, ParseSameSite("Lax"))
	assert.Equal(t, http.SameSiteNoneMode, ParseSameSite(" none "))
	assert.Equal(t, http.SameSiteStrictMode, ParseSameSite(""))
	assert.Equal(t, http.SameSiteStrictMode, ParseSameSite("bogus"))
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		query   string
		want    Page
		wantErr bool
	}{
		{"", Page{Page: 1, Limit: 10}, false},
		{"page=3&limit=25", Page{Page: 3, Limit: 25}, false},
		{"limit=1000", Page{Page: 1, Limit: MaxLimit}, false},
		{"page=0", Page{}, true},
		{"limit=-2", Page{}, true},
		{"page=abc", Page{}, true},
		{"page=9223372036854775807", Page{}, true},
		{"page=214748366&limit=10", Page{}, true},
		{"page=214748365&limit=10", Page{Page: 214748365, Limit: 10}, false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/users?"+tt.query, nil)
			got, err := ParsePage(r)
			if tt.wantErr {
				assert.ErrorIs(t, err, errors.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPathUUID(t *testing.T) {
	withParam := func(v string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/users/"+v, nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", v)
		return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}

	id, err := PathUUID(withParam("8D3F1C2A-5B6E-4F70-9A81-0C2D3E4F5A6B"), "id")
	require.NoError(t, err)
	assert.Equal(t, "8d3f1c2a-5b6e-4f70-9a81-0c2d3e4f5a6b", id)

	_, err = PathUUID(withParam("not-a-uuid"), "id")
	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_PARAMETER", appErr.Code)
	require.Len(t, appErr.Fields, 1)
	assert.Equal(t, "path", appErr.Fields[0].Location)
}

func TestQueryBool(t *testing.T) {
	assert.True(t, QueryBool(httptest.NewRequest(http.MethodDelete, "/t?detach=true", nil), "detach"))
	assert.True(t, QueryBool(httptest.NewRequest(http.MethodDelete, "/t?detach=1", nil), "detach"))
	assert.False(t, QueryBool(httptest.NewRequest(http.MethodDelete, "/t?detach=yes", nil), "detach"))
	assert.False(t, QueryBool(httptest.NewRequest(http.MethodDelete, "/t", nil), "detach"))
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	r.Header.Set("X-Forwarded-For", "203.0.113.7")
	// sin resolver, X-Forwarded-For no cuenta
	assert.Equal(t, "10.0.0.1", ClientIP(r))

	r = r.WithContext(WithClientIP(r.Context(), "203.0.113.7"))
	assert.Equal(t, "203.0.113.7", ClientIP(r))
}

func TestTrustedProxiesResolve(t *testing.T) {
	proxies, err := ParseTrustedProxies([]string{"10.0.0.0/8", " 192.0.2.1 ", ""})
	require.NoError(t, err)
	require.Len(t, proxies, 2)

	tests := []struct {
		name   string
		remote string
		xff    []string
		want   string
	}{
		{"untrusted peer spoofing header", "198.51.100.9:1234", []string{"203.0.113.7"}, "198.51.100.9"},
		{"trusted peer", "10.1.2.3:443", []string{"203.0.113.7"}, "203.0.113.7"},
		{"chain of trusted proxies", "10.1.2.3:443", []string{"203.0.113.7, 10.9.9.9", "192.0.2.1"}, "203.0.113.7"},
		{"client-supplied prefix ignored", "10.1.2.3:443", []string{"1.1.1.1, 203.0.113.7"}, "203.0.113.7"},
		{"garbage hop", "10.1.2.3:443", []string{"203.0.113.7, not-an-ip"}, "10.1.2.3"},
		{"trusted peer without header", "192.0.2.1:80", nil, "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for _, v := range tt.xff {
				r.Header.Add("X-Forwarded-For", v)
			}
			assert.Equal(t, tt.want, proxies.Resolve(r))
		})
	}

	var none TrustedProxies
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.1.2.3:443"
	r.Header.Set("X-Forwarded-For", "203.0.113.7")
	assert.Equal(t, "10.1.2.3", none.Resolve(r))

	_, err = ParseTrustedProxies([]string{"10.0.0.0/33"})
	assert.Error(t, err)
	_, err = ParseTrustedProxies([]string{"proxy.local"})
	assert.Error(t, err)
}

func TestReadJSON(t *testing.T) {
	type body struct {
		Email string `json:"email"`
	}
	newReq := func(ct, payload string) *http.Request {
		r := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(payload))
		if ct != "" {
			r.Header.Set("Content-Type", ct)
		}
		return r
	}

	t.Run("ok with unknown fields", func(t *testing.T) {
		var b body
		err := ReadJSON(httptest.NewRecorder(), newReq("application/json; charset=utf-8", `{"email":"a@b.co","extra":1}`), &b)
		require.NoError(t, err)
		assert.Equal(t, "a@b.co", b.Email)
	})

	t.Run("wrong content type", func(t *testing.T) {
		var b body
		err := ReadJSON(httptest.NewRecorder(), newReq("text/plain", `{}`), &b)
		assert.ErrorIs(t, err, errors.ErrInvalidJSON)
	})

	t.Run("empty body", func(t *testing.T) {
		var b body
		err := ReadJSON(httptest.NewRecorder(), newReq("application/json", ``), &b)
		assert.ErrorIs(t, err, errors.ErrInvalidJSON)
	})

	t.Run("malformed", func(t *testing.T) {
		var b body
		err := ReadJSON(httptest.NewRecorder(), newReq("application/json", `{"email":`), &b)
		assert.ErrorIs(t, err, errors.ErrInvalidJSON)
	})

	t.Run("too large", func(t *testing.T) {
		payload := `{"email":"` + strings.Repeat("x", 64) + `"}`
		r := newReq("application/json", payload)
		r = r.WithContext(WithBodyLimit(r.Context(), 16))

		var b body
		err := ReadJSON(httptest.NewRecorder(), r, &b)
		assert.ErrorIs(t, err, errors.ErrBodyTooLarge)

		// el default alcanza para el mismo payload
		assert.NoError(t, ReadJSON(httptest.NewRecorder(), newReq("application/json", payload), &b))
	})
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]string{"id": "x"})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":"x"}`, rec.Body.String())
}
