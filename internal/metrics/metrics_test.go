package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveHelpers(t *testing.T) {
	m := New()
	m.ObserveLogin(LoginSuccess)
	m.ObserveLogin(LoginFailure)
	m.ObserveLogin(LoginFailure)
	m.ObserveTokenIssued(TokenAccess)
	m.ObserveRefreshRevoked()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Logins.WithLabelValues(LoginFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TokensIssued.WithLabelValues(TokenAccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RefreshRevoked))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveLogin(LoginSuccess)
		m.ObserveJWKSFetch("ok")
		m.ObserveRateLimited()
	})
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.ObserveJWKSFetch("ok")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `jwks_fetch_total{result="ok"} 1`)
}
