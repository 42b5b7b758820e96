package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/folio/internal/apiclient"
	"github.com/MrSnakeDoc/folio/internal/dashboard"
	"github.com/MrSnakeDoc/folio/internal/logger"
	"github.com/MrSnakeDoc/folio/internal/workspace"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

func serve(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestMatchHost(t *testing.T) {
	tests := []struct {
		host, pattern string
		want          bool
	}{
		{"admin.example.com", "admin.example.com", true},
		{"api.example.com", "*.example.com", true},
		{"example.com", "*.example.com", false},
		{"evilexample.com", "*.example.com", false},
		{"other.com", "admin.example.com", false},
	}
	for _, tt := range tests {
		if got := matchHost(tt.host, tt.pattern); got != tt.want {
			t.Errorf("matchHost(%q, %q) = %v, want %v", tt.host, tt.pattern, got, tt.want)
		}
	}
}

func TestEnforceHost(t *testing.T) {
	h := EnforceHost([]string{"Admin.Example.com"}, logger.Nop())(ok)

	r := httptest.NewRequest(http.MethodGet, "/infra", nil)
	r.Host = "admin.example.com:8080"
	assert.Equal(t, http.StatusOK, serve(h, r).Code)

	r.Host = "public.example.com"
	assert.Equal(t, http.StatusForbidden, serve(h, r).Code)

	passthrough := EnforceHost(nil, logger.Nop())(ok)
	assert.Equal(t, http.StatusOK, serve(passthrough, r).Code)
}

func TestAllowOnlyCIDRS(t *testing.T) {
	h := AllowOnlyCIDRS([]string{"10.0.0.0/8"}, true, logger.Nop())(ok)

	r := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	r.RemoteAddr = "127.0.0.1:5555"
	r.Header.Set("X-Forwarded-For", "10.2.3.4, 127.0.0.1")
	assert.Equal(t, http.StatusOK, serve(h, r).Code)

	r.Header.Set("X-Forwarded-For", "203.0.113.1")
	rec := serve(h, r)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"message":"forbidden"}`, rec.Body.String())
}

func TestRateLimit(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	h := RateLimit(RateLimitConfig{
		Burst:             2,
		RefillPerIPPerMin: 60,
		Now:               func() time.Time { return now },
	})(ok)

	r := httptest.NewRequest(http.MethodPost, "/login", nil)
	r.RemoteAddr = "192.0.2.1:1000"

	first := serve(h, r)
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, serve(h, r).Code)

	limited := serve(h, r)
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "1", limited.Header().Get("Retry-After"))

	other := httptest.NewRequest(http.MethodPost, "/login", nil)
	other.RemoteAddr = "192.0.2.2:1000"
	assert.Equal(t, http.StatusOK, serve(h, other).Code, "buckets are per IP")

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusOK, serve(h, r).Code, "one token refilled after a second")
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://admin.example.com"})(ok)

	t.Run("allowed origin", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/dashboard/blog/all-blogs", nil)
		r.Header.Set("Origin", "https://admin.example.com")
		rec := serve(h, r)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "https://admin.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("other origin", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/dashboard/blog/all-blogs", nil)
		r.Header.Set("Origin", "https://evil.example.net")
		rec := serve(h, r)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight from other origin", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodOptions, "/dashboard/blog", nil)
		r.Header.Set("Origin", "https://evil.example.net")
		r.Header.Set("Access-Control-Request-Method", http.MethodPost)
		assert.Equal(t, http.StatusForbidden, serve(h, r).Code)
	})

	t.Run("wildcard", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Origin", "https://anyone.example.org")
		rec := serve(CORS([]string{"*"})(ok), r)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
	})
}

func TestRequireSession(t *testing.T) {
	reg := workspace.NewRegistry(func(*apiclient.Session) *dashboard.Set { return &dashboard.Set{} })
	ws := reg.Open(&apiclient.Session{AccessToken: "t"})

	var seen *workspace.Workspace
	h := RequireSession(reg, logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = Workspace(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/dashboard/skills/all-skills", nil)
	assert.Equal(t, http.StatusUnauthorized, serve(h, r).Code)

	r.AddCookie(&http.Cookie{Name: SessionCookie, Value: ws.ID})
	assert.Equal(t, http.StatusOK, serve(h, r).Code)
	require.NotNil(t, seen)
	assert.Equal(t, ws.ID, seen.ID)

	byHeader := httptest.NewRequest(http.MethodGet, "/dashboard/skills/all-skills", nil)
	byHeader.Header.Set(SessionHeader, ws.ID)
	assert.Equal(t, http.StatusOK, serve(h, byHeader).Code)

	reg.Close(ws.ID)
	assert.Equal(t, http.StatusUnauthorized, serve(h, byHeader).Code)
}
