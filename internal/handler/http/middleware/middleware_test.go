package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthRequired(t *testing.T) {
	jwtService := jwt.NewJWTService("secret", "1h")

	var got *auth.Principal
	handler := jwtauth.Verifier(jwtService.JWTAuth())(AuthRequired(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = auth.PrincipalFromContext(r.Context())
	})))

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		token, _, err := jwtService.GenerateAccessToken("Emp@Acme.test")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, got)
		assert.Equal(t, "emp@acme.test", got.Email)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, _, err := jwt.NewJWTService("other", "1h").GenerateAccessToken("emp@acme.test")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	handler := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	// another client has its own bucket
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// an authenticated caller is keyed by email
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	req = req.WithContext(auth.WithPrincipal(req.Context(), auth.Principal{Email: "emp@acme.test"}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRateLimiter_EvictsIdle(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	rl.getLimiter("old")
	rl.limiters["old"].lastSeen = time.Now().Add(-time.Hour)

	rl.mu.Lock()
	rl.evictIdle(time.Now())
	rl.mu.Unlock()

	assert.NotContains(t, rl.limiters, "old")
}

func TestRateLimiter_CapacityEvictsLeastRecentlySeen(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	rl.capacity = 3

	now := time.Now()
	for i, key := range []string{"a", "b", "c"} {
		rl.getLimiter(key)
		rl.limiters[key].lastSeen = now.Add(time.Duration(i-3) * time.Second)
	}

	rl.getLimiter("d")

	assert.Len(t, rl.limiters, 3)
	assert.NotContains(t, rl.limiters, "a")
	assert.Contains(t, rl.limiters, "b")
	assert.Contains(t, rl.limiters, "d")
}
