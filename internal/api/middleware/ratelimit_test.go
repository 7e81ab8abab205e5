package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/phrazzld/palette-api/internal/api/shared"
	"github.com/phrazzld/palette-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func loginRequest(remoteAddr string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/login", nil)
	req.RemoteAddr = remoteAddr
	return req
}

func TestRateLimiter_BlocksAfterBurst(t *testing.T) {
	rl := NewLoginRateLimiter(config.RateLimitConfig{
		LoginPerMinute:  1,
		LoginBurst:      2,
		CleanupInterval: time.Hour,
	})
	t.Cleanup(rl.Stop)

	handler := rl.Middleware(okHandler())

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, loginRequest("10.0.0.1:1234"))
		require.Equal(t, http.StatusOK, rr.Code, "request %d", i)
	}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, loginRequest("10.0.0.1:5678"))

	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))

	var body shared.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, shared.CodeRateLimited, body.Code)
}

func TestRateLimiter_IsolatesClients(t *testing.T) {
	rl := NewRateLimiter(rate.Every(time.Hour), 1, time.Hour)
	t.Cleanup(rl.Stop)

	handler := rl.Middleware(okHandler())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, loginRequest("10.0.0.1:1"))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, loginRequest("10.0.0.2:1"))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, loginRequest("10.0.0.1:2"))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)

	assert.Equal(t, 2, rl.Len())
}

func TestRateLimiter_CleanupEvictsIdleClients(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(1), 1, time.Hour)
	t.Cleanup(rl.Stop)

	now := time.Now()
	rl.now = func() time.Time { return now }

	rl.limiterFor("10.0.0.1")
	now = now.Add(90 * time.Minute)
	rl.limiterFor("10.0.0.2")

	now = now.Add(90 * time.Minute)
	rl.cleanup()

	assert.Equal(t, 1, rl.Len())
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(1), 1, time.Hour)
	rl.Stop()
	assert.NotPanics(t, rl.Stop)
}

func TestRetryAfterSeconds(t *testing.T) {
	assert.Equal(t, 1, retryAfterSeconds(rate.Limit(5)))
	assert.Equal(t, 12, retryAfterSeconds(rate.Limit(5.0/60.0)))
	assert.Equal(t, 60, retryAfterSeconds(0))
}
