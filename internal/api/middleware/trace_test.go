package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/palette-api/internal/api/shared"
	"github.com/phrazzld/palette-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
)

func TestTraceMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var traceID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = shared.GetTraceID(r.Context())
		logger.FromContext(r.Context()).Info("inside handler")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/diaries", nil)
	rr := httptest.NewRecorder()
	NewTraceMiddleware(log)(next).ServeHTTP(rr, req)

	assert.Len(t, traceID, 32)
	assert.Equal(t, traceID, rr.Header().Get("X-Trace-ID"))
	assert.Contains(t, buf.String(), `"msg":"inside handler","trace_id":"`+traceID+`"`)
}

func TestTraceMiddleware_ReusesRequestID(t *testing.T) {
	var traceID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = shared.GetTraceID(r.Context())
	})

	handler := chimiddleware.RequestID(NewTraceMiddleware(slog.Default())(next))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(chimiddleware.RequestIDHeader, "req-abc")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "req-abc", traceID)
}
