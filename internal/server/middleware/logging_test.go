package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	middleware := LoggingMiddleware(logger)
	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Not Found"}`))
	}))

	req := httptest.NewRequest(http.MethodGet, "/data/999", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	out := buf.String()
	assert.Contains(t, out, "HTTP request")
	assert.Contains(t, out, "method=GET")
	assert.Contains(t, out, "path=/data/999")
	assert.Contains(t, out, "status=404")
	// 4xx логируется на уровне WARN
	assert.Contains(t, out, "level=WARN")
}

func TestLoggingMiddleware_StatusDefaultsToOK(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	middleware := LoggingMiddleware(logger)
	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Хендлер не вызывает WriteHeader явно
		_, _ = w.Write([]byte("ok"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/data", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Contains(t, buf.String(), "status=200")
	assert.Contains(t, buf.String(), "bytes_written=2")
}

func TestLoggingWithSkip(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	middleware := LoggingWithSkip(logger, []string{"/api/v1/health"})
	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Health check не попадает в лог
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Empty(t, buf.String())

	// Остальные пути логируются
	req = httptest.NewRequest(http.MethodGet, "/data", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Contains(t, buf.String(), "path=/data")
}
