package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/serroba/url-shortener/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type testOutput struct {
	Body string `json:"body"`
}

func setupLoggedAPI(t *testing.T) (*chi.Mux, huma.API, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)

	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("Test", "1.0.0"))
	api.UseMiddleware(middleware.RequestLogger(zap.New(core)))

	return router, api, logs
}

func TestRequestLogger(t *testing.T) {
	t.Run("sets a request id header and context value", func(t *testing.T) {
		router, api, _ := setupLoggedAPI(t)

		ctxChan := make(chan context.Context, 1)

		huma.Get(api, "/test", func(ctx context.Context, _ *struct{}) (*testOutput, error) {
			ctxChan <- ctx

			return &testOutput{Body: "ok"}, nil
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		requestID := w.Header().Get(middleware.RequestIDHeader)
		require.NotEmpty(t, requestID)
		assert.Equal(t, requestID, middleware.RequestIDFromContext(<-ctxChan))
	})

	t.Run("keeps incoming request id", func(t *testing.T) {
		router, api, _ := setupLoggedAPI(t)

		huma.Get(api, "/test", func(_ context.Context, _ *struct{}) (*testOutput, error) {
			return &testOutput{Body: "ok"}, nil
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(middleware.RequestIDHeader, "trace-123")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "trace-123", w.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("logs method path and status", func(t *testing.T) {
		router, api, logs := setupLoggedAPI(t)

		huma.Get(api, "/test", func(_ context.Context, _ *struct{}) (*testOutput, error) {
			return &testOutput{Body: "ok"}, nil
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.195")

		router.ServeHTTP(httptest.NewRecorder(), req)

		entries := logs.FilterMessage("request completed").All()
		require.Len(t, entries, 1)

		fields := entries[0].ContextMap()
		assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
		assert.Equal(t, http.MethodGet, fields["method"])
		assert.Equal(t, "/test", fields["path"])
		assert.Equal(t, int64(http.StatusOK), fields["status"])
		assert.Equal(t, "203.0.113.195", fields["client_ip"])
	})

	t.Run("logs server errors at error level", func(t *testing.T) {
		router, api, logs := setupLoggedAPI(t)

		huma.Get(api, "/fail", func(_ context.Context, _ *struct{}) (*testOutput, error) {
			return nil, huma.Error500InternalServerError("boom")
		})

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))

		entries := logs.FilterMessage("request completed").All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	})

	t.Run("request id is empty outside the middleware", func(t *testing.T) {
		assert.Empty(t, middleware.RequestIDFromContext(context.Background()))
	})
}
