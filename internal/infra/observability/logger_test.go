package observability_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/boddenberg/isp-portal-bff/internal/infra/observability"
)

func newLoggedRouter(level zapcore.Level) (http.Handler, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	r := chi.NewRouter()
	r.Use(observability.ZapLoggerMiddleware(zap.New(core)))
	r.Get("/faturas/{id}/pix", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Post("/faturas", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	return r, logs
}

func serve(h http.Handler, method, target string) {
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(method, target, nil))
}

func TestZapLoggerMiddleware_LogsRoutePattern(t *testing.T) {
	h, logs := newLoggedRouter(zapcore.InfoLevel)

	serve(h, http.MethodGet, "/faturas/123/pix?cpfCnpj=12345678901")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/faturas/{id}/pix", fields["route"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
}

func TestZapLoggerMiddleware_Levels(t *testing.T) {
	h, logs := newLoggedRouter(zapcore.DebugLevel)

	serve(h, http.MethodPost, "/faturas")
	serve(h, http.MethodGet, "/nope")
	serve(h, http.MethodGet, "/healthz")

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "/nope", entries[1].ContextMap()["route"])
	assert.Equal(t, zapcore.DebugLevel, entries[2].Level)
}

func TestZapLoggerMiddleware_HealthChecksHiddenAtInfo(t *testing.T) {
	h, logs := newLoggedRouter(zapcore.InfoLevel)

	serve(h, http.MethodGet, "/healthz")

	assert.Zero(t, logs.Len())
}

func TestNewLogger_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"info", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := observability.NewLogger(tt.level)
			assert.True(t, logger.Core().Enabled(tt.want))
			if tt.want > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(tt.want-1))
			}
		})
	}
}
