package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/boddenberg/isp-portal-bff/internal/domain"
	"github.com/boddenberg/isp-portal-bff/internal/infra/client"
	"github.com/boddenberg/isp-portal-bff/internal/infra/resilience"
)

func newStatusClient(url string) *client.StatusClient {
	cb := resilience.NewCircuitBreaker("status-test", zap.NewNop())
	cfg := resilience.Config{MaxRetries: 1, InitialBackoff: time.Millisecond, MaxConcurrency: 2}
	return client.NewStatusClient(&http.Client{Timeout: time.Second}, url, cb, cfg)
}

func TestStatusClient_FetchStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"page": {"name": "Rede"},
			"status": {"indicator": "minor", "description": "Instabilidade parcial"},
			"incidents": [{"name": "Rompimento de fibra - Centro", "status": "investigating", "updated_at": "2024-05-01T10:00:00Z"}]
		}`))
	}))
	defer srv.Close()

	status, err := newStatusClient(srv.URL).FetchStatus(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.Indicator != "minor" {
		t.Errorf("expected indicator 'minor', got '%s'", status.Indicator)
	}
	if !status.Disponivel {
		t.Error("expected status to be available")
	}
	if len(status.Incidents) != 1 || status.Incidents[0].Name != "Rompimento de fibra - Centro" {
		t.Errorf("unexpected incidents: %+v", status.Incidents)
	}
	if status.FetchedAt.IsZero() {
		t.Error("expected FetchedAt to be set")
	}
}

func TestStatusClient_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newStatusClient(srv.URL).FetchStatus(context.Background())

	var ext *domain.ErrExternalService
	if !errors.As(err, &ext) {
		t.Fatalf("expected ErrExternalService, got %v", err)
	}
}

func TestStatusClient_NoFeedConfigured(t *testing.T) {
	_, err := newStatusClient("").FetchStatus(context.Background())
	if err == nil {
		t.Fatal("expected error when no feed is configured")
	}
}
