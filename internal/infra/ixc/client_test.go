package ixc_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/boddenberg/isp-portal-bff/internal/domain"
	"github.com/boddenberg/isp-portal-bff/internal/infra/ixc"
	"github.com/boddenberg/isp-portal-bff/internal/infra/observability"
	"github.com/boddenberg/isp-portal-bff/internal/infra/resilience"
)

type testEnv struct {
	client  *ixc.Client
	metrics *observability.Metrics
	server  *httptest.Server
}

func newTestEnv(t *testing.T, maxRetries int, h http.HandlerFunc) *testEnv {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	m := observability.NewMetrics()
	cb := resilience.NewCircuitBreaker("ixc-test", zap.NewNop())
	httpClient := srv.Client()
	httpClient.Timeout = 2 * time.Second

	c := ixc.NewClient(httpClient, ixc.Config{
		BaseURL:  srv.URL + "/",
		Token:    "12:secret",
		PageSize: 20,
		Retry: resilience.Config{
			MaxRetries:     maxRetries,
			InitialBackoff: time.Millisecond,
			MaxConcurrency: 4,
		},
	}, cb, zap.NewNop(), m)
	return &testEnv{client: c, metrics: m, server: srv}
}

func writeBody(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestList_SendsListingQuery(t *testing.T) {
	env := newTestEnv(t, 0, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/webservice/v1/fn_areceber", r.URL.Path)
		assert.Equal(t, "listar", r.Header.Get("ixcsoft"))

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "12", user)
		assert.Equal(t, "secret", pass)

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "fn_areceber.id_cliente", body["qtype"])
		assert.Equal(t, "42", body["query"])
		assert.Equal(t, "=", body["oper"])
		assert.Equal(t, "1", body["page"])
		assert.Equal(t, "20", body["rp"])
		assert.Equal(t, "fn_areceber.id_cliente", body["sortname"])
		assert.Equal(t, "asc", body["sortorder"])

		writeBody(w, http.StatusOK, `{"total":"2","registros":[{"id":"1"},{"id":2}]}`)
	})

	res := env.client.List(context.Background(), "fn_areceber", domain.Query{Field: "fn_areceber.id_cliente", Value: "42"})

	require.False(t, res.Degraded)
	assert.Equal(t, 2, res.Total)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "2", ixc.Str(res.Records[1], "id"))
}

func TestList_SoftFailsOnServerError(t *testing.T) {
	env := newTestEnv(t, 0, func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusInternalServerError, `{"message":"boom"}`)
	})

	res := env.client.List(context.Background(), "cliente", domain.Query{Field: "cliente.id", Value: "1"})

	assert.True(t, res.Degraded)
	assert.NotNil(t, res.Records)
	assert.Empty(t, res.Records)
	assert.Equal(t, float64(1), env.metrics.UpstreamErrors("cliente"))
}

func TestList_ErrorTypeIsDegraded(t *testing.T) {
	env := newTestEnv(t, 0, func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusOK, `{"type":"error","message":"Token inválido"}`)
	})

	res := env.client.List(context.Background(), "cliente", domain.Query{Field: "cliente.id", Value: "1"})
	assert.True(t, res.Degraded)
}

func TestList_UndecodableBodyIsDegraded(t *testing.T) {
	env := newTestEnv(t, 0, func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusOK, `<html>maintenance</html>`)
	})

	res := env.client.List(context.Background(), "cliente", domain.Query{Field: "cliente.id", Value: "1"})
	assert.True(t, res.Degraded)
}

func TestFind_NotFound(t *testing.T) {
	env := newTestEnv(t, 0, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "1", body["rp"])
		writeBody(w, http.StatusOK, `{"total":"0","registros":[]}`)
	})

	_, err := env.client.Find(context.Background(), "cliente", domain.Query{Field: "cliente.id", Value: "9"})

	var nf *domain.ErrNotFound
	require.True(t, errors.As(err, &nf), "expected ErrNotFound, got %v", err)
	assert.Equal(t, "cliente", nf.Resource)
}

func TestFind_UpstreamDown(t *testing.T) {
	env := newTestEnv(t, 0, func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusBadGateway, `bad gateway`)
	})

	_, err := env.client.Find(context.Background(), "cliente", domain.Query{Field: "cliente.id", Value: "9"})

	var ext *domain.ErrExternalService
	require.True(t, errors.As(err, &ext), "expected ErrExternalService, got %v", err)
	assert.Equal(t, "ixc", ext.Service)
}

func TestFind_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	env := newTestEnv(t, 2, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			writeBody(w, http.StatusServiceUnavailable, `{}`)
			return
		}
		writeBody(w, http.StatusOK, `{"total":1,"registros":[{"id":"9","razao":"Fulano"}]}`)
	})

	rec, err := env.client.Find(context.Background(), "cliente", domain.Query{Field: "cliente.id", Value: "9"})

	require.NoError(t, err)
	assert.Equal(t, "Fulano", ixc.Str(rec, "razao"))
	assert.Equal(t, int32(2), calls.Load())
}

func TestFind_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	env := newTestEnv(t, 2, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeBody(w, http.StatusUnauthorized, `{}`)
	})

	_, err := env.client.Find(context.Background(), "cliente", domain.Query{Field: "cliente.id", Value: "9"})

	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFind_Timeout(t *testing.T) {
	env := newTestEnv(t, 0, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := env.client.Find(ctx, "cliente", domain.Query{Field: "cliente.id", Value: "9"})

	var to *domain.ErrTimeout
	require.True(t, errors.As(err, &to), "expected ErrTimeout, got %v", err)
}

func TestFind_CircuitOpens(t *testing.T) {
	var calls atomic.Int32
	env := newTestEnv(t, 0, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeBody(w, http.StatusInternalServerError, `{}`)
	})

	for i := 0; i < 5; i++ {
		_, _ = env.client.Find(context.Background(), "cliente", domain.Query{Field: "cliente.id", Value: "9"})
	}
	_, err := env.client.Find(context.Background(), "cliente", domain.Query{Field: "cliente.id", Value: "9"})

	var open *domain.ErrCircuitOpen
	require.True(t, errors.As(err, &open), "expected ErrCircuitOpen, got %v", err)
	assert.Equal(t, int32(5), calls.Load())
}

func TestCreate_Success(t *testing.T) {
	env := newTestEnv(t, 0, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/webservice/v1/su_oss_chamado", r.URL.Path)
		assert.Empty(t, r.Header.Get("ixcsoft"))
		writeBody(w, http.StatusOK, `{"type":"success","message":"Registro inserido","id":"77"}`)
	})

	res := env.client.Create(context.Background(), "su_oss_chamado", map[string]string{"id_cliente": "1"})

	assert.True(t, res.Success)
	assert.False(t, res.Error)
	assert.Equal(t, "77", res.ID)
}

func TestCreate_ErrorTypeWithStatusOK(t *testing.T) {
	env := newTestEnv(t, 0, func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusOK, `{"tipo":"error","mensagem":"Contrato sem bloqueio"}`)
	})

	res := env.client.Create(context.Background(), "desbloqueio_confianca", map[string]string{"id": "5"})

	assert.True(t, res.Error)
	assert.False(t, res.Success)
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "Contrato sem bloqueio", res.Message)
}

func TestCreate_TransportFailureIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	env := newTestEnv(t, 3, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeBody(w, http.StatusInternalServerError, `{"message":"db locked"}`)
	})

	res := env.client.Create(context.Background(), "su_oss_chamado", map[string]string{})

	assert.True(t, res.Error)
	assert.Equal(t, http.StatusInternalServerError, res.Status)
	assert.NotContains(t, res.Message, "db locked")
	assert.Equal(t, int32(1), calls.Load())
}

func TestUpdate_UsesPutWithID(t *testing.T) {
	env := newTestEnv(t, 0, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/webservice/v1/cliente/42", r.URL.Path)

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "nova-senha", body["senha"])

		writeBody(w, http.StatusOK, `{"type":"success","message":"Registro atualizado"}`)
	})

	res := env.client.Update(context.Background(), "cliente", "42", map[string]string{"senha": "nova-senha"})

	assert.True(t, res.Success)
}

func TestInvoke_ReturnsRecord(t *testing.T) {
	env := newTestEnv(t, 0, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/webservice/v1/get_pix", r.URL.Path)
		writeBody(w, http.StatusOK, `{"qrcode":"000201...","txid":"abc"}`)
	})

	rec, err := env.client.Invoke(context.Background(), "get_pix", map[string]string{"id_areceber": "10"})

	require.NoError(t, err)
	assert.Equal(t, "abc", ixc.Str(rec, "txid"))
}
