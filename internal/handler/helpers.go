package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/boddenberg/isp-portal-bff/internal/domain"

	"go.uber.org/zap"
)

// ============================================================
// Shared helper functions
// ============================================================

const maxBodyBytes = 64 << 10

// Client-facing messages for server-side faults. Causes are logged only.
const (
	msgInternal       = "Não foi possível concluir a operação. Tente novamente mais tarde"
	msgUpstreamDown   = "O sistema de cobrança está indisponível no momento. Tente novamente em instantes"
	msgUpstreamSlow   = "O sistema de cobrança demorou para responder. Tente novamente em instantes"
	msgInvalidBody    = "Corpo da requisição inválido"
	msgForbidden      = "Acesso negado"
	msgNotFoundClient = "Nenhum cadastro encontrado para este CPF/CNPJ"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

func notFoundMessage(resource string) string {
	switch resource {
	case "cliente":
		return msgNotFoundClient
	case "fatura":
		return "Fatura não encontrada"
	case "pix":
		return "PIX indisponível para esta fatura"
	case "contrato":
		return "Nenhum contrato encontrado para este cadastro"
	case "login":
		return "Conexão não encontrada"
	default:
		return "Recurso não encontrado"
	}
}

// handleServiceError maps domain errors to HTTP responses. Every upstream
// failure surfaces as a generic 500; the cause stays in the logs.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var notFound *domain.ErrNotFound
	var circuitOpen *domain.ErrCircuitOpen
	var timeout *domain.ErrTimeout
	var validation *domain.ErrValidation
	var forbidden *domain.ErrForbidden
	var unauthorized *domain.ErrUnauthorized
	var external *domain.ErrExternalService

	switch {
	case errors.As(err, &validation):
		logger.Debug("validation error", zap.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, validation.Message)
	case errors.As(err, &unauthorized):
		logger.Warn("unauthorized", zap.String("error", err.Error()))
		writeError(w, http.StatusUnauthorized, unauthorized.Error())
	case errors.As(err, &forbidden):
		logger.Warn("forbidden access", zap.String("error", err.Error()))
		writeError(w, http.StatusForbidden, msgForbidden)
	case errors.As(err, &notFound):
		logger.Debug("not found", zap.String("error", err.Error()))
		writeError(w, http.StatusNotFound, notFoundMessage(notFound.Resource))
	case errors.As(err, &circuitOpen):
		logger.Error("circuit breaker open", zap.Error(err))
		writeError(w, http.StatusInternalServerError, msgUpstreamDown)
	case errors.As(err, &timeout):
		logger.Error("upstream timeout", zap.Error(err))
		writeError(w, http.StatusInternalServerError, msgUpstreamSlow)
	case errors.As(err, &external):
		logger.Error("upstream failure", zap.String("service", external.Service), zap.Error(err))
		writeError(w, http.StatusInternalServerError, msgInternal)
	default:
		logger.Error("unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}
