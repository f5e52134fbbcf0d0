package handler

import (
	"net/http"

	"github.com/boddenberg/isp-portal-bff/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Autenticação
// ============================================================

func authLoginHandler(auth Authenticator, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /auth/login")
		defer span.End()

		var req domain.LoginRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, msgInvalidBody)
			return
		}

		resp, err := auth.Login(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		span.SetAttributes(attribute.String("client.id", resp.ClientID))
		writeJSON(w, http.StatusOK, resp)
	}
}

func changePasswordHandler(auth Authenticator, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /auth/trocar-senha")
		defer span.End()

		clientID := ClientIDFromContext(ctx)
		span.SetAttributes(attribute.String("client.id", clientID))

		var req domain.ChangePasswordRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, msgInvalidBody)
			return
		}

		if err := auth.ChangePassword(ctx, clientID, req.NewPassword); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, domain.MessageResponse{Message: "Senha alterada com sucesso"})
	}
}

func confidenceUnlockHandler(accounts AccountCommander, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /auth/desbloqueio-confianca")
		defer span.End()

		clientID := ClientIDFromContext(ctx)
		span.SetAttributes(attribute.String("client.id", clientID))

		if err := accounts.ConfidenceUnlock(ctx, clientID); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusAccepted, domain.MessageResponse{
			Message: "Desbloqueio de confiança solicitado. A liberação pode levar alguns minutos",
		})
	}
}
