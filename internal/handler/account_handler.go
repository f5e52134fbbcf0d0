package handler

import (
	"net/http"

	"github.com/boddenberg/isp-portal-bff/internal/domain"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Área do assinante
// ============================================================

func dashboardHandler(dashboard DashboardProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /dashboard")
		defer span.End()

		clientID := ClientIDFromContext(ctx)
		span.SetAttributes(attribute.String("client.id", clientID))

		writeJSON(w, http.StatusOK, dashboard.GetDashboard(ctx, clientID))
	}
}

func loginActionHandler(accounts AccountCommander, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /logins/{id}/{action}")
		defer span.End()

		clientID := ClientIDFromContext(ctx)
		loginID := chi.URLParam(r, "id")
		action := chi.URLParam(r, "action")
		span.SetAttributes(
			attribute.String("client.id", clientID),
			attribute.String("login.id", loginID),
			attribute.String("login.action", action),
		)

		if err := accounts.LoginAction(ctx, clientID, loginID, action); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		msg := "Solicitação enviada"
		switch domain.LoginAction(action) {
		case domain.LoginActionDisconnect:
			msg = "Conexão desconectada. Aguarde alguns instantes para reconectar"
		case domain.LoginActionClearMAC:
			msg = "MAC liberado. Reinicie o seu roteador"
		}
		writeJSON(w, http.StatusAccepted, domain.MessageResponse{Message: msg})
	}
}

func openTicketHandler(accounts AccountCommander, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /chamados")
		defer span.End()

		clientID := ClientIDFromContext(ctx)
		span.SetAttributes(attribute.String("client.id", clientID))

		var req domain.TicketRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, msgInvalidBody)
			return
		}

		resp, err := accounts.OpenTicket(ctx, clientID, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, resp)
	}
}
