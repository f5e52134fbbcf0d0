package handler

import (
	"errors"
	"net/http"

	"github.com/boddenberg/isp-portal-bff/internal/domain"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Faturas
// ============================================================

// lookupNotFoundResponse keeps the list shape on 404 so the lookup page can
// render its empty state from either response.
type lookupNotFoundResponse struct {
	Error   string           `json:"error"`
	Boletos []domain.Invoice `json:"boletos"`
}

// invoiceLookupHandler is the public second-copy lookup by CPF/CNPJ.
func invoiceLookupHandler(invoices InvoiceProvider, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /faturas")
		defer span.End()

		var req domain.InvoiceLookupRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, msgInvalidBody)
			return
		}

		list, err := invoices.LookupByTaxID(ctx, req.CpfCnpj)
		if err != nil {
			var notFound *domain.ErrNotFound
			if errors.As(err, &notFound) {
				writeJSON(w, http.StatusNotFound, lookupNotFoundResponse{
					Error:   msgNotFoundClient,
					Boletos: []domain.Invoice{},
				})
				return
			}
			handleServiceError(w, err, logger)
			return
		}

		span.SetAttributes(attribute.Int("invoices.count", len(list.Boletos)))
		writeJSON(w, http.StatusOK, list)
	}
}

func listInvoicesHandler(invoices InvoiceProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /faturas")
		defer span.End()

		clientID := ClientIDFromContext(ctx)
		span.SetAttributes(attribute.String("client.id", clientID))

		writeJSON(w, http.StatusOK, invoices.ListForClient(ctx, clientID))
	}
}

func invoicePixHandler(invoices InvoiceProvider, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /faturas/{id}/pix")
		defer span.End()

		clientID := ClientIDFromContext(ctx)
		invoiceID := chi.URLParam(r, "id")
		span.SetAttributes(
			attribute.String("client.id", clientID),
			attribute.String("invoice.id", invoiceID),
		)

		pix, err := invoices.GetPix(ctx, clientID, invoiceID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, pix)
	}
}
