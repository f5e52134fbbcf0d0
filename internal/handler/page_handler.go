package handler

import (
	"io"
	"net/http"

	"github.com/boddenberg/isp-portal-bff/internal/domain"
	"github.com/boddenberg/isp-portal-bff/internal/web"

	"go.uber.org/zap"
)

func statusHandler(status StatusProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /status")
		defer span.End()

		w.Header().Set("Cache-Control", "public, max-age=60")
		writeJSON(w, http.StatusOK, status.GetStatus(ctx))
	}
}

// lookupPageHandler serves the second-copy page. A valid ?cpfCnpj= prefills
// the form.
func lookupPageHandler(companyName, statusEndpoint string, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		taxID := domain.NormalizeTaxID(r.URL.Query().Get("cpfCnpj"))
		if !domain.ValidTaxIDLength(taxID) {
			taxID = ""
		}

		page, err := web.RenderLookup(web.LookupData{
			CompanyName:    companyName,
			StatusEndpoint: statusEndpoint,
			TaxID:          taxID,
		})
		if err != nil {
			logger.Error("render lookup page", zap.Error(err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		io.Copy(w, page)
	}
}
