package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/boddenberg/isp-portal-bff/internal/domain"
	"github.com/boddenberg/isp-portal-bff/internal/infra/observability"
	"github.com/boddenberg/isp-portal-bff/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var invoiceTracer = otel.Tracer("service/invoice")

// pixFetchLimit bounds the concurrent get_pix calls of one lookup.
const pixFetchLimit = 4

// InvoiceService serves the public 2ª via lookup and the subscriber-area
// invoice operations.
type InvoiceService struct {
	identity port.IdentityResolver
	invoices port.InvoiceReader
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewInvoiceService creates a new invoice service.
func NewInvoiceService(identity port.IdentityResolver, invoices port.InvoiceReader, metrics *observability.Metrics, logger *zap.Logger) *InvoiceService {
	return &InvoiceService{
		identity: identity,
		invoices: invoices,
		metrics:  metrics,
		logger:   logger,
	}
}

// ============================================================
// 2ª via: POST /faturas
// ============================================================

// LookupByTaxID lists the invoices of the subscriber holding a CPF/CNPJ.
// Cancelled invoices are left out and open ones carry their PIX code when the
// billing system can issue one. Returns *domain.ErrValidation for a
// malformed tax id and *domain.ErrNotFound when no subscriber holds it.
func (s *InvoiceService) LookupByTaxID(ctx context.Context, taxID string) (*domain.InvoiceList, error) {
	ctx, span := invoiceTracer.Start(ctx, "InvoiceService.LookupByTaxID")
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("invoice_lookup", time.Since(start))
	}()

	digits := domain.NormalizeTaxID(taxID)
	if !domain.ValidTaxIDLength(digits) {
		return nil, &domain.ErrValidation{
			Field:   "cpfCnpj",
			Message: "Informe um CPF com 11 dígitos ou um CNPJ com 14 dígitos",
		}
	}

	client, err := s.identity.FindClientByDocument(ctx, digits)
	if err != nil {
		return nil, fmt.Errorf("find client by document: %w", err)
	}
	span.SetAttributes(attribute.String("client.id", client.ID))

	raw, err := s.invoices.ListInvoices(ctx, client.ID)
	if err != nil {
		s.logger.Warn("invoice list unavailable, returning empty lookup",
			zap.String("client_id", client.ID),
			zap.Error(err),
		)
		raw = nil
	}

	all := prepareInvoices(raw, time.Now())
	boletos := make([]domain.Invoice, 0, len(all))
	for _, inv := range all {
		if inv.Status == domain.InvoiceCancelled {
			continue
		}
		s.metrics.IncrInvoiceStatus(inv.Status)
		boletos = append(boletos, inv)
	}
	sortByDueDate(boletos)
	s.attachPix(ctx, boletos)

	return &domain.InvoiceList{Boletos: boletos, Resumo: Summarize(boletos)}, nil
}

// attachPix fills PixCopiaECola on every unsettled invoice that lacks one.
// A failed fetch leaves the invoice without PIX; the barcode still works.
func (s *InvoiceService) attachPix(ctx context.Context, invoices []domain.Invoice) {
	var g errgroup.Group
	g.SetLimit(pixFetchLimit)

	for i := range invoices {
		inv := &invoices[i]
		if inv.Status.Settled() || inv.PixCopiaECola != "" {
			continue
		}
		g.Go(func() error {
			pix, err := s.invoices.GetPix(ctx, inv.ID)
			if err != nil {
				if domain.IsUpstreamFailure(err) {
					s.metrics.IncrUpstreamError("get_pix")
				}
				s.logger.Warn("pix unavailable for invoice",
					zap.String("invoice_id", inv.ID),
					zap.Error(err),
				)
				return nil
			}
			if pix == nil {
				return nil
			}
			inv.PixCopiaECola = pix.CopiaECola
			if pix.TxID != "" {
				inv.PixTxID = pix.TxID
			}
			return nil
		})
	}
	_ = g.Wait()
}

// ============================================================
// Subscriber area: GET /faturas, GET /faturas/{id}/pix
// ============================================================

// ListForClient lists every invoice of the authenticated subscriber. An
// unavailable billing system yields an empty list.
func (s *InvoiceService) ListForClient(ctx context.Context, clientID string) *domain.InvoiceList {
	ctx, span := invoiceTracer.Start(ctx, "InvoiceService.ListForClient")
	defer span.End()
	span.SetAttributes(attribute.String("client.id", clientID))

	raw, err := s.invoices.ListInvoices(ctx, clientID)
	if err != nil {
		s.logger.Warn("invoice list unavailable, returning empty list",
			zap.String("client_id", clientID),
			zap.Error(err),
		)
	}

	invoices := prepareInvoices(raw, time.Now())
	sortByDueDate(invoices)
	return &domain.InvoiceList{Boletos: invoices, Resumo: Summarize(invoices)}
}

// GetPix returns the PIX charge of an invoice owned by clientID. Invoices of
// other subscribers are reported as not found.
func (s *InvoiceService) GetPix(ctx context.Context, clientID, invoiceID string) (*domain.PixPayment, error) {
	ctx, span := invoiceTracer.Start(ctx, "InvoiceService.GetPix")
	defer span.End()
	span.SetAttributes(
		attribute.String("client.id", clientID),
		attribute.String("invoice.id", invoiceID),
	)

	inv, err := s.invoices.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	if inv.ClientID != clientID {
		s.logger.Warn("pix requested for invoice of another client",
			zap.String("client_id", clientID),
			zap.String("invoice_id", invoiceID),
		)
		return nil, &domain.ErrNotFound{Resource: "fatura", ID: invoiceID}
	}

	status := ClassifyInvoice(inv.RawStatus, inv.Vencimento, time.Now())
	if status.Settled() {
		return nil, &domain.ErrValidation{Field: "fatura", Message: "Esta fatura já foi paga ou cancelada"}
	}

	pix, err := s.invoices.GetPix(ctx, invoiceID)
	if err != nil {
		var nf *domain.ErrNotFound
		if errors.As(err, &nf) {
			return nil, &domain.ErrNotFound{Resource: "pix", ID: invoiceID}
		}
		return nil, fmt.Errorf("get pix: %w", err)
	}
	if pix.Valor == "" {
		pix.Valor = FormatAmount(inv.Amount)
	}
	return pix, nil
}
