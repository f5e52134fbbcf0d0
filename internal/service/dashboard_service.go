package service

import (
	"context"
	"strconv"
	"time"

	"github.com/boddenberg/isp-portal-bff/internal/domain"
	"github.com/boddenberg/isp-portal-bff/internal/infra/observability"
	"github.com/boddenberg/isp-portal-bff/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var dashboardTracer = otel.Tracer("service/dashboard")

// DashboardService composes the subscriber-area dashboard.
type DashboardService struct {
	accounts port.AccountReader
	invoices port.InvoiceReader
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewDashboardService creates the dashboard service with all dependencies injected.
func NewDashboardService(accounts port.AccountReader, invoices port.InvoiceReader, metrics *observability.Metrics, logger *zap.Logger) *DashboardService {
	return &DashboardService{
		accounts: accounts,
		invoices: invoices,
		metrics:  metrics,
		logger:   logger,
	}
}

// GetDashboard fetches profile, contracts, consumption and invoices
// concurrently. A failed fetch never fails the dashboard: its section is
// replaced by a placeholder.
func (s *DashboardService) GetDashboard(ctx context.Context, clientID string) *domain.Dashboard {
	ctx, span := dashboardTracer.Start(ctx, "DashboardService.GetDashboard")
	defer span.End()
	span.SetAttributes(attribute.String("client.id", clientID))

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("dashboard", time.Since(start))
	}()

	var (
		client      = domain.UnavailableClient(clientID)
		contracts   []domain.Contract
		consumption = domain.UnavailableConsumption()
		invoices    = []domain.Invoice{}
	)

	// No shared cancellation: every goroutine returns nil.
	var g errgroup.Group

	g.Go(func() error {
		c, err := s.accounts.GetClient(ctx, clientID)
		if err != nil {
			s.degraded("cliente", clientID, err)
			return nil
		}
		client = *c
		return nil
	})

	g.Go(func() error {
		cs, err := s.accounts.ListContracts(ctx, clientID)
		if err != nil {
			s.degraded("contrato", clientID, err)
			return nil
		}
		contracts = cs
		return nil
	})

	g.Go(func() error {
		c, err := s.accounts.GetConsumption(ctx, clientID)
		if err != nil {
			s.degraded("consumo", clientID, err)
			return nil
		}
		consumption = formatConsumption(*c)
		return nil
	})

	g.Go(func() error {
		inv, err := s.invoices.ListInvoices(ctx, clientID)
		if err != nil {
			s.degraded("faturas", clientID, err)
			return nil
		}
		invoices = inv
		return nil
	})

	_ = g.Wait()

	contract, ok := PrincipalContract(contracts)
	if !ok {
		contract = domain.UnavailableContract(clientID)
	}

	invoices = prepareInvoices(invoices, time.Now())
	sortByDueDate(invoices)
	for _, inv := range invoices {
		s.metrics.IncrInvoiceStatus(inv.Status)
	}

	return &domain.Dashboard{
		Cliente:   client,
		Contrato:  contract,
		Consumo:   consumption,
		Faturas:   invoices,
		Resumo:    Summarize(invoices),
		Contratos: len(contracts),
		GeradoEm:  time.Now().UTC(),
	}
}

func (s *DashboardService) degraded(section, clientID string, err error) {
	s.metrics.IncrUpstreamError("dashboard_" + section)
	s.logger.Warn("dashboard section unavailable, using placeholder",
		zap.String("section", section),
		zap.String("client_id", clientID),
		zap.Error(err),
	)
}

// PrincipalContract picks the contract shown on the dashboard: the one with
// the lowest numeric id. Non-numeric ids sort after numeric ones.
func PrincipalContract(contracts []domain.Contract) (domain.Contract, bool) {
	if len(contracts) == 0 {
		return domain.Contract{}, false
	}
	best := contracts[0]
	for _, c := range contracts[1:] {
		if lessID(c.ID, best.ID) {
			best = c
		}
	}
	return best, true
}

func lessID(a, b string) bool {
	ai, aerr := strconv.ParseInt(a, 10, 64)
	bi, berr := strconv.ParseInt(b, 10, 64)
	switch {
	case aerr == nil && berr == nil:
		return ai < bi
	case aerr == nil:
		return true
	case berr == nil:
		return false
	}
	return a < b
}

func formatConsumption(c domain.Consumption) domain.Consumption {
	c.Download = FormatBytes(c.DownloadBytes)
	c.Upload = FormatBytes(c.UploadBytes)
	history := make([]domain.UsagePoint, len(c.Historico))
	for i, p := range c.Historico {
		p.Download = FormatBytes(p.DownloadBytes)
		p.Upload = FormatBytes(p.UploadBytes)
		history[i] = p
	}
	c.Historico = history
	c.Disponivel = true
	return c
}
