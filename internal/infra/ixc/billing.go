package ixc

import (
	"context"
	"errors"
	"fmt"

	"github.com/boddenberg/isp-portal-bff/internal/domain"
	"github.com/boddenberg/isp-portal-bff/internal/port"
	"go.opentelemetry.io/otel/attribute"
)

// IXC resources used by the portal.
const (
	resClient        = "cliente"
	resContract      = "cliente_contrato"
	resRadius        = "radusuarios"
	resMonthlyUsage  = "radusuarios_consumo_m"
	resInvoice       = "fn_areceber"
	resPix           = "get_pix"
	resUnlock        = "desbloqueio_confianca"
	resDisconnect    = "desconectar_clientes"
	resClearMAC      = "limpar_mac_radusuario"
	resTicket        = "su_oss_chamado"
	maxPages         = 10
	usageHistoryRows = 6
)

// Billing implements the portal's ports on top of Client. Reads that fail
// soft in the client surface here as errors so the service layer decides
// between a placeholder and an empty list.
type Billing struct {
	client          *Client
	ticketSubjectID string
}

// NewBilling creates a new Billing. ticketSubjectID is the su_oss_assunto
// used for tickets opened from the portal.
func NewBilling(client *Client, ticketSubjectID string) *Billing {
	return &Billing{client: client, ticketSubjectID: ticketSubjectID}
}

var (
	_ port.IdentityResolver = (*Billing)(nil)
	_ port.AccountReader    = (*Billing)(nil)
	_ port.InvoiceReader    = (*Billing)(nil)
	_ port.CommandSender    = (*Billing)(nil)
)

// ============================================================
// IdentityResolver
// ============================================================

// FindClientByDocument looks a subscriber up by CPF/CNPJ digits. IXC stores
// the masked form, so the query is masked too.
func (b *Billing) FindClientByDocument(ctx context.Context, digits string) (*domain.Client, error) {
	return b.findClient(ctx, "cliente.cnpj_cpf", domain.FormatTaxID(digits))
}

// FindClientByEmail looks a subscriber up by subscriber-area e-mail.
func (b *Billing) FindClientByEmail(ctx context.Context, email string) (*domain.Client, error) {
	return b.findClient(ctx, "cliente.hotsite_email", email)
}

func (b *Billing) findClient(ctx context.Context, field, value string) (*domain.Client, error) {
	rec, err := b.client.Find(ctx, resClient, domain.Query{Field: field, Value: value})
	if err != nil {
		return nil, err
	}
	c := ToClient(rec)
	return &c, nil
}

// ============================================================
// AccountReader
// ============================================================

// GetClient fetches a subscriber by id.
func (b *Billing) GetClient(ctx context.Context, clientID string) (*domain.Client, error) {
	return b.findClient(ctx, "cliente.id", clientID)
}

// ListContracts returns every contract of the subscriber, in upstream order.
func (b *Billing) ListContracts(ctx context.Context, clientID string) ([]domain.Contract, error) {
	recs, err := b.listAll(ctx, resContract, domain.Query{Field: "cliente_contrato.id_cliente", Value: clientID})
	if err != nil {
		return nil, err
	}
	contracts := make([]domain.Contract, 0, len(recs))
	for _, r := range recs {
		contracts = append(contracts, ToContract(r))
	}
	return contracts, nil
}

// ListRadiusLogins returns the access logins of the subscriber.
func (b *Billing) ListRadiusLogins(ctx context.Context, clientID string) ([]domain.RadiusLogin, error) {
	recs, err := b.listAll(ctx, resRadius, domain.Query{Field: "radusuarios.id_cliente", Value: clientID})
	if err != nil {
		return nil, err
	}
	logins := make([]domain.RadiusLogin, 0, len(recs))
	for _, r := range recs {
		logins = append(logins, ToRadiusLogin(r))
	}
	return logins, nil
}

// GetConsumption sums current usage across all logins of the subscriber and
// attaches the monthly history of the first login. A failed history fetch
// leaves the history empty; a failed login fetch is an error.
func (b *Billing) GetConsumption(ctx context.Context, clientID string) (*domain.Consumption, error) {
	ctx, span := tracer.Start(ctx, "Billing.GetConsumption")
	defer span.End()
	span.SetAttributes(attribute.String("client.id", clientID))

	logins, err := b.ListRadiusLogins(ctx, clientID)
	if err != nil {
		return nil, err
	}

	c := &domain.Consumption{Historico: []domain.UsagePoint{}, Disponivel: true}
	for _, l := range logins {
		c.DownloadBytes += l.DownloadBytes
		c.UploadBytes += l.UploadBytes
	}
	if len(logins) == 0 {
		return c, nil
	}

	res := b.client.List(ctx, resMonthlyUsage, domain.Query{
		Field:     "radusuarios_consumo_m.id_login",
		Value:     logins[0].ID,
		Rows:      usageHistoryRows,
		SortName:  "radusuarios_consumo_m.data",
		SortOrder: "desc",
	})
	for _, r := range res.Records {
		c.Historico = append(c.Historico, ToUsagePoint(r))
	}
	return c, nil
}

// ============================================================
// InvoiceReader
// ============================================================

// ListInvoices returns every receivable of the subscriber, paging through
// the webservice up to maxPages.
func (b *Billing) ListInvoices(ctx context.Context, clientID string) ([]domain.Invoice, error) {
	recs, err := b.listAll(ctx, resInvoice, domain.Query{
		Field:     "fn_areceber.id_cliente",
		Value:     clientID,
		SortName:  "fn_areceber.data_vencimento",
		SortOrder: "desc",
	})
	if err != nil {
		return nil, err
	}
	invoices := make([]domain.Invoice, 0, len(recs))
	for _, r := range recs {
		invoices = append(invoices, ToInvoice(r))
	}
	return invoices, nil
}

// GetInvoice fetches one receivable by id.
func (b *Billing) GetInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	rec, err := b.client.Find(ctx, resInvoice, domain.Query{Field: "fn_areceber.id", Value: invoiceID})
	if err != nil {
		return nil, err
	}
	inv := ToInvoice(rec)
	return &inv, nil
}

// GetPix asks IXC for the PIX charge of a receivable.
func (b *Billing) GetPix(ctx context.Context, invoiceID string) (*domain.PixPayment, error) {
	rec, err := b.client.Invoke(ctx, resPix, map[string]string{"id_areceber": invoiceID})
	if err != nil {
		return nil, err
	}
	pix := ToPix(invoiceID, rec)
	if pix.CopiaECola == "" {
		return nil, &domain.ErrNotFound{Resource: "pix", ID: invoiceID}
	}
	return &pix, nil
}

// ============================================================
// CommandSender
// ============================================================

// UpdatePassword sets the subscriber-area password.
func (b *Billing) UpdatePassword(ctx context.Context, clientID, newPassword string) error {
	res := b.client.Update(ctx, resClient, clientID, map[string]string{"senha": newPassword})
	return writeErr(resClient, res)
}

// RequestConfidenceUnlock asks IXC to lift a billing block on the contract.
func (b *Billing) RequestConfidenceUnlock(ctx context.Context, contractID string) error {
	res := b.client.Create(ctx, resUnlock, map[string]string{"id": contractID})
	return writeErr(resUnlock, res)
}

// RunLoginAction forwards a whitelisted command on a radius login.
func (b *Billing) RunLoginAction(ctx context.Context, loginID string, action domain.LoginAction) error {
	var resource string
	switch action {
	case domain.LoginActionDisconnect:
		resource = resDisconnect
	case domain.LoginActionClearMAC:
		resource = resClearMAC
	default:
		return &domain.ErrValidation{Field: "action", Message: "Ação não permitida"}
	}
	res := b.client.Create(ctx, resource, map[string]string{"id": loginID})
	return writeErr(resource, res)
}

// OpenTicket creates a support ticket and returns its upstream id, which may
// be empty when IXC does not report one.
func (b *Billing) OpenTicket(ctx context.Context, clientID string, req *domain.TicketRequest) (string, error) {
	payload := map[string]string{
		"id_cliente":      clientID,
		"id_assunto":      b.ticketSubjectID,
		"titulo":          req.Assunto,
		"mensagem":        req.Mensagem,
		"origem_endereco": "C",
		"tipo":            "C",
		"prioridade":      "M",
		"status":          "A",
	}
	res := b.client.Create(ctx, resTicket, payload)
	if err := writeErr(resTicket, res); err != nil {
		return "", err
	}
	return res.ID, nil
}

// ============================================================
// Helpers
// ============================================================

// listAll pages through a listing. A failure on the first page is an error;
// a failure on a later page returns what was read so far.
func (b *Billing) listAll(ctx context.Context, resource string, q domain.Query) ([]domain.Record, error) {
	var out []domain.Record
	for page := 1; page <= maxPages; page++ {
		q.Page = page
		res := b.client.List(ctx, resource, q)
		if res.Degraded {
			if page == 1 {
				return nil, &domain.ErrExternalService{Service: serviceName, Err: fmt.Errorf("listing %s failed", resource)}
			}
			break
		}
		out = append(out, res.Records...)
		if len(res.Records) == 0 || len(out) >= res.Total {
			break
		}
	}
	if out == nil {
		out = []domain.Record{}
	}
	return out, nil
}

func writeErr(resource string, res *domain.WriteResult) error {
	if !res.Error {
		return nil
	}
	cause := errors.New(res.Message)
	if res.Status != 0 {
		cause = fmt.Errorf("%s (status %d)", res.Message, res.Status)
	}
	return &domain.ErrExternalService{Service: serviceName, Err: fmt.Errorf("%s: %w", resource, cause)}
}
