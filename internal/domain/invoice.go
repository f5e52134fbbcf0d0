package domain

import "github.com/shopspring/decimal"

// ============================================================
// Invoices (Faturas / Boletos)
// ============================================================

// InvoiceStatus is the customer-facing status derived at read time.
type InvoiceStatus string

const (
	InvoicePaid      InvoiceStatus = "pago"
	InvoiceCancelled InvoiceStatus = "cancelado"
	InvoiceOverdue   InvoiceStatus = "vencido"
	InvoiceDueToday  InvoiceStatus = "vence_hoje"
	InvoiceDueSoon   InvoiceStatus = "vence_em_breve"
	InvoiceOpen      InvoiceStatus = "aberto"
)

// Label returns the badge text for the status.
func (s InvoiceStatus) Label() string {
	switch s {
	case InvoicePaid:
		return "Pago"
	case InvoiceCancelled:
		return "Cancelado"
	case InvoiceOverdue:
		return "Vencido"
	case InvoiceDueToday:
		return "Vence hoje"
	case InvoiceDueSoon:
		return "Vence em breve"
	default:
		return "Em aberto"
	}
}

// Settled reports whether the invoice no longer counts towards the open amount.
func (s InvoiceStatus) Settled() bool {
	return s == InvoicePaid || s == InvoiceCancelled
}

// Invoice is a billing record. Status, StatusLabel and the formatted fields
// are derived on every read and never persisted.
type Invoice struct {
	ID                  string          `json:"id"`
	ClientID            string          `json:"clienteId"`
	ContractID          string          `json:"contratoId,omitempty"`
	Documento           string          `json:"documento"`
	Emissao             string          `json:"emissao,omitempty"`
	Vencimento          string          `json:"vencimento"`
	VencimentoFormatado string          `json:"vencimentoFormatado"`
	Amount              decimal.Decimal `json:"-"`
	Valor               string          `json:"valor"`
	ValorFormatado      string          `json:"valorFormatado"`
	RawStatus           string          `json:"statusOriginal"`
	Status              InvoiceStatus   `json:"status"`
	StatusLabel         string          `json:"statusDescricao"`
	PagoEm              string          `json:"pagoEm,omitempty"`
	LinhaDigitavel      string          `json:"linhaDigitavel,omitempty"`
	PixTxID             string          `json:"pixTxid,omitempty"`
	PixCopiaECola       string          `json:"pixCopiaECola,omitempty"`
	LinkPDF             string          `json:"linkPdf,omitempty"`
}

// FinancialSummary is computed from one client's invoice set on every request.
type FinancialSummary struct {
	TotalBoletos     int    `json:"totalBoletos"`
	ValorEmAberto    string `json:"valorEmAberto"`
	ValorEmAbertoRaw string `json:"valorEmAbertoRaw"`
	BoletosVencidos  int    `json:"boletosVencidos"`
	BoletosAVencer   int    `json:"boletosAVencer"`
}

// InvoiceList is the response of the invoice lookup operations.
type InvoiceList struct {
	Boletos []Invoice        `json:"boletos"`
	Resumo  FinancialSummary `json:"resumo"`
}

// InvoiceLookupRequest is the body for POST /faturas.
type InvoiceLookupRequest struct {
	CpfCnpj string `json:"cpfCnpj"`
}

// PixPayment is the PIX charge attached to an invoice.
type PixPayment struct {
	InvoiceID   string `json:"faturaId"`
	TxID        string `json:"txid,omitempty"`
	CopiaECola  string `json:"copiaECola"`
	QRCodeImage string `json:"qrcodeImagem,omitempty"`
	Valor       string `json:"valor,omitempty"`
}
