package service

import (
	"strings"
	"time"

	"github.com/boddenberg/isp-portal-bff/internal/domain"
)

// DueSoonWindow is how many days ahead an unpaid invoice counts as due soon.
const DueSoonWindow = 5

const (
	isoDateLayout = "2006-01-02"
	brDateLayout  = "02/01/2006"
)

// ClassifyInvoice derives the customer-facing status of an invoice from the
// billing system status code and its due date.
//
// Paid (P, R) and cancelled (C) codes win regardless of the date. Otherwise
// the due date is compared with today at local midnight; a date that cannot
// be parsed yields Open.
func ClassifyInvoice(rawStatus, dueDate string, today time.Time) domain.InvoiceStatus {
	switch strings.ToUpper(strings.TrimSpace(rawStatus)) {
	case "P", "R":
		return domain.InvoicePaid
	case "C":
		return domain.InvoiceCancelled
	}

	due, ok := ParseDueDate(dueDate, today.Location())
	if !ok {
		return domain.InvoiceOpen
	}

	day := midnight(today)
	switch {
	case due.Before(day):
		return domain.InvoiceOverdue
	case due.Equal(day):
		return domain.InvoiceDueToday
	case !due.After(day.AddDate(0, 0, DueSoonWindow)):
		return domain.InvoiceDueSoon
	}
	return domain.InvoiceOpen
}

// ParseDueDate parses YYYY-MM-DD when the value contains '-' and DD/MM/YYYY
// when it contains '/'. The format is picked by separator only. A trailing
// time ("2024-01-01 00:00:00") is ignored. Dates that do not exist, such as
// 31/02/2024, are rejected.
func ParseDueDate(value string, loc *time.Location) (time.Time, bool) {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return time.Time{}, false
	}
	s := fields[0]

	var layout string
	switch {
	case strings.Contains(s, "-"):
		layout = isoDateLayout
	case strings.Contains(s, "/"):
		layout = brDateLayout
	default:
		return time.Time{}, false
	}

	t, err := time.ParseInLocation(layout, s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// prepareInvoices classifies every invoice against today and fills the
// derived display fields. The input is not modified.
func prepareInvoices(invoices []domain.Invoice, today time.Time) []domain.Invoice {
	out := make([]domain.Invoice, len(invoices))
	for i, inv := range invoices {
		inv.Status = ClassifyInvoice(inv.RawStatus, inv.Vencimento, today)
		inv.StatusLabel = inv.Status.Label()
		inv.Valor = FormatAmount(inv.Amount)
		inv.ValorFormatado = FormatBRL(inv.Amount)
		inv.VencimentoFormatado = FormatDateBR(inv.Vencimento)
		out[i] = inv
	}
	return out
}
