package service

import (
	"sort"
	"time"

	"github.com/boddenberg/isp-portal-bff/internal/domain"
	"github.com/shopspring/decimal"
)

// Summarize computes the financial summary of classified invoices.
// Paid and cancelled invoices count towards TotalBoletos only.
func Summarize(invoices []domain.Invoice) domain.FinancialSummary {
	open := decimal.Zero
	s := domain.FinancialSummary{TotalBoletos: len(invoices)}

	for _, inv := range invoices {
		switch inv.Status {
		case domain.InvoiceOverdue:
			s.BoletosVencidos++
		case domain.InvoiceDueToday, domain.InvoiceDueSoon, domain.InvoiceOpen:
			s.BoletosAVencer++
		}
		if !inv.Status.Settled() {
			open = open.Add(inv.Amount)
		}
	}

	s.ValorEmAberto = FormatBRL(open)
	s.ValorEmAbertoRaw = FormatAmount(open)
	return s
}

// sortByDueDate orders invoices by due date, oldest first. Invoices with an
// unparsable date go last, keeping their relative order.
func sortByDueDate(invoices []domain.Invoice) {
	key := func(inv domain.Invoice) (time.Time, bool) {
		return ParseDueDate(inv.Vencimento, time.UTC)
	}
	sort.SliceStable(invoices, func(i, j int) bool {
		a, aok := key(invoices[i])
		b, bok := key(invoices[j])
		switch {
		case aok && bok:
			return a.Before(b)
		case aok:
			return true
		}
		return false
	})
}
