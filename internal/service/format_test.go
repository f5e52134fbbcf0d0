package service_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/boddenberg/isp-portal-bff/internal/domain"
	"github.com/boddenberg/isp-portal-bff/internal/service"
)

func TestFormatBRL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "R$ 0,00"},
		{"9.9", "R$ 9,90"},
		{"129.90", "R$ 129,90"},
		{"1234.56", "R$ 1.234,56"},
		{"1234567.891", "R$ 1.234.567,89"},
		{"0.005", "R$ 0,01"},
		{"-50", "-R$ 50,00"},
	}
	for _, tt := range tests {
		got := service.FormatBRL(decimal.RequireFromString(tt.in))
		if got != tt.want {
			t.Errorf("FormatBRL(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	if got := service.FormatAmount(decimal.RequireFromString("1234.5")); got != "1234.50" {
		t.Errorf("expected '1234.50', got '%s'", got)
	}
}

func TestFormatDateBR(t *testing.T) {
	tests := map[string]string{
		"2024-03-10":          "10/03/2024",
		"10/03/2024":          "10/03/2024",
		"2024-03-10 00:00:00": "10/03/2024",
		"":                    "",
		"amanhã":              "amanhã",
	}
	for in, want := range tests {
		if got := service.FormatDateBR(in); got != want {
			t.Errorf("FormatDateBR(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1536, "1.5 KB"},
		{10 * 1024 * 1024, "10.0 MB"},
		{1610612736, "1.5 GB"},
	}
	for _, tt := range tests {
		if got := service.FormatBytes(tt.in); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSummarize(t *testing.T) {
	invoices := []domain.Invoice{
		{Status: domain.InvoicePaid, Amount: decimal.RequireFromString("100")},
		{Status: domain.InvoiceCancelled, Amount: decimal.RequireFromString("50")},
		{Status: domain.InvoiceOverdue, Amount: decimal.RequireFromString("99.90")},
		{Status: domain.InvoiceDueToday, Amount: decimal.RequireFromString("10")},
		{Status: domain.InvoiceDueSoon, Amount: decimal.RequireFromString("0.10")},
		{Status: domain.InvoiceOpen, Amount: decimal.RequireFromString("1000")},
	}

	got := service.Summarize(invoices)

	if got.TotalBoletos != len(invoices) {
		t.Errorf("expected TotalBoletos %d, got %d", len(invoices), got.TotalBoletos)
	}
	if got.BoletosVencidos != 1 {
		t.Errorf("expected 1 overdue, got %d", got.BoletosVencidos)
	}
	if got.BoletosAVencer != 3 {
		t.Errorf("expected 3 upcoming, got %d", got.BoletosAVencer)
	}
	if got.ValorEmAberto != "R$ 1.110,00" {
		t.Errorf("expected 'R$ 1.110,00', got '%s'", got.ValorEmAberto)
	}
	if got.ValorEmAbertoRaw != "1110.00" {
		t.Errorf("expected '1110.00', got '%s'", got.ValorEmAbertoRaw)
	}
}

func TestSummarize_Empty(t *testing.T) {
	got := service.Summarize(nil)
	if got.TotalBoletos != 0 || got.ValorEmAberto != "R$ 0,00" {
		t.Errorf("unexpected empty summary: %+v", got)
	}
}
