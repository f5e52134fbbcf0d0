package ixc_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/boddenberg/isp-portal-bff/internal/domain"
	"github.com/boddenberg/isp-portal-bff/internal/infra/ixc"
)

func TestStr_FallbackChain(t *testing.T) {
	r := domain.Record{"a": "  ", "b": nil, "c": json.Number("12"), "d": "x"}

	assert.Equal(t, "12", ixc.Str(r, "a", "b", "c", "d"))
	assert.Equal(t, "", ixc.Str(r, "missing"))
	assert.Equal(t, "1.5", ixc.Str(domain.Record{"f": 1.5}, "f"))
}

func TestPath_Nested(t *testing.T) {
	r := domain.Record{"pix": map[string]any{"qrCode": map[string]any{"qrcode": "000201"}}}

	assert.Equal(t, "000201", ixc.Path(r, "pix", "qrCode", "qrcode"))
	assert.Equal(t, "", ixc.Path(r, "pix", "nope", "qrcode"))
	assert.Equal(t, "", ixc.Path(r, "pix"))
}

func TestAmount(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"99.90", "99.9"},
		{json.Number("120.5"), "120.5"},
		{"1.234,56", "1234.56"},
		{"89,9", "89.9"},
		{"abc", "0"},
		{nil, "0"},
	}
	for _, tt := range tests {
		got := ixc.Amount(domain.Record{"valor": tt.in}, "valor")
		assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "Amount(%v) = %s, want %s", tt.in, got, tt.want)
	}
}

func TestInt64(t *testing.T) {
	assert.Equal(t, int64(1073741824), ixc.Int64(domain.Record{"x": "1073741824"}, "x"))
	assert.Equal(t, int64(10), ixc.Int64(domain.Record{"x": json.Number("10.7")}, "x"))
	assert.Equal(t, int64(0), ixc.Int64(domain.Record{}, "x"))
}

func TestToClient(t *testing.T) {
	c := ixc.ToClient(domain.Record{
		"id":            json.Number("7"),
		"fantasia":      "Padaria Central",
		"cnpj_cpf":      "12345678901",
		"hotsite_email": "fulano@example.com",
		"senha":         "s3nha",
		"fone":          "(11) 4000-0000",
		"endereco":      "Rua A",
	})

	assert.Equal(t, "7", c.ID)
	assert.Equal(t, "Padaria Central", c.Nome)
	assert.Equal(t, "123.456.789-01", c.CpfCnpj)
	assert.Equal(t, "fulano@example.com", c.Email)
	assert.Equal(t, "fulano@example.com", c.HotsiteEmail)
	assert.Equal(t, "s3nha", c.HotsitePassword)
	assert.Equal(t, "(11) 4000-0000", c.Telefone)
	assert.Equal(t, "Rua A", c.Endereco.Logradouro)
	assert.True(t, c.Disponivel)
}

func TestToContract_Status(t *testing.T) {
	tests := []struct {
		status, internet string
		want             domain.ContractStatus
		label            string
	}{
		{"A", "A", domain.ContractActive, "Ativo"},
		{"a", "", domain.ContractActive, "Ativo"},
		{"A", "CA", domain.ContractSuspended, "Bloqueio automático"},
		{"A", "FA", domain.ContractSuspended, "Financeiro em atraso"},
		{"N", "A", domain.ContractSuspended, "Suspenso"},
		{"I", "A", domain.ContractCancelled, "Cancelado"},
		{"D", "", domain.ContractCancelled, "Cancelado"},
		{"P", "AA", domain.ContractUnknown, "Desconhecido"},
	}
	for _, tt := range tests {
		c := ixc.ToContract(domain.Record{"status": tt.status, "status_internet": tt.internet})
		assert.Equal(t, tt.want, c.Status, "status=%s internet=%s", tt.status, tt.internet)
		assert.Equal(t, tt.label, c.StatusDescricao, "status=%s internet=%s", tt.status, tt.internet)
	}
}

func TestToContract_PlanFallback(t *testing.T) {
	c := ixc.ToContract(domain.Record{"id": "3"})
	assert.Equal(t, "Plano não informado", c.Plano)

	c = ixc.ToContract(domain.Record{"descricao_aux_plano_venda": "FIBRA 500M"})
	assert.Equal(t, "FIBRA 500M", c.Plano)
}

func TestToInvoice(t *testing.T) {
	inv := ixc.ToInvoice(domain.Record{
		"id":              "55",
		"id_cliente":      "7",
		"data_vencimento": "2024-03-10",
		"valor":           "129.90",
		"status":          "A",
		"linha_digitavel": "34191.79001",
		"gateway_link":    "https://boleto.example/55",
	})

	assert.Equal(t, "55", inv.Documento, "documento falls back to id")
	assert.Equal(t, "2024-03-10", inv.Vencimento)
	assert.True(t, inv.Amount.Equal(decimal.RequireFromString("129.90")))
	assert.Equal(t, "A", inv.RawStatus)
	assert.Equal(t, "https://boleto.example/55", inv.LinkPDF)
	assert.Empty(t, inv.PixCopiaECola)
}

func TestToInvoice_InlinePix(t *testing.T) {
	inv := ixc.ToInvoice(domain.Record{"id": "56", "pix_qrcode": "00020126", "pix_txid": "TX56"})

	assert.Equal(t, "00020126", inv.PixCopiaECola)
	assert.Equal(t, "TX56", inv.PixTxID)
}

func TestToPix_FallbackPaths(t *testing.T) {
	flat := ixc.ToPix("1", domain.Record{"pix_copia_cola": "AAA", "pix_txid": "T1"})
	assert.Equal(t, "AAA", flat.CopiaECola)
	assert.Equal(t, "T1", flat.TxID)

	nested := ixc.ToPix("2", domain.Record{"pix": map[string]any{
		"txid":   "T2",
		"qrCode": map[string]any{"qrcode": "BBB", "imagemQrcode": "data:image/png;base64,xx"},
	}})
	assert.Equal(t, "BBB", nested.CopiaECola)
	assert.Equal(t, "T2", nested.TxID)
	assert.Equal(t, "data:image/png;base64,xx", nested.QRCodeImage)
	assert.Equal(t, "2", nested.InvoiceID)
}

func TestToRadiusLogin(t *testing.T) {
	l := ixc.ToRadiusLogin(domain.Record{
		"id":               "4",
		"login":            "fulano@fibra",
		"online":           "S",
		"consumo_download": "2048",
		"upload_atual":     json.Number("1024"),
	})

	assert.True(t, l.Online)
	assert.Equal(t, int64(2048), l.DownloadBytes)
	assert.Equal(t, int64(1024), l.UploadBytes)
}
