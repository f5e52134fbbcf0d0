package ixc

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/boddenberg/isp-portal-bff/internal/domain"
	"github.com/shopspring/decimal"
)

// This file is the only place that knows IXC field names. Each mapping lists
// its fallback chain in order; the first non-empty value wins.

// ============================================================
// Value helpers
// ============================================================

// Str returns the first non-empty value among keys, as a trimmed string.
// Numbers are rendered without exponent; nil and missing keys are skipped.
func Str(r domain.Record, keys ...string) string {
	for _, k := range keys {
		if s := toString(r[k]); s != "" {
			return s
		}
	}
	return ""
}

// Path follows nested objects, e.g. Path(r, "pix", "qrCode", "qrcode").
func Path(r domain.Record, keys ...string) string {
	var cur any = map[string]any(r)
	for _, k := range keys {
		m, ok := asMap(cur)
		if !ok {
			return ""
		}
		cur = m[k]
	}
	return toString(cur)
}

// Amount parses a monetary value. IXC sends "99.90", 99.9 or occasionally
// "1.234,56"; anything unparsable is zero.
func Amount(r domain.Record, keys ...string) decimal.Decimal {
	s := Str(r, keys...)
	if s == "" {
		return decimal.Zero
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Int64 parses an integer counter such as a byte total; zero when absent.
func Int64(r domain.Record, keys ...string) int64 {
	s := Str(r, keys...)
	if s == "" {
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if d, err := decimal.NewFromString(s); err == nil {
		return d.IntPart()
	}
	return 0
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case map[string]any, domain.Record, []any:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func toInt(v any) int {
	n, err := strconv.Atoi(toString(v))
	if err != nil {
		return 0
	}
	return n
}

func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case domain.Record:
		return t, true
	}
	return nil, false
}

// ============================================================
// Record mappings
// ============================================================

// ToClient maps a "cliente" record.
//   - Nome: razao → fantasia → "" (never a placeholder: the record exists)
//   - CpfCnpj: cnpj_cpf, re-masked from its digits
//   - Email: email → hotsite_email
//   - Telefone: telefone_celular → fone → telefone_comercial
func ToClient(r domain.Record) domain.Client {
	return domain.Client{
		ID:           Str(r, "id"),
		Nome:         Str(r, "razao", "fantasia"),
		NomeFantasia: Str(r, "fantasia"),
		CpfCnpj:      domain.FormatTaxID(Str(r, "cnpj_cpf")),
		Email:        Str(r, "email", "hotsite_email"),
		Telefone:     Str(r, "telefone_celular", "fone", "telefone_comercial"),
		Endereco:     toAddress(r),
		Disponivel:   true,

		HotsiteEmail:    Str(r, "hotsite_email", "email"),
		HotsitePassword: Str(r, "senha"),
	}
}

// ToContract maps a "cliente_contrato" record.
//   - Plano: contrato → descricao_aux_plano_venda → "Plano não informado"
//   - Velocidade: velocidade → download_velocidade → ""
//   - Status: see contractStatus
func ToContract(r domain.Record) domain.Contract {
	raw := strings.ToUpper(Str(r, "status"))
	internet := strings.ToUpper(Str(r, "status_internet"))
	status := contractStatus(raw, internet)

	plano := Str(r, "contrato", "descricao_aux_plano_venda")
	if plano == "" {
		plano = "Plano não informado"
	}

	return domain.Contract{
		ID:              Str(r, "id"),
		ClientID:        Str(r, "id_cliente"),
		Plano:           plano,
		Velocidade:      Str(r, "velocidade", "download_velocidade"),
		Status:          status,
		StatusOriginal:  raw,
		StatusInternet:  internet,
		StatusDescricao: contractStatusLabel(status, internet),
		AtivadoEm:       Str(r, "data_ativacao", "data"),
		Endereco:        toAddress(r),
		Disponivel:      true,
	}
}

// contractStatus folds the contract status (A ativo, I inativo, N negativado,
// D desistiu) and the access status (A ativo, D desativado, CM bloqueio
// manual, CA bloqueio automático, FA financeiro em atraso, AA aguardando
// assinatura) into one value.
func contractStatus(status, internet string) domain.ContractStatus {
	switch status {
	case "I", "D":
		return domain.ContractCancelled
	case "N":
		return domain.ContractSuspended
	}
	switch internet {
	case "CM", "CA", "FA", "D":
		return domain.ContractSuspended
	}
	if status == "A" {
		return domain.ContractActive
	}
	return domain.ContractUnknown
}

func contractStatusLabel(status domain.ContractStatus, internet string) string {
	switch status {
	case domain.ContractActive:
		return "Ativo"
	case domain.ContractCancelled:
		return "Cancelado"
	case domain.ContractSuspended:
		switch internet {
		case "CM":
			return "Bloqueio manual"
		case "CA":
			return "Bloqueio automático"
		case "FA":
			return "Financeiro em atraso"
		}
		return "Suspenso"
	}
	return "Desconhecido"
}

// ToRadiusLogin maps a "radusuarios" record. Online is "S"/"N".
//   - bytes: download_atual → consumo_download, upload_atual → consumo_upload
func ToRadiusLogin(r domain.Record) domain.RadiusLogin {
	return domain.RadiusLogin{
		ID:            Str(r, "id"),
		ClientID:      Str(r, "id_cliente"),
		ContractID:    Str(r, "id_contrato"),
		Login:         Str(r, "login"),
		Online:        strings.EqualFold(Str(r, "online"), "S"),
		IP:            Str(r, "ip"),
		MAC:           Str(r, "mac"),
		DownloadBytes: Int64(r, "download_atual", "consumo_download"),
		UploadBytes:   Int64(r, "upload_atual", "consumo_upload"),
	}
}

// ToUsagePoint maps a "radusuarios_consumo_m" (monthly usage) record.
//   - Label: data → mes_ano
//   - bytes: consumo → download, consumo_upload → upload
func ToUsagePoint(r domain.Record) domain.UsagePoint {
	return domain.UsagePoint{
		Label:         Str(r, "data", "mes_ano"),
		DownloadBytes: Int64(r, "consumo", "download"),
		UploadBytes:   Int64(r, "consumo_upload", "upload"),
	}
}

// ToInvoice maps a "fn_areceber" record. Derived fields (status, formatted
// values) are filled by the service layer.
//   - Documento: documento → nn_boleto → id
//   - ContractID: id_contrato → id_contrato_avulso
//   - PagoEm: pagamento_data → data_pagamento
//   - LinkPDF: gateway_link → link_boleto
//   - PixCopiaECola: pix_copia_cola → pix_qrcode (only set on some IXC versions)
func ToInvoice(r domain.Record) domain.Invoice {
	id := Str(r, "id")
	doc := Str(r, "documento", "nn_boleto")
	if doc == "" {
		doc = id
	}
	return domain.Invoice{
		ID:             id,
		ClientID:       Str(r, "id_cliente"),
		ContractID:     Str(r, "id_contrato", "id_contrato_avulso"),
		Documento:      doc,
		Emissao:        Str(r, "data_emissao"),
		Vencimento:     Str(r, "data_vencimento"),
		Amount:         Amount(r, "valor"),
		RawStatus:      Str(r, "status"),
		PagoEm:         Str(r, "pagamento_data", "data_pagamento"),
		LinhaDigitavel: Str(r, "linha_digitavel"),
		PixTxID:        Str(r, "pix_txid"),
		PixCopiaECola:  Str(r, "pix_copia_cola", "pix_qrcode"),
		LinkPDF:        Str(r, "gateway_link", "link_boleto"),
	}
}

// ToPix maps a "get_pix" answer. The payload has moved around between IXC
// versions:
//   - CopiaECola: qrcode → pix_copia_cola → copia_e_cola → pix.qrCode.qrcode
//   - TxID: txid → pix_txid → pix.txid
//   - QRCodeImage: imagemQrcode → qrcode_imagem → pix.qrCode.imagemQrcode
func ToPix(invoiceID string, r domain.Record) domain.PixPayment {
	code := Str(r, "qrcode", "pix_copia_cola", "copia_e_cola")
	if code == "" {
		code = Path(r, "pix", "qrCode", "qrcode")
	}
	txid := Str(r, "txid", "pix_txid")
	if txid == "" {
		txid = Path(r, "pix", "txid")
	}
	img := Str(r, "imagemQrcode", "qrcode_imagem")
	if img == "" {
		img = Path(r, "pix", "qrCode", "imagemQrcode")
	}
	return domain.PixPayment{
		InvoiceID:   invoiceID,
		TxID:        txid,
		CopiaECola:  code,
		QRCodeImage: img,
		Valor:       Str(r, "valor"),
	}
}

func toAddress(r domain.Record) domain.Address {
	return domain.Address{
		Logradouro:  Str(r, "endereco"),
		Numero:      Str(r, "numero"),
		Complemento: Str(r, "complemento"),
		Bairro:      Str(r, "bairro"),
		Cidade:      Str(r, "cidade"),
		CEP:         Str(r, "cep"),
	}
}
