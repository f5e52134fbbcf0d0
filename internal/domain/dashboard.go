package domain

import "time"

// Dashboard is the composite subscriber-area response. Every section is
// always present; failed fetches are replaced by placeholders.
type Dashboard struct {
	Cliente  Client           `json:"cliente"`
	Contrato Contract         `json:"contrato"`
	Consumo  Consumption      `json:"consumo"`
	Faturas  []Invoice        `json:"faturas"`
	Resumo   FinancialSummary `json:"resumo"`
	// Contratos is how many contracts the billing system returned; only the
	// principal one is shown in Contrato.
	Contratos int       `json:"totalContratos"`
	GeradoEm  time.Time `json:"geradoEm"`
}
