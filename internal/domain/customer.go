package domain

// ============================================================
// Customer / Contract / Consumption
// ============================================================

// Placeholder shown wherever an upstream value could not be fetched.
const UnavailableText = "Indisponível"

// Address is an installation or billing address.
type Address struct {
	Logradouro  string `json:"logradouro"`
	Numero      string `json:"numero,omitempty"`
	Complemento string `json:"complemento,omitempty"`
	Bairro      string `json:"bairro,omitempty"`
	Cidade      string `json:"cidade,omitempty"`
	CEP         string `json:"cep,omitempty"`
}

// Client is the subscriber record owned by the billing system.
type Client struct {
	ID           string  `json:"id"`
	Nome         string  `json:"nome"`
	NomeFantasia string  `json:"nomeFantasia,omitempty"`
	CpfCnpj      string  `json:"cpfCnpj"`
	Email        string  `json:"email"`
	Telefone     string  `json:"telefone,omitempty"`
	Endereco     Address `json:"endereco"`
	Disponivel   bool    `json:"disponivel"`

	// HotsiteEmail and HotsitePassword are the subscriber-area credentials
	// kept by the billing system. Never serialized.
	HotsiteEmail    string `json:"-"`
	HotsitePassword string `json:"-"`
}

// UnavailableClient is the dashboard placeholder for a failed profile fetch.
func UnavailableClient(id string) Client {
	return Client{
		ID:       id,
		Nome:     UnavailableText,
		CpfCnpj:  UnavailableText,
		Email:    UnavailableText,
		Endereco: Address{Logradouro: UnavailableText},
	}
}

// ContractStatus is the normalized service agreement state.
type ContractStatus string

const (
	ContractActive    ContractStatus = "ativo"
	ContractSuspended ContractStatus = "suspenso"
	ContractCancelled ContractStatus = "cancelado"
	ContractUnknown   ContractStatus = "desconhecido"
)

// Contract is a service agreement between the provider and a client.
type Contract struct {
	ID              string         `json:"id"`
	ClientID        string         `json:"clienteId"`
	Plano           string         `json:"plano"`
	Velocidade      string         `json:"velocidade,omitempty"`
	Status          ContractStatus `json:"status"`
	StatusOriginal  string         `json:"statusOriginal,omitempty"`
	StatusInternet  string         `json:"statusInternet,omitempty"`
	StatusDescricao string         `json:"statusDescricao"`
	AtivadoEm       string         `json:"ativadoEm,omitempty"`
	Endereco        Address        `json:"endereco"`
	Disponivel      bool           `json:"disponivel"`
}

// UnavailableContract is the dashboard placeholder for a failed or empty
// contract fetch.
func UnavailableContract(clientID string) Contract {
	return Contract{
		ClientID:        clientID,
		Plano:           UnavailableText,
		Status:          ContractUnknown,
		StatusDescricao: UnavailableText,
		Endereco:        Address{Logradouro: UnavailableText},
	}
}

// UsagePoint is one bucket of the consumption history.
type UsagePoint struct {
	Label         string `json:"label"`
	DownloadBytes int64  `json:"downloadBytes"`
	UploadBytes   int64  `json:"uploadBytes"`
	Download      string `json:"download"`
	Upload        string `json:"upload"`
}

// Consumption aggregates transferred bytes across the client's radius logins.
type Consumption struct {
	DownloadBytes int64        `json:"downloadBytes"`
	UploadBytes   int64        `json:"uploadBytes"`
	Download      string       `json:"download"`
	Upload        string       `json:"upload"`
	Historico     []UsagePoint `json:"historico"`
	Disponivel    bool         `json:"disponivel"`
}

// UnavailableConsumption is the dashboard placeholder for a failed usage fetch.
func UnavailableConsumption() Consumption {
	return Consumption{
		Download:  UnavailableText,
		Upload:    UnavailableText,
		Historico: []UsagePoint{},
	}
}

// RadiusLogin is an access credential (PPPoE/hotspot) attached to a contract.
type RadiusLogin struct {
	ID            string `json:"id"`
	ClientID      string `json:"clienteId"`
	ContractID    string `json:"contratoId"`
	Login         string `json:"login"`
	Online        bool   `json:"online"`
	IP            string `json:"ip,omitempty"`
	MAC           string `json:"mac,omitempty"`
	DownloadBytes int64  `json:"-"`
	UploadBytes   int64  `json:"-"`
}
