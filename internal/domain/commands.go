package domain

// ============================================================
// Self-service commands forwarded to the billing system
// ============================================================

// LoginAction is a whitelisted command on a radius login.
type LoginAction string

const (
	LoginActionDisconnect LoginAction = "desconectar"
	LoginActionClearMAC   LoginAction = "limpar-mac"
)

// ParseLoginAction returns the action for a path segment and false for
// anything outside the whitelist.
func ParseLoginAction(s string) (LoginAction, bool) {
	switch LoginAction(s) {
	case LoginActionDisconnect, LoginActionClearMAC:
		return LoginAction(s), true
	}
	return "", false
}

// TicketRequest is the body for POST /chamados.
type TicketRequest struct {
	Assunto  string `json:"assunto"`
	Mensagem string `json:"mensagem"`
}

// TicketResponse is returned after a support ticket is opened upstream.
type TicketResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// MessageResponse is the generic command acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}
