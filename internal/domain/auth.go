package domain

// ============================================================
// Auth: Request / Response types
// ============================================================

// LoginRequest is the body for POST /auth/login. Either Email or Document
// identifies the subscriber.
type LoginRequest struct {
	Email    string `json:"email,omitempty"`
	Document string `json:"document,omitempty"`
	Password string `json:"password"`
}

// LoginResponse is the body for 200 from POST /auth/login.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"`
	ClientID  string `json:"clienteId"`
	Nome      string `json:"nome"`
}

// ChangePasswordRequest is the body for POST /auth/trocar-senha.
type ChangePasswordRequest struct {
	NewPassword string `json:"newPassword"`
}
