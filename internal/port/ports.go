// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the service layer
// from the billing system adapter and the other upstreams.
package port

import (
	"context"

	"github.com/boddenberg/isp-portal-bff/internal/domain"
)

// IdentityResolver finds a subscriber in the billing system. Implementations
// must return *domain.ErrNotFound when no subscriber matches and an
// *domain.ErrExternalService when the billing system could not be reached.
type IdentityResolver interface {
	FindClientByDocument(ctx context.Context, digits string) (*domain.Client, error)
	FindClientByEmail(ctx context.Context, email string) (*domain.Client, error)
}

// AccountReader reads the subscriber's profile, contracts and usage.
// A non-nil error means the data is unavailable, not that it is empty.
type AccountReader interface {
	GetClient(ctx context.Context, clientID string) (*domain.Client, error)
	ListContracts(ctx context.Context, clientID string) ([]domain.Contract, error)
	ListRadiusLogins(ctx context.Context, clientID string) ([]domain.RadiusLogin, error)
	GetConsumption(ctx context.Context, clientID string) (*domain.Consumption, error)
}

// InvoiceReader reads invoices and their payment instruments.
type InvoiceReader interface {
	ListInvoices(ctx context.Context, clientID string) ([]domain.Invoice, error)
	GetInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, error)
	GetPix(ctx context.Context, invoiceID string) (*domain.PixPayment, error)
}

// CommandSender forwards one-way commands to the billing system.
type CommandSender interface {
	UpdatePassword(ctx context.Context, clientID, newPassword string) error
	RequestConfidenceUnlock(ctx context.Context, contractID string) error
	RunLoginAction(ctx context.Context, loginID string, action domain.LoginAction) error
	OpenTicket(ctx context.Context, clientID string, req *domain.TicketRequest) (string, error)
}

// StatusFetcher reads the public network status feed.
type StatusFetcher interface {
	FetchStatus(ctx context.Context) (*domain.ServiceStatus, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
	Invalidate()
	GetOrFetch(ctx context.Context, key string, fetch func(context.Context) (T, error)) (T, error)
}
