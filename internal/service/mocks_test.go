package service_test

import (
	"context"
	"sync"

	"github.com/boddenberg/isp-portal-bff/internal/domain"
)

// --- Mocks ---

type mockIdentity struct {
	byDocument map[string]*domain.Client
	byEmail    map[string]*domain.Client
	err        error
	calls      int
}

func (m *mockIdentity) FindClientByDocument(_ context.Context, digits string) (*domain.Client, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if c, ok := m.byDocument[digits]; ok {
		return c, nil
	}
	return nil, &domain.ErrNotFound{Resource: "cliente", ID: digits}
}

func (m *mockIdentity) FindClientByEmail(_ context.Context, email string) (*domain.Client, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if c, ok := m.byEmail[email]; ok {
		return c, nil
	}
	return nil, &domain.ErrNotFound{Resource: "cliente", ID: email}
}

type mockAccounts struct {
	client         *domain.Client
	clientErr      error
	contracts      []domain.Contract
	contractsErr   error
	logins         []domain.RadiusLogin
	loginsErr      error
	consumption    *domain.Consumption
	consumptionErr error
}

func (m *mockAccounts) GetClient(_ context.Context, _ string) (*domain.Client, error) {
	return m.client, m.clientErr
}

func (m *mockAccounts) ListContracts(_ context.Context, _ string) ([]domain.Contract, error) {
	return m.contracts, m.contractsErr
}

func (m *mockAccounts) ListRadiusLogins(_ context.Context, _ string) ([]domain.RadiusLogin, error) {
	return m.logins, m.loginsErr
}

func (m *mockAccounts) GetConsumption(_ context.Context, _ string) (*domain.Consumption, error) {
	return m.consumption, m.consumptionErr
}

type mockInvoices struct {
	mu         sync.Mutex
	invoices   []domain.Invoice
	listErr    error
	invoice    *domain.Invoice
	invoiceErr error
	pix        *domain.PixPayment
	pixErr     error
	pixByID    map[string]*domain.PixPayment
	pixCalls   int
	pixIDs     []string
}

func (m *mockInvoices) ListInvoices(_ context.Context, _ string) ([]domain.Invoice, error) {
	return m.invoices, m.listErr
}

func (m *mockInvoices) GetInvoice(_ context.Context, _ string) (*domain.Invoice, error) {
	return m.invoice, m.invoiceErr
}

func (m *mockInvoices) GetPix(_ context.Context, invoiceID string) (*domain.PixPayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pixCalls++
	m.pixIDs = append(m.pixIDs, invoiceID)
	if m.pixErr != nil {
		return nil, m.pixErr
	}
	if m.pixByID != nil {
		if p, ok := m.pixByID[invoiceID]; ok {
			return p, nil
		}
		return nil, &domain.ErrNotFound{Resource: "pix", ID: invoiceID}
	}
	return m.pix, nil
}

type mockCommands struct {
	mu          sync.Mutex
	err         error
	ticketID    string
	passwords   []string
	unlocked    []string
	loginAction []string
	unlockDone  chan struct{}
}

func (m *mockCommands) UpdatePassword(_ context.Context, _ string, newPassword string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.passwords = append(m.passwords, newPassword)
	return m.err
}

func (m *mockCommands) RequestConfidenceUnlock(ctx context.Context, contractID string) error {
	m.mu.Lock()
	m.unlocked = append(m.unlocked, contractID)
	m.mu.Unlock()
	if m.unlockDone != nil {
		<-m.unlockDone
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return m.err
}

func (m *mockCommands) RunLoginAction(_ context.Context, loginID string, action domain.LoginAction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loginAction = append(m.loginAction, loginID+":"+string(action))
	return m.err
}

func (m *mockCommands) OpenTicket(_ context.Context, _ string, _ *domain.TicketRequest) (string, error) {
	return m.ticketID, m.err
}

func (m *mockCommands) unlockedContracts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.unlocked...)
}

type mockStatusFetcher struct {
	status *domain.ServiceStatus
	err    error
	calls  int
}

func (m *mockStatusFetcher) FetchStatus(_ context.Context) (*domain.ServiceStatus, error) {
	m.calls++
	return m.status, m.err
}
