package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/boddenberg/isp-portal-bff/internal/domain"
	"github.com/boddenberg/isp-portal-bff/internal/infra/observability"
	"github.com/boddenberg/isp-portal-bff/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var accountTracer = otel.Tracer("service/account")

const (
	maxTicketSubject = 120
	maxTicketMessage = 2000
	defaultUnlockTTL = 30 * time.Second
)

// AccountService forwards subscriber self-service commands to the billing
// system.
type AccountService struct {
	accounts      port.AccountReader
	commands      port.CommandSender
	unlockTimeout time.Duration
	metrics       *observability.Metrics
	logger        *zap.Logger

	// inflight tracks detached unlock requests so shutdown can wait for them.
	inflight sync.WaitGroup
}

// NewAccountService creates a new account service. unlockTimeout bounds the
// detached confidence-unlock call.
func NewAccountService(accounts port.AccountReader, commands port.CommandSender, unlockTimeout time.Duration, metrics *observability.Metrics, logger *zap.Logger) *AccountService {
	if unlockTimeout <= 0 {
		unlockTimeout = defaultUnlockTTL
	}
	return &AccountService{
		accounts:      accounts,
		commands:      commands,
		unlockTimeout: unlockTimeout,
		metrics:       metrics,
		logger:        logger,
	}
}

// ============================================================
// Confidence unlock: POST /auth/desbloqueio-confianca
// ============================================================

// ConfidenceUnlock resolves the principal contract and fires the unlock
// request without waiting for it. The call runs on a context detached from
// the request, bounded by the unlock timeout.
func (s *AccountService) ConfidenceUnlock(ctx context.Context, clientID string) error {
	ctx, span := accountTracer.Start(ctx, "AccountService.ConfidenceUnlock")
	defer span.End()
	span.SetAttributes(attribute.String("client.id", clientID))

	contracts, err := s.accounts.ListContracts(ctx, clientID)
	if err != nil {
		return fmt.Errorf("list contracts: %w", err)
	}
	contract, ok := PrincipalContract(contracts)
	if !ok {
		return &domain.ErrNotFound{Resource: "contrato", ID: clientID}
	}

	bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.unlockTimeout)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer cancel()

		if err := s.commands.RequestConfidenceUnlock(bg, contract.ID); err != nil {
			s.metrics.IncrCommand("desbloqueio_confianca", "error")
			s.logger.Error("confidence unlock failed",
				zap.String("client_id", clientID),
				zap.String("contract_id", contract.ID),
				zap.Error(err),
			)
			return
		}
		s.metrics.IncrCommand("desbloqueio_confianca", "ok")
		s.logger.Info("confidence unlock requested",
			zap.String("client_id", clientID),
			zap.String("contract_id", contract.ID),
		)
	}()

	return nil
}

// Wait blocks until every detached unlock request has finished.
func (s *AccountService) Wait() {
	s.inflight.Wait()
}

// ============================================================
// Radius login actions: POST /logins/{id}/{action}
// ============================================================

// LoginAction runs a whitelisted command on one of the caller's radius
// logins. Logins of other subscribers are reported as not found.
func (s *AccountService) LoginAction(ctx context.Context, clientID, loginID, action string) error {
	ctx, span := accountTracer.Start(ctx, "AccountService.LoginAction")
	defer span.End()
	span.SetAttributes(
		attribute.String("client.id", clientID),
		attribute.String("login.id", loginID),
		attribute.String("login.action", action),
	)

	act, ok := domain.ParseLoginAction(action)
	if !ok {
		return &domain.ErrValidation{Field: "action", Message: "Ação inválida. Use desconectar ou limpar-mac"}
	}

	logins, err := s.accounts.ListRadiusLogins(ctx, clientID)
	if err != nil {
		return fmt.Errorf("list radius logins: %w", err)
	}
	owned := false
	for _, l := range logins {
		if l.ID == loginID {
			owned = true
			break
		}
	}
	if !owned {
		return &domain.ErrNotFound{Resource: "login", ID: loginID}
	}

	if err := s.commands.RunLoginAction(ctx, loginID, act); err != nil {
		s.metrics.IncrCommand(string(act), "error")
		return fmt.Errorf("run login action: %w", err)
	}
	s.metrics.IncrCommand(string(act), "ok")
	s.logger.Info("login action forwarded",
		zap.String("client_id", clientID),
		zap.String("login_id", loginID),
		zap.String("action", string(act)),
	)
	return nil
}

// ============================================================
// Support tickets: POST /chamados
// ============================================================

// OpenTicket opens a support ticket. When the billing system does not report
// an id, a local protocol number is generated so the subscriber has a
// reference.
func (s *AccountService) OpenTicket(ctx context.Context, clientID string, req *domain.TicketRequest) (*domain.TicketResponse, error) {
	ctx, span := accountTracer.Start(ctx, "AccountService.OpenTicket")
	defer span.End()
	span.SetAttributes(attribute.String("client.id", clientID))

	subject := strings.TrimSpace(req.Assunto)
	message := strings.TrimSpace(req.Mensagem)
	switch {
	case subject == "":
		return nil, &domain.ErrValidation{Field: "assunto", Message: "Informe o assunto do chamado"}
	case utf8.RuneCountInString(subject) > maxTicketSubject:
		return nil, &domain.ErrValidation{Field: "assunto", Message: fmt.Sprintf("O assunto deve ter no máximo %d caracteres", maxTicketSubject)}
	case message == "":
		return nil, &domain.ErrValidation{Field: "mensagem", Message: "Descreva o problema"}
	case utf8.RuneCountInString(message) > maxTicketMessage:
		return nil, &domain.ErrValidation{Field: "mensagem", Message: fmt.Sprintf("A mensagem deve ter no máximo %d caracteres", maxTicketMessage)}
	}

	id, err := s.commands.OpenTicket(ctx, clientID, &domain.TicketRequest{Assunto: subject, Mensagem: message})
	if err != nil {
		s.metrics.IncrCommand("chamado", "error")
		return nil, fmt.Errorf("open ticket: %w", err)
	}
	if id == "" {
		id = uuid.NewString()
		s.logger.Warn("ticket opened without upstream id, using local protocol",
			zap.String("client_id", clientID),
			zap.String("protocol", id),
		)
	}
	s.metrics.IncrCommand("chamado", "ok")

	return &domain.TicketResponse{ID: id, Message: "Chamado aberto com sucesso"}, nil
}
