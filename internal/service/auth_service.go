package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/boddenberg/isp-portal-bff/internal/domain"
	"github.com/boddenberg/isp-portal-bff/internal/infra/observability"
	"github.com/boddenberg/isp-portal-bff/internal/port"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var authTracer = otel.Tracer("service/auth")

const (
	// MinPasswordLength is the shortest subscriber-area password accepted.
	MinPasswordLength = 6
	tokenTypeAccess   = "access"
)

// Auth outcomes recorded in portal_auth_attempts_total.
const (
	AuthSuccess     = "success"
	AuthInvalid     = "invalid"
	AuthUnavailable = "unavailable"
)

const msgInvalidCredentials = "Credenciais inválidas"

// AuthService authenticates subscribers against the billing system and
// issues stateless access tokens. There is no local password store, no
// refresh token and no revocation.
type AuthService struct {
	identity  port.IdentityResolver
	commands  port.CommandSender
	jwtSecret []byte
	issuer    string
	tokenTTL  time.Duration
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(
	identity port.IdentityResolver,
	commands port.CommandSender,
	jwtSecret, issuer string,
	tokenTTL time.Duration,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		identity:  identity,
		commands:  commands,
		jwtSecret: []byte(jwtSecret),
		issuer:    issuer,
		tokenTTL:  tokenTTL,
		metrics:   metrics,
		logger:    logger,
	}
}

// ============================================================
// Login: POST /auth/login
// ============================================================

func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Login")
	defer span.End()

	email := strings.TrimSpace(req.Email)
	document := domain.NormalizeTaxID(req.Document)

	if email == "" && document == "" {
		return nil, &domain.ErrValidation{Field: "email", Message: "Informe seu e-mail ou CPF/CNPJ"}
	}
	if req.Password == "" {
		return nil, &domain.ErrValidation{Field: "password", Message: "Informe sua senha"}
	}
	if email == "" && !domain.ValidTaxIDLength(document) {
		return nil, &domain.ErrValidation{Field: "document", Message: "CPF/CNPJ inválido"}
	}

	var (
		client *domain.Client
		err    error
	)
	if email != "" {
		span.SetAttributes(attribute.String("login.by", "email"))
		client, err = s.identity.FindClientByEmail(ctx, email)
	} else {
		span.SetAttributes(attribute.String("login.by", "document"))
		client, err = s.identity.FindClientByDocument(ctx, document)
	}
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			s.metrics.IncrAuth(AuthInvalid)
			return nil, &domain.ErrUnauthorized{Message: msgInvalidCredentials}
		}
		// Identity is resolved only upstream; when it cannot be reached the
		// login fails as an auth error.
		s.metrics.IncrAuth(AuthUnavailable)
		s.logger.Error("login: identity lookup failed",
			zap.Bool("upstream_failure", domain.IsUpstreamFailure(err)),
			zap.Error(err),
		)
		return nil, &domain.ErrUnauthorized{Message: "Não foi possível validar suas credenciais. Tente novamente em instantes"}
	}

	if !checkPassword(client.HotsitePassword, req.Password) {
		s.metrics.IncrAuth(AuthInvalid)
		s.logger.Warn("login: wrong password", zap.String("client_id", client.ID))
		return nil, &domain.ErrUnauthorized{Message: msgInvalidCredentials}
	}

	tokenEmail := client.HotsiteEmail
	if tokenEmail == "" {
		tokenEmail = client.Email
	}
	token, err := s.signAccessToken(client.ID, tokenEmail)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	s.metrics.IncrAuth(AuthSuccess)
	s.logger.Info("client logged in", zap.String("client_id", client.ID))

	return &domain.LoginResponse{
		Token:     token,
		ExpiresIn: int(s.tokenTTL.Seconds()),
		ClientID:  client.ID,
		Nome:      client.Nome,
	}, nil
}

// checkPassword compares against the password kept by the billing system,
// which is either a bcrypt hash or plain text.
func checkPassword(stored, given string) bool {
	if stored == "" || given == "" {
		return false
	}
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}

// ============================================================
// Change password: POST /auth/trocar-senha
// ============================================================

func (s *AuthService) ChangePassword(ctx context.Context, clientID, newPassword string) error {
	ctx, span := authTracer.Start(ctx, "AuthService.ChangePassword")
	defer span.End()
	span.SetAttributes(attribute.String("client.id", clientID))

	if utf8.RuneCountInString(newPassword) < MinPasswordLength {
		return &domain.ErrValidation{
			Field:   "newPassword",
			Message: fmt.Sprintf("A nova senha deve ter pelo menos %d caracteres", MinPasswordLength),
		}
	}

	if err := s.commands.UpdatePassword(ctx, clientID, newPassword); err != nil {
		s.logger.Error("change password: upstream update failed",
			zap.String("client_id", clientID),
			zap.Error(err),
		)
		return fmt.Errorf("update password: %w", err)
	}

	s.logger.Info("password changed", zap.String("client_id", clientID))
	return nil
}

// ============================================================
// Tokens
// ============================================================

// JWTClaims represents the claims of an access token. The subject is the
// billing system client id.
type JWTClaims struct {
	Email string `json:"email,omitempty"`
	Type  string `json:"type"`
	jwt.RegisteredClaims
}

// ValidateAccessToken verifies signature, algorithm, issuer, expiry and token
// type. A valid token without a subject is returned as is; callers decide.
func (s *AuthService) ValidateAccessToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, &domain.ErrUnauthorized{Message: "Token inválido ou expirado"}
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, &domain.ErrUnauthorized{Message: "Token inválido"}
	}

	if claims.Type != tokenTypeAccess {
		return nil, &domain.ErrUnauthorized{Message: "Tipo de token inválido"}
	}

	return claims, nil
}

func (s *AuthService) signAccessToken(clientID, email string) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		Email: email,
		Type:  tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   clientID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			Issuer:    s.issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
