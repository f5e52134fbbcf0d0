package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/boddenberg/isp-portal-bff/internal/infra/observability"
	"github.com/boddenberg/isp-portal-bff/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type contextKey string

const clientIDKey contextKey = "clientID"

// TokenValidator verifies access tokens.
type TokenValidator interface {
	ValidateAccessToken(token string) (*service.JWTClaims, error)
}

// JWTAuthMiddleware validates Bearer tokens and injects the billing system
// client id into the context. A valid token without a subject is forbidden.
func JWTAuthMiddleware(auth TokenValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("auth: missing token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "Token de autenticação não fornecido")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
				logger.Warn("auth: invalid token format",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "Formato de token inválido")
				return
			}

			claims, err := auth.ValidateAccessToken(strings.TrimSpace(parts[1]))
			if err != nil {
				logger.Warn("auth: invalid or expired token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
					zap.Error(err),
				)
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}

			if claims.Subject == "" {
				logger.Warn("auth: token without subject",
					zap.String("path", r.URL.Path),
					zap.String("jti", claims.ID),
				)
				writeError(w, http.StatusForbidden, msgForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), clientIDKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientIDFromContext extracts the authenticated client id from context.
func ClientIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(clientIDKey).(string)
	return v
}

// requestDuration records the latency of every routed request under its
// route pattern.
func requestDuration(metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)

			pattern := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				pattern = rctx.RoutePattern()
			}
			metrics.RecordRequestDuration(r.Method+" "+pattern, time.Since(start))
		})
	}
}
