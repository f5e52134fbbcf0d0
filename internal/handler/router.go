package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/boddenberg/isp-portal-bff/internal/domain"
	"github.com/boddenberg/isp-portal-bff/internal/infra/observability"
	"github.com/boddenberg/isp-portal-bff/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

const (
	defaultLookupPerMinute = 20
	defaultLoginPerMinute  = 10
)

// ============================================================
// Services the handlers delegate to
// ============================================================

// Authenticator logs subscribers in and manages their credentials.
type Authenticator interface {
	TokenValidator
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error)
	ChangePassword(ctx context.Context, clientID, newPassword string) error
}

// DashboardProvider composes the subscriber dashboard.
type DashboardProvider interface {
	GetDashboard(ctx context.Context, clientID string) *domain.Dashboard
}

// InvoiceProvider serves invoice lists and payment instruments.
type InvoiceProvider interface {
	LookupByTaxID(ctx context.Context, taxID string) (*domain.InvoiceList, error)
	ListForClient(ctx context.Context, clientID string) *domain.InvoiceList
	GetPix(ctx context.Context, clientID, invoiceID string) (*domain.PixPayment, error)
}

// AccountCommander forwards self-service commands.
type AccountCommander interface {
	ConfidenceUnlock(ctx context.Context, clientID string) error
	LoginAction(ctx context.Context, clientID, loginID, action string) error
	OpenTicket(ctx context.Context, clientID string, req *domain.TicketRequest) (*domain.TicketResponse, error)
}

// StatusProvider serves the network status widget.
type StatusProvider interface {
	GetStatus(ctx context.Context) *domain.ServiceStatus
}

// Deps wires the router.
type Deps struct {
	Auth      Authenticator
	Dashboard DashboardProvider
	Invoices  InvoiceProvider
	Accounts  AccountCommander
	Status    StatusProvider

	// Breaker is the billing system circuit breaker, reported by /healthz.
	Breaker *gobreaker.CircuitBreaker
	Limiter *RateLimiter
	Metrics *observability.Metrics
	Logger  *zap.Logger

	// TrustProxy honours X-Forwarded-For / X-Real-IP. Enable it only behind
	// a proxy that overwrites those headers; otherwise clients pick their
	// own rate-limit key.
	TrustProxy bool

	AllowedOrigins  []string
	LookupPerMinute int
	LoginPerMinute  int
	CompanyName     string
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Metrics == nil {
		d.Metrics = observability.NewMetrics()
	}
	if d.Limiter == nil {
		d.Limiter = NewRateLimiter()
	}
	if d.LookupPerMinute <= 0 {
		d.LookupPerMinute = defaultLookupPerMinute
	}
	if d.LoginPerMinute <= 0 {
		d.LoginPerMinute = defaultLoginPerMinute
	}
	if len(d.AllowedOrigins) == 0 {
		d.AllowedOrigins = []string{"*"}
	}
	logger := d.Logger

	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	if d.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Retry-After"},
		MaxAge:         300,
	}))
	r.Use(requestDuration(d.Metrics))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(d.Breaker))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(d.Metrics.Registry, promhttp.HandlerOpts{}))

	// --- Public ---
	statusEndpoint := ""
	if d.Status != nil {
		statusEndpoint = "/status"
		r.Get("/status", statusHandler(d.Status))
	}
	r.Get("/segunda-via", lookupPageHandler(d.CompanyName, statusEndpoint, logger))

	r.With(RateLimit(d.Limiter, "login", d.LoginPerMinute, time.Minute)).
		Post("/auth/login", authLoginHandler(d.Auth, logger))
	r.With(RateLimit(d.Limiter, "lookup", d.LookupPerMinute, time.Minute)).
		Post("/faturas", invoiceLookupHandler(d.Invoices, logger))

	// --- Subscriber area ---
	r.Group(func(r chi.Router) {
		r.Use(JWTAuthMiddleware(d.Auth, logger))

		r.Get("/dashboard", dashboardHandler(d.Dashboard))
		r.Get("/faturas", listInvoicesHandler(d.Invoices))
		r.Get("/faturas/{id}/pix", invoicePixHandler(d.Invoices, logger))

		r.Post("/auth/trocar-senha", changePasswordHandler(d.Auth, logger))
		r.Post("/auth/desbloqueio-confianca", confidenceUnlockHandler(d.Accounts, logger))
		r.Post("/logins/{id}/{action}", loginActionHandler(d.Accounts, logger))
		r.Post("/chamados", openTicketHandler(d.Accounts, logger))
	})

	return r
}

// ============================================================
// Operational handlers
// ============================================================

func healthzHandler(breaker *gobreaker.CircuitBreaker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "isp-portal-bff", Status: "healthy", LastChecked: now},
		}
		if breaker != nil {
			status := "healthy"
			switch breaker.State() {
			case gobreaker.StateHalfOpen:
				status = "degraded"
			case gobreaker.StateOpen:
				status = "unhealthy"
			}
			services = append(services, domain.ServiceHealth{
				Name: breaker.Name(), Status: status, LastChecked: now,
			})
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status != "healthy" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// compile-time checks that the services satisfy the handler contracts.
var (
	_ Authenticator     = (*service.AuthService)(nil)
	_ DashboardProvider = (*service.DashboardService)(nil)
	_ InvoiceProvider   = (*service.InvoiceService)(nil)
	_ AccountCommander  = (*service.AccountService)(nil)
	_ StatusProvider    = (*service.StatusService)(nil)
)
