package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boddenberg/isp-portal-bff/internal/config"
	"github.com/boddenberg/isp-portal-bff/internal/domain"
	"github.com/boddenberg/isp-portal-bff/internal/handler"
	"github.com/boddenberg/isp-portal-bff/internal/infra/cache"
	"github.com/boddenberg/isp-portal-bff/internal/infra/client"
	"github.com/boddenberg/isp-portal-bff/internal/infra/ixc"
	"github.com/boddenberg/isp-portal-bff/internal/infra/observability"
	"github.com/boddenberg/isp-portal-bff/internal/infra/resilience"
	"github.com/boddenberg/isp-portal-bff/internal/service"

	"go.uber.org/zap"
)

// build is set through ldflags.
var build = "develop"

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg, help, err := config.Load(build)
	if err != nil {
		if errors.Is(err, config.ErrHelpWanted) {
			fmt.Println(help)
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// --- Logger ---
	logger := observability.NewLogger(cfg.Web.LogLevel)
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}
	logger.Info("configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("build", build),
		zap.String("config", cfg.String()),
	)

	// --- Tracing ---
	shutdownTracer, err := observability.InitTracer(context.Background(), observability.TracingConfig{
		Endpoint:       cfg.Tracing.Endpoint,
		Service:        cfg.Tracing.ServiceName,
		Environment:    cfg.Env,
		SampleFraction: cfg.Tracing.SampleFraction,
	})
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.Resilience.MaxRetries,
		InitialBackoff: cfg.Resilience.InitialBackoff,
		MaxConcurrency: cfg.Resilience.MaxConcurrency,
	}
	ixcBreaker := resilience.NewCircuitBreaker("ixc", logger)
	statusBreaker := resilience.NewCircuitBreaker("status", logger)

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.IXC.Timeout}

	ixcClient := ixc.NewClient(httpClient, ixc.Config{
		BaseURL:  cfg.IXC.BaseURL,
		Token:    cfg.IXC.Token,
		PageSize: cfg.IXC.PageSize,
		Retry:    resilienceCfg,
	}, ixcBreaker, logger, metrics)
	billing := ixc.NewBilling(ixcClient, cfg.IXC.TicketSubjectID)

	statusClient := client.NewStatusClient(httpClient, cfg.Status.FeedURL, statusBreaker, resilienceCfg)
	if cfg.Status.FeedURL == "" {
		logger.Warn("status feed not configured, widget will show as unavailable")
	}

	// --- Cache ---
	statusCache := cache.New[*domain.ServiceStatus](cfg.Status.CacheTTL)
	defer statusCache.Close()

	// --- Services ---
	authSvc := service.NewAuthService(billing, billing, cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL, metrics, logger)
	dashboardSvc := service.NewDashboardService(billing, billing, metrics, logger)
	invoiceSvc := service.NewInvoiceService(billing, billing, metrics, logger)
	accountSvc := service.NewAccountService(billing, billing, cfg.Resilience.UnlockTimeout, metrics, logger)
	statusSvc := service.NewStatusService(statusClient, statusCache, metrics, logger)

	// --- Router ---
	limiter := handler.NewRateLimiter()
	router := handler.NewRouter(handler.Deps{
		Auth:            authSvc,
		Dashboard:       dashboardSvc,
		Invoices:        invoiceSvc,
		Accounts:        accountSvc,
		Status:          statusSvc,
		Breaker:         ixcBreaker,
		Limiter:         limiter,
		Metrics:         metrics,
		Logger:          logger,
		TrustProxy:      cfg.Web.TrustProxy,
		AllowedOrigins:  cfg.CORS.AllowedOrigins,
		LookupPerMinute: cfg.RateLimit.LookupPerMinute,
		LoginPerMinute:  cfg.RateLimit.LoginPerMinute,
		CompanyName:     cfg.Web.CompanyName,
	})

	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()
	go limiter.RunCleanup(bgCtx, time.Minute)

	// SIGHUP drops the cached status feed, e.g. right after an incident is posted.
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	go func() {
		for {
			select {
			case <-bgCtx.Done():
				return
			case <-hup:
				statusSvc.Invalidate()
				logger.Info("status cache invalidated")
			}
		}
	}()

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Web.Port),
		Handler:      router,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Web.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced shutdown", zap.Error(err))
	}

	// Pending confidence unlocks run detached from their requests.
	accountSvc.Wait()

	if err := shutdownTracer(ctx); err != nil {
		logger.Warn("tracer shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
