package service

import (
	"context"

	"github.com/boddenberg/isp-portal-bff/internal/domain"
	"github.com/boddenberg/isp-portal-bff/internal/infra/observability"
	"github.com/boddenberg/isp-portal-bff/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var statusTracer = otel.Tracer("service/status")

const statusCacheKey = "status:summary"

// StatusService serves the network status widget from a TTL cache.
type StatusService struct {
	fetcher port.StatusFetcher
	cache   port.Cache[*domain.ServiceStatus]
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewStatusService creates a new status service. The cache TTL is the
// widget's refresh interval.
func NewStatusService(fetcher port.StatusFetcher, cache port.Cache[*domain.ServiceStatus], metrics *observability.Metrics, logger *zap.Logger) *StatusService {
	return &StatusService{
		fetcher: fetcher,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

// GetStatus returns the cached status, fetching it on a miss. A failed fetch
// yields the unavailable placeholder and is not cached.
func (s *StatusService) GetStatus(ctx context.Context) *domain.ServiceStatus {
	ctx, span := statusTracer.Start(ctx, "StatusService.GetStatus")
	defer span.End()

	if st, ok := s.cache.Get(statusCacheKey); ok {
		s.metrics.IncrCacheHit("status")
		return st
	}
	s.metrics.IncrCacheMiss("status")

	st, err := s.cache.GetOrFetch(ctx, statusCacheKey, s.fetcher.FetchStatus)
	if err != nil {
		s.logger.Warn("status feed unavailable", zap.Error(err))
		return domain.UnavailableServiceStatus()
	}
	return st
}

// Invalidate drops the cached status so the next call fetches it again.
func (s *StatusService) Invalidate() {
	s.cache.Invalidate()
}
