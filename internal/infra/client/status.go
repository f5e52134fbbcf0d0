package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/boddenberg/isp-portal-bff/internal/domain"
	"github.com/boddenberg/isp-portal-bff/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("client")

// summary is the subset of the status page summary document we read.
type summary struct {
	Status struct {
		Indicator   string `json:"indicator"`
		Description string `json:"description"`
	} `json:"status"`
	Incidents []struct {
		Name      string `json:"name"`
		Status    string `json:"status"`
		UpdatedAt string `json:"updated_at"`
	} `json:"incidents"`
}

// StatusClient fetches the public network status feed shown in the
// service-status widget.
type StatusClient struct {
	httpClient *http.Client
	feedURL    string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	now        func() time.Time
}

// NewStatusClient creates a new StatusClient. feedURL points at a status
// page summary document (e.g. https://status.example.net/api/v2/summary.json).
func NewStatusClient(httpClient *http.Client, feedURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *StatusClient {
	return &StatusClient{
		httpClient: httpClient,
		feedURL:    feedURL,
		cb:         cb,
		cfg:        cfg,
		now:        time.Now,
	}
}

// FetchStatus reads the feed with retry, circuit breaker, and tracing.
func (c *StatusClient) FetchStatus(ctx context.Context) (*domain.ServiceStatus, error) {
	ctx, span := tracer.Start(ctx, "StatusClient.FetchStatus")
	defer span.End()
	span.SetAttributes(attribute.String("status.feed", c.feedURL))

	if c.feedURL == "" {
		return nil, &domain.ErrExternalService{Service: "status", Err: fmt.Errorf("no status feed configured")}
	}

	var doc summary

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
			if err != nil {
				return resilience.Permanent(err)
			}
			req.Header.Set("Accept", "application/json")

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("status feed returned status %d", resp.StatusCode)
			}

			doc = summary{}
			if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
				return resilience.Permanent(fmt.Errorf("decoding status feed: %w", err))
			}
			return nil
		})
	})
	if err != nil {
		span.RecordError(err)
		return nil, &domain.ErrExternalService{Service: "status", Err: err}
	}

	status := &domain.ServiceStatus{
		Indicator:   doc.Status.Indicator,
		Description: doc.Status.Description,
		Incidents:   make([]domain.Incident, 0, len(doc.Incidents)),
		Disponivel:  true,
		FetchedAt:   c.now().UTC(),
	}
	if status.Indicator == "" {
		status.Indicator = "none"
	}
	for _, inc := range doc.Incidents {
		status.Incidents = append(status.Incidents, domain.Incident{
			Name:      inc.Name,
			Status:    inc.Status,
			UpdatedAt: inc.UpdatedAt,
		})
	}
	return status, nil
}
