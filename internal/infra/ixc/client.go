// Package ixc is the adapter for the IXC Soft webservice, the billing system
// of record for subscribers, contracts and invoices.
package ixc

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/boddenberg/isp-portal-bff/internal/domain"
	"github.com/boddenberg/isp-portal-bff/internal/infra/observability"
	"github.com/boddenberg/isp-portal-bff/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("ixc")

const (
	serviceName     = "ixc"
	defaultPageSize = 50
	maxErrorBody    = 512
)

// Config holds the connection settings for the webservice.
type Config struct {
	BaseURL  string
	Token    string
	PageSize int
	Retry    resilience.Config
}

// Client talks to the IXC webservice. List and Find are reads and are
// retried; Create and Update are writes and are sent once. Every call goes
// through the same circuit breaker and bulkhead.
type Client struct {
	httpClient *http.Client
	baseURL    string
	authHeader string
	pageSize   int
	retry      resilience.Config
	cb         *gobreaker.CircuitBreaker
	bulkhead   *resilience.Bulkhead
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewClient creates a new Client. The request timeout is the one configured
// on httpClient.
func NewClient(httpClient *http.Client, cfg Config, cb *gobreaker.CircuitBreaker, logger *zap.Logger, metrics *observability.Metrics) *Client {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		authHeader: "Basic " + base64.StdEncoding.EncodeToString([]byte(cfg.Token)),
		pageSize:   pageSize,
		retry:      cfg.Retry,
		cb:         cb,
		bulkhead:   resilience.NewBulkhead(cfg.Retry.MaxConcurrency),
		logger:     logger,
		metrics:    metrics,
	}
}

// ============================================================
// Wire types
// ============================================================

type listRequest struct {
	QType     string `json:"qtype"`
	Query     string `json:"query"`
	Oper      string `json:"oper"`
	Page      string `json:"page"`
	RP        string `json:"rp"`
	SortName  string `json:"sortname"`
	SortOrder string `json:"sortorder"`
}

type listResponse struct {
	Total     any             `json:"total"`
	Registros []domain.Record `json:"registros"`
	Type      string          `json:"type"`
	Message   string          `json:"message"`
}

// statusError is a non-2xx answer. Body is kept for server-side logs only.
type statusError struct {
	Status int
	Body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("ixc returned status %d: %s", e.Status, e.Body)
}

// ============================================================
// Reads
// ============================================================

// List runs a listing query. It never fails: transport errors, non-2xx
// answers, an open breaker or an undecodable body are logged and yield an
// empty result with Degraded set.
func (c *Client) List(ctx context.Context, resource string, q domain.Query) *domain.ListResult {
	ctx, span := tracer.Start(ctx, "ixc.List")
	defer span.End()
	span.SetAttributes(
		attribute.String("ixc.resource", resource),
		attribute.String("ixc.qtype", q.Field),
	)

	res, err := c.list(ctx, resource, q)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list failed")
		c.metrics.IncrUpstreamError(resource)
		c.logger.Warn("ixc list failed, returning empty result",
			zap.String("resource", resource),
			zap.String("qtype", q.Field),
			zap.Error(err),
		)
		return &domain.ListResult{Records: []domain.Record{}, Degraded: true}
	}
	span.SetAttributes(attribute.Int("ixc.records", len(res.Records)))
	return res
}

// Find returns the first record matching q. Unlike List it reports failures:
// *domain.ErrNotFound when the webservice answered with no records, and
// *domain.ErrExternalService, *domain.ErrCircuitOpen or *domain.ErrTimeout
// when it could not be reached.
func (c *Client) Find(ctx context.Context, resource string, q domain.Query) (domain.Record, error) {
	ctx, span := tracer.Start(ctx, "ixc.Find")
	defer span.End()
	span.SetAttributes(
		attribute.String("ixc.resource", resource),
		attribute.String("ixc.qtype", q.Field),
	)

	if q.Rows == 0 {
		q.Rows = 1
	}
	res, err := c.list(ctx, resource, q)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "find failed")
		c.metrics.IncrUpstreamError(resource)
		c.logger.Error("ixc find failed",
			zap.String("resource", resource),
			zap.String("qtype", q.Field),
			zap.Error(err),
		)
		return nil, upstreamError(resource, err)
	}
	if len(res.Records) == 0 {
		return nil, &domain.ErrNotFound{Resource: resource, ID: q.Value}
	}
	return res.Records[0], nil
}

// Invoke posts payload to an action resource that answers with a single
// record (e.g. get_pix). It is treated as a read and retried.
func (c *Client) Invoke(ctx context.Context, resource string, payload any) (domain.Record, error) {
	ctx, span := tracer.Start(ctx, "ixc.Invoke")
	defer span.End()
	span.SetAttributes(attribute.String("ixc.resource", resource))

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding %s payload: %w", resource, err)
	}

	var rec domain.Record
	_, err = c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.retry, func() error {
			rec = nil
			if err := c.do(ctx, http.MethodPost, c.endpoint(resource), body, nil, &rec); err != nil {
				return err
			}
			if isErrorType(rec) {
				return resilience.Permanent(fmt.Errorf("ixc %s: %s", resource, Str(rec, "message", "mensagem")))
			}
			return nil
		})
	})
	if err != nil {
		span.RecordError(err)
		c.metrics.IncrUpstreamError(resource)
		c.logger.Error("ixc invoke failed", zap.String("resource", resource), zap.Error(err))
		return nil, upstreamError(resource, err)
	}
	return rec, nil
}

func (c *Client) list(ctx context.Context, resource string, q domain.Query) (*domain.ListResult, error) {
	body, err := json.Marshal(c.listRequest(q))
	if err != nil {
		return nil, fmt.Errorf("encoding %s query: %w", resource, err)
	}
	headers := map[string]string{"ixcsoft": "listar"}

	var result *domain.ListResult
	_, err = c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.retry, func() error {
			var raw listResponse
			if err := c.do(ctx, http.MethodPost, c.endpoint(resource), body, headers, &raw); err != nil {
				return err
			}
			if strings.EqualFold(raw.Type, "error") {
				return resilience.Permanent(fmt.Errorf("ixc %s: %s", resource, raw.Message))
			}
			records := raw.Registros
			if records == nil {
				records = []domain.Record{}
			}
			result = &domain.ListResult{Total: toInt(raw.Total), Records: records}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) listRequest(q domain.Query) listRequest {
	oper := q.Oper
	if oper == "" {
		oper = "="
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}
	rows := q.Rows
	if rows <= 0 {
		rows = c.pageSize
	}
	sortName := q.SortName
	if sortName == "" {
		sortName = q.Field
	}
	sortOrder := q.SortOrder
	if sortOrder == "" {
		sortOrder = "asc"
	}
	return listRequest{
		QType:     q.Field,
		Query:     q.Value,
		Oper:      oper,
		Page:      strconv.Itoa(page),
		RP:        strconv.Itoa(rows),
		SortName:  sortName,
		SortOrder: sortOrder,
	}
}

// ============================================================
// Writes
// ============================================================

// Create posts a new record. It never returns a Go error; check Error on the
// result.
func (c *Client) Create(ctx context.Context, resource string, payload any) *domain.WriteResult {
	ctx, span := tracer.Start(ctx, "ixc.Create")
	defer span.End()
	span.SetAttributes(attribute.String("ixc.resource", resource))

	return c.write(ctx, http.MethodPost, resource, c.endpoint(resource), payload)
}

// Update replaces fields of an existing record. It never returns a Go error;
// check Error on the result.
func (c *Client) Update(ctx context.Context, resource, id string, payload any) *domain.WriteResult {
	ctx, span := tracer.Start(ctx, "ixc.Update")
	defer span.End()
	span.SetAttributes(
		attribute.String("ixc.resource", resource),
		attribute.String("ixc.id", id),
	)

	return c.write(ctx, http.MethodPut, resource, c.endpoint(resource)+"/"+url.PathEscape(id), payload)
}

func (c *Client) write(ctx context.Context, method, resource, endpoint string, payload any) *domain.WriteResult {
	body, err := json.Marshal(payload)
	if err != nil {
		c.logger.Error("ixc write payload not encodable", zap.String("resource", resource), zap.Error(err))
		return &domain.WriteResult{Error: true, Message: "invalid payload"}
	}

	var rec domain.Record
	_, err = c.cb.Execute(func() (any, error) {
		return nil, c.do(ctx, method, endpoint, body, nil, &rec)
	})
	if err != nil {
		c.metrics.IncrUpstreamError(resource)
		c.logger.Error("ixc write failed",
			zap.String("resource", resource),
			zap.String("method", method),
			zap.Error(err),
		)
		res := &domain.WriteResult{Error: true, Message: "billing system unavailable"}
		var se *statusError
		switch {
		case errors.As(err, &se):
			res.Status = se.Status
		case resilience.IsBreakerRejection(err):
			res.Status = http.StatusServiceUnavailable
		case isTimeout(err):
			res.Status = http.StatusGatewayTimeout
		}
		return res
	}

	msg := Str(rec, "message", "mensagem")
	if isErrorType(rec) {
		c.logger.Warn("ixc rejected write",
			zap.String("resource", resource),
			zap.String("message", msg),
		)
		return &domain.WriteResult{Error: true, Status: http.StatusOK, Message: msg}
	}
	return &domain.WriteResult{Success: true, ID: Str(rec, "id", "id_registro"), Message: msg}
}

// ============================================================
// Transport
// ============================================================

func (c *Client) endpoint(resource string) string {
	return c.baseURL + "/webservice/v1/" + resource
}

// do sends one request and decodes a 2xx JSON body into out. Errors that a
// retry cannot fix are wrapped with resilience.Permanent.
func (c *Client) do(ctx context.Context, method, endpoint string, body []byte, headers map[string]string, out any) error {
	if err := c.bulkhead.Acquire(ctx); err != nil {
		return err
	}
	defer c.bulkhead.Release()

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(body))
	if err != nil {
		return resilience.Permanent(err)
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		se := &statusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return se
		}
		return resilience.Permanent(se)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return resilience.Permanent(fmt.Errorf("decoding ixc response: %w", err))
	}
	return nil
}

func isErrorType(rec domain.Record) bool {
	return strings.EqualFold(Str(rec, "type", "tipo"), "error")
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// upstreamError converts a transport failure into the domain taxonomy.
func upstreamError(resource string, err error) error {
	switch {
	case resilience.IsBreakerRejection(err):
		return &domain.ErrCircuitOpen{Service: serviceName}
	case isTimeout(err):
		return &domain.ErrTimeout{Operation: serviceName + " " + resource}
	}
	return &domain.ErrExternalService{Service: serviceName, Err: err}
}
