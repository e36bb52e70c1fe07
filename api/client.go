// Copyright (C) 2025 Curio Data (oss@curiodata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package api implements the HTTP transport for the Curio feedback dataset
// service.
//
// Features:
//   - API-key authentication via the X-API-Key header
//   - Client-side request rate limiting (golang.org/x/time/rate)
//   - OpenTelemetry spans around every remote call
//   - Structured errors (APIError) with a machine-readable Kind
//
// All calls are synchronous and blocking; cancellation and deadlines come
// from the caller's context. Retry and backoff policy is deliberately NOT
// implemented here: the library's consumers page record-by-record and a
// failed page surfaces to the caller unchanged.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const tracerName = "github.com/curiodata/curio-go/api"

// -----------------------------------------------------------------------------
// Client Configuration
// -----------------------------------------------------------------------------

// Config configures the Curio API client.
type Config struct {
	// BaseURL is the Curio server URL (e.g. "https://curio.example.com").
	BaseURL string

	// APIKey authenticates every request. May be empty against
	// unauthenticated development servers.
	APIKey string

	// Timeout bounds each HTTP request.
	// Default: 30s
	Timeout time.Duration

	// RequestsPerSecond limits outgoing request rate. Zero disables
	// client-side limiting.
	// Default: 0 (unlimited)
	RequestsPerSecond float64

	// Burst is the rate limiter burst size when limiting is enabled.
	// Default: 2 * RequestsPerSecond, minimum 1
	Burst int

	// HTTPClient overrides the underlying HTTP client. When nil, a client
	// with Timeout is constructed.
	HTTPClient *http.Client

	// Logger for client operations.
	// Default: slog.Default()
	Logger *slog.Logger
}

// DefaultConfig returns sensible defaults for production use.
func DefaultConfig() Config {
	return Config{
		Timeout: 30 * time.Second,
		Logger:  slog.Default(),
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url must not be empty")
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("base_url is not a valid URL: %w", err)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second must be non-negative")
	}
	return nil
}

// -----------------------------------------------------------------------------
// Client
// -----------------------------------------------------------------------------

// Client is a Curio API client. It is safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewClient creates a Client from config.
//
// The returned client holds no connections open; it can be shared across
// any number of dataset handles.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid api config: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = int(2 * cfg.RequestsPerSecond)
			if burst < 1 {
				burst = 1
			}
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    httpClient,
		limiter: limiter,
		logger:  logger,
		tracer:  otel.Tracer(tracerName),
	}, nil
}

// BaseURL returns the configured server URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// -----------------------------------------------------------------------------
// Workspaces
// -----------------------------------------------------------------------------

// ListWorkspaces returns every workspace visible to the caller.
func (c *Client) ListWorkspaces(ctx context.Context) ([]Workspace, error) {
	var resp listWorkspacesResponse
	if err := c.do(ctx, "list_workspaces", http.MethodGet, "/api/v1/workspaces", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// WorkspaceByName resolves a workspace by its unique name.
//
// Returns a KindNotFound APIError when no workspace matches.
func (c *Client) WorkspaceByName(ctx context.Context, name string) (*Workspace, error) {
	workspaces, err := c.ListWorkspaces(ctx)
	if err != nil {
		return nil, err
	}
	for i := range workspaces {
		if workspaces[i].Name == name {
			return &workspaces[i], nil
		}
	}
	return nil, &APIError{
		Kind:   KindNotFound,
		Op:     "workspace_by_name",
		Detail: fmt.Sprintf("workspace %q not found", name),
	}
}

// -----------------------------------------------------------------------------
// Datasets
// -----------------------------------------------------------------------------

// ListDatasets returns summaries of every dataset visible to the caller.
func (c *Client) ListDatasets(ctx context.Context) ([]DatasetSummary, error) {
	var resp listDatasetsResponse
	if err := c.do(ctx, "list_datasets", http.MethodGet, "/api/v1/me/datasets", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// GetDataset fetches the full dataset resource by id.
func (c *Client) GetDataset(ctx context.Context, id string) (*Dataset, error) {
	var ds Dataset
	path := "/api/v1/datasets/" + url.PathEscape(id)
	if err := c.do(ctx, "get_dataset", http.MethodGet, path, nil, &ds); err != nil {
		return nil, err
	}
	return &ds, nil
}

// CreateDataset provisions an unpublished dataset shell.
func (c *Client) CreateDataset(ctx context.Context, name, workspaceID, guidelines string) (*Dataset, error) {
	var ds Dataset
	body := createDatasetRequest{Name: name, WorkspaceID: workspaceID, Guidelines: guidelines}
	if err := c.do(ctx, "create_dataset", http.MethodPost, "/api/v1/datasets", body, &ds); err != nil {
		return nil, err
	}
	return &ds, nil
}

// PublishDataset transitions a dataset from draft to ready.
func (c *Client) PublishDataset(ctx context.Context, id string) error {
	path := "/api/v1/datasets/" + url.PathEscape(id) + "/publish"
	return c.do(ctx, "publish_dataset", http.MethodPut, path, nil, nil)
}

// DeleteDataset removes a dataset and all its records.
func (c *Client) DeleteDataset(ctx context.Context, id string) error {
	path := "/api/v1/datasets/" + url.PathEscape(id)
	return c.do(ctx, "delete_dataset", http.MethodDelete, path, nil, nil)
}

// -----------------------------------------------------------------------------
// Fields and Questions
// -----------------------------------------------------------------------------

// GetFields returns the dataset's field descriptors.
func (c *Client) GetFields(ctx context.Context, id string) ([]Field, error) {
	var resp listFieldsResponse
	path := "/api/v1/datasets/" + url.PathEscape(id) + "/fields"
	if err := c.do(ctx, "get_fields", http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// GetQuestions returns the dataset's question descriptors.
func (c *Client) GetQuestions(ctx context.Context, id string) ([]Question, error) {
	var resp listQuestionsResponse
	path := "/api/v1/datasets/" + url.PathEscape(id) + "/questions"
	if err := c.do(ctx, "get_questions", http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// AddField attaches a field descriptor to an unpublished dataset.
func (c *Client) AddField(ctx context.Context, id string, field Field) error {
	path := "/api/v1/datasets/" + url.PathEscape(id) + "/fields"
	return c.do(ctx, "add_field", http.MethodPost, path, field, nil)
}

// AddQuestion attaches a question descriptor to an unpublished dataset.
func (c *Client) AddQuestion(ctx context.Context, id string, question Question) error {
	path := "/api/v1/datasets/" + url.PathEscape(id) + "/questions"
	return c.do(ctx, "add_question", http.MethodPost, path, question, nil)
}

// -----------------------------------------------------------------------------
// Records
// -----------------------------------------------------------------------------

// GetRecords fetches one page of records at the given offset.
//
// The returned page carries the remote total, which is the paging driver's
// termination condition. Offsets beyond the total yield an empty page.
func (c *Client) GetRecords(ctx context.Context, id string, offset, limit int) (*RecordsPage, error) {
	var page RecordsPage
	path := fmt.Sprintf("/api/v1/datasets/%s/records?offset=%d&limit=%d",
		url.PathEscape(id), offset, limit)
	if err := c.do(ctx, "get_records", http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// AddRecord appends one record to the dataset.
func (c *Client) AddRecord(ctx context.Context, id string, record NewRecord) error {
	path := "/api/v1/datasets/" + url.PathEscape(id) + "/records"
	return c.do(ctx, "add_record", http.MethodPost, path, record, nil)
}

// -----------------------------------------------------------------------------
// Transport
// -----------------------------------------------------------------------------

// do executes one API call: rate limit, build, send, classify, decode.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &APIError{Kind: KindCanceled, Op: op, Detail: err.Error(), Err: err}
	}

	ctx, span := c.tracer.Start(ctx, "curio.api."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.path", path),
		))
	defer span.End()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			span.SetStatus(codes.Error, "marshal request")
			return &APIError{Kind: KindInvalidResponse, Op: op, Detail: "marshal request: " + err.Error(), Err: err}
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		span.SetStatus(codes.Error, "build request")
		return &APIError{Kind: KindConnection, Op: op, Detail: err.Error(), Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			span.SetStatus(codes.Error, "canceled")
			return &APIError{Kind: KindCanceled, Op: op, Detail: ctx.Err().Error(), Err: err}
		}
		span.SetStatus(codes.Error, "connection")
		return &APIError{Kind: KindConnection, Op: op, Detail: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		kind := classifyStatus(resp.StatusCode)
		span.SetStatus(codes.Error, kind.String())
		c.logger.Debug("api call failed",
			"op", op, "status", resp.StatusCode, "kind", kind.String())
		return &APIError{
			Kind:   kind,
			Op:     op,
			Status: resp.StatusCode,
			Detail: strings.TrimSpace(string(detail)),
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			span.SetStatus(codes.Error, "decode response")
			return &APIError{
				Kind:   KindInvalidResponse,
				Op:     op,
				Status: resp.StatusCode,
				Detail: "decode response: " + err.Error(),
				Err:    err,
			}
		}
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// classifyStatus maps an HTTP status code to an ErrorKind.
func classifyStatus(status int) ErrorKind {
	switch {
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindUnauthorized
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status >= 400 && status < 500:
		return KindInvalidRequest
	default:
		return KindServer
	}
}
