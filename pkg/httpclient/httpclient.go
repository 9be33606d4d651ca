package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"sales-micro/pkg/errors"
	"sales-micro/pkg/logger"
)

// TraceIDHeader is propagated on every outgoing request
const TraceIDHeader = "X-Trace-ID"

// Client is a JSON-over-HTTP client for collaborator services
type Client struct {
	baseURL string
	http    *http.Client
	log     *logger.Logger
}

// New creates a new client for a collaborator service
func New(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// Get performs a GET request and decodes the JSON response into out
func (c *Client) Get(ctx context.Context, service, path string, out interface{}) error {
	return c.do(ctx, service, http.MethodGet, path, nil, out)
}

// Patch performs a PATCH request with a JSON body and decodes the response into out
func (c *Client) Patch(ctx context.Context, service, path string, body, out interface{}) error {
	return c.do(ctx, service, http.MethodPatch, path, body, out)
}

func (c *Client) do(ctx context.Context, service, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.NewInternal("failed to encode request body", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.NewInternal("failed to build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if traceID := logger.GetTraceID(ctx); traceID != "" {
		req.Header.Set(TraceIDHeader, traceID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Timeouts and transport failures are the same failure class as a 503
		return errors.NewUnavailable(service, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewUnavailable(service, err)
	}

	if resp.StatusCode >= 400 {
		return c.asAppError(service, resp.StatusCode, data)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return errors.NewInternal("failed to decode "+service+" response", err)
		}
	}

	return nil
}

// asAppError rebuilds a collaborator error from its standard error envelope,
// falling back to a status-code mapping for foreign payloads.
func (c *Client) asAppError(service string, status int, data []byte) error {
	var envelope errors.ErrorResponse
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Error.Code != "" {
		return &errors.AppError{
			Code:    envelope.Error.Code,
			Message: service + ": " + envelope.Error.Message,
			Details: envelope.Error.Details,
		}
	}
	return errors.FromHTTPStatus(status, service+" request failed")
}
