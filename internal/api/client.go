// Package api implements the HTTP client for the forecast backend. The
// backend owns every revenue computation; this side only ships policies up
// and results back.
package api

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"ratecast/internal/domain"
)

// DefaultTimeout bounds a single backend request when the caller's context
// carries no deadline.
const DefaultTimeout = 30 * time.Second

// StatusError is a non-2xx backend response. Detail carries the backend's
// structured "detail" field when the body had one.
type StatusError struct {
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// Client talks to the forecast backend.
type Client struct {
	baseURL string
	http    *fasthttp.Client
	timeout time.Duration
	logger  *zap.Logger
}

// NewClient builds a client for the backend at baseURL. A zero timeout
// falls back to DefaultTimeout; a nil logger is replaced with a no-op.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		http:    &fasthttp.Client{},
		timeout: timeout,
		logger:  logger,
	}
}

// DefaultPolicy fetches the canonical rate policy.
func (c *Client) DefaultPolicy(ctx context.Context) (domain.Policy, error) {
	var policy domain.Policy
	if err := c.do(ctx, fasthttp.MethodGet, "/api/policy/default", nil, &policy); err != nil {
		return nil, err
	}
	return policy, nil
}

// AppealsAndExemptions fetches the combined appeals and exemptions defaults.
func (c *Client) AppealsAndExemptions(ctx context.Context) (*domain.AppealsAndExemptions, error) {
	var out domain.AppealsAndExemptions
	if err := c.do(ctx, fasthttp.MethodGet, "/api/appeals-and-exemptions", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RevenueForecast submits a forecast request and returns the backend's
// computed results.
func (c *Client) RevenueForecast(ctx context.Context, req domain.ForecastRequest) (*domain.ForecastResponse, error) {
	var out domain.ForecastResponse
	if err := c.do(ctx, fasthttp.MethodPost, "/api/revenue-forecast", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TierParcelCounts fetches parcel counts per tier boundary for the given
// policy. Auxiliary data only; callers are expected to swallow failures.
func (c *Client) TierParcelCounts(ctx context.Context, policy domain.Policy) (*domain.TierCounts, error) {
	body := struct {
		Policy domain.Policy `json:"policy"`
	}{Policy: policy}
	var out domain.TierCounts
	if err := c.do(ctx, fasthttp.MethodPost, "/api/tier-parcel-counts", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Dataframes lists the datasets loaded on the backend.
func (c *Client) Dataframes(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.do(ctx, fasthttp.MethodGet, "/api/dataframes", nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// DataframeHead returns the first rows of a named dataset as records.
func (c *Client) DataframeHead(ctx context.Context, name string) ([]map[string]any, error) {
	var rows []map[string]any
	if err := c.do(ctx, fasthttp.MethodGet, "/api/dataframes/"+name, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ClientErrorReport is the payload for the backend's client-error intake.
type ClientErrorReport struct {
	Message   string `json:"message"`
	Stack     string `json:"stack,omitempty"`
	Source    string `json:"source,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
}

// ReportClientError ships a fatal client-side failure to the backend's
// error log. Best effort: the caller should not fail on its account.
func (c *Client) ReportClientError(ctx context.Context, report ClientErrorReport) error {
	return c.do(ctx, fasthttp.MethodPost, "/api/logs/frontend", report, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "encode %s request", path)
		}
		req.Header.SetContentType("application/json")
		req.SetBody(payload)
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	if err := c.http.DoTimeout(req, resp, timeout); err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}

	status := resp.StatusCode()
	if status < fasthttp.StatusOK || status >= fasthttp.StatusMultipleChoices {
		c.logger.Debug("backend request failed",
			zap.String("path", path),
			zap.Int("status", status))
		return decodeStatusError(status, resp.Body())
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return errors.Wrapf(err, "decode %s response", path)
	}
	return nil
}

// decodeStatusError prefers the backend's structured detail field over a
// generic status message.
func decodeStatusError(status int, body []byte) error {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		return &StatusError{StatusCode: status, Detail: payload.Detail}
	}
	return &StatusError{StatusCode: status}
}
