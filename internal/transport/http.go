// Package transport carries indexer requests over HTTP with rate limiting
// and retries.
package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mrz1836/evmwallet/internal/metrics"
	walleterr "github.com/mrz1836/evmwallet/pkg/errors"
)

const (
	// httpTimeout is the default HTTP request timeout.
	httpTimeout = 30 * time.Second

	// maxResponseBody is the maximum response body size to read (1 MB).
	maxResponseBody = 1 << 20

	// RequestIDHeader carries the per-request correlation id.
	RequestIDHeader = "X-Request-Id"
)

// Sentinel errors for the HTTP transport.
var (
	ErrInvalidBaseURL = &walleterr.WalletError{
		Code:     "INDEXER_URL_INVALID",
		Message:  "indexer base URL is invalid",
		ExitCode: walleterr.ExitInput,
	}

	ErrAPIError = &walleterr.WalletError{
		Code:     "INDEXER_API_ERROR",
		Message:  "indexer returned an error",
		ExitCode: walleterr.ExitGeneral,
	}

	ErrUpstream = &walleterr.WalletError{
		Code:     "INDEXER_UNAVAILABLE",
		Message:  "indexer is unavailable",
		ExitCode: walleterr.ExitGeneral,
	}

	ErrRateLimited = &walleterr.WalletError{
		Code:     "INDEXER_RATE_LIMITED",
		Message:  "indexer rate limit exceeded",
		ExitCode: walleterr.ExitGeneral,
	}
)

// Request is one indexer call.
type Request struct {
	Method string
	Path   string // relative to the base URL
	Query  url.Values
	Body   any // JSON-encoded when non-nil
}

// Options configures the HTTP transport.
type Options struct {
	// HTTPClient overrides the default HTTP client.
	HTTPClient *http.Client
	// RateLimiter overrides the default limiter (5 req/s, burst 10).
	RateLimiter *RateLimiter
	// Retry overrides DefaultRetryConfig.
	Retry *RetryConfig
	// Headers are added to every request.
	Headers map[string]string
	Logger  zerolog.Logger
}

// HTTP sends indexer requests to a base URL.
type HTTP struct {
	baseURL     *url.URL
	httpClient  *http.Client
	rateLimiter *RateLimiter
	retry       RetryConfig
	headers     map[string]string
	log         zerolog.Logger
}

// NewHTTP creates a transport for the indexer at baseURL.
func NewHTTP(baseURL string, opts *Options) (*HTTP, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, walleterr.WithDetails(ErrInvalidBaseURL, map[string]string{"url": baseURL})
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	h := &HTTP{
		baseURL: u,
		httpClient: &http.Client{
			Timeout: httpTimeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
			},
		},
		rateLimiter: NewRateLimiter(5, 10),
		retry:       DefaultRetryConfig(),
	}

	if opts != nil {
		if opts.HTTPClient != nil {
			h.httpClient = opts.HTTPClient
		}
		if opts.RateLimiter != nil {
			h.rateLimiter = opts.RateLimiter
		}
		if opts.Retry != nil {
			h.retry = *opts.Retry
		}
		h.headers = opts.Headers
		h.log = opts.Logger
	}

	return h, nil
}

// BaseURL returns the indexer base URL.
func (h *HTTP) BaseURL() string {
	return h.baseURL.String()
}

// Do performs req, retrying rate-limited and upstream failures.
func (h *HTTP) Do(ctx context.Context, req Request) ([]byte, error) {
	var payload []byte
	if req.Body != nil {
		var err error
		if payload, err = json.Marshal(req.Body); err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
	}

	onRetry := func(attempt int, err error) {
		metrics.Global.RecordIndexerRetry()
		h.log.Debug().Str("path", req.Path).Int("attempt", attempt).Err(err).Msg("retrying indexer request")
	}

	return RetryWithConfig(ctx, h.retry, onRetry, func() ([]byte, error) {
		return h.do(ctx, req, payload)
	})
}

func (h *HTTP) do(ctx context.Context, req Request, payload []byte) ([]byte, error) {
	if err := h.rateLimiter.Wait(ctx, h.baseURL.Host); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	ref, err := url.Parse(strings.TrimPrefix(req.Path, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing request path: %w", err)
	}
	target := h.baseURL.ResolveReference(ref)
	if len(req.Query) > 0 {
		target.RawQuery = req.Query.Encode()
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	requestID := uuid.NewString()
	httpReq.Header.Set(RequestIDHeader, requestID)
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range h.headers {
		httpReq.Header.Set(k, v)
	}

	start := time.Now()
	data, err := h.send(httpReq)
	metrics.Global.RecordIndexerCall(time.Since(start), err)

	h.log.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", req.Path).
		Dur("duration", time.Since(start)).
		Err(err).
		Msg("indexer request")

	return data, err
}

func (h *HTTP) send(httpReq *http.Request) ([]byte, error) {
	resp, err := h.httpClient.Do(httpReq) //nolint:gosec // G704: URL is built from validated config
	if err != nil {
		return nil, WrapRetryable(fmt.Errorf("sending request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		details := map[string]string{"status": fmt.Sprintf("%d", resp.StatusCode)}
		if ra := ParseRetryAfter(resp.Header.Get("Retry-After")); ra > 0 {
			details["retry_after"] = ra.String()
		}
		return nil, walleterr.WithDetails(ErrRateLimited, details)
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, walleterr.WithDetails(ErrUpstream, map[string]string{
			"status": fmt.Sprintf("%d", resp.StatusCode),
			"body":   truncateBody(string(body), 512),
		})
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, walleterr.WithDetails(ErrAPIError, map[string]string{
			"status": fmt.Sprintf("%d", resp.StatusCode),
			"body":   truncateBody(string(body), 512),
		})
	}

	return body, nil
}

// truncateBody truncates a string to maxLen characters.
func truncateBody(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
