package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	walleterr "github.com/mrz1836/evmwallet/pkg/errors"
)

func testOptions() *Options {
	retry := fastRetry(3)
	return &Options{
		RateLimiter: NewRateLimiter(1000, 1000),
		Retry:       &retry,
		Headers:     map[string]string{"X-Wallet": "evmwallet"},
	}
}

func TestNewHTTP_InvalidURL(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "not a url", "/relative/only", "://bad"} {
		_, err := NewHTTP(raw, nil)
		require.ErrorIs(t, err, ErrInvalidBaseURL, raw)
	}
}

func TestHTTP_GetWithQuery(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/node/api/v1/addr/0xabc/balance", r.URL.Path)
		assert.Equal(t, "12", r.URL.Query().Get("confirmations"))
		assert.NotEmpty(t, r.Header.Get(RequestIDHeader))
		assert.Equal(t, "evmwallet", r.Header.Get("X-Wallet"))
		_, _ = w.Write([]byte(`{"balance":"1"}`))
	}))
	defer server.Close()

	h, err := NewHTTP(server.URL+"/node", testOptions())
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/node/", h.BaseURL())

	body, err := h.Do(context.Background(), Request{
		Path:  "api/v1/addr/0xabc/balance",
		Query: map[string][]string{"confirmations": {"12"}},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"balance":"1"}`, string(body))
}

func TestHTTP_PostJSON(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var payload map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "0xdead", payload["rawtx"])
		_, _ = w.Write([]byte(`{"txId":"0x1"}`))
	}))
	defer server.Close()

	h, err := NewHTTP(server.URL, testOptions())
	require.NoError(t, err)

	body, err := h.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/api/v1/tx/send",
		Body:   map[string]string{"rawtx": "0xdead"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"txId":"0x1"}`, string(body))
}

func TestHTTP_RetriesUpstreamFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"price":"1"}`))
	}))
	defer server.Close()

	h, err := NewHTTP(server.URL, testOptions())
	require.NoError(t, err)

	_, err = h.Do(context.Background(), Request{Path: "api/v1/gasPrice"})
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTP_RateLimited(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	h, err := NewHTTP(server.URL, testOptions())
	require.NoError(t, err)

	_, err = h.Do(context.Background(), Request{Path: "api/v1/gasPrice"})
	require.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTP_ClientErrorNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("tx not found"))
	}))
	defer server.Close()

	h, err := NewHTTP(server.URL, testOptions())
	require.NoError(t, err)

	_, err = h.Do(context.Background(), Request{Path: "api/v1/tx/0x1"})
	require.ErrorIs(t, err, ErrAPIError)
	assert.Equal(t, int32(1), calls.Load())

	var we *walleterr.WalletError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, "404", we.Details["status"])
	assert.Equal(t, "tx not found", we.Details["body"])
}

func TestHTTP_ContextCanceled(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(50 * time.Millisecond)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	h, err := NewHTTP(server.URL, testOptions())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = h.Do(ctx, Request{Path: "api/v1/gasPrice"})
	require.Error(t, err)
}

func TestTruncateBody(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", truncateBody("short", 10))
	assert.Equal(t, "abc...", truncateBody("abcdef", 3))
}
