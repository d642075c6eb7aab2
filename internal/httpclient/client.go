package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/oukeidos/percept/internal/version"
)

const (
	// DefaultTimeout bounds one remote tagging call, upload included.
	DefaultTimeout = 2 * time.Minute
	// MaxRequestBytes caps JSON request bodies. Images travel base64-encoded
	// inside them, so this is the effective upload limit.
	MaxRequestBytes = 48 << 20
	// MaxResponseBytes caps HTTP response bodies. Label replies are small.
	MaxResponseBytes = 1 << 20

	// Requests are user-triggered and rarely concurrent.
	MaxIdleConns          = 10
	MaxIdleConnsPerHost   = 2
	IdleConnTimeout       = 90 * time.Second
	TLSHandshakeTimeout   = 30 * time.Second
	ExpectContinueTimeout = 2 * time.Second
)

var (
	ErrRequestTooLarge  = errors.New("request body too large")
	ErrResponseTooLarge = errors.New("response body too large")
)

var (
	defaultClient     *http.Client
	defaultClientOnce sync.Once
	overrideClient    *http.Client
)

// NewClient returns a client with the given overall timeout that stamps
// requests with the percept User-Agent.
func NewClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          MaxIdleConns,
		MaxIdleConnsPerHost:   MaxIdleConnsPerHost,
		IdleConnTimeout:       IdleConnTimeout,
		TLSHandshakeTimeout:   TLSHandshakeTimeout,
		ExpectContinueTimeout: ExpectContinueTimeout,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: &userAgentTransport{base: transport, agent: version.UserAgent()},
	}
}

// userAgentTransport stamps outgoing requests that carry no User-Agent of their own.
type userAgentTransport struct {
	base  http.RoundTripper
	agent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.base.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.agent)
	return t.base.RoundTrip(clone)
}

// GetDefaultClient returns the shared client used by the remote backends.
func GetDefaultClient() *http.Client {
	if overrideClient != nil {
		return overrideClient
	}
	defaultClientOnce.Do(func() {
		defaultClient = NewClient(DefaultTimeout)
	})
	return defaultClient
}

// SetDefaultClientForTesting overrides the shared client and returns a
// function that restores the previous one.
func SetDefaultClientForTesting(client *http.Client) func() {
	prev := overrideClient
	overrideClient = client
	return func() {
		overrideClient = prev
	}
}

// DoAndRead sends req and returns the whole body, at most MaxResponseBytes.
// The body is always closed. resp is returned even when the body is
// rejected, so callers can still inspect the status.
func DoAndRead(client *http.Client, req *http.Request) ([]byte, *http.Response, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := readLimited(resp.Body, resp.ContentLength, MaxResponseBytes)
	if err != nil {
		return nil, resp, err
	}
	return body, resp, nil
}

func readLimited(r io.Reader, declared int64, limit int64) ([]byte, error) {
	tooLarge := fmt.Errorf("%w (limit %d bytes)", ErrResponseTooLarge, limit)
	if declared > limit {
		return nil, tooLarge
	}
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, tooLarge
	}
	return body, nil
}

// PostJSON marshals payload, posts it to url with the extra header values
// and returns the response as DoAndRead does. Bodies over MaxRequestBytes
// are refused before anything is sent.
func PostJSON(ctx context.Context, client *http.Client, url string, header http.Header, payload any) ([]byte, *http.Response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	if len(data) > MaxRequestBytes {
		return nil, nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrRequestTooLarge, len(data), MaxRequestBytes)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	return DoAndRead(client, req)
}
