// Package codeocean is a client for the Code Ocean REST API.
package codeocean

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

const (
	apiPrefix = "/api/v1"

	// DefaultMaxFileChars bounds how much of a downloaded file ReadFile returns.
	DefaultMaxFileChars = 50000

	defaultTimeout     = 30 * time.Second
	maxErrorBodyBytes  = 4096
	maxResponseBytes   = 32 << 20
	minPollingInterval = 5 * time.Second
)

var (
	// ErrNotFound matches platform responses with status 404.
	ErrNotFound = errors.New("not found")
	// ErrTimeout reports a wait that exceeded its deadline.
	ErrTimeout = errors.New("timed out waiting on platform")
	// ErrPollingInterval reports a polling interval below the platform minimum.
	ErrPollingInterval = errors.New("polling interval too short")
)

// APIError is a non-2xx response from the platform.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Body       string
}

func (e *APIError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("codeocean: %s %s: HTTP %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("codeocean: %s %s: HTTP %d: %s", e.Method, e.Path, e.StatusCode, body)
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Options configures a Client.
type Options struct {
	// Domain is the platform host, e.g. "acme.codeocean.com". A value
	// with a scheme is used as the base URL as-is.
	Domain       string
	Token        string
	Timeout      time.Duration
	MaxFileChars int
	HTTPClient   *http.Client
	Logger       *log.Logger
}

// Client calls the platform API on behalf of one access token.
type Client struct {
	baseURL      string
	token        string
	http         *http.Client
	logger       *log.Logger
	maxFileChars int
	minPoll      time.Duration
}

// New creates a client. Domain and Token are required.
func New(opts Options) (*Client, error) {
	domain := strings.TrimRight(strings.TrimSpace(opts.Domain), "/")
	if domain == "" {
		return nil, errors.New("codeocean: domain is required")
	}
	if strings.TrimSpace(opts.Token) == "" {
		return nil, errors.New("codeocean: token is required")
	}
	if !strings.Contains(domain, "://") {
		domain = "https://" + domain
	}
	if _, err := url.Parse(domain); err != nil {
		return nil, fmt.Errorf("codeocean: invalid domain: %w", err)
	}

	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	maxChars := opts.MaxFileChars
	if maxChars <= 0 {
		maxChars = DefaultMaxFileChars
	}
	return &Client{
		baseURL:      domain + apiPrefix,
		token:        opts.Token,
		http:         hc,
		logger:       logger,
		maxFileChars: maxChars,
		minPoll:      minPollingInterval,
	}, nil
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// do sends one API request and decodes a JSON response into out. out may
// be nil when the response body is not needed.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("codeocean: encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("codeocean: create request: %w", err)
	}
	requestID := uuid.NewString()
	req.SetBasicAuth(c.token, "")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("codeocean: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	c.logger.Debug("platform request", "method", method, "path", path, "status", resp.StatusCode, "request_id", requestID, "duration", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return &APIError{StatusCode: resp.StatusCode, Method: method, Path: path, Body: string(raw)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("codeocean: decode %s %s response: %w", method, path, err)
	}
	return nil
}

func escape(id string) string { return url.PathEscape(id) }
