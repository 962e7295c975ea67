package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/publicsuffix"

	"github.com/castvote-dev/castvote/internal/cli/store"
)

const (
	// DefaultBaseURL is used when no backend URL has been configured
	DefaultBaseURL = "http://localhost:8080/api"

	// DefaultTimeout bounds every request
	DefaultTimeout = 15 * time.Second
)

// Client represents an HTTP client for the voting API. The base URL is
// captured at construction; changing it requires a new Client.
type Client struct {
	baseURL    string
	store      store.Store
	httpClient *http.Client
	effects    EffectHandler
	location   func() string
	logger     zerolog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client. The client is copied, so the
// caller's value is never modified; an unset timeout or cookie jar falls back
// to the defaults built by New.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		hc := *httpClient
		if hc.Timeout == 0 {
			hc.Timeout = c.httpClient.Timeout
		}
		if hc.Jar == nil {
			hc.Jar = c.httpClient.Jar
		}
		c.httpClient = &hc
	}
}

// WithTimeout overrides the request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = timeout
		c.httpClient = &hc
	}
}

// WithEffects sets the handler that executes classifier effects
func WithEffects(h EffectHandler) Option {
	return func(c *Client) {
		c.effects = h
	}
}

// WithLocation sets the provider of the user's current route
func WithLocation(location func() string) Option {
	return func(c *Client) {
		c.location = location
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a new API client. The base URL is read once from s.
func New(s store.Store, opts ...Option) (*Client, error) {
	baseURL, err := ResolveBaseURL(s)
	if err != nil {
		return nil, err
	}

	// Credentials (cookies) are kept and sent back like a browser would
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	c := &Client{
		baseURL: baseURL,
		store:   s,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			Jar:     jar,
		},
		effects:  discardEffects{},
		location: func() string { return "" },
		logger:   zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// ResolveBaseURL returns the configured backend URL, or the default
func ResolveBaseURL(s store.Store) (string, error) {
	baseURL, ok, err := s.Load(store.KeyBaseURL)
	if err != nil {
		return "", fmt.Errorf("failed to read backend URL: %w", err)
	}
	if !ok || baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return strings.TrimRight(baseURL, "/"), nil
}

// BaseURL returns the backend URL captured at construction
func (c *Client) BaseURL() string {
	return c.baseURL
}

func baseHeader() http.Header {
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")
	return h
}

// do runs one call through the pipeline: prepare, send, classify, apply
// effects. Every failure is returned to the caller after its effects ran.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	rc := RequestContext{
		Method: method,
		Path:   path,
		Header: baseHeader(),
	}

	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		rc.Body = data
	}

	// A storage failure aborts the call before it reaches the network
	token, _, err := c.store.Load(store.KeyToken)
	if err != nil {
		return fmt.Errorf("failed to read session token: %w", err)
	}
	rc = PrepareRequest(rc, token)

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(rc.Body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header = rc.Header

	start := time.Now()
	rc = c.send(req, rc)

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", rc.Status).
		Dur("duration", time.Since(start)).
		Msg("API request")

	outcome := ClassifyResponse(rc, c.location())
	if len(outcome.Effects) > 0 {
		c.effects.Apply(ctx, outcome.Effects)
	}
	if outcome.Err != nil {
		return outcome.Err
	}

	if out == nil || len(bytes.TrimSpace(rc.ResponseBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(rc.ResponseBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) send(req *http.Request, rc RequestContext) RequestContext {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		rc.Err = err
		return rc
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		// A truncated response counts as no response
		rc.Err = err
		return rc
	}

	rc.Status = resp.StatusCode
	rc.ResponseBody = body
	return rc
}
