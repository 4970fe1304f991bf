package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"wf-exporter/internal/apperrors"
	"wf-exporter/internal/artifact"
	"wf-exporter/internal/config"
)

const (
	// DefaultTimeout bounds one API request.
	DefaultTimeout = 60 * time.Second

	// DefaultRequestsPerSecond keeps the client well under workspace API limits.
	DefaultRequestsPerSecond = 10

	defaultBurst = 5

	// MaxResponseSize is the maximum allowed response body size.
	MaxResponseSize = 64 * 1024 * 1024
)

// ErrNotConfigured indicates the host or token is missing.
var ErrNotConfigured = errors.New("workspace client not configured")

// Client talks to one workspace.
type Client struct {
	host          string
	token         string
	fallbackToken string

	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRateLimit sets the request rate.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client from credentials.
func New(creds config.Credentials, opts ...Option) (*Client, error) {
	if creds.Host == "" || creds.Token == "" {
		return nil, ErrNotConfigured
	}

	c := &Client{
		host:          strings.TrimRight(creds.Host, "/"),
		token:         creds.Token,
		fallbackToken: creds.FallbackToken,
		http:          &http.Client{Timeout: DefaultTimeout},
		limiter:       rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), defaultBurst),
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *Client) tokenFor(cred artifact.Credential) (string, bool) {
	if cred == artifact.FallbackCredential {
		return c.fallbackToken, c.fallbackToken != ""
	}

	return c.token, true
}

// get performs an authenticated GET and returns the body. 401/403 map to
// PermissionDenied and 404 to ArtifactNotFound.
func (c *Client) get(ctx context.Context, op, apiPath string, query url.Values, cred artifact.Credential) ([]byte, error) {
	token, ok := c.tokenFor(cred)
	if !ok {
		return nil, apperrors.PermissionDenied(op, apiPath, errors.New("no fallback credential configured"))
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for rate limiter: %w", err)
	}

	u := c.host + apiPath
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", op, err)
	}

	req.Header.Set("Authorization", "Bearer "+token)

	c.logger.Debug("workspace request", "op", op, "path", apiPath, "credential", cred.String())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", op, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, apperrors.PermissionDenied(op, apiPath, apiError(resp.StatusCode, body))
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperrors.ArtifactNotFoundCause(apiPath, apiError(resp.StatusCode, body))
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, fmt.Errorf("%s failed: %w", op, apiError(resp.StatusCode, body))
	}

	return body, nil
}

func (c *Client) getJSON(ctx context.Context, op, apiPath string, query url.Values, out any) error {
	body, err := c.get(ctx, op, apiPath, query, artifact.PrimaryCredential)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}

	return nil
}

// apiError extracts the error message of a workspace API error body.
func apiError(status int, body []byte) error {
	var payload struct {
		ErrorCode string `json:"error_code"`
		Message   string `json:"message"`
	}

	if json.Unmarshal(body, &payload) == nil && payload.Message != "" {
		return fmt.Errorf("HTTP %d %s: %s", status, payload.ErrorCode, payload.Message)
	}

	return fmt.Errorf("HTTP %d", status)
}
