package radarr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"prunarr/internal/config"
	"prunarr/internal/services"
)

const userAgent = "prunarr/0.1"

// Movie is the subset of the Radarr v3 movie resource used for reconciliation.
type Movie struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Year       int    `json:"year"`
	Path       string `json:"path"`
	SizeOnDisk int64  `json:"sizeOnDisk"`
}

// SystemStatus is the subset of /api/v3/system/status used by preflight.
type SystemStatus struct {
	AppName string `json:"appName"`
	Version string `json:"version"`
}

// DeleteOptions mirrors the query flags of DELETE /api/v3/movie/{id}.
type DeleteOptions struct {
	DeleteFiles        bool
	AddImportExclusion bool
}

// API describes the Radarr operations prunarr depends on.
type API interface {
	ListMovies(ctx context.Context) ([]Movie, error)
	DeleteMovie(ctx context.Context, id int64, opts DeleteOptions) error
	SystemStatus(ctx context.Context) (*SystemStatus, error)
}

// HTTPDoer describes the HTTP client used by the Radarr client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// StatusError reports a non-2xx Radarr response. It unwraps to a services
// marker so callers can branch with errors.Is.
type StatusError struct {
	Operation string
	Code      int
	Body      string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("radarr %s returned %d", e.Operation, e.Code)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Unwrap maps the HTTP status onto the shared error markers.
func (e *StatusError) Unwrap() error {
	switch {
	case e.Code == http.StatusNotFound:
		return services.ErrNotFound
	case e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden:
		return services.ErrConfiguration
	case e.Code == http.StatusRequestTimeout || e.Code == http.StatusGatewayTimeout:
		return services.ErrTimeout
	default:
		return services.ErrTransient
	}
}

// Client talks to the Radarr v3 REST API.
type Client struct {
	apiKey  string
	baseURL string
	client  HTTPDoer
	limiter *rate.Limiter
}

var _ API = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client HTTPDoer) Option {
	return func(c *Client) {
		if client != nil {
			c.client = client
		}
	}
}

// WithRateLimit paces requests to at most rps per second. Zero disables pacing.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// New creates a Radarr client.
func New(baseURL, apiKey string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "radarr", "new client", "api key required", nil)
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "radarr", "new client", "base url required", nil)
	}
	client := &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// NewFromConfig builds a client using the [radarr] config section.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "radarr", "new client", "config required", nil)
	}
	base := []Option{
		WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Radarr.RequestTimeout) * time.Second}),
		WithRateLimit(cfg.Radarr.RequestsPerSecond),
	}
	return New(cfg.Radarr.URL, cfg.Radarr.APIKey, append(base, opts...)...)
}

// ListMovies fetches the full movie catalog.
func (c *Client) ListMovies(ctx context.Context) ([]Movie, error) {
	var movies []Movie
	if err := c.getJSON(ctx, "list movies", "/api/v3/movie", &movies); err != nil {
		return nil, err
	}
	return movies, nil
}

// SystemStatus reports the Radarr version; it doubles as an auth check.
func (c *Client) SystemStatus(ctx context.Context) (*SystemStatus, error) {
	var status SystemStatus
	if err := c.getJSON(ctx, "system status", "/api/v3/system/status", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// DeleteMovie removes a movie record. A missing record yields an error that
// matches services.ErrNotFound.
func (c *Client) DeleteMovie(ctx context.Context, id int64, opts DeleteOptions) error {
	params := url.Values{}
	params.Set("deleteFiles", strconv.FormatBool(opts.DeleteFiles))
	params.Set("addImportExclusion", strconv.FormatBool(opts.AddImportExclusion))
	endpoint := fmt.Sprintf("/api/v3/movie/%d?%s", id, params.Encode())

	resp, err := c.do(ctx, "delete movie", http.MethodDelete, endpoint)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) getJSON(ctx context.Context, operation, endpoint string, out any) error {
	resp, err := c.do(ctx, operation, http.MethodGet, endpoint)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrTransient, "radarr", operation, "decode response", err)
	}
	return nil
}

// do executes a request and returns the response only for 2xx statuses.
func (c *Client) do(ctx context.Context, operation, method, endpoint string) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("radarr %s: rate limit wait: %w", operation, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build radarr %s request: %w", operation, err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	requestStart := time.Now()
	resp, err := c.client.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		marker := services.ErrTransient
		if errors.Is(err, context.DeadlineExceeded) {
			marker = services.ErrTimeout
		}
		return nil, services.Wrap(marker, "radarr", operation, fmt.Sprintf("latency=%v", latency.Round(time.Millisecond)), err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, &StatusError{Operation: operation, Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return resp, nil
}
