// Package backend implements the wizard's outbound collaborator ports
// (Checker, Suggester, Uploader, Submitter) against a REST backend.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aretw0/stile/internal/logging"
	"github.com/aretw0/stile/pkg/domain"
)

const (
	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	// MaxResponseSize caps response bodies (1MB); wizard responses are tiny.
	MaxResponseSize = 1 * 1024 * 1024
)

// Client talks to the signup backend. It implements ports.Checker,
// ports.Suggester, ports.Uploader and ports.Submitter, so a single instance
// can be handed to the wizard for all four collaborator roles.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithTimeout sets the request timeout on the default client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.client.Timeout = d }
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a backend client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: DefaultTimeout},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type checkResponse struct {
	Valid bool `json:"valid"`
}

// Check implements ports.Checker against GET /checks/{name}?value=.
// Transport and server failures surface as errors, which the engine treats
// as "cannot verify": blocking but retryable, never a rejection.
func (c *Client) Check(ctx context.Context, name, value string) (bool, error) {
	endpoint := fmt.Sprintf("%s/checks/%s?value=%s", c.baseURL, url.PathEscape(name), url.QueryEscape(value))

	var out checkResponse
	if err := c.getJSON(ctx, endpoint, &out); err != nil {
		return false, err
	}
	return out.Valid, nil
}

type suggestResponse struct {
	Suggestions []domain.AddressSuggestion `json:"suggestions"`
}

// Suggest implements ports.Suggester against GET /addresses/suggest?q=.
func (c *Client) Suggest(ctx context.Context, query string) ([]domain.AddressSuggestion, error) {
	endpoint := fmt.Sprintf("%s/addresses/suggest?q=%s", c.baseURL, url.QueryEscape(query))

	var out suggestResponse
	if err := c.getJSON(ctx, endpoint, &out); err != nil {
		return nil, err
	}
	return out.Suggestions, nil
}

type uploadResponse struct {
	URL string `json:"url"`
}

// Upload implements ports.Uploader against POST /uploads (multipart).
func (c *Client) Upload(ctx context.Context, name string, data []byte) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("failed to write upload body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/uploads", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out uploadResponse
	if err := c.doJSON(req, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

type submitResponse struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
	Error  string         `json:"error"`
}

// Submit implements ports.Submitter against POST /signups. A non-2xx
// response becomes an error carrying the server's message, which the engine
// surfaces verbatim on the terminal step.
func (c *Client) Submit(ctx context.Context, payload map[string]any) (*domain.Record, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/signups", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submission request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read submission response: %w", err)
	}

	var out submitResponse
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("invalid submission response: %w", err)
		}
	}

	c.logger.Debug("submission completed",
		"status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := out.Error
		if msg == "" {
			msg = fmt.Sprintf("signup failed with status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("%s", msg)
	}

	return &domain.Record{ID: out.ID, Fields: out.Fields}, nil
}

// getJSON performs a GET and decodes a JSON body into out.
func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	return c.doJSON(req, out)
}

func (c *Client) doJSON(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed",
			"method", req.Method, "url", req.URL.String(), "err", err)
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("backend returned status %d", resp.StatusCode)
	}

	body := io.LimitReader(resp.Body, MaxResponseSize)
	if err := json.NewDecoder(body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
