package checkoutapi

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
)

const maxResponseSizeBytes = 2 << 20

var (
	ErrSessionNotFound = errors.New("checkout session not found")
	ErrEmptySessionID  = errors.New("checkout session id is empty")
)

// StatusError is returned when the capability answers with a non-2xx status.
// Detail carries a human-readable summary safe to surface to callers.
type StatusError struct {
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("checkout capability status=%d: %s", e.StatusCode, e.Detail)
}

type Config struct {
	BaseURL string        `envconfig:"BASE_URL" split_words:"true" required:"true"`
	APIKey  string        `envconfig:"API_KEY" split_words:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"15s"`
}

// ClientOption customizes Client.
type ClientOption func(*Client)

func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// Client talks to the checkout capability over HTTP JSON. All operations are
// synchronous request/response; the client performs no retries, since the
// capability gives no idempotency guarantees for updates or completion.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("checkout base url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid checkout base url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client := &Client{
		baseURL: baseURL,
		apiKey:  strings.TrimSpace(cfg.APIKey),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

func MustNew(cfg Config, opts ...ClientOption) *Client {
	client, err := NewClient(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return client
}

// Create opens a new checkout session.
func (c *Client) Create(ctx context.Context, req CreateRequest) (*Session, error) {
	return c.do(ctx, http.MethodPost, "/sessions", req)
}

// Get fetches the canonical session document.
func (c *Client) Get(ctx context.Context, id string) (*Session, error) {
	path, err := sessionPath(id, "")
	if err != nil {
		return nil, err
	}
	return c.do(ctx, http.MethodGet, path, nil)
}

// Update replaces the whole session document. Callers must have merged the
// prior state in; the capability has no patch semantics.
func (c *Client) Update(ctx context.Context, id string, sess *Session) (*Session, error) {
	if sess == nil {
		return nil, errors.New("session document is nil")
	}
	path, err := sessionPath(id, "")
	if err != nil {
		return nil, err
	}
	return c.do(ctx, http.MethodPut, path, sess)
}

// Complete submits payment data and finalizes the session.
func (c *Client) Complete(ctx context.Context, id string, payment PaymentData) (*Session, error) {
	path, err := sessionPath(id, "/complete")
	if err != nil {
		return nil, err
	}
	return c.do(ctx, http.MethodPost, path, completeRequest{PaymentData: payment})
}

func sessionPath(id string, suffix string) (string, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return "", ErrEmptySessionID
	}
	return "/sessions/" + url.PathEscape(trimmed) + suffix, nil
}

func (c *Client) do(ctx context.Context, method string, path string, payload any) (*Session, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal checkout request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build checkout request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute checkout request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("read checkout response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrSessionNotFound
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Detail:     errorDetail(raw),
		}
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}
	return &sess, nil
}

// errorDetail pulls a message out of an error body, falling back to the raw
// text truncated to a sane length.
func errorDetail(raw []byte) string {
	var parsed struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &parsed); err == nil {
		if parsed.Error != "" {
			return parsed.Error
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}
	text := strings.TrimSpace(string(raw))
	if len(text) > 200 {
		text = text[:200]
	}
	if text == "" {
		text = "no detail"
	}
	return text
}
