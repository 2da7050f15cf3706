// Package maas is a thin client for the MAAS region API. It covers only
// what the lease synchronizer needs: authenticated GET/POST/PUT round
// trips returning raw JSON.
package maas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/anuragkhuntia/leasectl/internal/logging"
)

type Client struct {
	baseURL    string
	key        APIKey
	httpClient *http.Client
	logger     *slog.Logger

	// Injectable for deterministic tests.
	now   func() time.Time
	nonce func() string
}

// NewClient validates the API key and normalizes the base URL. It makes
// no network calls; a malformed key fails here, before any request.
func NewClient(rawURL, rawKey string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	key, err := ParseAPIKey(rawKey)
	if err != nil {
		return nil, err
	}
	base, err := normalizeBaseURL(rawURL)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		baseURL:    base,
		key:        key,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.Ensure(logger).With("component", "maas.client"),
		now:        time.Now,
		nonce:      uuid.NewString,
	}, nil
}

// APIError is a non-success response from the MAAS API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: %d - %s", e.StatusCode, e.Body)
}

// Get performs an authenticated GET against path (which may carry a query).
func (c *Client) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

// PostForm performs an authenticated form-encoded POST against path.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, path, form)
}

// PutForm performs an authenticated form-encoded PUT against path.
func (c *Client) PutForm(ctx context.Context, path string, form url.Values) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPut, path, form)
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values) (json.RawMessage, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build %s request for %s: %w", method, path, err)
	}

	timestamp := strconv.FormatInt(c.now().Unix(), 10)
	req.Header.Set("Authorization", c.key.AuthorizationHeader(timestamp, c.nonce()))
	req.Header.Set("Accept", "application/json")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	c.logger.Debug("calling MAAS API", "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call MAAS API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read MAAS API response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted, http.StatusNoContent:
	default:
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	if len(respBody) == 0 {
		return json.RawMessage("{}"), nil
	}
	return json.RawMessage(respBody), nil
}

func normalizeBaseURL(raw string) (string, error) {
	s := strings.TrimRight(strings.TrimSpace(raw), "/")
	if s == "" {
		return "", fmt.Errorf("MAAS URL is empty")
	}
	if !strings.Contains(s, "://") {
		s = "http://" + s
	}
	if _, err := url.Parse(s); err != nil {
		return "", fmt.Errorf("invalid MAAS URL %q: %w", raw, err)
	}
	return s, nil
}
