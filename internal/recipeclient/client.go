// Package recipeclient is an HTTP client for the remote recipe resource (/receitas).
package recipeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starford/receitas/internal/apperr"
	"github.com/starford/receitas/internal/models"
)

const resourcePath = "/receitas"

// maxErrorBody caps how much of a failed response body ends up in a StatusError.
const maxErrorBody = 512

// Client talks to one recipe API instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    *time.Duration
	logger     *slog.Logger
}

const defaultTimeout = 10 * time.Second

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom http.Client. The client is never modified;
// a nil client keeps the default.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout, overriding the one of the
// http.Client in use. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = &d }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client for the API at baseURL (e.g. "https://receitasapi-b-2025.vercel.app").
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}

	switch {
	case c.httpClient == nil:
		timeout := defaultTimeout
		if c.timeout != nil {
			timeout = *c.timeout
		}
		c.httpClient = &http.Client{Timeout: timeout}
	case c.timeout != nil:
		hc := *c.httpClient
		hc.Timeout = *c.timeout
		c.httpClient = &hc
	}
	return c
}

// List fetches the whole collection in server order.
func (c *Client) List(ctx context.Context) ([]models.Recipe, error) {
	var out []models.Recipe
	if err := c.do(ctx, "list", http.MethodGet, resourcePath, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Recipe{}
	}
	return out, nil
}

// Create posts a new recipe and returns the record as the server stored it.
func (c *Client) Create(ctx context.Context, d models.Draft) (models.Recipe, error) {
	var out models.Recipe
	if err := c.do(ctx, "create", http.MethodPost, resourcePath, wireDraft(d), &out); err != nil {
		return models.Recipe{}, err
	}
	return out, nil
}

// Update replaces every field of recipe id. When the server answers without a
// body the returned recipe is the zero value.
func (c *Client) Update(ctx context.Context, id int, d models.Draft) (models.Recipe, error) {
	var out models.Recipe
	if err := c.do(ctx, "update", http.MethodPut, recipePath(id), wireDraft(d), &out); err != nil {
		return models.Recipe{}, err
	}
	return out, nil
}

// Delete removes recipe id. The response body is ignored.
func (c *Client) Delete(ctx context.Context, id int) error {
	return c.do(ctx, "delete", http.MethodDelete, recipePath(id), nil, nil)
}

func recipePath(id int) string {
	return resourcePath + "/" + strconv.Itoa(id)
}

// wireDraft guarantees "ingredientes" is sent as an array.
func wireDraft(d models.Draft) models.Draft {
	if d.Ingredients == nil {
		d.Ingredients = models.Ingredients{}
	}
	return d
}

// do performs one request. out may be nil; an empty success body leaves out untouched.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("recipeclient: %s: marshal: %w", op, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("recipeclient: %s: build request: %w", op, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("recipe api request failed",
			slog.String("op", op),
			slog.String("request_id", requestID),
			slog.String("error", err.Error()))
		return fmt.Errorf("recipeclient: %s %s: %w: %w", method, path, apperr.ErrNetwork, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("recipe api request",
		slog.String("op", op),
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.String("request_id", requestID),
		slog.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &apperr.StatusError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("recipeclient: %s: read body: %w: %w", op, apperr.ErrNetwork, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("recipeclient: %s: decode: %w: %w", op, apperr.ErrServer, err)
	}
	return nil
}
