// Package client talks to the moderation service over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"profanity/pkg/censor"
	"profanity/pkg/models"
)

const defaultTimeout = 5 * time.Second

// StatusError is returned when the service answers with an unexpected status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("moderation service returned status %d: %s", e.Code, e.Body)
}

type Client struct {
	baseURL string
	hc      *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithTimeout sets the request timeout. A client passed with WithHTTPClient
// is copied, never modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.hc
		hc.Timeout = d
		c.hc = &hc
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type ctxKeyRequestID struct{}

// WithRequestID makes requests sent with ctx carry id as X-Request-Id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID{}, id)
}

// Moderate calls POST /moderate.
func (c *Client) Moderate(ctx context.Context, req models.ModerationRequest) (censor.Result, error) {
	var res censor.Result
	_, err := c.do(ctx, http.MethodPost, "/moderate", req, &res, http.StatusOK)
	return res, err
}

// IsClean calls POST /check and maps 200 to true and 422 to false.
func (c *Client) IsClean(ctx context.Context, text, language string) (bool, error) {
	req := models.ModerationRequest{Text: &text, Language: language}

	var res censor.Result
	code, err := c.do(ctx, http.MethodPost, "/check", req, &res, http.StatusOK, http.StatusUnprocessableEntity)
	if err != nil {
		return false, err
	}
	return code == http.StatusOK, nil
}

// Filter calls POST /filter.
func (c *Client) Filter(ctx context.Context, req models.ModerationRequest) (string, error) {
	var resp models.FilterResponse
	if _, err := c.do(ctx, http.MethodPost, "/filter", req, &resp, http.StatusOK); err != nil {
		return "", err
	}
	return resp.FilteredText, nil
}

// Languages calls GET /languages.
func (c *Client) Languages(ctx context.Context) (models.LanguagesResponse, error) {
	var resp models.LanguagesResponse
	_, err := c.do(ctx, http.MethodGet, "/languages", nil, &resp, http.StatusOK)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, want ...int) (int, error) {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("error encoding request to %s: %w", path, err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return 0, fmt.Errorf("error creating request to %s: %w", path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id, ok := ctx.Value(ctxKeyRequestID{}).(string); ok && id != "" {
		req.Header.Set("X-Request-Id", id)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("error calling moderation service: %w", err)
	}
	defer resp.Body.Close()

	if !expected(resp.StatusCode, want) {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return resp.StatusCode, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("error decoding response from %s: %w", path, err)
	}
	return resp.StatusCode, nil
}

func expected(code int, want []int) bool {
	for _, w := range want {
		if code == w {
			return true
		}
	}
	return false
}
