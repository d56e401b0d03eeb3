// Package client talks to the spendtrack HTTP API.
package client

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

	"github.com/spendtrack/spendtrack-go/internal/model"
)

// TokenSource supplies the bearer token for each request. session.Machine
// implements it.
type TokenSource interface {
	Token() string
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.StatusCode)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.StatusCode)
}

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client is a spendtrack API client.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New returns a client for the API rooted at baseURL. tokens may be nil for
// anonymous use.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		tokens:  tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Health checks that the server is up.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error) {
	var resp model.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/register", req, &resp)
	return resp, err
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	var resp model.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", req, &resp)
	return resp, err
}

// Me returns the profile of the token's owner.
func (c *Client) Me(ctx context.Context) (model.UserResponse, error) {
	var resp model.MeResponse
	err := c.do(ctx, http.MethodGet, "/auth/me", nil, &resp)
	return resp.User, err
}

// ListExpenses returns the caller's expenses, newest first.
func (c *Client) ListExpenses(ctx context.Context) ([]model.ExpenseResponse, error) {
	var resp model.ExpenseListResponse
	err := c.do(ctx, http.MethodGet, "/expenses", nil, &resp)
	return resp.Expenses, err
}

// CreateExpense records a new expense.
func (c *Client) CreateExpense(ctx context.Context, req model.CreateExpenseRequest) (model.ExpenseResponse, error) {
	var resp model.ExpenseEnvelope
	err := c.do(ctx, http.MethodPost, "/expenses", req, &resp)
	return resp.Expense, err
}

// DeleteExpense deletes one expense.
func (c *Client) DeleteExpense(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/expenses/"+url.PathEscape(id), nil, nil)
}

// BulkDelete deletes several expenses and reports how many were removed.
func (c *Client) BulkDelete(ctx context.Context, ids []string) (int64, error) {
	var resp model.BulkDeleteResponse
	err := c.do(ctx, http.MethodDelete, "/expenses/bulk", model.BulkDeleteRequest{ExpenseIDs: ids}, &resp)
	return resp.DeletedCount, err
}

// Summary returns the caller's totals.
func (c *Client) Summary(ctx context.Context) (model.SummaryResponse, error) {
	var resp model.SummaryResponse
	err := c.do(ctx, http.MethodGet, "/expenses/summary", nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var body struct {
		Error string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(raw, &body) == nil {
		apiErr.Message = body.Error
	}
	return apiErr
}
