// Package client is a Go client for the portfolio contact API, with the form
// and liveness helpers used by front ends.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

const (
	// ProductionBaseURL is used when the front end is served from the public domain.
	ProductionBaseURL = "https://morvin-quernel.com/api"
	// DevelopmentBaseURL is used everywhere else.
	DevelopmentBaseURL = "http://localhost:8080/api"

	// BaseURLEnv overrides host-based resolution when set.
	BaseURLEnv = "PORTFOLIO_API_URL"
)

var productionHosts = map[string]bool{
	"morvin-quernel.com":     true,
	"www.morvin-quernel.com": true,
}

// ResolveBaseURL returns the API base URL for a front end served from host.
func ResolveBaseURL(host string) string {
	if v := strings.TrimSpace(os.Getenv(BaseURLEnv)); v != "" {
		return strings.TrimRight(v, "/")
	}
	if h, _, ok := strings.Cut(host, ":"); ok {
		host = h
	}
	if productionHosts[strings.ToLower(host)] {
		return ProductionBaseURL
	}
	return DevelopmentBaseURL
}

// Credentials holds the bearer token of the current session. It is passed
// explicitly to the calls that need it and cleared when the API answers 401.
type Credentials struct {
	mu    sync.RWMutex
	token string
}

// NewCredentials は token を保持する Credentials を生成する
func NewCredentials(token string) *Credentials {
	return &Credentials{token: token}
}

// Token returns the current token, or "".
func (c *Credentials) Token() string {
	if c == nil {
		return ""
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Set replaces the token.
func (c *Credentials) Set(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Clear forgets the token.
func (c *Credentials) Clear() {
	if c == nil {
		return
	}
	c.Set("")
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	// Message is the server "error" field, empty when the body carried none.
	Message string
	Details string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api: status %d: %s", e.StatusCode, e.Message)
}

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Me is the body of GET /me.
type Me struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

// ContactRequest is the body of POST /contact.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// ContactResponse is the 201 body of POST /contact.
type ContactResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	SenderID     int64  `json:"sender_id"`
	MessageID    int64  `json:"message_id"`
	EmailWarning string `json:"email_warning,omitempty"`
}

// Client calls the contact API over HTTP.
type Client struct {
	BaseURL    string
	httpClient *http.Client
}

// NewClient は baseURL に対する Client を生成する
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// Status calls GET /status.
func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	var out StatusResponse
	if err := c.do(ctx, http.MethodGet, "/status", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me calls GET /me with cred. A 401 clears cred.
func (c *Client) Me(ctx context.Context, cred *Credentials) (*Me, error) {
	var out Me
	if err := c.do(ctx, http.MethodGet, "/me", nil, cred, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitContact calls POST /contact.
func (c *Client) SubmitContact(ctx context.Context, req ContactRequest) (*ContactResponse, error) {
	var out ContactResponse
	if err := c.do(ctx, http.MethodPost, "/contact", req, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, cred *Credentials, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := cred.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusUnauthorized {
			cred.Clear()
		}
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var e struct {
			Error   string `json:"error"`
			Details string `json:"details"`
		}
		if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&e); err == nil {
			apiErr.Message = e.Error
			apiErr.Details = e.Details
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}
