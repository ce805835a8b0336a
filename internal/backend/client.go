// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for communicating with the Ruma backend API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the backend client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeNotRunning
	ErrTypeTimeout
	ErrTypeNotFound
	ErrTypeConnection
	ErrTypeInvalidResponse
)

// Sentinel errors for easy checking.
var (
	ErrNotRunning = &ClientError{Type: ErrTypeNotRunning, Message: "backend is not running"}
	ErrTimeout    = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrNotFound   = &ClientError{Type: ErrTypeNotFound, Message: "resource not found"}
)

// IsNotRunning checks if an error indicates the backend is not running.
func IsNotRunning(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeNotRunning
	}
	return errors.Is(err, ErrNotRunning)
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeTimeout
	}
	return errors.Is(err, ErrTimeout)
}

// IsNotFound checks if an error is a not-found error.
func IsNotFound(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeNotFound
	}
	return errors.Is(err, ErrNotFound)
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// BaseURL is the backend base URL (default: http://127.0.0.1:8000)
	// Note: Uses explicit IPv4 address instead of localhost to avoid IPv6
	// resolution issues on Windows
	BaseURL string

	// Timeout for requests (default: 30s)
	Timeout time.Duration

	// UserID identifies the local user to the backend
	UserID string

	// RequestsPerSecond caps outbound request rate so progress pollers and
	// user actions cannot stampede the local backend (default: 10)
	RequestsPerSecond float64
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:           "http://127.0.0.1:8000",
		Timeout:           30 * time.Second,
		UserID:            "default",
		RequestsPerSecond: 10,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the Ruma backend API.
// It is safe for concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new backend client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new backend client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	// Fill in defaults for any zero values
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:8000"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.UserID == "" {
		config.UserID = "default"
	}
	if config.RequestsPerSecond == 0 {
		config.RequestsPerSecond = 10
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), int(config.RequestsPerSecond)),
	}
}

// GetConfig returns the client configuration.
func (c *Client) GetConfig() *ClientConfig {
	return c.config
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// SetBaseURL updates the backend base URL (after discovery).
func (c *Client) SetBaseURL(url string) {
	c.config.BaseURL = url
}

// UserID returns the configured user id.
func (c *Client) UserID() string {
	return c.config.UserID
}

// =============================================================================
// REQUEST HELPERS
// =============================================================================

// doJSON performs a request with an optional JSON body and decodes the JSON
// response into out (if out is non-nil). All failures collapse into typed
// ClientErrors; callers render them as user-facing strings.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return ErrTimeout
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, body)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return ErrTimeout
		}
		return ErrNotRunning
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}

	if resp.StatusCode != http.StatusOK {
		// Try to read the backend's error envelope
		var apiErr APIError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return &ClientError{Type: ErrTypeInvalidResponse, Message: apiErr.Error}
		}
		return &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "request failed: " + resp.Status,
		}
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}

	return nil
}

// =============================================================================
// STATUS
// =============================================================================

// CheckRunning verifies that the backend is reachable and running.
func (c *Client) CheckRunning(ctx context.Context) error {
	var status StatusResponse
	return c.doJSON(ctx, http.MethodGet, "/status", nil, &status)
}

// Status retrieves backend status details.
func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	var status StatusResponse
	if err := c.doJSON(ctx, http.MethodGet, "/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// =============================================================================
// ANALYZE
// =============================================================================

// Analyze sends captured context and a question to the backend for answering.
func (c *Client) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error) {
	if req.UserID == "" {
		req.UserID = c.config.UserID
	}
	var resp AnalyzeResponse
	if err := c.doJSON(ctx, http.MethodPost, "/analyze_image", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// =============================================================================
// UI STATUS
// =============================================================================

// NotifyUIStatus informs the backend of UI foreground/background state.
// Best effort; errors are returned but callers typically ignore them.
func (c *Client) NotifyUIStatus(ctx context.Context, visible bool, state string) error {
	return c.doJSON(ctx, http.MethodPost, "/ui/status", UIStatusRequest{
		Visible: visible,
		State:   state,
		UserID:  c.config.UserID,
	}, nil)
}
