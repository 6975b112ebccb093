// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the NyayaGPT client.
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
	ErrTypeUnavailable
	ErrTypeTimeout
	ErrTypeCancelled
	ErrTypeNotFound
	ErrTypeConnection
	ErrTypeInvalidResponse
)

// Sentinel errors for easy checking.
var (
	ErrUnavailable          = &ClientError{Type: ErrTypeUnavailable, Message: "NyayaGPT service is unreachable"}
	ErrTimeout              = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrCancelled            = &ClientError{Type: ErrTypeCancelled, Message: "request cancelled"}
	ErrConversationNotFound = &ClientError{Type: ErrTypeNotFound, Message: "conversation not found"}
)

// IsUnavailable checks if an error indicates the service is unreachable.
func IsUnavailable(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeUnavailable
	}
	return errors.Is(err, ErrUnavailable)
}

// IsNotFound checks if an error is a conversation not found error.
func IsNotFound(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeNotFound
	}
	return errors.Is(err, ErrConversationNotFound)
}

// IsCancelled checks if an error came from context cancellation.
func IsCancelled(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeCancelled
	}
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled)
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the NyayaGPT client.
type ClientConfig struct {
	// BaseURL is the service base URL (default: http://localhost:8000)
	BaseURL string

	// Timeout for non-streaming requests (default: 60s)
	Timeout time.Duration

	// UserAgent sent on every request.
	UserAgent string
}

// DefaultClientConfig returns the default client configuration.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:   "http://localhost:8000",
		Timeout:   60 * time.Second,
		UserAgent: "nyaya-tui",
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the NyayaGPT HTTP API.
//
// The Client is thread-safe for concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
}

// NewClient creates a client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultClientConfig())
}

// NewClientWithConfig creates a client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultClientConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:8000"
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}
	if config.UserAgent == "" {
		config.UserAgent = "nyaya-tui"
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// BaseURL returns the configured service base URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// =============================================================================
// HEALTH
// =============================================================================

// Health checks the service and returns its advertised model list.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, wrapTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("health check failed", resp)
	}

	var result HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode health response", Cause: err}
	}
	return &result, nil
}

// AvailableModels returns the server's model list, falling back to the
// built-in defaults when the service is unreachable or returns an
// empty list. The second return value reports whether the fallback was
// used.
func (c *Client) AvailableModels(ctx context.Context) ([]string, bool) {
	health, err := c.Health(ctx)
	if err != nil || len(health.AvailableModels) == 0 {
		models := make([]string, len(FallbackModels))
		copy(models, FallbackModels)
		return models, true
	}
	return health.AvailableModels, false
}

// =============================================================================
// QUERY
// =============================================================================

// Query sends a non-streaming query and returns the complete response.
func (c *Client) Query(ctx context.Context, q QueryRequest) (*QueryResponse, error) {
	q.ApplyDefaults()
	q.Stream = false
	q.IncludeHistory = true

	body, err := json.Marshal(q)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal query", Cause: err}
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/query", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, wrapTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("query failed", resp)
	}

	var result QueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode query response", Cause: err}
	}
	return &result, nil
}

// StreamCallback is called for each event received during streaming.
// Events are delivered synchronously in arrival order.
type StreamCallback func(ev StreamEvent)

// QueryStream sends a streaming query and calls the callback for each
// decoded event. It returns when a terminal event arrives, the
// connection closes, or the context is cancelled. A stream that closes
// without a terminal event returns nil so partial content stays
// usable; the caller sees the missing done event via its reconciler.
func (c *Client) QueryStream(ctx context.Context, q QueryRequest, callback StreamCallback) error {
	q.ApplyDefaults()
	q.Stream = true
	q.IncludeHistory = true

	body, err := json.Marshal(q)
	if err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal query", Cause: err}
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/query", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	// No client timeout on streaming; lifetime is bounded by ctx.
	streamClient := &http.Client{}

	resp, err := streamClient.Do(req)
	if err != nil {
		return wrapTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError("stream request failed", resp)
	}

	decoder := NewFrameDecoder()
	buf := make([]byte, 4096)

	for {
		select {
		case <-ctx.Done():
			return ErrCancelled
		default:
		}

		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			for _, ev := range decoder.Feed(buf[:n]) {
				terminal := ev.IsTerminal()
				callback(ev)
				if terminal {
					return nil
				}
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				for _, ev := range decoder.Close() {
					callback(ev)
				}
				return nil
			}
			if errors.Is(readErr, context.Canceled) || ctx.Err() != nil {
				return ErrCancelled
			}
			return &ClientError{Type: ErrTypeConnection, Message: "stream read failed", Cause: readErr}
		}
	}
}

// =============================================================================
// CONVERSATION OPERATIONS
// =============================================================================

// GetConversation fetches the full message list for a conversation.
func (c *Client) GetConversation(ctx context.Context, id string) (*ConversationResponse, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/conversation/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, wrapTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrConversationNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError("failed to fetch conversation", resp)
	}

	var result ConversationResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode conversation", Cause: err}
	}
	if result.ConversationID == "" {
		result.ConversationID = id
	}
	return &result, nil
}

// DeleteMessage removes the message at the given index from a
// conversation. Indices shift after deletion, so callers must re-fetch
// the conversation afterwards rather than reuse stale indices.
func (c *Client) DeleteMessage(ctx context.Context, id string, index int) error {
	path := "/conversation/" + url.PathEscape(id) + "/message/" + strconv.Itoa(index)
	req, err := c.newRequest(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return wrapTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrConversationNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return statusError("failed to delete message", resp)
	}
	return nil
}

// DeleteConversation removes an entire conversation from the server.
func (c *Client) DeleteConversation(ctx context.Context, id string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/conversation/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return wrapTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrConversationNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return statusError("failed to delete conversation", resp)
	}
	return nil
}

// ClearCache asks the server to drop its response cache.
func (c *Client) ClearCache(ctx context.Context) (*StatusResponse, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/clear-cache", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, wrapTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("failed to clear cache", resp)
	}

	var result StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return &result, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, body)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	return req, nil
}

// wrapTransportError maps low-level transport failures to client errors.
func wrapTransportError(err error) error {
	if errors.Is(err, context.Canceled) {
		return ErrCancelled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return &ClientError{Type: ErrTypeUnavailable, Message: "NyayaGPT service is unreachable", Cause: err}
}

// statusError builds an error from a non-200 response, including any
// error detail the server sent.
func statusError(msg string, resp *http.Response) error {
	var detail struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&detail); err == nil {
		if detail.Detail != "" {
			return &ClientError{Type: ErrTypeInvalidResponse, Message: detail.Detail}
		}
		if detail.Error != "" {
			return &ClientError{Type: ErrTypeInvalidResponse, Message: detail.Error}
		}
	}
	return &ClientError{Type: ErrTypeInvalidResponse, Message: msg + ": " + resp.Status}
}
