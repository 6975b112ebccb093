// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for communicating with the
// NyayaGPT backend service.
package api

import (
	"github.com/jeranaias/nyaya-tui/internal/model"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// QueryRequest is the body of a POST /query call.
type QueryRequest struct {
	Query          string  `json:"query"`
	ModelName      string  `json:"model_name"`
	Strategy       string  `json:"strategy"`
	Temperature    float64 `json:"temperature"`
	MaxTokens      int     `json:"max_tokens"`
	Stream         bool    `json:"stream"`
	ConversationID string  `json:"conversation_id,omitempty"`
	IncludeHistory bool    `json:"include_history"`
}

// Request defaults applied by ApplyDefaults when fields are zero.
const (
	DefaultStrategy    = "simple"
	DefaultTemperature = 0.2
	DefaultMaxTokens   = 2048
)

// FallbackModels is used when the health endpoint is unreachable or
// returns no models.
var FallbackModels = []string{"gpt-4o", "gpt-4o-mini", "gpt-3.5-turbo"}

// ApplyDefaults fills zero-valued tuning fields with server defaults.
// Temperature zero is treated as unset; the service rejects 0 anyway.
func (r *QueryRequest) ApplyDefaults() {
	if r.Strategy == "" {
		r.Strategy = DefaultStrategy
	}
	if r.Temperature == 0 {
		r.Temperature = DefaultTemperature
	}
	if r.MaxTokens == 0 {
		r.MaxTokens = DefaultMaxTokens
	}
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status          string   `json:"status"`
	AvailableModels []string `json:"available_models"`
}

// QueryResponse is the body of a non-streaming POST /query call.
type QueryResponse struct {
	Response       string           `json:"response"`
	Metadata       *model.Metadata  `json:"metadata,omitempty"`
	ContextSources []model.Citation `json:"context_sources,omitempty"`
}

// ConversationMessage is a single entry in a fetched conversation.
type ConversationMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ConversationResponse is the body of GET /conversation/{id}.
type ConversationResponse struct {
	ConversationID string                `json:"conversation_id"`
	SessionName    string                `json:"session_name,omitempty"`
	Messages       []ConversationMessage `json:"messages"`
}

// StatusResponse is the generic body for delete and cache operations.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// =============================================================================
// STREAM EVENT
// =============================================================================

// StreamEvent is a single frame of the streaming response. Exactly one
// of Chunk, Done, or Error is meaningful per frame:
//
//   - {"chunk": "..."}                        incremental content
//   - {"done": true, "metadata": {...},
//     "context_sources": [...]}               terminal success
//   - {"error": "...", "full": "..."}         terminal failure
type StreamEvent struct {
	Chunk    string           `json:"chunk,omitempty"`
	Done     bool             `json:"done,omitempty"`
	Metadata *model.Metadata  `json:"metadata,omitempty"`
	Sources  []model.Citation `json:"context_sources,omitempty"`
	Error    string           `json:"error,omitempty"`
	Full     string           `json:"full,omitempty"`
}

// IsTerminal reports whether this event ends the stream.
func (e *StreamEvent) IsTerminal() bool {
	return e.Done || e.Error != ""
}

// ErrorText returns the display text for an error event, preferring the
// server's full message when present.
func (e *StreamEvent) ErrorText() string {
	if e.Full != "" {
		return e.Full
	}
	if e.Error != "" {
		return e.Error
	}
	return "An error occurred."
}
