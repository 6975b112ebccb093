// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// messages.go - Typed Bubble Tea messages for the chat view.
//
// This file defines the Bubble Tea message types exchanged between the
// chat model, the command closures, and the streaming goroutine owned
// by the root program.
package chat

import (
	"time"

	"github.com/jeranaias/nyaya-tui/internal/config"
	"github.com/jeranaias/nyaya-tui/internal/model"
	"github.com/jeranaias/nyaya-tui/internal/store"
)

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// Every streaming message carries the generation of the query that
// produced it. The model drops messages whose generation does not match
// its current one, so a cancelled stream can never touch a newer view.

// StreamRequestMsg asks the root program to start a streaming query.
// The chat model emits it; main.go owns the goroutine.
type StreamRequestMsg struct {
	Gen            int
	Query          string
	ConversationID string
}

// StreamStartMsg signals that the streaming goroutine is running.
type StreamStartMsg struct {
	Gen       int
	StartTime time.Time
}

// StreamChunkMsg delivers a content fragment from the stream.
type StreamChunkMsg struct {
	Gen  int
	Text string
}

// StreamCompleteMsg delivers the finished assistant message, complete
// with citations and metadata folded in by the reconciler.
type StreamCompleteMsg struct {
	Gen     int
	Message model.Message
}

// StreamErrorMsg signals that the stream terminated abnormally.
// Fallback carries the display text of a server error event and
// replaces anything already streamed. Partial holds the content that
// arrived before a transport failure, which stays visible.
type StreamErrorMsg struct {
	Gen      int
	Partial  string
	Fallback string
	Err      error
}

// StreamTickMsg drives the render throttle during streaming.
type StreamTickMsg struct {
	Time time.Time
}

// =============================================================================
// SERVER STATE MESSAGES
// =============================================================================

// HealthMsg reports the result of a server health check.
type HealthMsg struct {
	Online bool
	Models []string
}

// ConversationLoadedMsg delivers a conversation fetched from the server.
type ConversationLoadedMsg struct {
	ID       string
	Name     string
	Messages []model.Message
	NotFound bool
	Err      error
}

// MessageDeletedMsg reports the outcome of a message delete. On success
// the conversation is reloaded because indices shift.
type MessageDeletedMsg struct {
	ConversationID string
	Index          int
	Err            error
}

// ConversationDeletedMsg reports the outcome of deleting a whole
// conversation on the server.
type ConversationDeletedMsg struct {
	ID  string
	Err error
}

// CacheClearedMsg reports the outcome of the server cache clear.
type CacheClearedMsg struct {
	Err error
}

// =============================================================================
// LOCAL STATE MESSAGES
// =============================================================================

// HistoryUpdatedMsg carries a fresh snapshot of the history list after
// an upsert, rename, or remove.
type HistoryUpdatedMsg struct {
	Entries []store.HistoryEntry
}

// NewConversationMsg resets the view to an empty conversation.
type NewConversationMsg struct{}

// ConfigReloadedMsg delivers a freshly loaded config after the file
// changed on disk. Applies to the next query; in-flight streams keep
// the settings they started with.
type ConfigReloadedMsg struct {
	Config *config.Config
}
