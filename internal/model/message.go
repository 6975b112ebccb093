// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations, messages,
// and citations as mirrored from the NyayaGPT service.
package model

import (
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "NyayaGPT"
	default:
		return string(r)
	}
}

// =============================================================================
// CITATION TYPE
// =============================================================================

// Citation is a source reference attached to an assistant message.
// It is purely display data; its only identity is its position in the
// message's citation list.
type Citation struct {
	Title   string `json:"title"`
	URL     string `json:"url,omitempty"`
	Snippet string `json:"snippet,omitempty"`
	Page    int    `json:"page,omitempty"`
}

// DisplayTitle returns the citation title, or a positional fallback when
// the server sent none.
func (c Citation) DisplayTitle(index int) string {
	if c.Title != "" {
		return c.Title
	}
	return "Source " + strconv.Itoa(index+1)
}

// =============================================================================
// METADATA TYPE
// =============================================================================

// Metadata carries per-response information from the server. The
// conversation id and session name, when present, are authoritative and
// must overwrite any client-generated placeholders.
type Metadata struct {
	Model          string  `json:"model,omitempty"`
	Strategy       string  `json:"strategy,omitempty"`
	ProcessingTime float64 `json:"processing_time,omitempty"`
	ConversationID string  `json:"conversation_id,omitempty"`
	SessionName    string  `json:"session_name,omitempty"`
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation. Messages are
// addressed by position; indices are not stable across deletions, so a
// delete must be followed by a full conversation reload.
type Message struct {
	Role      Role       `json:"role"`
	Content   string     `json:"content"`
	Citations []Citation `json:"citations,omitempty"`
	Meta      *Metadata  `json:"metadata,omitempty"`
	Timestamp time.Time  `json:"timestamp,omitempty"`
}

// NewUserMessage creates a user message from raw input text.
func NewUserMessage(content string) Message {
	return Message{
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewAssistantMessage creates an assistant message, usually empty at
// first and filled in as the response streams.
func NewAssistantMessage(content string) Message {
	return Message{
		Role:      RoleAssistant,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// HasCitations reports whether the message carries any source citations.
func (m *Message) HasCitations() bool {
	return len(m.Citations) > 0
}

// Preview returns a single-line preview of the message content.
func (m *Message) Preview(maxRunes int) string {
	line := strings.ReplaceAll(m.Content, "\n", " ")
	runes := []rune(line)
	if len(runes) <= maxRunes {
		return line
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}
