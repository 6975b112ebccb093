// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"
)

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is an ordered message list identified by a server-issued id.
type Conversation struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Messages  []Message `json:"messages"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// NewConversation creates an empty conversation with the given id.
func NewConversation(id string) *Conversation {
	return &Conversation{
		ID:        id,
		UpdatedAt: time.Now(),
	}
}

// Append adds a message to the end of the conversation.
func (c *Conversation) Append(msg Message) {
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = time.Now()
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.Messages)
}

// IsEmpty reports whether the conversation has no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// Last returns a pointer to the most recent message, or nil if empty.
func (c *Conversation) Last() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return &c.Messages[len(c.Messages)-1]
}

// RemoveAt removes the message at the given index. Indices shift down
// after removal, so callers holding older indices must re-fetch.
func (c *Conversation) RemoveAt(index int) bool {
	if index < 0 || index >= len(c.Messages) {
		return false
	}
	c.Messages = append(c.Messages[:index], c.Messages[index+1:]...)
	c.UpdatedAt = time.Now()
	return true
}

// DisplayName returns the conversation name, falling back to a preview
// of the first user message, then to a generic label.
func (c *Conversation) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	for i := range c.Messages {
		if c.Messages[i].Role == RoleUser {
			return c.Messages[i].Preview(40)
		}
	}
	return "New conversation"
}
