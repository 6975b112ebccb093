// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// commands.go - tea.Cmd constructors for API calls.
//
// This file holds the tea.Cmd constructors for server operations that
// complete with a single message. Streaming is the exception: it emits
// many messages and therefore runs in a goroutine owned by the root
// program (see StreamRequestMsg).
package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/nyaya-tui/internal/api"
	"github.com/jeranaias/nyaya-tui/internal/model"
)

// commandTimeout bounds the non-streaming server calls.
const commandTimeout = 15 * time.Second

// checkHealthCmd probes the server and reports the model list.
func (m Model) checkHealthCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		models, usedFallback := client.AvailableModels(ctx)
		return HealthMsg{Online: !usedFallback, Models: models}
	}
}

// loadConversationCmd fetches a conversation from the server.
func (m Model) loadConversationCmd(id string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		resp, err := client.GetConversation(ctx, id)
		if err != nil {
			return ConversationLoadedMsg{ID: id, NotFound: api.IsNotFound(err), Err: err}
		}

		messages := make([]model.Message, 0, len(resp.Messages))
		for _, cm := range resp.Messages {
			role := model.RoleAssistant
			if cm.Role == "user" {
				role = model.RoleUser
			}
			messages = append(messages, model.Message{
				Role:      role,
				Content:   cm.Content,
				Timestamp: time.Now(),
			})
		}

		return ConversationLoadedMsg{
			ID:       resp.ConversationID,
			Name:     resp.SessionName,
			Messages: messages,
		}
	}
}

// deleteMessageCmd removes a message by index on the server.
func (m Model) deleteMessageCmd(id string, index int) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		err := client.DeleteMessage(ctx, id, index)
		return MessageDeletedMsg{ConversationID: id, Index: index, Err: err}
	}
}

// deleteConversationCmd deletes a whole conversation on the server.
func (m Model) deleteConversationCmd(id string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		err := client.DeleteConversation(ctx, id)
		return ConversationDeletedMsg{ID: id, Err: err}
	}
}

// clearCacheCmd clears the server-side response cache.
func (m Model) clearCacheCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		_, err := client.ClearCache(ctx)
		return CacheClearedMsg{Err: err}
	}
}

// streamRequestCmd emits the request the root program turns into a
// streaming goroutine.
func streamRequestCmd(gen int, query, conversationID string) tea.Cmd {
	return func() tea.Msg {
		return StreamRequestMsg{Gen: gen, Query: query, ConversationID: conversationID}
	}
}
