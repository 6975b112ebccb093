// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// view.go - Layout and rendering for the chat view.
package chat

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/nyaya-tui/internal/ui/components"
)

// chromeHeight is the vertical space reserved around the viewport:
// header, input area, and status bar.
const chromeHeight = 7

// View renders the chat screen.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	contentWidth := m.width - m.sidebar.Width()

	var sections []string
	sections = append(sections, components.RenderHeader(m.theme, m.headerName(), contentWidth))
	sections = append(sections, m.viewport.View())
	sections = append(sections, m.renderInputArea(contentWidth))
	sections = append(sections, components.RenderStatusBar(m.theme, components.StatusInfo{
		Model:     m.cfg.Chat.Model,
		Strategy:  m.cfg.Chat.Strategy,
		Online:    m.online,
		Streaming: m.state == StateStreaming,
	}, contentWidth))

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	if m.sidebar.Visible() {
		content = lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(), content)
	}

	if m.showHelp {
		content = lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.renderHelp())
	}

	if m.toasts.HasToasts() {
		stack := components.RenderToastStack(m.theme, m.toasts.Toasts(), m.width, m.height)
		if stack != "" {
			content = content + "\n" + stack
		}
	}

	return content
}

// headerName returns what to show next to the title: the session name,
// or the derived conversation name once there is content.
func (m Model) headerName() string {
	if m.sessionName != "" {
		return m.sessionName
	}
	if !m.conversation.IsEmpty() {
		return m.conversation.DisplayName()
	}
	return ""
}

// =============================================================================
// CONVERSATION BODY
// =============================================================================

// renderConversation builds the full viewport content: every finished
// message, then the streaming tail if one is in flight.
func (m *Model) renderConversation() string {
	if m.conversation.IsEmpty() && m.state != StateStreaming {
		return components.RenderWelcome(m.theme, m.viewport.Width)
	}

	var b strings.Builder
	for i := range m.conversation.Messages {
		msg := &m.conversation.Messages[i]
		// Message numbers feed the /delete command.
		b.WriteString(m.theme.Timestamp.Render("#" + strconv.Itoa(i+1)))
		b.WriteString("\n")
		b.WriteString(m.renderer.Render(msg, m.showSources, m.showMeta))
		b.WriteString("\n\n")
	}

	if m.state == StateStreaming {
		if m.streamContent.Len() == 0 {
			b.WriteString(m.spinner.View())
			b.WriteString(m.theme.ThinkingText.Render(" thinking..."))
		} else {
			b.WriteString(m.renderer.RenderStreaming(m.streamContent.String()))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// =============================================================================
// INPUT AREA
// =============================================================================

func (m Model) renderInputArea(width int) string {
	if m.state == StateConfirm {
		return m.theme.ConfirmBox.Render(m.theme.ConfirmText.Render(m.confirmPrompt))
	}

	input := m.theme.InputContainer.Width(width - 2).Render(m.input.View())

	count := strconv.Itoa(len([]rune(m.input.Value())))
	counter := m.theme.Timestamp.Render(count + "/4096")

	gap := width - lipgloss.Width(counter) - 2
	if gap < 0 {
		gap = 0
	}
	return input + "\n" + strings.Repeat(" ", gap) + counter
}

// =============================================================================
// HELP OVERLAY
// =============================================================================

func (m Model) renderHelp() string {
	rows := []string{
		m.theme.HeaderTitle.Render("Commands"),
		"",
		"/new             start a new conversation",
		"/name <name>     name the current session",
		"/delete <n>      delete message n",
		"/clear           delete this conversation",
		"/cache           clear the server cache",
		"/model [name]    show or set the model",
		"/strategy [s]    show or set the retrieval strategy",
		"/theme dark|light  switch theme (saved)",
		"/sources         toggle source panels",
		"/meta            toggle response metadata",
		"",
		m.theme.HeaderTitle.Render("Keys"),
		"",
		"Enter send   Esc cancel   ^N new   ^H history   ^C quit",
	}
	return m.theme.ConfirmBox.Render(strings.Join(rows, "\n"))
}
