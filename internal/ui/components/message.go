// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/nyaya-tui/internal/format"
	"github.com/jeranaias/nyaya-tui/internal/model"
	"github.com/jeranaias/nyaya-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGE RENDERING
// =============================================================================

// MessageRenderer renders conversation messages as styled bubbles.
type MessageRenderer struct {
	theme     *styles.Theme
	formatter *format.Formatter
	width     int
}

// NewMessageRenderer creates a renderer with the given theme and
// response formatter.
func NewMessageRenderer(theme *styles.Theme, formatter *format.Formatter) *MessageRenderer {
	return &MessageRenderer{
		theme:     theme,
		formatter: formatter,
		width:     80,
	}
}

// SetWidth updates the available render width.
func (r *MessageRenderer) SetWidth(width int) {
	if width > 0 {
		r.width = width
	}
}

// bubbleWidth returns the content width for message bubbles.
func (r *MessageRenderer) bubbleWidth() int {
	w := r.width - 10
	if w < 20 {
		w = 20
	}
	return w
}

// Render renders a full message including citations and metadata.
func (r *MessageRenderer) Render(msg *model.Message, showSources, showMeta bool) string {
	var parts []string

	label := r.theme.RoleLabel.Render(msg.Role.DisplayName())
	if !msg.Timestamp.IsZero() {
		label += " " + r.theme.Timestamp.Render(msg.Timestamp.Format("15:04"))
	}
	parts = append(parts, label)

	switch msg.Role {
	case model.RoleUser:
		bubble := r.theme.UserBubble.Width(r.bubbleWidth())
		parts = append(parts, bubble.Render(msg.Content))
	default:
		content := r.formatter.Render(msg.Content)
		bubble := r.theme.AssistantBubble.Width(r.bubbleWidth())
		parts = append(parts, bubble.Render(content))

		if showSources && msg.HasCitations() {
			parts = append(parts, r.renderSources(msg.Citations))
		}
		if showMeta && msg.Meta != nil {
			if meta := r.renderMeta(msg.Meta); meta != "" {
				parts = append(parts, meta)
			}
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// RenderStreaming renders an in-flight assistant response with a
// cursor marker.
func (r *MessageRenderer) RenderStreaming(content string) string {
	label := r.theme.RoleLabel.Render(model.RoleAssistant.DisplayName())

	body := r.formatter.Render(content) + "▌"
	bubble := r.theme.AssistantBubble.Width(r.bubbleWidth())

	return lipgloss.JoinVertical(lipgloss.Left, label, bubble.Render(body))
}

// renderSources renders the citation panel below a response.
func (r *MessageRenderer) renderSources(citations []model.Citation) string {
	var sb strings.Builder
	sb.WriteString(r.theme.SourceTitle.Render("Sources"))
	sb.WriteString("\n")

	for i, c := range citations {
		sb.WriteString(fmt.Sprintf("%d. %s", i+1, c.DisplayTitle(i)))
		if c.Page > 0 {
			sb.WriteString(fmt.Sprintf(" (p. %d)", c.Page))
		}
		sb.WriteString("\n")
		if c.Snippet != "" {
			snippet := c.Snippet
			if len([]rune(snippet)) > 120 {
				snippet = string([]rune(snippet)[:117]) + "..."
			}
			sb.WriteString("   " + r.theme.SourceSnippet.Render(snippet) + "\n")
		}
	}

	return r.theme.SourcePanel.Width(r.bubbleWidth()).Render(strings.TrimRight(sb.String(), "\n"))
}

// renderMeta renders the model/strategy/timing line.
func (r *MessageRenderer) renderMeta(meta *model.Metadata) string {
	var parts []string
	if meta.Model != "" {
		parts = append(parts, meta.Model)
	}
	if meta.Strategy != "" {
		parts = append(parts, meta.Strategy)
	}
	if meta.ProcessingTime > 0 {
		parts = append(parts, fmt.Sprintf("%.2fs", meta.ProcessingTime))
	}
	if len(parts) == 0 {
		return ""
	}
	return r.theme.MetaLine.Render(strings.Join(parts, " · "))
}

// RenderError renders a failed response box with any partial content
// preserved above it.
func (r *MessageRenderer) RenderError(errText string) string {
	title := r.theme.ErrorTitle.Render("Response failed")
	body := r.theme.ErrorMessage.Render(errText)
	return r.theme.ErrorBox.Width(r.bubbleWidth()).Render(title + "\n" + body)
}
