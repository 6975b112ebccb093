// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/nyaya-tui/internal/ui/styles"
)

// =============================================================================
// HEADER
// =============================================================================

// RenderHeader renders the application header bar with the active
// conversation name.
func RenderHeader(theme *styles.Theme, conversationName string, width int) string {
	title := theme.HeaderTitle.Render("NyayaGPT")
	subtitle := theme.HeaderSubtitle.Render("Legal Research Assistant")

	line := title + "  " + subtitle
	if conversationName != "" {
		line += theme.HeaderSubtitle.Render(" · " + conversationName)
	}

	style := theme.Header
	if width > 0 {
		style = style.Width(width - 2)
	}
	return style.Render(line)
}

// =============================================================================
// STATUS BAR
// =============================================================================

// StatusInfo carries the state shown in the bottom bar.
type StatusInfo struct {
	Model     string
	Strategy  string
	Online    bool
	Streaming bool
}

// RenderStatusBar renders the bottom status bar with connection state,
// model, and key hints.
func RenderStatusBar(theme *styles.Theme, info StatusInfo, width int) string {
	var left []string

	if info.Online {
		left = append(left, theme.StatusOnline.Render("● online"))
	} else {
		left = append(left, theme.StatusOff.Render("● offline"))
	}
	if info.Model != "" {
		left = append(left, info.Model)
	}
	if info.Strategy != "" {
		left = append(left, info.Strategy)
	}
	if info.Streaming {
		left = append(left, theme.ThinkingText.Render("streaming..."))
	}

	hints := []string{
		theme.ShortcutKey.Render("^N") + theme.ShortcutDesc.Render(" new"),
		theme.ShortcutKey.Render("^H") + theme.ShortcutDesc.Render(" history"),
		theme.ShortcutKey.Render("Esc") + theme.ShortcutDesc.Render(" cancel"),
		theme.ShortcutKey.Render("^C") + theme.ShortcutDesc.Render(" quit"),
	}

	leftStr := strings.Join(left, "  ")
	rightStr := strings.Join(hints, "  ")

	gap := width - lipgloss.Width(leftStr) - lipgloss.Width(rightStr) - 2
	if gap < 1 {
		gap = 1
	}

	return theme.StatusBar.Width(width).Render(leftStr + strings.Repeat(" ", gap) + rightStr)
}

// =============================================================================
// WELCOME
// =============================================================================

// RenderWelcome renders the empty-conversation welcome box.
func RenderWelcome(theme *styles.Theme, width int) string {
	content := theme.HeaderTitle.Render("Welcome to NyayaGPT") + "\n\n" +
		theme.WelcomeText.Render("Ask a question about Indian law to get started.\n"+
			"Responses may cite source documents; verify before relying on them.")

	box := theme.WelcomeBox.Render(content)
	if width > 0 {
		return lipgloss.Place(width, lipgloss.Height(box)+2, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}
