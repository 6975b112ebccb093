// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"
	"time"

	"github.com/jeranaias/nyaya-tui/internal/store"
	"github.com/jeranaias/nyaya-tui/internal/ui/styles"
	"github.com/jeranaias/nyaya-tui/internal/util"
)

// =============================================================================
// HISTORY SIDEBAR
// =============================================================================

// Sidebar renders the conversation history list.
type Sidebar struct {
	theme    *styles.Theme
	entries  []store.HistoryEntry
	selected int
	activeID string
	width    int
	height   int
	visible  bool
}

// NewSidebar creates an empty sidebar.
func NewSidebar(theme *styles.Theme) *Sidebar {
	return &Sidebar{
		theme:   theme,
		width:   28,
		visible: true,
	}
}

// SetEntries replaces the history list, clamping the selection.
func (s *Sidebar) SetEntries(entries []store.HistoryEntry) {
	s.entries = entries
	if s.selected >= len(entries) {
		s.selected = len(entries) - 1
	}
	if s.selected < 0 {
		s.selected = 0
	}
}

// SetActive marks the currently open conversation.
func (s *Sidebar) SetActive(id string) {
	s.activeID = id
}

// SetSize updates the sidebar dimensions.
func (s *Sidebar) SetSize(width, height int) {
	if width > 0 {
		s.width = width
	}
	s.height = height
}

// Toggle flips sidebar visibility.
func (s *Sidebar) Toggle() {
	s.visible = !s.visible
}

// Visible reports whether the sidebar is shown.
func (s *Sidebar) Visible() bool {
	return s.visible
}

// Width returns the rendered width, zero when hidden.
func (s *Sidebar) Width() int {
	if !s.visible {
		return 0
	}
	return s.width
}

// MoveUp moves the selection up.
func (s *Sidebar) MoveUp() {
	if s.selected > 0 {
		s.selected--
	}
}

// MoveDown moves the selection down.
func (s *Sidebar) MoveDown() {
	if s.selected < len(s.entries)-1 {
		s.selected++
	}
}

// Selected returns the highlighted entry, if any.
func (s *Sidebar) Selected() (store.HistoryEntry, bool) {
	if s.selected < 0 || s.selected >= len(s.entries) {
		return store.HistoryEntry{}, false
	}
	return s.entries[s.selected], true
}

// View renders the sidebar.
func (s *Sidebar) View() string {
	if !s.visible {
		return ""
	}

	inner := s.width - 4
	if inner < 10 {
		inner = 10
	}

	var sb strings.Builder
	sb.WriteString(s.theme.SidebarTitle.Render("History"))
	sb.WriteString("\n\n")

	if len(s.entries) == 0 {
		sb.WriteString(s.theme.SidebarPlaceholder.Render("No conversations yet"))
	}

	for i, entry := range s.entries {
		name := entry.Name
		if name == "" {
			name = "Untitled"
		}
		marker := "  "
		if entry.ID == s.activeID {
			marker = "● "
		}
		line := util.TruncateWidth(marker+name, inner)

		style := s.theme.SidebarItem
		if i == s.selected {
			style = s.theme.SidebarSelected
		}
		sb.WriteString(style.Render(util.PadRight(line, inner)))
		sb.WriteString("\n")
		sb.WriteString(s.theme.SidebarTimestamp.Render("  " + relativeTime(entry.Timestamp)))
		sb.WriteString("\n")
	}

	out := s.theme.Sidebar.Width(s.width)
	if s.height > 0 {
		out = out.Height(s.height)
	}
	return out.Render(strings.TrimRight(sb.String(), "\n"))
}

// relativeTime formats a timestamp relative to now.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return strconv.Itoa(int(d.Minutes())) + "m ago"
	case d < 24*time.Hour:
		return strconv.Itoa(int(d.Hours())) + "h ago"
	case d < 48*time.Hour:
		return "yesterday"
	default:
		return t.Format("Jan 2")
	}
}
