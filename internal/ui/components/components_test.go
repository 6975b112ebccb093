// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/nyaya-tui/internal/format"
	"github.com/jeranaias/nyaya-tui/internal/model"
	"github.com/jeranaias/nyaya-tui/internal/store"
	"github.com/jeranaias/nyaya-tui/internal/ui/styles"
)

func TestToastManagerLifecycle(t *testing.T) {
	m := NewToastManager()

	id := m.Success("saved")
	m.Error("boom")
	if !m.HasToasts() {
		t.Fatal("no toasts after add")
	}
	if len(m.Toasts()) != 2 {
		t.Fatalf("toasts = %d", len(m.Toasts()))
	}
	// Newest first.
	if m.Toasts()[0].Kind != ToastKindError {
		t.Error("newest toast not first")
	}

	m.Remove(id)
	if len(m.Toasts()) != 1 {
		t.Errorf("toasts after remove = %d", len(m.Toasts()))
	}
}

func TestToastManagerCapsStack(t *testing.T) {
	m := NewToastManager()
	for i := 0; i < 10; i++ {
		m.Info("toast")
	}
	if got := len(m.Toasts()); got != 5 {
		t.Errorf("stack len = %d, want 5", got)
	}
}

func TestToastTickExpires(t *testing.T) {
	m := NewToastManager()
	m.toasts = append(m.toasts, Toast{
		ID:        99,
		Message:   "old",
		CreatedAt: time.Now().Add(-time.Minute),
		Duration:  time.Second,
	})

	if remaining := m.Tick(); len(remaining) != 0 {
		t.Errorf("expired toast survived tick: %v", remaining)
	}
}

func TestToastKindIcons(t *testing.T) {
	tests := []struct {
		kind ToastKind
		want string
	}{
		{ToastKindSuccess, "✓"},
		{ToastKindError, "✕"},
		{ToastKindWarning, "⚠"},
		{ToastKindInfo, "ℹ"},
	}
	for _, tt := range tests {
		if got := tt.kind.Icon(); got != tt.want {
			t.Errorf("Icon(%d) = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestMessageRendererUserAndAssistant(t *testing.T) {
	r := NewMessageRenderer(styles.NewTheme(), format.NewPlain())
	r.SetWidth(80)

	userMsg := model.NewUserMessage("What is Section 420?")
	out := r.Render(&userMsg, true, true)
	if !strings.Contains(out, "What is Section 420?") {
		t.Errorf("user content missing: %q", out)
	}
	if !strings.Contains(out, "You") {
		t.Errorf("role label missing: %q", out)
	}

	asstMsg := model.NewAssistantMessage("**Cheating** is defined in Section 415.")
	asstMsg.Citations = []model.Citation{{Title: "IPC Section 415", Snippet: "Whoever, by deceiving any person..."}}
	asstMsg.Meta = &model.Metadata{Model: "gpt-4o", Strategy: "simple", ProcessingTime: 1.5}

	out = r.Render(&asstMsg, true, true)
	if !strings.Contains(out, "Cheating") {
		t.Errorf("assistant content missing: %q", out)
	}
	if !strings.Contains(out, "IPC Section 415") {
		t.Errorf("citation missing: %q", out)
	}
	if !strings.Contains(out, "gpt-4o") {
		t.Errorf("metadata missing: %q", out)
	}

	// Sources hidden when disabled.
	out = r.Render(&asstMsg, false, false)
	if strings.Contains(out, "IPC Section 415") {
		t.Errorf("citation shown when disabled: %q", out)
	}
}

func TestMessageRendererStreaming(t *testing.T) {
	r := NewMessageRenderer(styles.NewTheme(), format.NewPlain())

	out := r.RenderStreaming("partial resp")
	if !strings.Contains(out, "partial resp") {
		t.Errorf("streaming content missing: %q", out)
	}
	if !strings.Contains(out, "▌") {
		t.Errorf("cursor marker missing: %q", out)
	}
}

func TestSidebarNavigation(t *testing.T) {
	s := NewSidebar(styles.NewTheme())
	s.SetEntries([]store.HistoryEntry{
		{ID: "a", Name: "Bail basics", Timestamp: time.Now()},
		{ID: "b", Name: "Cheque bounce", Timestamp: time.Now()},
		{ID: "c", Name: "Property dispute", Timestamp: time.Now()},
	})

	if sel, ok := s.Selected(); !ok || sel.ID != "a" {
		t.Fatalf("initial selection = %v", sel)
	}

	s.MoveDown()
	s.MoveDown()
	s.MoveDown() // clamps at end
	if sel, _ := s.Selected(); sel.ID != "c" {
		t.Errorf("selection after down = %q", sel.ID)
	}

	s.MoveUp()
	if sel, _ := s.Selected(); sel.ID != "b" {
		t.Errorf("selection after up = %q", sel.ID)
	}

	// Shrinking the list clamps the selection.
	s.SetEntries([]store.HistoryEntry{{ID: "a", Name: "Bail basics"}})
	if sel, ok := s.Selected(); !ok || sel.ID != "a" {
		t.Errorf("selection after shrink = %v", sel)
	}
}

func TestSidebarView(t *testing.T) {
	s := NewSidebar(styles.NewTheme())
	s.SetEntries([]store.HistoryEntry{{ID: "a", Name: "Bail basics", Timestamp: time.Now()}})
	s.SetActive("a")

	out := s.View()
	if !strings.Contains(out, "Bail basics") {
		t.Errorf("entry missing: %q", out)
	}
	if !strings.Contains(out, "●") {
		t.Errorf("active marker missing: %q", out)
	}

	s.Toggle()
	if s.View() != "" || s.Width() != 0 {
		t.Error("hidden sidebar still renders")
	}
}

func TestRenderWelcome(t *testing.T) {
	out := RenderWelcome(styles.NewTheme(), 0)
	if !strings.Contains(out, "Welcome to NyayaGPT") {
		t.Errorf("welcome text missing: %q", out)
	}
}

func TestRenderStatusBar(t *testing.T) {
	out := RenderStatusBar(styles.NewTheme(), StatusInfo{
		Model:    "gpt-4o",
		Strategy: "simple",
		Online:   true,
	}, 100)
	if !strings.Contains(out, "online") || !strings.Contains(out, "gpt-4o") {
		t.Errorf("status bar missing fields: %q", out)
	}
}
