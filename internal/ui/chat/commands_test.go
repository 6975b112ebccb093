// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/nyaya-tui/internal/api"
	"github.com/jeranaias/nyaya-tui/internal/config"
	"github.com/jeranaias/nyaya-tui/internal/store"
	"github.com/jeranaias/nyaya-tui/internal/ui/styles"
)

func newTestModelWithClient(t *testing.T, client *api.Client) Model {
	t.Helper()
	dir := t.TempDir()

	history, err := store.NewHistoryStoreWithPath(filepath.Join(dir, "history.json"), 20)
	if err != nil {
		t.Fatalf("history store: %v", err)
	}
	session := store.NewSessionStoreWithPath(filepath.Join(dir, "session.json"), store.DefaultSessionTTL)

	m := New(styles.NewTheme(), client, config.Default(), history, session)
	newModel, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return newModel.(Model)
}

func TestCheckHealthReportsOnline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"status":"ok","available_models":["gpt-4o","gpt-4o-mini"]}`))
	}))
	defer srv.Close()

	client := api.NewClientWithConfig(&api.ClientConfig{BaseURL: srv.URL})
	m := newTestModelWithClient(t, client)

	msg := m.checkHealthCmd()()
	health, ok := msg.(HealthMsg)
	if !ok {
		t.Fatalf("message type = %T", msg)
	}
	if !health.Online {
		t.Error("reachable server reported offline")
	}
	if len(health.Models) != 2 || health.Models[0] != "gpt-4o" {
		t.Errorf("models = %v", health.Models)
	}

	newModel, _ := m.Update(health)
	m = newModel.(Model)
	if !m.online {
		t.Error("online flag not set from health message")
	}
}

func TestCheckHealthReportsOffline(t *testing.T) {
	srv := httptest.NewServer(nil)
	srv.Close()

	client := api.NewClientWithConfig(&api.ClientConfig{BaseURL: srv.URL})
	m := newTestModelWithClient(t, client)

	msg := m.checkHealthCmd()()
	health, ok := msg.(HealthMsg)
	if !ok {
		t.Fatalf("message type = %T", msg)
	}
	if health.Online {
		t.Error("unreachable server reported online")
	}
	// The fallback model list still lets the picker work offline.
	if len(health.Models) == 0 {
		t.Error("no fallback models returned")
	}

	newModel, _ := m.Update(health)
	m = newModel.(Model)
	if m.online {
		t.Error("offline state not applied")
	}
}
