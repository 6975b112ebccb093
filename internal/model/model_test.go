// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"testing"
)

func TestRoleDisplayName(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleUser, "You"},
		{RoleAssistant, "NyayaGPT"},
		{Role("system"), "system"},
	}

	for _, tt := range tests {
		if got := tt.role.DisplayName(); got != tt.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.role, got, tt.want)
		}
	}
}

func TestMessagePreview(t *testing.T) {
	tests := []struct {
		name    string
		content string
		max     int
		want    string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"truncated", "hello world", 8, "hello..."},
		{"newlines collapsed", "line one\nline two", 40, "line one line two"},
		{"unicode", "धारा 302 भारतीय दंड संहिता", 9, "धारा 3..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Message{Content: tt.content}
			if got := m.Preview(tt.max); got != tt.want {
				t.Errorf("Preview(%d) = %q, want %q", tt.max, got, tt.want)
			}
		})
	}
}

func TestCitationDisplayTitle(t *testing.T) {
	c := Citation{Title: "IPC Section 302"}
	if got := c.DisplayTitle(0); got != "IPC Section 302" {
		t.Errorf("DisplayTitle = %q", got)
	}

	empty := Citation{}
	if got := empty.DisplayTitle(2); got != "Source 3" {
		t.Errorf("DisplayTitle fallback = %q, want %q", got, "Source 3")
	}
}

func TestConversationRemoveAt(t *testing.T) {
	c := NewConversation("conv-1")
	c.Append(NewUserMessage("first"))
	c.Append(NewAssistantMessage("second"))
	c.Append(NewUserMessage("third"))

	if !c.RemoveAt(1) {
		t.Fatal("RemoveAt(1) failed")
	}
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
	if c.Messages[1].Content != "third" {
		t.Errorf("messages shifted wrong: %q", c.Messages[1].Content)
	}

	// Out of range indices are rejected.
	if c.RemoveAt(-1) || c.RemoveAt(5) {
		t.Error("RemoveAt accepted out-of-range index")
	}
}

func TestConversationDisplayName(t *testing.T) {
	c := NewConversation("conv-2")
	if got := c.DisplayName(); got != "New conversation" {
		t.Errorf("empty DisplayName = %q", got)
	}

	c.Append(NewAssistantMessage("Welcome to NyayaGPT"))
	c.Append(NewUserMessage("What is anticipatory bail?"))
	if got := c.DisplayName(); got != "What is anticipatory bail?" {
		t.Errorf("DisplayName = %q", got)
	}

	c.Name = "Bail basics"
	if got := c.DisplayName(); got != "Bail basics" {
		t.Errorf("named DisplayName = %q", got)
	}
}

func TestMetadataJSONRoundTrip(t *testing.T) {
	raw := `{"model":"gpt-4o","strategy":"fusion","processing_time":1.25,"conversation_id":"abc","session_name":"Bail basics"}`

	var meta Metadata
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if meta.Model != "gpt-4o" || meta.ConversationID != "abc" {
		t.Errorf("unexpected metadata: %+v", meta)
	}
	if meta.ProcessingTime != 1.25 {
		t.Errorf("ProcessingTime = %v", meta.ProcessingTime)
	}
}
