// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package format

import (
	"strings"
	"testing"
)

func TestSanitizeStripsEscapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "hello world", "hello world"},
		{"csi color", "\x1b[31mred\x1b[0m", "red"},
		{"osc title", "\x1b]0;evil title\x07text", "text"},
		{"control chars", "a\x00b\x08c", "abc"},
		{"keeps newline and tab", "line1\n\tline2", "line1\n\tline2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRenderPlainStripsMarkers(t *testing.T) {
	f := NewPlain()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"heading stripped", "## Section 302", "Section 302"},
		{"deep heading", "###### Note", "Note"},
		{"bold", "the **essential** element", "the essential element"},
		{"italic", "see *mens rea* above", "see mens rea above"},
		{"inline code", "run `nyaya ask`", "run nyaya ask"},
		{"bullet dash", "- first point", "• first point"},
		{"bullet star", "* second point", "• second point"},
		{"numbered", "1. first", "1. first"},
		{"not a bullet", "well-known rule", "well-known rule"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Render(tt.input); got != tt.want {
				t.Errorf("Render(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRenderMultiline(t *testing.T) {
	f := NewPlain()

	input := "# Summary\n\n- point one\n- point two"
	want := "Summary\n\n• point one\n• point two"
	if got := f.Render(input); got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
}

func TestRenderCodeFence(t *testing.T) {
	f := NewPlain()

	input := "before\n```go\nfmt.Println(\"hi\")\n```\nafter"
	got := f.Render(input)

	if !strings.Contains(got, "fmt.Println(\"hi\")") {
		t.Errorf("code content missing: %q", got)
	}
	if strings.Contains(got, "```") {
		t.Errorf("fence markers leaked: %q", got)
	}
}

func TestRenderUnterminatedFence(t *testing.T) {
	// Mid-stream content regularly ends inside an open fence.
	f := NewPlain()

	input := "text\n```python\nprint(1)"
	got := f.Render(input)

	if !strings.Contains(got, "print(1)") {
		t.Errorf("unterminated fence content missing: %q", got)
	}
}

func TestRenderStyledKeepsText(t *testing.T) {
	// Without a TTY lipgloss renders colorless, so styled output should
	// still contain the raw text.
	f := New("monokai")

	got := f.Render("## Heading\n**bold** and *italic* and `code`")
	for _, want := range []string{"Heading", "bold", "italic", "code"} {
		if !strings.Contains(got, want) {
			t.Errorf("styled output missing %q: %q", want, got)
		}
	}
	if strings.Contains(got, "**") || strings.Contains(got, "##") {
		t.Errorf("markers leaked: %q", got)
	}
}

func TestRenderSanitizesFirst(t *testing.T) {
	f := NewPlain()

	got := f.Render("\x1b[2Jsafe text")
	if got != "safe text" {
		t.Errorf("Render = %q", got)
	}
}
