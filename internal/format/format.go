// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package format renders NyayaGPT response text for terminal display.
//
// The service emits lightweight markdown: headings, bold, italics,
// bullet lists, and fenced code blocks. Rendering strips heading
// markers, styles emphasis inline, and syntax-highlights code fences.
package format

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// SANITIZATION
// =============================================================================

// ansiEscape matches terminal escape sequences. Server content is
// untrusted; any escapes it carries are stripped before rendering so a
// response cannot repaint or retitle the terminal.
var ansiEscape = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]|\x1b\][^\x07\x1b]*(\x07|\x1b\\)`)

// Sanitize removes terminal escape sequences and control characters
// (other than newline and tab) from server-provided text.
func Sanitize(s string) string {
	s = ansiEscape.ReplaceAllString(s, "")
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}

// =============================================================================
// INLINE PATTERNS
// =============================================================================

var (
	headingRe    = regexp.MustCompile(`^#{1,6}\s*`)
	boldRe       = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicRe     = regexp.MustCompile(`(^|[^*])\*([^*\n]+?)\*`)
	inlineCodeRe = regexp.MustCompile("`([^`\n]+)`")
	bulletRe     = regexp.MustCompile(`^(\s*)[-*]\s+`)
	numberedRe   = regexp.MustCompile(`^(\s*)(\d+)\.\s+`)
	fenceRe      = regexp.MustCompile("^```\\s*(\\S*)\\s*$")
)

// =============================================================================
// FORMATTER
// =============================================================================

// Formatter renders response markdown into styled terminal text.
type Formatter struct {
	// CodeTheme is the chroma style name for fenced code blocks.
	CodeTheme string

	// Plain disables all styling; markers are still stripped. Useful
	// for piped output.
	Plain bool

	headingStyle lipgloss.Style
	boldStyle    lipgloss.Style
	italicStyle  lipgloss.Style
	codeStyle    lipgloss.Style
}

// New creates a formatter with the given chroma code theme.
func New(codeTheme string) *Formatter {
	if codeTheme == "" {
		codeTheme = "monokai"
	}
	return &Formatter{
		CodeTheme:    codeTheme,
		headingStyle: lipgloss.NewStyle().Bold(true).Underline(true),
		boldStyle:    lipgloss.NewStyle().Bold(true),
		italicStyle:  lipgloss.NewStyle().Italic(true),
		codeStyle:    lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#A31515", Dark: "#CE9178"}),
	}
}

// NewPlain creates a formatter that strips markers without styling.
func NewPlain() *Formatter {
	f := New("")
	f.Plain = true
	return f
}

// Render formats a complete response for display. Input is sanitized
// first.
func (f *Formatter) Render(content string) string {
	content = Sanitize(content)

	var out strings.Builder
	lines := strings.Split(content, "\n")

	inFence := false
	fenceLang := ""
	var fenceLines []string

	for _, line := range lines {
		if m := fenceRe.FindStringSubmatch(line); m != nil {
			if inFence {
				out.WriteString(f.renderCode(strings.Join(fenceLines, "\n"), fenceLang))
				out.WriteString("\n")
				inFence = false
				fenceLines = nil
			} else {
				inFence = true
				fenceLang = m[1]
			}
			continue
		}
		if inFence {
			fenceLines = append(fenceLines, line)
			continue
		}
		out.WriteString(f.renderLine(line))
		out.WriteString("\n")
	}

	// Unterminated fence: render what we have as code anyway. This
	// happens constantly mid-stream.
	if inFence {
		out.WriteString(f.renderCode(strings.Join(fenceLines, "\n"), fenceLang))
		out.WriteString("\n")
	}

	return strings.TrimRight(out.String(), "\n")
}

// renderLine formats a single non-code line.
func (f *Formatter) renderLine(line string) string {
	// Headings lose their markers and render emphasized.
	if headingRe.MatchString(line) {
		text := headingRe.ReplaceAllString(line, "")
		if f.Plain {
			return text
		}
		return f.headingStyle.Render(text)
	}

	// Bullets normalize to a dot marker.
	if m := bulletRe.FindStringSubmatch(line); m != nil {
		line = m[1] + "• " + line[len(m[0]):]
	} else if m := numberedRe.FindStringSubmatch(line); m != nil {
		line = m[1] + m[2] + ". " + line[len(m[0]):]
	}

	return f.renderInline(line)
}

// renderInline applies emphasis and inline code styling.
func (f *Formatter) renderInline(line string) string {
	if f.Plain {
		line = boldRe.ReplaceAllString(line, "$1")
		line = italicRe.ReplaceAllString(line, "$1$2")
		line = inlineCodeRe.ReplaceAllString(line, "$1")
		return line
	}

	line = boldRe.ReplaceAllStringFunc(line, func(m string) string {
		return f.boldStyle.Render(boldRe.FindStringSubmatch(m)[1])
	})
	line = italicRe.ReplaceAllStringFunc(line, func(m string) string {
		sub := italicRe.FindStringSubmatch(m)
		return sub[1] + f.italicStyle.Render(sub[2])
	})
	line = inlineCodeRe.ReplaceAllStringFunc(line, func(m string) string {
		return f.codeStyle.Render(inlineCodeRe.FindStringSubmatch(m)[1])
	})
	return line
}

// renderCode highlights a fenced code block.
func (f *Formatter) renderCode(code, lang string) string {
	if f.Plain || code == "" {
		return code
	}
	if lang == "" {
		lang = "text"
	}

	var buf bytes.Buffer
	if err := quick.Highlight(&buf, code, lang, "terminal256", f.CodeTheme); err != nil {
		return code
	}
	return strings.TrimRight(buf.String(), "\n")
}
