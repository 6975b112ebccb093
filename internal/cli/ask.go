// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot query command.
//
// Sends a single question to the service and prints the answer.
// Markdown rendering via glamour on interactive terminals; plain text
// when piped or with --raw.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/nyaya-tui/internal/api"
	"github.com/jeranaias/nyaya-tui/internal/model"
	"github.com/jeranaias/nyaya-tui/internal/ui/styles"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	errorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)

	sourceHeaderStyle = lipgloss.NewStyle().
				Foreground(styles.SourceFg).
				Bold(true)

	sourceStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	metaStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Italic(true)
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// markdownRenderer is initialized once at startup. A nil renderer means
// glamour setup failed and output falls back to plain text.
var markdownRenderer *glamour.TermRenderer

func init() {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(DefaultTerminalWidth),
	)
	if err == nil {
		markdownRenderer = renderer
	}
}

// renderMarkdown renders content as markdown, falling back to the raw
// text when rendering fails.
func renderMarkdown(content string) string {
	if markdownRenderer == nil {
		return content
	}
	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// displayResponse prints the response, markdown-rendered on a TTY.
func displayResponse(content string) {
	if IsStdoutTTY() {
		fmt.Print(renderMarkdown(content))
	} else {
		fmt.Println(content)
	}
}

// =============================================================================
// ASK COMMAND
// =============================================================================

// HandleAsk runs the one-shot ask command.
func HandleAsk(args Args) error {
	query := strings.TrimSpace(args.Query)
	if query == "" {
		return fmt.Errorf("ask requires a question, e.g.: nyaya ask \"What is Section 420 IPC?\"")
	}

	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	client := NewAPIClient(cfg)

	// Ctrl+C cancels the in-flight request.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	useMarkdown := IsStdoutTTY() && !args.Raw

	// When rendering markdown the full answer is needed before display,
	// so chunks are collected and rendered once at the end. Plain mode
	// streams straight to stdout.
	if cfg.Chat.Streaming {
		return askStreaming(ctx, client, args, useMarkdown, queryRequest(cfg, query, "", true))
	}

	resp, err := client.Query(ctx, queryRequest(cfg, query, "", false))
	if err != nil {
		return describeQueryError(err)
	}

	displayResponse(resp.Response)
	printSources(args, resp.ContextSources)
	printMeta(args, resp.Metadata)
	return nil
}

// askStreaming streams the answer, printing chunks as they arrive in
// plain mode and rendering the accumulated markdown at the end on a TTY.
func askStreaming(ctx context.Context, client *api.Client, args Args, useMarkdown bool, req api.QueryRequest) error {
	rec := api.NewReconciler()

	err := client.QueryStream(ctx, req, func(ev api.StreamEvent) {
		rec.Apply(ev)
		if !useMarkdown && ev.Chunk != "" {
			fmt.Print(ev.Chunk)
		}
	})
	if err != nil {
		// Partial content survives a dropped connection.
		if partial := rec.Content(); partial != "" {
			if useMarkdown {
				displayResponse(partial)
			} else {
				fmt.Println()
			}
			fmt.Fprintln(os.Stderr, warningStyle.Render("[Connection lost, answer may be incomplete]"))
			return nil
		}
		return describeQueryError(err)
	}

	// A server error event replaces the answer with its fallback text.
	if snap := rec.Snapshot(); snap.Err != "" {
		if !useMarkdown {
			fmt.Println()
		}
		displayResponse(snap.Err)
		return fmt.Errorf("the server reported an error")
	}

	msg := rec.Message()
	if useMarkdown {
		displayResponse(msg.Content)
	} else {
		fmt.Println()
	}
	if !rec.Done() {
		fmt.Fprintln(os.Stderr, warningStyle.Render("[Connection lost, answer may be incomplete]"))
	}

	printSources(args, msg.Citations)
	printMeta(args, msg.Meta)
	return nil
}

// printSources prints context sources when requested.
func printSources(args Args, citations []model.Citation) {
	if !args.Sources || len(citations) == 0 {
		return
	}

	fmt.Println()
	fmt.Println(sourceHeaderStyle.Render("Sources:"))
	for i, c := range citations {
		line := fmt.Sprintf("  [%d] %s", i+1, c.DisplayTitle(i))
		if c.Page > 0 {
			line += fmt.Sprintf(" (p. %d)", c.Page)
		}
		fmt.Println(sourceStyle.Render(line))
		if c.URL != "" {
			fmt.Println(sourceStyle.Render("      " + c.URL))
		}
	}
}

// printMeta prints the response footer when requested.
func printMeta(args Args, meta *model.Metadata) {
	if !args.Meta || meta == nil {
		return
	}

	parts := make([]string, 0, 3)
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
		return
	}

	fmt.Println()
	fmt.Println(metaStyle.Render(strings.Join(parts, " | ")))
}

// describeQueryError maps client errors to actionable messages.
func describeQueryError(err error) error {
	switch {
	case api.IsCancelled(err):
		return fmt.Errorf("cancelled")
	case api.IsUnavailable(err):
		return fmt.Errorf("cannot reach the NyayaGPT service: %w\nCheck the server URL with: nyaya config get server.base_url", err)
	default:
		return err
	}
}
