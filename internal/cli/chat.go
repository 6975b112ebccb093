// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive REPL chat with input history.
//
// A plain readline-style loop for terminals where the full TUI is
// unwanted (ssh sessions, screen readers, scripting). Input history is
// persisted between sessions via liner.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/jeranaias/nyaya-tui/internal/api"
	"github.com/jeranaias/nyaya-tui/internal/config"
	"github.com/jeranaias/nyaya-tui/internal/model"
	"github.com/jeranaias/nyaya-tui/internal/store"
	"github.com/jeranaias/nyaya-tui/internal/ui/styles"
)

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Saffron).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(styles.Teal)
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI with input history loaded from the
// config directory.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	c := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "repl_history"),
	}
	c.LoadHistory()
	return c
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt. Arrow keys
// navigate history.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists command history with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and closes the liner.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// SESSION STATE
// =============================================================================

// ChatSession holds the state for an interactive chat session.
type ChatSession struct {
	Config       *config.Config
	Client       *api.Client
	Conversation *model.Conversation
	SessionName  string

	History *store.HistoryStore
	Session *store.SessionStore

	// Cancel function for the current stream
	CancelFunc context.CancelFunc

	Input *ChatCLI

	Quiet       bool
	ShowSources bool
	ShowMeta    bool
	StartTime   time.Time
}

// NewChatSession wires up a session from parsed args.
func NewChatSession(args Args) (*ChatSession, error) {
	cfg, err := LoadConfig(args)
	if err != nil {
		return nil, err
	}

	history, err := store.NewHistoryStore(cfg.History.MaxEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}
	session, err := store.NewSessionStore(store.TTLFromDays(cfg.History.SessionDays))
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	return &ChatSession{
		Config:       cfg,
		Client:       NewAPIClient(cfg),
		Conversation: model.NewConversation(store.NewPlaceholderID()),
		SessionName:  args.Name,
		History:      history,
		Session:      session,
		Input:        NewChatCLI(),
		Quiet:        args.Quiet,
		ShowSources:  cfg.UI.ShowSources,
		ShowMeta:     cfg.UI.ShowMeta,
		StartTime:    time.Now(),
	}, nil
}

// =============================================================================
// CHAT COMMAND
// =============================================================================

// HandleChat runs the interactive REPL.
func HandleChat(args Args) error {
	session, err := NewChatSession(args)
	if err != nil {
		return err
	}
	defer session.Input.Close()

	ctx := context.Background()
	if _, err := session.Client.Health(ctx); err != nil {
		fmt.Fprintln(os.Stderr, warningStyle.Render(
			"Warning: NyayaGPT service unreachable at "+session.Client.BaseURL()))
	}

	// Resume the remembered conversation when one exists.
	if id := session.Session.Current(); id != "" && !store.IsPlaceholderID(id) {
		resumeConversation(ctx, session, id)
	}

	if !session.Quiet {
		printWelcome(session)
	}

	// First Ctrl+C during a stream cancels it; at the prompt liner
	// turns Ctrl+C into ErrPromptAborted.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		for range sigChan {
			if session.CancelFunc != nil {
				session.CancelFunc()
				session.CancelFunc = nil
				fmt.Fprintln(os.Stderr, "\n"+warningStyle.Render("[Cancelled]"))
			}
		}
	}()

	for {
		input, err := session.Input.ReadInput(promptStyle.Render("nyaya> "))
		if err != nil {
			// Ctrl+C, Ctrl+D, or a closed terminal all end the loop.
			fmt.Println()
			printExitSummary(session)
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			shouldContinue, err := handleReplCommand(input, session)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
			}
			if !shouldContinue {
				printExitSummary(session)
				return nil
			}
			continue
		}

		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			printExitSummary(session)
			return nil
		}

		if err := processMessage(session, input); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
		}
	}
}

// resumeConversation loads a remembered conversation, clearing stale ids.
func resumeConversation(ctx context.Context, session *ChatSession, id string) {
	resp, err := session.Client.GetConversation(ctx, id)
	if err != nil {
		if api.IsNotFound(err) {
			_ = session.Session.Clear()
			_ = session.History.Remove(id)
		}
		return
	}

	conv := model.NewConversation(resp.ConversationID)
	for _, m := range resp.Messages {
		role := model.RoleAssistant
		if m.Role == "user" {
			role = model.RoleUser
		}
		conv.Append(model.Message{Role: role, Content: m.Content})
	}
	session.Conversation = conv
	if resp.SessionName != "" {
		session.SessionName = resp.SessionName
	}
}

// =============================================================================
// MESSAGE PROCESSING
// =============================================================================

// processMessage sends the input and streams the response to stdout.
func processMessage(session *ChatSession, input string) error {
	ctx, cancel := context.WithCancel(context.Background())
	session.CancelFunc = cancel
	defer func() {
		session.CancelFunc = nil
		cancel()
	}()

	useMarkdown := IsStdoutTTY()

	reqID := session.Conversation.ID
	if store.IsPlaceholderID(reqID) {
		reqID = ""
	}
	req := queryRequest(session.Config, input, reqID, true)

	session.Conversation.Append(model.NewUserMessage(input))

	fmt.Println()
	rec := api.NewReconciler()

	err := session.Client.QueryStream(ctx, req, func(ev api.StreamEvent) {
		rec.Apply(ev)
		if !useMarkdown && ev.Chunk != "" {
			fmt.Print(ev.Chunk)
		}
	})
	if err != nil {
		partial := rec.Content()
		if partial == "" {
			// Drop the user message so a retry does not duplicate it.
			session.Conversation.RemoveAt(session.Conversation.Len() - 1)
			return describeQueryError(err)
		}
		// Keep what arrived before the connection dropped.
		if useMarkdown {
			displayResponse(partial)
		} else {
			fmt.Println()
		}
		fmt.Fprintln(os.Stderr, warningStyle.Render("[Connection lost, answer may be incomplete]"))
		session.Conversation.Append(model.NewAssistantMessage(partial))
		return nil
	}

	// A server error event replaces the answer with its fallback text.
	if snap := rec.Snapshot(); snap.Err != "" {
		if !useMarkdown {
			fmt.Println()
		}
		displayResponse(snap.Err)
		fmt.Fprintln(os.Stderr, errorStyle.Render("[The server reported an error]"))
		session.Conversation.Append(model.NewAssistantMessage(snap.Err))
		fmt.Println()
		return nil
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
	session.Conversation.Append(msg)

	if session.ShowSources {
		printSources(Args{Sources: true}, msg.Citations)
	}
	if session.ShowMeta {
		printMeta(Args{Meta: true}, msg.Meta)
	}
	fmt.Println()

	persistIdentity(session, msg.Meta)
	return nil
}

// persistIdentity records the server-assigned conversation id and keeps
// the history list current. Server ids overwrite local placeholders.
func persistIdentity(session *ChatSession, meta *model.Metadata) {
	if meta == nil || meta.ConversationID == "" {
		return
	}

	session.Conversation.ID = meta.ConversationID
	if meta.SessionName != "" {
		session.SessionName = meta.SessionName
	}
	_ = session.Session.Save(meta.ConversationID)

	name := session.SessionName
	if name == "" {
		name = session.Conversation.DisplayName()
	}
	_ = session.History.Upsert(meta.ConversationID, name)
}

// =============================================================================
// REPL COMMANDS
// =============================================================================

// handleReplCommand executes a slash command. The boolean result is
// false when the REPL should exit.
func handleReplCommand(input string, session *ChatSession) (bool, error) {
	fields := strings.Fields(input)
	cmd := strings.ToLower(fields[0])
	rest := fields[1:]

	switch cmd {
	case "/exit", "/quit", "/q":
		return false, nil

	case "/new":
		session.Conversation = model.NewConversation(store.NewPlaceholderID())
		session.SessionName = ""
		_ = session.Session.Clear()
		fmt.Println(infoStyle.Render("Started a new conversation."))
		return true, nil

	case "/name":
		if len(rest) == 0 {
			return true, fmt.Errorf("usage: /name <session name>")
		}
		session.SessionName = strings.Join(rest, " ")
		if !store.IsPlaceholderID(session.Conversation.ID) {
			_ = session.History.Rename(session.Conversation.ID, session.SessionName)
		}
		fmt.Println(infoStyle.Render("Session named " + strconv.Quote(session.SessionName)))
		return true, nil

	case "/sessions":
		printSessionList(session.History)
		return true, nil

	case "/load":
		if len(rest) == 0 {
			return true, fmt.Errorf("usage: /load <number from /sessions>")
		}
		n, err := strconv.Atoi(rest[0])
		entries := session.History.Entries()
		if err != nil || n < 1 || n > len(entries) {
			return true, fmt.Errorf("no session %q, run /sessions first", rest[0])
		}
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		resumeConversation(ctx, session, entries[n-1].ID)
		_ = session.Session.Save(entries[n-1].ID)
		fmt.Println(infoStyle.Render(fmt.Sprintf("Loaded %q (%d messages).",
			entries[n-1].Name, session.Conversation.Len())))
		return true, nil

	case "/model":
		if len(rest) == 0 {
			fmt.Println(infoStyle.Render("Model: " + session.Config.Chat.Model))
			return true, nil
		}
		session.Config.Chat.Model = rest[0]
		fmt.Println(infoStyle.Render("Model set to " + rest[0]))
		return true, nil

	case "/strategy":
		if len(rest) == 0 {
			fmt.Println(infoStyle.Render("Strategy: " + session.Config.Chat.Strategy))
			return true, nil
		}
		if !validStrategy(rest[0]) {
			return true, fmt.Errorf("unknown strategy %q, must be one of: %s",
				rest[0], strings.Join(config.ValidStrategies, ", "))
		}
		session.Config.Chat.Strategy = strings.ToLower(rest[0])
		fmt.Println(infoStyle.Render("Strategy set to " + session.Config.Chat.Strategy))
		return true, nil

	case "/sources":
		session.ShowSources = !session.ShowSources
		fmt.Println(infoStyle.Render("Sources " + onOff(session.ShowSources)))
		return true, nil

	case "/meta":
		session.ShowMeta = !session.ShowMeta
		fmt.Println(infoStyle.Render("Metadata " + onOff(session.ShowMeta)))
		return true, nil

	case "/help", "/?":
		printReplHelp()
		return true, nil

	default:
		return true, fmt.Errorf("unknown command %s, try /help", cmd)
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// =============================================================================
// OUTPUT
// =============================================================================

func printWelcome(session *ChatSession) {
	title := lipgloss.NewStyle().Foreground(styles.Saffron).Bold(true).
		Render("NyayaGPT chat")
	fmt.Println(title)
	fmt.Printf("Model: %s | Strategy: %s | Server: %s\n",
		session.Config.Chat.Model, session.Config.Chat.Strategy,
		session.Client.BaseURL())
	if session.Conversation.Len() > 0 {
		fmt.Println(infoStyle.Render(fmt.Sprintf("Resumed %q (%d messages).",
			session.Conversation.DisplayName(), session.Conversation.Len())))
	}
	fmt.Println("Type a question, /help for commands, or exit to quit.")
	fmt.Println()
}

func printExitSummary(session *ChatSession) {
	if session.Quiet {
		return
	}
	elapsed := time.Since(session.StartTime).Round(time.Second)
	fmt.Printf("%d messages in %s. Goodbye.\n", session.Conversation.Len(), elapsed)
}

func printSessionList(history *store.HistoryStore) {
	entries := history.Entries()
	if len(entries) == 0 {
		fmt.Println(infoStyle.Render("No saved conversations."))
		return
	}
	for i, e := range entries {
		fmt.Printf("  %2d. %s  %s\n", i+1, e.Name,
			metaStyle.Render(e.Timestamp.Format("2006-01-02 15:04")))
	}
}

func printReplHelp() {
	fmt.Print(`Commands:
  /new              Start a new conversation
  /name <name>      Name the current session
  /sessions         List saved conversations
  /load <n>         Resume conversation n from the list
  /model [name]     Show or set the model
  /strategy [name]  Show or set the retrieval strategy
  /sources          Toggle source citations
  /meta             Toggle the response footer
  /help             Show this help
  /exit             Quit (also: exit, quit, Ctrl+D)
`)
}
