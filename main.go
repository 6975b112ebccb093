// nyaya - terminal client for the NyayaGPT legal assistant.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/nyaya-tui/internal/api"
	"github.com/jeranaias/nyaya-tui/internal/cli"
	"github.com/jeranaias/nyaya-tui/internal/config"
	"github.com/jeranaias/nyaya-tui/internal/store"
	"github.com/jeranaias/nyaya-tui/internal/ui/chat"
	"github.com/jeranaias/nyaya-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global program reference for async streaming
var (
	programRef *tea.Program
	programMu  sync.Mutex
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI(args)
	case cli.CmdAsk:
		exitOnError(cli.HandleAsk(args))
	case cli.CmdChat:
		exitOnError(cli.HandleChat(args))
	case cli.CmdSessions:
		exitOnError(cli.HandleSessions(args))
	case cli.CmdCache:
		exitOnError(cli.HandleCache(args))
	case cli.CmdConfig:
		exitOnError(cli.HandleConfig(args))
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.PrintUsage()
	default:
		runTUI(args)
	}
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging sends the std logger to a file in the config directory.
// The TUI owns the terminal, so stray log writes would corrupt the UI.
func setupLogging() {
	dir, err := config.ConfigDir()
	if err != nil {
		log.SetOutput(os.Stderr)
		return
	}
	if err := config.EnsureConfigDir(); err != nil {
		log.SetOutput(os.Stderr)
		return
	}
	f, err := os.OpenFile(filepath.Join(dir, "nyaya.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		log.SetOutput(os.Stderr)
		return
	}
	log.SetOutput(f)
	log.SetFlags(log.LstdFlags | log.Lmsgprefix)
	log.SetPrefix("nyaya ")
}

// runTUI starts the TUI interface.
func runTUI(args cli.Args) {
	setupLogging()

	cfg, err := cli.LoadConfig(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	client := cli.NewAPIClient(cfg)

	// Stores fall back to the temp directory rather than blocking
	// startup; history just won't survive the session.
	sessionTTL := store.TTLFromDays(cfg.History.SessionDays)
	history, err := store.NewHistoryStore(cfg.History.MaxEntries)
	if err != nil {
		log.Printf("history store unavailable: %v", err)
		history, _ = store.NewHistoryStoreWithPath(
			filepath.Join(os.TempDir(), "nyaya_history.json"), cfg.History.MaxEntries)
	}
	session, err := store.NewSessionStore(sessionTTL)
	if err != nil {
		log.Printf("session store unavailable: %v", err)
		session = store.NewSessionStoreWithPath(
			filepath.Join(os.TempDir(), "nyaya_session.json"), sessionTTL)
	}

	theme := styles.NewTheme()

	m := NewModel(theme, client, cfg, history, session)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	// Store program reference for async operations
	programMu.Lock()
	programRef = p
	programMu.Unlock()

	// Hot-reload config edits made while the TUI is running.
	watcher, err := config.Watch(func(newCfg *config.Config) {
		if p := program(); p != nil {
			p.Send(chat.ConfigReloadedMsg{Config: newCfg})
		}
	})
	if err != nil {
		log.Printf("config watch unavailable: %v", err)
	} else {
		defer watcher.Close()
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running nyaya: %v\n", err)
		os.Exit(1)
	}
}

// program returns the running Bubble Tea program, or nil before startup.
func program() *tea.Program {
	programMu.Lock()
	defer programMu.Unlock()
	return programRef
}

// =============================================================================
// APPLICATION MODEL
// =============================================================================

// Model is the root Bubble Tea model. It wraps the chat model and owns
// the streaming goroutine so that stream events can be injected into
// the update loop from outside it.
type Model struct {
	theme *styles.Theme

	width  int
	height int

	chatModel chat.Model

	client *api.Client
	config *config.Config
}

// NewModel creates the root application model.
func NewModel(theme *styles.Theme, client *api.Client, cfg *config.Config, history *store.HistoryStore, session *store.SessionStore) *Model {
	return &Model{
		theme:     theme,
		chatModel: chat.New(theme, client, cfg, history, session),
		client:    client,
		config:    cfg,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.chatModel.Init()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.theme.SetSize(msg.Width, msg.Height)

	case chat.StreamRequestMsg:
		return m.startStreaming(msg)

	case chat.ConfigReloadedMsg:
		if msg.Config != nil {
			m.config = msg.Config
		}
	}

	newChatModel, cmd := m.chatModel.Update(msg)
	m.chatModel = newChatModel.(chat.Model)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	return m.chatModel.View()
}

// =============================================================================
// STREAMING
// =============================================================================

// startStreaming launches the streaming goroutine for a query. Events
// are pushed back into the update loop via p.Send, each tagged with the
// request generation so a cancelled stream cannot touch a newer view.
func (m *Model) startStreaming(msg chat.StreamRequestMsg) (tea.Model, tea.Cmd) {
	ctx, cancel := context.WithCancel(context.Background())
	m.chatModel.SetCancelFunc(cancel)

	// Capture before returning the closure; the model is copied on
	// every update.
	client := m.client
	cfg := m.config

	return m, func() tea.Msg {
		req := api.QueryRequest{
			Query:          msg.Query,
			ModelName:      cfg.Chat.Model,
			Strategy:       cfg.Chat.Strategy,
			Temperature:    cfg.Chat.Temperature,
			MaxTokens:      cfg.Chat.MaxTokens,
			Stream:         true,
			ConversationID: msg.ConversationID,
			IncludeHistory: true,
		}
		req.ApplyDefaults()

		if p := program(); p != nil {
			p.Send(chat.StreamStartMsg{Gen: msg.Gen, StartTime: time.Now()})
		}

		rec := api.NewReconciler()
		err := client.QueryStream(ctx, req, func(ev api.StreamEvent) {
			rec.Apply(ev)

			p := program()
			if p == nil {
				return
			}

			switch {
			case ev.Error != "":
				p.Send(chat.StreamErrorMsg{
					Gen:      msg.Gen,
					Fallback: ev.ErrorText(),
					Err:      errors.New(ev.ErrorText()),
				})
			case ev.Done:
				p.Send(chat.StreamCompleteMsg{
					Gen:     msg.Gen,
					Message: rec.Message(),
				})
			case ev.Chunk != "":
				p.Send(chat.StreamChunkMsg{Gen: msg.Gen, Text: ev.Chunk})
			}
		})

		if err != nil {
			if api.IsCancelled(err) {
				return nil
			}
			log.Printf("stream failed: %v", err)
			return chat.StreamErrorMsg{
				Gen:     msg.Gen,
				Partial: rec.Content(),
				Err:     err,
			}
		}

		// A stream that closed without a terminal event still carries
		// whatever content arrived; surface it as a degraded result.
		if !rec.Done() {
			return chat.StreamErrorMsg{
				Gen:     msg.Gen,
				Partial: rec.Content(),
				Err:     errors.New("connection closed before the response finished"),
			}
		}
		return nil
	}
}
