// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation view for the TUI.
//
// The view is a standard Bubble Tea model: a viewport holding the
// rendered conversation, a single-line input, a history sidebar, and a
// toast stack. Streaming itself runs in a goroutine owned by the root
// program; this model only consumes the typed messages it produces.
package chat

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/nyaya-tui/internal/api"
	"github.com/jeranaias/nyaya-tui/internal/config"
	"github.com/jeranaias/nyaya-tui/internal/format"
	"github.com/jeranaias/nyaya-tui/internal/model"
	"github.com/jeranaias/nyaya-tui/internal/store"
	"github.com/jeranaias/nyaya-tui/internal/ui/components"
	"github.com/jeranaias/nyaya-tui/internal/ui/styles"
)

// =============================================================================
// STATE
// =============================================================================

// State represents what the chat view is currently doing.
type State int

const (
	StateReady     State = iota // Ready for input
	StateStreaming              // Receiving a streaming response
	StateNaming                 // Prompting for a session name before the first query
	StateConfirm                // Waiting on a yes/no confirmation
)

// confirmAction identifies what a pending confirmation will do.
type confirmAction int

const (
	confirmNone confirmAction = iota
	confirmDeleteMessage
	confirmDeleteConversation
	confirmRemoveHistory
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	// State
	state State

	// Styling
	theme *styles.Theme

	// Dimensions
	width  int
	height int

	// Configuration snapshot
	cfg *config.Config

	// Server client
	client *api.Client

	// Local stores
	history *store.HistoryStore
	session *store.SessionStore

	// Conversation state
	conversation *model.Conversation
	sessionName  string

	// Streaming state
	gen           int // Current query generation; stale messages are dropped
	streamContent strings.Builder
	streamBuf     *streamBuffer
	streamStart   time.Time
	cancelMgr     *cancelManager // Pointer so the mutex survives model copies

	// Pending query held while the naming prompt is up
	pendingQuery string

	// Pending confirmation
	confirm       confirmAction
	confirmTarget string // Conversation id, or message index as text
	confirmIndex  int
	confirmPrompt string

	// Server status
	online          bool
	availableModels []string

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	sidebar  *components.Sidebar
	toasts   *components.ToastManager
	renderer *components.MessageRenderer
	keyMap   KeyMap

	// Display toggles
	showSources bool
	showMeta    bool
	showHelp    bool
}

// New creates a chat model wired to the given client and stores.
func New(theme *styles.Theme, client *api.Client, cfg *config.Config, history *store.HistoryStore, session *store.SessionStore) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a legal question..."
	ti.CharLimit = 4096
	ti.Focus()

	vp := viewport.New(80, 20)
	vp.SetContent("")

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	formatter := format.New(cfg.UI.CodeTheme)

	m := Model{
		state:           StateReady,
		theme:           theme,
		cfg:             cfg,
		client:          client,
		history:         history,
		session:         session,
		conversation:    model.NewConversation(store.NewPlaceholderID()),
		streamBuf:       newStreamBuffer(),
		cancelMgr:       newCancelManager(),
		availableModels: append([]string(nil), api.FallbackModels...),
		viewport:        vp,
		input:           ti,
		spinner:         sp,
		sidebar:         components.NewSidebar(theme),
		toasts:          components.NewToastManager(),
		renderer:        components.NewMessageRenderer(theme, formatter),
		keyMap:          DefaultKeyMap(),
		showSources:     cfg.UI.ShowSources,
		showMeta:        cfg.UI.ShowMeta,
	}
	if history != nil {
		m.sidebar.SetEntries(history.Entries())
	}
	return m
}

// Init starts the health check and resumes the persisted session.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.checkHealthCmd()}
	if m.session != nil {
		if id := m.session.Current(); id != "" && !store.IsPlaceholderID(id) {
			cmds = append(cmds, m.loadConversationCmd(id))
		}
	}
	return tea.Batch(cmds...)
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Conversation returns the active conversation.
func (m *Model) Conversation() *model.Conversation {
	return m.conversation
}

// Streaming reports whether a response is in flight.
func (m *Model) Streaming() bool {
	return m.state == StateStreaming
}

// Gen returns the current query generation.
func (m *Model) Gen() int {
	return m.gen
}

// ModelName returns the chat model currently in use.
func (m *Model) ModelName() string {
	return m.cfg.Chat.Model
}

// =============================================================================
// STATE TRANSITIONS
// =============================================================================

// resetConversation clears the view back to an empty welcome state.
func (m *Model) resetConversation() {
	m.cancelMgr.cancel()
	m.gen++
	m.streamBuf.Reset()
	m.streamContent.Reset()
	m.conversation = model.NewConversation(store.NewPlaceholderID())
	m.sessionName = ""
	m.state = StateReady
	if m.session != nil {
		// Best effort; the next save overwrites it anyway.
		_ = m.session.Clear()
	}
	m.sidebar.SetActive("")
	m.updateViewport()
}

// finishStream tears down streaming state without touching content.
func (m *Model) finishStream() {
	m.cancelMgr.cancel()
	m.streamBuf.Reset()
	m.streamContent.Reset()
	m.state = StateReady
	m.input.Focus()
}

// persistIdentity records the authoritative conversation id and session
// name delivered by a done event: saves the active id and upserts the
// history list so the conversation surfaces at the top of the sidebar.
func (m *Model) persistIdentity(meta *model.Metadata) {
	if meta == nil {
		return
	}
	if meta.ConversationID != "" {
		m.conversation.ID = meta.ConversationID
		if m.session != nil {
			if err := m.session.Save(meta.ConversationID); err != nil {
				m.toasts.Warning("Could not save session: " + err.Error())
			}
		}
	}
	if meta.SessionName != "" && m.sessionName == "" {
		m.sessionName = meta.SessionName
	}

	name := m.sessionName
	if name == "" {
		name = m.conversation.DisplayName()
	}
	if m.history != nil && m.conversation.ID != "" && !store.IsPlaceholderID(m.conversation.ID) {
		if err := m.history.Upsert(m.conversation.ID, name); err != nil {
			m.toasts.Warning("Could not update history: " + err.Error())
		}
		m.sidebar.SetEntries(m.history.Entries())
		m.sidebar.SetActive(m.conversation.ID)
	}
}

// updateViewport re-renders the conversation into the viewport and
// pins the view to the bottom.
func (m *Model) updateViewport() {
	m.viewport.SetContent(m.renderConversation())
	m.viewport.GotoBottom()
}
