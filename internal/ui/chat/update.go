// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// update.go - Message handling for the chat view.
package chat

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/nyaya-tui/internal/config"
	"github.com/jeranaias/nyaya-tui/internal/model"
	"github.com/jeranaias/nyaya-tui/internal/store"
	"github.com/jeranaias/nyaya-tui/internal/ui/components"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if m.state != StateStreaming {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case StreamTickMsg:
		return m.handleStreamTick()

	case StreamStartMsg:
		if msg.Gen != m.gen {
			return m, nil
		}
		m.streamStart = msg.StartTime
		return m, nil

	case StreamChunkMsg:
		return m.handleStreamChunk(msg)

	case StreamCompleteMsg:
		return m.handleStreamComplete(msg)

	case StreamErrorMsg:
		return m.handleStreamError(msg)

	case HealthMsg:
		return m.handleHealth(msg)

	case ConversationLoadedMsg:
		return m.handleConversationLoaded(msg)

	case MessageDeletedMsg:
		return m.handleMessageDeleted(msg)

	case ConversationDeletedMsg:
		return m.handleConversationDeleted(msg)

	case CacheClearedMsg:
		if msg.Err != nil {
			m.toasts.Error("Cache clear failed: " + msg.Err.Error())
		} else {
			m.toasts.Success("Server cache cleared")
		}
		return m, components.ToastTickCmd()

	case HistoryUpdatedMsg:
		m.sidebar.SetEntries(msg.Entries)
		return m, nil

	case NewConversationMsg:
		m.resetConversation()
		return m, nil

	case ConfigReloadedMsg:
		if msg.Config != nil {
			m.cfg = msg.Config
			m.toasts.Info("Configuration reloaded")
		}
		return m, components.ToastTickCmd()

	case components.ToastTickMsg:
		m.toasts.Tick()
		if m.toasts.HasToasts() {
			return m, components.ToastTickCmd()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// =============================================================================
// RESIZE
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)

	contentWidth := msg.Width - m.sidebar.Width()
	m.sidebar.SetSize(m.sidebar.Width(), msg.Height-chromeHeight)
	m.viewport.Width = contentWidth
	m.viewport.Height = msg.Height - chromeHeight
	m.input.Width = contentWidth - 6
	m.renderer.SetWidth(contentWidth)

	m.updateViewport()
	return m, nil
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keyMap.Quit) {
		m.cancelMgr.cancel()
		return m, tea.Quit
	}

	switch m.state {
	case StateNaming:
		return m.handleNamingKey(msg)
	case StateConfirm:
		return m.handleConfirmKey(msg)
	}

	if m.sidebar.Visible() {
		if handled, newModel, cmd := m.handleSidebarKey(msg); handled {
			return newModel, cmd
		}
	}

	switch {
	case key.Matches(msg, m.keyMap.Cancel):
		if m.state == StateStreaming {
			return m.cancelStream()
		}
		return m, nil

	case key.Matches(msg, m.keyMap.NewChat):
		m.resetConversation()
		return m, nil

	case key.Matches(msg, m.keyMap.History):
		m.sidebar.Toggle()
		return m.handleResize(tea.WindowSizeMsg{Width: m.width, Height: m.height})

	case key.Matches(msg, m.keyMap.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, m.keyMap.Submit):
		return m.handleSubmit()

	case key.Matches(msg, m.keyMap.PageUp), key.Matches(msg, m.keyMap.PageDown),
		key.Matches(msg, m.keyMap.Up), key.Matches(msg, m.keyMap.Down):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleSidebarKey processes keys while the history sidebar is open.
// Returns handled=false for keys that should fall through to the
// regular handler.
func (m Model) handleSidebarKey(msg tea.KeyMsg) (bool, tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up":
		m.sidebar.MoveUp()
		return true, m, nil
	case "down":
		m.sidebar.MoveDown()
		return true, m, nil
	case "enter":
		entry, ok := m.sidebar.Selected()
		if !ok {
			return true, m, nil
		}
		return true, m, m.loadConversationCmd(entry.ID)
	case "x", "delete":
		entry, ok := m.sidebar.Selected()
		if !ok {
			return true, m, nil
		}
		m.state = StateConfirm
		m.confirm = confirmRemoveHistory
		m.confirmTarget = entry.ID
		m.confirmPrompt = "Remove \"" + entry.Name + "\" from history? (y/n)"
		return true, m, nil
	case "esc":
		m.sidebar.Toggle()
		newModel, cmd := m.handleResize(tea.WindowSizeMsg{Width: m.width, Height: m.height})
		return true, newModel, cmd
	}
	return false, m, nil
}

func (m Model) handleNamingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		name := strings.TrimSpace(m.input.Value())
		m.sessionName = name
		m.restoreInputPrompt()
		query := m.pendingQuery
		m.pendingQuery = ""
		m.state = StateReady
		return m.sendQuery(query)
	case "esc":
		m.restoreInputPrompt()
		m.input.SetValue(m.pendingQuery)
		m.pendingQuery = ""
		m.state = StateReady
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		action := m.confirm
		target := m.confirmTarget
		index := m.confirmIndex
		m.clearConfirm()
		switch action {
		case confirmDeleteMessage:
			return m, m.deleteMessageCmd(target, index)
		case confirmDeleteConversation:
			return m, m.deleteConversationCmd(target)
		case confirmRemoveHistory:
			if m.history != nil {
				if err := m.history.Remove(target); err != nil {
					m.toasts.Error("Could not remove entry: " + err.Error())
					return m, components.ToastTickCmd()
				}
				m.sidebar.SetEntries(m.history.Entries())
			}
			if target == m.conversation.ID {
				m.resetConversation()
			}
			return m, nil
		}
		return m, nil
	case "n", "N", "esc":
		m.clearConfirm()
		return m, nil
	}
	return m, nil
}

func (m *Model) clearConfirm() {
	m.state = StateReady
	m.confirm = confirmNone
	m.confirmTarget = ""
	m.confirmIndex = 0
	m.confirmPrompt = ""
}

// restoreInputPrompt puts the input back into query mode after the
// naming prompt.
func (m *Model) restoreInputPrompt() {
	m.input.Prompt = "> "
	m.input.Placeholder = "Ask a legal question..."
	m.input.SetValue("")
}

// =============================================================================
// SUBMIT AND SLASH COMMANDS
// =============================================================================

func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}

	if strings.HasPrefix(text, "/") {
		m.input.SetValue("")
		return m.handleSlashCommand(text)
	}

	// New sessions are named before the first query goes out.
	if m.conversation.IsEmpty() && m.sessionName == "" {
		m.pendingQuery = text
		m.state = StateNaming
		m.input.Prompt = "Name: "
		m.input.Placeholder = "Session name (Enter to skip)"
		m.input.SetValue("")
		return m, nil
	}

	m.input.SetValue("")
	return m.sendQuery(text)
}

// sendQuery starts a streaming query. Any in-flight stream is
// cancelled first; bumping the generation guarantees its late events
// are dropped.
func (m Model) sendQuery(query string) (tea.Model, tea.Cmd) {
	if query == "" {
		return m, nil
	}

	m.cancelMgr.cancel()
	m.gen++
	m.streamBuf.Reset()
	m.streamContent.Reset()

	m.conversation.Append(model.NewUserMessage(query))
	m.state = StateStreaming
	m.updateViewport()

	reqID := m.conversation.ID
	if store.IsPlaceholderID(reqID) {
		reqID = "" // Server assigns the authoritative id.
	}

	return m, tea.Batch(
		streamRequestCmd(m.gen, query, reqID),
		m.spinner.Tick,
		streamTickCmd(),
	)
}

func (m Model) handleSlashCommand(text string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(text)
	cmd := fields[0]
	args := fields[1:]

	switch cmd {
	case "/new":
		m.resetConversation()
		return m, nil

	case "/name":
		if len(args) == 0 {
			m.toasts.Info("Usage: /name <session name>")
			return m, components.ToastTickCmd()
		}
		m.sessionName = strings.Join(args, " ")
		if m.history != nil && !store.IsPlaceholderID(m.conversation.ID) {
			if err := m.history.Rename(m.conversation.ID, m.sessionName); err == nil {
				m.sidebar.SetEntries(m.history.Entries())
			}
		}
		m.toasts.Success("Session named \"" + m.sessionName + "\"")
		return m, components.ToastTickCmd()

	case "/delete":
		if len(args) != 1 {
			m.toasts.Info("Usage: /delete <message number>")
			return m, components.ToastTickCmd()
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 || n > m.conversation.Len() {
			m.toasts.Error("No message numbered " + args[0])
			return m, components.ToastTickCmd()
		}
		if store.IsPlaceholderID(m.conversation.ID) {
			m.toasts.Warning("Conversation not saved on the server yet")
			return m, components.ToastTickCmd()
		}
		m.state = StateConfirm
		m.confirm = confirmDeleteMessage
		m.confirmTarget = m.conversation.ID
		m.confirmIndex = n - 1
		m.confirmPrompt = "Delete message " + args[0] + "? (y/n)"
		return m, nil

	case "/clear":
		if store.IsPlaceholderID(m.conversation.ID) {
			m.resetConversation()
			return m, nil
		}
		m.state = StateConfirm
		m.confirm = confirmDeleteConversation
		m.confirmTarget = m.conversation.ID
		m.confirmPrompt = "Delete this conversation? (y/n)"
		return m, nil

	case "/cache":
		return m, m.clearCacheCmd()

	case "/model":
		if len(args) != 1 {
			m.toasts.Info("Models: " + strings.Join(m.availableModels, ", "))
			return m, components.ToastTickCmd()
		}
		m.cfg.Chat.Model = args[0]
		m.toasts.Success("Model set to " + args[0])
		return m, components.ToastTickCmd()

	case "/strategy":
		if len(args) != 1 {
			m.toasts.Info("Strategies: " + strings.Join(config.ValidStrategies, ", "))
			return m, components.ToastTickCmd()
		}
		valid := false
		for _, s := range config.ValidStrategies {
			if args[0] == s {
				valid = true
				break
			}
		}
		if !valid {
			m.toasts.Error("Unknown strategy: " + args[0])
			return m, components.ToastTickCmd()
		}
		m.cfg.Chat.Strategy = args[0]
		m.toasts.Success("Strategy set to " + args[0])
		return m, components.ToastTickCmd()

	case "/theme":
		if len(args) != 1 || (args[0] != "dark" && args[0] != "light") {
			m.toasts.Info("Usage: /theme dark|light")
			return m, components.ToastTickCmd()
		}
		m.cfg.UI.Theme = args[0]
		if err := config.Save(m.cfg); err != nil {
			m.toasts.Error("Could not save config: " + err.Error())
		} else {
			m.toasts.Success("Theme saved; takes effect on restart")
		}
		return m, components.ToastTickCmd()

	case "/sources":
		m.showSources = !m.showSources
		m.updateViewport()
		return m, nil

	case "/meta":
		m.showMeta = !m.showMeta
		m.updateViewport()
		return m, nil

	case "/help":
		m.showHelp = !m.showHelp
		return m, nil
	}

	m.toasts.Error("Unknown command: " + cmd)
	return m, components.ToastTickCmd()
}

// =============================================================================
// STREAM MESSAGE HANDLERS
// =============================================================================

func (m Model) handleStreamTick() (tea.Model, tea.Cmd) {
	if m.state != StateStreaming {
		return m, nil
	}
	if content, ok := m.streamBuf.Flush(); ok {
		m.streamContent.WriteString(content)
		m.updateViewport()
	}
	return m, streamTickCmd()
}

func (m Model) handleStreamChunk(msg StreamChunkMsg) (tea.Model, tea.Cmd) {
	if msg.Gen != m.gen || m.state != StateStreaming {
		return m, nil
	}
	m.streamBuf.Write(msg.Text)
	return m, nil
}

func (m Model) handleStreamComplete(msg StreamCompleteMsg) (tea.Model, tea.Cmd) {
	if msg.Gen != m.gen {
		return m, nil
	}

	m.finishStream()
	m.conversation.Append(msg.Message)
	m.persistIdentity(msg.Message.Meta)
	m.updateViewport()
	return m, nil
}

func (m Model) handleStreamError(msg StreamErrorMsg) (tea.Model, tea.Cmd) {
	if msg.Gen != m.gen {
		return m, nil
	}

	m.finishStream()

	// A server-reported error replaces the rendered content with its
	// fallback text; after a transport failure whatever arrived stays
	// visible.
	content := msg.Fallback
	if content == "" {
		content = msg.Partial
	}
	if content == "" && msg.Err != nil {
		content = msg.Err.Error()
	}
	if content != "" {
		m.conversation.Append(model.NewAssistantMessage(content))
	}
	if msg.Err != nil {
		m.toasts.Error(msg.Err.Error())
	}
	m.updateViewport()
	return m, components.ToastTickCmd()
}

// cancelStream aborts the in-flight response. Content already received
// is kept as a partial assistant message.
func (m Model) cancelStream() (tea.Model, tea.Cmd) {
	if drained, ok := m.streamBuf.ForceFlush(); ok {
		m.streamContent.WriteString(drained)
	}
	partial := m.streamContent.String()

	m.cancelMgr.cancel()
	m.gen++
	m.finishStream()

	if partial != "" {
		m.conversation.Append(model.NewAssistantMessage(partial))
	}
	m.toasts.Info("Response cancelled")
	m.updateViewport()
	return m, components.ToastTickCmd()
}

// =============================================================================
// SERVER STATE HANDLERS
// =============================================================================

func (m Model) handleHealth(msg HealthMsg) (tea.Model, tea.Cmd) {
	m.online = msg.Online
	if len(msg.Models) > 0 {
		m.availableModels = msg.Models
	}
	if !msg.Online {
		m.toasts.Warning("Server unreachable; check your connection")
		return m, components.ToastTickCmd()
	}
	return m, nil
}

func (m Model) handleConversationLoaded(msg ConversationLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		if msg.NotFound {
			// Stale id: clear it and fall back to an empty view.
			if m.session != nil {
				_ = m.session.Clear()
			}
			if m.history != nil {
				_ = m.history.Remove(msg.ID)
				m.sidebar.SetEntries(m.history.Entries())
			}
			m.toasts.Warning("Conversation no longer exists on the server")
			m.resetConversation()
			return m, components.ToastTickCmd()
		}
		m.toasts.Error("Could not load conversation: " + msg.Err.Error())
		return m, components.ToastTickCmd()
	}

	m.cancelMgr.cancel()
	m.gen++
	m.streamBuf.Reset()
	m.streamContent.Reset()
	m.state = StateReady

	m.conversation = model.NewConversation(msg.ID)
	for _, message := range msg.Messages {
		m.conversation.Append(message)
	}
	m.sessionName = msg.Name
	if m.session != nil {
		_ = m.session.Save(msg.ID)
	}
	m.sidebar.SetActive(msg.ID)
	m.updateViewport()
	return m, nil
}

func (m Model) handleMessageDeleted(msg MessageDeletedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.toasts.Error("Delete failed: " + msg.Err.Error())
		return m, components.ToastTickCmd()
	}
	m.toasts.Success("Message deleted")
	// Indices shift after a delete; reload the authoritative state.
	return m, tea.Batch(m.loadConversationCmd(msg.ConversationID), components.ToastTickCmd())
}

func (m Model) handleConversationDeleted(msg ConversationDeletedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.toasts.Error("Delete failed: " + msg.Err.Error())
		return m, components.ToastTickCmd()
	}
	if m.history != nil {
		_ = m.history.Remove(msg.ID)
		m.sidebar.SetEntries(m.history.Entries())
	}
	m.toasts.Success("Conversation deleted")
	m.resetConversation()
	return m, components.ToastTickCmd()
}
