// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// sessions.go - Saved conversation management.
package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jeranaias/nyaya-tui/internal/api"
	"github.com/jeranaias/nyaya-tui/internal/config"
	"github.com/jeranaias/nyaya-tui/internal/store"
)

// HandleSessions runs the sessions command.
func HandleSessions(args Args) error {
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	history, err := store.NewHistoryStore(cfg.History.MaxEntries)
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}

	switch args.Subcommand {
	case "", "list", "ls":
		printSessionList(history)
		return nil

	case "delete", "rm":
		if len(args.Rest) == 0 {
			return fmt.Errorf("usage: nyaya sessions delete <number>")
		}
		return deleteSession(cfg, history, args.Rest[0])

	case "clear":
		if err := history.Clear(); err != nil {
			return err
		}
		session, err := store.NewSessionStore(store.TTLFromDays(cfg.History.SessionDays))
		if err == nil {
			_ = session.Clear()
		}
		fmt.Println(infoStyle.Render("Forgot all saved conversations."))
		return nil

	default:
		return fmt.Errorf("unknown sessions subcommand %q, expected list, delete, or clear", args.Subcommand)
	}
}

// deleteSession removes a conversation on the server and locally. The
// entry is dropped from local history even when the server delete
// fails; a stale id would otherwise stick around forever.
func deleteSession(cfg *config.Config, history *store.HistoryStore, sel string) error {
	entries := history.Entries()
	n, err := strconv.Atoi(sel)
	if err != nil || n < 1 || n > len(entries) {
		return fmt.Errorf("no session %q, run: nyaya sessions list", sel)
	}
	entry := entries[n-1]

	client := NewAPIClient(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := client.DeleteConversation(ctx, entry.ID); err != nil && !api.IsNotFound(err) {
		fmt.Println(warningStyle.Render("Server delete failed: " + err.Error()))
	}

	if err := history.Remove(entry.ID); err != nil {
		return err
	}
	if session, err := store.NewSessionStore(store.TTLFromDays(cfg.History.SessionDays)); err == nil && session.Current() == entry.ID {
		_ = session.Clear()
	}

	fmt.Println(infoStyle.Render(fmt.Sprintf("Deleted %q.", entry.Name)))
	return nil
}
