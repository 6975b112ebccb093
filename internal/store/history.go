// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store provides local persistence for conversation history
// and the active session.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jeranaias/nyaya-tui/internal/util"
)

// =============================================================================
// HISTORY ENTRY
// =============================================================================

// HistoryEntry is one conversation in the sidebar list.
type HistoryEntry struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
}

// DefaultMaxEntries is the history list cap.
const DefaultMaxEntries = 20

// =============================================================================
// HISTORY STORE
// =============================================================================

// HistoryStore persists the conversation history list as JSON. All
// operations write through to disk so the list survives restarts.
//
// The store is safe for concurrent use.
type HistoryStore struct {
	mu         sync.Mutex
	path       string
	maxEntries int
	entries    []HistoryEntry
}

// NewHistoryStore creates a store backed by ~/.nyaya/chat_history.json.
// A maxEntries of zero or less falls back to DefaultMaxEntries.
func NewHistoryStore(maxEntries int) (*HistoryStore, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewHistoryStoreWithPath(filepath.Join(home, ".nyaya", "chat_history.json"), maxEntries)
}

// NewHistoryStoreWithPath creates a store backed by a specific file.
func NewHistoryStoreWithPath(path string, maxEntries int) (*HistoryStore, error) {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	s := &HistoryStore{
		path:       path,
		maxEntries: maxEntries,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// load reads the history file. A missing or corrupted file yields an
// empty list rather than an error; history is best-effort data.
func (s *HistoryStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.entries = nil
			return nil
		}
		return err
	}

	var entries []HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		s.entries = nil
		return nil
	}

	if len(entries) > s.maxEntries {
		entries = entries[:s.maxEntries]
	}
	s.entries = entries
	return nil
}

// save writes the current list to disk atomically.
func (s *HistoryStore) save() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return err
	}
	return util.AtomicWriteFile(s.path, data, 0644)
}

// Entries returns a copy of the history list, most recent first.
func (s *HistoryStore) Entries() []HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]HistoryEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of stored entries.
func (s *HistoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Upsert moves the conversation to the front of the list, replacing
// any existing entry with the same id. The list is capped; the oldest
// entry falls off the end.
func (s *HistoryStore) Upsert(id, name string) error {
	if id == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := make([]HistoryEntry, 0, len(s.entries)+1)
	filtered = append(filtered, HistoryEntry{
		ID:        id,
		Name:      name,
		Timestamp: time.Now(),
	})
	for _, e := range s.entries {
		if e.ID != id {
			filtered = append(filtered, e)
		}
	}
	if len(filtered) > s.maxEntries {
		filtered = filtered[:s.maxEntries]
	}
	s.entries = filtered

	return s.save()
}

// Rename updates the display name of an entry without changing its
// position or timestamp.
func (s *HistoryStore) Rename(id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if s.entries[i].ID == id {
			s.entries[i].Name = name
			return s.save()
		}
	}
	return nil
}

// Remove deletes an entry by conversation id.
func (s *HistoryStore) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := s.entries[:0]
	for _, e := range s.entries {
		if e.ID != id {
			filtered = append(filtered, e)
		}
	}
	s.entries = filtered
	return s.save()
}

// Clear removes all entries.
func (s *HistoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	return s.save()
}

// Find returns the entry with the given id, if present.
func (s *HistoryStore) Find(id string) (HistoryEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if e.ID == id {
			return e, true
		}
	}
	return HistoryEntry{}, false
}
