// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/nyaya-tui/internal/util"
)

// =============================================================================
// SESSION STORE
// =============================================================================

// DefaultSessionTTL is how long a remembered conversation id stays
// valid before the client starts fresh.
const DefaultSessionTTL = 30 * 24 * time.Hour

// sessionFile is the persisted session state.
type sessionFile struct {
	ConversationID string    `json:"conversation_id"`
	SavedAt        time.Time `json:"saved_at"`
}

// SessionStore remembers the active conversation id across restarts,
// with an expiry so abandoned conversations are not silently resumed.
type SessionStore struct {
	path string
	ttl  time.Duration
}

// NewSessionStore creates a store backed by ~/.nyaya/session.json.
// A ttl of zero or less falls back to DefaultSessionTTL.
func NewSessionStore(ttl time.Duration) (*SessionStore, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewSessionStoreWithPath(filepath.Join(home, ".nyaya", "session.json"), ttl), nil
}

// TTLFromDays converts the configured session_days value to a TTL,
// falling back to the default when unset.
func TTLFromDays(days int) time.Duration {
	if days <= 0 {
		return DefaultSessionTTL
	}
	return time.Duration(days) * 24 * time.Hour
}

// NewSessionStoreWithPath creates a store backed by a specific file.
func NewSessionStoreWithPath(path string, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{path: path, ttl: ttl}
}

// Current returns the remembered conversation id, or empty if none is
// stored or the stored one has expired. An expired session file is
// removed.
func (s *SessionStore) Current() string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return ""
	}

	var sf sessionFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return ""
	}
	if sf.ConversationID == "" {
		return ""
	}
	if time.Since(sf.SavedAt) > s.ttl {
		os.Remove(s.path)
		return ""
	}
	return sf.ConversationID
}

// Save remembers a conversation id, refreshing its expiry.
func (s *SessionStore) Save(conversationID string) error {
	if conversationID == "" {
		return s.Clear()
	}

	data, err := json.MarshalIndent(sessionFile{
		ConversationID: conversationID,
		SavedAt:        time.Now(),
	}, "", "  ")
	if err != nil {
		return err
	}
	return util.AtomicWriteFile(s.path, data, 0600)
}

// Clear forgets the remembered conversation id.
func (s *SessionStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// =============================================================================
// PLACEHOLDER IDS
// =============================================================================

// placeholderPrefix marks client-generated ids that the server has not
// confirmed yet.
const placeholderPrefix = "local-"

// NewPlaceholderID generates a temporary conversation id for use until
// the server returns the authoritative one.
func NewPlaceholderID() string {
	return placeholderPrefix + uuid.NewString()
}

// IsPlaceholderID reports whether an id was generated locally.
func IsPlaceholderID(id string) bool {
	return len(id) > len(placeholderPrefix) && id[:len(placeholderPrefix)] == placeholderPrefix
}
