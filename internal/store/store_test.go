// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHistory(t *testing.T, max int) *HistoryStore {
	t.Helper()
	s, err := NewHistoryStoreWithPath(filepath.Join(t.TempDir(), "history.json"), max)
	require.NoError(t, err)
	return s
}

func TestHistoryUpsertMovesToFront(t *testing.T) {
	s := newTestHistory(t, 20)

	require.NoError(t, s.Upsert("a", "First"))
	require.NoError(t, s.Upsert("b", "Second"))
	require.NoError(t, s.Upsert("c", "Third"))

	entries := s.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "c", entries[0].ID)

	// Re-upserting an existing id moves it to the front without duplicating.
	require.NoError(t, s.Upsert("a", "First renamed"))
	entries = s.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "a", entries[0].ID)
	assert.Equal(t, "First renamed", entries[0].Name)
}

func TestHistoryCapEvictsOldest(t *testing.T) {
	s := newTestHistory(t, 20)

	for i := 0; i < 25; i++ {
		require.NoError(t, s.Upsert(fmt.Sprintf("conv-%d", i), fmt.Sprintf("Conversation %d", i)))
	}

	entries := s.Entries()
	require.Len(t, entries, 20)
	assert.Equal(t, "conv-24", entries[0].ID)
	assert.Equal(t, "conv-5", entries[19].ID)
}

func TestHistoryPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")

	s, err := NewHistoryStoreWithPath(path, 20)
	require.NoError(t, err)
	require.NoError(t, s.Upsert("x", "Persisted"))

	reopened, err := NewHistoryStoreWithPath(path, 20)
	require.NoError(t, err)
	entries := reopened.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "Persisted", entries[0].Name)
}

func TestHistoryCorruptedFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	s, err := NewHistoryStoreWithPath(path, 20)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
}

func TestHistoryRemoveAndClear(t *testing.T) {
	s := newTestHistory(t, 20)
	require.NoError(t, s.Upsert("a", "A"))
	require.NoError(t, s.Upsert("b", "B"))

	require.NoError(t, s.Remove("a"))
	_, found := s.Find("a")
	assert.False(t, found)
	assert.Equal(t, 1, s.Len())

	require.NoError(t, s.Clear())
	assert.Equal(t, 0, s.Len())
}

func TestHistoryRename(t *testing.T) {
	s := newTestHistory(t, 20)
	require.NoError(t, s.Upsert("a", "Old name"))
	require.NoError(t, s.Upsert("b", "B"))

	require.NoError(t, s.Rename("a", "New name"))

	entry, found := s.Find("a")
	require.True(t, found)
	assert.Equal(t, "New name", entry.Name)
	// Rename does not reorder.
	assert.Equal(t, "b", s.Entries()[0].ID)
}

func TestSessionSaveAndCurrent(t *testing.T) {
	s := NewSessionStoreWithPath(filepath.Join(t.TempDir(), "session.json"), DefaultSessionTTL)

	assert.Equal(t, "", s.Current())

	require.NoError(t, s.Save("conv-99"))
	assert.Equal(t, "conv-99", s.Current())

	require.NoError(t, s.Clear())
	assert.Equal(t, "", s.Current())
}

func TestSessionExpiry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	s := NewSessionStoreWithPath(path, time.Hour)

	// Write a session saved two hours ago.
	stale := fmt.Sprintf(`{"conversation_id": "old", "saved_at": %q}`,
		time.Now().Add(-2*time.Hour).Format(time.RFC3339))
	require.NoError(t, os.WriteFile(path, []byte(stale), 0600))

	assert.Equal(t, "", s.Current())

	// Expired file is removed.
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestTTLFromDays(t *testing.T) {
	assert.Equal(t, 7*24*time.Hour, TTLFromDays(7))
	// Non-positive settings fall back to the default.
	assert.Equal(t, DefaultSessionTTL, TTLFromDays(0))
	assert.Equal(t, DefaultSessionTTL, TTLFromDays(-3))
}

func TestPlaceholderIDs(t *testing.T) {
	id := NewPlaceholderID()
	assert.True(t, IsPlaceholderID(id))
	assert.NotEqual(t, id, NewPlaceholderID())

	assert.False(t, IsPlaceholderID("conv-123"))
	assert.False(t, IsPlaceholderID(""))
}
