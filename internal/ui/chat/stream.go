// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// stream.go - Render throttling for streamed content.
//
// This file implements render throttling for streaming responses.
// Chunks arrive far faster than the terminal can usefully repaint, so
// they are buffered and the viewport is refreshed at a capped frame
// rate instead of once per chunk.
package chat

import (
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// streamFPS caps viewport repaints during streaming.
const streamFPS = 30

// streamBuffer batches stream chunks between repaints.
// Chunks are written from Update when StreamChunkMsg arrives and
// drained on StreamTickMsg. The mutex keeps it safe even if a future
// caller writes from a goroutine.
type streamBuffer struct {
	mu        sync.Mutex
	pending   strings.Builder
	lastFlush time.Time
}

func newStreamBuffer() *streamBuffer {
	return &streamBuffer{lastFlush: time.Now()}
}

// Write appends a chunk to the pending buffer.
func (sb *streamBuffer) Write(text string) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.pending.WriteString(text)
}

// Flush drains the buffer if the frame interval has elapsed.
// Returns the drained content and whether anything was drained.
func (sb *streamBuffer) Flush() (string, bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if sb.pending.Len() == 0 {
		return "", false
	}
	if time.Since(sb.lastFlush) < time.Second/streamFPS {
		return "", false
	}
	return sb.drainLocked(), true
}

// ForceFlush drains the buffer regardless of timing. Used when the
// stream terminates so no trailing content is lost.
func (sb *streamBuffer) ForceFlush() (string, bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if sb.pending.Len() == 0 {
		return "", false
	}
	return sb.drainLocked(), true
}

// Reset discards pending content. Used on cancel and new queries.
func (sb *streamBuffer) Reset() {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.pending.Reset()
	sb.lastFlush = time.Now()
}

func (sb *streamBuffer) drainLocked() string {
	content := sb.pending.String()
	sb.pending.Reset()
	sb.lastFlush = time.Now()
	return content
}

// streamTickCmd schedules the next streaming repaint.
func streamTickCmd() tea.Cmd {
	return tea.Tick(time.Second/streamFPS, func(t time.Time) tea.Msg {
		return StreamTickMsg{Time: t}
	})
}
