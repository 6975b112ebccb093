// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cancel.go - Mutex-guarded cancellation for the in-flight stream.
//
// This file implements thread-safe cancel function handling: the cancel
// function is set by the root program when a stream starts and invoked
// from the Update loop, so access must be synchronized.
package chat

import (
	"context"
	"sync"
)

// cancelManager guards the current stream's cancel function.
// Must be held as a pointer (*cancelManager) in the Model so the mutex
// is not copied when Bubble Tea returns model copies from Update.
type cancelManager struct {
	mu         sync.Mutex
	cancelFunc context.CancelFunc
}

func newCancelManager() *cancelManager {
	return &cancelManager{}
}

// set stores a new cancel function, cancelling any previous one first
// so an abandoned context is never leaked.
func (cm *cancelManager) set(fn context.CancelFunc) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.cancelFunc != nil {
		cm.cancelFunc()
	}
	cm.cancelFunc = fn
}

// cancel invokes and clears the stored cancel function.
// Safe to call multiple times or with nothing set.
func (cm *cancelManager) cancel() {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.cancelFunc != nil {
		cm.cancelFunc()
		cm.cancelFunc = nil
	}
}

// SetCancelFunc stores the cancel function for the in-flight stream.
// Called by the root program when it spawns the streaming goroutine.
func (m *Model) SetCancelFunc(fn context.CancelFunc) {
	m.cancelMgr.set(fn)
}
