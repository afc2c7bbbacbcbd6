// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpucache

import "sync"

// CommandBufferTracker pins resources for the lifetime of one GPU
// submission. The recording path calls Track for every resource a command
// buffer touches; the completion path calls Retire once the GPU signals
// the submission finished. Between the two, each tracked resource carries
// a command-buffer ref that keeps its native memory alive even if every
// caller has already dropped its usage refs.
//
// Track and Retire may run on different goroutines; the tracker is safe
// for concurrent use. Retire is idempotent so a completion callback and a
// teardown path can both call it.
type CommandBufferTracker struct {
	mu      sync.Mutex
	tracked []Res
	retired bool
}

// NewCommandBufferTracker creates an empty tracker for one submission.
func NewCommandBufferTracker() *CommandBufferTracker {
	return &CommandBufferTracker{}
}

// Track takes a command-buffer ref on res, held until Retire. Tracking the
// same resource twice takes two refs and is harmless.
//
// Track panics if the tracker has already been retired; the command buffer
// it models no longer exists.
func (t *CommandBufferTracker) Track(res Res) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.retired {
		panic("gpucache: Track on a retired CommandBufferTracker")
	}
	res.resource().RefCommandBuffer()
	t.tracked = append(t.tracked, res)
}

// Retire drops every command-buffer ref the tracker holds. Resources whose
// last reference this was are freed before Retire returns. Subsequent
// calls are no-ops.
func (t *CommandBufferTracker) Retire() {
	t.mu.Lock()
	if t.retired {
		t.mu.Unlock()
		return
	}
	t.retired = true
	tracked := t.tracked
	t.tracked = nil
	t.mu.Unlock()

	// Unref outside the tracker lock: a drop to zero can run a native
	// free, and nothing here depends on tracker state anymore.
	for _, res := range tracked {
		res.resource().UnrefCommandBuffer()
	}
}

// Count returns the number of refs the tracker currently holds.
func (t *CommandBufferTracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.tracked)
}
