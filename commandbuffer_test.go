// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpucache

import (
	"sync"
	"testing"
)

func TestTrackerPinsResource(t *testing.T) {
	res := newCachedFakeResource(64)
	tracker := NewCommandBufferTracker()

	tracker.Track(res)
	res.Unref() // caller done; submission still holds it

	if res.isPurgeable() {
		t.Error("resource purgeable while tracked by a command buffer")
	}

	tracker.Retire()
	if !res.isPurgeable() {
		t.Error("resource not purgeable after retirement")
	}
	if res.freed.Load() != 0 {
		t.Error("cache-owned resource freed at retirement")
	}
}

func TestTrackerRetireFreesLastReference(t *testing.T) {
	res := newFakeResource(64) // never cache-owned
	tracker := NewCommandBufferTracker()

	tracker.Track(res)
	res.Unref()

	if res.freed.Load() != 0 {
		t.Fatal("resource freed while the submission still references it")
	}
	tracker.Retire()
	if got := res.freed.Load(); got != 1 {
		t.Errorf("FreeGpuData calls after retirement = %d, want 1", got)
	}
}

func TestTrackerRetireIdempotent(t *testing.T) {
	res := newCachedFakeResource(64)
	tracker := NewCommandBufferTracker()
	tracker.Track(res)

	tracker.Retire()
	tracker.Retire() // second retirement must not double-unref

	if got := res.cmdBufRefs.Load(); got != 0 {
		t.Errorf("command-buffer refs = %d, want 0", got)
	}
	res.Unref()
}

func TestTrackerConcurrentRetire(t *testing.T) {
	res := newFakeResource(64)
	tracker := NewCommandBufferTracker()
	tracker.Track(res)
	res.Unref()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.Retire()
		}()
	}
	wg.Wait()

	if got := res.freed.Load(); got != 1 {
		t.Errorf("FreeGpuData calls = %d, want 1", got)
	}
}

func TestTrackerTrackTwiceTakesTwoRefs(t *testing.T) {
	res := newCachedFakeResource(64)
	tracker := NewCommandBufferTracker()

	tracker.Track(res)
	tracker.Track(res)
	if got := res.cmdBufRefs.Load(); got != 2 {
		t.Errorf("command-buffer refs = %d, want 2", got)
	}
	if got := tracker.Count(); got != 2 {
		t.Errorf("Count = %d, want 2", got)
	}

	tracker.Retire()
	if got := res.cmdBufRefs.Load(); got != 0 {
		t.Errorf("command-buffer refs after retirement = %d, want 0", got)
	}
	res.Unref()
}

func TestTrackerTrackAfterRetirePanics(t *testing.T) {
	res := newCachedFakeResource(64)
	tracker := NewCommandBufferTracker()
	tracker.Retire()

	mustPanic(t, "Track", func() { tracker.Track(res) })
	res.Unref()
}
