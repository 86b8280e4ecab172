package url2pdf

import (
	"sync/atomic"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// TestEvictionWatcher - Loop Lifecycle
// ---------------------------------------------------------------------------

func TestEvictionWatcher_Ticks(t *testing.T) {
	t.Parallel()

	var sweeps atomic.Int32
	w := newEvictionWatcher(5*time.Millisecond, func() { sweeps.Add(1) })
	w.Start()

	deadline := time.Now().Add(time.Second)
	for sweeps.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	w.Stop()

	if sweeps.Load() < 3 {
		t.Fatalf("sweeps = %d, want at least 3", sweeps.Load())
	}

	after := sweeps.Load()
	time.Sleep(20 * time.Millisecond)
	if sweeps.Load() != after {
		t.Error("sweep ran after Stop()")
	}
}

func TestEvictionWatcher_StopIdempotent(t *testing.T) {
	t.Parallel()

	w := newEvictionWatcher(time.Hour, func() { t.Error("unexpected sweep") })
	w.Start()
	w.Stop()
	w.Stop()
}

func TestEvictionWatcher_StopWaitsForSweep(t *testing.T) {
	t.Parallel()

	entered := make(chan struct{})
	var finished atomic.Bool
	var once atomic.Bool
	w := newEvictionWatcher(time.Millisecond, func() {
		if once.Swap(true) {
			return
		}
		close(entered)
		time.Sleep(20 * time.Millisecond)
		finished.Store(true)
	})
	w.Start()

	<-entered
	w.Stop()
	if !finished.Load() {
		t.Error("Stop() returned while a sweep was running")
	}
}
