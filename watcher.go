package url2pdf

import (
	"sync"
	"time"
)

// evictionWatcher runs sweep on a fixed interval until stopped.
type evictionWatcher struct {
	interval time.Duration
	sweep    func()

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func newEvictionWatcher(interval time.Duration, sweep func()) *evictionWatcher {
	return &evictionWatcher{
		interval: interval,
		sweep:    sweep,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins the sweep loop in its own goroutine.
func (w *evictionWatcher) Start() {
	go w.loop()
}

// Stop ends the loop and waits for an in-progress sweep to return.
func (w *evictionWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
	})
	<-w.done
}

func (w *evictionWatcher) loop() {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.sweep()
		case <-w.stop:
			return
		}
	}
}
