package url2pdf

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
)

// WorkerStatus is the lifecycle position of a Worker.
type WorkerStatus int

// Worker statuses.
const (
	StatusInit WorkerStatus = iota
	StatusPending
	StatusIdle
	StatusActivePageOpen
	StatusActivePageClose
	StatusBusy
	StatusClosing
	StatusUnlink
)

var workerStatusNames = [...]string{
	StatusInit:            "INIT",
	StatusPending:         "PENDING",
	StatusIdle:            "IDLE",
	StatusActivePageOpen:  "ACTIVE_PAGE_OPEN",
	StatusActivePageClose: "ACTIVE_PAGE_CLOSE",
	StatusBusy:            "BUSY",
	StatusClosing:         "CLOSING",
	StatusUnlink:          "UNLINK",
}

func (s WorkerStatus) String() string {
	if s < 0 || int(s) >= len(workerStatusNames) {
		return "UNKNOWN"
	}
	return workerStatusNames[s]
}

// serving reports whether a worker in this status may take a new page.
func (s WorkerStatus) serving() bool {
	switch s {
	case StatusIdle, StatusActivePageOpen, StatusActivePageClose:
		return true
	}
	return false
}

// closeable reports whether a worker in this status has a browser to close.
func (s WorkerStatus) closeable() bool {
	return s.serving() || s == StatusBusy
}

// cacheBustParam is appended to page URLs when PageOptions.CacheBust is set.
const cacheBustParam = "randomPrefix"

// statusListener observes worker transitions. It runs with the worker lock held.
type statusListener func(w *Worker, prev, next WorkerStatus)

// Worker owns one browser process and runs up to capacity pages on it.
// All mutable fields are guarded by mu, which is shared with the owning cluster.
type Worker struct {
	id       string
	launcher Launcher
	mu       sync.Locker
	capacity int
	grace    time.Duration
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	browser      Browser
	status       WorkerStatus
	inflight     int
	createdAt    time.Time
	lastActivity time.Time
	listener     statusListener
	drained      chan struct{}
	abandoned    bool
	launchErr    error

	readyCh   chan struct{}
	readyOK   bool
	readyDone bool
}

func newWorker(launcher Launcher, mu sync.Locker, capacity int, grace time.Duration, logger *slog.Logger, listener statusListener) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		id:       uuid.NewString(),
		launcher: launcher,
		mu:       mu,
		capacity: capacity,
		grace:    grace,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		status:   StatusInit,
		listener: listener,
		readyCh:  make(chan struct{}),
	}
}

// ID returns the worker identifier.
func (w *Worker) ID() string { return w.id }

// setStatus applies a transition and announces it. Caller holds mu.
func (w *Worker) setStatus(next WorkerStatus) {
	prev := w.status
	if prev == StatusUnlink {
		return
	}
	if prev == StatusClosing && next != StatusUnlink {
		return
	}

	switch next {
	case StatusActivePageOpen, StatusActivePageClose, StatusBusy:
		w.lastActivity = time.Now()
	}

	w.status = next
	// Page completions are re-announced even when the value is unchanged.
	if prev == next && next != StatusActivePageClose {
		return
	}
	w.logger.Debug("worker status", "worker", w.id, "from", prev, "to", next, "inflight", w.inflight)
	if w.listener != nil {
		w.listener(w, prev, next)
	}
}

// refreshStatus derives the status from the in-flight count. Caller holds mu.
func (w *Worker) refreshStatus(opened bool) {
	switch {
	case w.inflight >= w.capacity:
		w.setStatus(StatusBusy)
	case opened:
		w.setStatus(StatusActivePageOpen)
	default:
		w.setStatus(StatusActivePageClose)
	}
}

// markReady records the launch outcome once. Caller holds mu.
func (w *Worker) markReady(ok bool) {
	if w.readyDone {
		return
	}
	w.readyDone = true
	w.readyOK = ok
	close(w.readyCh)
}

// launchLocked moves the worker to Pending and starts the browser in the
// background. Caller holds mu.
func (w *Worker) launchLocked() {
	if w.status != StatusInit {
		return
	}
	w.setStatus(StatusPending)
	go w.runLaunch()
}

func (w *Worker) runLaunch() {
	browser, err := w.launcher.Launch(w.ctx)

	w.mu.Lock()
	if err != nil {
		w.launchErr = fmt.Errorf("%w: %v", ErrBrowserLaunch, err)
		if w.abandoned {
			w.logger.Debug("abandoned browser launch ended", "worker", w.id, "error", err)
		} else {
			w.logger.Error("browser launch failed", "worker", w.id, "error", w.launchErr)
		}
		w.setStatus(StatusUnlink)
		w.mu.Unlock()
		w.detachLater()
		return
	}

	if w.abandoned {
		w.setStatus(StatusUnlink)
		w.mu.Unlock()
		if cerr := browser.Close(); cerr != nil {
			w.logger.Warn("closing abandoned browser", "worker", w.id, "error", cerr)
		}
		w.detachLater()
		return
	}

	now := time.Now()
	w.browser = browser
	w.createdAt = now
	w.lastActivity = now
	w.setStatus(StatusIdle)
	w.logger.Info("browser launched", "worker", w.id)
	w.mu.Unlock()
}

// requestPageActionLocked hands task to this worker. It returns false without
// any state change when the worker cannot serve or the task was already
// claimed. Caller holds mu.
func (w *Worker) requestPageActionLocked(task *Task) bool {
	if w.inflight >= w.capacity || !w.status.serving() {
		return false
	}
	if !task.start() {
		return false
	}
	w.inflight++
	w.refreshStatus(true)
	go w.runPage(w.ctx, w.browser, task)
	return true
}

func (w *Worker) runPage(ctx context.Context, browser Browser, task *Task) {
	result, err := w.execute(ctx, browser, task)

	w.mu.Lock()
	w.inflight--
	w.refreshStatus(false)
	if w.inflight == 0 && w.drained != nil {
		close(w.drained)
		w.drained = nil
	}
	w.mu.Unlock()

	if err != nil {
		w.logger.Warn("page task failed", "worker", w.id, "task", task.id, "url", task.url, "error", err)
		task.Reject(err)
		return
	}
	task.Resolve(result)
}

func (w *Worker) execute(ctx context.Context, browser Browser, task *Task) ([]byte, error) {
	page, err := browser.NewPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() {
		if cerr := page.Close(); cerr != nil {
			w.logger.Debug("closing page", "worker", w.id, "task", task.id, "error", cerr)
		}
	}()

	target := task.url
	if task.pageOpts.CacheBust {
		target = withCacheBust(target)
	}
	if err := page.Navigate(ctx, target, task.pageOpts); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrPageLoad, task.url, err)
	}
	return runAction(ctx, task.action, page, task.actionOpts)
}

// runAction invokes action and converts a panic into an error.
func runAction(ctx context.Context, action Action, page Page, opts *PDFOptions) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("%w: panic: %v", ErrPageAction, r)
		}
	}()

	out, err = action(ctx, page, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPageAction, err)
	}
	return out, nil
}

// close drains in-flight pages within the grace period and terminates the
// browser. It is a no-op once the worker is Closing or Unlink. A worker
// still launching is abandoned and shut down when the launch returns.
func (w *Worker) close(ctx context.Context) error {
	w.mu.Lock()
	switch w.status {
	case StatusClosing, StatusUnlink, StatusInit:
		w.mu.Unlock()
		return nil
	case StatusPending:
		w.abandoned = true
		w.cancel()
		w.mu.Unlock()
		return nil
	}

	w.setStatus(StatusClosing)
	var drained chan struct{}
	if w.inflight > 0 {
		w.drained = make(chan struct{})
		drained = w.drained
	}
	browser := w.browser
	inflight := w.inflight
	w.mu.Unlock()

	if drained != nil {
		timer := time.NewTimer(w.grace)
		select {
		case <-drained:
		case <-timer.C:
			w.logger.Warn("grace period elapsed, aborting pages", "worker", w.id, "inflight", inflight, "grace", w.grace)
		case <-ctx.Done():
			w.logger.Warn("close cancelled, aborting pages", "worker", w.id, "error", ctx.Err())
		}
		timer.Stop()
	}
	w.cancel()

	var err error
	if browser != nil {
		err = browser.Close()
	}

	w.mu.Lock()
	w.browser = nil
	w.setStatus(StatusUnlink)
	w.mu.Unlock()
	w.detachLater()

	if err != nil {
		return fmt.Errorf("closing browser %s: %w", w.id, err)
	}
	w.logger.Info("browser closed", "worker", w.id)
	return nil
}

// detachLater drops the listener once late announcements have settled.
func (w *Worker) detachLater() {
	time.AfterFunc(unlinkDetachDelay, func() {
		w.mu.Lock()
		w.listener = nil
		w.mu.Unlock()
	})
}

// withCacheBust appends a random query parameter so the page bypasses caches.
func withCacheBust(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	q.Set(cacheBustParam, fmt.Sprint(rand.IntN(1000)))
	u.RawQuery = q.Encode()
	return u.String()
}
