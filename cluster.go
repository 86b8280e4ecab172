package url2pdf

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-url2pdf/internal/queue"
)

// Cluster schedules page tasks over an elastic pool of browser workers.
//
// All bookkeeping (worker sets, waiting queue, worker statuses and counts)
// happens under one critical section. Worker announcements run inside it and
// only mark the cluster dirty; the pending dispatch runs before the section
// is released. Launches, page work and browser shutdown run in their own
// goroutines and re-enter the section to publish results.
type Cluster struct {
	cfg      Config
	launcher Launcher
	logger   *slog.Logger

	mu      sync.Mutex
	section sync.Locker

	all       *queue.Queue[*Worker]
	available *queue.Queue[*Worker]
	starting  *queue.Queue[*Worker]
	waiting   *queue.Queue[*Task]

	dirty   bool
	started bool
	closed  bool
	watcher *evictionWatcher
}

// criticalSection is the cluster lock. Unlock runs any dispatch requested
// while the lock was held.
type criticalSection struct {
	c *Cluster
}

func (s criticalSection) Lock() {
	s.c.mu.Lock()
}

func (s criticalSection) Unlock() {
	c := s.c
	for c.dirty {
		c.dirty = false
		c.dispatch()
	}
	c.mu.Unlock()
}

// NewCluster creates a cluster that launches browsers with launcher.
// Nothing is launched until the first task or Warmup.
func NewCluster(launcher Launcher, opts ...Option) (*Cluster, error) {
	if launcher == nil {
		return nil, ErrNilLauncher
	}

	c := &Cluster{
		cfg:       DefaultConfig(),
		launcher:  launcher,
		logger:    slog.Default(),
		all:       queue.New[*Worker](),
		available: queue.New[*Worker](),
		starting:  queue.New[*Worker](),
		waiting:   queue.New[*Task](),
	}
	c.section = criticalSection{c: c}

	for _, opt := range opts {
		opt(c)
	}
	if err := c.cfg.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Config returns the cluster configuration.
func (c *Cluster) Config() Config {
	return c.cfg
}

// Submit enqueues a task for url and waits for its result.
// Cancelling ctx stops the wait; the task itself still runs or times out.
func (c *Cluster) Submit(ctx context.Context, url string, page *PageOptions, action Action, opts *PDFOptions) ([]byte, error) {
	if url == "" {
		return nil, ErrEmptyURL
	}
	if action == nil {
		return nil, ErrNilAction
	}
	if err := page.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	task := NewTask(url, page, action, opts)
	if err := c.AddTask(task); err != nil {
		return nil, err
	}
	return task.Wait(ctx)
}

// AddTask arms the task's admission timeout and queues it for dispatch.
func (c *Cluster) AddTask(task *Task) error {
	if task.action == nil {
		return ErrNilAction
	}

	c.section.Lock()
	defer c.section.Unlock()

	if c.closed {
		return ErrClusterClosed
	}
	if !task.markSubmitted() {
		return fmt.Errorf("%w: %s", ErrTaskSubmitted, task.id)
	}
	c.startLocked()

	task.initTimeout(c.cfg.MaxPageWaitingTime, c.removeExpired)
	c.waiting.PushBack(task)
	c.logger.Debug("task queued", "task", task.id, "url", task.url, "waiting", c.waiting.Len())
	c.dirty = true
	return nil
}

// Warmup starts the cluster and waits until the minimum number of workers
// has reported ready. Workers whose launch fails are not waited for again.
func (c *Cluster) Warmup(ctx context.Context) error {
	c.section.Lock()
	if c.closed {
		c.section.Unlock()
		return ErrClusterClosed
	}
	c.startLocked()
	c.ensureMinimumNumOfWorkers()
	pending := c.starting.Slice()
	c.section.Unlock()

	var failed int
	for _, w := range pending {
		select {
		case <-w.readyCh:
		case <-ctx.Done():
			return ctx.Err()
		}
		c.section.Lock()
		ok, err := w.readyOK, w.launchErr
		c.section.Unlock()
		if !ok {
			failed++
			c.logger.Warn("warmup worker failed", "worker", w.id, "error", err)
		}
	}
	if failed > 0 && failed == len(pending) {
		return fmt.Errorf("%w: %d of %d workers failed to start", ErrBrowserLaunch, failed, len(pending))
	}
	return nil
}

// CloseAll closes every worker that has a running browser and waits for them.
// The cluster stays usable and regrows on the next dispatch.
func (c *Cluster) CloseAll(ctx context.Context) error {
	c.section.Lock()
	workers := c.closeableWorkers()
	c.section.Unlock()

	c.logger.Info("closing all browsers", "count", len(workers))
	return closeWorkers(ctx, workers)
}

// Close stops the watcher, rejects waiting tasks and closes every worker.
// It is safe to call more than once.
func (c *Cluster) Close(ctx context.Context) error {
	c.section.Lock()
	if c.closed {
		c.section.Unlock()
		return nil
	}
	c.closed = true
	watcher := c.watcher
	c.watcher = nil

	var rejected []*Task
	for {
		t, ok := c.waiting.PopFront()
		if !ok {
			break
		}
		rejected = append(rejected, t)
	}
	workers := c.all.Slice()
	c.section.Unlock()

	if watcher != nil {
		watcher.Stop()
	}
	for _, t := range rejected {
		t.Reject(ErrClusterClosed)
	}
	c.logger.Info("closing cluster", "workers", len(workers), "rejected", len(rejected))
	return closeWorkers(ctx, workers)
}

// startLocked launches the watcher on first use. Caller holds the section.
func (c *Cluster) startLocked() {
	if c.started {
		return
	}
	c.started = true
	c.watcher = newEvictionWatcher(c.cfg.WatchInterval, c.sweep)
	c.watcher.Start()
	c.logger.Info("cluster started",
		"min_workers", c.cfg.MinWorkers,
		"max_workers", c.cfg.MaxWorkers,
		"max_parallel_tasks", c.cfg.MaxParallelTasks)
}

// dispatch assigns waiting tasks to available workers, growing the pool when
// none is available. Caller holds the section.
func (c *Cluster) dispatch() {
	if c.closed {
		return
	}
	if c.available.Len() < 1 {
		c.ensureMinimumNumOfWorkers()
	}
	if c.waiting.IsEmpty() {
		return
	}
	if c.available.IsEmpty() {
		c.tryToCreateMoreWorkers()
		return
	}

	for {
		task, ok := c.waiting.PopFront()
		if !ok {
			return
		}
		if task.State() != TaskPending {
			continue
		}
		w := c.pickAWorker()
		if w == nil {
			c.waiting.PushFront(task)
			return
		}
		if !w.requestPageActionLocked(task) {
			if task.State() == TaskPending {
				c.waiting.PushFront(task)
			}
			return
		}
		c.logger.Debug("task assigned", "task", task.id, "worker", w.id)
	}
}

// pickAWorker returns the first available worker that can take a page.
func (c *Cluster) pickAWorker() *Worker {
	w, ok := c.available.Find(func(w *Worker) bool {
		return w.status.serving() && w.inflight < w.capacity
	})
	if !ok {
		return nil
	}
	return w
}

// ensureMinimumNumOfWorkers grows the pool up to MinWorkers.
func (c *Cluster) ensureMinimumNumOfWorkers() {
	for c.all.Len() < c.cfg.MinWorkers {
		if !c.createWorkerAndDispatch() {
			return
		}
	}
}

// tryToCreateMoreWorkers starts enough workers for the waiting queue, minus
// those already launching, within the MaxWorkers headroom.
func (c *Cluster) tryToCreateMoreWorkers() {
	capacity := c.cfg.MaxParallelTasks
	need := (c.waiting.Len()+capacity-1)/capacity - c.starting.Len()
	need = min(need, c.cfg.MaxWorkers-c.all.Len())
	for range max(need, 0) {
		c.createWorkerAndDispatch()
	}
}

// createWorkerAndDispatch registers a new worker and starts its launch. The
// dispatch follows from the worker's ready announcement. It reports false at
// the MaxWorkers ceiling.
func (c *Cluster) createWorkerAndDispatch() bool {
	if c.all.Len() >= c.cfg.MaxWorkers {
		return false
	}
	w := newWorker(c.launcher, c.section, c.cfg.MaxParallelTasks, c.cfg.closeGrace(), c.logger, c.onWorkerStatus)
	c.all.PushBack(w)
	c.starting.PushBack(w)
	w.launchLocked()
	c.logger.Debug("worker created", "worker", w.id, "workers", c.all.Len())
	return true
}

// onWorkerStatus keeps the worker sets in line with a transition.
// It runs inside the section.
func (c *Cluster) onWorkerStatus(w *Worker, prev, next WorkerStatus) {
	is := func(x *Worker) bool { return x == w }

	switch {
	case prev == StatusPending && next == StatusIdle:
		c.starting.Remove(is)
		if !c.available.Contains(is) {
			c.available.PushFront(w)
		}
		w.markReady(true)
		c.dirty = true

	case prev == StatusPending && next == StatusUnlink:
		c.starting.Remove(is)
		c.available.Remove(is)
		c.all.Remove(is)
		w.markReady(false)
		c.scheduleRetry()

	case next == StatusBusy:
		c.available.Remove(is)

	case prev == StatusBusy && next.serving():
		if !c.available.Contains(is) {
			c.available.PushBack(w)
		}
		c.dirty = true

	case next == StatusClosing:
		c.available.Remove(is)

	case next == StatusUnlink:
		c.available.Remove(is)
		c.all.Remove(is)
		c.dirty = true
	}

	if next == StatusActivePageClose {
		c.dirty = true
	}
}

// scheduleRetry requests a dispatch after LaunchRetryDelay.
func (c *Cluster) scheduleRetry() {
	time.AfterFunc(c.cfg.LaunchRetryDelay, func() {
		c.section.Lock()
		c.dirty = true
		c.section.Unlock()
	})
}

// removeExpired drops a timed out task from the waiting queue.
func (c *Cluster) removeExpired(t *Task) {
	c.section.Lock()
	defer c.section.Unlock()
	if c.waiting.Remove(func(x *Task) bool { return x.id == t.id }) > 0 {
		c.logger.Warn("task timed out waiting for a browser", "task", t.id, "url", t.url, "budget", c.cfg.MaxPageWaitingTime)
	}
}

// closeableWorkers lists workers with a running browser. Caller holds the section.
func (c *Cluster) closeableWorkers() []*Worker {
	var out []*Worker
	for w := range c.all.All() {
		if w.status.closeable() {
			out = append(out, w)
		}
	}
	return out
}

// sweep closes workers past their lifespan or idle budget.
func (c *Cluster) sweep() {
	now := time.Now()

	c.section.Lock()
	var expired []*Worker
	for w := range c.all.All() {
		if len(expired) >= c.cfg.MaxRemovalEachTime {
			break
		}
		if !w.status.closeable() {
			continue
		}
		tooOld := c.cfg.MaxLifeSpan > 0 && now.Sub(w.createdAt) >= c.cfg.MaxLifeSpan
		tooIdle := c.cfg.MaxIdleTime > 0 && now.Sub(w.lastActivity) >= c.cfg.MaxIdleTime
		if tooOld || tooIdle {
			c.logger.Info("evicting browser", "worker", w.id, "too_old", tooOld, "too_idle", tooIdle)
			expired = append(expired, w)
		}
	}
	c.section.Unlock()

	for _, w := range expired {
		go func() {
			if err := w.close(context.Background()); err != nil {
				c.logger.Warn("evicting browser", "worker", w.id, "error", err)
			}
		}()
	}
}

// closeWorkers closes workers concurrently and waits for all of them.
func closeWorkers(ctx context.Context, workers []*Worker) error {
	var g errgroup.Group
	for _, w := range workers {
		g.Go(func() error {
			return w.close(ctx)
		})
	}
	return g.Wait()
}
