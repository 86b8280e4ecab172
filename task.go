package url2pdf

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrTaskSubmitted is returned when a task is added to a cluster twice.
var ErrTaskSubmitted = errors.New("task already submitted")

// TaskState is the lifecycle position of a Task.
type TaskState int

// Task states. Transitions only move forward.
const (
	TaskPending TaskState = iota
	TaskWorking
	TaskFulfilled
	TaskRejected
	TaskTimedOut
)

var taskStateNames = [...]string{
	TaskPending:   "PENDING",
	TaskWorking:   "WORKING",
	TaskFulfilled: "FULFILLED",
	TaskRejected:  "REJECTED",
	TaskTimedOut:  "TIMEOUT",
}

func (s TaskState) String() string {
	if s < 0 || int(s) >= len(taskStateNames) {
		return "UNKNOWN"
	}
	return taskStateNames[s]
}

// Task is one unit of page work with a single-resolution result.
type Task struct {
	id         string
	url        string
	pageOpts   *PageOptions
	action     Action
	actionOpts *PDFOptions

	mu        sync.Mutex
	state     TaskState
	submitted bool
	createdAt time.Time
	expiresAt time.Time
	budget    time.Duration
	timer     *time.Timer
	settled   bool
	result    []byte
	err       error
	done      chan struct{}
}

// NewTask creates a pending task that runs action against url.
// A nil pageOpts uses DefaultPageOptions.
func NewTask(url string, pageOpts *PageOptions, action Action, actionOpts *PDFOptions) *Task {
	return &Task{
		id:         uuid.NewString(),
		url:        url,
		pageOpts:   pageOpts.withDefaults(),
		action:     action,
		actionOpts: actionOpts,
		state:      TaskPending,
		createdAt:  time.Now(),
		done:       make(chan struct{}),
	}
}

// ID returns the task identifier.
func (t *Task) ID() string { return t.id }

// URL returns the target address.
func (t *Task) URL() string { return t.url }

// State returns the current lifecycle state.
func (t *Task) State() TaskState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// CreatedAt returns when the admission timer was armed.
func (t *Task) CreatedAt() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.createdAt
}

// ExpiresAt returns the admission deadline, or zero when there is none.
func (t *Task) ExpiresAt() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.expiresAt
}

// Done is closed once the task settles.
func (t *Task) Done() <-chan struct{} { return t.done }

// Result returns the settled outcome. It is only meaningful after Done is closed.
func (t *Task) Result() ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result, t.err
}

// Wait blocks until the task settles or ctx is done.
// Cancelling ctx stops the wait, not the task.
func (t *Task) Wait(ctx context.Context) ([]byte, error) {
	select {
	case <-t.done:
		return t.Result()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Resolve fulfills a working task. It reports whether the call settled it.
func (t *Task) Resolve(result []byte) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.settled || t.state != TaskWorking {
		return false
	}
	t.state = TaskFulfilled
	t.result = result
	t.settle()
	return true
}

// Reject settles the task with err. It reports whether the call settled it.
func (t *Task) Reject(err error) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.settled {
		return false
	}
	t.stopTimer()
	t.state = TaskRejected
	t.err = err
	t.settle()
	return true
}

// markSubmitted reports false when the task was already handed to a cluster.
func (t *Task) markSubmitted() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.submitted || t.state != TaskPending {
		return false
	}
	t.submitted = true
	return true
}

// initTimeout arms the admission watchdog. A zero budget disables it.
// onExpire runs without the task lock held.
func (t *Task) initTimeout(budget time.Duration, onExpire func(*Task)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.createdAt = time.Now()
	t.budget = budget
	t.stopTimer()
	if budget <= 0 {
		t.expiresAt = time.Time{}
		return
	}
	t.expiresAt = t.createdAt.Add(budget)
	t.timer = time.AfterFunc(budget, func() {
		t.expire(onExpire)
	})
}

func (t *Task) expire(onExpire func(*Task)) {
	t.mu.Lock()
	if t.state != TaskPending {
		t.mu.Unlock()
		return
	}
	t.state = TaskTimedOut
	t.timer = nil
	budget := t.budget
	t.mu.Unlock()

	if onExpire != nil {
		onExpire(t)
	}
	t.Reject(&TimeoutError{Budget: budget})
}

// start claims the task for execution. It fails once the task left Pending.
func (t *Task) start() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != TaskPending {
		return false
	}
	t.stopTimer()
	t.state = TaskWorking
	return true
}

// secondsToExpire reports the remaining admission budget, or -1 without one.
func (t *Task) secondsToExpire(now time.Time) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.expiresAt.IsZero() {
		return -1
	}
	return max(t.expiresAt.Sub(now).Seconds(), 0)
}

func (t *Task) stopTimer() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *Task) settle() {
	t.settled = true
	close(t.done)
}
