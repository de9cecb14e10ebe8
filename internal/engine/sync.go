package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// SyncError wraps a failed remote push. Local state is never rolled back
// because of one.
type SyncError struct {
	Op        string
	RoutineID string
	Err       error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync %s %s: %v", e.Op, e.RoutineID, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

const opTimer = "update-timer"

type syncTask struct {
	op        string
	routineID string
	// final marks a push that must reach the backend even when the backlog
	// is over its limit: completions, creates, edits and deletes.
	final bool
	run   func(ctx context.Context) error
}

// syncQueue runs remote pushes one at a time, in submission order, off the
// caller's goroutine. A timer push replaces a still-pending timer push for
// the same routine, so the backlog holds at most one per routine.
type syncQueue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending []syncTask
	limit   int
	closed  bool
	done    chan struct{}
	timeout time.Duration
	log     *log.Logger
	onError func(error)
}

func newSyncQueue(limit int, timeout time.Duration, l *log.Logger, onError func(error)) *syncQueue {
	q := &syncQueue{
		limit:   limit,
		done:    make(chan struct{}),
		timeout: timeout,
		log:     l,
		onError: onError,
	}
	q.cond = sync.NewCond(&q.mu)
	go q.run()
	return q
}

func (q *syncQueue) run() {
	defer close(q.done)
	for {
		task, ok := q.next()
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
		err := task.run(ctx)
		cancel()
		if err == nil {
			continue
		}
		serr := &SyncError{Op: task.op, RoutineID: task.routineID, Err: err}
		q.log.Warn("remote sync failed", "op", task.op, "routine", task.routineID, "err", err)
		if q.onError != nil {
			q.onError(serr)
		}
	}
}

// next blocks until a task is pending. It reports false once the queue is
// closed and drained.
func (q *syncQueue) next() (syncTask, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.pending) == 0 {
		if q.closed {
			return syncTask{}, false
		}
		q.cond.Wait()
	}
	task := q.pending[0]
	q.pending[0] = syncTask{}
	q.pending = q.pending[1:]
	return task, true
}

// enqueue never blocks. Over the limit, progress-only timer pushes are shed
// with a warning; final pushes are always kept.
func (q *syncQueue) enqueue(task syncTask) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	if task.op == opTimer && q.coalesce(task) {
		return
	}
	if !task.final && len(q.pending) >= q.limit {
		q.log.Warn("sync backlog full, dropping push", "op", task.op, "routine", task.routineID)
		return
	}
	q.pending = append(q.pending, task)
	q.cond.Signal()
}

// coalesce swaps task into the latest pending task for the same routine
// when that one is also a timer push. Callers hold q.mu.
func (q *syncQueue) coalesce(task syncTask) bool {
	for i := len(q.pending) - 1; i >= 0; i-- {
		p := q.pending[i]
		if p.routineID != task.routineID {
			continue
		}
		if p.op != opTimer {
			return false
		}
		task.final = task.final || p.final
		q.pending[i] = task
		return true
	}
	return false
}

// flush waits until every task queued before the call has run.
func (q *syncQueue) flush(ctx context.Context) error {
	reached := make(chan struct{})
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.pending = append(q.pending, syncTask{op: "flush", final: true, run: func(context.Context) error {
		close(reached)
		return nil
	}})
	q.cond.Signal()
	q.mu.Unlock()

	select {
	case <-reached:
		return nil
	case <-q.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// close stops accepting work and waits for queued pushes to finish.
func (q *syncQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.cond.Broadcast()
	q.mu.Unlock()
	<-q.done
}
