// Package engine runs one independent countdown per running routine and
// mirrors progress to a remote backend on a best-effort basis.
package engine

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/sadopc/routinr/internal/duration"
	"github.com/sadopc/routinr/internal/routine"
)

var ErrClosed = errors.New("engine closed")

// Backend is the remote source of truth for routines. Every call carries
// the bearer token.
type Backend interface {
	ListRoutines(ctx context.Context, token string) ([]routine.Record, error)
	CreateRoutine(ctx context.Context, token string, in routine.CreateInput) (*routine.Record, error)
	UpdateRoutine(ctx context.Context, token string, in routine.UpdateInput) (*routine.Record, error)
	UpdateRoutineTimer(ctx context.Context, token string, in routine.TimerUpdate) (*routine.Record, error)
	DeleteRoutine(ctx context.Context, token, id string) error
}

type Options struct {
	// Token authenticates remote calls. Empty means signed out: the engine
	// starts empty and never talks to the backend.
	Token string

	Scheduler   Scheduler
	Interval    time.Duration
	QueueSize   int
	SyncTimeout time.Duration
	Logger      *log.Logger
	NewID       func() string
	OnSyncError func(error)
}

type registration struct {
	ticket Ticket
}

type Engine struct {
	mu       sync.Mutex
	backend  Backend
	token    string
	sched    Scheduler
	interval time.Duration
	newID    func() string
	log      *log.Logger

	routines *routine.Collection
	ticks    map[string]*registration
	queue    *syncQueue
	changes  chan struct{}
	loaded   bool
	closed   bool
}

func New(backend Backend, opts Options) *Engine {
	if opts.Scheduler == nil {
		opts.Scheduler = TickerScheduler{}
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	if opts.SyncTimeout <= 0 {
		opts.SyncTimeout = 10 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Engine{
		backend:  backend,
		token:    opts.Token,
		sched:    opts.Scheduler,
		interval: opts.Interval,
		newID:    opts.NewID,
		log:      opts.Logger,
		routines: routine.NewCollection(),
		ticks:    make(map[string]*registration),
		queue:    newSyncQueue(opts.QueueSize, opts.SyncTimeout, opts.Logger, opts.OnSyncError),
		changes:  make(chan struct{}, 1),
	}
}

// Authenticated reports whether remote sync is active.
func (e *Engine) Authenticated() bool {
	return e.token != "" && e.backend != nil
}

// Load fetches the remote routine list and merges it into local state.
// Signed out, it only marks the engine loaded. Local routines and their
// countdowns survive a reload: remote records matching a local routine are
// ignored, new ones are appended and routines removed remotely are
// detached and dropped. A failed fetch keeps local state and returns the
// error for display.
func (e *Engine) Load(ctx context.Context) error {
	if !e.Authenticated() {
		return e.markLoaded()
	}

	// Pending creates must land first so their remote ids match the listing.
	if err := e.queue.flush(ctx); err != nil {
		e.log.Error("load routines", "err", err)
		e.markLoaded()
		return &SyncError{Op: "list", Err: err}
	}
	records, err := e.backend.ListRoutines(ctx, e.token)
	if err != nil {
		e.log.Error("load routines", "err", err)
		e.markLoaded()
		return &SyncError{Op: "list", Err: err}
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	removed, skipped := e.routines.Reconcile(records, e.newID)
	for _, id := range removed {
		e.detach(id)
	}
	e.loaded = true
	e.notify()
	e.mu.Unlock()

	for _, rec := range skipped {
		e.log.Warn("skipping routine without a usable duration", "id", rec.ID, "name", rec.Name, "duration", rec.Duration)
	}
	return nil
}

func (e *Engine) markLoaded() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	e.loaded = true
	e.notify()
	return nil
}

func (e *Engine) Loaded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loaded
}

// Add creates a routine from separately entered hours and minutes.
func (e *Engine) Add(name string, hours, minutes int) (routine.Timer, error) {
	name, err := routine.ValidateName(name)
	if err != nil {
		return routine.Timer{}, err
	}
	secs, err := routine.SecondsFromHoursMinutes(hours, minutes)
	if err != nil {
		return routine.Timer{}, err
	}
	return e.add(name, secs)
}

// AddDuration creates a routine from free-text duration such as "1h 30m".
func (e *Engine) AddDuration(name, text string) (routine.Timer, error) {
	name, err := routine.ValidateName(name)
	if err != nil {
		return routine.Timer{}, err
	}
	secs, err := routine.ParseDurationText(text)
	if err != nil {
		return routine.Timer{}, err
	}
	return e.add(name, secs)
}

func (e *Engine) add(name string, secs int64) (routine.Timer, error) {
	t := &routine.Timer{
		ID:               e.newID(),
		Name:             name,
		Duration:         duration.Display(secs),
		OriginalSeconds:  secs,
		RemainingSeconds: secs,
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return routine.Timer{}, ErrClosed
	}
	e.routines.Add(t)

	if e.Authenticated() {
		in := routine.CreateInput{Name: name, DurationSeconds: secs}
		e.queue.enqueue(syncTask{op: "create", routineID: t.ID, final: true, run: func(ctx context.Context) error {
			rec, err := e.backend.CreateRoutine(ctx, e.token, in)
			if err != nil {
				return err
			}
			if rec != nil {
				e.mu.Lock()
				t.RemoteID = rec.ID
				e.mu.Unlock()
				e.notify()
			}
			return nil
		}})
	}
	e.notify()
	return *t, nil
}

// Start attaches a one-second countdown. Starting a routine that already
// has one is a no-op.
func (e *Engine) Start(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	t := e.routines.Get(id)
	if t == nil {
		return routine.ErrNotFound
	}
	if _, ok := e.ticks[id]; ok {
		return nil
	}
	if t.RemainingSeconds <= 0 {
		return routine.ErrFinished
	}

	t.IsRunning = true
	t.IsFinished = false
	reg := &registration{}
	reg.ticket = e.sched.Every(e.interval, func() { e.tick(id, reg) })
	e.ticks[id] = reg
	e.notify()
	return nil
}

func (e *Engine) tick(id string, reg *registration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	// A stale registration means Stop or Delete got here first.
	if e.ticks[id] != reg {
		return
	}
	t := e.routines.Get(id)
	if t == nil {
		e.detach(id)
		return
	}

	if t.RemainingSeconds > 1 {
		t.RemainingSeconds--
		e.notify()
		return
	}

	e.detach(id)
	t.RemainingSeconds = 0
	t.IsRunning = false
	t.IsFinished = true
	e.log.Info("routine finished", "id", id, "name", t.Name)
	e.pushTimer(t)
	e.notify()
}

// Stop detaches the countdown and pushes the current progress. A manual
// stop never marks the routine finished. Stopping an idle routine does
// nothing.
func (e *Engine) Stop(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	t := e.routines.Get(id)
	if t == nil {
		return routine.ErrNotFound
	}
	if !e.detach(id) {
		return nil
	}
	t.IsRunning = false
	e.pushTimer(t)
	e.notify()
	return nil
}

// Delete stops any countdown, removes the routine and asks the backend to
// delete it.
func (e *Engine) Delete(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	t := e.routines.Get(id)
	if t == nil {
		return routine.ErrNotFound
	}
	e.detach(id)
	t.IsRunning = false
	e.routines.Remove(id)

	if e.Authenticated() {
		e.queue.enqueue(syncTask{op: "delete", routineID: id, final: true, run: func(ctx context.Context) error {
			remoteID := e.remoteID(t)
			if remoteID == "" {
				e.log.Debug("skip delete of routine never stored remotely", "id", id)
				return nil
			}
			return e.backend.DeleteRoutine(ctx, e.token, remoteID)
		}})
	}
	e.notify()
	return nil
}

// Edit renames and re-times a routine that has not counted down yet.
func (e *Engine) Edit(id, name, durationText string) (routine.Timer, error) {
	name, err := routine.ValidateName(name)
	if err != nil {
		return routine.Timer{}, err
	}
	secs, err := routine.ParseDurationText(durationText)
	if err != nil {
		return routine.Timer{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return routine.Timer{}, ErrClosed
	}
	t := e.routines.Get(id)
	if t == nil {
		return routine.Timer{}, routine.ErrNotFound
	}
	if !routine.CanEdit(*t) {
		return routine.Timer{}, routine.ErrLocked
	}

	e.detach(id)
	t.Name = name
	t.Duration = duration.Display(secs)
	t.OriginalSeconds = secs
	t.RemainingSeconds = secs
	t.IsRunning = false
	t.IsFinished = false

	if e.Authenticated() {
		in := routine.UpdateInput{Name: name, DurationSeconds: secs}
		e.queue.enqueue(syncTask{op: "update", routineID: id, final: true, run: func(ctx context.Context) error {
			in.ID = e.remoteID(t)
			if in.ID == "" {
				return nil
			}
			_, err := e.backend.UpdateRoutine(ctx, e.token, in)
			return err
		}})
	}
	e.notify()
	return *t, nil
}

// Get returns a copy of the routine.
func (e *Engine) Get(id string) (routine.Timer, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.routines.Get(id)
	if t == nil {
		return routine.Timer{}, false
	}
	return *t, true
}

// Routines returns a copy of every routine in insertion order.
func (e *Engine) Routines() []routine.Timer {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.routines.Snapshot()
}

func (e *Engine) Summary() routine.Summary {
	return routine.Summarize(e.Routines())
}

// Changes delivers a signal after state changes. Signals coalesce, so a
// receiver should re-read state rather than count them.
func (e *Engine) Changes() <-chan struct{} {
	return e.changes
}

// Close cancels every countdown and waits for queued pushes to drain.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	for id := range e.ticks {
		if t := e.routines.Get(id); t != nil {
			t.IsRunning = false
		}
		e.detach(id)
	}
	e.mu.Unlock()

	e.queue.close()
	return nil
}

// detach removes the registration for id before cancelling it. Callers
// hold e.mu.
func (e *Engine) detach(id string) bool {
	reg, ok := e.ticks[id]
	if !ok {
		return false
	}
	delete(e.ticks, id)
	reg.ticket.Cancel()
	return true
}

// pushTimer enqueues the current countdown state. Callers hold e.mu.
func (e *Engine) pushTimer(t *routine.Timer) {
	if !e.Authenticated() {
		return
	}
	update := routine.TimerUpdate{RemainingSeconds: t.RemainingSeconds, IsFinished: t.IsFinished}
	e.queue.enqueue(syncTask{op: opTimer, routineID: t.ID, final: t.IsFinished, run: func(ctx context.Context) error {
		update.ID = e.remoteID(t)
		if update.ID == "" {
			e.log.Debug("skip timer push for routine never stored remotely", "id", t.ID)
			return nil
		}
		_, err := e.backend.UpdateRoutineTimer(ctx, e.token, update)
		return err
	}})
}

func (e *Engine) remoteID(t *routine.Timer) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return t.RemoteID
}

func (e *Engine) notify() {
	select {
	case e.changes <- struct{}{}:
	default:
	}
}
