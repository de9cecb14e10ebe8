package tui

import (
	"time"

	"github.com/sadopc/routinr/internal/project"
)

// tracker remembers when tracking started for each project so the view can
// show a live elapsed clock. A zero start means the project is tracking but
// the session was opened elsewhere.
type tracker struct {
	now     func() time.Time
	started map[string]time.Time
}

func newTracker(now func() time.Time) tracker {
	if now == nil {
		now = time.Now
	}
	return tracker{now: now, started: make(map[string]time.Time)}
}

func (t tracker) start(projectID string, at time.Time) {
	t.started[projectID] = at
}

// stop forgets the session and returns how long it ran, 0 when unknown.
func (t tracker) stop(projectID string) time.Duration {
	d := t.elapsed(projectID)
	delete(t.started, projectID)
	return d
}

func (t tracker) running(projectID string) bool {
	_, ok := t.started[projectID]
	return ok
}

func (t tracker) known(projectID string) bool {
	at, ok := t.started[projectID]
	return ok && !at.IsZero()
}

func (t tracker) elapsed(projectID string) time.Duration {
	at, ok := t.started[projectID]
	if !ok || at.IsZero() {
		return 0
	}
	return time.Duration(project.Elapsed(at, t.now())) * time.Second
}

func (t tracker) count() int {
	return len(t.started)
}

// reconcile aligns sessions with the server's view of which projects are
// tracking.
func (t tracker) reconcile(projects []project.Project) {
	tracking := make(map[string]bool, len(projects))
	for _, p := range projects {
		tracking[p.ID] = p.Tracking
	}
	for id := range t.started {
		if on, listed := tracking[id]; listed && !on {
			delete(t.started, id)
		}
	}
	for _, p := range projects {
		if p.Tracking && !t.running(p.ID) {
			t.started[p.ID] = time.Time{}
		}
	}
}
