package store

import (
	"time"

	"github.com/sadopc/routinr/internal/routine"
)

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Routine is a stored routine. A stored routine is never running: the
// countdown itself only lives in a client.
type Routine struct {
	ID               string
	UserID           string
	Name             string
	Duration         string
	OriginalSeconds  int64
	RemainingSeconds int64
	IsFinished       bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Record converts r to its wire form.
func (r Routine) Record() routine.Record {
	orig, rem := r.OriginalSeconds, r.RemainingSeconds
	running, finished := false, r.IsFinished
	return routine.Record{
		ID:                      r.ID,
		Name:                    r.Name,
		Duration:                r.Duration,
		OriginalDurationSeconds: &orig,
		RemainingSeconds:        &rem,
		IsRunning:               &running,
		IsFinished:              &finished,
	}
}

// EntryFilter is used to filter time entries in queries.
type EntryFilter struct {
	ProjectID string
	From      *time.Time
	To        *time.Time
	Limit     int
}
