// Package routine holds the routine timer model, the policy deciding when a
// routine may change, and the aggregate summary shown on the dashboard.
package routine

import (
	"encoding/json"

	"github.com/sadopc/routinr/internal/duration"
)

// Timer is one tracked activity with a countdown. All durations are whole
// seconds and RemainingSeconds never exceeds OriginalSeconds.
type Timer struct {
	ID               string
	RemoteID         string
	Name             string
	Duration         string // display form, e.g. "1h 30m"
	OriginalSeconds  int64
	RemainingSeconds int64
	IsRunning        bool
	IsFinished       bool
}

// Elapsed reports whether any time has been counted down.
func (t Timer) Elapsed() bool {
	return t.RemainingSeconds < t.OriginalSeconds
}

// DoneSeconds is the amount already counted down.
func (t Timer) DoneSeconds() int64 {
	return t.OriginalSeconds - t.RemainingSeconds
}

// Record is the wire form of a routine as returned by the API. Optional
// fields are pointers so absence can be told apart from zero.
type Record struct {
	ID                      string `json:"id"`
	Name                    string `json:"name"`
	Duration                string `json:"duration,omitempty"`
	OriginalDurationSeconds *int64 `json:"originalDurationSeconds,omitempty"`
	RemainingSeconds        *int64 `json:"remainingSeconds,omitempty"`
	IsRunning               *bool  `json:"isRunning,omitempty"`
	IsFinished              *bool  `json:"isFinished,omitempty"`
}

// UnmarshalJSON accepts both "id" and the Mongo-style "_id".
func (r *Record) UnmarshalJSON(data []byte) error {
	type plain Record
	aux := struct {
		*plain
		MongoID string `json:"_id"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if r.ID == "" {
		r.ID = aux.MongoID
	}
	return nil
}

// CreateInput is the payload for creating a routine remotely.
type CreateInput struct {
	Name            string `json:"name"`
	DurationSeconds int64  `json:"durationSeconds"`
}

// UpdateInput renames and re-times an unstarted routine.
type UpdateInput struct {
	ID              string `json:"-"`
	Name            string `json:"name"`
	DurationSeconds int64  `json:"durationSeconds"`
}

// TimerUpdate carries countdown progress to the API.
type TimerUpdate struct {
	ID               string `json:"-"`
	RemainingSeconds int64  `json:"remainingSeconds"`
	IsFinished       bool   `json:"isFinished"`
}

// FromRecord normalises a remote record. The original duration comes from
// the explicit numeric field when positive, otherwise from the textual
// duration. ok is false when no duration in (0, MaxSeconds] can be derived.
func FromRecord(id string, rec Record) (t Timer, ok bool) {
	var original int64
	if rec.OriginalDurationSeconds != nil && *rec.OriginalDurationSeconds > 0 {
		original = *rec.OriginalDurationSeconds
	} else {
		original = duration.Parse(rec.Duration)
	}
	if original <= 0 || original > MaxSeconds {
		return Timer{}, false
	}

	remaining := original
	if rec.RemainingSeconds != nil {
		remaining = clamp(*rec.RemainingSeconds, 0, original)
	}
	finished := rec.IsFinished != nil && *rec.IsFinished
	if finished {
		remaining = 0
	}

	display := rec.Duration
	if display == "" {
		display = duration.Format(original)
	}

	return Timer{
		ID:               id,
		RemoteID:         rec.ID,
		Name:             rec.Name,
		Duration:         display,
		OriginalSeconds:  original,
		RemainingSeconds: remaining,
		IsFinished:       finished,
	}, true
}

// ToRecord renders a timer in wire form.
func ToRecord(t Timer) Record {
	id := t.RemoteID
	if id == "" {
		id = t.ID
	}
	original, remaining := t.OriginalSeconds, t.RemainingSeconds
	running, finished := t.IsRunning, t.IsFinished
	return Record{
		ID:                      id,
		Name:                    t.Name,
		Duration:                t.Duration,
		OriginalDurationSeconds: &original,
		RemainingSeconds:        &remaining,
		IsRunning:               &running,
		IsFinished:              &finished,
	}
}

func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
