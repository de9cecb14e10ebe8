package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/sadopc/routinr/internal/duration"
	"github.com/sadopc/routinr/internal/routine"
	"github.com/sadopc/routinr/internal/store"
)

// routineBody is accepted by create and update. Clients send whole seconds;
// a free-text duration is parsed when the seconds are missing.
type routineBody struct {
	Name            string `json:"name"`
	DurationSeconds int64  `json:"durationSeconds"`
	Duration        string `json:"duration"`
}

func (b routineBody) validate() (name string, secs int64, err error) {
	name, err = routine.ValidateName(b.Name)
	if err != nil {
		return "", 0, err
	}
	if b.DurationSeconds < 0 {
		return "", 0, &routine.ValidationError{Field: "durationSeconds", Message: "duration cannot be negative"}
	}
	if b.DurationSeconds > 0 {
		if err := routine.ValidateSeconds(b.DurationSeconds); err != nil {
			return "", 0, err
		}
		return name, b.DurationSeconds, nil
	}
	secs, err = routine.ParseDurationText(b.Duration)
	return name, secs, err
}

func records(rs []store.Routine) []routine.Record {
	out := make([]routine.Record, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Record())
	}
	return out
}

func (s *Server) handleListRoutines(w http.ResponseWriter, r *http.Request) {
	rs, err := s.store.ListRoutines(userFrom(r).ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "Routines fetched", map[string]any{"routines": records(rs)})
}

func (s *Server) handleCreateRoutine(w http.ResponseWriter, r *http.Request) {
	var body routineBody
	if err := decode(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	name, secs, err := body.validate()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	rt, err := s.store.CreateRoutine(userFrom(r).ID, name, duration.Display(secs), secs)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, "Routine created", rt.Record())
}

func (s *Server) handleUpdateRoutine(w http.ResponseWriter, r *http.Request) {
	var body routineBody
	if err := decode(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	name, secs, err := body.validate()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	rt, err := s.store.UpdateRoutine(userFrom(r).ID, mux.Vars(r)["id"], name, duration.Display(secs), secs)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "Routine updated", rt.Record())
}

func (s *Server) handleUpdateRoutineTimer(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RemainingSeconds *int64 `json:"remainingSeconds"`
		IsFinished       bool   `json:"isFinished"`
	}
	if err := decode(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	if body.RemainingSeconds == nil {
		s.fail(w, r, errBadRequest("remainingSeconds is required"))
		return
	}
	if *body.RemainingSeconds < 0 {
		s.fail(w, r, errBadRequest("remainingSeconds cannot be negative"))
		return
	}

	rt, err := s.store.UpdateRoutineTimer(userFrom(r).ID, mux.Vars(r)["id"], *body.RemainingSeconds, body.IsFinished)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.metrics.timerUpdates.WithLabelValues(strconv.FormatBool(body.IsFinished)).Inc()
	writeJSON(w, http.StatusOK, "Timer updated", rt.Record())
}

func (s *Server) handleDeleteRoutine(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteRoutine(userFrom(r).ID, mux.Vars(r)["id"]); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "Routine deleted", nil)
}
