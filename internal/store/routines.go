package store

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/sadopc/routinr/internal/routine"
)

const routineColumns = `id, user_id, name, duration, original_seconds, remaining_seconds, is_finished, created_at, updated_at`

func (s *Store) CreateRoutine(userID, name, duration string, secs int64) (*Routine, error) {
	id := uuid.NewString()
	now := s.timestamp()
	_, err := s.db.Exec(
		`INSERT INTO routines (`+routineColumns+`) VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		id, userID, name, duration, secs, secs, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert routine: %w", err)
	}
	return s.GetRoutine(userID, id)
}

func (s *Store) GetRoutine(userID, id string) (*Routine, error) {
	r := &Routine{}
	var finished int
	var createdAt, updatedAt string
	err := s.db.QueryRow(
		`SELECT `+routineColumns+` FROM routines WHERE id = ? AND user_id = ?`, id, userID,
	).Scan(&r.ID, &r.UserID, &r.Name, &r.Duration, &r.OriginalSeconds, &r.RemainingSeconds, &finished, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("get routine %s: %w", id, notFound(err))
	}
	r.IsFinished = finished == 1
	r.CreatedAt = parseTime(createdAt)
	r.UpdatedAt = parseTime(updatedAt)
	return r, nil
}

func (s *Store) ListRoutines(userID string) ([]Routine, error) {
	rows, err := s.db.Query(
		`SELECT `+routineColumns+` FROM routines WHERE user_id = ? ORDER BY created_at, rowid`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list routines: %w", err)
	}
	defer rows.Close()

	var routines []Routine
	for rows.Next() {
		var r Routine
		var finished int
		var createdAt, updatedAt string
		if err := rows.Scan(&r.ID, &r.UserID, &r.Name, &r.Duration, &r.OriginalSeconds, &r.RemainingSeconds, &finished, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		r.IsFinished = finished == 1
		r.CreatedAt = parseTime(createdAt)
		r.UpdatedAt = parseTime(updatedAt)
		routines = append(routines, r)
	}
	return routines, rows.Err()
}

// UpdateRoutine renames and re-times a routine that has not counted down
// yet. A routine with elapsed time is locked and yields routine.ErrLocked.
func (s *Store) UpdateRoutine(userID, id, name, duration string, secs int64) (*Routine, error) {
	res, err := s.db.Exec(
		`UPDATE routines SET name = ?, duration = ?, original_seconds = ?, remaining_seconds = ?, is_finished = 0, updated_at = ?
		 WHERE id = ? AND user_id = ? AND remaining_seconds = original_seconds AND is_finished = 0`,
		name, duration, secs, secs, s.timestamp(), id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update routine: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := s.GetRoutine(userID, id); err != nil {
			return nil, fmt.Errorf("update routine: %w", err)
		}
		return nil, fmt.Errorf("update routine %s: %w", id, routine.ErrLocked)
	}
	return s.GetRoutine(userID, id)
}

// UpdateRoutineTimer records countdown progress. remaining is clamped to
// [0, original]; a finished routine always has zero remaining.
func (s *Store) UpdateRoutineTimer(userID, id string, remaining int64, finished bool) (*Routine, error) {
	fin := 0
	if finished {
		fin = 1
		remaining = 0
	}
	if remaining < 0 {
		remaining = 0
	}
	res, err := s.db.Exec(
		`UPDATE routines SET remaining_seconds = MIN(?, original_seconds), is_finished = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		remaining, fin, s.timestamp(), id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update routine timer: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("update routine timer %s: %w", id, ErrNotFound)
	}
	return s.GetRoutine(userID, id)
}

func (s *Store) DeleteRoutine(userID, id string) error {
	res, err := s.db.Exec(`DELETE FROM routines WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete routine: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete routine %s: %w", id, ErrNotFound)
	}
	return nil
}
