package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sadopc/routinr/internal/project"
)

const entryColumns = `id, project_id, title, start_time, end_time, duration`

// StartEntry opens a tracking session on the project. Only one session per
// project may be open at a time.
func (s *Store) StartEntry(userID, projectID string) (*project.Entry, error) {
	if _, err := s.GetProject(userID, projectID); err != nil {
		return nil, err
	}
	if _, err := s.RunningEntry(projectID); err == nil {
		return nil, project.ErrAlreadyRunning
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO time_entries (id, project_id, start_time) VALUES (?, ?, ?)`,
		id, projectID, s.timestamp(),
	)
	if err != nil {
		return nil, fmt.Errorf("start entry: %w", err)
	}
	return s.GetEntry(id)
}

// StopEntry closes the open session with a title and records its duration
// in whole seconds.
func (s *Store) StopEntry(userID, projectID, title string) (*project.Entry, error) {
	if _, err := s.GetProject(userID, projectID); err != nil {
		return nil, err
	}
	running, err := s.RunningEntry(projectID)
	if errors.Is(err, ErrNotFound) {
		return nil, project.ErrNotRunning
	}
	if err != nil {
		return nil, err
	}

	now := s.now()
	duration := project.Elapsed(running.Date, now)
	_, err = s.db.Exec(
		`UPDATE time_entries SET end_time = ?, duration = ?, title = ? WHERE id = ?`,
		now.Format(time.RFC3339), duration, title, running.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("stop entry: %w", err)
	}
	return s.GetEntry(running.ID)
}

func (s *Store) GetEntry(id string) (*project.Entry, error) {
	e, err := scanEntry(s.db.QueryRow(`SELECT `+entryColumns+` FROM time_entries WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get entry %s: %w", id, notFound(err))
	}
	return e, nil
}

func (s *Store) RunningEntry(projectID string) (*project.Entry, error) {
	e, err := scanEntry(s.db.QueryRow(
		`SELECT `+entryColumns+` FROM time_entries WHERE project_id = ? AND end_time IS NULL ORDER BY start_time DESC LIMIT 1`,
		projectID,
	))
	if err != nil {
		return nil, fmt.Errorf("get running entry: %w", notFound(err))
	}
	return e, nil
}

// ListEntries returns finished sessions, newest first.
func (s *Store) ListEntries(userID string, f EntryFilter) ([]project.Entry, error) {
	if _, err := s.GetProject(userID, f.ProjectID); err != nil {
		return nil, err
	}

	query := `SELECT ` + entryColumns + ` FROM time_entries WHERE project_id = ? AND end_time IS NOT NULL`
	args := []any{f.ProjectID}
	if f.From != nil {
		query += ` AND start_time >= ?`
		args = append(args, f.From.Format(time.RFC3339))
	}
	if f.To != nil {
		query += ` AND start_time < ?`
		args = append(args, f.To.Format(time.RFC3339))
	}
	query += ` ORDER BY start_time DESC, rowid DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	entries := []project.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// TotalTracked sums finished session durations for a project.
func (s *Store) TotalTracked(projectID string) (int64, error) {
	var total sql.NullInt64
	err := s.db.QueryRow(
		`SELECT COALESCE(SUM(duration), 0) FROM time_entries WHERE project_id = ? AND end_time IS NOT NULL`, projectID,
	).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total.Int64, nil
}

func scanEntry(row scanner) (*project.Entry, error) {
	e := &project.Entry{}
	var start string
	var end sql.NullString
	if err := row.Scan(&e.ID, &e.ProjectID, &e.Title, &start, &end, &e.Duration); err != nil {
		return nil, err
	}
	e.Date = parseTime(start)
	if end.Valid {
		t := parseTime(end.String)
		e.EndedAt = &t
	}
	return e, nil
}
