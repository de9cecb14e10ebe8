package store

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/sadopc/routinr/internal/project"
)

const projectColumns = `p.id, p.name, p.description, p.amount, p.tags, p.archived, p.created_at, p.updated_at,
	EXISTS (SELECT 1 FROM time_entries e WHERE e.project_id = p.id AND e.end_time IS NULL)`

// CreateProject stores a validated project input.
func (s *Store) CreateProject(userID string, in project.Input) (*project.Project, error) {
	id := uuid.NewString()
	now := s.timestamp()
	var desc string
	var amount float64
	if in.Description != nil {
		desc = *in.Description
	}
	if in.Amount != nil {
		amount = *in.Amount
	}
	_, err := s.db.Exec(
		`INSERT INTO projects (id, user_id, name, description, amount, tags, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, userID, *in.Name, desc, amount, strings.Join(in.Tags, ","), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	return s.GetProject(userID, id)
}

func (s *Store) GetProject(userID, id string) (*project.Project, error) {
	row := s.db.QueryRow(
		`SELECT `+projectColumns+` FROM projects p WHERE p.id = ? AND p.user_id = ?`, id, userID,
	)
	p, err := scanProject(row)
	if err != nil {
		return nil, fmt.Errorf("get project %s: %w", id, notFound(err))
	}
	return p, nil
}

// ListProjects returns one page of the user's unarchived projects, ordered
// by name. Search matches name or description; every requested tag must be
// present.
func (s *Store) ListProjects(userID string, opts project.ListOptions) (*project.Page, error) {
	opts = opts.Normalize()

	query := `SELECT ` + projectColumns + ` FROM projects p WHERE p.user_id = ? AND p.archived = 0`
	args := []any{userID}
	if opts.Search != "" {
		query += ` AND (p.name LIKE ? OR p.description LIKE ?)`
		like := "%" + opts.Search + "%"
		args = append(args, like, like)
	}
	query += ` ORDER BY p.name COLLATE NOCASE`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var matched []project.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		if p.HasTags(opts.Tags) {
			matched = append(matched, *p)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	page := &project.Page{
		Projects:   []project.Project{},
		Pagination: project.Pagination{Page: opts.Page, Limit: opts.Limit, Total: len(matched)},
	}
	start := (opts.Page - 1) * opts.Limit
	if start < len(matched) {
		end := min(start+opts.Limit, len(matched))
		page.Projects = matched[start:end]
	}
	return page, nil
}

// UpdateProject applies the non-nil fields of in.
func (s *Store) UpdateProject(userID, id string, in project.Input) (*project.Project, error) {
	p, err := s.GetProject(userID, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Amount != nil {
		p.Amount = *in.Amount
	}
	if in.Tags != nil {
		p.Tags = in.Tags
	}

	_, err = s.db.Exec(
		`UPDATE projects SET name = ?, description = ?, amount = ?, tags = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		p.Name, p.Description, p.Amount, strings.Join(p.Tags, ","), s.timestamp(), id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return s.GetProject(userID, id)
}

func (s *Store) ArchiveProject(userID, id string) error {
	res, err := s.db.Exec(
		`UPDATE projects SET archived = 1, updated_at = ? WHERE id = ? AND user_id = ?`, s.timestamp(), id, userID,
	)
	if err != nil {
		return fmt.Errorf("archive project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("archive project %s: %w", id, ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner) (*project.Project, error) {
	p := &project.Project{}
	var tags, createdAt, updatedAt string
	var archived, tracking int
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Amount, &tags, &archived, &createdAt, &updatedAt, &tracking); err != nil {
		return nil, err
	}
	p.Tags = project.ParseTags(tags)
	p.Archived = archived == 1
	p.Tracking = tracking == 1
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return p, nil
}
