package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sadopc/routinr/internal/project"
)

func (c *Client) ListProjects(ctx context.Context, token string, opts project.ListOptions) (*project.Page, error) {
	q := url.Values{}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Search != "" {
		q.Set("search", opts.Search)
	}
	if len(opts.Tags) > 0 {
		q.Set("tags", strings.Join(opts.Tags, ","))
	}

	var page project.Page
	if err := c.do(ctx, http.MethodGet, "/projects", token, q, nil, &page); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return &page, nil
}

func (c *Client) CreateProject(ctx context.Context, token string, in project.Input) (*project.Project, error) {
	var p project.Project
	if err := c.do(ctx, http.MethodPost, "/projects", token, nil, in, &p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return &p, nil
}

func (c *Client) UpdateProject(ctx context.Context, token, id string, in project.Input) (*project.Project, error) {
	var p project.Project
	if err := c.do(ctx, http.MethodPatch, "/projects/"+url.PathEscape(id), token, nil, in, &p); err != nil {
		return nil, fmt.Errorf("update project %s: %w", id, err)
	}
	return &p, nil
}

// ArchiveProject hides a project from listings. Its history is kept.
func (c *Client) ArchiveProject(ctx context.Context, token, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/projects/"+url.PathEscape(id), token, nil, nil, nil); err != nil {
		return fmt.Errorf("archive project %s: %w", id, err)
	}
	return nil
}

func (c *Client) StartTracking(ctx context.Context, token, id string) (*project.Entry, error) {
	var e project.Entry
	if err := c.do(ctx, http.MethodPost, "/projects/"+url.PathEscape(id)+"/start", token, nil, nil, &e); err != nil {
		return nil, fmt.Errorf("start tracking %s: %w", id, err)
	}
	return &e, nil
}

func (c *Client) StopTracking(ctx context.Context, token, id, title string) (*project.Entry, error) {
	body := struct {
		Title string `json:"title"`
	}{title}
	var e project.Entry
	if err := c.do(ctx, http.MethodPost, "/projects/"+url.PathEscape(id)+"/stop", token, nil, body, &e); err != nil {
		return nil, fmt.Errorf("stop tracking %s: %w", id, err)
	}
	return &e, nil
}

func (c *Client) ProjectHistory(ctx context.Context, token, id string, limit int) (*project.History, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var h project.History
	if err := c.do(ctx, http.MethodGet, "/projects/"+url.PathEscape(id)+"/history", token, q, nil, &h); err != nil {
		return nil, fmt.Errorf("project history %s: %w", id, err)
	}
	return &h, nil
}
