// Package project holds the project and time-entry types shared by the API
// client and the reference server.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var (
	ErrInvalid        = errors.New("invalid project input")
	ErrNotFound       = errors.New("project not found")
	ErrAlreadyRunning = errors.New("project is already being tracked")
	ErrNotRunning     = errors.New("project is not being tracked")
)

type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Amount      float64   `json:"amount"`
	Tags        []string  `json:"tags"`
	Archived    bool      `json:"archived"`
	Tracking    bool      `json:"tracking"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// UnmarshalJSON accepts both "id" and the Mongo-style "_id".
func (p *Project) UnmarshalJSON(data []byte) error {
	type plain Project
	aux := struct {
		*plain
		MongoID string `json:"_id"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = aux.MongoID
	}
	return nil
}

// Entry is one tracked work session on a project. Duration is in whole
// seconds and is only set once the entry is stopped.
type Entry struct {
	ID        string     `json:"id"`
	ProjectID string     `json:"projectId"`
	Title     string     `json:"title"`
	Date      time.Time  `json:"date"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
	Duration  int64      `json:"duration"`
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	type plain Entry
	aux := struct {
		*plain
		MongoID string `json:"_id"`
	}{plain: (*plain)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = aux.MongoID
	}
	return nil
}

// Running reports whether the entry is still open.
func (e Entry) Running() bool {
	return e.EndedAt == nil
}

// History is the most recent finished sessions of a project plus the
// total tracked on it.
type History struct {
	Entries      []Entry `json:"history"`
	TotalSeconds int64   `json:"totalSeconds"`
}

// Input creates a project or, with nil-able fields left out, patches one.
type Input struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// ListOptions narrows a project listing.
type ListOptions struct {
	Page   int
	Limit  int
	Search string
	Tags   []string
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// Page is one page of a project listing.
type Page struct {
	Projects   []Project  `json:"projects"`
	Pagination Pagination `json:"pagination"`
}

// Normalize fills paging defaults.
func (o ListOptions) Normalize() ListOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Limit < 1 || o.Limit > 100 {
		o.Limit = 20
	}
	o.Search = strings.TrimSpace(o.Search)
	o.Tags = CleanTags(o.Tags)
	return o
}

// ValidateCreate checks a new project. A name is the only required field.
func ValidateCreate(in Input) (Input, error) {
	if in.Name == nil {
		return in, fmt.Errorf("%w: name is required", ErrInvalid)
	}
	return validate(in)
}

// ValidatePatch checks the fields present in a partial update.
func ValidatePatch(in Input) (Input, error) {
	if in.Name == nil && in.Description == nil && in.Amount == nil && in.Tags == nil {
		return in, fmt.Errorf("%w: nothing to update", ErrInvalid)
	}
	return validate(in)
}

func validate(in Input) (Input, error) {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return in, fmt.Errorf("%w: name is required", ErrInvalid)
		}
		in.Name = &name
	}
	if in.Description != nil {
		d := strings.TrimSpace(*in.Description)
		in.Description = &d
	}
	if in.Amount != nil && (*in.Amount < 0 || math.IsNaN(*in.Amount) || math.IsInf(*in.Amount, 0)) {
		return in, fmt.Errorf("%w: amount must be a non-negative number", ErrInvalid)
	}
	if in.Tags != nil {
		in.Tags = CleanTags(in.Tags)
	}
	return in, nil
}

// ValidateTitle trims the title a tracked session is closed with.
func ValidateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: title is required to stop tracking", ErrInvalid)
	}
	return title, nil
}

// ParseTags splits a comma separated tag list.
func ParseTags(s string) []string {
	return CleanTags(strings.Split(s, ","))
}

// CleanTags trims, lowercases and de-duplicates tags, keeping first-seen order.
func CleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// HasTags reports whether p carries every tag in want.
func (p Project) HasTags(want []string) bool {
	for _, w := range want {
		found := false
		for _, t := range p.Tags {
			if t == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Elapsed returns whole seconds between start and now, never negative.
func Elapsed(start, now time.Time) int64 {
	d := int64(now.Sub(start) / time.Second)
	if d < 0 {
		return 0
	}
	return d
}

// Ptr is a small helper for building Input literals.
func Ptr[T any](v T) *T { return &v }
