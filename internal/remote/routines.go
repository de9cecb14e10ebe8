package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sadopc/routinr/internal/engine"
	"github.com/sadopc/routinr/internal/routine"
)

var _ engine.Backend = (*Client)(nil)

// routineList accepts both {"routines": [...]} and the legacy
// [{"routines": [...]}] data shapes.
type routineList []routine.Record

func (l *routineList) UnmarshalJSON(data []byte) error {
	var obj struct {
		Routines []routine.Record `json:"routines"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		*l = obj.Routines
		return nil
	}
	var arr []struct {
		Routines []routine.Record `json:"routines"`
	}
	if err := json.Unmarshal(data, &arr); err != nil {
		return fmt.Errorf("unexpected routines payload: %w", err)
	}
	if len(arr) > 0 {
		*l = arr[0].Routines
	}
	return nil
}

func (c *Client) ListRoutines(ctx context.Context, token string) ([]routine.Record, error) {
	var list routineList
	if err := c.do(ctx, http.MethodGet, "/routines", token, nil, nil, &list); err != nil {
		return nil, fmt.Errorf("list routines: %w", err)
	}
	return list, nil
}

func (c *Client) CreateRoutine(ctx context.Context, token string, in routine.CreateInput) (*routine.Record, error) {
	var rec routine.Record
	if err := c.do(ctx, http.MethodPost, "/routines", token, nil, in, &rec); err != nil {
		return nil, fmt.Errorf("create routine: %w", err)
	}
	return &rec, nil
}

func (c *Client) UpdateRoutine(ctx context.Context, token string, in routine.UpdateInput) (*routine.Record, error) {
	var rec routine.Record
	if err := c.do(ctx, http.MethodPatch, "/routines/"+url.PathEscape(in.ID), token, nil, in, &rec); err != nil {
		return nil, fmt.Errorf("update routine %s: %w", in.ID, err)
	}
	return &rec, nil
}

func (c *Client) UpdateRoutineTimer(ctx context.Context, token string, in routine.TimerUpdate) (*routine.Record, error) {
	var rec routine.Record
	if err := c.do(ctx, http.MethodPatch, "/routines/"+url.PathEscape(in.ID)+"/timer", token, nil, in, &rec); err != nil {
		return nil, fmt.Errorf("update routine timer %s: %w", in.ID, err)
	}
	return &rec, nil
}

func (c *Client) DeleteRoutine(ctx context.Context, token, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/routines/"+url.PathEscape(id), token, nil, nil, nil); err != nil {
		return fmt.Errorf("delete routine %s: %w", id, err)
	}
	return nil
}
