package cli

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/sadopc/routinr/internal/duration"
	"github.com/sadopc/routinr/internal/engine"
	"github.com/sadopc/routinr/internal/logger"
	"github.com/sadopc/routinr/internal/routine"
)

type RoutinesCmd struct {
	List RoutinesListCmd `cmd:"" help:"Print routines and the summary." default:"1"`
	Add  RoutinesAddCmd  `cmd:"" help:"Create a routine."`
}

type RoutinesListCmd struct{}

func (c *RoutinesListCmd) Run(ctx *Context) error {
	eng, _, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	if err := eng.Load(context.Background()); err != nil {
		return err
	}

	timers := eng.Routines()
	if len(timers) == 0 {
		fmt.Fprintln(ctx.Out, "No routines yet. Add one with `routinr routines add`.")
		return nil
	}
	fmt.Fprintln(ctx.Out, routineTable(timers))
	fmt.Fprintln(ctx.Out, summaryLine(routine.Summarize(timers)))
	return nil
}

type RoutinesAddCmd struct {
	Name     string   `arg:"" help:"Routine name."`
	Duration []string `arg:"" help:"Duration, e.g. 1h 30m or 45 (minutes)."`
}

func (c *RoutinesAddCmd) Run(ctx *Context) error {
	eng, failed, err := openEngine(ctx)
	if err != nil {
		return err
	}

	t, err := eng.AddDuration(c.Name, strings.Join(c.Duration, " "))
	if err != nil {
		eng.Close()
		return err
	}
	// Close waits for the create call to finish.
	if err := eng.Close(); err != nil {
		return err
	}
	if err := failed.Err(); err != nil {
		return fmt.Errorf("add %s: %w", t.Name, err)
	}
	fmt.Fprintf(ctx.Out, "Added %s (%s)\n", t.Name, t.Duration)
	return nil
}

// syncFailure keeps the first sync error of a one-shot command, whose
// remote calls are its only lasting effect.
type syncFailure struct {
	mu  sync.Mutex
	err error
}

func (f *syncFailure) record(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err == nil {
		f.err = err
	}
}

func (f *syncFailure) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// openEngine builds an engine for one-shot commands. Sync failures are
// logged and collected for the caller.
func openEngine(ctx *Context) (*engine.Engine, *syncFailure, error) {
	token := ctx.Token()
	if token == "" {
		return nil, nil, errSignedOut
	}
	client, err := ctx.Client()
	if err != nil {
		return nil, nil, err
	}
	failed := &syncFailure{}
	l := logger.With("engine")
	eng := engine.New(client, engine.Options{
		Token:       token,
		QueueSize:   ctx.Config.Sync.QueueSize,
		SyncTimeout: ctx.Config.Sync.Timeout,
		Logger:      l,
		OnSyncError: func(err error) {
			l.Error("sync failed", "err", err)
			failed.record(err)
		},
	})
	return eng, failed, nil
}

func routineTable(timers []routine.Timer) string {
	rows := make([][]string, 0, len(timers))
	for _, t := range timers {
		status := "idle"
		switch {
		case t.IsFinished:
			status = "finished"
		case t.Elapsed():
			status = "paused"
		}
		rows = append(rows, []string{t.Name, t.Duration, duration.FormatPrecise(t.RemainingSeconds), status})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("NAME", "DURATION", "REMAINING", "STATUS").
		Rows(rows...).
		String()
}

func summaryLine(s routine.Summary) string {
	return fmt.Sprintf("Total %s  Done %s  Remaining %s  (%.0f%%)",
		duration.Format(s.TotalSeconds), duration.Format(s.DoneSeconds),
		duration.FormatPrecise(s.RemainingSeconds), s.Percent())
}
