package cli

import (
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/routinr/internal/engine"
	"github.com/sadopc/routinr/internal/logger"
	"github.com/sadopc/routinr/internal/remote"
	"github.com/sadopc/routinr/internal/tui"
)

var _ tui.ProjectService = (*remote.Client)(nil)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *Context) error {
	client, err := ctx.Client()
	if err != nil {
		return err
	}
	token := ctx.Token()

	var prog atomic.Pointer[tea.Program]
	eng := engine.New(client, engine.Options{
		Token:       token,
		QueueSize:   ctx.Config.Sync.QueueSize,
		SyncTimeout: ctx.Config.Sync.Timeout,
		Logger:      logger.With("engine"),
		OnSyncError: func(err error) {
			if p := prog.Load(); p != nil {
				p.Send(tui.SyncErrorMsg(err))
			}
		},
	})
	defer eng.Close()

	opts := tui.Options{Engine: eng, Token: token}
	if token != "" {
		opts.Projects = client
	}

	p := tea.NewProgram(tui.NewApp(opts), tea.WithAltScreen())
	prog.Store(p)
	_, err = p.Run()
	return err
}
