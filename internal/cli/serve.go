package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sadopc/routinr/internal/api"
	"github.com/sadopc/routinr/internal/logger"
	"github.com/sadopc/routinr/internal/store"
)

type ServeCmd struct {
	Addr string `help:"Listen address (defaults to server.addr)."`
	DB   string `help:"SQLite database path (defaults to server.db_path)." type:"path"`
}

func (c *ServeCmd) Run(ctx *Context) error {
	addr := c.Addr
	if addr == "" {
		addr = ctx.Config.Server.Addr
	}
	dbPath := c.DB
	if dbPath == "" {
		dbPath = ctx.Config.Server.DBPath
	}

	st, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := api.New(st, api.Options{Logger: logger.With("api")})
	fmt.Fprintf(ctx.Out, "routinr API on %s (database %s)\n", addr, dbPath)
	return srv.ListenAndServe(sigCtx, addr)
}
