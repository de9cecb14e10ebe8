// Package cli holds the routinr subcommands.
package cli

import (
	"errors"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/sadopc/routinr/internal/auth"
	"github.com/sadopc/routinr/internal/config"
	"github.com/sadopc/routinr/internal/logger"
	"github.com/sadopc/routinr/internal/remote"
)

// Root is the kong command tree.
type Root struct {
	Version kong.VersionFlag `help:"Print version and exit."`
	Config  string           `help:"Config file path." type:"path"`
	Debug   bool             `help:"Log at debug level, also to stderr."`

	Tui      TuiCmd      `cmd:"" help:"Launch the dashboard." default:"1"`
	Serve    ServeCmd    `cmd:"" help:"Run the routinr API on SQLite."`
	Login    LoginCmd    `cmd:"" help:"Sign in and store the API token."`
	Signup   SignupCmd   `cmd:"" help:"Create an account."`
	Logout   LogoutCmd   `cmd:"" help:"Revoke and forget the stored token."`
	Routines RoutinesCmd `cmd:"" help:"List or add routines."`
}

// Context is passed to every command's Run method.
type Context struct {
	Config *config.Config
	Out    io.Writer
}

// NewContext loads configuration and starts file logging.
func NewContext(configPath string, debug bool) (*Context, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if debug {
		cfg.Log.Debug = true
	}
	if err := logger.Init(logger.Config{Debug: cfg.Log.Debug, Dir: cfg.Log.Dir}); err != nil {
		return nil, err
	}
	return &Context{Config: cfg, Out: os.Stdout}, nil
}

func (c *Context) Client() (*remote.Client, error) {
	return remote.New(remote.Config{
		BaseURL:    c.Config.API.URL,
		Timeout:    c.Config.API.Timeout,
		RateLimit:  c.Config.API.RateLimit,
		MaxRetries: c.Config.API.MaxRetries,
		Logger:     logger.With("remote"),
	})
}

// Token returns the stored token, or "" when signed out. An unusable
// keyring is logged and treated as signed out.
func (c *Context) Token() string {
	token, err := auth.Token()
	if err != nil {
		if !errors.Is(err, auth.ErrNotFound) {
			logger.Warn("read token", "err", err)
		}
		return ""
	}
	return token
}

var errSignedOut = errors.New("not signed in, run `routinr login` first")
