package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/sadopc/routinr/internal/auth"
	"github.com/sadopc/routinr/internal/logger"
	"github.com/sadopc/routinr/internal/remote"
	"github.com/sadopc/routinr/internal/routine"
)

var errFieldsRequired = errors.New("all fields are required")

type LoginCmd struct {
	Email    string `short:"e" help:"Account email."`
	Password string `env:"ROUTINR_PASSWORD" help:"Account password. Prompted for when empty."`
}

func (c *LoginCmd) Run(ctx *Context) error {
	if c.Email == "" || c.Password == "" {
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Email").Value(&c.Email),
				huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&c.Password),
			),
		)
		if err := form.Run(); err != nil {
			return err
		}
	}
	email := strings.TrimSpace(c.Email)
	if email == "" || c.Password == "" {
		return errFieldsRequired
	}

	client, err := ctx.Client()
	if err != nil {
		return err
	}
	sess, err := client.Login(context.Background(), email, c.Password)
	if err != nil {
		return err
	}
	if err := auth.SaveToken(sess.Token); err != nil {
		return err
	}

	name := sess.User.Name
	if name == "" {
		name = sess.User.Email
	}
	fmt.Fprintf(ctx.Out, "Signed in as %s\n", name)
	return nil
}

type SignupCmd struct {
	Name     string `help:"Display name."`
	Email    string `short:"e" help:"Account email."`
	Password string `env:"ROUTINR_PASSWORD" help:"Password. Prompted for when empty."`
	Confirm  string `help:"Password again. Prompted for when empty."`
}

func (c *SignupCmd) Run(ctx *Context) error {
	if c.Name == "" || c.Email == "" || c.Password == "" || c.Confirm == "" {
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Name").Value(&c.Name),
				huh.NewInput().Title("Email").Value(&c.Email),
				huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&c.Password),
				huh.NewInput().Title("Confirm password").EchoMode(huh.EchoModePassword).Value(&c.Confirm),
			),
		)
		if err := form.Run(); err != nil {
			return err
		}
	}

	in := remote.SignUpInput{
		Name:     strings.TrimSpace(c.Name),
		Email:    strings.TrimSpace(c.Email),
		Password: c.Password,
	}
	if in.Name == "" || in.Email == "" || in.Password == "" || c.Confirm == "" {
		return errFieldsRequired
	}
	if err := routine.ValidatePasswords(c.Password, c.Confirm); err != nil {
		return err
	}

	client, err := ctx.Client()
	if err != nil {
		return err
	}
	u, err := client.SignUp(context.Background(), in)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Account created for %s. Run `routinr login` to sign in.\n", u.Email)
	return nil
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *Context) error {
	token := ctx.Token()
	if token == "" {
		fmt.Fprintln(ctx.Out, "Not signed in")
		return nil
	}

	client, err := ctx.Client()
	if err != nil {
		return err
	}
	// the local token goes either way
	if err := client.Logout(context.Background(), token); err != nil && !errors.Is(err, remote.ErrUnauthorized) {
		logger.Warn("revoke token", "err", err)
	}
	if err := auth.DeleteToken(); err != nil && !errors.Is(err, auth.ErrNotFound) {
		return err
	}
	fmt.Fprintln(ctx.Out, "Signed out")
	return nil
}
