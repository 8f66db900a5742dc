package modules

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/quocvuong92/monaca-cli/internal/constants"
	"github.com/quocvuong92/monaca-cli/internal/dispatch"
)

// Auth runs login, logout and signup.
type Auth struct {
	env *Env
}

func (m *Auth) Run(ctx context.Context, name string, inv dispatch.Invocation) (*dispatch.Result, error) {
	switch name {
	case "login":
		return nil, m.login(ctx, inv)
	case "logout":
		return nil, m.logout(ctx)
	case "signup":
		return nil, m.signup(inv)
	}
	return nil, errUnknownTask(name)
}

func (m *Auth) login(ctx context.Context, inv dispatch.Invocation) error {
	env := m.env

	email := inv.Options.String("email")
	if email == "" {
		var err error
		if email, err = env.Prompter.Input("Email address: "); err != nil {
			return fmt.Errorf("failed to read email: %w", err)
		}
	}
	if email == "" {
		return errors.New("an email address is required to sign in")
	}

	password, err := env.Prompter.Password("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	if err := env.Cloud.Login(ctx, email, password); err != nil {
		return fmt.Errorf("unable to sign in: %w", err)
	}

	env.Console.Success("Successfully signed in as " + email + ".")
	return nil
}

func (m *Auth) logout(ctx context.Context) error {
	if err := m.env.Cloud.Logout(ctx); err != nil {
		return fmt.Errorf("unable to sign out: %w", err)
	}
	m.env.Console.Println("You have been signed out.")
	return nil
}

func (m *Auth) signup(inv dispatch.Invocation) error {
	target := constants.RegisterURL
	if email := inv.Options.String("email"); email != "" {
		target += "?email=" + url.QueryEscape(email)
	}
	m.env.Console.Println("Open the following page to create a Monaca account:")
	m.env.Console.Println("  " + target)
	m.env.openBrowser(target)
	return nil
}
