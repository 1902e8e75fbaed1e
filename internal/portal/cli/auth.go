package cli

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/photoportal/internal/common"
)

// SignIn prompts for credentials and signs in. The session holder picks the
// identity up from the auth event.
func (a *App) SignIn(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getSecret("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if email == "" || len(password) == 0 {
		a.notifier.Error("Email and password are required")
		return common.ErrorValidation
	}

	id, err := a.gw.SignIn(ctx, email, string(password))
	if err != nil {
		return a.fail(ctx, "Sign in failed", err)
	}

	a.syncIdentity(ctx)
	a.notifier.Success("Welcome back, " + displayName(id.Name, id.Email))
	return nil
}

// SignUp creates an account. The password is asked twice and must match.
func (a *App) SignUp(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter your name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getSecret("Choose a password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	confirm, err := getSecret("Repeat the password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	switch {
	case name == "" || email == "" || len(password) == 0:
		a.notifier.Error("Name, email and password are required")
		return common.ErrorValidation
	case string(password) != string(confirm):
		a.notifier.Error("Passwords do not match")
		return common.ErrorValidation
	}

	id, err := a.gw.SignUp(ctx, email, string(password), name)
	if err != nil {
		return a.fail(ctx, "Sign up failed", err)
	}

	a.syncIdentity(ctx)
	a.notifier.Success("Account created, welcome " + displayName(id.Name, id.Email))
	return nil
}

func (a *App) SignOut(ctx context.Context) error {
	if err := a.requireSignIn(); err != nil {
		return err
	}
	if err := a.gw.SignOut(ctx); err != nil {
		return a.fail(ctx, "Sign out failed", err)
	}
	return nil
}

func displayName(name, email string) string {
	if strings.TrimSpace(name) != "" {
		return name
	}
	return email
}
