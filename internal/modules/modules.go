// Package modules implements the task groups. Each group is a
// dispatch.Module bound to its group key by Register.
package modules

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/quocvuong92/monaca-cli/internal/cloud"
	"github.com/quocvuong92/monaca-cli/internal/constants"
	"github.com/quocvuong92/monaca-cli/internal/dispatch"
	"github.com/quocvuong92/monaca-cli/internal/display"
	"github.com/quocvuong92/monaca-cli/internal/executor"
)

// Env is what every task module works with.
type Env struct {
	Cloud       cloud.Client
	Console     *display.Console
	Runner      executor.Runner
	Prompter    Prompter
	Dir         string
	OpenBrowser func(url string) bool
}

// AuthError is returned by cloud tasks run without a valid session.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return "Must be signed in to use this command. Please sign in with 'monaca login'.\n" +
		"If you don't have an account yet you can create one at " + constants.RegisterURL
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Register binds every task group to its module.
func Register(table *dispatch.Table, env *Env) {
	table.Register("auth", &Auth{env: env})
	table.Register("cordova", &Cordova{env: env})
	table.Register("project", &Project{env: env})
	table.Register("proxy", &Proxy{env: env})
	table.Register("remote", &Remote{env: env})
	table.Register("serve", &Serve{env: env})
	table.Register("sync", &Sync{env: env})
}

// Requirements lists the tasks that show their help instead of running
// when positional arguments are missing.
func Requirements() map[string]dispatch.Requirement {
	return map[string]dispatch.Requirement{
		"create":       {MinArgs: 1},
		"remote build": {MinArgs: 1, UnlessOption: "browser"},
		"proxy set":    {MinArgs: 1},
	}
}

func errUnknownTask(name string) error {
	return fmt.Errorf("no such command: %s", name)
}

// requireLogin revalidates the session before a cloud task.
func (e *Env) requireLogin(ctx context.Context) error {
	err := e.Cloud.Relogin(ctx)
	if errors.Is(err, cloud.ErrNotLoggedIn) {
		return &AuthError{Err: err}
	}
	if err != nil {
		return fmt.Errorf("could not reach Monaca Cloud: %w", err)
	}
	return nil
}

// printProgress writes one "[xx.xx%] path" line.
func (e *Env) printProgress(p cloud.UploadProgress) {
	e.Console.Printf("%s%s\n", e.Console.Theme.Verbose("["+p.Percent()+"] "), p.Path)
}

func (e *Env) path(elem ...string) string {
	return filepath.Join(append([]string{e.Dir}, elem...)...)
}

func (e *Env) openBrowser(url string) {
	if e.OpenBrowser != nil {
		e.OpenBrowser(url)
	}
}

// insideDir reports whether target is strictly below root.
func insideDir(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == "." || filepath.IsAbs(rel) {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// emptyOrMissing reports whether dir can receive a new project.
func emptyOrMissing(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return len(entries) == 0, nil
}
