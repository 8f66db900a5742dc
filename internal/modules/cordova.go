package modules

import (
	"context"

	"github.com/quocvuong92/monaca-cli/internal/dispatch"
)

// Cordova forwards its tasks to the cordova CLI. build is prepare followed
// by compile.
type Cordova struct {
	env *Env
}

func (m *Cordova) Run(ctx context.Context, name string, inv dispatch.Invocation) (*dispatch.Result, error) {
	switch name {
	case "build":
		if err := m.cordova(ctx, "prepare", inv.Args); err != nil {
			return nil, err
		}
		return &dispatch.Result{NextTask: &dispatch.NextTask{Name: "compile", Set: "cordova", Args: inv.Args}}, nil
	case "plugin", "platform", "info", "prepare", "compile", "run", "emulate":
		return nil, m.cordova(ctx, name, inv.Args)
	}
	return nil, errUnknownTask(name)
}

func (m *Cordova) cordova(ctx context.Context, sub string, args []string) error {
	_, err := m.env.Runner.Run(ctx, "cordova", append([]string{sub}, args...)...)
	return err
}
