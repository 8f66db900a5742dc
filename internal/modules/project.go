package modules

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/quocvuong92/monaca-cli/internal/cloud"
	"github.com/quocvuong92/monaca-cli/internal/constants"
	"github.com/quocvuong92/monaca-cli/internal/dispatch"
	"github.com/quocvuong92/monaca-cli/internal/logging"
)

// Project runs create and reconfigure.
type Project struct {
	env *Env
}

func (m *Project) Run(ctx context.Context, name string, inv dispatch.Invocation) (*dispatch.Result, error) {
	switch name {
	case "create":
		return nil, m.create(ctx, inv)
	case "reconfigure":
		return nil, m.reconfigure(inv)
	}
	return nil, errUnknownTask(name)
}

func (m *Project) create(ctx context.Context, inv dispatch.Invocation) error {
	env := m.env
	dir := env.path(inv.Args[0])

	ok, err := emptyOrMissing(dir)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("directory %s already exists and is not empty", inv.Args[0])
	}

	// Templates are public; a session is used when there is one.
	if err := env.Cloud.Relogin(ctx); err != nil && !errors.Is(err, cloud.ErrNotLoggedIn) {
		logging.Debug("relogin before create failed", logging.Fields{"error": err.Error()})
	}

	template, err := m.pickTemplate(ctx, inv)
	if err != nil {
		return err
	}

	env.Console.Println("Creating project from template " + template + "...")
	if err := env.Cloud.DownloadTemplate(ctx, template, dir); err != nil {
		_ = os.RemoveAll(dir)
		return err
	}

	info := &cloud.ProjectInfo{Name: filepath.Base(dir), Template: template}
	if err := cloud.WriteProjectInfo(dir, info); err != nil {
		return err
	}

	env.Console.Success("Project created successfully.")
	env.Console.Printf("\n  $ cd %s\n  $ monaca preview\n\n", inv.Args[0])
	return nil
}

func (m *Project) pickTemplate(ctx context.Context, inv dispatch.Invocation) (string, error) {
	if t := inv.Options.String("template"); t != "" {
		return t, nil
	}
	if !m.env.Prompter.Interactive() {
		return constants.DefaultTemplate, nil
	}

	templates, err := m.env.Cloud.ListTemplates(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list templates: %w", err)
	}
	if len(templates) == 0 {
		return constants.DefaultTemplate, nil
	}

	choices := make([]Choice, len(templates))
	for i, t := range templates {
		choices[i] = Choice{Value: t.ID, Description: t.Name}
	}
	return m.env.Prompter.Select("Template: ", choices)
}

// reconfigure writes the default project files that are missing.
func (m *Project) reconfigure(inv dispatch.Invocation) error {
	env := m.env
	if _, err := os.Stat(env.path("www")); err != nil {
		return fmt.Errorf("%s does not look like a Monaca project: www directory not found", absDir(env.Dir))
	}

	force := inv.Options.Bool("force")
	info, err := cloud.ReadProjectInfo(env.Dir)
	if err != nil {
		if !force {
			return err
		}
		info = &cloud.ProjectInfo{}
	}
	if info.Name != "" && !force {
		env.Console.Println("Project configuration is up to date.")
		return nil
	}

	if info.Name == "" {
		info.Name = filepath.Base(absDir(env.Dir))
	}
	if err := cloud.WriteProjectInfo(env.Dir, info); err != nil {
		return err
	}
	env.Console.Success("Wrote " + cloud.ProjectInfoPath(env.Dir))
	return nil
}

func absDir(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}
