package modules

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/quocvuong92/monaca-cli/internal/cloud"
	"github.com/quocvuong92/monaca-cli/internal/dispatch"
)

// Sync moves project files between the working directory and Monaca Cloud.
type Sync struct {
	env *Env
}

func (m *Sync) Run(ctx context.Context, name string, inv dispatch.Invocation) (*dispatch.Result, error) {
	switch name {
	case "upload", "download", "clone", "import":
	default:
		return nil, errUnknownTask(name)
	}
	if err := m.env.requireLogin(ctx); err != nil {
		return nil, err
	}

	switch name {
	case "upload":
		return nil, m.upload(ctx, inv)
	case "download":
		return nil, m.download(ctx, inv)
	case "clone":
		return nil, m.clone(ctx, inv, true)
	default:
		return nil, m.clone(ctx, inv, false)
	}
}

func syncOptions(opts dispatch.Options) cloud.SyncOptions {
	return cloud.SyncOptions{
		Delete: opts.Bool("delete"),
		Force:  opts.Bool("force"),
		DryRun: opts.Bool("dry-run"),
	}
}

func (m *Sync) upload(ctx context.Context, inv dispatch.Invocation) error {
	env := m.env
	opts := syncOptions(inv.Options)

	n := 0
	_, err := env.Cloud.UploadProject(ctx, env.Dir, opts, func(p cloud.UploadProgress) {
		n++
		env.printProgress(p)
	})
	if err != nil {
		return fmt.Errorf("Upload failed: %w", err)
	}

	switch {
	case opts.DryRun:
		env.Console.Printf("Dry run: %d file(s) would be uploaded.\n", n)
	case n == 0:
		env.Console.Println("No changes to upload.")
	default:
		env.Console.Success("Project successfully uploaded to Monaca Cloud!")
	}
	return nil
}

func (m *Sync) download(ctx context.Context, inv dispatch.Invocation) error {
	env := m.env
	info, err := cloud.ReadProjectInfo(env.Dir)
	if err != nil {
		return err
	}
	if info.ProjectID == "" {
		return errors.New("this project is not linked to Monaca Cloud. Run 'monaca upload' or 'monaca clone' first")
	}

	opts := syncOptions(inv.Options)
	n := 0
	err = env.Cloud.DownloadProject(ctx, info.ProjectID, env.Dir, opts, func(p cloud.UploadProgress) {
		n++
		env.printProgress(p)
	})
	if err != nil {
		return fmt.Errorf("Download failed: %w", err)
	}

	switch {
	case opts.DryRun:
		env.Console.Printf("Dry run: %d file(s) would be downloaded.\n", n)
	case n == 0:
		env.Console.Println("Project is up to date.")
	default:
		env.Console.Success("Project successfully downloaded from Monaca Cloud!")
	}
	return nil
}

// clone copies a cloud project into a new directory. With link unset the
// copy is detached from the cloud project, which is what import does.
func (m *Sync) clone(ctx context.Context, inv dispatch.Invocation, link bool) error {
	env := m.env

	project, err := m.pickProject(ctx, inv)
	if err != nil {
		return err
	}

	name := project.Name
	if name == "" {
		name = project.ID
	}
	// A name chosen by the server must not leave the working directory; one
	// given on the command line is the user's choice.
	if len(inv.Args) > 0 {
		name = inv.Args[0]
	} else if !insideDir(env.Dir, env.path(name)) {
		return fmt.Errorf("cloud project name %q is not a valid directory name; pass the target directory as an argument", name)
	}
	dir := env.path(name)

	ok, err := emptyOrMissing(dir)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("directory %s already exists and is not empty", name)
	}

	env.Console.Println("Downloading " + project.Name + " into " + name + ".")
	if err := env.Cloud.DownloadProject(ctx, project.ID, dir, cloud.SyncOptions{Force: true}, env.printProgress); err != nil {
		return fmt.Errorf("Download failed: %w", err)
	}

	if !link {
		info := &cloud.ProjectInfo{Name: filepath.Base(dir)}
		if err := cloud.WriteProjectInfo(dir, info); err != nil {
			return err
		}
	}

	env.Console.Success("Project successfully copied to " + name + ".")
	return nil
}

func (m *Sync) pickProject(ctx context.Context, inv dispatch.Invocation) (*cloud.Project, error) {
	projects, err := m.env.Cloud.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	if len(projects) == 0 {
		return nil, errors.New("you have no projects on Monaca Cloud")
	}

	id := inv.Options.String("project-id")
	if id == "" {
		choices := make([]Choice, len(projects))
		for i, p := range projects {
			choices[i] = Choice{Value: p.ID, Description: p.Name}
		}
		if id, err = m.env.Prompter.Select("Project: ", choices); err != nil {
			return nil, err
		}
	}

	for i := range projects {
		if projects[i].ID == id {
			return &projects[i], nil
		}
	}
	return nil, fmt.Errorf("no project with id %s", id)
}
