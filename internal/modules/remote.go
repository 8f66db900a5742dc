package modules

import (
	"context"
	"fmt"

	"github.com/quocvuong92/monaca-cli/internal/cloud"
	"github.com/quocvuong92/monaca-cli/internal/dispatch"
	"github.com/quocvuong92/monaca-cli/internal/display"
)

// Remote builds on Monaca Cloud.
type Remote struct {
	env *Env
}

func (m *Remote) Run(ctx context.Context, name string, inv dispatch.Invocation) (*dispatch.Result, error) {
	if name != "remote build" {
		return nil, errUnknownTask(name)
	}
	if err := m.env.requireLogin(ctx); err != nil {
		return nil, err
	}
	if inv.Options.Bool("browser") {
		return nil, m.buildInBrowser(ctx)
	}
	return nil, m.build(ctx, inv)
}

func (m *Remote) upload(ctx context.Context) (string, error) {
	env := m.env
	env.Console.Println("Uploading project to the Monaca Cloud.")
	projectID, err := env.Cloud.UploadProject(ctx, env.Dir, cloud.SyncOptions{}, env.printProgress)
	if err != nil {
		return "", fmt.Errorf("Upload failed: %w", err)
	}
	return projectID, nil
}

func (m *Remote) buildInBrowser(ctx context.Context) error {
	projectID, err := m.upload(ctx)
	if err != nil {
		return err
	}
	url := m.env.Cloud.BuildPageURL(projectID)
	m.env.Console.Println("Project successfully uploaded. Opening the build page:")
	m.env.Console.Println("  " + url)
	m.env.openBrowser(url)
	return nil
}

func (m *Remote) build(ctx context.Context, inv dispatch.Invocation) error {
	env := m.env
	platform := inv.Args[0]
	if !cloud.ValidPlatform(platform) {
		return cloud.ErrInvalidPlatform
	}

	projectID, err := m.upload(ctx)
	if err != nil {
		return err
	}
	env.Console.Println("Project successfully uploaded. Building project.")

	opts := cloud.BuildOptions{
		Platform:       platform,
		BuildType:      inv.Options.String("build-type"),
		AndroidWebview: inv.Options.String("android_webview"),
		AndroidArch:    inv.Options.String("android_arch"),
	}

	sp := display.NewSpinner(env.Console.Out, "Building project...")
	sp.Start()
	result, err := env.Cloud.BuildProject(ctx, projectID, opts, sp.Update)
	sp.Stop()
	if err != nil {
		return fmt.Errorf("Build failed: %w", err)
	}

	env.Console.Success("Build successful!")
	if qr, err := display.QRCode(result.BinaryURL); err == nil {
		env.Console.Println(qr)
	}
	env.Console.Println("Download link: " + result.BinaryURL + "\n")

	if out := inv.Options.String("output"); out != "" {
		if err := env.Cloud.DownloadBuild(ctx, result.BinaryURL, out); err != nil {
			return err
		}
		env.Console.Success("Saved build to " + out)
	}
	return nil
}
