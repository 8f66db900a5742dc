package modules

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/quocvuong92/monaca-cli/internal/cloud"
	"github.com/quocvuong92/monaca-cli/internal/dispatch"
	"github.com/quocvuong92/monaca-cli/internal/display"
	"github.com/quocvuong92/monaca-cli/internal/executor"
)

// fakeCloud implements cloud.Client in memory.
type fakeCloud struct {
	loggedIn   bool
	reloginErr error
	calls      []string

	loginEmail, loginPassword string

	uploadFiles []string
	uploadErr   error
	uploadOpts  cloud.SyncOptions
	projectID   string

	buildOpts cloud.BuildOptions
	buildErr  error
	buildMsgs []string

	projects  []cloud.Project
	templates []cloud.Template
	template  string

	downloadID   string
	downloadOpts cloud.SyncOptions
	downloaded   map[string]string
}

var _ cloud.Client = (*fakeCloud)(nil)

func (f *fakeCloud) record(s string) { f.calls = append(f.calls, s) }

func (f *fakeCloud) Relogin(ctx context.Context) error {
	f.record("relogin")
	if f.reloginErr != nil {
		return f.reloginErr
	}
	if !f.loggedIn {
		return cloud.ErrNotLoggedIn
	}
	return nil
}

func (f *fakeCloud) Login(ctx context.Context, email, password string) error {
	f.record("login")
	if password != "secret" {
		return &cloud.APIError{StatusCode: 401, Message: "Monaca Cloud error: wrong email or password"}
	}
	f.loginEmail, f.loginPassword = email, password
	f.loggedIn = true
	return nil
}

func (f *fakeCloud) Logout(ctx context.Context) error {
	f.record("logout")
	f.loggedIn = false
	return nil
}

func (f *fakeCloud) UploadProject(ctx context.Context, dir string, opts cloud.SyncOptions, progress func(cloud.UploadProgress)) (string, error) {
	f.record("upload")
	f.uploadOpts = opts
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	for i, p := range f.uploadFiles {
		progress(cloud.UploadProgress{Index: i, Total: len(f.uploadFiles), Path: p})
	}
	return f.projectID, nil
}

func (f *fakeCloud) DownloadProject(ctx context.Context, projectID, dir string, opts cloud.SyncOptions, progress func(cloud.UploadProgress)) error {
	f.record("download")
	f.downloadID, f.downloadOpts = projectID, opts
	i := 0
	for p, content := range f.downloaded {
		progress(cloud.UploadProgress{Index: i, Total: len(f.downloaded), Path: p})
		i++
		if opts.DryRun {
			continue
		}
		full := filepath.Join(dir, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			return err
		}
	}
	if opts.DryRun {
		return nil
	}
	return cloud.WriteProjectInfo(dir, &cloud.ProjectInfo{ProjectID: projectID})
}

func (f *fakeCloud) BuildProject(ctx context.Context, projectID string, opts cloud.BuildOptions, progress func(string)) (*cloud.BuildResult, error) {
	f.record("build")
	f.buildOpts = opts
	for _, m := range f.buildMsgs {
		progress(m)
	}
	if f.buildErr != nil {
		return nil, f.buildErr
	}
	return &cloud.BuildResult{BuildID: "b1", Platform: opts.Platform, BinaryURL: "https://cloud.example/" + projectID + "/app.bin"}, nil
}

func (f *fakeCloud) BuildPageURL(projectID string) string {
	return "https://cloud.example/project/" + projectID + "/build"
}

func (f *fakeCloud) DownloadBuild(ctx context.Context, binaryURL, dest string) error {
	f.record("download-build")
	return os.WriteFile(dest, []byte(binaryURL), 0644)
}

func (f *fakeCloud) ListProjects(ctx context.Context) ([]cloud.Project, error) {
	f.record("projects")
	return f.projects, nil
}

func (f *fakeCloud) ListTemplates(ctx context.Context) ([]cloud.Template, error) {
	f.record("templates")
	return f.templates, nil
}

func (f *fakeCloud) DownloadTemplate(ctx context.Context, templateID, dir string) error {
	f.record("template " + templateID)
	f.template = templateID
	if err := os.MkdirAll(filepath.Join(dir, "www"), 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "www", "index.html"), []byte(templateID), 0644)
}

// scriptedPrompter answers from fixed values.
type scriptedPrompter struct {
	interactive bool
	inputs      []string
	password    string
	selectValue string
	selected    []Choice
}

func (p *scriptedPrompter) Interactive() bool { return p.interactive }

func (p *scriptedPrompter) Input(label string) (string, error) {
	if len(p.inputs) == 0 {
		return "", fmt.Errorf("unexpected prompt %q", label)
	}
	v := p.inputs[0]
	p.inputs = p.inputs[1:]
	return v, nil
}

func (p *scriptedPrompter) Password(string) (string, error) { return p.password, nil }

func (p *scriptedPrompter) Select(label string, choices []Choice) (string, error) {
	p.selected = choices
	if p.selectValue == "" {
		return "", ErrNotInteractive
	}
	return matchChoice(p.selectValue, choices)
}

// runnerLog records commands instead of running them.
type runnerLog struct {
	commands []string
	fail     string
}

func (r *runnerLog) Run(ctx context.Context, name string, args ...string) (*executor.ExecutionResult, error) {
	cmd := strings.TrimSpace(name + " " + strings.Join(args, " "))
	r.commands = append(r.commands, cmd)
	if r.fail != "" && strings.HasPrefix(cmd, r.fail) {
		return &executor.ExecutionResult{Command: cmd, ExitCode: 1}, fmt.Errorf("%s exited with status 1", cmd)
	}
	return &executor.ExecutionResult{Command: cmd}, nil
}

type harness struct {
	env    *Env
	cloud  *fakeCloud
	prompt *scriptedPrompter
	runner *runnerLog
	out    *bytes.Buffer
	opened []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		cloud:  &fakeCloud{loggedIn: true, projectID: "p1"},
		prompt: &scriptedPrompter{},
		runner: &runnerLog{},
		out:    &bytes.Buffer{},
	}
	h.env = &Env{
		Cloud:    h.cloud,
		Console:  &display.Console{Out: h.out, Err: h.out, Theme: display.NewTheme(true)},
		Runner:   h.runner,
		Prompter: h.prompt,
		Dir:      t.TempDir(),
		OpenBrowser: func(url string) bool {
			h.opened = append(h.opened, url)
			return true
		},
	}
	return h
}

func (h *harness) run(t *testing.T, m dispatch.Module, name string, args []string, opts dispatch.Options) (*dispatch.Result, error) {
	t.Helper()
	return m.Run(context.Background(), name, dispatch.Invocation{
		Info:    dispatch.Info{ClientType: "cli", ClientVersion: "2.0.0"},
		Args:    args,
		Options: opts,
	})
}

func (h *harness) write(t *testing.T, rel, content string) {
	t.Helper()
	full := filepath.Join(h.env.Dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}
