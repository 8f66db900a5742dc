package dispatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/quocvuong92/monaca-cli/internal/logging"
	"github.com/quocvuong92/monaca-cli/internal/task"
)

// fakeHelp records which renderer was used.
type fakeHelp struct {
	calls []string
}

func (h *fakeHelp) Version(w io.Writer) {
	h.calls = append(h.calls, "version")
	fmt.Fprintln(w, "1.2.3")
}

func (h *fakeHelp) Top(w io.Writer, all, extended bool) {
	h.calls = append(h.calls, fmt.Sprintf("top all=%v extended=%v", all, extended))
}

func (h *fakeHelp) Task(w io.Writer, d *task.Descriptor) {
	h.calls = append(h.calls, "task "+d.Name)
}

// recorder is a module that logs every run and replies from a script.
type recorder struct {
	runs    []string
	invs    []Invocation
	replies map[string]*Result
	fail    map[string]error
}

func (r *recorder) Run(ctx context.Context, name string, inv Invocation) (*Result, error) {
	r.runs = append(r.runs, name)
	r.invs = append(r.invs, inv)
	if err := r.fail[name]; err != nil {
		return nil, err
	}
	return r.replies[name], nil
}

type fixture struct {
	d       *Dispatcher
	help    *fakeHelp
	cordova *recorder
	project *recorder
	remote  *recorder
	out     *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	group := func(key string, names ...string) *task.Group {
		var descs []task.Descriptor
		for _, n := range names {
			descs = append(descs, task.Descriptor{Name: n, ShowInHelp: true})
		}
		g, err := task.NewGroup(key, descs...)
		if err != nil {
			t.Fatal(err)
		}
		return g
	}
	reg, err := task.NewRegistry(
		group("cordova", "build", "prepare", "compile"),
		group("project", "create"),
		group("remote", "remote build"),
	)
	if err != nil {
		t.Fatal(err)
	}

	f := &fixture{
		help:    &fakeHelp{},
		cordova: &recorder{replies: map[string]*Result{}, fail: map[string]error{}},
		project: &recorder{replies: map[string]*Result{}, fail: map[string]error{}},
		remote:  &recorder{replies: map[string]*Result{}, fail: map[string]error{}},
		out:     &bytes.Buffer{},
	}
	table := NewTable()
	table.Register("cordova", f.cordova)
	table.Register("project", f.project)
	table.Register("remote", f.remote)

	f.d = &Dispatcher{
		Registry: reg,
		Modules:  table,
		Help:     f.help,
		Out:      f.out,
		Info:     Info{ClientType: "cli", ClientVersion: "2.0.0"},
		Requirements: map[string]Requirement{
			"create":       {MinArgs: 1},
			"remote build": {MinArgs: 1, UnlessOption: "browser"},
		},
		Log: logging.Discard(),
	}
	return f
}

func (f *fixture) dispatch(args []string, flags Flags, opts Options) error {
	return f.d.Dispatch(context.Background(), Request{Args: args, Flags: flags, Options: opts})
}

func (f *fixture) allRuns() int {
	return len(f.cordova.runs) + len(f.project.runs) + len(f.remote.runs)
}

func TestDispatch_Version(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		flags Flags
	}{
		{"flag", nil, Flags{Version: true}},
		{"flag beats help", nil, Flags{Version: true, Help: true}},
		{"flag with unknown task", []string{"does-not-exist"}, Flags{Version: true}},
		{"word", []string{"version"}, Flags{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if err := f.dispatch(tt.args, tt.flags, nil); err != nil {
				t.Fatalf("Dispatch() error = %v", err)
			}
			if len(f.help.calls) != 1 || f.help.calls[0] != "version" {
				t.Errorf("help calls = %v, want [version]", f.help.calls)
			}
			if f.allRuns() != 0 {
				t.Error("version must not run a task")
			}
		})
	}
}

func TestDispatch_TopLevelHelp(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		flags Flags
		want  string
	}{
		{"no args", nil, Flags{}, "top all=false extended=false"},
		{"no args all", nil, Flags{All: true}, "top all=true extended=false"},
		{"help flag", nil, Flags{Help: true}, "top all=false extended=true"},
		{"help word", []string{"help"}, Flags{}, "top all=false extended=true"},
		{"help word with more", []string{"help", "create"}, Flags{All: true}, "top all=true extended=true"},
		{"help flag unresolved", []string{"nope"}, Flags{Help: true}, "top all=false extended=true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if err := f.dispatch(tt.args, tt.flags, nil); err != nil {
				t.Fatalf("Dispatch() error = %v", err)
			}
			if len(f.help.calls) != 1 || f.help.calls[0] != tt.want {
				t.Errorf("help calls = %v, want [%s]", f.help.calls, tt.want)
			}
		})
	}
}

func TestDispatch_Unresolved(t *testing.T) {
	f := newFixture(t)
	err := f.dispatch([]string{"deploy", "everything"}, Flags{}, nil)

	var re *ResolutionError
	if !errors.As(err, &re) {
		t.Fatalf("Dispatch() error = %v, want *ResolutionError", err)
	}
	if re.Input != "deploy everything" {
		t.Errorf("Input = %q", re.Input)
	}
	if err.Error() != "Error: deploy everything is not a valid task." {
		t.Errorf("message = %q", err.Error())
	}
	if ExitCode(err) == 0 {
		t.Error("unresolved task must exit non-zero")
	}
}

func TestDispatch_PartialPrefixSuggests(t *testing.T) {
	f := newFixture(t)
	err := f.dispatch([]string{"remote"}, Flags{}, nil)

	var re *ResolutionError
	if !errors.As(err, &re) {
		t.Fatalf("Dispatch() error = %v, want *ResolutionError", err)
	}
	if !strings.Contains(err.Error(), "Did you mean: remote build?") {
		t.Errorf("message = %q", err.Error())
	}
}

func TestDispatch_TaskHelp(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		flags Flags
		opts  Options
		help  string
	}{
		{"explicit flag", []string{"build"}, Flags{Help: true}, nil, "task build"},
		{"create without dir", []string{"create"}, Flags{}, nil, "task create"},
		{"remote build without platform", []string{"remote", "build"}, Flags{}, nil, "task remote build"},
		{"browser false still needs platform", []string{"remote", "build"}, Flags{}, Options{"browser": "false"}, "task remote build"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if err := f.dispatch(tt.args, tt.flags, tt.opts); err != nil {
				t.Fatalf("Dispatch() error = %v", err)
			}
			if len(f.help.calls) != 1 || f.help.calls[0] != tt.help {
				t.Errorf("help calls = %v, want [%s]", f.help.calls, tt.help)
			}
			if f.allRuns() != 0 {
				t.Error("task must not run when its help is shown")
			}
		})
	}
}

func TestDispatch_RunsModule(t *testing.T) {
	f := newFixture(t)
	if err := f.dispatch([]string{"create", "myproj"}, Flags{}, Options{"template": "minimum"}); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	if len(f.project.runs) != 1 || f.project.runs[0] != "create" {
		t.Fatalf("project runs = %v", f.project.runs)
	}
	inv := f.project.invs[0]
	if len(inv.Args) != 1 || inv.Args[0] != "myproj" {
		t.Errorf("Args = %v, want [myproj]", inv.Args)
	}
	if inv.Info != (Info{ClientType: "cli", ClientVersion: "2.0.0"}) {
		t.Errorf("Info = %+v", inv.Info)
	}
	if inv.Options.String("template") != "minimum" {
		t.Errorf("Options = %v", inv.Options)
	}
	if len(f.help.calls) != 0 {
		t.Errorf("unexpected help: %v", f.help.calls)
	}
}

func TestDispatch_RemoteBuildBrowserWaivesPlatform(t *testing.T) {
	f := newFixture(t)
	if err := f.dispatch([]string{"remote", "build"}, Flags{}, Options{"browser": "true"}); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if len(f.remote.runs) != 1 || f.remote.runs[0] != "remote build" {
		t.Errorf("remote runs = %v", f.remote.runs)
	}
}

func TestDispatch_Chaining(t *testing.T) {
	f := newFixture(t)
	f.cordova.replies["build"] = &Result{NextTask: &NextTask{Name: "compile", Set: "cordova", Args: []string{"android"}}}

	if err := f.dispatch([]string{"build", "android"}, Flags{}, nil); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	if got := strings.Join(f.cordova.runs, ","); got != "build,compile" {
		t.Errorf("runs = %s, want build,compile", got)
	}
	if got := f.cordova.invs[1].Args; len(got) != 1 || got[0] != "android" {
		t.Errorf("chained args = %v", got)
	}
}

func TestDispatch_ChainingAcrossGroupsAndByName(t *testing.T) {
	f := newFixture(t)
	f.project.replies["create"] = &Result{NextTask: &NextTask{Name: "prepare"}}
	f.cordova.replies["prepare"] = &Result{NextTask: &NextTask{Name: "remote build", Args: []string{"ios"}}}

	if err := f.dispatch([]string{"create", "app"}, Flags{}, nil); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if len(f.cordova.runs) != 1 || len(f.remote.runs) != 1 {
		t.Fatalf("cordova runs = %v, remote runs = %v", f.cordova.runs, f.remote.runs)
	}
	if got := f.remote.invs[0].Args; len(got) != 1 || got[0] != "ios" {
		t.Errorf("remote build args = %v", got)
	}
}

func TestDispatch_ChainedTaskArity(t *testing.T) {
	f := newFixture(t)
	f.cordova.replies["build"] = &Result{NextTask: &NextTask{Name: "create", Set: "project"}}

	if err := f.dispatch([]string{"build"}, Flags{}, nil); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if len(f.project.runs) != 0 {
		t.Error("chained create without a directory must show help, not run")
	}
	if len(f.help.calls) != 1 || f.help.calls[0] != "task create" {
		t.Errorf("help calls = %v", f.help.calls)
	}
}

func TestDispatch_ChainUnboundedByDefault(t *testing.T) {
	f := newFixture(t)
	count := 0
	f.d.Modules = NewTable()
	f.d.Modules.Register("cordova", ModuleFunc(func(ctx context.Context, name string, inv Invocation) (*Result, error) {
		count++
		if count < 500 {
			return &Result{NextTask: &NextTask{Name: "compile", Set: "cordova"}}, nil
		}
		return nil, nil
	}))

	if err := f.dispatch([]string{"compile"}, Flags{}, nil); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if count != 500 {
		t.Errorf("runs = %d, want 500", count)
	}
}

func TestDispatch_MaxChain(t *testing.T) {
	f := newFixture(t)
	f.d.MaxChain = 3
	f.cordova.replies["compile"] = &Result{NextTask: &NextTask{Name: "compile", Set: "cordova"}}

	err := f.dispatch([]string{"compile"}, Flags{}, nil)
	if !errors.Is(err, ErrChainTooDeep) {
		t.Fatalf("Dispatch() error = %v, want ErrChainTooDeep", err)
	}
	if len(f.cordova.runs) != 4 {
		t.Errorf("runs = %d, want 4 (first + 3 chained)", len(f.cordova.runs))
	}
}

func TestDispatch_ModuleFailure(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("Upload failed: connection reset")
	f.cordova.replies["build"] = &Result{NextTask: &NextTask{Name: "compile", Set: "cordova"}}
	f.cordova.fail["compile"] = boom

	err := f.dispatch([]string{"build"}, Flags{}, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("Dispatch() error = %v, want %v", err, boom)
	}
	var me *ModuleError
	if !errors.As(err, &me) || me.Task != "compile" || me.Set != "cordova" {
		t.Errorf("ModuleError = %+v", me)
	}
	if err.Error() != boom.Error() {
		t.Errorf("message = %q, the module's message must be kept as is", err.Error())
	}
	if ExitCode(err) != 1 {
		t.Errorf("ExitCode = %d, want 1", ExitCode(err))
	}
}

func TestDispatch_MissingModule(t *testing.T) {
	f := newFixture(t)
	f.d.Modules = NewTable()

	err := f.dispatch([]string{"build"}, Flags{}, nil)
	if err == nil || !strings.Contains(err.Error(), `group "cordova"`) {
		t.Errorf("Dispatch() error = %v", err)
	}
}

func TestTable_DuplicatePanics(t *testing.T) {
	table := NewTable()
	table.Register("dup", ModuleFunc(func(context.Context, string, Invocation) (*Result, error) { return nil, nil }))
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic on duplicate register")
		}
	}()
	table.Register("dup", ModuleFunc(func(context.Context, string, Invocation) (*Result, error) { return nil, nil }))
}

func TestOptions(t *testing.T) {
	opts := Options{"browser": "true", "port": "8080", "bad": "x", "off": "false"}
	if !opts.Bool("browser") || opts.Bool("off") || opts.Bool("bad") || opts.Bool("missing") {
		t.Error("Bool() mismatch")
	}
	if opts.Int("port", 1) != 8080 || opts.Int("bad", 7) != 7 || opts.Int("missing", 9) != 9 {
		t.Error("Int() mismatch")
	}
	var nilOpts Options
	if nilOpts.String("x") != "" || nilOpts.Bool("x") {
		t.Error("nil Options should read as empty")
	}
}
