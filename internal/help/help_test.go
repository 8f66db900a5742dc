package help

import (
	"bytes"
	"strings"
	"testing"

	"github.com/quocvuong92/monaca-cli/internal/display"
	"github.com/quocvuong92/monaca-cli/internal/task"
)

func testRenderer(t *testing.T) *Renderer {
	t.Helper()
	project, err := task.NewGroup("project",
		task.Descriptor{Name: "create", Description: "Create a new project", Order: 10, ShowInHelp: true},
	)
	if err != nil {
		t.Fatal(err)
	}
	serve, err := task.NewGroup("serve",
		task.Descriptor{Name: "preview", Aliases: []string{"serve"}, Description: "Run a local server", Order: 20, ShowInHelp: true},
	)
	if err != nil {
		t.Fatal(err)
	}
	cordova, err := task.NewGroup("cordova",
		task.Descriptor{Name: "emulate", Description: "Run on emulator", Order: 5, ShowInHelp: false},
		task.Descriptor{Name: "build", Description: "Prepare then compile", Order: 20, ShowInHelp: true},
	)
	if err != nil {
		t.Fatal(err)
	}
	reg, err := task.NewRegistry(project, serve, cordova)
	if err != nil {
		t.Fatal(err)
	}
	return New(reg, display.NewTheme(true), "2.0.0")
}

func commandLines(out string) []string {
	var lines []string
	in := false
	for _, line := range strings.Split(out, "\n") {
		switch {
		case strings.HasPrefix(line, "Commands:"):
			in = true
		case strings.HasPrefix(line, "Typical Usage:"):
			in = false
		case in && strings.TrimSpace(line) != "":
			lines = append(lines, line)
		}
	}
	return lines
}

func TestVersion(t *testing.T) {
	var buf bytes.Buffer
	testRenderer(t).Version(&buf)
	if buf.String() != "2.0.0\n" {
		t.Errorf("Version() = %q", buf.String())
	}
}

func TestTop_Summary(t *testing.T) {
	var buf bytes.Buffer
	testRenderer(t).Top(&buf, false, false)
	out := buf.String()

	for _, want := range []string{
		"Command Line Interface for Monaca and Onsen UI",
		"Monaca CLI Version 2.0.0",
		"Usage: monaca command [args]",
		"$ monaca <command> --help",
		"Typical Usage:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary help missing %q", want)
		}
	}

	want := []string{
		"  create  ........  Create a new project",
		"  preview  .......  Run a local server",
		"  build  .........  Prepare then compile",
	}
	got := commandLines(out)
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("command listing =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}

func TestTop_AllShowsHiddenAndAliases(t *testing.T) {
	var buf bytes.Buffer
	testRenderer(t).Top(&buf, true, false)

	got := commandLines(buf.String())
	want := []string{
		"  emulate  ..........  Run on emulator",
		"  create  ...........  Create a new project",
		"  preview | serve  ..  Run a local server",
		"  build  ............  Prepare then compile",
	}
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("command listing =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}

func TestTop_WidthGrowsWithLongestName(t *testing.T) {
	g, _ := task.NewGroup("remote",
		task.Descriptor{Name: "remote build with a long name", Description: "x", ShowInHelp: true},
		task.Descriptor{Name: "ab", Description: "y", ShowInHelp: true},
	)
	reg, _ := task.NewRegistry(g)
	r := New(reg, display.NewTheme(true), "2.0.0")

	var buf bytes.Buffer
	r.Top(&buf, false, false)
	got := commandLines(buf.String())
	if len(got) != 2 {
		t.Fatalf("got %d command lines", len(got))
	}
	if got[0] != "  remote build with a long name  ..  x" {
		t.Errorf("long line = %q", got[0])
	}
	if !strings.HasPrefix(got[1], "  ab  "+strings.Repeat(".", 29)+"  y") {
		t.Errorf("short line = %q", got[1])
	}
}

func TestTop_Extended(t *testing.T) {
	var buf bytes.Buffer
	testRenderer(t).Top(&buf, false, true)
	out := buf.String()

	if strings.Contains(out, "Commands: (use --all to show all)") {
		t.Error("extended help must not include the registry listing")
	}
	for _, want := range []string{"Using Monaca Cloud - Remote Build", "monaca remote build <platform>", "shortcut for prepare, then compile"} {
		if !strings.Contains(out, want) {
			t.Errorf("extended help missing %q", want)
		}
	}
}

func TestTask(t *testing.T) {
	d := &task.Descriptor{
		Name:            "remote build",
		Description:     "Build project on Monaca Cloud.",
		LongDescription: []string{"Uploads the project first."},
		Usage:           []string{"monaca remote build <platform>"},
		Examples:        []string{"monaca remote build ios", "monaca remote build --browser"},
	}

	var buf bytes.Buffer
	testRenderer(t).Task(&buf, d)
	out := buf.String()

	for _, want := range []string{
		"Description:\n\n  Build project on Monaca Cloud.\n  Uploads the project first.\n",
		"Usage:\n\n  monaca remote build <platform>\n",
		"Examples:\n\n  $ monaca remote build ios\n  $ monaca remote build --browser\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("task help missing %q in\n%s", want, out)
		}
	}
}

func TestTask_OmitsEmptySections(t *testing.T) {
	var buf bytes.Buffer
	testRenderer(t).Task(&buf, &task.Descriptor{Name: "logout", Description: "Sign out."})
	if strings.Contains(buf.String(), "Usage:") || strings.Contains(buf.String(), "Examples:") {
		t.Errorf("empty sections rendered:\n%s", buf.String())
	}
}
