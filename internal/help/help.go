package help

import (
	_ "embed"
	"fmt"
	"io"
	"strings"

	"github.com/quocvuong92/monaca-cli/internal/display"
	"github.com/quocvuong92/monaca-cli/internal/task"
)

//go:embed assets/logo.txt
var logo string

//go:embed assets/extended.md
var extended string

// minLeaderWidth is the narrowest command column in the summary listing.
const minLeaderWidth = 15

// Renderer writes help text for one registry.
type Renderer struct {
	Registry      *task.Registry
	Theme         *display.Theme
	ClientVersion string

	// Width is the wrap width for the extended walkthrough.
	Width int
}

// New creates a renderer.
func New(registry *task.Registry, theme *display.Theme, version string) *Renderer {
	return &Renderer{Registry: registry, Theme: theme, ClientVersion: version, Width: 100}
}

// Version prints the bare version string.
func (r *Renderer) Version(w io.Writer) {
	fmt.Fprintln(w, r.Theme.Info(r.ClientVersion))
}

// Top prints the top-level help. Summary mode lists registry tasks;
// extended mode prints the static walkthrough instead.
func (r *Renderer) Top(w io.Writer, all, extendedMode bool) {
	r.logo(w)
	fmt.Fprintf(w, "Usage: monaca command [args]\n\n")

	if extendedMode {
		r.extended(w)
	} else {
		r.description(w)
		r.commands(w, all)
		r.examples(w)
	}
	fmt.Fprintln(w)
}

// Task prints the help page for one descriptor.
func (r *Renderer) Task(w io.Writer, d *task.Descriptor) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, r.Theme.Info("Description:"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", d.Description)
	for _, line := range d.LongDescription {
		fmt.Fprintf(w, "  %s\n", line)
	}

	if len(d.Usage) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, r.Theme.Info("Usage:"))
		fmt.Fprintln(w)
		for _, line := range d.Usage {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}

	if len(d.Examples) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, r.Theme.Info("Examples:"))
		fmt.Fprintln(w)
		for _, line := range d.Examples {
			fmt.Fprintf(w, "  $ %s\n", line)
		}
	}
	fmt.Fprintln(w)
}

func (r *Renderer) logo(w io.Writer) {
	fmt.Fprint(w, r.Theme.Logo(logo))
	fmt.Fprintln(w, " Command Line Interface for Monaca and Onsen UI")
	fmt.Fprintf(w, " Monaca CLI Version %s\n\n", r.ClientVersion)
}

func (r *Renderer) description(w io.Writer) {
	fmt.Fprintf(w, "  To learn about a specific command type:\n\n")
	fmt.Fprintf(w, "  $ monaca <command> --help\n\n")
	fmt.Fprintf(w, "  To learn about all the command type:\n\n")
	fmt.Fprintf(w, "  $ monaca help | monaca --help\n\n")
}

// commands prints the summary listing with a dotted leader between the
// command column and its description.
func (r *Renderer) commands(w io.Writer, all bool) {
	fmt.Fprintf(w, "Commands: (use --all to show all)\n\n")

	entries := r.Registry.Sorted(all)
	labels := make([]string, len(entries))
	width := minLeaderWidth
	for i, e := range entries {
		labels[i] = label(e.Descriptor, all)
		width = max(width, len(labels[i])+3)
	}

	for i, e := range entries {
		dots := strings.Repeat(".", width-len(labels[i])-1)
		fmt.Fprintf(w, "  %s  %s  %s\n",
			r.Theme.Info(labels[i]), r.Theme.Data(dots), r.Theme.Bold(e.Descriptor.Description))
	}
	fmt.Fprintln(w)
}

func label(d *task.Descriptor, all bool) string {
	if !all || len(d.Aliases) == 0 {
		return d.Name
	}
	return d.Name + " | " + strings.Join(d.Aliases, " | ")
}

func (r *Renderer) examples(w io.Writer) {
	fmt.Fprintf(w, "Typical Usage:\n\n")
	fmt.Fprintln(w, "  $ monaca create myproject # Create a new project from various templates")
	fmt.Fprintln(w, "  $ cd myproject")
	fmt.Fprintln(w, "  $ monaca preview # Preview app on a browser")
	fmt.Fprintln(w, "  $ monaca remote build android # Execute remote build for packaging")
}

// extended renders the walkthrough through glamour when colors are on and
// prints the markdown source otherwise.
func (r *Renderer) extended(w io.Writer) {
	if r.Theme.Colored() {
		if out, err := display.RenderMarkdown(extended, r.Width, true); err == nil {
			fmt.Fprint(w, out)
			return
		}
	}
	fmt.Fprint(w, extended)
}
