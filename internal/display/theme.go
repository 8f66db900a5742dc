// Package display handles everything the user sees on the terminal:
// the color theme, progress spinners, rendered markdown, QR codes and
// opening URLs in a browser.
package display

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Theme maps message roles to colors. A Theme built with noColor set
// returns its input unchanged.
type Theme struct {
	info    *color.Color
	help    *color.Color
	warn    *color.Color
	errc    *color.Color
	success *color.Color
	verbose *color.Color
	data    *color.Color
	bold    *color.Color
	logo    *color.Color
	noColor bool
}

// NewTheme creates the CLI theme.
func NewTheme(noColor bool) *Theme {
	t := &Theme{
		info:    color.New(color.FgGreen, color.Bold),
		help:    color.New(color.FgCyan),
		warn:    color.New(color.FgYellow, color.Bold),
		errc:    color.New(color.FgRed, color.Bold),
		success: color.New(color.FgGreen, color.Bold),
		verbose: color.New(color.FgCyan),
		data:    color.New(color.FgHiBlack),
		bold:    color.New(color.Bold),
		logo:    color.New(color.FgBlue, color.Bold),
		noColor: noColor,
	}
	if noColor {
		for _, c := range []*color.Color{t.info, t.help, t.warn, t.errc, t.success, t.verbose, t.data, t.bold, t.logo} {
			c.DisableColor()
		}
	}
	return t
}

// Colored reports whether the theme emits escape codes.
func (t *Theme) Colored() bool {
	return !t.noColor && !color.NoColor
}

func (t *Theme) Info(s string) string    { return t.info.Sprint(s) }
func (t *Theme) Help(s string) string    { return t.help.Sprint(s) }
func (t *Theme) Warn(s string) string    { return t.warn.Sprint(s) }
func (t *Theme) Error(s string) string   { return t.errc.Sprint(s) }
func (t *Theme) Success(s string) string { return t.success.Sprint(s) }
func (t *Theme) Verbose(s string) string { return t.verbose.Sprint(s) }
func (t *Theme) Data(s string) string    { return t.data.Sprint(s) }
func (t *Theme) Bold(s string) string    { return t.bold.Sprint(s) }
func (t *Theme) Logo(s string) string    { return t.logo.Sprint(s) }

// Console writes themed messages. Out gets regular output, Err gets errors.
type Console struct {
	Out   io.Writer
	Err   io.Writer
	Theme *Theme
}

// NewConsole creates a console on stdout/stderr.
func NewConsole(theme *Theme) *Console {
	return &Console{Out: os.Stdout, Err: os.Stderr, Theme: theme}
}

// Println prints a line to Out.
func (c *Console) Println(a ...interface{}) {
	fmt.Fprintln(c.Out, a...)
}

// Printf prints formatted text to Out.
func (c *Console) Printf(format string, a ...interface{}) {
	fmt.Fprintf(c.Out, format, a...)
}

// Success prints a success line to Out.
func (c *Console) Success(msg string) {
	fmt.Fprintln(c.Out, c.Theme.Success(msg))
}

// Warn prints a warning line to Out.
func (c *Console) Warn(msg string) {
	fmt.Fprintln(c.Out, c.Theme.Warn(msg))
}

// ShowError prints an error line to Err.
func (c *Console) ShowError(msg string) {
	fmt.Fprintln(c.Err, c.Theme.Error(msg))
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w interface{}) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
