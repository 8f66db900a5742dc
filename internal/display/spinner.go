package display

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// Spinner shows progress for a long operation. On a non-terminal writer it
// degrades to printing the message once.
type Spinner struct {
	s   *spinner.Spinner
	w   io.Writer
	msg string
}

// NewSpinner creates a spinner writing to w.
func NewSpinner(w io.Writer, msg string) *Spinner {
	sp := &Spinner{w: w, msg: msg}
	if IsTerminal(w) {
		sp.s = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
		sp.s.Suffix = " " + msg
	}
	return sp
}

// Start starts the animation.
func (sp *Spinner) Start() {
	if sp.s == nil {
		fmt.Fprintln(sp.w, sp.msg)
		return
	}
	sp.s.Start()
}

// Update replaces the message.
func (sp *Spinner) Update(msg string) {
	sp.msg = msg
	if sp.s == nil {
		fmt.Fprintln(sp.w, msg)
		return
	}
	sp.s.Lock()
	sp.s.Suffix = " " + msg
	sp.s.Unlock()
}

// Stop stops the animation and clears the line.
func (sp *Spinner) Stop() {
	if sp.s != nil {
		sp.s.Stop()
	}
}
