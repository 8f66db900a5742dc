package modules

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/elk-language/go-prompt"
	istrings "github.com/elk-language/go-prompt/strings"
	"golang.org/x/term"

	"github.com/quocvuong92/monaca-cli/internal/display"
)

// ErrNotInteractive is returned when a choice is needed but stdin is not a terminal.
var ErrNotInteractive = errors.New("input required but stdin is not a terminal")

// Choice is one selectable item.
type Choice struct {
	Value       string
	Description string
}

// Prompter asks the user for input.
type Prompter interface {
	Interactive() bool
	Input(label string) (string, error)
	Password(label string) (string, error)
	Select(label string, choices []Choice) (string, error)
}

// TerminalPrompter reads from stdin. Select uses an auto-completing prompt.
type TerminalPrompter struct {
	in     *os.File
	out    io.Writer
	reader *bufio.Reader
}

// NewTerminalPrompter creates a prompter on stdin/stdout.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{in: os.Stdin, out: os.Stdout, reader: bufio.NewReader(os.Stdin)}
}

// Interactive reports whether stdin is a terminal.
func (p *TerminalPrompter) Interactive() bool {
	return display.IsTerminal(p.in)
}

// Input reads one line.
func (p *TerminalPrompter) Input(label string) (string, error) {
	fmt.Fprint(p.out, label)
	line, err := p.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Password reads a line without echo when stdin is a terminal.
func (p *TerminalPrompter) Password(label string) (string, error) {
	if !p.Interactive() {
		return p.Input(label)
	}
	fmt.Fprint(p.out, label)
	b, err := term.ReadPassword(int(p.in.Fd()))
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Select lists choices and reads one with completion. An empty answer
// picks the first choice.
func (p *TerminalPrompter) Select(label string, choices []Choice) (string, error) {
	if len(choices) == 0 {
		return "", errors.New("nothing to choose from")
	}
	if !p.Interactive() {
		return "", ErrNotInteractive
	}

	for _, c := range choices {
		fmt.Fprintf(p.out, "  %-32s %s\n", c.Value, c.Description)
	}

	suggestions := make([]prompt.Suggest, len(choices))
	for i, c := range choices {
		suggestions[i] = prompt.Suggest{Text: c.Value, Description: c.Description}
	}
	completer := func(d prompt.Document) ([]prompt.Suggest, istrings.RuneNumber, istrings.RuneNumber) {
		endIndex := d.CurrentRuneIndex()
		w := d.GetWordBeforeCursor()
		startIndex := endIndex - istrings.RuneCountInString(w)
		return prompt.FilterHasPrefix(suggestions, w, true), startIndex, endIndex
	}

	answer := strings.TrimSpace(prompt.Input(
		prompt.WithPrefix(label),
		prompt.WithCompleter(completer),
		prompt.WithPrefixTextColor(prompt.Green),
		prompt.WithMaxSuggestion(10),
	))
	return matchChoice(answer, choices)
}

func matchChoice(answer string, choices []Choice) (string, error) {
	if answer == "" {
		return choices[0].Value, nil
	}
	for _, c := range choices {
		if c.Value == answer {
			return c.Value, nil
		}
	}
	return "", fmt.Errorf("%q is not one of the available choices", answer)
}
