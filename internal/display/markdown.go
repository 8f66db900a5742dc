package display

import (
	"github.com/charmbracelet/glamour"
)

// RenderMarkdown renders md for the terminal. Without color it uses the
// plain "notty" style so output stays readable when piped.
func RenderMarkdown(md string, width int, colored bool) (string, error) {
	style := glamour.WithStandardStyle("notty")
	if colored {
		style = glamour.WithAutoStyle()
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return "", err
	}
	return r.Render(md)
}
