// Package render turns assistant text with lightweight markdown (headings,
// bold, links) into display-ready output.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Terminal renders markdown as styled ANSI text.
type Terminal struct {
	r *glamour.TermRenderer
}

// NewTerminal builds a renderer wrapping at width columns. The dark style is
// fixed so no terminal colour query runs.
func NewTerminal(width int) (*Terminal, error) {
	if width < 20 {
		width = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("render: build terminal renderer: %w", err)
	}
	return &Terminal{r: r}, nil
}

func (t *Terminal) Format(text string) (string, error) {
	out, err := t.r.Render(text)
	if err != nil {
		return "", fmt.Errorf("render: markdown: %w", err)
	}
	return strings.Trim(out, "\n"), nil
}

// Plain strips nothing and styles nothing.
type Plain struct{}

func (Plain) Format(text string) (string, error) {
	return text, nil
}
