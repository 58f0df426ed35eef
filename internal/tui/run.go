// Package tui runs the chat widget as a full-screen terminal program.
package tui

import (
	"context"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"estate-chat/internal/widget"
)

// Run starts the widget closed, showing only its toggle, and blocks until the
// user quits or ctx ends.
func Run(ctx context.Context, client widget.Sender, logger *slog.Logger) error {
	var p *tea.Program
	started := make(chan struct{})

	w, err := widget.New(client,
		widget.WithLogger(logger),
		widget.WithOnChange(func() {
			select {
			case <-started:
				// Send blocks until the event loop reads it, and this may be
				// called from inside Update.
				go p.Send(changedMsg{})
			default:
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("tui: create widget: %w", err)
	}

	p = tea.NewProgram(New(ctx, w), tea.WithAltScreen(), tea.WithContext(ctx))
	close(started)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: run: %w", err)
	}
	return nil
}
