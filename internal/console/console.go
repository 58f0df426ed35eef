// Package console runs the chat widget as a line-oriented terminal session
// for terminals where the full-screen program is unwanted.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"

	"estate-chat/internal/widget"
)

const (
	cmdToggle = "/toggle"
	cmdHelp   = "/help"
)

type Session struct {
	w      *widget.Widget
	in     io.Reader
	out    io.Writer
	status io.Writer

	printed int

	you       *color.Color
	assistant *color.Color
	dim       *color.Color
}

type Option func(*Session)

// WithStatus sets where the typing spinner is drawn. It defaults to out.
func WithStatus(status io.Writer) Option {
	return func(s *Session) {
		if status != nil {
			s.status = status
		}
	}
}

func New(w *widget.Widget, in io.Reader, out io.Writer, opts ...Option) (*Session, error) {
	if w == nil {
		return nil, errors.New("console: widget must not be nil")
	}
	if in == nil || out == nil {
		return nil, errors.New("console: input and output must not be nil")
	}
	s := &Session{
		w:         w,
		in:        in,
		out:       out,
		status:    out,
		you:       color.New(color.FgGreen),
		assistant: color.New(color.FgCyan, color.Bold),
		dim:       color.New(color.FgHiBlack),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run opens the widget and reads one user turn per line until exit, EOF or
// ctx ends. Each turn waits for its reply before the next prompt.
func (s *Session) Run(ctx context.Context) error {
	s.w.Open()
	s.banner()

	scanner := bufio.NewScanner(s.in)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		if s.w.IsOpen() {
			s.you.Fprint(s.out, "  you → ")
		} else {
			s.dim.Fprint(s.out, "  (closed, "+cmdToggle+" to open) ")
		}
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "exit", "quit":
			s.dim.Fprintf(s.out, "\n  Goodbye.\n\n")
			return nil
		case cmdHelp:
			s.help()
			continue
		case cmdToggle:
			s.w.Toggle()
			if s.w.IsOpen() {
				s.flush()
			}
			continue
		}

		if !s.w.IsOpen() {
			s.dim.Fprintf(s.out, "  The assistant is closed. Type %s to open it.\n", cmdToggle)
			continue
		}
		if !s.w.SubmitText(ctx, line) {
			continue
		}
		// The user turn is already on screen as typed.
		s.printed = len(s.w.Visible())
		s.await()
		s.flush()
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("console: read input: %w", err)
	}
	return nil
}

func (s *Session) await() {
	sp := spinner.New(spinner.CharSets[14], 80*time.Millisecond, spinner.WithWriter(s.status))
	sp.Suffix = "  " + widget.TypingIndicator
	_ = sp.Color("cyan")
	sp.Start()
	s.w.Wait()
	sp.Stop()
}

// flush prints every visible message not yet shown.
func (s *Session) flush() {
	bubbles := s.w.Bubbles()
	for _, b := range bubbles[min(s.printed, len(bubbles)):] {
		if b.Align == widget.AlignRight {
			s.you.Fprint(s.out, "  you → ")
			fmt.Fprintf(s.out, "%s\n", b.Text)
			continue
		}
		s.assistant.Fprint(s.out, "  assistant → ")
		fmt.Fprintf(s.out, "%s\n\n", b.Text)
	}
	s.printed = len(bubbles)
}

func (s *Session) banner() {
	fmt.Fprintln(s.out)
	s.assistant.Fprintln(s.out, "  Real estate legal assistant")
	s.dim.Fprintf(s.out, "  Type %s for commands, 'exit' to quit.\n\n", cmdHelp)
}

func (s *Session) help() {
	s.dim.Fprintf(s.out, "  %s  hide or show the assistant\n", cmdToggle)
	s.dim.Fprintf(s.out, "  exit     end the session\n\n")
}
