// Package widget implements the chat assistant surface: an open/closed panel
// holding an append-only transcript, submitting user turns to the chat
// endpoint and appending one assistant turn per exchange.
//
// A Widget is safe for concurrent use. Exchanges run on their own goroutines
// and append their reply in arrival order; nothing orders or cancels them.
package widget

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"estate-chat/internal/domain"
)

const (
	// Greeting seeds every transcript. It is sent upstream with each request
	// but never rendered.
	Greeting = "Hello! I'm your real estate legal assistant. Ask me about purchase contracts, leases, titles, or closing procedures and I'll do my best to help."

	NoResponseReply = "No response"
	FailureReply    = "Sorry, I'm having trouble answering right now. Please try again in a moment."
	TypingIndicator = "Assistant is typing..."
)

type State int

const (
	StateClosed State = iota
	StateOpenIdle
	StateOpenAwaitingResponse
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpenIdle:
		return "open-idle"
	case StateOpenAwaitingResponse:
		return "open-awaiting-response"
	default:
		return "unknown"
	}
}

// Sender delivers the transcript to the chat endpoint. *chatclient.Client
// satisfies it.
type Sender interface {
	Send(ctx context.Context, req domain.ChatRequest) (domain.Completion, error)
}

// Formatter renders assistant markup. The render package provides these.
type Formatter interface {
	Format(text string) (string, error)
}

type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

// Bubble is one visible message prepared for display.
type Bubble struct {
	Role  domain.Role
	Text  string
	Align Align
}

type plainFormatter struct{}

func (plainFormatter) Format(text string) (string, error) { return text, nil }

type Widget struct {
	client   Sender
	logger   *slog.Logger
	onChange func()
	newID    func() string

	inflight sync.WaitGroup

	mu         sync.Mutex
	formatter  Formatter
	open       bool
	awaiting   bool
	input      string
	transcript []domain.Message
}

type Option func(*Widget)

func WithFormatter(f Formatter) Option {
	return func(w *Widget) {
		if f != nil {
			w.formatter = f
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(w *Widget) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithOnChange registers fn to run after every transcript or state change.
// It is called without the widget lock held, possibly from an exchange
// goroutine.
func WithOnChange(fn func()) Option {
	return func(w *Widget) {
		w.onChange = fn
	}
}

// WithGreeting replaces the seed greeting.
func WithGreeting(text string) Option {
	return func(w *Widget) {
		if strings.TrimSpace(text) != "" {
			w.transcript = []domain.Message{{Role: domain.RoleSystem, Content: text}}
		}
	}
}

// New creates a closed widget whose transcript holds only the greeting.
func New(client Sender, opts ...Option) (*Widget, error) {
	if client == nil {
		return nil, errors.New("widget: sender must not be nil")
	}
	w := &Widget{
		client:     client,
		logger:     slog.New(slog.DiscardHandler),
		newID:      uuid.NewString,
		formatter:  plainFormatter{},
		transcript: []domain.Message{{Role: domain.RoleSystem, Content: Greeting}},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stateLocked()
}

func (w *Widget) stateLocked() State {
	switch {
	case !w.open:
		return StateClosed
	case w.awaiting:
		return StateOpenAwaitingResponse
	default:
		return StateOpenIdle
	}
}

func (w *Widget) IsOpen() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.open
}

func (w *Widget) Open()   { w.setOpen(func(bool) bool { return true }) }
func (w *Widget) Close()  { w.setOpen(func(bool) bool { return false }) }
func (w *Widget) Toggle() { w.setOpen(func(open bool) bool { return !open }) }

// setOpen changes visibility only; history and in-flight exchanges are kept.
func (w *Widget) setOpen(next func(bool) bool) {
	w.mu.Lock()
	w.open = next(w.open)
	w.mu.Unlock()
	w.changed()
}

func (w *Widget) SetInput(text string) {
	w.mu.Lock()
	w.input = text
	w.mu.Unlock()
}

func (w *Widget) Input() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.input
}

// CanSubmit is the submit control's enabled state. It is a UI guard only:
// SubmitText does not consult it.
func (w *Widget) CanSubmit() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stateLocked() == StateOpenIdle && strings.TrimSpace(w.input) != ""
}

// SetFormatter swaps the assistant renderer, e.g. after a resize.
func (w *Widget) SetFormatter(f Formatter) {
	if f == nil {
		return
	}
	w.mu.Lock()
	w.formatter = f
	w.mu.Unlock()
	w.changed()
}

// Submit sends the current input field.
func (w *Widget) Submit(ctx context.Context) bool {
	return w.submit(ctx, func() string { return w.input })
}

// SubmitText sends text as a user turn. Blank text, or a closed widget, is a
// no-op returning false. Otherwise the user turn is appended and the input
// cleared before this returns; the reply arrives later.
func (w *Widget) SubmitText(ctx context.Context, text string) bool {
	return w.submit(ctx, func() string { return text })
}

func (w *Widget) submit(ctx context.Context, text func() string) bool {
	w.mu.Lock()
	content := strings.TrimSpace(text())
	if content == "" || !w.open {
		w.mu.Unlock()
		return false
	}
	w.transcript = append(w.transcript, domain.Message{Role: domain.RoleUser, Content: content})
	w.input = ""
	w.awaiting = true
	snapshot := slices.Clone(w.transcript)
	w.inflight.Add(1)
	w.mu.Unlock()

	w.changed()
	go w.exchange(ctx, w.newID(), snapshot)
	return true
}

func (w *Widget) exchange(ctx context.Context, id string, snapshot []domain.Message) {
	defer w.inflight.Done()

	reply := w.fetchReply(ctx, id, snapshot)

	w.mu.Lock()
	w.transcript = append(w.transcript, domain.Message{Role: domain.RoleAssistant, Content: reply})
	// Any arrival clears the flag, even with other exchanges still out.
	w.awaiting = false
	w.mu.Unlock()

	w.changed()
}

func (w *Widget) fetchReply(ctx context.Context, id string, snapshot []domain.Message) string {
	w.logger.DebugContext(ctx, "chat exchange started", "exchange_id", id, "messages", len(snapshot))

	out, err := w.client.Send(ctx, domain.ChatRequest{Messages: snapshot})
	if err != nil {
		w.logger.WarnContext(ctx, "chat exchange failed", "exchange_id", id, "err", err)
		return FailureReply
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		w.logger.DebugContext(ctx, "chat exchange returned no content", "exchange_id", id)
		return NoResponseReply
	}
	w.logger.DebugContext(ctx, "chat exchange completed", "exchange_id", id)
	return out.Choices[0].Message.Content
}

// Wait blocks until every exchange started before the call has appended its
// reply.
func (w *Widget) Wait() {
	w.inflight.Wait()
}

// Transcript returns a copy of the full transcript, greeting included.
func (w *Widget) Transcript() []domain.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.transcript)
}

// Visible returns the transcript without the greeting.
func (w *Widget) Visible() []domain.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.transcript[1:])
}

// Bubbles prepares the visible messages for display. Assistant text goes
// through the formatter; a formatter error falls back to the raw text.
func (w *Widget) Bubbles() []Bubble {
	w.mu.Lock()
	visible := slices.Clone(w.transcript[1:])
	f := w.formatter
	w.mu.Unlock()

	bubbles := make([]Bubble, 0, len(visible))
	for _, m := range visible {
		b := Bubble{Role: m.Role, Text: m.Content, Align: AlignLeft}
		switch m.Role {
		case domain.RoleUser:
			b.Align = AlignRight
		case domain.RoleAssistant:
			if formatted, err := f.Format(m.Content); err == nil {
				b.Text = formatted
			} else {
				w.logger.Warn("format assistant message", "err", err)
			}
		}
		bubbles = append(bubbles, b)
	}
	return bubbles
}

func (w *Widget) changed() {
	if w.onChange != nil {
		w.onChange()
	}
}
