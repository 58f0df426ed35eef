package tui

import (
	"context"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"estate-chat/internal/domain"
	"estate-chat/internal/widget"
)

type gatedSender struct {
	mu      sync.Mutex
	release chan struct{}
	reqs    int
}

func (g *gatedSender) Send(_ context.Context, _ domain.ChatRequest) (domain.Completion, error) {
	g.mu.Lock()
	g.reqs++
	g.mu.Unlock()
	<-g.release
	return domain.Completion{Choices: []domain.Choice{{Message: domain.Message{Role: domain.RoleAssistant, Content: "You may need **written** consent."}}}}, nil
}

func (g *gatedSender) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.reqs
}

func newTestModel(t *testing.T, s widget.Sender) (Model, *widget.Widget) {
	t.Helper()
	w, err := widget.New(s)
	require.NoError(t, err)
	m := New(context.Background(), w)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(Model), w
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func typeText(m Model, text string) Model {
	return update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func TestView_ClosedShowsOnlyToggle(t *testing.T) {
	m, w := newTestModel(t, &gatedSender{release: make(chan struct{})})
	require.Equal(t, widget.StateClosed, w.State())
	view := m.View()
	require.Contains(t, view, "Legal assistant")
	require.Contains(t, view, "ctrl+o")
	require.NotContains(t, view, "enter send")
}

func TestUpdate_SubmitShowsTypingAndDisablesEnter(t *testing.T) {
	sender := &gatedSender{release: make(chan struct{})}
	m, w := newTestModel(t, sender)

	m = update(m, tea.KeyMsg{Type: tea.KeyCtrlO})
	require.Equal(t, widget.StateOpenIdle, w.State())

	m = typeText(m, "Can I sublet my apartment?")
	require.True(t, w.CanSubmit())
	m = update(m, tea.KeyMsg{Type: tea.KeyEnter})

	require.Equal(t, widget.StateOpenAwaitingResponse, w.State())
	require.Empty(t, m.input.Value())
	view := m.View()
	require.Contains(t, view, "Can I sublet my apartment?")
	require.Contains(t, view, widget.TypingIndicator)

	// Enter is ignored while awaiting.
	m = typeText(m, "again")
	m = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Len(t, w.Visible(), 1)
	require.Equal(t, "again", m.input.Value())

	close(sender.release)
	w.Wait()
	m = update(m, changedMsg{})

	require.Equal(t, widget.StateOpenIdle, w.State())
	view = m.View()
	require.NotContains(t, view, widget.TypingIndicator)
	require.Contains(t, view, "written")
	require.NotContains(t, view, "**written**")
	require.Equal(t, 1, sender.count())
}

func TestUpdate_EnterWithBlankInputDoesNothing(t *testing.T) {
	sender := &gatedSender{release: make(chan struct{})}
	m, w := newTestModel(t, sender)
	m = update(m, tea.KeyMsg{Type: tea.KeyCtrlO})
	m = typeText(m, "   ")
	_ = update(m, tea.KeyMsg{Type: tea.KeyEnter})

	require.Empty(t, w.Visible())
	require.Zero(t, sender.count())
}

func TestUpdate_ToggleKeepsTranscript(t *testing.T) {
	sender := &gatedSender{release: make(chan struct{})}
	close(sender.release)
	m, w := newTestModel(t, sender)

	m = update(m, tea.KeyMsg{Type: tea.KeyCtrlO})
	m = typeText(m, "hello")
	m = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	w.Wait()

	m = update(m, tea.KeyMsg{Type: tea.KeyCtrlO})
	require.False(t, w.IsOpen())
	m = update(m, tea.KeyMsg{Type: tea.KeyCtrlO})
	m = update(m, changedMsg{})
	require.Len(t, w.Visible(), 2)
	require.True(t, strings.Contains(m.View(), "hello"))
}

func TestUpdate_CtrlCQuits(t *testing.T) {
	m, _ := newTestModel(t, &gatedSender{release: make(chan struct{})})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}
