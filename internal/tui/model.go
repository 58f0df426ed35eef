package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"estate-chat/internal/render"
	"estate-chat/internal/widget"
)

const toggleLabel = "💬 Legal assistant  (ctrl+o)"

// changedMsg is sent whenever the widget transcript or state moves.
type changedMsg struct{}

var (
	toggleStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#2563EB")).
			Bold(true)
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#1E3A8A")).
			Padding(0, 1)
	userBubbleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#2563EB")).
			Padding(0, 1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	typingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Model hosts a widget.Widget inside a bubbletea program.
type Model struct {
	ctx      context.Context
	widget   *widget.Widget
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	width    int
	height   int
	ready    bool
	spinning bool
}

func New(ctx context.Context, w *widget.Widget) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask about contracts, leases, titles..."
	ti.CharLimit = 2000
	ti.Prompt = "› "

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:      ctx,
		widget:   w,
		input:    ti,
		viewport: viewport.New(80, 20),
		spinner:  sp,
		width:    80,
		height:   24,
	}
	if w.IsOpen() {
		m.input.Focus()
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		m.ready = true
		if f, err := render.NewTerminal(m.bubbleWidth()); err == nil {
			m.widget.SetFormatter(f)
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "ctrl+o":
			m.widget.Toggle()
			if m.widget.IsOpen() {
				cmds = append(cmds, m.input.Focus())
			} else {
				m.input.Blur()
			}
			m.refresh()
			return m, tea.Batch(cmds...)

		case "enter":
			if !m.widget.IsOpen() {
				return m, nil
			}
			m.widget.SetInput(m.input.Value())
			if !m.widget.CanSubmit() {
				return m, nil
			}
			m.widget.Submit(m.ctx)
			m.input.SetValue(m.widget.Input())
			m.refresh()
			return m, m.startSpinner()

		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

		if m.widget.IsOpen() {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			m.widget.SetInput(m.input.Value())
			cmds = append(cmds, cmd)
		}

	case changedMsg:
		m.refresh()
		cmds = append(cmds, m.startSpinner())

	case spinner.TickMsg:
		if m.widget.State() != widget.StateOpenAwaitingResponse {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) startSpinner() tea.Cmd {
	if m.spinning || m.widget.State() != widget.StateOpenAwaitingResponse {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}

func (m *Model) resize() {
	m.viewport.Width = max(m.width-2, 10)
	// header, typing line, input, help
	m.viewport.Height = max(m.height-5, 3)
	m.input.Width = max(m.width-6, 10)
}

func (m Model) bubbleWidth() int {
	return max(m.viewport.Width*3/4, 20)
}

// refresh lays the widget bubbles out in the viewport: user messages on the
// right, everything else on the left.
func (m *Model) refresh() {
	bubbles := m.widget.Bubbles()
	width := m.viewport.Width
	var b strings.Builder
	for i, bubble := range bubbles {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch bubble.Align {
		case widget.AlignRight:
			body := userBubbleStyle.MaxWidth(m.bubbleWidth()).Render(bubble.Text)
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Right, labelStyle.Render("You")))
			b.WriteString("\n")
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Right, body))
		default:
			b.WriteString(labelStyle.Render("Assistant"))
			b.WriteString("\n")
			b.WriteString(bubble.Text)
		}
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (m Model) View() string {
	if !m.widget.IsOpen() {
		return lipgloss.Place(m.width, m.height, lipgloss.Right, lipgloss.Bottom, toggleStyle.Render(toggleLabel))
	}

	header := headerStyle.Width(m.width).Render("Legal assistant")

	typing := ""
	if m.widget.State() == widget.StateOpenAwaitingResponse {
		typing = typingStyle.Render(m.spinner.View() + " " + widget.TypingIndicator)
	}

	help := "enter send · ctrl+o close · pgup/pgdown scroll · ctrl+c quit"
	if m.widget.State() == widget.StateOpenAwaitingResponse {
		help = "waiting for reply · ctrl+o close · ctrl+c quit"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.viewport.View(),
		typing,
		m.input.View(),
		helpStyle.Render(help),
	)
}
