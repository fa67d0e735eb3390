// Package ui provides the interactive terminal front end.
package ui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Executor runs one command line and returns the reply.
type Executor interface {
	Execute(ctx context.Context, line string) (reply string, exit bool, err error)
}

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	userStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	replyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

const helpText = "todo | deadline .. /by | event .. /at | list | done N | delete N | update N [-m|-t] .. | find .. | bye"

type entryKind int

const (
	entryUser entryKind = iota
	entryReply
	entryError
)

type entry struct {
	kind entryKind
	text string
}

type tuiModel struct {
	ctx     context.Context
	exec    Executor
	input   []rune
	history []entry
	height  int
	width   int
	err     error
	done    bool
}

func newTUIModel(ctx context.Context, exec Executor, greeting string) *tuiModel {
	m := &tuiModel{ctx: ctx, exec: exec}
	if greeting != "" {
		m.history = append(m.history, entry{kind: entryReply, text: greeting})
	}
	return m
}

// Run starts the TUI and blocks until the user leaves or ctx ends.
func Run(ctx context.Context, exec Executor, greeting string) error {
	m := newTUIModel(ctx, exec, greeting)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	finalModel, err := program.Run()
	if err != nil {
		return err
	}
	if fm, ok := finalModel.(*tuiModel); ok && fm.err != nil {
		return fm.err
	}
	return nil
}

func (m *tuiModel) Init() tea.Cmd {
	return nil
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *tuiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.done = true
		return m, tea.Quit
	case tea.KeyEnter:
		return m.submit()
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeyCtrlU:
		m.input = m.input[:0]
	case tea.KeySpace:
		m.input = append(m.input, ' ')
	case tea.KeyRunes:
		m.input = append(m.input, msg.Runes...)
	}
	return m, nil
}

func (m *tuiModel) submit() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(string(m.input))
	m.input = m.input[:0]
	if line == "" {
		return m, nil
	}
	m.history = append(m.history, entry{kind: entryUser, text: line})

	reply, exit, err := m.exec.Execute(m.ctx, line)
	if err != nil {
		m.err = err
		m.history = append(m.history, entry{kind: entryError, text: err.Error()})
		return m, nil
	}
	kind := entryReply
	if strings.HasPrefix(reply, "OOPS!!!") {
		kind = entryError
	}
	m.history = append(m.history, entry{kind: kind, text: reply})
	if exit {
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *tuiModel) View() string {
	var lines []string
	for _, e := range m.history {
		for _, l := range strings.Split(e.text, "\n") {
			switch e.kind {
			case entryUser:
				lines = append(lines, userStyle.Render("> "+l))
			case entryError:
				lines = append(lines, errorStyle.Render(l))
			default:
				lines = append(lines, replyStyle.Render(l))
			}
		}
	}

	// Keep the newest lines that fit above the prompt and help line.
	if room := m.height - 2; room > 0 && len(lines) > room {
		lines = lines[len(lines)-room:]
	}

	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteString("\n")
	}
	if m.done {
		return b.String()
	}
	b.WriteString(promptStyle.Render("> "))
	b.WriteString(string(m.input))
	b.WriteString("█\n")
	b.WriteString(helpStyle.Render(helpText))
	return b.String()
}
