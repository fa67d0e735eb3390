package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

type scriptedExecutor struct {
	lines []string
	err   error
}

func (s *scriptedExecutor) Execute(_ context.Context, line string) (string, bool, error) {
	s.lines = append(s.lines, line)
	if s.err != nil {
		return "", false, s.err
	}
	if line == "bye" {
		return "Bye.", true, nil
	}
	if strings.HasPrefix(line, "bad") {
		return "OOPS!!! nope", false, nil
	}
	return "ok: " + line, false, nil
}

func typeLine(m *tuiModel, s string) tea.Cmd {
	for _, r := range s {
		if r == ' ' {
			m.Update(tea.KeyMsg{Type: tea.KeySpace})
			continue
		}
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return cmd
}

func TestSubmitRunsCommand(t *testing.T) {
	exec := &scriptedExecutor{}
	m := newTUIModel(context.Background(), exec, "Hello!")

	if cmd := typeLine(m, "todo read book"); cmd != nil {
		t.Error("Expected no command after a normal reply")
	}
	if len(exec.lines) != 1 || exec.lines[0] != "todo read book" {
		t.Fatalf("Expected one executed line, got %v", exec.lines)
	}
	if len(m.input) != 0 {
		t.Errorf("Expected input cleared, got %q", string(m.input))
	}

	view := m.View()
	for _, want := range []string{"Hello!", "todo read book", "ok: todo read book"} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected view to contain %q, got:\n%s", want, view)
		}
	}

	typeLine(m, "bad input")
	if last := m.history[len(m.history)-1]; last.kind != entryError {
		t.Errorf("Expected error entry for OOPS reply, got %v", last.kind)
	}
}

func TestEditingKeys(t *testing.T) {
	exec := &scriptedExecutor{}
	m := newTUIModel(context.Background(), exec, "")
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("lisx")})
	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t")})
	if string(m.input) != "list" {
		t.Errorf("Expected input 'list', got %q", string(m.input))
	}
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlU})
	if len(m.input) != 0 {
		t.Errorf("Expected ctrl+u to clear input, got %q", string(m.input))
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if len(exec.lines) != 0 {
		t.Error("Expected blank input not to run a command")
	}
}

func TestByeQuits(t *testing.T) {
	m := newTUIModel(context.Background(), &scriptedExecutor{}, "")
	cmd := typeLine(m, "bye")
	if cmd == nil {
		t.Fatal("Expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected tea.QuitMsg")
	}
	if !m.done {
		t.Error("Expected model to be done")
	}
}

func TestExecutorErrorIsKept(t *testing.T) {
	boom := errors.New("disk full")
	m := newTUIModel(context.Background(), &scriptedExecutor{err: boom}, "")
	typeLine(m, "todo x")
	if !errors.Is(m.err, boom) {
		t.Errorf("Expected executor error to be kept, got %v", m.err)
	}
}

func TestViewKeepsNewestLines(t *testing.T) {
	m := newTUIModel(context.Background(), &scriptedExecutor{}, "")
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 4})
	for _, l := range []string{"a", "b", "c"} {
		typeLine(m, l)
	}
	view := m.View()
	if strings.Contains(view, "ok: a") || !strings.Contains(view, "ok: c") {
		t.Errorf("Expected only the newest lines, got:\n%s", view)
	}
}
