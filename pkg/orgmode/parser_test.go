package orgmode

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nhzaci/ip/pkg/model"
)

const sample = `#+TITLE: chores
* TODO [#A] Return library book    :errand:
  DEADLINE: <2021-01-02 Sat 10:00>
  :PROPERTIES:
  :ID: 1234
  :END:
* DONE Team standup
  SCHEDULED: <2021-01-03 Sun 09:30>
* TODO Water plants
* Notes
  DEADLINE: <2021-05-05 Wed>
** TODO Pay rent
   DEADLINE: <2021-02-01 Mon>
* TODO
`

func TestParse(t *testing.T) {
	tasks, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := []string{
		"[D][ ] Return library book (by: 02/01/2021 1000)",
		"[E][X] Team standup (at: 03/01/2021 0930)",
		"[T][ ] Water plants",
		"[D][ ] Pay rent (by: 01/02/2021 0000)",
	}
	if len(tasks) != len(want) {
		t.Fatalf("Expected %d tasks, got %d", len(want), len(tasks))
	}
	for i, task := range tasks {
		if task.Line() != want[i] {
			t.Errorf("task %d: got %q, want %q", i, task.Line(), want[i])
		}
		if task.ID() == "" {
			t.Errorf("task %d has no id", i)
		}
	}
}

func TestParseFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.org")
	b := filepath.Join(dir, "b.org")
	os.WriteFile(a, []byte("* TODO one\n"), 0600)
	os.WriteFile(b, []byte("* DONE two\n"), 0600)

	tasks, err := ParseFiles([]string{a, b})
	if err != nil {
		t.Fatalf("ParseFiles failed: %v", err)
	}
	if len(tasks) != 2 || tasks[0].Message() != "one" || !tasks[1].Done() {
		t.Errorf("unexpected tasks: %v", tasks)
	}

	if _, err := ParseFiles([]string{filepath.Join(dir, "missing.org")}); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestFilterTasks(t *testing.T) {
	tasks := []*model.Task{model.NewPlain("buy milk"), model.NewPlain("buy milkshake"), model.NewPlain("sell milk")}
	got := FilterTasks(tasks, "milk")
	if len(got) != 2 || got[0] != tasks[0] || got[1] != tasks[2] {
		t.Errorf("Expected first and last task, got %d", len(got))
	}
}
