package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nhzaci/ip/pkg/model"
)

func TestDecode(t *testing.T) {
	input := `{"id":"a1","kind":"T","done":false,"message":"read book"}
{"id":"b2","kind":"D","done":true,"message":"return book","at":"21/12/2020 2359"}
{"kind":"E","done":false,"message":"say hello world","at":"21/12/2021 1300"}
`
	f, err := NewFile(filepath.Join(t.TempDir(), "tasks.jsonl"))
	if err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}
	tasks, err := f.Decode(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("Expected 3 tasks, got %d", len(tasks))
	}
	if tasks[0].ID() != "a1" || tasks[0].Kind() != model.KindPlain {
		t.Errorf("unexpected first task: %s", tasks[0].Line())
	}
	if !tasks[1].Done() || model.FormatTime(tasks[1].At()) != "21/12/2020 2359" {
		t.Errorf("unexpected second task: %s", tasks[1].Line())
	}
	if tasks[2].ID() == "" {
		t.Error("Expected a generated id for a record without one")
	}
}

func TestDecodeSkipsInvalidRecords(t *testing.T) {
	input := `{"kind":"T","done":false,"message":""}
{"kind":"D","done":false,"message":"no time"}
{"kind":"X","done":false,"message":"bad kind"}
{"kind":"E","done":false,"message":"bad time","at":"2021-12-21"}
{"kind":"E","done":false,"message":"month 13","at":"31/13/2020 1000"}
{"kind":"T","done":false,"message":"kept"}
`
	f, err := NewFile(filepath.Join(t.TempDir(), "tasks.jsonl"))
	if err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}
	tasks, err := f.Decode(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Message() != "kept" {
		t.Errorf("Expected only the valid record, got %d tasks", len(tasks))
	}
}

func TestDecodeMalformedJSON(t *testing.T) {
	f, _ := NewFile(filepath.Join(t.TempDir(), "tasks.jsonl"))
	if _, err := f.Decode(strings.NewReader(`{"kind":`)); err == nil {
		t.Error("Expected error for truncated JSON")
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "tasks.jsonl")
	f, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}

	loaded, err := f.Load()
	if err != nil || len(loaded) != 0 {
		t.Fatalf("Expected empty list for missing file, got %v, %v", loaded, err)
	}

	deadline, _ := model.NewDeadline("submit <report>", "01/02/2021 0900")
	tasks := []*model.Task{model.NewPlain("read").MarkDone(), nil, deadline}
	if err := f.Save(tasks); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if lines := strings.Count(string(data), "\n"); lines != 2 {
		t.Errorf("Expected 2 lines, got %d:\n%s", lines, data)
	}
	if !strings.Contains(string(data), "submit <report>") {
		t.Errorf("Expected unescaped message in file, got:\n%s", data)
	}

	loaded, err = f.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("Expected 2 tasks, got %d", len(loaded))
	}
	if loaded[0].Line() != "[T][X] read" || loaded[1].Line() != deadline.Line() {
		t.Errorf("round trip mismatch: %q, %q", loaded[0].Line(), loaded[1].Line())
	}
	if loaded[1].ID() != deadline.ID() {
		t.Errorf("Expected id %s, got %s", deadline.ID(), loaded[1].ID())
	}
}

func TestNewFileEmptyPath(t *testing.T) {
	if _, err := NewFile(""); err == nil {
		t.Error("Expected error for empty path")
	}
}
