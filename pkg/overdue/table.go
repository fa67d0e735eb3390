// Package overdue tracks undone deadlines so each one is reported once
// after its due time passes.
package overdue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const fileName = "pending_deadlines.json"

type Entry struct {
	TaskID  string    `json:"task_id"`
	EventID string    `json:"event_id,omitempty"`
	Summary string    `json:"summary"`
	Due     time.Time `json:"due"`
}

type Table struct {
	Entries map[string]Entry `json:"entries"`
	Path    string           `json:"-"`
	dirty   bool
}

func NewTable(dir string) (*Table, error) {
	t := &Table{
		Path:    filepath.Join(dir, fileName),
		Entries: make(map[string]Entry),
	}

	if _, err := os.Stat(t.Path); err == nil {
		if err := t.Load(); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *Table) Load() error {
	f, err := os.Open(t.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(t); err != nil {
		return err
	}
	if t.Entries == nil {
		t.Entries = make(map[string]Entry)
	}
	return nil
}

func (t *Table) Save() error {
	if !t.dirty {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(t.Path), 0700); err != nil {
		return err
	}

	f, err := os.Create(t.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	err = encoder.Encode(t)
	if err == nil {
		t.dirty = false
	}
	return err
}

// Update records a pending deadline. A zero due time removes it. An empty
// eventID keeps the event id already recorded for the task.
func (t *Table) Update(taskID, eventID, summary string, due time.Time) {
	if due.IsZero() {
		t.Remove(taskID)
		return
	}
	old, exists := t.Entries[taskID]
	if eventID == "" && exists {
		eventID = old.EventID
	}
	if !exists || !old.Due.Equal(due) || old.EventID != eventID || old.Summary != summary {
		t.Entries[taskID] = Entry{
			TaskID:  taskID,
			EventID: eventID,
			Summary: summary,
			Due:     due,
		}
		t.dirty = true
	}
}

func (t *Table) Remove(taskID string) {
	if _, exists := t.Entries[taskID]; exists {
		delete(t.Entries, taskID)
		t.dirty = true
	}
}

// Sweep returns entries whose due time is before now, earliest first, and
// removes them.
func (t *Table) Sweep(now time.Time) []Entry {
	var swept []Entry
	for id, entry := range t.Entries {
		if entry.Due.Before(now) {
			swept = append(swept, entry)
			delete(t.Entries, id)
			t.dirty = true
		}
	}
	sort.Slice(swept, func(i, j int) bool {
		return swept[i].Due.Before(swept[j].Due)
	})
	return swept
}
