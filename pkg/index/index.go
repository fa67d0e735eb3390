// Package index remembers which calendar event belongs to which task so a
// sync does not have to search the calendar.
package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/nhzaci/ip/pkg/model"
)

const fileName = "events.json"

type document struct {
	Events map[string]string `json:"events"`
}

// EventIndex maps task ids to calendar event ids.
type EventIndex struct {
	path   string
	mu     sync.RWMutex
	events map[string]string
	dirty  bool
}

// NewEventIndex opens the index stored in dir. A missing file is an empty
// index.
func NewEventIndex(dir string) (*EventIndex, error) {
	idx := &EventIndex{
		path:   filepath.Join(dir, fileName),
		events: make(map[string]string),
	}

	data, err := os.ReadFile(idx.path)
	if os.IsNotExist(err) {
		return idx, nil
	}
	if err != nil {
		return nil, err
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode event index %s: %w", idx.path, err)
	}
	for taskID, eventID := range doc.Events {
		if taskID != "" && eventID != "" {
			idx.events[taskID] = eventID
		}
	}
	return idx, nil
}

func (idx *EventIndex) Path() string {
	return idx.path
}

func (idx *EventIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.events)
}

// EventFor returns the event linked to a task, or "".
func (idx *EventIndex) EventFor(taskID string) string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.events[taskID]
}

// Link records eventID as the task's event. An empty eventID unlinks.
func (idx *EventIndex) Link(taskID, eventID string) {
	if eventID == "" {
		idx.Unlink(taskID)
		return
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.events[taskID] != eventID {
		idx.events[taskID] = eventID
		idx.dirty = true
	}
}

func (idx *EventIndex) Unlink(taskID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if _, ok := idx.events[taskID]; ok {
		delete(idx.events, taskID)
		idx.dirty = true
	}
}

// Retain drops links for tasks that are no longer in tasks and returns how
// many were dropped. Vacant slots are ignored.
func (idx *EventIndex) Retain(tasks []*model.Task) int {
	keep := make(map[string]bool, len(tasks))
	for _, task := range tasks {
		if task != nil {
			keep[task.ID()] = true
		}
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	dropped := 0
	for taskID := range idx.events {
		if !keep[taskID] {
			delete(idx.events, taskID)
			dropped++
		}
	}
	if dropped > 0 {
		idx.dirty = true
	}
	return dropped
}

// Save writes the index if it changed since the last save.
func (idx *EventIndex) Save() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if !idx.dirty {
		return nil
	}

	data, err := json.MarshalIndent(document{Events: idx.events}, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(idx.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".events-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), idx.path); err != nil {
		return err
	}
	idx.dirty = false
	return nil
}
