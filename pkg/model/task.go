package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind discriminates the task variants.
type Kind string

const (
	KindPlain    Kind = "T"
	KindDeadline Kind = "D"
	KindEvent    Kind = "E"
)

// TimeLayout is DD/MM/YYYY HHMM.
const TimeLayout = "02/01/2006 1504"

// Task is an immutable task value. Every transformation returns a new *Task.
type Task struct {
	id      string
	kind    Kind
	message string
	done    bool
	at      time.Time
}

func NewPlain(message string) *Task {
	return &Task{id: uuid.NewString(), kind: KindPlain, message: message}
}

// NewDeadline creates a deadline task due at when (DD/MM/YYYY HHMM).
func NewDeadline(message, when string) (*Task, error) {
	at, err := ParseTime(when)
	if err != nil {
		return nil, err
	}
	return &Task{id: uuid.NewString(), kind: KindDeadline, message: message, at: at}, nil
}

// NewEvent creates an event task starting at when (DD/MM/YYYY HHMM).
func NewEvent(message, when string) (*Task, error) {
	at, err := ParseTime(when)
	if err != nil {
		return nil, err
	}
	return &Task{id: uuid.NewString(), kind: KindEvent, message: message, at: at}, nil
}

// Restore rebuilds a task from persisted fields. An empty id gets a fresh one.
func Restore(id string, kind Kind, message string, done bool, at time.Time) (*Task, error) {
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("%w: stored task has no description", ErrBlankTask)
	}
	switch kind {
	case KindPlain:
		at = time.Time{}
	case KindDeadline, KindEvent:
		if at.IsZero() {
			return nil, fmt.Errorf("%w: stored %s task has no time", ErrBlankDetails, kind)
		}
	default:
		return nil, fmt.Errorf("unknown task kind %q", kind)
	}
	if id == "" {
		id = uuid.NewString()
	}
	return &Task{id: id, kind: kind, message: message, done: done, at: at}, nil
}

func (t *Task) ID() string      { return t.id }
func (t *Task) Kind() Kind      { return t.kind }
func (t *Task) Message() string { return t.message }
func (t *Task) Done() bool      { return t.done }

// At is the due time of a deadline or the start time of an event.
// It is zero for plain tasks.
func (t *Task) At() time.Time { return t.at }

// HasTime reports whether the variant carries a timestamp.
func (t *Task) HasTime() bool {
	return t.kind == KindDeadline || t.kind == KindEvent
}

// MarkDone returns a copy with the done flag set.
func (t *Task) MarkDone() *Task {
	next := *t
	next.done = true
	return &next
}

// WithMessage returns a copy with a new description.
func (t *Task) WithMessage(message string) *Task {
	next := *t
	next.message = message
	return &next
}

// WithTime returns a copy with a reparsed time. Plain tasks have no time to
// replace.
func (t *Task) WithTime(when string) (*Task, error) {
	if !t.HasTime() {
		return nil, fmt.Errorf("%w: a todo has no date to change", ErrBlankDetails)
	}
	at, err := ParseTime(when)
	if err != nil {
		return nil, err
	}
	next := *t
	next.at = at
	return &next, nil
}

// With replaces description and time together.
func (t *Task) With(message, when string) (*Task, error) {
	next, err := t.WithTime(when)
	if err != nil {
		return nil, err
	}
	next.message = message
	return next, nil
}

// Line is the detailed form of the task used in logs, e.g.
// "[D][X] return book (by: 21/12/2020 2359)". Replies show only the message.
func (t *Task) Line() string {
	mark := " "
	if t.done {
		mark = "X"
	}
	switch t.kind {
	case KindDeadline:
		return fmt.Sprintf("[%s][%s] %s (by: %s)", t.kind, mark, t.message, FormatTime(t.at))
	case KindEvent:
		return fmt.Sprintf("[%s][%s] %s (at: %s)", t.kind, mark, t.message, FormatTime(t.at))
	default:
		return fmt.Sprintf("[%s][%s] %s", t.kind, mark, t.message)
	}
}

// ParseTime parses a DD/MM/YYYY HHMM timestamp in the local zone.
func ParseTime(s string) (time.Time, error) {
	at, err := time.ParseInLocation(TimeLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: please use DD/MM/YYYY HHMM, got %q", ErrDateTimeParse, s)
	}
	return at, nil
}

func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}
