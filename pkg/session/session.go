// Package session runs text commands against the current task list and
// keeps the file store and the calendar in step with it.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nhzaci/ip/pkg/model"
	"github.com/nhzaci/ip/pkg/overdue"
	"github.com/nhzaci/ip/pkg/parser"
	"github.com/nhzaci/ip/pkg/render"
	"github.com/nhzaci/ip/pkg/tasklist"
)

// Store loads and saves the whole task sequence.
type Store interface {
	Load() ([]*model.Task, error)
	Save(tasks []*model.Task) error
}

// Syncer mirrors deadline and event tasks somewhere else.
type Syncer interface {
	SyncTask(ctx context.Context, task *model.Task) (string, error)
	RemoveTask(ctx context.Context, taskID string) error
	MarkOverdue(ctx context.Context, eventID, summary string) error
	Flush() error
}

// Session owns the current task list for one user.
type Session struct {
	list    *tasklist.TaskList
	store   Store
	syncer  Syncer
	pending *overdue.Table
	now     func() time.Time
}

type Option func(*Session)

// WithSyncer enables calendar sync.
func WithSyncer(s Syncer) Option {
	return func(sess *Session) {
		sess.syncer = s
	}
}

// WithOverdueTable tracks undone deadlines for the overdue sweep.
func WithOverdueTable(t *overdue.Table) Option {
	return func(sess *Session) {
		sess.pending = t
	}
}

func withClock(now func() time.Time) Option {
	return func(sess *Session) {
		sess.now = now
	}
}

// New loads the stored tasks into a new session.
func New(store Store, opts ...Option) (*Session, error) {
	tasks, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	s := &Session{
		list:  tasklist.New(tasks...),
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// List is the current task list snapshot.
func (s *Session) List() *tasklist.TaskList {
	return s.list
}

// Execute runs one command line and returns the reply. Invalid input is
// answered in the reply with a nil error; err is set only when the new
// list could not be saved. exit is true after "bye".
func (s *Session) Execute(ctx context.Context, line string) (reply string, exit bool, err error) {
	cmd, err := parser.Parse(parser.Tokenize(line))
	if err != nil {
		return render.Error(err), false, nil
	}

	var (
		next *tasklist.TaskList
		task *model.Task
	)
	switch cmd.Name {
	case parser.CmdBye:
		return render.Goodbye(), true, nil
	case parser.CmdList:
		return render.List(s.list.Tasks()), false, nil
	case parser.CmdFind:
		return render.Matches(s.list.Find(cmd.Args)), false, nil
	case parser.CmdTodo:
		next, task, err = s.list.AddPlain(cmd.Args)
	case parser.CmdDeadline:
		next, task, err = s.list.AddDeadline(cmd.Args)
	case parser.CmdEvent:
		next, task, err = s.list.AddEvent(cmd.Args)
	case parser.CmdDone:
		next, task, err = s.list.MarkDone(cmd.Args)
	case parser.CmdDelete:
		next, task, err = s.list.Delete(cmd.Args)
	case parser.CmdUpdate:
		next, task, err = s.list.Update(cmd.Args)
	}
	if err != nil {
		if !model.IsInputError(err) {
			return "", false, err
		}
		return render.Error(err), false, nil
	}

	if err := s.store.Save(next.Tasks()); err != nil {
		return "", false, fmt.Errorf("failed to save tasks: %w", err)
	}
	s.list = next

	removed := cmd.Name == parser.CmdDelete
	s.track(ctx, task, removed)

	switch cmd.Name {
	case parser.CmdDelete:
		return render.Deleted(task, next.Len()), false, nil
	case parser.CmdDone:
		return render.Done(task), false, nil
	case parser.CmdUpdate:
		return render.Updated(task), false, nil
	default:
		return render.Added(task, next.Len()), false, nil
	}
}

// track pushes a changed task to the calendar and the overdue table.
// Failures are logged; the command itself has already succeeded.
func (s *Session) track(ctx context.Context, task *model.Task, removed bool) {
	if task == nil {
		return
	}
	log.Debug("task changed", "task", task.ID(), "line", task.Line(), "removed", removed)
	if !task.HasTime() {
		return
	}

	eventID := ""
	if s.syncer != nil {
		var err error
		if removed {
			err = s.syncer.RemoveTask(ctx, task.ID())
		} else {
			eventID, err = s.syncer.SyncTask(ctx, task)
		}
		if err != nil {
			log.Warn("calendar sync failed", "task", task.ID(), "err", err)
		}
		if err := s.syncer.Flush(); err != nil {
			log.Warn("could not save event index", "err", err)
		}
	}

	if s.pending == nil || task.Kind() != model.KindDeadline {
		return
	}
	if removed || task.Done() {
		s.pending.Remove(task.ID())
	} else {
		s.pending.Update(task.ID(), eventID, task.Message(), task.At())
	}
	if err := s.pending.Save(); err != nil {
		log.Warn("could not save overdue table", "err", err)
	}
}

// Import appends tasks, for example from an Org-mode file, and saves.
func (s *Session) Import(ctx context.Context, tasks []*model.Task) (string, error) {
	next := s.list.Append(tasks...)
	if err := s.store.Save(next.Tasks()); err != nil {
		return "", fmt.Errorf("failed to save tasks: %w", err)
	}
	s.list = next
	for _, task := range tasks {
		s.track(ctx, task, false)
	}
	return fmt.Sprintf("Imported %d tasks. Now you have %d tasks in the list.", len(tasks), next.Len()), nil
}

// SweepOverdue reports deadlines that passed since the last sweep, marking
// their calendar events when sync is on. It returns "" when nothing is due.
func (s *Session) SweepOverdue(ctx context.Context) string {
	if s.pending == nil {
		return ""
	}
	entries := s.pending.Sweep(s.now())
	if err := s.pending.Save(); err != nil {
		log.Warn("could not save overdue table", "err", err)
	}

	byID := make(map[string]*model.Task, s.list.Len())
	for _, task := range s.list.Tasks() {
		if task != nil {
			byID[task.ID()] = task
		}
	}

	var late []*model.Task
	for _, e := range entries {
		task, ok := byID[e.TaskID]
		if !ok || task.Done() {
			continue
		}
		late = append(late, task)
		if s.syncer != nil && e.EventID != "" {
			if err := s.syncer.MarkOverdue(ctx, e.EventID, task.Message()); err != nil {
				log.Warn("could not mark event overdue", "event", e.EventID, "err", err)
			}
		}
	}
	if len(late) == 0 {
		return ""
	}
	return render.Overdue(late)
}
