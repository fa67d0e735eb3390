// Package tasklist applies commands to an immutable, ordered list of tasks.
//
// Every operation validates its arguments before building anything and
// returns a fresh TaskList, so a failed command leaves the receiver exactly
// as it was and earlier snapshots stay valid.
package tasklist

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nhzaci/ip/pkg/model"
	"github.com/nhzaci/ip/pkg/parser"
)

// TaskList is an ordered sequence of task slots. A nil slot is vacant.
type TaskList struct {
	slots []*model.Task
}

// New builds a list holding tasks in order.
func New(tasks ...*model.Task) *TaskList {
	slots := make([]*model.Task, len(tasks))
	copy(slots, tasks)
	return &TaskList{slots: slots}
}

func (l *TaskList) Len() int {
	return len(l.slots)
}

// Tasks returns a copy of the slots.
func (l *TaskList) Tasks() []*model.Task {
	out := make([]*model.Task, len(l.slots))
	copy(out, l.slots)
	return out
}

// Get returns the task at a 0-based position, or nil.
func (l *TaskList) Get(i int) *model.Task {
	if i < 0 || i >= len(l.slots) {
		return nil
	}
	return l.slots[i]
}

// Append returns a new list with tasks added at the end.
func (l *TaskList) Append(tasks ...*model.Task) *TaskList {
	slots := make([]*model.Task, 0, len(l.slots)+len(tasks))
	slots = append(slots, l.slots...)
	slots = append(slots, tasks...)
	return &TaskList{slots: slots}
}

// AddPlain adds a todo whose description is the joined tokens.
func (l *TaskList) AddPlain(tokens []string) (*TaskList, *model.Task, error) {
	if len(tokens) == 0 {
		return nil, nil, fmt.Errorf("%w: the todo you are trying to add cannot be blank", model.ErrBlankTask)
	}
	task := model.NewPlain(parser.Join(tokens))
	return l.Append(task), task, nil
}

// AddDeadline adds a deadline from "<description> /by DD/MM/YYYY HHMM".
func (l *TaskList) AddDeadline(tokens []string) (*TaskList, *model.Task, error) {
	return l.addTimed(tokens, model.KindDeadline, parser.KeywordBy)
}

// AddEvent adds an event from "<description> /at DD/MM/YYYY HHMM".
func (l *TaskList) AddEvent(tokens []string) (*TaskList, *model.Task, error) {
	return l.addTimed(tokens, model.KindEvent, parser.KeywordAt)
}

func (l *TaskList) addTimed(tokens []string, kind model.Kind, keyword string) (*TaskList, *model.Task, error) {
	name := kindName(kind)
	if len(tokens) == 0 {
		return nil, nil, fmt.Errorf("%w: the %s you are trying to add cannot be blank", model.ErrBlankTask, name)
	}

	message, when := parser.Segment(tokens, keyword)
	if len(message) == 0 {
		return nil, nil, fmt.Errorf("%w: please define a task message for your %s", model.ErrBlankTask, name)
	}
	if len(when) <= 1 {
		return nil, nil, fmt.Errorf("%w: please add %s followed by the date and time in DD/MM/YYYY HHMM; "+
			"if there is no time for this %s perhaps consider creating a todo instead",
			model.ErrBlankDetails, keyword, name)
	}

	var (
		task *model.Task
		err  error
	)
	if kind == model.KindDeadline {
		task, err = model.NewDeadline(parser.Join(message), parser.Join(when[1:]))
	} else {
		task, err = model.NewEvent(parser.Join(message), parser.Join(when[1:]))
	}
	if err != nil {
		return nil, nil, err
	}
	return l.Append(task), task, nil
}

// Delete removes the task at the 1-based index in tokens[0]. Later tasks
// shift down by one.
func (l *TaskList) Delete(tokens []string) (*TaskList, *model.Task, error) {
	if len(tokens) == 0 {
		return nil, nil, fmt.Errorf("%w: please input an index for the task you want to delete", model.ErrBlankTask)
	}
	idx, err := l.index(tokens[0])
	if err != nil {
		return nil, nil, err
	}

	slots := make([]*model.Task, 0, len(l.slots)-1)
	slots = append(slots, l.slots[:idx]...)
	slots = append(slots, l.slots[idx+1:]...)
	return &TaskList{slots: slots}, l.slots[idx], nil
}

// MarkDone marks the task at the 1-based index in tokens[0] as done.
func (l *TaskList) MarkDone(tokens []string) (*TaskList, *model.Task, error) {
	if len(tokens) == 0 {
		return nil, nil, fmt.Errorf("%w: please input an index for the task you want to mark as done", model.ErrBlankTask)
	}
	idx, err := l.occupied(tokens[0])
	if err != nil {
		return nil, nil, err
	}
	done := l.slots[idx].MarkDone()
	return l.replace(idx, done), done, nil
}

// Update rewrites the task at the 1-based index in tokens[0].
//
//	update 2 new description                  todo: description only
//	update 2 new description /by 01/01/2021 0900  deadline/event: both
//	update 2 -m new description               deadline/event: description only
//	update 2 -t 01/01/2021 0900               deadline/event: time only
//
// With -t the time is read from the tokens after the flag; "-t /by <time>"
// is accepted as well.
func (l *TaskList) Update(tokens []string) (*TaskList, *model.Task, error) {
	if len(tokens) == 0 {
		return nil, nil, fmt.Errorf("%w: the new task you are trying to update it to cannot be blank", model.ErrBlankTask)
	}
	if parser.CountFlags(tokens) > 1 {
		return nil, nil, fmt.Errorf("%w: please use only a single dash flag in your update command", model.ErrInvalidFlag)
	}
	idx, err := l.occupied(tokens[0])
	if err != nil {
		return nil, nil, err
	}
	target := l.slots[idx]

	flag := model.FlagNone
	if len(tokens) > 1 {
		flag = parser.FlagOf(tokens[1])
	}
	start := 1
	if flag != model.FlagNone {
		start = 2
	}
	var rest []string
	if start < len(tokens) {
		rest = tokens[start:]
	}
	message, when := parser.Segment(rest, parser.KeywordBy, parser.KeywordAt)

	timeOnlyByKeyword := flag == model.FlagTime && target.HasTime() && len(message) == 0 && len(when) > 1
	if len(message) == 0 && !timeOnlyByKeyword {
		return nil, nil, fmt.Errorf("%w: please enter a task description to update your current task", model.ErrBlankTask)
	}

	var updated *model.Task
	switch target.Kind() {
	case model.KindDeadline, model.KindEvent:
		switch flag {
		case model.FlagMessage:
			updated = target.WithMessage(parser.Join(message))
		case model.FlagTime:
			text := parser.Join(message)
			if timeOnlyByKeyword {
				text = parser.Join(when[1:])
			}
			updated, err = target.WithTime(text)
		default:
			if len(when) <= 1 {
				return nil, nil, fmt.Errorf("%w: please enter the date after /by or /at when updating a %s, "+
					"or use -m to update only the description", model.ErrBlankDetails, kindName(target.Kind()))
			}
			updated, err = target.With(parser.Join(message), parser.Join(when[1:]))
		}
		if err != nil {
			return nil, nil, err
		}
	default:
		updated = target.WithMessage(parser.Join(message))
	}

	return l.replace(idx, updated), updated, nil
}

// Find returns, in order, the tasks whose description shares a whole word
// with keywords. Matching is case-sensitive.
func (l *TaskList) Find(keywords []string) []*model.Task {
	if len(keywords) == 0 {
		return []*model.Task{}
	}
	wanted := make(map[string]bool, len(keywords))
	for _, k := range keywords {
		wanted[k] = true
	}

	matches := []*model.Task{}
	for _, task := range l.slots {
		if task == nil {
			continue
		}
		for _, word := range strings.Fields(task.Message()) {
			if wanted[word] {
				matches = append(matches, task)
				break
			}
		}
	}
	return matches
}

func (l *TaskList) replace(idx int, task *model.Task) *TaskList {
	slots := make([]*model.Task, len(l.slots))
	copy(slots, l.slots)
	slots[idx] = task
	return &TaskList{slots: slots}
}

// index converts a 1-based index argument to a 0-based position.
func (l *TaskList) index(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a task number", model.ErrIndexOutOfRange, arg)
	}
	if n < 1 || n > len(l.slots) {
		return 0, fmt.Errorf("%w: task %d does not exist, you currently have %d tasks", model.ErrIndexOutOfRange, n, len(l.slots))
	}
	return n - 1, nil
}

// occupied is index for operations that need a task in the slot.
func (l *TaskList) occupied(arg string) (int, error) {
	idx, err := l.index(arg)
	if err != nil {
		return 0, err
	}
	if l.slots[idx] == nil {
		return 0, fmt.Errorf("%w: there is no task at position %d", model.ErrIndexOutOfRange, idx+1)
	}
	return idx, nil
}

func kindName(kind model.Kind) string {
	switch kind {
	case model.KindDeadline:
		return "deadline"
	case model.KindEvent:
		return "event"
	default:
		return "todo"
	}
}
