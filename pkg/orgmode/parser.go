// Package orgmode imports TODO and DONE headings from Org-mode files.
package orgmode

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/nhzaci/ip/pkg/model"
)

var (
	headingRegex   = regexp.MustCompile(`^\*+\s+(TODO|DONE)\s+(?:\[#[A-Z]\]\s*)?(.*?)(?:\s+:[\w@:]+:)?\s*$`)
	timestampRegex = regexp.MustCompile(`(DEADLINE|SCHEDULED):\s+<(\d{4}-\d{2}-\d{2})(?:\s+[A-Za-z]{2,3})?(?:\s+(\d{2}:\d{2}))?[^>]*>`)
)

type heading struct {
	message   string
	done      bool
	deadline  time.Time
	scheduled time.Time
}

func (h *heading) task() (*model.Task, error) {
	switch {
	case !h.deadline.IsZero():
		return model.Restore("", model.KindDeadline, h.message, h.done, h.deadline)
	case !h.scheduled.IsZero():
		return model.Restore("", model.KindEvent, h.message, h.done, h.scheduled)
	default:
		return model.Restore("", model.KindPlain, h.message, h.done, time.Time{})
	}
}

// ParseFile parses a single Org-mode file.
func ParseFile(path string) ([]*model.Task, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Parse(file)
}

// ParseFiles parses several Org-mode files in order.
func ParseFiles(paths []string) ([]*model.Task, error) {
	var all []*model.Task
	for _, path := range paths {
		tasks, err := ParseFile(path)
		if err != nil {
			return nil, err
		}
		all = append(all, tasks...)
	}
	return all, nil
}

// Parse turns TODO/DONE headings into tasks. A DEADLINE line makes a
// deadline task, a SCHEDULED line an event, anything else a todo.
// Headings without text are skipped.
func Parse(r io.Reader) ([]*model.Task, error) {
	scanner := bufio.NewScanner(r)
	var (
		tasks   []*model.Task
		current *heading
	)

	flush := func() error {
		if current == nil || current.message == "" {
			current = nil
			return nil
		}
		task, err := current.task()
		if err != nil {
			return err
		}
		tasks = append(tasks, task)
		current = nil
		return nil
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "*") {
			if err := flush(); err != nil {
				return nil, err
			}
			if m := headingRegex.FindStringSubmatch(line); m != nil {
				current = &heading{
					message: strings.Join(strings.Fields(m[2]), " "),
					done:    m[1] == "DONE",
				}
			}
			continue
		}
		if current == nil {
			continue
		}

		for _, m := range timestampRegex.FindAllStringSubmatch(line, -1) {
			at, ok := parseOrgTime(m[2], m[3])
			if !ok {
				continue
			}
			if m[1] == "DEADLINE" {
				current.deadline = at
			} else {
				current.scheduled = at
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func parseOrgTime(date, clock string) (time.Time, bool) {
	if clock == "" {
		clock = "00:00"
	}
	at, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return at, true
}

// FilterTasks keeps tasks whose description contains word as a whole word.
func FilterTasks(tasks []*model.Task, word string) []*model.Task {
	var filtered []*model.Task
	for _, task := range tasks {
		for _, w := range strings.Fields(task.Message()) {
			if w == word {
				filtered = append(filtered, task)
				break
			}
		}
	}
	return filtered
}
