// Package render formats tasks and command results as reply text.
package render

import (
	"fmt"
	"strings"

	"github.com/nhzaci/ip/pkg/model"
)

const vacant = "Empty Todo"

// Line renders a single slot as the task's message.
func Line(task *model.Task) string {
	if task == nil {
		return vacant
	}
	return task.Message()
}

func Added(task *model.Task, count int) string {
	return fmt.Sprintf("Got it! I've added this task:\n%s\nNow you have %d tasks in the list.", Line(task), count)
}

func Deleted(task *model.Task, count int) string {
	return fmt.Sprintf("Noted. I've removed this task:\n%s\nNow you have %d tasks in the list.", Line(task), count)
}

func Done(task *model.Task) string {
	return fmt.Sprintf("Nice! I've marked this task as done:\n%s", Line(task))
}

func Updated(task *model.Task) string {
	return fmt.Sprintf("Got it! Task has been amended to:\n%s\n.", Line(task))
}

// List renders the whole list, numbered from 1.
func List(tasks []*model.Task) string {
	return "Here are the tasks in your list:\n" + numbered(tasks)
}

// Matches renders find results, numbered from 1.
func Matches(tasks []*model.Task) string {
	return "Here are the matching tasks in your list:\n" + numbered(tasks)
}

// Overdue renders deadlines that have passed without being done.
func Overdue(tasks []*model.Task) string {
	return "These deadlines have passed:\n" + numbered(tasks)
}

func numbered(tasks []*model.Task) string {
	lines := make([]string, len(tasks))
	for i, task := range tasks {
		lines[i] = fmt.Sprintf("%d.%s", i+1, Line(task))
	}
	return strings.Join(lines, "\n")
}

// Error renders a failed command for the user.
func Error(err error) string {
	return "OOPS!!! " + err.Error()
}

func Greeting() string {
	return "Hello! I'm Duke\nWhat can I do for you?"
}

func Goodbye() string {
	return "Bye. Hope to see you again soon!"
}
