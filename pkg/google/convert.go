package google

import (
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/nhzaci/ip/pkg/model"
)

// TaskIDProperty is the private extended property linking an event to its task.
const TaskIDProperty = "duke_id"

const (
	deadlineBlock = 30 * time.Minute
	eventBlock    = time.Hour
)

// Calendar color ids.
const (
	colorDeadline = "11" // Tomato
	colorEvent    = "9"  // Blueberry
	colorDone     = "8"  // Graphite
)

// ConvertTaskToCalendarEvent builds the calendar event for a deadline or
// event task. A deadline becomes a block ending at its due time, an event a
// block starting at its start time.
func ConvertTaskToCalendarEvent(task *model.Task, now time.Time) (*calendar.Event, error) {
	if task == nil {
		return nil, fmt.Errorf("could not convert nil Task")
	}

	var start, end time.Time
	colorID := colorEvent
	switch task.Kind() {
	case model.KindDeadline:
		end = task.At()
		start = end.Add(-deadlineBlock)
		colorID = colorDeadline
	case model.KindEvent:
		start = task.At()
		end = start.Add(eventBlock)
	default:
		return nil, fmt.Errorf("task has no date to put on a calendar: %s", task.ID())
	}

	prefix := ""
	if task.Done() {
		prefix = "✓"
		colorID = colorDone
	} else if task.Kind() == model.KindDeadline && task.At().Before(now) {
		prefix = "!"
	}

	summary := task.Message()
	if prefix != "" {
		summary = fmt.Sprintf("%s %s", prefix, task.Message())
	}

	var desc strings.Builder
	if task.Kind() == model.KindDeadline {
		desc.WriteString(fmt.Sprintf("Deadline: %s\n", model.FormatTime(task.At())))
	} else {
		desc.WriteString(fmt.Sprintf("Event: %s\n", model.FormatTime(task.At())))
	}
	status := "pending"
	if task.Done() {
		status = "done"
	}
	desc.WriteString(fmt.Sprintf("Status: %s\n", status))
	desc.WriteString(fmt.Sprintf("ID: %s\n", task.ID()))

	return &calendar.Event{
		Summary:     summary,
		ColorId:     colorID,
		Description: desc.String(),
		Start: &calendar.EventDateTime{
			DateTime: start.UTC().Format(time.RFC3339),
		},
		End: &calendar.EventDateTime{
			DateTime: end.UTC().Format(time.RFC3339),
		},
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{
				TaskIDProperty: task.ID(),
			},
		},
	}, nil
}

// EventNeedsUpdate returns a patch holding the fields of target that differ
// from existing, or nil when they already agree.
func EventNeedsUpdate(existing, target *calendar.Event) (*calendar.Event, error) {
	patch := &calendar.Event{}
	needsUpdate := false

	if existing.Summary != target.Summary {
		patch.Summary = target.Summary
		needsUpdate = true
	}
	if existing.Description != target.Description {
		patch.Description = target.Description
		needsUpdate = true
	}
	if existing.ColorId != target.ColorId {
		patch.ColorId = target.ColorId
		needsUpdate = true
	}

	if existing.Start == nil || existing.End == nil {
		patch.Start = target.Start
		patch.End = target.End
		return patch, nil
	}
	existingStart, err := time.Parse(time.RFC3339, existing.Start.DateTime)
	if err != nil {
		return nil, err
	}
	targetStart, err := time.Parse(time.RFC3339, target.Start.DateTime)
	if err != nil {
		return nil, err
	}
	existingEnd, err := time.Parse(time.RFC3339, existing.End.DateTime)
	if err != nil {
		return nil, err
	}
	targetEnd, err := time.Parse(time.RFC3339, target.End.DateTime)
	if err != nil {
		return nil, err
	}
	if !existingStart.Equal(targetStart) || !existingEnd.Equal(targetEnd) {
		patch.Start = target.Start
		patch.End = target.End
		needsUpdate = true
	}

	if needsUpdate {
		return patch, nil
	}
	return nil, nil
}

// TaskIDFromEventDescription recovers the task id written by
// ConvertTaskToCalendarEvent.
func TaskIDFromEventDescription(description string) (string, bool) {
	for _, line := range strings.Split(description, "\n") {
		if id, ok := strings.CutPrefix(line, "ID: "); ok && id != "" {
			return id, true
		}
	}
	return "", false
}
