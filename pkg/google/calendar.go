package google

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"google.golang.org/api/calendar/v3"

	"github.com/nhzaci/ip/pkg/index"
	"github.com/nhzaci/ip/pkg/model"
)

// CalendarClient is a Google Calendar API client.
type CalendarClient struct {
	srv        *calendar.Service
	calendarID string
	index      *index.EventIndex
	now        func() time.Time
}

// NewCalendarClient creates a new Google Calendar client.
func NewCalendarClient(srv *calendar.Service, calendarID string, idx *index.EventIndex) *CalendarClient {
	return &CalendarClient{srv: srv, calendarID: calendarID, index: idx, now: time.Now}
}

// SyncTask creates the task's event or patches the existing one, and
// returns the event id.
func (c *CalendarClient) SyncTask(ctx context.Context, task *model.Task) (string, error) {
	event, err := ConvertTaskToCalendarEvent(task, c.now())
	if err != nil {
		return "", err
	}

	existing, err := c.findEvent(ctx, task.ID())
	if err != nil {
		return "", err
	}

	if existing != nil {
		patch, err := EventNeedsUpdate(existing, event)
		if err != nil {
			log.Warn("could not compare task with its calendar event", "task", task.ID(), "err", err)
			return "", err
		}
		if patch == nil {
			return existing.Id, nil
		}
		updated, err := c.PatchEvent(ctx, existing.Id, patch)
		if err != nil {
			return "", err
		}
		c.remember(task.ID(), updated.Id)
		return updated.Id, nil
	}

	created, err := c.srv.Events.Insert(c.calendarID, event).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create event: %w", err)
	}
	c.remember(task.ID(), created.Id)
	return created.Id, nil
}

// RemoveTask deletes the task's event, if it has one.
func (c *CalendarClient) RemoveTask(ctx context.Context, taskID string) error {
	event, err := c.findEvent(ctx, taskID)
	if err != nil {
		return err
	}
	if c.index != nil {
		c.index.Unlink(taskID)
	}
	if event == nil {
		return nil
	}
	return c.DeleteEvent(ctx, event.Id)
}

// MarkOverdue prefixes the summary of an event whose deadline has passed.
func (c *CalendarClient) MarkOverdue(ctx context.Context, eventID, summary string) error {
	_, err := c.PatchEvent(ctx, eventID, &calendar.Event{Summary: "! " + summary})
	return err
}

// findEvent looks in the local index first and falls back to an API search.
func (c *CalendarClient) findEvent(ctx context.Context, taskID string) (*calendar.Event, error) {
	if c.index != nil {
		if eventID := c.index.EventFor(taskID); eventID != "" {
			event, err := c.srv.Events.Get(c.calendarID, eventID).Context(ctx).Do()
			if err == nil && event.Status != "cancelled" {
				if owner, ok := TaskIDFromEventDescription(event.Description); !ok || owner == taskID {
					return event, nil
				}
				log.Warn("event index points at another task's event", "task", taskID, "event", eventID)
			}
		}
	}

	event, err := c.GetEventByTaskID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("error searching for event: %w", err)
	}
	return event, nil
}

func (c *CalendarClient) remember(taskID, eventID string) {
	if c.index != nil {
		c.index.Link(taskID, eventID)
	}
}

// PatchEvent performs a partial update on an event.
func (c *CalendarClient) PatchEvent(ctx context.Context, eventID string, patch *calendar.Event) (*calendar.Event, error) {
	return c.srv.Events.Patch(c.calendarID, eventID, patch).Context(ctx).Do()
}

// DeleteEvent deletes an event from the calendar.
func (c *CalendarClient) DeleteEvent(ctx context.Context, eventID string) error {
	return c.srv.Events.Delete(c.calendarID, eventID).Context(ctx).Do()
}

// GetEventByTaskID searches for an event carrying the task id in its
// private extended properties.
func (c *CalendarClient) GetEventByTaskID(ctx context.Context, taskID string) (*calendar.Event, error) {
	events, err := c.srv.Events.List(c.calendarID).
		PrivateExtendedProperty(fmt.Sprintf("%s=%s", TaskIDProperty, taskID)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	if len(events.Items) > 0 {
		return events.Items[0], nil
	}
	return nil, nil
}

// Flush persists the event index.
func (c *CalendarClient) Flush() error {
	if c.index == nil {
		return nil
	}
	return c.index.Save()
}
