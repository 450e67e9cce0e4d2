package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/harrisonrobin/baronboard/pkg/index"
	"github.com/harrisonrobin/baronboard/pkg/model"
	"go.uber.org/zap"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
)

var ErrCalendarNotFound = errors.New("calendar not found")

// FindCalendar resolves a calendar by id or summary on the user's calendar
// list. "primary" is passed through.
func FindCalendar(ctx context.Context, srv *calendar.Service, name string) (string, error) {
	if name == "" || name == "primary" {
		return "primary", nil
	}
	var found string
	err := srv.CalendarList.List().Context(ctx).Pages(ctx, func(list *calendar.CalendarList) error {
		for _, item := range list.Items {
			if item.Id == name || item.Summary == name || item.SummaryOverride == name {
				found = item.Id
				return errStopPaging
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopPaging) {
		return "", fmt.Errorf("unable to list calendars: %w", err)
	}
	if found == "" {
		return "", fmt.Errorf("%w: %q", ErrCalendarNotFound, name)
	}
	return found, nil
}

var errStopPaging = errors.New("stop paging")

// CalendarClient is a Google Calendar API client.
type CalendarClient struct {
	srv        *calendar.Service
	calendarID string
	index      *index.EventIndex
}

// NewCalendarClient creates a new Google Calendar client.
func NewCalendarClient(srv *calendar.Service, calendarID string, idx *index.EventIndex) *CalendarClient {
	return &CalendarClient{srv: srv, calendarID: calendarID, index: idx}
}

// SyncResult reports what a sync did to one event.
type SyncResult int

const (
	Unchanged SyncResult = iota
	Created
	Patched
)

// SyncRecord creates the record's event or patches the existing one.
func (c *CalendarClient) SyncRecord(ctx context.Context, r model.TaskRecord) (*calendar.Event, SyncResult, error) {
	event, err := ConvertRecordToEvent(r)
	if err != nil {
		return nil, Unchanged, err
	}
	key := RecordKey(r)

	var existing *calendar.Event
	if c.index != nil {
		if eventID := c.index.Get(key); eventID != "" {
			existing, err = c.srv.Events.Get(c.calendarID, eventID).Context(ctx).Do()
			if err != nil || existing.Status == "cancelled" {
				zap.S().Debugf("indexed event %s for %s is gone, searching", eventID, key)
				existing = nil
			}
		}
	}

	if existing == nil {
		existing, err = c.GetEventByRecordKey(ctx, key)
		if err != nil {
			return nil, Unchanged, fmt.Errorf("error searching for event: %w", err)
		}
	}

	if existing != nil {
		patch := EventNeedsUpdate(existing, event)
		if patch == nil {
			c.remember(key, existing.Id)
			return existing, Unchanged, nil
		}
		updated, err := c.PatchEvent(ctx, existing.Id, patch)
		if err != nil {
			return nil, Unchanged, err
		}
		c.remember(key, updated.Id)
		return updated, Patched, nil
	}

	created, err := c.srv.Events.Insert(c.calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, Unchanged, err
	}
	c.remember(key, created.Id)
	return created, Created, nil
}

func (c *CalendarClient) remember(key, eventID string) {
	if c.index != nil {
		c.index.Set(key, eventID)
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

// GetEventByRecordKey searches for an event carrying the record key in its
// private extended properties.
func (c *CalendarClient) GetEventByRecordKey(ctx context.Context, key string) (*calendar.Event, error) {
	events, err := c.srv.Events.List(c.calendarID).
		PrivateExtendedProperty(fmt.Sprintf("%s=%s", RecordKeyProperty, key)).
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

// Prune deletes the indexed events whose record is no longer among records
// with a due date: rows that were removed, lost their due date, or had their
// task, requester or start date edited. Events missing from the calendar are
// dropped from the index too. Without an index there is nothing to prune.
func (c *CalendarClient) Prune(ctx context.Context, records []model.TaskRecord) (int, error) {
	if c.index == nil {
		return 0, nil
	}
	live := make(map[string]bool, len(records))
	for _, r := range records {
		if !r.DueDate.IsZero() {
			live[RecordKey(r)] = true
		}
	}

	deleted := 0
	for _, key := range c.index.Keys() {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}
		if live[key] {
			continue
		}
		eventID := c.index.Get(key)
		if err := c.DeleteEvent(ctx, eventID); err != nil && !isGone(err) {
			zap.S().Warnf("could not delete stale event %s: %v", eventID, err)
			continue
		}
		c.index.Remove(key)
		deleted++
	}
	return deleted, nil
}

func isGone(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && (apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone)
}

// PushStats counts the outcome of a push.
type PushStats struct {
	Created   int `json:"created" yaml:"created"`
	Patched   int `json:"patched" yaml:"patched"`
	Unchanged int `json:"unchanged" yaml:"unchanged"`
	Skipped   int `json:"skipped" yaml:"skipped"`
	Failed    int `json:"failed" yaml:"failed"`
	Deleted   int `json:"deleted" yaml:"deleted"`
}

// Push syncs every record with a due date. Failures on single records are
// logged and counted; the push carries on with the rest.
func (c *CalendarClient) Push(ctx context.Context, records []model.TaskRecord) (PushStats, error) {
	var stats PushStats
	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if r.DueDate.IsZero() {
			stats.Skipped++
			continue
		}
		_, res, err := c.SyncRecord(ctx, r)
		if err != nil {
			zap.S().Warnf("row %d (%s): %v", r.Row, r.Task, err)
			stats.Failed++
			continue
		}
		switch res {
		case Created:
			stats.Created++
		case Patched:
			stats.Patched++
		default:
			stats.Unchanged++
		}
	}
	return stats, nil
}
