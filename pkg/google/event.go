package google

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/harrisonrobin/baronboard/pkg/colors"
	"github.com/harrisonrobin/baronboard/pkg/model"
	"github.com/harrisonrobin/baronboard/pkg/util"
	"google.golang.org/api/calendar/v3"
)

// RecordKeyProperty is the private extended property holding a record key.
const RecordKeyProperty = "baronboard_id"

const eventDateLayout = "2006-01-02"

var recordNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/harrisonrobin/baronboard"))

// RecordKey identifies a task row across spreadsheet edits that move it: it
// hashes the task text, the requester and the raw start date.
func RecordKey(r model.TaskRecord) string {
	name := strings.Join([]string{
		strings.TrimSpace(r.Task),
		strings.TrimSpace(r.Requester),
		strings.TrimSpace(r.StartRaw),
	}, "\x1f")
	return uuid.NewSHA1(recordNamespace, []byte(name)).String()
}

// ConvertRecordToEvent builds the all-day event published for a record on
// its due date.
func ConvertRecordToEvent(r model.TaskRecord) (*calendar.Event, error) {
	if r.DueDate.IsZero() {
		return nil, fmt.Errorf("row %d has no due date", r.Row)
	}

	title := strings.TrimSpace(r.Task)
	if title == "" {
		title = fmt.Sprintf("Row %d", r.Row)
	}
	if m := colors.Marker(r.Status); m != "" {
		title = m + " " + title
	}

	key := RecordKey(r)
	return &calendar.Event{
		Summary:     title,
		Description: eventDescription(r, key),
		ColorId:     colors.CalendarColorID(r.Status),
		Start:       &calendar.EventDateTime{Date: r.DueDate.Format(eventDateLayout)},
		End:         &calendar.EventDateTime{Date: r.DueDate.AddDays(1).Format(eventDateLayout)},
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{RecordKeyProperty: key},
		},
	}, nil
}

func eventDescription(r model.TaskRecord, key string) string {
	var b strings.Builder
	line := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%s: %s\n", label, value)
		}
	}
	line("Requester", strings.TrimSpace(r.Requester))
	line("Start", util.DisplayDate(r.StartDate, r.StartRaw))
	line("Due", util.DisplayDate(r.DueDate, r.DueRaw))
	line("Confirm from Baron", util.SafeValue(r.ConfirmFromBaron))
	line("Status", r.Status.Label())
	fmt.Fprintf(&b, "\n%s: %s", RecordKeyProperty, key)
	return b.String()
}

// EventNeedsUpdate returns a patch carrying the fields of target that differ
// from existing, or nil when the event is up to date.
func EventNeedsUpdate(existing, target *calendar.Event) *calendar.Event {
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
	if eventDate(existing.Start) != eventDate(target.Start) || eventDate(existing.End) != eventDate(target.End) {
		patch.Start = target.Start
		patch.End = target.End
		needsUpdate = true
	}

	if needsUpdate {
		return patch
	}
	return nil
}

// eventDate is the calendar day of an event boundary. Timed events that were
// edited by hand in the calendar UI compare by their date part.
func eventDate(t *calendar.EventDateTime) string {
	if t == nil {
		return ""
	}
	if t.Date != "" {
		return t.Date
	}
	if len(t.DateTime) >= len(eventDateLayout) {
		return t.DateTime[:len(eventDateLayout)]
	}
	return t.DateTime
}
