// Package classify derives a task's status from its confirmation text and dates.
package classify

import (
	"strings"

	"github.com/harrisonrobin/baronboard/pkg/model"
)

// completionMarker is matched as a substring, so "going" and "mango" count
// as confirmed too.
const completionMarker = "go"

// Classify returns the status of r as of the calendar day ref.
// The first matching rule wins:
//
//	confirmation contains "go"        -> Completed
//	start date after ref              -> NewTask
//	due date before ref               -> Delay
//	due date on or after ref, or none -> Working
func Classify(r model.TaskRecord, ref model.Date) model.Status {
	confirm := strings.ToLower(strings.TrimSpace(r.ConfirmFromBaron))
	if strings.Contains(confirm, completionMarker) {
		return model.Completed
	}

	if !r.StartDate.IsZero() && r.StartDate.After(ref) {
		return model.NewTask
	}

	if !r.DueDate.IsZero() {
		if r.DueDate.Before(ref) {
			return model.Delay
		}
		return model.Working
	}

	return model.Working
}

// ClassifyAll returns a copy of records with Status set on every row.
func ClassifyAll(records []model.TaskRecord, ref model.Date) []model.TaskRecord {
	out := make([]model.TaskRecord, len(records))
	for i, r := range records {
		r.Status = Classify(r, ref)
		out[i] = r
	}
	return out
}
