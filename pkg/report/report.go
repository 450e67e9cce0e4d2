// Package report runs the extract, classify and aggregate pipeline.
package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/harrisonrobin/baronboard/pkg/aggregate"
	"github.com/harrisonrobin/baronboard/pkg/classify"
	"github.com/harrisonrobin/baronboard/pkg/extract"
	"github.com/harrisonrobin/baronboard/pkg/model"
)

// Report is everything the presentation layer needs for one input.
type Report struct {
	Source    string
	Reference model.Date
	Records   []model.TaskRecord
	Months    []model.MonthStatusBucket
	Counts    []model.StatusCount
	Summary   model.Summary
	// Filter choices, always taken from the unfiltered input.
	StatusOptions []model.Status
	Requesters    []string
}

// Build classifies records as of ref and aggregates them.
func Build(source string, records []model.TaskRecord, ref model.Date) *Report {
	classified := classify.ClassifyAll(records, ref)
	r := summarize(source, classified, ref)
	r.StatusOptions = aggregate.StatusOptions(classified)
	r.Requesters = aggregate.Requesters(classified)
	return r
}

func summarize(source string, classified []model.TaskRecord, ref model.Date) *Report {
	return &Report{
		Source:    source,
		Reference: ref,
		Records:   classified,
		Months:    aggregate.ByMonth(classified),
		Counts:    aggregate.CountByStatus(classified),
		Summary:   aggregate.Summarize(classified),
	}
}

// Load reads records from src and builds the report. Structural failures
// are returned as errors; there is no partial report.
func Load(ctx context.Context, src Source, opts extract.Options, ref model.Date) (*Report, error) {
	records, err := src.Records(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", src.Name(), err)
	}
	return Build(src.Name(), records, ref), nil
}

// Filter narrows the rows shown on the dashboard. Empty fields match all.
type Filter struct {
	Statuses   []model.Status
	Requesters []string
	Query      string
}

// IsZero reports whether f matches every record.
func (f Filter) IsZero() bool {
	return len(f.Statuses) == 0 && len(f.Requesters) == 0 && strings.TrimSpace(f.Query) == ""
}

// Match reports whether r passes f.
func (f Filter) Match(r model.TaskRecord) bool {
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, r.Status) {
		return false
	}
	if len(f.Requesters) > 0 && !containsString(f.Requesters, r.Requester) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		haystack := strings.ToLower(r.Task + "\n" + r.Requester + "\n" + r.ConfirmFromBaron)
		if !strings.Contains(haystack, q) {
			return false
		}
	}
	return true
}

// Filter returns a report over the records matching f, with counters and
// charts recomputed. Filter choices are kept from r.
func (r *Report) Filter(f Filter) *Report {
	if f.IsZero() {
		return r
	}
	var kept []model.TaskRecord
	for _, rec := range r.Records {
		if f.Match(rec) {
			kept = append(kept, rec)
		}
	}
	out := summarize(r.Source, kept, r.Reference)
	out.StatusOptions = r.StatusOptions
	out.Requesters = r.Requesters
	return out
}

func containsStatus(list []model.Status, s model.Status) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
