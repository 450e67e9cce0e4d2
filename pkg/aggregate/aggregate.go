// Package aggregate turns classified task records into chart-ready counts.
package aggregate

import (
	"sort"

	"github.com/harrisonrobin/baronboard/pkg/model"
	"github.com/harrisonrobin/baronboard/pkg/util"
)

type monthStatus struct {
	month  string
	status model.Status
}

// ByMonth buckets records by the YYYY-MM of their start date and status.
// The result is dense: every month that has at least one dated record is
// paired with all four statuses in model.Statuses order, zero-filled.
// Months are ascending. Records without a valid start date are ignored,
// so an input with no dated records yields nil.
func ByMonth(records []model.TaskRecord) []model.MonthStatusBucket {
	counts := make(map[monthStatus]int)
	seen := make(map[string]struct{})
	for _, r := range records {
		if r.StartDate.IsZero() {
			continue
		}
		month := util.MonthKey(r.StartDate)
		counts[monthStatus{month, r.Status}]++
		seen[month] = struct{}{}
	}
	if len(seen) == 0 {
		return nil
	}

	months := make([]string, 0, len(seen))
	for m := range seen {
		months = append(months, m)
	}
	sort.Strings(months)

	buckets := make([]model.MonthStatusBucket, 0, len(months)*len(model.Statuses))
	for _, m := range months {
		for _, s := range model.Statuses {
			buckets = append(buckets, model.MonthStatusBucket{
				Month:  m,
				Status: s,
				Count:  counts[monthStatus{m, s}],
			})
		}
	}
	return buckets
}

// Months returns the distinct months of a ByMonth result, in order.
func Months(buckets []model.MonthStatusBucket) []string {
	var months []string
	for _, b := range buckets {
		if len(months) == 0 || months[len(months)-1] != b.Month {
			months = append(months, b.Month)
		}
	}
	return months
}

// Series returns the counts of one status across the months of a ByMonth
// result, aligned with Months(buckets).
func Series(buckets []model.MonthStatusBucket, s model.Status) []int {
	var out []int
	for _, b := range buckets {
		if b.Status == s {
			out = append(out, b.Count)
		}
	}
	return out
}

// CountByStatus counts records per status in model.Statuses order,
// including zero counts.
func CountByStatus(records []model.TaskRecord) []model.StatusCount {
	counts := make(map[model.Status]int, len(model.Statuses))
	for _, r := range records {
		counts[r.Status]++
	}
	out := make([]model.StatusCount, len(model.Statuses))
	for i, s := range model.Statuses {
		out[i] = model.StatusCount{Status: s, Count: counts[s]}
	}
	return out
}

// Summarize computes the dashboard counters.
func Summarize(records []model.TaskRecord) model.Summary {
	sum := model.Summary{Total: len(records)}
	for _, r := range records {
		if r.HasPicture() {
			sum.WithImages++
		}
		switch r.Status {
		case model.Completed:
			sum.Completed++
		case model.Delay:
			sum.Delayed++
		}
	}
	return sum
}

// StatusOptions lists the statuses present in records in order of first
// appearance.
func StatusOptions(records []model.TaskRecord) []model.Status {
	var out []model.Status
	seen := make(map[model.Status]bool)
	for _, r := range records {
		if !r.Status.Valid() || seen[r.Status] {
			continue
		}
		seen[r.Status] = true
		out = append(out, r.Status)
	}
	return out
}

// Requesters lists the distinct non-empty requesters, sorted.
func Requesters(records []model.TaskRecord) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range records {
		if r.Requester == "" || seen[r.Requester] {
			continue
		}
		seen[r.Requester] = true
		out = append(out, r.Requester)
	}
	sort.Strings(out)
	return out
}
