package model

import "time"

// Date is a calendar day with no time-of-day component.
// The zero value means the date is absent or could not be parsed.
type Date struct {
	t time.Time
}

// NewDate returns the calendar day y-m-d.
func NewDate(y int, m time.Month, d int) Date {
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	if t.IsZero() {
		return Date{}
	}
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

func (d Date) IsZero() bool           { return d.t.IsZero() }
func (d Date) Before(o Date) bool     { return d.t.Before(o.t) }
func (d Date) After(o Date) bool      { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool      { return d.t.Equal(o.t) }
func (d Date) AddDays(n int) Date     { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) Time() time.Time        { return d.t }
func (d Date) Year() int              { return d.t.Year() }
func (d Date) Month() time.Month      { return d.t.Month() }
func (d Date) Format(l string) string { return d.t.Format(l) }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format("2006-01-02")
}

// Picture is an image embedded in the sheet, anchored at Cell.
type Picture struct {
	Cell        string
	ContentType string
	Data        []byte
}

// TaskRecord is one row of the task sheet.
// Text fields are empty when the cell or its column is absent.
type TaskRecord struct {
	Row              int
	Task             string
	Requester        string
	ConfirmFromBaron string
	// Raw cell text, kept for display when the date does not parse.
	StartRaw  string
	DueRaw    string
	StartDate Date
	DueDate   Date
	Picture   *Picture
	// Derived by the classifier.
	Status Status
}

// HasPicture reports whether an image is anchored in the row's PICTURE cell.
func (r TaskRecord) HasPicture() bool {
	return r.Picture != nil && len(r.Picture.Data) > 0
}

// MonthStatusBucket is the number of tasks starting in Month with Status.
type MonthStatusBucket struct {
	Month  string `json:"month" yaml:"month"`
	Status Status `json:"status" yaml:"status"`
	Count  int    `json:"count" yaml:"count"`
}

// StatusCount is the number of tasks with Status.
type StatusCount struct {
	Status Status `json:"status" yaml:"status"`
	Count  int    `json:"count" yaml:"count"`
}

// Summary holds the dashboard counters.
type Summary struct {
	Total      int `json:"total" yaml:"total"`
	WithImages int `json:"with_images" yaml:"with_images"`
	Completed  int `json:"completed" yaml:"completed"`
	Delayed    int `json:"delayed" yaml:"delayed"`
}
