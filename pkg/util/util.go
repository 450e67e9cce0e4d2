package util

import (
	"strconv"
	"strings"
	"time"

	"github.com/harrisonrobin/baronboard/pkg/model"
	"github.com/xuri/excelize/v2"
)

const (
	DisplayLayout = "01/02/2006"
	MonthLayout   = "2006-01"

	// Largest serial Excel can represent (9999-12-31).
	maxExcelSerial = 2958465
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04:05",
	// day-first, only when the month-first reading is impossible
	"02/01/2006",
	"2/1/2006",
	"02/01/2006 15:04:05",
	"01-02-06",
	"1-2-06",
	"02-Jan-2006",
	"2-Jan-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2006/01/02",
}

// ParseDate parses a spreadsheet cell into a calendar day.
// It accepts Excel serial numbers and the text layouts people type into
// date columns. The second return is false when nothing matched.
func ParseDate(raw string) (model.Date, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "nan") || s == "NaT" {
		return model.Date{}, false
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial < 1 || serial > maxExcelSerial {
			return model.Date{}, false
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return model.Date{}, false
		}
		return model.DateOf(t), true
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return model.DateOf(t), true
		}
	}
	return model.Date{}, false
}

// Today truncates now to its calendar day. Only entry points read the clock;
// everything below them takes the result as a parameter.
func Today(now time.Time) model.Date {
	return model.DateOf(now)
}

// FormatDate renders d as MM/DD/YYYY, or "" when absent.
func FormatDate(d model.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DisplayLayout)
}

// DisplayDate renders a parsed date, falling back to the raw cell text.
func DisplayDate(d model.Date, raw string) string {
	if !d.IsZero() {
		return FormatDate(d)
	}
	return SafeValue(raw)
}

// MonthKey is the YYYY-MM bucket of d.
func MonthKey(d model.Date) string {
	return d.Format(MonthLayout)
}

// SafeValue trims v and blanks the placeholders spreadsheets leave behind.
func SafeValue(v string) string {
	s := strings.TrimSpace(v)
	if strings.EqualFold(s, "nan") || s == "NaT" {
		return ""
	}
	return s
}
