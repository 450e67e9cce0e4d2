// Package colors maps task statuses onto the palettes of each output.
package colors

import "github.com/harrisonrobin/baronboard/pkg/model"

// Google Calendar event color IDs.
const (
	calendarTangerine = "6"
	calendarBlueberry = "9"
	calendarBasil     = "10"
	calendarTomato    = "11"
	calendarGraphite  = "8"
)

// CalendarColorID is the Google Calendar colorId for events of status s.
func CalendarColorID(s model.Status) string {
	switch s {
	case model.Completed:
		return calendarBasil
	case model.NewTask:
		return calendarBlueberry
	case model.Delay:
		return calendarTomato
	case model.Working:
		return calendarTangerine
	}
	return calendarGraphite
}

// Hex is the terminal color for status s.
func Hex(s model.Status) string {
	switch s {
	case model.Completed:
		return "#2E7D32"
	case model.NewTask:
		return "#1565C0"
	case model.Delay:
		return "#C62828"
	case model.Working:
		return "#EF6C00"
	}
	return "#757575"
}

// Marker prefixes calendar event titles for status s.
func Marker(s model.Status) string {
	switch s {
	case model.Completed:
		return "✓"
	case model.NewTask:
		return "+"
	case model.Delay:
		return "!"
	}
	return ""
}
