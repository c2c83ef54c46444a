// Package event holds the pure scheduling predicates for destiny events.
package event

import (
	"time"

	"tuluyen/internal/model"
)

const DateLayout = "2006-01-02"

// ParseDate parses a calendar date, ignoring any time component.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// Stamp formats t as a calendar date string for daily gating.
func Stamp(t time.Time) string {
	return t.Format(DateLayout)
}

// withinHorizon compares calendar dates as strings so the window is the same
// in every timezone. ISO dates order lexically.
func withinHorizon(ev model.UserEvent, today time.Time, horizonDays int) bool {
	if _, err := ParseDate(ev.Date); err != nil {
		return false
	}
	return ev.Date >= Stamp(today) && ev.Date <= Stamp(today.AddDate(0, 0, horizonDays))
}

// DueForPreparation selects events whose preparatory tasks have not been
// generated yet and whose date falls within [today, today+horizonDays].
func DueForPreparation(events []model.UserEvent, today time.Time, horizonDays int) []model.UserEvent {
	var due []model.UserEvent
	for _, ev := range events {
		if ev.TasksGenerated {
			continue
		}
		if withinHorizon(ev, today, horizonDays) {
			due = append(due, ev)
		}
	}
	return due
}

// HasUpcoming reports whether any event (generated or not) falls within the
// horizon. Used for the UI badge; independent of preparation state.
func HasUpcoming(events []model.UserEvent, today time.Time, horizonDays int) bool {
	for _, ev := range events {
		if withinHorizon(ev, today, horizonDays) {
			return true
		}
	}
	return false
}
