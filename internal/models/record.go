package models

import (
	"github.com/chanpio/honbob/internal/calendar"
)

// AvailabilityRecord is one colleague's lunch availability for the
// current week.
type AvailabilityRecord struct {
	// ID is the stable domain identifier, assigned at first creation
	// and unchanged by edits.
	ID string `json:"id" db:"id"`

	// Name is the display name; non-empty required.
	Name string `json:"name" db:"name"`

	// AvailableToday is tri-state: nil means unset. It is meaningful
	// only on weekdays and is always nil for records created on a
	// weekend.
	AvailableToday *bool `json:"available_today" db:"available_today"`

	// AvailableDays is a duplicate-free subset of Mon..Fri.
	AvailableDays []calendar.Weekday `json:"available_days" db:"available_days"`
}

// StoredRecord is an AvailabilityRecord together with its store
// handle. The handle is the opaque address used to update or delete
// the entry and is distinct from the domain ID; at most one handle
// maps to a given ID at any time.
type StoredRecord struct {
	Handle string `json:"handle" db:"handle"`
	AvailabilityRecord
}

// HasDay reports whether d is in the record's day set.
func (r *AvailabilityRecord) HasDay(d calendar.Weekday) bool {
	for _, have := range r.AvailableDays {
		if have == d {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the record.
func (r *AvailabilityRecord) Clone() AvailabilityRecord {
	out := *r
	if r.AvailableToday != nil {
		v := *r.AvailableToday
		out.AvailableToday = &v
	}
	out.AvailableDays = append([]calendar.Weekday(nil), r.AvailableDays...)
	return out
}

// ApplyTodayChoice folds the today-available choice into a day set.
// Choosing true adds today's flag; choosing false removes only
// today's flag and leaves every other day untouched, so "busy today
// but free later this week" keeps prior selections. On a weekend
// today is not a selectable day and the set is returned unchanged.
func ApplyTodayChoice(days []calendar.Weekday, today calendar.Weekday, available bool) []calendar.Weekday {
	if !calendar.IsValid(today) {
		return days
	}

	out := make([]calendar.Weekday, 0, len(days)+1)
	found := false
	for _, d := range days {
		if d == today {
			found = true
			if !available {
				continue
			}
		}
		out = append(out, d)
	}
	if available && !found {
		out = append(out, today)
	}
	return out
}

// NormalizeDays drops duplicates and non-weekday values, keeping the
// fixed Mon..Fri order.
func NormalizeDays(days []calendar.Weekday) []calendar.Weekday {
	have := make(map[calendar.Weekday]bool, len(days))
	for _, d := range days {
		if calendar.IsValid(d) {
			have[d] = true
		}
	}

	out := make([]calendar.Weekday, 0, len(have))
	for _, d := range calendar.WeekOrder {
		if have[d] {
			out = append(out, d)
		}
	}
	return out
}
