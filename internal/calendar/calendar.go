package calendar

import (
	"time"
)

// Weekday is a 3-letter weekday code. Mon..Fri form the ordered lunch
// week; Sat and Sun are a separate weekend mode and carry no order.
type Weekday string

const (
	Mon Weekday = "Mon"
	Tue Weekday = "Tue"
	Wed Weekday = "Wed"
	Thu Weekday = "Thu"
	Fri Weekday = "Fri"
	Sat Weekday = "Sat"
	Sun Weekday = "Sun"
)

// WeekOrder is the fixed Mon..Fri sequence used everywhere a day set
// is iterated or rendered.
var WeekOrder = []Weekday{Mon, Tue, Wed, Thu, Fri}

var dayIndex = map[Weekday]int{Mon: 0, Tue: 1, Wed: 2, Thu: 3, Fri: 4}

// displayLabels maps storage codes to the 1-character labels shown to
// users. Internal logic never touches these; they apply only at the
// API boundary.
var displayLabels = map[Weekday]string{
	Mon: "월", Tue: "화", Wed: "수", Thu: "목", Fri: "금",
	Sat: "토", Sun: "일",
}

var labelToDay = map[string]Weekday{
	"월": Mon, "화": Tue, "수": Wed, "목": Thu, "금": Fri,
}

// At computes the weekday at the given instant in the reference time
// zone, expressed as minutes east of UTC. The caller's local zone is
// irrelevant: the instant is shifted by the offset before the weekday
// is extracted.
func At(now time.Time, offsetMinutes int) Weekday {
	shifted := now.UTC().Add(time.Duration(offsetMinutes) * time.Minute)
	switch shifted.Weekday() {
	case time.Monday:
		return Mon
	case time.Tuesday:
		return Tue
	case time.Wednesday:
		return Wed
	case time.Thursday:
		return Thu
	case time.Friday:
		return Fri
	case time.Saturday:
		return Sat
	default:
		return Sun
	}
}

// IsWeekend reports whether d is Saturday or Sunday.
func IsWeekend(d Weekday) bool {
	return d == Sat || d == Sun
}

// Order returns the Mon..Fri index of d, or -1 for weekend days.
func Order(d Weekday) int {
	if i, ok := dayIndex[d]; ok {
		return i
	}
	return -1
}

// IsValid reports whether d is one of the five selectable weekdays.
func IsValid(d Weekday) bool {
	_, ok := dayIndex[d]
	return ok
}

// IsPastDay reports whether d already passed this week. On a weekend
// every weekday of the upcoming week is still eligible, so the answer
// is always false.
func IsPastDay(d, today Weekday) bool {
	if IsWeekend(today) {
		return false
	}
	return Order(d) < Order(today)
}

// IsResetMoment reports whether the reference-zone local time is
// Saturday 00:00 exactly. The check is minute-wide and is meant to be
// evaluated on a once-per-minute tick.
func IsResetMoment(now time.Time, offsetMinutes int) bool {
	shifted := now.UTC().Add(time.Duration(offsetMinutes) * time.Minute)
	return shifted.Weekday() == time.Saturday &&
		shifted.Hour() == 0 && shifted.Minute() == 0
}

// Label returns the 1-character display label for d, or the code
// itself if d is unknown.
func Label(d Weekday) string {
	if l, ok := displayLabels[d]; ok {
		return l
	}
	return string(d)
}

// FromLabel resolves a 1-character display label back to its weekday
// code. Only Mon..Fri have labels that round-trip.
func FromLabel(label string) (Weekday, bool) {
	d, ok := labelToDay[label]
	return d, ok
}
