package models

import (
	"time"

	"github.com/chanpio/honbob/internal/calendar"
)

// View names the frontend view a response directs the client to.
type View string

const (
	ViewIntake       View = "intake"
	ViewRoster       View = "roster"
	ViewConfirmation View = "confirmation"
)

// SubmitRequest is the intake form payload.
type SubmitRequest struct {
	Name           string             `json:"name"`
	AvailableToday *bool              `json:"available_today"`
	AvailableDays  []calendar.Weekday `json:"available_days"`
}

// SubmitStatus classifies the outcome of a submission.
type SubmitStatus string

const (
	// SubmitCommitted means the record was written to the store.
	SubmitCommitted SubmitStatus = "committed"
	// SubmitDeclined means the graceful "see you next time" exit: the
	// user is fully unavailable this week and nothing was written.
	SubmitDeclined SubmitStatus = "declined"
	// SubmitReset means the reset keyword cleared the whole roster.
	SubmitReset SubmitStatus = "reset"
)

// SubmitResult is returned for every accepted submission path.
type SubmitResult struct {
	Status   SubmitStatus `json:"status"`
	RecordID string       `json:"record_id,omitempty"`
	Message  string       `json:"message,omitempty"`
	View     View         `json:"view"`
}

// RosterEntry is one roster row with display labels applied and
// already-past days filtered out.
type RosterEntry struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Days      []calendar.Weekday `json:"days"`
	DayLabels []string           `json:"day_labels"`
	Today     bool               `json:"today"`
}

// RosterResponse is the live roster projection for the roster view.
type RosterResponse struct {
	Today      calendar.Weekday `json:"today"`
	TodayLabel string           `json:"today_label"`
	Weekend    bool             `json:"weekend"`
	Entries    []RosterEntry    `json:"entries"`
}

// ReserveRequest selects roster members for a lunch appointment.
type ReserveRequest struct {
	RecordIDs []string `json:"record_ids" binding:"required,min=1"`
}

// ReserveResponse is the confirmation view payload: the common
// available day(s) of the selected members and their names joined by
// a fixed delimiter.
type ReserveResponse struct {
	CommonDays      []calendar.Weekday `json:"common_days"`
	CommonDayLabels []string           `json:"common_day_labels"`
	NoCommonDay     bool               `json:"no_common_day"`
	Members         string             `json:"members"`
	Message         string             `json:"message"`
	View            View               `json:"view"`
}

// DeleteResponse acknowledges a soft delete and carries the undo
// deadline.
type DeleteResponse struct {
	RecordID      string    `json:"record_id"`
	Message       string    `json:"message"`
	UndoDeadline  time.Time `json:"undo_deadline"`
	UndoAvailable bool      `json:"undo_available"`
}

// UndoResponse reports whether a pending deletion was restored.
type UndoResponse struct {
	Restored bool   `json:"restored"`
	RecordID string `json:"record_id,omitempty"`
	Message  string `json:"message"`
}

// EditState is the session-cached priming snapshot for editing an
// existing record: the workflow writes back to the same handle
// without re-searching the store.
type EditState struct {
	Handle string             `json:"handle"`
	ID     string             `json:"id"`
	Name   string             `json:"name"`
	Today  *bool              `json:"today"`
	Days   []calendar.Weekday `json:"days"`
}
