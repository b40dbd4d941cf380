package validation

import (
	"errors"
	"strings"

	"github.com/chanpio/honbob/internal/calendar"
	"github.com/chanpio/honbob/internal/models"
)

// ValidationError is a blocking submission rejection, surfaced to the
// user as a modal dialog. Nothing is written to the store.
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	// ErrEmptyName rejects a submission without a name.
	ErrEmptyName = &ValidationError{Code: "empty_name", Message: "이름을 입력해주세요!"}

	// ErrTodayChoiceMissing rejects a weekday submission that never
	// answered the "available today?" question.
	ErrTodayChoiceMissing = &ValidationError{Code: "today_choice_missing", Message: "오늘 점심 가능 여부를 선택해주세요!"}

	// ErrFullyUnavailable is the graceful decline: busy today and no
	// other day selected means "see you next time", an acknowledged
	// no-op rather than a hard error.
	ErrFullyUnavailable = errors.New("fully unavailable this week")
)

// IsResetKeyword reports whether the submitted name is the exact-match
// administrative reset keyword.
func IsResetKeyword(name, keyword string) bool {
	return keyword != "" && name == keyword
}

// IsGracefulDecline reports whether err is the fully-unavailable
// acknowledgment rather than a validation rejection.
func IsGracefulDecline(err error) bool {
	return errors.Is(err, ErrFullyUnavailable)
}

// CheckSubmission validates an intake submission for the given
// reference-zone day. The reset-keyword check runs before this in the
// workflow and short-circuits it entirely.
//
// Order: name presence, then on weekdays only: the today choice must
// be explicit, and a false today choice with an otherwise empty day
// set is the graceful decline. Weekend submissions skip both weekday
// checks since the form covers next week's availability.
func CheckSubmission(req *models.SubmitRequest, today calendar.Weekday) error {
	if strings.TrimSpace(req.Name) == "" {
		return ErrEmptyName
	}

	if calendar.IsWeekend(today) {
		return nil
	}

	if req.AvailableToday == nil {
		return ErrTodayChoiceMissing
	}

	days := models.ApplyTodayChoice(models.NormalizeDays(req.AvailableDays), today, *req.AvailableToday)
	if !*req.AvailableToday && len(days) == 0 {
		return ErrFullyUnavailable
	}

	return nil
}
