package schedule

import (
	"errors"
	"strconv"
	"time"
)

// Keys of the schedule entries in the configuration store.
const (
	OverrideDateKey = "override_date"
	CancelledKey    = "cancelled"
	// LastResetKey holds the date of the last event whose registrations were archived.
	LastResetKey = "last_reset"
)

const (
	// DateLayout is the day-month-year form dates are displayed and stored in.
	DateLayout = "02.01.2006"
	// parseLayout also accepts days and months without a leading zero.
	parseLayout = "2.1.2006"
	// CutoffHour is the local hour an event ends at.
	CutoffHour = 15
)

var ErrInvalidOverrideDate = errors.New("invalid override date")

// Schedule is the administrator controlled state of the upcoming event.
type Schedule struct {
	// OverrideDate replaces the computed third Sunday when it holds a valid date. It is kept
	// as stored, so a malformed value stays visible until an administrator replaces it.
	OverrideDate string
	Cancelled    bool
	LastReset    string
}

// FromValues builds a Schedule from raw configuration entries. Missing keys mean "not set".
func FromValues(values map[string]string) Schedule {
	cancelled, err := strconv.ParseBool(values[CancelledKey])
	if err != nil {
		cancelled = false
	}
	return Schedule{
		OverrideDate: values[OverrideDateKey],
		Cancelled:    cancelled,
		LastReset:    values[LastResetKey],
	}
}

func (s Schedule) Values() map[string]string {
	return map[string]string{
		OverrideDateKey: s.OverrideDate,
		CancelledKey:    strconv.FormatBool(s.Cancelled),
		LastResetKey:    s.LastReset,
	}
}

// Status is what the sign-up page and the admin page show about the upcoming event.
type Status struct {
	EventDate    string
	Date         time.Time
	OverrideDate string
	Cancelled    bool
	Open         bool
}
