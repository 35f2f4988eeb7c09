package schedule

import "time"

// Resolver computes event dates in a fixed civil timezone. It holds no state; the schedule
// and the current time are passed in on every call.
type Resolver struct {
	loc *time.Location
}

func NewResolver(loc *time.Location) Resolver {
	if loc == nil {
		loc = time.Local
	}
	return Resolver{loc: loc}
}

// DefaultOccurrence returns the third Sunday of the given month. Months outside 1..12 are
// normalized, so month 13 is January of the following year.
func DefaultOccurrence(year int, month time.Month, loc *time.Location) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	// Monday=0 .. Sunday=6
	weekday := (int(first.Weekday()) + 6) % 7
	firstSunday := first.AddDate(0, 0, (6-weekday+7)%7)
	return firstSunday.AddDate(0, 0, 14)
}

// Cutoff is the moment the event on date ends.
func (r Resolver) Cutoff(date time.Time) time.Time {
	date = date.In(r.loc)
	return time.Date(date.Year(), date.Month(), date.Day(), CutoffHour, 0, 0, 0, r.loc)
}

// ParseDate parses a day-month-year date. ok is false for empty or malformed input.
func (r Resolver) ParseDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	date, err := time.ParseInLocation(parseLayout, value, r.loc)
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}

func (r Resolver) FormatDate(date time.Time) string {
	return date.In(r.loc).Format(DateLayout)
}

// NextEventDate returns the override when one is set, otherwise the third Sunday of now's
// month, or of the following month once this month's cutoff has passed.
func (r Resolver) NextEventDate(s Schedule, now time.Time) time.Time {
	if override, ok := r.ParseDate(s.OverrideDate); ok {
		return override
	}
	now = now.In(r.loc)
	date := DefaultOccurrence(now.Year(), now.Month(), r.loc)
	if now.After(r.Cutoff(date)) {
		date = DefaultOccurrence(now.Year(), now.Month()+1, r.loc)
	}
	return date
}

// CurrentEventDate is NextEventDate without advancing to the next month, i.e. the event that
// belongs to now's month even if it is already over.
func (r Resolver) CurrentEventDate(s Schedule, now time.Time) time.Time {
	if override, ok := r.ParseDate(s.OverrideDate); ok {
		return override
	}
	now = now.In(r.loc)
	return DefaultOccurrence(now.Year(), now.Month(), r.loc)
}

func (r Resolver) IsCancelled(s Schedule) bool {
	return s.Cancelled
}

// IsRegistrationOpen reports whether sign-ups are accepted at now. Registration closes at
// 00:00 on the second day before the resolved event and reopens after its cutoff.
func (r Resolver) IsRegistrationOpen(s Schedule, now time.Time) bool {
	if s.Cancelled {
		return false
	}
	event := r.NextEventDate(s, now)
	closedFrom := time.Date(event.Year(), event.Month(), event.Day()-2, 0, 0, 0, 0, r.loc)
	closedUntil := r.Cutoff(event)
	return now.Before(closedFrom) || now.After(closedUntil)
}

// ShouldReset reports whether the current event has ended.
func (r Resolver) ShouldReset(s Schedule, now time.Time) bool {
	return now.After(r.Cutoff(r.CurrentEventDate(s, now)))
}

// AfterReset returns the schedule that follows the conclusion of the current event. The
// cancellation is lifted. An override earlier than the regular date of its month was an extra
// event, so the regular date of the following month takes its place; any other override is
// dropped. LastReset is left for the caller to set.
func (r Resolver) AfterReset(s Schedule) Schedule {
	next := Schedule{LastReset: s.LastReset}
	override, ok := r.ParseDate(s.OverrideDate)
	if !ok {
		return next
	}
	regular := DefaultOccurrence(override.Year(), override.Month(), r.loc)
	if override.Before(regular) {
		next.OverrideDate = r.FormatDate(DefaultOccurrence(override.Year(), override.Month()+1, r.loc))
	}
	return next
}
