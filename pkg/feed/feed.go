package feed

import (
	"context"
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/clubbrunch/brunch/internal/utils"
	"github.com/clubbrunch/brunch/pkg/schedule"
	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
)

const (
	productId = "-//Club Brunch//Anmeldung//DE"
	summary   = "Frühstücks-Brunch"
	startHour = 10
)

type EventSchedule interface {
	Status(ctx context.Context) (schedule.Status, error)
}

// Service publishes the upcoming brunch dates as an iCalendar feed.
type Service struct {
	schedule    EventSchedule
	clock       utils.Clock
	occurrences int
	host        string
}

func NewService(schedule EventSchedule, clock utils.Clock, occurrences int, host string) *Service {
	return &Service{schedule: schedule, clock: clock, occurrences: occurrences, host: host}
}

// Calendar lists the next event as resolved by the schedule, followed by the regular third
// Sundays of the months after it.
func (s *Service) Calendar(ctx context.Context) (*ical.Calendar, error) {
	status, err := s.schedule.Status(ctx)
	if err != nil {
		return nil, err
	}
	stamp := s.clock.Now()

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productId)
	cal.SetXWRCalName(summary)

	event := s.addEvent(cal, status.Date, stamp)
	if status.Cancelled {
		event.SetStatus(ical.ObjectStatusCancelled)
		event.SetSummary(summary + " (fällt aus)")
	}

	upcoming, err := UpcomingOccurrences(status.Date, s.occurrences)
	if err != nil {
		return nil, err
	}
	for _, date := range upcoming {
		s.addEvent(cal, date, stamp)
	}
	return cal, nil
}

func (s *Service) addEvent(cal *ical.Calendar, date time.Time, stamp time.Time) *ical.VEvent {
	start := time.Date(date.Year(), date.Month(), date.Day(), startHour, 0, 0, 0, date.Location())
	end := time.Date(date.Year(), date.Month(), date.Day(), schedule.CutoffHour, 0, 0, 0, date.Location())

	event := cal.AddEvent(eventUid(s.host, date))
	event.SetDtStampTime(stamp)
	event.SetStartAt(start)
	event.SetEndAt(end)
	event.SetSummary(summary)
	event.SetDescription("Anmeldung bis zwei Tage vorher unter " + s.host)
	event.SetURL(s.host)
	event.SetStatus(ical.ObjectStatusConfirmed)
	return event
}

// UpcomingOccurrences returns the regular event dates of the count months following after.
func UpcomingOccurrences(after time.Time, count int) ([]time.Time, error) {
	if count <= 0 {
		return nil, nil
	}
	firstOfNextMonth := time.Date(after.Year(), after.Month()+1, 1, 0, 0, 0, 0, after.Location())
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.MONTHLY,
		Byweekday: []rrule.Weekday{rrule.SU.Nth(3)},
		Dtstart:   firstOfNextMonth,
		Count:     count,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid recurrence: %w", err)
	}
	return rule.All(), nil
}

// eventUid is stable per date so calendar clients update instead of duplicating entries.
func eventUid(host string, date time.Time) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(host+"/"+date.Format("2006-01-02"))).String()
}
