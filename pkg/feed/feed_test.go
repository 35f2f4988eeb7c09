package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/clubbrunch/brunch/internal/utils"
	"github.com/clubbrunch/brunch/pkg/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

var berlin = mustLoad("Europe/Berlin")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func setupFeed(t *testing.T, occurrences int) (*Service, *schedule.ServiceImpl) {
	t.Helper()
	clock := &utils.MockClock{FixedNow: time.Date(2024, time.March, 1, 10, 0, 0, 0, berlin)}
	scheduleService := schedule.NewService(schedule.NewRepositoryStub(), schedule.NewResolver(berlin), clock)
	return NewService(scheduleService, clock, occurrences, "https://brunch.example.org"), scheduleService
}

func TestUpcomingOccurrencesMatchDefaultOccurrence(t *testing.T) {
	after := time.Date(2023, time.November, 19, 0, 0, 0, 0, berlin)

	dates, err := UpcomingOccurrences(after, 24)

	require.NoError(t, err)
	require.Len(t, dates, 24)
	month := time.Date(2023, time.December, 1, 0, 0, 0, 0, berlin)
	for i, date := range dates {
		expected := schedule.DefaultOccurrence(month.Year(), month.Month(), berlin)
		assert.True(t, expected.Equal(date), "occurrence %d: expected %s, got %s", i, expected, date)
		month = month.AddDate(0, 1, 0)
	}
}

func TestUpcomingOccurrencesNone(t *testing.T) {
	dates, err := UpcomingOccurrences(time.Now(), 0)

	require.NoError(t, err)
	assert.Empty(t, dates)
}

func TestService_Calendar(t *testing.T) {
	service, _ := setupFeed(t, 3)

	cal, err := service.Calendar(ctx)
	require.NoError(t, err)

	events := cal.Events()
	require.Len(t, events, 4)
	starts := make([]string, 0, len(events))
	for _, event := range events {
		start, err := event.GetStartAt()
		require.NoError(t, err)
		starts = append(starts, start.In(berlin).Format("02.01.2006 15:04"))
	}
	assert.Equal(t, []string{"17.03.2024 10:00", "21.04.2024 10:00", "19.05.2024 10:00", "16.06.2024 10:00"}, starts)
	assert.Equal(t, string(ical.ObjectStatusConfirmed), events[0].GetProperty(ical.ComponentPropertyStatus).Value)
}

func TestService_CalendarWithCancelledOverride(t *testing.T) {
	service, scheduleService := setupFeed(t, 1)
	require.NoError(t, scheduleService.UpdateSchedule(ctx, "10.03.2024", true))

	cal, err := service.Calendar(ctx)
	require.NoError(t, err)

	events := cal.Events()
	require.Len(t, events, 2)
	start, err := events[0].GetStartAt()
	require.NoError(t, err)
	assert.Equal(t, "10.03.2024", start.In(berlin).Format("02.01.2006"))
	assert.Equal(t, string(ical.ObjectStatusCancelled), events[0].GetProperty(ical.ComponentPropertyStatus).Value)
	assert.Contains(t, events[0].GetProperty(ical.ComponentPropertySummary).Value, "fällt aus")
	start, err = events[1].GetStartAt()
	require.NoError(t, err)
	assert.Equal(t, "21.04.2024", start.In(berlin).Format("02.01.2006"))
}

func TestEventUidIsStable(t *testing.T) {
	date := time.Date(2024, time.March, 17, 0, 0, 0, 0, berlin)

	assert.Equal(t, eventUid("https://a.example", date), eventUid("https://a.example", date))
	assert.NotEqual(t, eventUid("https://a.example", date), eventUid("https://a.example", date.AddDate(0, 1, 0)))
}

func TestHandler_GetCalendar(t *testing.T) {
	service, _ := setupFeed(t, 2)

	w := httptest.NewRecorder()
	NewHandler(service).GetCalendar(w, httptest.NewRequest(http.MethodGet, "/calendar.ics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/calendar; charset=utf-8", w.Header().Get("Content-Type"))
	cal, err := ical.ParseCalendar(strings.NewReader(w.Body.String()))
	require.NoError(t, err)
	assert.Len(t, cal.Events(), 3)
}
