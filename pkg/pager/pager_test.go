package pager

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/clubbrunch/brunch/internal/config"
	"github.com/clubbrunch/brunch/internal/event_bus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

func newPagerServer(t *testing.T, status int) (*httptest.Server, *[]Call) {
	t.Helper()
	var calls []Call
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "do1abc" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.Method != http.MethodPost || r.URL.Path != "/calls" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var call Call
		if err := json.NewDecoder(r.Body).Decode(&call); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		calls = append(calls, call)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func newTestClient(url string) *ClientImpl {
	return NewClient(config.Pager{
		Enabled:           true,
		Url:               url + "/",
		User:              "do1abc",
		Pass:              "secret",
		CallSigns:         []string{"do1abc", "do2xyz"},
		TransmitterGroups: []string{"dl-nw"},
	})
}

func TestClientImpl_Page(t *testing.T) {
	server, calls := newPagerServer(t, http.StatusCreated)

	err := newTestClient(server.URL).Page(ctx, "Hallo")

	require.NoError(t, err)
	require.Len(t, *calls, 1)
	assert.Equal(t, Call{
		Text:                  "Hallo",
		CallSignNames:         []string{"do1abc", "do2xyz"},
		TransmitterGroupNames: []string{"dl-nw"},
	}, (*calls)[0])
}

func TestClientImpl_PageTruncatesLongTexts(t *testing.T) {
	server, calls := newPagerServer(t, http.StatusCreated)

	err := newTestClient(server.URL).Page(ctx, strings.Repeat("ä", 100))

	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("ä", MaxTextLength), (*calls)[0].Text)
}

func TestClientImpl_PageReportsApiErrors(t *testing.T) {
	server, _ := newPagerServer(t, http.StatusInternalServerError)

	err := newTestClient(server.URL).Page(ctx, "Hallo")

	assert.ErrorContains(t, err, "500")
}

func TestNotifier(t *testing.T) {
	server, calls := newPagerServer(t, http.StatusCreated)
	bus := event_bus.NewEventBus()
	notifier := NewNotifier(newTestClient(server.URL))
	unsubscribe := notifier.Subscribe(bus)
	eventDate := time.Date(2024, time.March, 17, 0, 0, 0, 0, time.UTC)

	require.NoError(t, bus.Publish(event_bus.NewEvent(ctx, event_bus.RegistrationCreatedType, event_bus.RegistrationCreated{
		Name: "Anna", Item: "Brötchen", EventDate: eventDate, Participants: 4,
	})))
	require.NoError(t, bus.Publish(event_bus.NewEvent(ctx, event_bus.EventConcludedType, event_bus.EventConcluded{
		EventDate: eventDate, Archived: 4,
	})))

	notifier.Wait()
	require.Len(t, *calls, 2)
	texts := []string{(*calls)[0].Text, (*calls)[1].Text}
	assert.ElementsMatch(t, []string{
		"Brunch 17.03.: Anna angemeldet (Brötchen), 4 Teilnehmer",
		"Brunch 17.03.2024 beendet, 4 Anmeldungen archiviert",
	}, texts)

	unsubscribe()
	require.NoError(t, bus.Publish(event_bus.NewEvent(ctx, event_bus.RegistrationCreatedType, event_bus.RegistrationCreated{Name: "Max"})))
	notifier.Wait()
	assert.Len(t, *calls, 2)
}

func TestNotifier_SlowPagerDoesNotBlockPublisher(t *testing.T) {
	release := make(chan struct{})
	delivered := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var call Call
		_ = json.NewDecoder(r.Body).Decode(&call)
		<-release
		delivered <- call.Text
		w.WriteHeader(http.StatusCreated)
	}))
	t.Cleanup(server.Close)
	bus := event_bus.NewEventBus()
	notifier := NewNotifier(newTestClient(server.URL))
	defer notifier.Subscribe(bus)()

	requestCtx, cancel := context.WithCancel(ctx)
	published := make(chan error, 1)
	go func() {
		published <- bus.Publish(event_bus.NewEvent(requestCtx, event_bus.RegistrationCreatedType, event_bus.RegistrationCreated{
			Name: "Anna", Participants: 1,
		}))
	}()

	select {
	case err := <-published:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("publishing waited for the paging API")
	}

	// the request is finished before the page goes out
	cancel()
	close(release)
	notifier.Wait()
	assert.Contains(t, <-delivered, "Anna angemeldet")
}

func TestRegistrationText(t *testing.T) {
	eventDate := time.Date(2024, time.March, 17, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "Brunch 17.03.: Max angemeldet (nur Kaffee), 2 Teilnehmer",
		RegistrationText(event_bus.RegistrationCreated{Name: "Max", Item: "Kaffee", CoffeeOnly: true, EventDate: eventDate, Participants: 2}))
	assert.Equal(t, "Brunch 17.03.: Eva angemeldet (ohne Mitbringsel), 1 Teilnehmer",
		RegistrationText(event_bus.RegistrationCreated{Name: "Eva", EventDate: eventDate, Participants: 1}))
}
