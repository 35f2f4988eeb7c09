package pager

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/clubbrunch/brunch/internal/event_bus"
	log "github.com/sirupsen/logrus"
)

const pageTimeout = 30 * time.Second

// Notifier pages the organizers about sign-ups and concluded events. Pages are sent in the
// background so a slow paging API never holds up the request that published the event.
type Notifier struct {
	client  Client
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewNotifier(client Client) *Notifier {
	return &Notifier{client: client, timeout: pageTimeout}
}

// Subscribe registers the notifier on bus and returns a function removing it again.
func (n *Notifier) Subscribe(bus *event_bus.EventBus) (unsubscribe func()) {
	unsubscribeCreated := event_bus.SubscribeTyped(bus, event_bus.RegistrationCreatedType, n.onRegistrationCreated)
	unsubscribeConcluded := event_bus.SubscribeTyped(bus, event_bus.EventConcludedType, n.onEventConcluded)
	return func() {
		unsubscribeCreated()
		unsubscribeConcluded()
	}
}

// Wait blocks until every page sent so far has been delivered or has failed.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

func (n *Notifier) onRegistrationCreated(e event_bus.EventT[event_bus.RegistrationCreated]) error {
	n.page(e.Context(), RegistrationText(e.Data))
	return nil
}

func (n *Notifier) onEventConcluded(e event_bus.EventT[event_bus.EventConcluded]) error {
	n.page(e.Context(), ConcludedText(e.Data))
	return nil
}

// page outlives the publishing request, so its context is detached from the request's cancellation.
func (n *Notifier) page(ctx context.Context, text string) {
	ctx = context.WithoutCancel(ctx)
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(ctx, n.timeout)
		defer cancel()
		if err := n.client.Page(ctx, text); err != nil {
			log.Warnf("failed to page %q: %v", text, err)
		}
	}()
}

func RegistrationText(r event_bus.RegistrationCreated) string {
	detail := r.Item
	if r.CoffeeOnly {
		detail = "nur Kaffee"
	}
	if detail == "" {
		detail = "ohne Mitbringsel"
	}
	return fmt.Sprintf("Brunch %s: %s angemeldet (%s), %d Teilnehmer",
		r.EventDate.Format("02.01."), r.Name, detail, r.Participants)
}

func ConcludedText(e event_bus.EventConcluded) string {
	return fmt.Sprintf("Brunch %s beendet, %d Anmeldungen archiviert", e.EventDate.Format("02.01.2006"), e.Archived)
}
