package event_bus

import "time"

const (
	RegistrationCreatedType EventType = "registration.created"
	RegistrationDeletedType EventType = "registration.deleted"
	EventConcludedType      EventType = "event.concluded"
)

type RegistrationCreated struct {
	Uid        string
	Name       string
	Item       string
	CoffeeOnly bool
	EventDate  time.Time
	// Participants is the number of registrations after this one was stored.
	Participants int
}

type RegistrationDeleted struct {
	Uid  string
	Name string
}

type EventConcluded struct {
	EventDate time.Time
	Archived  int
}
