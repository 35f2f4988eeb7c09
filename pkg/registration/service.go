package registration

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/clubbrunch/brunch/internal/event_bus"
	"github.com/clubbrunch/brunch/internal/utils"
	"github.com/clubbrunch/brunch/pkg/item"
	"github.com/clubbrunch/brunch/pkg/schedule"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var (
	ErrEventCancelled     = errors.New("event is cancelled")
	ErrRegistrationClosed = errors.New("registration is closed")
	ErrInvalidName        = errors.New("invalid name")
)

// EventSchedule is the part of the schedule a registration depends on.
type EventSchedule interface {
	Status(ctx context.Context) (schedule.Status, error)
}

type Service interface {
	// Register signs a member up for the next event. On ErrAlreadyRegistered the existing
	// registration is returned along with the error.
	Register(ctx context.Context, signUp SignUp) (Registration, error)
	List(ctx context.Context) ([]Registration, error)
	Count(ctx context.Context) (int, error)
	Get(ctx context.Context, uid string) (Registration, error)
	Update(ctx context.Context, registration Registration) error
	Delete(ctx context.Context, uid string) error
	AvailableItems(ctx context.Context) ([]string, error)
	ArchiveAndClear(ctx context.Context, eventDate time.Time) (int, error)
}

type ServiceImpl struct {
	repo     Repository
	items    item.Service
	schedule EventSchedule
	bus      *event_bus.EventBus
	clock    utils.Clock
}

func NewService(repo Repository, items item.Service, schedule EventSchedule, bus *event_bus.EventBus, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{
		repo:     repo,
		items:    items,
		schedule: schedule,
		bus:      bus,
		clock:    clock,
	}
}

func (s *ServiceImpl) Register(ctx context.Context, signUp SignUp) (Registration, error) {
	status, err := s.schedule.Status(ctx)
	if err != nil {
		return Registration{}, err
	}
	if status.Cancelled {
		return Registration{}, ErrEventCancelled
	}
	if !status.Open {
		return Registration{}, ErrRegistrationClosed
	}

	name := strings.TrimSpace(signUp.Name)
	if !utils.ValidInput(name) {
		return Registration{}, ErrInvalidName
	}
	customItem := strings.TrimSpace(signUp.CustomItem)
	if customItem != "" && !utils.ValidInput(customItem) {
		return Registration{}, item.ErrInvalidItem
	}

	existing, err := s.repo.FindByName(ctx, name)
	if err == nil {
		return existing, ErrAlreadyRegistered
	}
	if !errors.Is(err, ErrRegistrationNotFound) {
		return Registration{}, err
	}

	chosen := strings.TrimSpace(signUp.SelectedItem)
	if customItem != "" {
		chosen = customItem
		if err := s.items.Add(ctx, customItem); err != nil {
			return Registration{}, fmt.Errorf("failed to add custom item: %w", err)
		}
	}

	registration, err := s.repo.Store(ctx, Registration{
		Uid:        uuid.NewString(),
		Name:       name,
		Item:       chosen,
		CoffeeOnly: signUp.CoffeeOnly,
		CreatedAt:  s.clock.Now(),
	})
	if errors.Is(err, ErrAlreadyRegistered) {
		existing, findErr := s.repo.FindByName(ctx, name)
		if findErr != nil {
			return Registration{}, findErr
		}
		return existing, ErrAlreadyRegistered
	}
	if err != nil {
		return Registration{}, err
	}
	log.Infof("%s registered for %s (item: %q, coffee only: %t)", registration.Name, status.EventDate, registration.Item, registration.CoffeeOnly)

	participants, err := s.repo.Count(ctx)
	if err != nil {
		log.Warnf("failed to count registrations: %v", err)
	}
	s.publish(ctx, event_bus.RegistrationCreatedType, event_bus.RegistrationCreated{
		Uid:          registration.Uid,
		Name:         registration.Name,
		Item:         registration.Item,
		CoffeeOnly:   registration.CoffeeOnly,
		EventDate:    status.Date,
		Participants: participants,
	})
	return registration, nil
}

func (s *ServiceImpl) List(ctx context.Context) ([]Registration, error) {
	return s.repo.List(ctx)
}

func (s *ServiceImpl) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *ServiceImpl) Get(ctx context.Context, uid string) (Registration, error) {
	return s.repo.FindByUid(ctx, uid)
}

// Update changes name, item and coffee-only flag of an existing registration.
func (s *ServiceImpl) Update(ctx context.Context, registration Registration) error {
	registration.Name = strings.TrimSpace(registration.Name)
	if !utils.ValidInput(registration.Name) {
		return ErrInvalidName
	}
	registration.Item = strings.TrimSpace(registration.Item)
	if registration.Item != "" && !utils.ValidInput(registration.Item) {
		return item.ErrInvalidItem
	}

	updated, err := s.repo.Update(ctx, registration)
	if err != nil {
		return err
	}
	if !updated {
		return ErrRegistrationNotFound
	}
	log.Infof("Registration %s updated: %s brings %q (coffee only: %t)", registration.Uid, registration.Name, registration.Item, registration.CoffeeOnly)
	return nil
}

func (s *ServiceImpl) Delete(ctx context.Context, uid string) error {
	registration, err := s.repo.FindByUid(ctx, uid)
	if err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, uid)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrRegistrationNotFound
	}
	log.Infof("Registration of %s deleted", registration.Name)

	s.publish(ctx, event_bus.RegistrationDeletedType, event_bus.RegistrationDeleted{
		Uid:  registration.Uid,
		Name: registration.Name,
	})
	return nil
}

// AvailableItems returns the catalog items nobody has chosen yet.
func (s *ServiceImpl) AvailableItems(ctx context.Context) ([]string, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, err
	}
	registrations, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]bool, len(registrations))
	for _, registration := range registrations {
		if registration.Item != "" {
			taken[registration.Item] = true
		}
	}
	return slices.DeleteFunc(items, func(name string) bool { return taken[name] }), nil
}

// ArchiveAndClear moves the registrations of the concluded event into the archive.
func (s *ServiceImpl) ArchiveAndClear(ctx context.Context, eventDate time.Time) (int, error) {
	registrations, err := s.repo.List(ctx)
	if err != nil {
		return 0, err
	}
	date := eventDate.Format(schedule.DateLayout)
	for _, registration := range registrations {
		log.Infof("Archiving registration for %s: %s, item %q, coffee only %t", date, registration.Name, registration.Item, registration.CoffeeOnly)
	}

	archived, err := s.repo.ArchiveAndClear(ctx, eventDate)
	if err != nil {
		return 0, err
	}
	log.Infof("Archived %d registrations for %s", archived, date)
	return archived, nil
}

func (s *ServiceImpl) publish(ctx context.Context, eventType event_bus.EventType, data any) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(event_bus.NewEvent(ctx, eventType, data)); err != nil {
		log.Warnf("failed to publish %s: %v", eventType, err)
	}
}
