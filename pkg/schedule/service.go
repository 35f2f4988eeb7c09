package schedule

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/clubbrunch/brunch/internal/utils"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	Load(ctx context.Context) (Schedule, error)
	Status(ctx context.Context) (Status, error)
	ShouldResetNow(ctx context.Context) (bool, error)
	// RegularEventDate is the next third Sunday, ignoring any override.
	RegularEventDate() time.Time
	UpdateSchedule(ctx context.Context, overrideDate string, cancelled bool) error
	Get(ctx context.Context, name string) (string, error)
	ConcludeEvent(ctx context.Context, conclude func(ctx context.Context, eventDate time.Time) error) (bool, error)
	Resolver() Resolver
}

// ServiceImpl serializes every write to the configuration store, so the reset job and the
// administrator never interleave a read-modify-write of the schedule.
type ServiceImpl struct {
	mu       sync.Mutex
	repo     Repository
	resolver Resolver
	clock    utils.Clock
}

func NewService(repo Repository, resolver Resolver, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{repo: repo, resolver: resolver, clock: clock}
}

func (s *ServiceImpl) Resolver() Resolver {
	return s.resolver
}

func (s *ServiceImpl) Load(ctx context.Context) (Schedule, error) {
	values, err := s.repo.GetAll(ctx)
	if err != nil {
		return Schedule{}, fmt.Errorf("failed to load schedule: %w", err)
	}
	return FromValues(values), nil
}

func (s *ServiceImpl) Status(ctx context.Context) (Status, error) {
	sched, err := s.Load(ctx)
	if err != nil {
		return Status{}, err
	}
	now := s.clock.Now()
	date := s.resolver.NextEventDate(sched, now)
	return Status{
		EventDate:    s.resolver.FormatDate(date),
		Date:         date,
		OverrideDate: sched.OverrideDate,
		Cancelled:    s.resolver.IsCancelled(sched),
		Open:         s.resolver.IsRegistrationOpen(sched, now),
	}, nil
}

// ShouldResetNow reports whether the current event has ended. ConcludeEvent checks again under
// the lock, so a true result only means a conclusion is worth attempting.
func (s *ServiceImpl) ShouldResetNow(ctx context.Context) (bool, error) {
	sched, err := s.Load(ctx)
	if err != nil {
		return false, err
	}
	return s.resolver.ShouldReset(sched, s.clock.Now()), nil
}

func (s *ServiceImpl) RegularEventDate() time.Time {
	return s.resolver.NextEventDate(Schedule{}, s.clock.Now())
}

// UpdateSchedule stores the administrator's override date and cancellation. An empty date
// removes the override. A date that does not parse is rejected with ErrInvalidOverrideDate and
// the override is cleared; the cancellation is stored either way.
func (s *ServiceImpl) UpdateSchedule(ctx context.Context, overrideDate string, cancelled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	overrideDate = strings.TrimSpace(overrideDate)
	var invalid bool
	if overrideDate != "" {
		date, ok := s.resolver.ParseDate(overrideDate)
		if ok {
			overrideDate = s.resolver.FormatDate(date)
		} else {
			log.Warnf("rejecting invalid override date %q", overrideDate)
			overrideDate = ""
			invalid = true
		}
	}

	err := s.repo.SetAll(ctx, map[string]string{
		OverrideDateKey: overrideDate,
		CancelledKey:    fmt.Sprint(cancelled),
	})
	if err != nil {
		return fmt.Errorf("failed to update schedule: %w", err)
	}
	log.Infof("Schedule updated: override=%q cancelled=%t", overrideDate, cancelled)

	if invalid {
		return ErrInvalidOverrideDate
	}
	return nil
}

func (s *ServiceImpl) Get(ctx context.Context, name string) (string, error) {
	return s.repo.Get(ctx, name)
}

// ConcludeEvent runs conclude once the current event has ended and then moves the schedule on
// to the next cycle. An event is concluded at most once: its date is recorded as LastReset and
// events not after that date are skipped. The returned bool reports whether conclude ran.
func (s *ServiceImpl) ConcludeEvent(ctx context.Context, conclude func(ctx context.Context, eventDate time.Time) error) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sched, err := s.Load(ctx)
	if err != nil {
		return false, err
	}
	now := s.clock.Now()
	if !s.resolver.ShouldReset(sched, now) {
		return false, nil
	}

	eventDate := s.resolver.CurrentEventDate(sched, now)
	if last, ok := s.resolver.ParseDate(sched.LastReset); ok && !eventDate.After(last) {
		log.Tracef("event of %s already concluded", s.resolver.FormatDate(eventDate))
		return false, nil
	}

	log.Infof("Concluding event of %s", s.resolver.FormatDate(eventDate))
	if err := conclude(ctx, eventDate); err != nil {
		return false, fmt.Errorf("failed to conclude event of %s: %w", s.resolver.FormatDate(eventDate), err)
	}

	next := s.resolver.AfterReset(sched)
	next.LastReset = s.resolver.FormatDate(eventDate)
	if err := s.repo.SetAll(ctx, next.Values()); err != nil {
		return true, fmt.Errorf("failed to advance schedule: %w", err)
	}
	log.Infof("Schedule advanced: override=%q", next.OverrideDate)
	return true, nil
}
