package registration

import (
	"context"
	"slices"
	"sync"
	"time"
)

type ArchivedRegistration struct {
	EventDate    time.Time
	Registration Registration
}

type RepositoryStub struct {
	mu            sync.Mutex
	registrations []Registration
	archive       []ArchivedRegistration
	nextId        int
	err           error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{}
}

func (s *RepositoryStub) Store(ctx context.Context, registration Registration) (Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return Registration{}, s.err
	}
	if s.indexOfName(registration.Name) >= 0 {
		return Registration{}, ErrAlreadyRegistered
	}
	s.nextId++
	registration.Id = s.nextId
	s.registrations = append(s.registrations, registration)
	return registration, nil
}

func (s *RepositoryStub) FindByUid(ctx context.Context, uid string) (Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return Registration{}, s.err
	}
	idx := s.indexOfUid(uid)
	if idx < 0 {
		return Registration{}, ErrRegistrationNotFound
	}
	return s.registrations[idx], nil
}

func (s *RepositoryStub) FindByName(ctx context.Context, name string) (Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return Registration{}, s.err
	}
	idx := s.indexOfName(name)
	if idx < 0 {
		return Registration{}, ErrRegistrationNotFound
	}
	return s.registrations[idx], nil
}

func (s *RepositoryStub) List(ctx context.Context) ([]Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return slices.Clone(s.registrations), nil
}

func (s *RepositoryStub) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	return len(s.registrations), nil
}

func (s *RepositoryStub) Update(ctx context.Context, registration Registration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	idx := s.indexOfUid(registration.Uid)
	if idx < 0 {
		return false, nil
	}
	if other := s.indexOfName(registration.Name); other >= 0 && other != idx {
		return false, ErrAlreadyRegistered
	}
	current := &s.registrations[idx]
	current.Name = registration.Name
	current.Item = registration.Item
	current.CoffeeOnly = registration.CoffeeOnly
	return true, nil
}

func (s *RepositoryStub) Delete(ctx context.Context, uid string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	idx := s.indexOfUid(uid)
	if idx < 0 {
		return false, nil
	}
	s.registrations = slices.Delete(s.registrations, idx, idx+1)
	return true, nil
}

func (s *RepositoryStub) ArchiveAndClear(ctx context.Context, eventDate time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	for _, registration := range s.registrations {
		s.archive = append(s.archive, ArchivedRegistration{EventDate: eventDate, Registration: registration})
	}
	archived := len(s.registrations)
	s.registrations = nil
	return archived, nil
}

// Archived returns everything moved to the archive so far.
func (s *RepositoryStub) Archived() []ArchivedRegistration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.archive)
}

// FailWith makes every following call return err. nil restores normal behaviour.
func (s *RepositoryStub) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *RepositoryStub) indexOfUid(uid string) int {
	return slices.IndexFunc(s.registrations, func(r Registration) bool { return r.Uid == uid })
}

func (s *RepositoryStub) indexOfName(name string) int {
	return slices.IndexFunc(s.registrations, func(r Registration) bool { return r.Name == name })
}
