package schedule

import (
	"context"
	"maps"
	"sync"
)

type RepositoryStub struct {
	mu     sync.Mutex
	values map[string]string
	err    error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{values: map[string]string{}}
}

func (s *RepositoryStub) GetAll(ctx context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return maps.Clone(s.values), nil
}

func (s *RepositoryStub) Get(ctx context.Context, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	return s.values[name], nil
}

func (s *RepositoryStub) Set(ctx context.Context, name string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.values[name] = value
	return nil
}

func (s *RepositoryStub) SetAll(ctx context.Context, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	maps.Copy(s.values, values)
	return nil
}

// FailWith makes every following call return err. nil restores normal behaviour.
func (s *RepositoryStub) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}
