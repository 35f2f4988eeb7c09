package item

import (
	"context"
	"slices"
	"sync"
)

type RepositoryStub struct {
	mu    sync.Mutex
	items []string
}

func NewRepositoryStub(items ...string) *RepositoryStub {
	return &RepositoryStub{items: items}
}

func (s *RepositoryStub) List(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := slices.Clone(s.items)
	slices.Sort(items)
	return items, nil
}

func (s *RepositoryStub) Add(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.items, name) {
		s.items = append(s.items, name)
	}
	return nil
}

func (s *RepositoryStub) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = slices.DeleteFunc(s.items, func(item string) bool { return item == name })
	return nil
}
