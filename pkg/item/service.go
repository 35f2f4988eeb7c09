package item

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/clubbrunch/brunch/internal/utils"
	log "github.com/sirupsen/logrus"
)

var ErrInvalidItem = errors.New("invalid item")

// Service manages the catalog of things members can bring.
type Service interface {
	List(ctx context.Context) ([]string, error)
	Add(ctx context.Context, name string) error
	Delete(ctx context.Context, name string) error
}

type ServiceImpl struct {
	repo Repository
}

func NewService(repo Repository) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) List(ctx context.Context) ([]string, error) {
	return s.repo.List(ctx)
}

func (s *ServiceImpl) Add(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if !utils.ValidInput(name) {
		return ErrInvalidItem
	}
	return s.repo.Add(ctx, name)
}

func (s *ServiceImpl) Delete(ctx context.Context, name string) error {
	return s.repo.Delete(ctx, strings.TrimSpace(name))
}

// SeedFromFile adds every non-blank line of path to the catalog. A missing file is not an
// error; invalid lines are skipped.
func (s *ServiceImpl) SeedFromFile(ctx context.Context, path string) (int, error) {
	if path == "" {
		return 0, nil
	}
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Infof("Item file %s not found, catalog not seeded", path)
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to open item file: %w", err)
	}
	defer file.Close()

	added := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := s.Add(ctx, line); err != nil {
			if errors.Is(err, ErrInvalidItem) {
				log.Warnf("skipping invalid item %q from %s", line, path)
				continue
			}
			return added, err
		}
		added++
	}
	if err := scanner.Err(); err != nil {
		return added, fmt.Errorf("failed to read item file: %w", err)
	}
	log.Infof("Seeded %d items from %s", added, path)
	return added, nil
}
