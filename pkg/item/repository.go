package item

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	List(ctx context.Context) ([]string, error)
	// Add stores name unless it is already in the catalog.
	Add(ctx context.Context, name string) error
	Delete(ctx context.Context, name string) error
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) List(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, "SELECT name FROM brunch_item ORDER BY name")
	if err != nil {
		err := fmt.Errorf("could not query items: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	items := make([]string, 0, 20)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			err := fmt.Errorf("could not scan item: %w", err)
			log.Error(err)
			return nil, err
		}
		items = append(items, name)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return items, nil
}

func (r *RepositoryImpl) Add(ctx context.Context, name string) error {
	_, err := r.db.Exec(ctx, "INSERT INTO brunch_item (name) VALUES ($1) ON CONFLICT (name) DO NOTHING", name)
	if err != nil {
		err := fmt.Errorf("could not store item: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, name string) error {
	_, err := r.db.Exec(ctx, "DELETE FROM brunch_item WHERE name = $1", name)
	if err != nil {
		err := fmt.Errorf("could not delete item: %w", err)
		log.Error(err)
		return err
	}
	return nil
}
