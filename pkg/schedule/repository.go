package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// Repository is the key/value configuration store holding the schedule.
type Repository interface {
	GetAll(ctx context.Context) (map[string]string, error)
	// Get returns "" for keys that were never written.
	Get(ctx context.Context, name string) (string, error)
	Set(ctx context.Context, name string, value string) error
	// SetAll writes all values in one transaction.
	SetAll(ctx context.Context, values map[string]string) error
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const upsertQuery = `INSERT INTO brunch_config (name, value) VALUES ($1, $2)
	ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value`

func (r *RepositoryImpl) GetAll(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.Query(ctx, "SELECT name, value FROM brunch_config")
	if err != nil {
		err := fmt.Errorf("could not query config: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			err := fmt.Errorf("could not scan config entry: %w", err)
			log.Error(err)
			return nil, err
		}
		values[name] = value
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return values, nil
}

func (r *RepositoryImpl) Get(ctx context.Context, name string) (string, error) {
	var value string
	err := r.db.QueryRow(ctx, "SELECT value FROM brunch_config WHERE name = $1", name).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		err := fmt.Errorf("could not read config %s: %w", name, err)
		log.Error(err)
		return "", err
	}
	return value, nil
}

func (r *RepositoryImpl) Set(ctx context.Context, name string, value string) error {
	if _, err := r.db.Exec(ctx, upsertQuery, name, value); err != nil {
		err := fmt.Errorf("could not store config %s: %w", name, err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) SetAll(ctx context.Context, values map[string]string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for name, value := range values {
		if _, err := tx.Exec(ctx, upsertQuery, name, value); err != nil {
			err := fmt.Errorf("could not store config %s: %w", name, err)
			log.Error(err)
			return err
		}
	}
	return tx.Commit(ctx)
}
