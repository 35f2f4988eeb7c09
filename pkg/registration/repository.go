package registration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrRegistrationNotFound = errors.New("registration not found")
var ErrAlreadyRegistered = errors.New("name is already registered")

const uniqueViolation = "23505"

type Repository interface {
	Store(ctx context.Context, registration Registration) (Registration, error)
	FindByUid(ctx context.Context, uid string) (Registration, error)
	FindByName(ctx context.Context, name string) (Registration, error)
	List(ctx context.Context) ([]Registration, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, registration Registration) (bool, error)
	Delete(ctx context.Context, uid string) (bool, error)
	// ArchiveAndClear moves every registration into the archive of eventDate and returns how
	// many were moved.
	ArchiveAndClear(ctx context.Context, eventDate time.Time) (int, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const selectColumns = "SELECT id, uid::text, name, item, coffee_only, created_at FROM brunch_participant"

func (r *RepositoryImpl) Store(ctx context.Context, registration Registration) (Registration, error) {
	query := `INSERT INTO brunch_participant (uid, name, item, coffee_only, created_at)
			  VALUES ($1, $2, $3, $4, $5) RETURNING id`

	err := r.db.QueryRow(ctx, query,
		registration.Uid,
		registration.Name,
		registration.Item,
		registration.CoffeeOnly,
		registration.CreatedAt,
	).Scan(&registration.Id)
	if isUniqueViolation(err) {
		return Registration{}, ErrAlreadyRegistered
	}
	if err != nil {
		err := fmt.Errorf("could not store registration: %w", err)
		log.Error(err)
		return Registration{}, err
	}
	return registration, nil
}

func (r *RepositoryImpl) FindByUid(ctx context.Context, uid string) (Registration, error) {
	return r.findOne(ctx, selectColumns+" WHERE uid::text = $1", uid)
}

func (r *RepositoryImpl) FindByName(ctx context.Context, name string) (Registration, error) {
	return r.findOne(ctx, selectColumns+" WHERE name = $1", name)
}

func (r *RepositoryImpl) findOne(ctx context.Context, query string, arg any) (Registration, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		err := fmt.Errorf("could not query registration: %w", err)
		log.Error(err)
		return Registration{}, err
	}
	registration, err := pgx.CollectExactlyOneRow(rows, scanRegistration)
	if errors.Is(err, pgx.ErrNoRows) {
		return Registration{}, ErrRegistrationNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not scan registration: %w", err)
		log.Error(err)
		return Registration{}, err
	}
	return registration, nil
}

func (r *RepositoryImpl) List(ctx context.Context) ([]Registration, error) {
	rows, err := r.db.Query(ctx, selectColumns+" ORDER BY created_at, id")
	if err != nil {
		err := fmt.Errorf("could not query registrations: %w", err)
		log.Error(err)
		return nil, err
	}
	registrations, err := pgx.CollectRows(rows, scanRegistration)
	if err != nil {
		err := fmt.Errorf("could not scan registrations: %w", err)
		log.Error(err)
		return nil, err
	}
	return registrations, nil
}

func (r *RepositoryImpl) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, "SELECT count(*) FROM brunch_participant").Scan(&count); err != nil {
		err := fmt.Errorf("could not count registrations: %w", err)
		log.Error(err)
		return 0, err
	}
	return count, nil
}

func (r *RepositoryImpl) Update(ctx context.Context, registration Registration) (bool, error) {
	query := "UPDATE brunch_participant SET name = $1, item = $2, coffee_only = $3 WHERE uid::text = $4"
	tag, err := r.db.Exec(ctx, query, registration.Name, registration.Item, registration.CoffeeOnly, registration.Uid)
	if isUniqueViolation(err) {
		return false, ErrAlreadyRegistered
	}
	if err != nil {
		err := fmt.Errorf("could not update registration: %w", err)
		log.Error(err)
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, uid string) (bool, error) {
	tag, err := r.db.Exec(ctx, "DELETE FROM brunch_participant WHERE uid::text = $1", uid)
	if err != nil {
		err := fmt.Errorf("could not delete registration: %w", err)
		log.Error(err)
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) ArchiveAndClear(ctx context.Context, eventDate time.Time) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	archived, err := tx.Exec(ctx, `INSERT INTO brunch_archive (event_date, name, item, coffee_only)
		SELECT $1, name, item, coffee_only FROM brunch_participant ORDER BY created_at, id`,
		eventDate)
	if err != nil {
		err := fmt.Errorf("could not archive registrations: %w", err)
		log.Error(err)
		return 0, err
	}
	if _, err := tx.Exec(ctx, "DELETE FROM brunch_participant"); err != nil {
		err := fmt.Errorf("could not clear registrations: %w", err)
		log.Error(err)
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("could not commit archive: %w", err)
	}
	return int(archived.RowsAffected()), nil
}

func scanRegistration(row pgx.CollectableRow) (Registration, error) {
	var registration Registration
	err := row.Scan(
		&registration.Id,
		&registration.Uid,
		&registration.Name,
		&registration.Item,
		&registration.CoffeeOnly,
		&registration.CreatedAt,
	)
	return registration, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
