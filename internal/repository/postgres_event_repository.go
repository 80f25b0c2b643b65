package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hwoarang89/solomon-church-bot/internal/domain"
)

// PostgresEventRepository implements EventRepository using PostgreSQL
type PostgresEventRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresEventRepository creates a new PostgresEventRepository
func NewPostgresEventRepository(pool *pgxpool.Pool) *PostgresEventRepository {
	return &PostgresEventRepository{pool: pool}
}

const eventColumns = `id, title, COALESCE(type, '') AS type, date_start, date_end, COALESCE(time, '') AS time,
	COALESCE(place, '') AS place, COALESCE(description, '') AS description, max_participants, status,
	COALESCE(created_by, '') AS created_by, created_at`

// Create inserts a new event and returns it with generated fields filled in.
func (r *PostgresEventRepository) Create(ctx context.Context, event *domain.Event) (*domain.Event, error) {
	query := `
		INSERT INTO events (title, type, date_start, date_end, time, place, description, max_participants, status, created_by)
		VALUES ($1, NULLIF($2, ''), $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), $8, $9, NULLIF($10, ''))
		RETURNING ` + eventColumns
	status := event.Status
	if status == "" {
		status = domain.EventPending
	}
	return r.scanEvent(r.pool.QueryRow(ctx, query,
		event.Title, event.Type, event.DateStart, event.DateEnd, event.Time,
		event.Place, event.Description, event.MaxParticipants, status, event.CreatedBy,
	))
}

// GetByID retrieves an event; returns nil, nil when it does not exist.
func (r *PostgresEventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	event, err := r.scanEvent(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return event, nil
}

// ListByStatus returns events in a lifecycle state ordered by start date.
func (r *PostgresEventRepository) ListByStatus(ctx context.Context, status domain.EventStatus) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE status = $1 ORDER BY date_start`
	rows, err := r.pool.Query(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collectEvents(rows)
}

// ListAll returns every event ordered by start date.
func (r *PostgresEventRepository) ListAll(ctx context.Context) ([]*domain.Event, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+eventColumns+` FROM events ORDER BY date_start`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collectEvents(rows)
}

// UpdateStatus sets the lifecycle status; returns nil, nil when no such event.
func (r *PostgresEventRepository) UpdateStatus(ctx context.Context, id int64, status domain.EventStatus) (*domain.Event, error) {
	query := `UPDATE events SET status = $1 WHERE id = $2 RETURNING ` + eventColumns
	event, err := r.scanEvent(r.pool.QueryRow(ctx, query, status, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return event, nil
}

func (r *PostgresEventRepository) collectEvents(rows pgx.Rows) ([]*domain.Event, error) {
	var events []*domain.Event
	for rows.Next() {
		event, err := r.scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (r *PostgresEventRepository) scanEvent(row pgx.Row) (*domain.Event, error) {
	event := &domain.Event{}
	err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Type,
		&event.DateStart,
		&event.DateEnd,
		&event.Time,
		&event.Place,
		&event.Description,
		&event.MaxParticipants,
		&event.Status,
		&event.CreatedBy,
		&event.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return event, nil
}
