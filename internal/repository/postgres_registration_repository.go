package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hwoarang89/solomon-church-bot/internal/domain"
)

// PostgresRegistrationRepository implements RegistrationRepository using PostgreSQL
type PostgresRegistrationRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRegistrationRepository creates a new PostgresRegistrationRepository
func NewPostgresRegistrationRepository(pool *pgxpool.Pool) *PostgresRegistrationRepository {
	return &PostgresRegistrationRepository{pool: pool}
}

const registrationColumns = `id, event_id, COALESCE(username, '') AS username, telegram_id, full_name,
	COALESCE(phone, '') AS phone, COALESCE(level, '') AS level, COALESCE(comment, '') AS comment, registered_at`

// Upsert inserts the registration or, when the person is already signed up
// for the event, overwrites the prior submission in place.
func (r *PostgresRegistrationRepository) Upsert(ctx context.Context, reg *domain.Registration) (*domain.Registration, error) {
	query := `
		INSERT INTO event_registrations (event_id, username, telegram_id, full_name, phone, level, comment)
		VALUES ($1, NULLIF($2, ''), $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''))
		ON CONFLICT (event_id, telegram_id) DO UPDATE
			SET username      = EXCLUDED.username,
			    full_name     = EXCLUDED.full_name,
			    phone         = EXCLUDED.phone,
			    level         = EXCLUDED.level,
			    comment       = EXCLUDED.comment,
			    registered_at = now()
		RETURNING ` + registrationColumns
	return r.scanRegistration(r.pool.QueryRow(ctx, query,
		reg.EventID, reg.Username, reg.TelegramID, reg.FullName, reg.Phone, reg.Level, reg.Comment,
	))
}

// ListByEvent returns an event's registrations in sign-up order.
func (r *PostgresRegistrationRepository) ListByEvent(ctx context.Context, eventID int64) ([]*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM event_registrations WHERE event_id = $1 ORDER BY registered_at`
	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collectRegistrations(rows)
}

// CountByEvent returns how many people are signed up for an event.
func (r *PostgresRegistrationRepository) CountByEvent(ctx context.Context, eventID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM event_registrations WHERE event_id = $1`, eventID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ListAll returns every registration ordered by event then sign-up time.
func (r *PostgresRegistrationRepository) ListAll(ctx context.Context) ([]*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM event_registrations ORDER BY event_id, registered_at`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collectRegistrations(rows)
}

func (r *PostgresRegistrationRepository) collectRegistrations(rows pgx.Rows) ([]*domain.Registration, error) {
	var regs []*domain.Registration
	for rows.Next() {
		reg, err := r.scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

func (r *PostgresRegistrationRepository) scanRegistration(row pgx.Row) (*domain.Registration, error) {
	reg := &domain.Registration{}
	err := row.Scan(
		&reg.ID,
		&reg.EventID,
		&reg.Username,
		&reg.TelegramID,
		&reg.FullName,
		&reg.Phone,
		&reg.Level,
		&reg.Comment,
		&reg.RegisteredAt,
	)
	if err != nil {
		return nil, err
	}
	return reg, nil
}
