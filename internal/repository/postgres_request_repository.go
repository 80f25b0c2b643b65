package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hwoarang89/solomon-church-bot/internal/domain"
)

// PostgresRequestRepository implements RequestRepository using PostgreSQL
type PostgresRequestRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRequestRepository creates a new PostgresRequestRepository
func NewPostgresRequestRepository(pool *pgxpool.Pool) *PostgresRequestRepository {
	return &PostgresRequestRepository{pool: pool}
}

const requestColumns = `id, username, COALESCE(telegram_id, 0) AS telegram_id, COALESCE(full_name, '') AS full_name,
	COALESCE(phone, '') AS phone, COALESCE(requested_table, '') AS requested_table, request_type, payload_json,
	COALESCE(comment, '') AS comment, status, COALESCE(reviewed_by, '') AS reviewed_by, created_at, reviewed_at`

// Create files a new pending request.
func (r *PostgresRequestRepository) Create(ctx context.Context, req *domain.AdminRequest) (*domain.AdminRequest, error) {
	query := `
		INSERT INTO admin_requests (username, telegram_id, full_name, phone, requested_table, request_type, payload_json, comment)
		VALUES ($1, NULLIF($2, 0), NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), $6, $7, NULLIF($8, ''))
		RETURNING ` + requestColumns
	return r.scanRequest(r.pool.QueryRow(ctx, query,
		req.Username, req.TelegramID, req.FullName, req.Phone,
		req.RequestedTable, req.Type, req.Payload, req.Comment,
	))
}

// GetByID retrieves a request; returns nil, nil when it does not exist.
func (r *PostgresRequestRepository) GetByID(ctx context.Context, id int64) (*domain.AdminRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM admin_requests WHERE id = $1`
	req, err := r.scanRequest(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return req, nil
}

// ListPending returns undecided requests, oldest first.
func (r *PostgresRequestRepository) ListPending(ctx context.Context) ([]*domain.AdminRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM admin_requests WHERE status = 'pending' ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []*domain.AdminRequest
	for rows.Next() {
		req, err := r.scanRequest(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

// Decide applies the decision only if the request is still pending. The guard
// lives in the WHERE clause so two racing reviewers resolve inside Postgres:
// the loser's update matches zero rows and Decide returns nil, nil.
func (r *PostgresRequestRepository) Decide(ctx context.Context, id int64, outcome domain.RequestStatus, reviewedBy string) (*domain.AdminRequest, error) {
	query := `
		UPDATE admin_requests
		SET status = $1, reviewed_by = $2, reviewed_at = now()
		WHERE id = $3 AND status = 'pending'
		RETURNING ` + requestColumns
	req, err := r.scanRequest(r.pool.QueryRow(ctx, query, outcome, reviewedBy, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return req, nil
}

func (r *PostgresRequestRepository) scanRequest(row pgx.Row) (*domain.AdminRequest, error) {
	req := &domain.AdminRequest{}
	err := row.Scan(
		&req.ID,
		&req.Username,
		&req.TelegramID,
		&req.FullName,
		&req.Phone,
		&req.RequestedTable,
		&req.Type,
		&req.Payload,
		&req.Comment,
		&req.Status,
		&req.ReviewedBy,
		&req.CreatedAt,
		&req.ReviewedAt,
	)
	if err != nil {
		return nil, err
	}
	return req, nil
}
