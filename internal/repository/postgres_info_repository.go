package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hwoarang89/solomon-church-bot/internal/domain"
)

// PostgresInfoRepository implements InfoRepository using PostgreSQL
type PostgresInfoRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresInfoRepository creates a new PostgresInfoRepository
func NewPostgresInfoRepository(pool *pgxpool.Pool) *PostgresInfoRepository {
	return &PostgresInfoRepository{pool: pool}
}

// Create inserts a knowledge-base entry and returns its ID.
func (r *PostgresInfoRepository) Create(ctx context.Context, category, title, content string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO info (category, title, content) VALUES ($1, $2, $3) RETURNING id`,
		category, title, content,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Update rewrites an entry's title and content; returns false when no such entry.
func (r *PostgresInfoRepository) Update(ctx context.Context, id int64, title, content string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE info SET title = $1, content = $2, updated_at = now() WHERE id = $3`,
		title, content, id,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Delete removes an entry; returns false when no such entry.
func (r *PostgresInfoRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM info WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ListAll returns every entry grouped by category.
func (r *PostgresInfoRepository) ListAll(ctx context.Context) ([]*domain.Info, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, category, title, content, updated_at FROM info ORDER BY category, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collectInfo(rows)
}

// ListByCategory returns the entries in one category.
func (r *PostgresInfoRepository) ListByCategory(ctx context.Context, category string) ([]*domain.Info, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, category, title, content, updated_at FROM info WHERE category = $1 ORDER BY id`, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collectInfo(rows)
}

func (r *PostgresInfoRepository) collectInfo(rows pgx.Rows) ([]*domain.Info, error) {
	var entries []*domain.Info
	for rows.Next() {
		entry := &domain.Info{}
		if err := rows.Scan(&entry.ID, &entry.Category, &entry.Title, &entry.Content, &entry.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
