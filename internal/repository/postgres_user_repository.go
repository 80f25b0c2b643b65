package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hwoarang89/solomon-church-bot/internal/domain"
)

// PostgresUserRepository implements UserRepository using PostgreSQL
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

const userColumns = `telegram_id, COALESCE(username, '') AS username, full_name, COALESCE(phone, '') AS phone, role, created_at`

// Upsert creates or refreshes a user. Username only refreshes when the new
// value is non-empty; role and phone are never touched here.
func (r *PostgresUserRepository) Upsert(ctx context.Context, telegramID int64, username, fullName string) (*domain.User, error) {
	query := `
		INSERT INTO users (telegram_id, username, full_name)
		VALUES ($1, NULLIF($2, ''), $3)
		ON CONFLICT (telegram_id) DO UPDATE
			SET username  = COALESCE(NULLIF(EXCLUDED.username, ''), users.username),
			    full_name = EXCLUDED.full_name
		RETURNING ` + userColumns
	return r.scanUser(r.pool.QueryRow(ctx, query, telegramID, username, fullName))
}

// GetByTelegramID retrieves a user by platform ID
func (r *PostgresUserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE telegram_id = $1`
	user, err := r.scanUser(r.pool.QueryRow(ctx, query, telegramID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// GetByUsername retrieves a user by handle
func (r *PostgresUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	user, err := r.scanUser(r.pool.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// SetRole updates a user's role by username
func (r *PostgresUserRepository) SetRole(ctx context.Context, username string, role domain.Role) (bool, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET role = $1 WHERE username = $2`, role, username)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ListAll returns every known identity ordered by first contact
func (r *PostgresUserRepository) ListAll(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// ListTelegramIDs returns all platform IDs
func (r *PostgresUserRepository) ListTelegramIDs(ctx context.Context) ([]int64, error) {
	return r.listIDs(ctx, `SELECT telegram_id FROM users`)
}

// ListSuperAdminIDs returns platform IDs of all super-admins
func (r *PostgresUserRepository) ListSuperAdminIDs(ctx context.Context) ([]int64, error) {
	return r.listIDs(ctx, `SELECT telegram_id FROM users WHERE role = 'super_admin'`)
}

func (r *PostgresUserRepository) listIDs(ctx context.Context, query string) ([]int64, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GrantTableAccess appends a table grant; duplicates are no-ops
func (r *PostgresUserRepository) GrantTableAccess(ctx context.Context, username, tableName string) error {
	query := `
		INSERT INTO admin_table_access (username, table_name)
		VALUES ($1, $2) ON CONFLICT DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query, username, tableName)
	return err
}

// ListTableAccess returns the table names granted to an admin
func (r *PostgresUserRepository) ListTableAccess(ctx context.Context, username string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT table_name FROM admin_table_access WHERE username = $1`, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var table string
		if err := rows.Scan(&table); err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}
	return tables, rows.Err()
}

func (r *PostgresUserRepository) scanUser(row pgx.Row) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(
		&user.TelegramID,
		&user.Username,
		&user.FullName,
		&user.Phone,
		&user.Role,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}
