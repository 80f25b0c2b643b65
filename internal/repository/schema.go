package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaSQL is the idempotent DDL executed at startup.
const schemaSQL = `
DO $$ BEGIN
    CREATE TYPE user_role AS ENUM ('user', 'admin', 'super_admin');
EXCEPTION WHEN duplicate_object THEN NULL; END $$;

DO $$ BEGIN
    CREATE TYPE event_status AS ENUM ('draft', 'pending', 'active', 'archived');
EXCEPTION WHEN duplicate_object THEN NULL; END $$;

DO $$ BEGIN
    CREATE TYPE request_status AS ENUM ('pending', 'approved', 'rejected');
EXCEPTION WHEN duplicate_object THEN NULL; END $$;

CREATE TABLE IF NOT EXISTS users (
    telegram_id  BIGINT PRIMARY KEY,
    username     TEXT UNIQUE,
    full_name    TEXT NOT NULL,
    phone        TEXT,
    role         user_role NOT NULL DEFAULT 'user',
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS events (
    id               BIGSERIAL PRIMARY KEY,
    title            TEXT NOT NULL,
    type             TEXT,
    date_start       DATE NOT NULL,
    date_end         DATE,
    time             TEXT,
    place            TEXT,
    description      TEXT,
    max_participants INTEGER NOT NULL DEFAULT 0,
    status           event_status NOT NULL DEFAULT 'pending',
    created_by       TEXT,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS event_registrations (
    id            BIGSERIAL PRIMARY KEY,
    event_id      BIGINT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
    username      TEXT,
    telegram_id   BIGINT NOT NULL,
    full_name     TEXT NOT NULL,
    phone         TEXT,
    level         TEXT,
    comment       TEXT,
    registered_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (event_id, telegram_id)
);

CREATE TABLE IF NOT EXISTS info (
    id          BIGSERIAL PRIMARY KEY,
    category    TEXT NOT NULL,
    title       TEXT NOT NULL,
    content     TEXT NOT NULL,
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS admin_requests (
    id              BIGSERIAL PRIMARY KEY,
    username        TEXT NOT NULL,
    telegram_id     BIGINT,
    full_name       TEXT,
    phone           TEXT,
    requested_table TEXT,
    request_type    TEXT NOT NULL DEFAULT 'admin_access',
    payload_json    JSONB,
    comment         TEXT,
    status          request_status NOT NULL DEFAULT 'pending',
    reviewed_by     TEXT,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    reviewed_at     TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS admin_table_access (
    id         BIGSERIAL PRIMARY KEY,
    username   TEXT NOT NULL,
    table_name TEXT NOT NULL,
    granted_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (username, table_name)
);
`

// InitSchema creates the database schema if it does not exist yet.
func InitSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}
