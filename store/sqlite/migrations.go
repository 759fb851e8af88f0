package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Provenance store (SQLite).
var Migrations = migrate.NewGroup("provenance")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_provenance_contents",
			Version: "20250101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS provenance_contents (
    id           INTEGER PRIMARY KEY,
    creator      TEXT NOT NULL DEFAULT '',
    content_uri  TEXT NOT NULL DEFAULT '',
    metadata_uri TEXT NOT NULL DEFAULT '',
    content_type INTEGER NOT NULL DEFAULT 0,
    active       INTEGER NOT NULL DEFAULT 1,
    created_at   TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at   TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_provenance_contents_creator ON provenance_contents (creator);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS provenance_contents`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_provenance_royalty_settings",
			Version: "20250101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS provenance_royalty_settings (
    content_id   INTEGER PRIMARY KEY,
    model        TEXT NOT NULL DEFAULT '',
    recipient    TEXT NOT NULL DEFAULT '',
    basis_points INTEGER NOT NULL DEFAULT 0,
    min_amount   TEXT NOT NULL DEFAULT '0',
    max_amount   TEXT NOT NULL DEFAULT '0',
    thresholds   TEXT NOT NULL DEFAULT '[]',
    rates        TEXT NOT NULL DEFAULT '[]',
    amount       TEXT NOT NULL DEFAULT '0',
    updated_at   TEXT NOT NULL DEFAULT (datetime('now'))
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS provenance_royalty_settings`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_provenance_royalty_payments",
			Version: "20250101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS provenance_royalty_payments (
    id         TEXT PRIMARY KEY,
    content_id INTEGER NOT NULL DEFAULT 0,
    payer      TEXT NOT NULL DEFAULT '',
    recipient  TEXT NOT NULL DEFAULT '',
    amount     TEXT NOT NULL DEFAULT '0',
    paid_at    TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_provenance_payments_content ON provenance_royalty_payments (content_id, paid_at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS provenance_royalty_payments`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_provenance_usage_events",
			Version: "20250101000004",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS provenance_usage_events (
    id         TEXT PRIMARY KEY,
    content_id INTEGER NOT NULL DEFAULT 0,
    platform   TEXT NOT NULL DEFAULT '',
    quantity   INTEGER NOT NULL DEFAULT 0,
    scope_key  TEXT NOT NULL DEFAULT '',
    timestamp  TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_provenance_usage_content ON provenance_usage_events (content_id, timestamp);
CREATE INDEX IF NOT EXISTS idx_provenance_usage_timestamp ON provenance_usage_events (timestamp);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS provenance_usage_events`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_provenance_licenses",
			Version: "20250101000005",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS provenance_licenses (
    id           INTEGER PRIMARY KEY,
    licensee     TEXT NOT NULL DEFAULT '',
    content_id   INTEGER NOT NULL DEFAULT 0,
    license_type INTEGER NOT NULL DEFAULT 0,
    start_time   TEXT NOT NULL DEFAULT (datetime('now')),
    end_time     TEXT,
    usage_limit  INTEGER NOT NULL DEFAULT 0,
    usage_count  INTEGER NOT NULL DEFAULT 0,
    active       INTEGER NOT NULL DEFAULT 1,
    created_at   TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at   TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_provenance_licenses_licensee ON provenance_licenses (licensee);
CREATE INDEX IF NOT EXISTS idx_provenance_licenses_content ON provenance_licenses (content_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS provenance_licenses`)
				return err
			},
		},
	)
}
