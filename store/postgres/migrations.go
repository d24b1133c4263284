package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Solar ledger store (PostgreSQL).
var Migrations = migrate.NewGroup("solarledger")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_solar_members",
			Version: "20250407000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS solar_members (
    id                     TEXT PRIMARY KEY,
    handle                 TEXT NOT NULL DEFAULT '',
    name                   TEXT NOT NULL DEFAULT '',
    email                  TEXT NOT NULL DEFAULT '',
    joined_date            TEXT NOT NULL,
    total_rays             BIGINT NOT NULL DEFAULT 0,
    is_anonymous           BOOLEAN NOT NULL DEFAULT FALSE,
    is_reserve             BOOLEAN NOT NULL DEFAULT FALSE,
    is_placeholder         BOOLEAN NOT NULL DEFAULT FALSE,
    last_distribution_date TEXT NOT NULL DEFAULT '',
    notes                  TEXT NOT NULL DEFAULT '',
    created_at             TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at             TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_solar_members_handle ON solar_members (handle);
CREATE INDEX IF NOT EXISTS idx_solar_members_joined ON solar_members (joined_date);
CREATE INDEX IF NOT EXISTS idx_solar_members_accruing ON solar_members (is_reserve, is_placeholder);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS solar_members`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_solar_distributions",
			Version: "20250407000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS solar_distributions (
    id         TEXT PRIMARY KEY,
    member_id  TEXT NOT NULL,
    date       TEXT NOT NULL,
    rays       BIGINT NOT NULL DEFAULT 0,
    usd_cents  BIGINT NOT NULL DEFAULT 0,
    currency   TEXT NOT NULL DEFAULT 'usd',
    note       TEXT NOT NULL DEFAULT '',
    applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_solar_dist_member ON solar_distributions (member_id, applied_at);
CREATE INDEX IF NOT EXISTS idx_solar_dist_date ON solar_distributions (date);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS solar_distributions`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_solar_trades",
			Version: "20250407000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS solar_trades (
    id             TEXT PRIMARY KEY,
    member_id      TEXT NOT NULL,
    quantity_rays  BIGINT NOT NULL DEFAULT 0,
    unit_cents     BIGINT NOT NULL DEFAULT 0,
    baseline_cents BIGINT NOT NULL DEFAULT 0,
    delta_cents    BIGINT NOT NULL DEFAULT 0,
    currency       TEXT NOT NULL DEFAULT 'usd',
    executed_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_solar_trades_member ON solar_trades (member_id, executed_at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS solar_trades`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_solar_listings",
			Version: "20250407000004",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS solar_listings (
    id          TEXT PRIMARY KEY,
    owner_id    TEXT NOT NULL,
    kind        TEXT NOT NULL,
    kwh         BIGINT NOT NULL DEFAULT 0,
    price_cents BIGINT NOT NULL DEFAULT 0,
    currency    TEXT NOT NULL DEFAULT 'usd',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_solar_listings_kind ON solar_listings (kind, created_at);
CREATE INDEX IF NOT EXISTS idx_solar_listings_owner ON solar_listings (owner_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS solar_listings`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_solar_fills",
			Version: "20250407000005",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS solar_fills (
    id          TEXT PRIMARY KEY,
    buyer_id    TEXT NOT NULL,
    seller_id   TEXT NOT NULL,
    kwh         BIGINT NOT NULL DEFAULT 0,
    price_cents BIGINT NOT NULL DEFAULT 0,
    currency    TEXT NOT NULL DEFAULT 'usd',
    matched_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_solar_fills_buyer ON solar_fills (buyer_id);
CREATE INDEX IF NOT EXISTS idx_solar_fills_seller ON solar_fills (seller_id);
CREATE INDEX IF NOT EXISTS idx_solar_fills_matched ON solar_fills (matched_at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS solar_fills`)
				return err
			},
		},
	)
}
