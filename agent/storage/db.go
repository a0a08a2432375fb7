// Package storage persists agents, coordination sessions and user memories
// through bun on Postgres or SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Driver string `envconfig:"DRIVER" split_words:"true" default:"sqlite"`
	DSN    string `envconfig:"DSN" split_words:"true" default:"file:coordination.db?_pragma=busy_timeout(5000)"`
}

type DB struct {
	bun *bun.DB
}

func Open(ctx context.Context, cfg Config) (*DB, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("storage dsn is required")
	}

	var db *bun.DB
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case DriverPostgres, "pg":
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
		db = bun.NewDB(sqldb, pgdialect.New())
	case DriverSQLite, "":
		sqldb, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// every connection to an in-memory database is a separate database
		sqldb.SetMaxOpenConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", db.Dialect().Name(), err)
	}

	log.Ctx(ctx).Debug().Str("dialect", db.Dialect().Name().String()).Msg("database opened")
	return &DB{bun: db}, nil
}

func (db *DB) Close() error {
	return db.bun.Close()
}

// Migrate creates the tables the engine reads and writes. It is idempotent.
func (db *DB) Migrate(ctx context.Context) error {
	models := []any{
		(*agentRow)(nil),
		(*sessionRow)(nil),
		(*memoryRow)(nil),
	}
	for _, model := range models {
		if _, err := db.bun.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", model, err)
		}
	}

	indexes := []struct {
		model  any
		name   string
		column string
	}{
		{(*agentRow)(nil), "agents_specialization_idx", "specialization"},
		{(*sessionRow)(nil), "coordination_sessions_user_idx", "user_id"},
		{(*memoryRow)(nil), "user_memories_user_idx", "user_id"},
	}
	for _, idx := range indexes {
		if _, err := db.bun.NewCreateIndex().Model(idx.model).Index(idx.name).Column(idx.column).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create index %s: %w", idx.name, err)
		}
	}
	return nil
}

func (db *DB) isPostgres() bool {
	return db.bun.Dialect().Name() == dialect.PG
}
