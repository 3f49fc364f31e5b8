package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/goliatone/go-social/pkg/domain"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// Models lists every table owned by the module.
func Models() []any {
	return []any{
		(*domain.User)(nil),
		(*domain.Notification)(nil),
		(*domain.Message)(nil),
		(*domain.News)(nil),
		(*domain.NewsLike)(nil),
		(*domain.Article)(nil),
		(*domain.Comment)(nil),
		(*domain.Question)(nil),
		(*domain.Answer)(nil),
		(*domain.Vote)(nil),
	}
}

// Open builds a *bun.DB for driver ("sqlite" or "postgres") and pings it.
func Open(ctx context.Context, driver, dsn string) (*bun.DB, error) {
	var db *bun.DB
	switch driver {
	case "sqlite":
		sqldb, err := sql.Open(sqliteshim.DriverName(), dsn)
		if err != nil {
			return nil, fmt.Errorf("storage: open sqlite: %w", err)
		}
		// sqlite has a single writer; one connection keeps transactions
		// from racing on the file lock.
		sqldb.SetMaxOpenConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	case "postgres":
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
		db = bun.NewDB(sqldb, pgdialect.New())
	default:
		return nil, fmt.Errorf("storage: unsupported driver %q", driver)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: ping %s: %w", driver, err)
	}
	return db, nil
}

// CreateSchema creates missing tables for every model.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	for _, model := range Models() {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("storage: create table %T: %w", model, err)
		}
	}
	return nil
}
