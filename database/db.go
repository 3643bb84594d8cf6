// Package database provides the relational store access used by the
// application: a per-call query executor, its error taxonomy and the schema
// bootstrap for the users table.
package database

import (
	"context"
	"fmt"

	"github.com/ehb/ragchat/config"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Opener opens a fresh store handle. The executor closes every handle it gets.
type Opener func(ctx context.Context) (*gorm.DB, error)

// Dialect names the SQL flavour a handle speaks.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

func gormConfig() *gorm.Config {
	var gormLogger logger.Interface
	if config.IsDebug() {
		gormLogger = logger.Default
	} else {
		gormLogger = logger.Discard
	}
	return &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		TranslateError:         true,
	}
}

// OpenWith wraps a gorm dialector into an Opener. Each call produces a handle
// with its own single-connection pool.
func OpenWith(dialector func() gorm.Dialector) Opener {
	return func(ctx context.Context) (*gorm.DB, error) {
		db, err := gorm.Open(dialector(), gormConfig())
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		return db.WithContext(ctx), nil
	}
}

// NewOpener returns the Opener and dialect for the configured store.
func NewOpener(cfg *config.DatabaseConfig) (Opener, Dialect, error) {
	dsn := cfg.GetDSN()
	switch {
	case cfg.IsPostgreSQL():
		return OpenWith(func() gorm.Dialector { return postgres.Open(dsn) }), DialectPostgres, nil
	case cfg.IsSQLite():
		if err := cfg.EnsureDirectoryExists(); err != nil {
			return nil, "", err
		}
		return OpenWith(func() gorm.Dialector { return sqlite.Open(dsn) }), DialectSQLite, nil
	default:
		return nil, "", fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
}
