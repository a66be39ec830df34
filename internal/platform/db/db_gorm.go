// Package db opens the gorm connection used by the SQL document backend.
package db

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"user_backend/internal/platform/config"
)

// retryInterval is the pause between connection attempts. Tests shorten it.
var retryInterval = 3 * time.Second

// Opener opens a gorm connection for a DSN.
type Opener func(dsn string) (*gorm.DB, error)

// Dialector returns the gorm dialector for a SQL driver name.
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case config.DriverPostgres:
		return postgres.Open(dsn), nil
	case config.DriverSQLite:
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}
}

// ConnectWithRetry calls opener until it succeeds or timeout elapses.
// At least one attempt is always made.
func ConnectWithRetry(dsn string, timeout time.Duration, opener Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := opener(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().Add(retryInterval).After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		slog.Warn("db connect failed, retrying", "error", err, "retry_in", retryInterval)
		time.Sleep(retryInterval)
	}
}

// OpenDB connects to the configured SQL store and migrates the given models
// unless migrations are disabled.
func OpenDB(cfg config.StoreConfig, models ...any) (*gorm.DB, error) {
	if _, err := Dialector(cfg.Driver, cfg.DSN); err != nil {
		return nil, err
	}

	opener := func(dsn string) (*gorm.DB, error) {
		dialector, err := Dialector(cfg.Driver, dsn)
		if err != nil {
			return nil, err
		}
		return gorm.Open(dialector, &gorm.Config{Logger: newGormLogger()})
	}

	db, err := ConnectWithRetry(cfg.DSN, cfg.ConnectTimeout, opener)
	if err != nil {
		return nil, err
	}

	if cfg.Driver == config.DriverSQLite {
		// sqlite allows a single writer
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql.DB: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if !cfg.SkipMigrations && len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			return nil, fmt.Errorf("failed to migrate: %w", err)
		}
	}

	slog.Info("db connected", "driver", cfg.Driver)
	return db, nil
}

// newGormLogger routes gorm's warnings through the default slog handler.
func newGormLogger() logger.Interface {
	return logger.New(
		slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)
}
