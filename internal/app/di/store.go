// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"fmt"

	"user_backend/internal/feature/user/adapters"
	"user_backend/internal/feature/user/usecase"
	"user_backend/internal/platform/config"
	"user_backend/internal/platform/db"
	"user_backend/internal/platform/mongo"
)

// UserStore is the document backend selected by configuration.
type UserStore struct {
	driver string
	repo   usecase.UserRepository
	ping   func(ctx context.Context) error
	close  func(ctx context.Context) error
}

// NewUserStore connects to the configured backend: MongoDB for the "mongo"
// driver, a gorm document table for "postgres" and "sqlite".
func NewUserStore(ctx context.Context, cfg config.StoreConfig) (*UserStore, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		m, err := mongo.New(ctx, cfg.MongoURL, cfg.ConnectTimeout)
		if err != nil {
			return nil, err
		}
		return &UserStore{
			driver: cfg.Driver,
			repo:   adapters.NewUserMongo(m.Database()),
			ping:   m.Ping,
			close:  m.Close,
		}, nil

	case config.DriverPostgres, config.DriverSQLite:
		gdb, err := db.OpenDB(cfg, &adapters.UserModel{})
		if err != nil {
			return nil, err
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql.DB: %w", err)
		}
		return &UserStore{
			driver: cfg.Driver,
			repo:   adapters.NewUserSQL(gdb),
			ping:   sqlDB.PingContext,
			close:  func(context.Context) error { return sqlDB.Close() },
		}, nil

	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
}

// Driver returns the configured driver name.
func (s *UserStore) Driver() string { return s.driver }

// Repository returns the user repository backed by this store.
func (s *UserStore) Repository() usecase.UserRepository { return s.repo }

// Ping reports whether the backend is reachable.
func (s *UserStore) Ping(ctx context.Context) error { return s.ping(ctx) }

// Close releases the backend connections.
func (s *UserStore) Close(ctx context.Context) error { return s.close(ctx) }
