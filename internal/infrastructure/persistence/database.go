package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/catalogsync/backend/internal/infrastructure/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database is the product store's gorm handle
type Database struct {
	DB *gorm.DB
}

type databaseOptions struct {
	logger      gormlogger.Interface
	attempts    int
	retryDelay  time.Duration
	openDialect func(dsn string) gorm.Dialector
}

// DatabaseOption configures NewDatabase
type DatabaseOption func(*databaseOptions)

// WithGormLogger replaces GORM's default (silent) logger
func WithGormLogger(l gormlogger.Interface) DatabaseOption {
	return func(o *databaseOptions) {
		o.logger = l
	}
}

// WithConnectRetry pings up to attempts times, waiting delay between tries.
// The grid server is often started next to a database that is still booting.
func WithConnectRetry(attempts int, delay time.Duration) DatabaseOption {
	return func(o *databaseOptions) {
		if attempts > 0 {
			o.attempts = attempts
		}
		o.retryDelay = delay
	}
}

// NewDatabase opens a pooled postgres connection and waits for it to answer
func NewDatabase(cfg *config.DatabaseConfig, opts ...DatabaseOption) (*Database, error) {
	o := databaseOptions{
		logger:      gormlogger.Default.LogMode(gormlogger.Silent),
		attempts:    1,
		openDialect: postgres.Open,
	}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := gorm.Open(o.openDialect(cfg.DSN()), &gorm.Config{
		Logger:                 o.logger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		DisableAutomaticPing:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	configurePool(sqlDB, cfg)

	if err := waitForDatabase(context.Background(), sqlDB, o.attempts, o.retryDelay); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return &Database{DB: db}, nil
}

func configurePool(sqlDB *sql.DB, cfg *config.DatabaseConfig) {
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)
}

func waitForDatabase(ctx context.Context, sqlDB *sql.DB, attempts int, delay time.Duration) error {
	var err error
	for i := 1; i <= attempts; i++ {
		if err = sqlDB.PingContext(ctx); err == nil {
			return nil
		}
		if i < attempts {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return fmt.Errorf("database unreachable after %d attempt(s): %w", attempts, err)
}

// Close closes the connection pool
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping backs the /health database check
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
