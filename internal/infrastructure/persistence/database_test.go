package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/catalogsync/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// mockDatabase wraps a sqlmock connection in a gorm postgres Database.
// Pings are monitored so health checks can be scripted.
func mockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn, DriverName: "postgres"}), &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return &Database{DB: db}, mock
}

func TestDatabase_Ping(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		db, mock := mockDatabase(t)
		mock.ExpectPing()

		assert.NoError(t, db.Ping(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unreachable", func(t *testing.T) {
		db, mock := mockDatabase(t)
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		err := db.Ping(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func withDialector(d gorm.Dialector) DatabaseOption {
	return func(o *databaseOptions) {
		o.openDialect = func(string) gorm.Dialector { return d }
	}
}

func TestNewDatabase(t *testing.T) {
	cfg := &config.DatabaseConfig{MaxOpenConns: 7, MaxIdleConns: 2}

	t.Run("retries until the database answers", func(t *testing.T) {
		conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		t.Cleanup(func() { _ = conn.Close() })
		mock.ExpectPing().WillReturnError(errors.New("the database system is starting up"))
		mock.ExpectPing()

		db, err := NewDatabase(cfg,
			withDialector(postgres.New(postgres.Config{Conn: conn})),
			WithConnectRetry(3, time.Millisecond))
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())

		sqlDB, err := db.DB.DB()
		require.NoError(t, err)
		assert.Equal(t, 7, sqlDB.Stats().MaxOpenConnections)
	})

	t.Run("gives up after the last attempt", func(t *testing.T) {
		conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))
		mock.ExpectClose()

		_, err = NewDatabase(cfg,
			withDialector(postgres.New(postgres.Config{Conn: conn})),
			WithConnectRetry(2, time.Millisecond))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "after 2 attempt(s)")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDatabase_Close(t *testing.T) {
	db, mock := mockDatabase(t)
	mock.ExpectClose()

	require.NoError(t, db.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
