// Package testutil holds helpers shared by package tests: an in-memory
// SQLite database with the full schema, a sqlmock-backed Postgres dialect,
// an event recorder and gin request helpers.
package testutil

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/doorsets/backend/internal/domain/shared"
	"github.com/doorsets/backend/internal/infrastructure/cache"
	"github.com/doorsets/backend/internal/infrastructure/event"
	"github.com/doorsets/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewSQLiteDB opens a private in-memory database with every table migrated.
// A single connection keeps the database alive and serializes transactions.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err, "Failed to open SQLite")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...), "Failed to migrate test schema")
	return db
}

// MockDB wraps a GORM database with sqlmock for testing
type MockDB struct {
	DB    *gorm.DB
	Mock  sqlmock.Sqlmock
	SqlDB *sql.DB
}

// NewMockDB creates a Postgres-dialect GORM handle backed by sqlmock.
// The connection is closed on cleanup.
func NewMockDB(t *testing.T) *MockDB {
	t.Helper()

	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err, "Failed to create sqlmock")

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB, DriverName: "postgres"}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "Failed to open GORM connection")
	t.Cleanup(func() { _ = mockDB.Close() })

	return &MockDB{DB: gormDB, Mock: mock, SqlDB: mockDB}
}

// ExpectationsWereMet verifies that all expectations were met
func (m *MockDB) ExpectationsWereMet(t *testing.T) {
	t.Helper()
	require.NoError(t, m.Mock.ExpectationsWereMet(), "Unmet database expectations")
}

// EventRecorder is a shared.EventPublisher that keeps what it is given
type EventRecorder struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

// NewEventRecorder creates an empty recorder
func NewEventRecorder() *EventRecorder {
	return &EventRecorder{}
}

// Publish records the events
func (r *EventRecorder) Publish(_ context.Context, events ...shared.DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	return nil
}

// Events returns a copy of everything recorded
func (r *EventRecorder) Events() []shared.DomainEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]shared.DomainEvent, len(r.events))
	copy(out, r.events)
	return out
}

// Types returns the recorded event types in order
func (r *EventRecorder) Types() []string {
	events := r.Events()
	out := make([]string, len(events))
	for i, ev := range events {
		out[i] = ev.EventType()
	}
	return out
}

// Reset forgets recorded events
func (r *EventRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

var _ shared.EventPublisher = (*EventRecorder)(nil)

// NewCachingBus returns an in-memory event bus whose events invalidate the
// returned query cache, as the server wires them
func NewCachingBus(t *testing.T) (*event.InMemoryEventBus, *cache.InMemoryQueryCache) {
	t.Helper()

	qc := cache.NewInMemoryQueryCache(time.Minute)
	t.Cleanup(func() { _ = qc.Close() })

	bus := event.NewInMemoryEventBus(nil)
	bus.Subscribe(cache.NewInvalidationHandler(qc, nil))
	require.NoError(t, bus.Start(context.Background()))
	return bus, qc
}
