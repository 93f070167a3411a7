package telemetry

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBMetricsConfig holds database metrics configuration
type DBMetricsConfig struct {
	Enabled            bool
	SlowQueryThreshold time.Duration // default 200ms
}

// DBMetrics records query counts, latency and pool usage
type DBMetrics struct {
	queryTotal     *Counter
	queryDuration  *Histogram
	slowQueryTotal *Counter
	slowThreshold  time.Duration
	registration   metric.Registration
}

// NewDBMetrics creates the instruments. Pool gauges are observed from sqlDB
// on each collection when it is non-nil.
func NewDBMetrics(meter metric.Meter, cfg DBMetricsConfig, sqlDB *sql.DB) (*DBMetrics, error) {
	if cfg.SlowQueryThreshold == 0 {
		cfg.SlowQueryThreshold = 200 * time.Millisecond
	}

	queryTotal, err := NewCounter(meter, "db_query_total", "Database queries by operation", "{query}")
	if err != nil {
		return nil, err
	}
	queryDuration, err := NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database query latency",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	slowQueryTotal, err := NewCounter(meter, "db_slow_query_total", "Queries slower than the threshold", "{query}")
	if err != nil {
		return nil, err
	}

	m := &DBMetrics{
		queryTotal:     queryTotal,
		queryDuration:  queryDuration,
		slowQueryTotal: slowQueryTotal,
		slowThreshold:  cfg.SlowQueryThreshold,
	}
	if sqlDB != nil {
		if err := m.observePool(meter, sqlDB); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *DBMetrics) observePool(meter metric.Meter, sqlDB *sql.DB) error {
	conns, err := meter.Int64ObservableGauge("db_pool_connections",
		metric.WithDescription("Connections in the pool by state"), metric.WithUnit("{connection}"))
	if err != nil {
		return err
	}
	maxConns, err := meter.Int64ObservableGauge("db_pool_connections_max",
		metric.WithDescription("Maximum open connections"), metric.WithUnit("{connection}"))
	if err != nil {
		return err
	}
	m.registration, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := sqlDB.Stats()
		o.ObserveInt64(maxConns, int64(stats.MaxOpenConnections))
		o.ObserveInt64(conns, int64(stats.Idle), metric.WithAttributes(AttrDBState.String("idle")))
		o.ObserveInt64(conns, int64(stats.InUse), metric.WithAttributes(AttrDBState.String("in_use")))
		o.ObserveInt64(conns, int64(stats.OpenConnections), metric.WithAttributes(AttrDBState.String("open")))
		return nil
	}, conns, maxConns)
	return err
}

// RecordQuery records one finished query
func (m *DBMetrics) RecordQuery(ctx context.Context, operation, table string, duration time.Duration) {
	operation = strings.ToUpper(operation)
	if operation == "" {
		operation = "UNKNOWN"
	}
	m.queryTotal.Inc(ctx, AttrDBOperation.String(operation))
	m.queryDuration.RecordDuration(ctx, duration, AttrDBOperation.String(operation))

	if duration > m.slowThreshold {
		if table == "" {
			table = "unknown"
		}
		m.slowQueryTotal.Inc(ctx, AttrDBTable.String(table))
	}
}

// Stop unregisters the pool callback
func (m *DBMetrics) Stop() {
	if m.registration != nil {
		_ = m.registration.Unregister()
		m.registration = nil
	}
}

// Name implements gorm.Plugin
func (m *DBMetrics) Name() string {
	return "db_metrics"
}

// Initialize implements gorm.Plugin
func (m *DBMetrics) Initialize(db *gorm.DB) error {
	return registerAround(db, "db_metrics", markQueryStart, func(op string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			ctx := tx.Statement.Context
			if ctx == nil {
				return
			}
			if op == "" {
				op = detectOperationType(tx.Statement.SQL.String())
			}
			m.RecordQuery(ctx, op, tx.Statement.Table, queryElapsed(ctx))
		}
	})
}

// RegisterDBMetrics installs the query metrics plugin on db
func RegisterDBMetrics(db *gorm.DB, mp *MeterProvider, cfg DBMetricsConfig, logger *zap.Logger) (*DBMetrics, error) {
	if !cfg.Enabled || mp == nil || !mp.IsEnabled() {
		return nil, nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	m, err := NewDBMetrics(mp.Meter("db.client"), cfg, sqlDB)
	if err != nil {
		return nil, err
	}
	if err := db.Use(m); err != nil {
		m.Stop()
		return nil, err
	}
	logger.Info("Database metrics registered", zap.Duration("slow_query_threshold", m.slowThreshold))
	return m, nil
}

func detectOperationType(sql string) string {
	sql = strings.TrimSpace(strings.ToUpper(sql))
	for _, op := range []string{"SELECT", "INSERT", "UPDATE", "DELETE"} {
		if strings.HasPrefix(sql, op) {
			return op
		}
	}
	return "OTHER"
}
