package telemetry

import (
	"context"
	"errors"

	"github.com/doorsets/backend/internal/infrastructure/config"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Providers bundles the telemetry pipelines started for one process
type Providers struct {
	Tracer   *TracerProvider
	Meter    *MeterProvider
	Logs     *LoggerProvider
	Profiler *Profiler

	dbMetrics *DBMetrics
	business  *BusinessMetrics
}

// Setup starts tracing, metrics, log export and profiling as configured.
// Every pipeline is a no-op when its switch is off.
func Setup(ctx context.Context, cfg config.TelemetryConfig, version string, logger *zap.Logger) (*Providers, error) {
	p := &Providers{}
	var err error

	p.Tracer, err = NewTracerProvider(ctx, Config{
		Enabled:           cfg.Enabled,
		CollectorEndpoint: cfg.CollectorEndpoint,
		SamplingRatio:     cfg.SamplingRatio,
		ServiceName:       cfg.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Insecure,
	}, logger)
	if err != nil {
		return nil, err
	}

	p.Meter, err = NewMeterProvider(ctx, MetricsConfig{
		Enabled:           cfg.Enabled && cfg.MetricsEnabled,
		CollectorEndpoint: cfg.CollectorEndpoint,
		ExportInterval:    cfg.MetricsInterval,
		ServiceName:       cfg.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Insecure,
	}, logger)
	if err != nil {
		return nil, errors.Join(err, p.Shutdown(ctx))
	}

	p.Logs, err = NewLoggerProvider(ctx, LogsConfig{
		Enabled:           cfg.Enabled && cfg.LogsEnabled,
		CollectorEndpoint: cfg.CollectorEndpoint,
		ServiceName:       cfg.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Insecure,
	}, logger)
	if err != nil {
		return nil, errors.Join(err, p.Shutdown(ctx))
	}

	p.Profiler, err = NewProfiler(ProfilerConfig{
		Enabled:         cfg.ProfilingEnabled,
		ServerAddress:   cfg.ProfilingServer,
		ApplicationName: cfg.ServiceName,
	}, logger)
	if err != nil {
		return nil, errors.Join(err, p.Shutdown(ctx))
	}
	if p.Profiler.IsEnabled() {
		p.Tracer.EnableSpanProfiles()
	}
	return p, nil
}

// InstrumentDB installs database tracing and metrics on db
func (p *Providers) InstrumentDB(db *gorm.DB, cfg config.TelemetryConfig, dbName string, logger *zap.Logger) error {
	if err := RegisterDBTracing(db, DBTracingConfig{
		Enabled:    cfg.Enabled && cfg.DBTraceEnabled,
		LogFullSQL: cfg.DBLogFullSQL,
		DBName:     dbName,
	}, logger); err != nil {
		return err
	}
	m, err := RegisterDBMetrics(db, p.Meter, DBMetricsConfig{Enabled: true}, logger)
	if err != nil {
		return err
	}
	p.dbMetrics = m
	return nil
}

// StartBusinessMetrics creates the business metrics when metrics are exported.
// It returns nil when they are not.
func (p *Providers) StartBusinessMetrics(inventory InventorySummaryProvider, logger *zap.Logger) (*BusinessMetrics, error) {
	if !p.Meter.IsEnabled() {
		return nil, nil
	}
	bm, err := NewBusinessMetrics(p.Meter.Meter(TracerName), inventory, logger)
	if err != nil {
		return nil, err
	}
	p.business = bm
	return bm, nil
}

// Shutdown stops every pipeline, flushing pending data
func (p *Providers) Shutdown(ctx context.Context) error {
	if p.business != nil {
		p.business.Stop()
	}
	if p.dbMetrics != nil {
		p.dbMetrics.Stop()
	}
	var errs []error
	if p.Profiler != nil {
		errs = append(errs, p.Profiler.Stop())
	}
	if p.Logs != nil {
		errs = append(errs, p.Logs.Shutdown(ctx))
	}
	if p.Meter != nil {
		errs = append(errs, p.Meter.Shutdown(ctx))
	}
	if p.Tracer != nil {
		errs = append(errs, p.Tracer.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
