package telemetry_test

import (
	"context"
	"testing"

	"github.com/doorsets/backend/internal/infrastructure/config"
	"github.com/doorsets/backend/internal/infrastructure/telemetry"
	"github.com/doorsets/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	tp, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{ServiceName: "doorsets"}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("x"))

	tp.EnableSpanProfiles()
	assert.False(t, tp.IsSpanProfilesEnabled(), "span profiles need a live provider")
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestSetup_AllDisabled(t *testing.T) {
	ctx := context.Background()
	cfg := config.TelemetryConfig{ServiceName: "doorsets-backend", MetricsEnabled: true, LogsEnabled: true}

	p, err := telemetry.Setup(ctx, cfg, "1.2.3", zap.NewNop())
	require.NoError(t, err)
	assert.False(t, p.Tracer.IsEnabled())
	assert.False(t, p.Meter.IsEnabled(), "metrics need telemetry enabled")
	assert.False(t, p.Logs.IsEnabled())
	assert.False(t, p.Profiler.IsEnabled())

	db := testutil.NewSQLiteDB(t)
	require.NoError(t, p.InstrumentDB(db, cfg, "sqlite", zap.NewNop()))

	bm, err := p.StartBusinessMetrics(nil, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, bm)

	logger := zap.NewNop()
	assert.Same(t, logger, telemetry.Bridge(logger, "doorsets", p.Logs))

	assert.NoError(t, p.Shutdown(ctx))
}

func TestSetup_ProfilingWithoutServer(t *testing.T) {
	_, err := telemetry.Setup(context.Background(), config.TelemetryConfig{
		ServiceName:      "doorsets-backend",
		ProfilingEnabled: true,
	}, "", zap.NewNop())
	assert.ErrorContains(t, err, "server address is required")
}
