package telemetry_test

import (
	"context"
	"testing"

	"github.com/doorsets/backend/internal/infrastructure/persistence/models"
	"github.com/doorsets/backend/internal/infrastructure/telemetry"
	"github.com/doorsets/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

func TestRegisterDBTracing(t *testing.T) {
	sr := recordSpans(t)
	db := testutil.NewSQLiteDB(t)
	require.NoError(t, telemetry.RegisterDBTracing(db, telemetry.DBTracingConfig{
		Enabled: true,
		DBName:  "sqlite",
	}, zap.NewNop()))

	ctx, parent := telemetry.StartSpan(context.Background(), "item.list")
	var items []models.ItemModel
	require.NoError(t, db.WithContext(ctx).Find(&items).Error)
	assert.Error(t, db.WithContext(ctx).Exec("SELECT * FROM no_such_table").Error)
	parent.End()

	traceID := parent.SpanContext().TraceID()
	var children, failed int
	for _, s := range sr.Ended() {
		if s.Name() == "item.list" {
			continue
		}
		assert.Equal(t, traceID, s.SpanContext().TraceID())
		children++
		if s.Status().Code == codes.Error {
			failed++
		}
	}
	assert.Equal(t, 2, children)
	assert.Equal(t, 1, failed)
}

func TestRegisterDBTracing_Disabled(t *testing.T) {
	sr := recordSpans(t)
	db := testutil.NewSQLiteDB(t)
	require.NoError(t, telemetry.RegisterDBTracing(db, telemetry.DBTracingConfig{}, zap.NewNop()))

	var items []models.ItemModel
	require.NoError(t, db.WithContext(context.Background()).Find(&items).Error)
	assert.Empty(t, sr.Ended())
}
