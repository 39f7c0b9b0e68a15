package telemetry_test

import (
	"context"
	"testing"

	"github.com/meterly/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func disabledConfig() telemetry.Config {
	return telemetry.Config{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		SamplingRatio:     1.0,
		ServiceName:       "meterly-test",
	}
}

func TestTracerProvider_Disabled(t *testing.T) {
	ctx := context.Background()

	tp, err := telemetry.NewTracerProvider(ctx, disabledConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())

	t.Run("tracer still hands out spans", func(t *testing.T) {
		tracer := tp.Tracer("billing")
		require.NotNil(t, tracer)

		_, span := tracer.Start(ctx, "debit_run")
		span.End()
	})

	t.Run("flush and shutdown are no-ops", func(t *testing.T) {
		assert.NoError(t, tp.ForceFlush(ctx))

		cancelledCtx, cancel := context.WithCancel(ctx)
		cancel()
		assert.NoError(t, tp.Shutdown(cancelledCtx))
	})
}

func TestTracerProvider_SamplingRatios(t *testing.T) {
	// exercised with telemetry disabled, the sampler choice must not
	// affect construction
	for _, ratio := range []float64{0.0, 0.5, 1.0} {
		cfg := disabledConfig()
		cfg.SamplingRatio = ratio

		tp, err := telemetry.NewTracerProvider(context.Background(), cfg, zaptest.NewLogger(t))
		require.NoError(t, err)
		assert.NoError(t, tp.Shutdown(context.Background()))
	}
}

func TestTracerProvider_Enabled(t *testing.T) {
	// needs a running OTLP collector, see the compose file
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	cfg := disabledConfig()
	cfg.Enabled = true

	tp, err := telemetry.NewTracerProvider(ctx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.True(t, tp.IsEnabled())

	_, span := tp.Tracer("billing").Start(ctx, "debit_run")
	span.End()

	assert.NoError(t, tp.ForceFlush(ctx))
	assert.NoError(t, tp.Shutdown(ctx))
}
