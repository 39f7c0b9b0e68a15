package telemetry

import (
	"context"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type contextKey string

const queryStartTimeKey contextKey = "otel_query_start_time"

// DBTracingConfig controls SQL span generation.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool          // include query variables in spans, never in production
	SlowQueryThresh time.Duration // queries above this get flagged on the span
	DBSystem        string
}

// DefaultDBTracingConfig returns the baseline: tracing off, variables
// redacted, 200ms slow threshold.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		Enabled:         false,
		LogFullSQL:      false,
		SlowQueryThresh: 200 * time.Millisecond,
		DBSystem:        "postgresql",
	}
}

// DBTracingPlugin layers slow-query annotation on top of otelgorm so
// debit-run SQL that drags shows up directly in the trace.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	return &DBTracingPlugin{config: cfg, logger: logger}
}

// Register installs otelgorm plus the timing callbacks on db. It is a
// no-op when tracing is disabled.
func (p *DBTracingPlugin) Register(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(p.config.DBSystem)}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	if err := p.registerTimingCallbacks(db); err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
		zap.String("db_system", p.config.DBSystem),
	)
	return nil
}

// registerTimingCallbacks stamps a start time before every operation
// kind and annotates the active span after it.
func (p *DBTracingPlugin) registerTimingCallbacks(db *gorm.DB) error {
	markStart := func(db *gorm.DB) {
		if db.Statement.Context != nil {
			db.Statement.Context = context.WithValue(db.Statement.Context, queryStartTimeKey, time.Now())
		}
	}

	firstErr := func(errs ...error) error {
		for _, err := range errs {
			if err != nil {
				return err
			}
		}
		return nil
	}

	cb := db.Callback()
	if err := firstErr(
		cb.Create().Before("gorm:create").Register("billing_trace:before_create", markStart),
		cb.Query().Before("gorm:query").Register("billing_trace:before_query", markStart),
		cb.Update().Before("gorm:update").Register("billing_trace:before_update", markStart),
		cb.Delete().Before("gorm:delete").Register("billing_trace:before_delete", markStart),
		cb.Row().Before("gorm:row").Register("billing_trace:before_row", markStart),
		cb.Raw().Before("gorm:raw").Register("billing_trace:before_raw", markStart),
	); err != nil {
		return err
	}

	return firstErr(
		cb.Create().After("gorm:create").Register("billing_trace:after_create", p.annotateSpan),
		cb.Query().After("gorm:query").Register("billing_trace:after_query", p.annotateSpan),
		cb.Update().After("gorm:update").Register("billing_trace:after_update", p.annotateSpan),
		cb.Delete().After("gorm:delete").Register("billing_trace:after_delete", p.annotateSpan),
		cb.Row().After("gorm:row").Register("billing_trace:after_row", p.annotateSpan),
		cb.Raw().After("gorm:raw").Register("billing_trace:after_raw", p.annotateSpan),
	)
}

// annotateSpan adds row counts, table, errors and slow-query markers
// to the span otelgorm opened for the statement.
func (p *DBTracingPlugin) annotateSpan(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}

	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}

	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}

	// A missing row is an expected outcome, not a span error.
	if db.Error != nil && db.Error != gorm.ErrRecordNotFound {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	startTime, ok := ctx.Value(queryStartTimeKey).(time.Time)
	if !ok {
		return
	}
	if elapsed := time.Since(startTime); elapsed > p.config.SlowQueryThresh {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
		span.AddEvent("slow_query_warning", trace.WithAttributes(
			attribute.Int64("duration_ms", elapsed.Milliseconds()),
			attribute.Int64("threshold_ms", p.config.SlowQueryThresh.Milliseconds()),
		))
	}
}
