package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"github.com/velux/backend/internal/infrastructure/config"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultSlowQueryThreshold applies when no threshold is configured
const DefaultSlowQueryThreshold = 200 * time.Millisecond

type queryStartKey struct{}

// RegisterDBTracing adds otelgorm spans to db plus callbacks that annotate
// the active span with the table, affected rows and a slow-query flag.
// Query variables stay out of spans unless cfg.DBLogFullSQL is set.
func RegisterDBTracing(db *gorm.DB, cfg config.TelemetryConfig, slowThreshold time.Duration, logger *zap.Logger) error {
	if !cfg.Enabled || !cfg.DBTraceEnabled {
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(db.Dialector.Name())}
	if !cfg.DBLogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}
	if err := registerQueryCallbacks(db, slowThreshold); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.DBLogFullSQL),
		zap.Duration("slow_query_threshold", slowThreshold),
	)
	return nil
}

func registerQueryCallbacks(db *gorm.DB, threshold time.Duration) error {
	if threshold <= 0 {
		threshold = DefaultSlowQueryThreshold
	}
	after := annotateSpan(threshold)
	cb := db.Callback()

	return errors.Join(
		cb.Create().Before("gorm:create").Register("velux:query_start:create", markQueryStart),
		cb.Query().Before("gorm:query").Register("velux:query_start:query", markQueryStart),
		cb.Update().Before("gorm:update").Register("velux:query_start:update", markQueryStart),
		cb.Delete().Before("gorm:delete").Register("velux:query_start:delete", markQueryStart),
		cb.Row().Before("gorm:row").Register("velux:query_start:row", markQueryStart),
		cb.Raw().Before("gorm:raw").Register("velux:query_start:raw", markQueryStart),

		cb.Create().After("gorm:create").Register("velux:query_span:create", after),
		cb.Query().After("gorm:query").Register("velux:query_span:query", after),
		cb.Update().After("gorm:update").Register("velux:query_span:update", after),
		cb.Delete().After("gorm:delete").Register("velux:query_span:delete", after),
		cb.Row().After("gorm:row").Register("velux:query_span:row", after),
		cb.Raw().After("gorm:raw").Register("velux:query_span:raw", after),
	)
}

func markQueryStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

func annotateSpan(threshold time.Duration) func(*gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			return
		}
		span := trace.SpanFromContext(ctx)
		if !span.IsRecording() {
			return
		}

		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
		if db.Statement.Table != "" {
			span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
		}
		if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, db.Error.Error())
			span.RecordError(db.Error)
		}

		start, ok := ctx.Value(queryStartKey{}).(time.Time)
		if !ok {
			return
		}
		if elapsed := time.Since(start); elapsed > threshold {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
		}
	}
}
