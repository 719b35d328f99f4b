package observability

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const spanInstanceKey = "csdlgen:span"

// RegisterGORMCallbacks adds a span around every create and query executed by db.
func RegisterGORMCallbacks(db *gorm.DB, cfg *Config) error {
	before := func(operation string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			ctx, span := cfg.StartSpan(tx.Statement.Context, "store."+operation,
				attribute.String("db.operation", operation))
			tx.Statement.Context = ctx
			tx.InstanceSet(spanInstanceKey, span)
		}
	}
	after := func(tx *gorm.DB) {
		value, ok := tx.InstanceGet(spanInstanceKey)
		if !ok {
			return
		}
		span, ok := value.(trace.Span)
		if !ok {
			return
		}
		if tx.Statement.Table != "" {
			span.SetAttributes(attribute.String("db.table", tx.Statement.Table))
		}
		span.SetAttributes(attribute.Int64("db.rows_affected", tx.RowsAffected))
		EndSpan(span, tx.Error)
	}

	cb := db.Callback()
	if err := cb.Create().Before("gorm:create").Register("csdlgen:before_create", before("create")); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:create").Register("csdlgen:after_create", after); err != nil {
		return err
	}
	if err := cb.Query().Before("gorm:query").Register("csdlgen:before_query", before("query")); err != nil {
		return err
	}
	return cb.Query().After("gorm:query").Register("csdlgen:after_query", after)
}
