package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type txKey struct{}

// WithTenantSchema executes a function with schema-based tenant isolation.
// This is the KEY isolation mechanism for schema-per-tenant multi-tenancy.
//
// Usage in repositories:
//
//	schema, err := tenant.TenantSchema(ctx)
//	if err != nil { return err }
//	err = r.db.WithTenantSchema(ctx, schema, func(ctx context.Context) error {
//	    return r.db.GetContext(ctx, &shift, "SELECT * FROM shifts WHERE id = $1", id)
//	})
//
// How it works:
//  1. Starts a transaction
//  2. Sets "SET LOCAL search_path TO <tenant_schema>, public"
//  3. All queries inside fn resolve unqualified table names to the tenant schema
//  4. Commits transaction (SET LOCAL is scoped to it, so the pool stays clean)
//
// SET LOCAL doesn't support parameterized queries, so the schema name is
// quoted with pq.QuoteIdentifier before interpolation.
func (db *DB) WithTenantSchema(ctx context.Context, schema string, fn func(context.Context) error) error {
	return db.Transaction(ctx, func(tx *sqlx.Tx) error {
		setPath := fmt.Sprintf("SET LOCAL search_path TO %s, public", pq.QuoteIdentifier(schema))
		if _, err := tx.ExecContext(ctx, setPath); err != nil {
			return fmt.Errorf("failed to set search_path to %s: %w", schema, err)
		}

		// Store transaction in context so DB methods can use it
		txCtx := context.WithValue(ctx, txKey{}, tx)

		return fn(txCtx)
	})
}

// getTx extracts transaction from context if present
func (db *DB) getTx(ctx context.Context) *sqlx.Tx {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return nil
}
