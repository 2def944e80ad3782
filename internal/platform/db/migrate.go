package db

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5"
)

//go:embed schema.sql
var schema string

// migrateLockKey serialises concurrent Migrate calls from several instances.
const migrateLockKey int64 = 0x637265646973

// Schema returns the DDL applied by Migrate.
func Schema() string {
	return schema
}

// Migrate applies the idempotent schema in one transaction while holding a
// transaction scoped advisory lock.
func Migrate(ctx context.Context, conn TxStarter) error {
	return WithTx(ctx, conn, pgx.TxOptions{}, func(tx DBTX) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, migrateLockKey); err != nil {
			return fmt.Errorf("platform/db: migrate lock: %w", err)
		}
		if _, err := tx.Exec(ctx, schema); err != nil {
			return fmt.Errorf("platform/db: migrate exec: %w", err)
		}
		return nil
	})
}
