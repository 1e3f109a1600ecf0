package migrations

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresExecer is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type PostgresExecer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// RunPostgresMigrations applies all embedded SQL files in lexical order.
// Every migration uses IF NOT EXISTS, so reapplying is a no-op.
func RunPostgresMigrations(ctx context.Context, db PostgresExecer) error {
	files, err := load(PostgresFS, "postgres")
	if err != nil {
		return err
	}

	for _, m := range files {
		if _, err := db.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.name, err)
		}
	}
	return nil
}
