// Package migrations embeds the SQL schema and applies it in file order
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"

	"github.com/jmoiron/sqlx"
)

//go:embed *.sql
var files embed.FS

// Apply executes every embedded migration in lexical order. The scripts are
// idempotent, so Apply is safe to run on every start.
func Apply(ctx context.Context, db *sqlx.DB, logger *slog.Logger) error {
	return apply(ctx, db, files, logger)
}

func apply(ctx context.Context, db *sqlx.DB, fsys fs.FS, logger *slog.Logger) error {
	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		script, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}

		if _, err := db.ExecContext(ctx, string(script)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", name, err)
		}

		logger.Info("Migration applied", slog.String("file", name))
	}

	return nil
}
