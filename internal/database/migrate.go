package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// migrationNames lists the embedded files ending in suffix, sorted by
// name.  Down migrations run in reverse.
func migrationNames(suffix string) ([]string, error) {
	names, err := fs.Glob(migrationFiles, "migrations/*"+suffix)
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	if suffix == ".down.sql" {
		sort.Sort(sort.Reverse(sort.StringSlice(names)))
	}
	return names, nil
}

func apply(ctx context.Context, db *sql.DB, log zerolog.Logger, suffix string) error {
	names, err := migrationNames(suffix)
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	for _, name := range names {
		bs, err := migrationFiles.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		stmt := strings.TrimSpace(string(bs))
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		log.Debug().Str("file", name).Msg("migration applied")
	}
	return nil
}

// MigrateUp creates the schema.  Every file holds one idempotent
// statement, so running it against an existing schema is harmless.
func MigrateUp(ctx context.Context, db *sql.DB, log zerolog.Logger) error {
	if err := apply(ctx, db, log, ".up.sql"); err != nil {
		return err
	}
	log.Info().Msg("migrations applied")
	return nil
}

// MigrateDown drops the schema, dependents first.
func MigrateDown(ctx context.Context, db *sql.DB, log zerolog.Logger) error {
	if err := apply(ctx, db, log, ".down.sql"); err != nil {
		return err
	}
	log.Info().Msg("migrations rolled back")
	return nil
}
