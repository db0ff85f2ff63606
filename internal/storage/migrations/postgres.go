package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"steem-curation-lab/internal/storage/postgres"
)

// RunPostgres applies the embedded PostgreSQL migrations in lexical
// order. Every statement is idempotent, so reruns are safe.
func RunPostgres(ctx context.Context, pool *postgres.Pool) error {
	entries, err := fs.ReadDir(PostgresFS, "postgres")
	if err != nil {
		return fmt.Errorf("read postgres migrations dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		sql, err := fs.ReadFile(PostgresFS, "postgres/"+name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if strings.TrimSpace(string(sql)) == "" {
			continue
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	return nil
}
