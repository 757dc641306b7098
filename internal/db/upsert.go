package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// UpsertConfig describes a keyed bulk write.
type UpsertConfig struct {
	Table        string
	Columns      []string
	ConflictKeys []string
}

// Upsert writes rows through a temp table: COPY into the temp table, then
// INSERT ... ON CONFLICT (keys) DO UPDATE into the target, in one
// transaction. It returns the number of rows inserted or updated.
func Upsert(ctx context.Context, pool Pool, cfg UpsertConfig, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	createSQL, insertSQL, err := upsertStatements(cfg)
	if err != nil {
		return 0, err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "db: upsert: begin")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, createSQL); err != nil {
		return 0, eris.Wrapf(err, "db: upsert: create staging table for %s", cfg.Table)
	}
	if _, err := CopyRows(ctx, tx, stagingTable(cfg.Table), cfg.Columns, rows); err != nil {
		return 0, eris.Wrapf(err, "db: upsert: stage %s", cfg.Table)
	}
	tag, err := tx.Exec(ctx, insertSQL)
	if err != nil {
		return 0, eris.Wrapf(err, "db: upsert: merge into %s", cfg.Table)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "db: upsert: commit")
	}
	return tag.RowsAffected(), nil
}

func stagingTable(table string) string {
	return "_stage_" + table
}

func upsertStatements(cfg UpsertConfig) (createSQL, insertSQL string, err error) {
	if cfg.Table == "" || len(cfg.Columns) == 0 {
		return "", "", eris.New("db: upsert: table and columns are required")
	}
	if len(cfg.ConflictKeys) == 0 {
		return "", "", eris.New("db: upsert: no conflict keys")
	}

	keys := make(map[string]bool, len(cfg.ConflictKeys))
	for _, k := range cfg.ConflictKeys {
		keys[k] = true
	}
	var sets []string
	for _, c := range cfg.Columns {
		if keys[c] {
			continue
		}
		id := pgx.Identifier{c}.Sanitize()
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", id, id))
	}
	action := "DO NOTHING"
	if len(sets) > 0 {
		action = "DO UPDATE SET " + strings.Join(sets, ", ")
	}

	target := pgx.Identifier{cfg.Table}.Sanitize()
	stage := pgx.Identifier{stagingTable(cfg.Table)}.Sanitize()
	cols := joinIdents(cfg.Columns)

	createSQL = fmt.Sprintf("CREATE TEMP TABLE %s (LIKE %s INCLUDING DEFAULTS) ON COMMIT DROP", stage, target)
	insertSQL = fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s ON CONFLICT (%s) %s",
		target, cols, cols, stage, joinIdents(cfg.ConflictKeys), action)
	return createSQL, insertSQL, nil
}

func joinIdents(names []string) string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = pgx.Identifier{n}.Sanitize()
	}
	return strings.Join(out, ", ")
}
