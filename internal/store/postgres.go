package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/ffindustry/internal/assign"
	"github.com/sells-group/ffindustry/internal/db"
	"github.com/sells-group/ffindustry/internal/industry"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

var rangeColumns = []string{"table_id", "industry_ord", "range_ord", "industry", "lower", "upper"}

var assignmentColumns = []string{"table_id", "row_num", "sic", "industry", "kind", "valid"}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, maxConns int32) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	if maxConns > 0 {
		pgxCfg.MaxConns = maxConns
	}
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS industry_tables (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	industries INTEGER NOT NULL,
	ranges     INTEGER NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS industry_ranges (
	table_id     TEXT NOT NULL REFERENCES industry_tables(id) ON DELETE CASCADE,
	industry_ord INTEGER NOT NULL,
	range_ord    INTEGER NOT NULL,
	industry     TEXT NOT NULL,
	lower        INTEGER,
	upper        INTEGER,
	PRIMARY KEY (table_id, industry_ord, range_ord)
);

CREATE TABLE IF NOT EXISTS assignments (
	table_id TEXT NOT NULL REFERENCES industry_tables(id) ON DELETE CASCADE,
	row_num  INTEGER NOT NULL,
	sic      TEXT NOT NULL,
	industry TEXT NOT NULL,
	kind     TEXT NOT NULL,
	valid    BOOLEAN NOT NULL,
	PRIMARY KEY (table_id, row_num)
);

CREATE INDEX IF NOT EXISTS idx_assignments_industry ON assignments(table_id, industry);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveTable(ctx context.Context, name string, t *industry.Table) (string, error) {
	id := uuid.New().String()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", eris.Wrap(err, "postgres: begin save table")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx,
		`INSERT INTO industry_tables (id, name, industries, ranges, created_at) VALUES ($1, $2, $3, $4, $5)`,
		id, name, t.Len(), t.RangeCount(), time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrap(err, "postgres: insert table")
	}

	src := tableRows(t)
	rows := make([][]any, len(src))
	for i, r := range src {
		rows[i] = []any{id, r.IndustryOrd, r.RangeOrd, r.Industry, r.Lower, r.Upper}
	}
	if _, err := db.CopyRows(ctx, tx, "industry_ranges", rangeColumns, rows); err != nil {
		return "", eris.Wrap(err, "postgres: save ranges")
	}

	if err := tx.Commit(ctx); err != nil {
		return "", eris.Wrap(err, "postgres: commit save table")
	}
	zap.L().Debug("postgres: saved table", zap.String("id", id), zap.String("name", name), zap.Int("industries", t.Len()))
	return id, nil
}

func (s *PostgresStore) LoadTable(ctx context.Context, id string) (*industry.Table, error) {
	var exists int
	err := s.pool.QueryRow(ctx, `SELECT 1 FROM industry_tables WHERE id = $1`, id).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: table %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: load table %s", id)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT industry_ord, range_ord, industry, lower, upper FROM industry_ranges
		 WHERE table_id = $1 ORDER BY industry_ord, range_ord`, id)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: load ranges %s", id)
	}
	defer rows.Close()

	var out []rangeRow
	for rows.Next() {
		var r rangeRow
		if err := rows.Scan(&r.IndustryOrd, &r.RangeOrd, &r.Industry, &r.Lower, &r.Upper); err != nil {
			return nil, eris.Wrap(err, "postgres: scan range")
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: load ranges iterate")
	}
	return buildTable(out), nil
}

func (s *PostgresStore) ListTables(ctx context.Context) ([]TableInfo, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, industries, ranges, created_at FROM industry_tables ORDER BY created_at DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list tables")
	}
	defer rows.Close()

	var infos []TableInfo
	for rows.Next() {
		var ti TableInfo
		if err := rows.Scan(&ti.ID, &ti.Name, &ti.Industries, &ti.Ranges, &ti.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan table")
		}
		infos = append(infos, ti)
	}
	return infos, eris.Wrap(rows.Err(), "postgres: list tables iterate")
}

func (s *PostgresStore) SaveAssignments(ctx context.Context, tableID string, batch []assign.Assignment) error {
	rows := make([][]any, len(batch))
	for i, a := range batch {
		rows[i] = []any{tableID, a.Row, a.SIC, a.Industry, a.Kind.String(), a.Valid}
	}
	_, err := db.Upsert(ctx, s.pool, db.UpsertConfig{
		Table:        "assignments",
		Columns:      assignmentColumns,
		ConflictKeys: []string{"table_id", "row_num"},
	}, rows)
	return eris.Wrapf(err, "postgres: save assignments for %s", tableID)
}

func (s *PostgresStore) CountAssignments(ctx context.Context, tableID string) (map[string]int, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT industry, COUNT(*) FROM assignments WHERE table_id = $1 GROUP BY industry`, tableID)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: count assignments %s", tableID)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var name string
		var n int64
		if err := rows.Scan(&name, &n); err != nil {
			return nil, eris.Wrap(err, "postgres: scan count")
		}
		counts[name] = int(n)
	}
	return counts, eris.Wrap(rows.Err(), "postgres: count iterate")
}
