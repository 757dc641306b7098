package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/sells-group/ffindustry/internal/assign"
	"github.com/sells-group/ffindustry/internal/industry"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS industry_tables (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	industries INTEGER NOT NULL,
	ranges     INTEGER NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
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
	valid    INTEGER NOT NULL,
	PRIMARY KEY (table_id, row_num)
);

CREATE INDEX IF NOT EXISTS idx_assignments_industry ON assignments(table_id, industry);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveTable(ctx context.Context, name string, t *industry.Table) (string, error) {
	id := uuid.New().String()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: begin save table")
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`INSERT INTO industry_tables (id, name, industries, ranges, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, name, t.Len(), t.RangeCount(), time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: insert table")
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO industry_ranges (table_id, industry_ord, range_ord, industry, lower, upper) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: prepare range insert")
	}
	defer stmt.Close() //nolint:errcheck

	for _, r := range tableRows(t) {
		if _, err := stmt.ExecContext(ctx, id, r.IndustryOrd, r.RangeOrd, r.Industry, r.Lower, r.Upper); err != nil {
			return "", eris.Wrapf(err, "sqlite: insert range for %s", r.Industry)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", eris.Wrap(err, "sqlite: commit save table")
	}
	zap.L().Debug("sqlite: saved table", zap.String("id", id), zap.String("name", name), zap.Int("industries", t.Len()))
	return id, nil
}

func (s *SQLiteStore) LoadTable(ctx context.Context, id string) (*industry.Table, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM industry_tables WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: table %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: load table %s", id)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT industry_ord, range_ord, industry, lower, upper FROM industry_ranges
		 WHERE table_id = ? ORDER BY industry_ord, range_ord`, id)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: load ranges %s", id)
	}
	defer rows.Close()

	var out []rangeRow
	for rows.Next() {
		var r rangeRow
		var lo, hi sql.NullInt64
		if err := rows.Scan(&r.IndustryOrd, &r.RangeOrd, &r.Industry, &lo, &hi); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan range")
		}
		if lo.Valid && hi.Valid {
			l, h := int(lo.Int64), int(hi.Int64)
			r.Lower, r.Upper = &l, &h
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: load ranges iterate")
	}
	return buildTable(out), nil
}

func (s *SQLiteStore) ListTables(ctx context.Context) ([]TableInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, industries, ranges, created_at FROM industry_tables ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list tables")
	}
	defer rows.Close()

	var infos []TableInfo
	for rows.Next() {
		var ti TableInfo
		if err := rows.Scan(&ti.ID, &ti.Name, &ti.Industries, &ti.Ranges, &ti.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan table")
		}
		infos = append(infos, ti)
	}
	return infos, eris.Wrap(rows.Err(), "sqlite: list tables iterate")
}

func (s *SQLiteStore) SaveAssignments(ctx context.Context, tableID string, batch []assign.Assignment) error {
	if len(batch) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin save assignments")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO assignments (table_id, row_num, sic, industry, kind, valid) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (table_id, row_num) DO UPDATE SET
		   sic = excluded.sic, industry = excluded.industry, kind = excluded.kind, valid = excluded.valid`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare assignment insert")
	}
	defer stmt.Close() //nolint:errcheck

	for _, a := range batch {
		if _, err := stmt.ExecContext(ctx, tableID, a.Row, a.SIC, a.Industry, a.Kind.String(), a.Valid); err != nil {
			return eris.Wrapf(err, "sqlite: insert assignment row %d", a.Row)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit assignments")
}

func (s *SQLiteStore) CountAssignments(ctx context.Context, tableID string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT industry, COUNT(*) FROM assignments WHERE table_id = ? GROUP BY industry`, tableID)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: count assignments %s", tableID)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan count")
		}
		counts[name] = n
	}
	return counts, eris.Wrap(rows.Err(), "sqlite: count iterate")
}
