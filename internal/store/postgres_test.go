package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/ffindustry/internal/assign"
	"github.com/sells-group/ffindustry/internal/industry"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return &PostgresStore{pool: mock}, mock
}

func intPtr(n int) *int { return &n }

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS industry_tables`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveTable(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO industry_tables`).
		WithArgs(pgxmock.AnyArg(), "ff3", 3, 3, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCopyFrom(pgx.Identifier{"industry_ranges"}, rangeColumns).WillReturnResult(4)
	mock.ExpectCommit()

	id, err := s.SaveTable(context.Background(), "ff3", sampleTable())
	require.NoError(t, err)
	assert.Len(t, id, 36)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveTable_CopyError(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO industry_tables`).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCopyFrom(pgx.Identifier{"industry_ranges"}, rangeColumns).WillReturnError(errors.New("copy failed"))
	mock.ExpectRollback()

	_, err := s.SaveTable(context.Background(), "ff3", sampleTable())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save ranges")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LoadTable(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT 1 FROM industry_tables WHERE id = \$1`).
		WithArgs("t1").
		WillReturnRows(pgxmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery(`SELECT industry_ord, range_ord, industry, lower, upper FROM industry_ranges`).
		WithArgs("t1").
		WillReturnRows(pgxmock.NewRows([]string{"industry_ord", "range_ord", "industry", "lower", "upper"}).
			AddRow(0, 0, "Agric", intPtr(100), intPtr(199)).
			AddRow(0, 1, "Agric", intPtr(700), intPtr(799)).
			AddRow(1, 0, "Mines", intPtr(1000), intPtr(1299)))

	tbl, err := s.LoadTable(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Agric", "Mines"}, tbl.Names())
	r, ok := tbl.Ranges("Agric")
	require.True(t, ok)
	assert.Equal(t, []industry.Range{{Lower: 100, Upper: 199}, {Lower: 700, Upper: 799}}, r)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LoadTable_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT 1 FROM industry_tables WHERE id = \$1`).
		WithArgs("nope").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.LoadTable(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListTables(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT id, name, industries, ranges, created_at FROM industry_tables`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "industries", "ranges", "created_at"}).
			AddRow("t1", "ff49", 49, 512, now))

	infos, err := s.ListTables(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, TableInfo{ID: "t1", Name: "ff49", Industries: 49, Ranges: 512, CreatedAt: now}, infos[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveAssignments(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE "_stage_assignments"`).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_stage_assignments"}, assignmentColumns).WillReturnResult(2)
	mock.ExpectExec(`INSERT INTO "assignments"`).WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()

	err := s.SaveAssignments(context.Background(), "t1", []assign.Assignment{
		{Row: 1, SIC: "150", Industry: "Agric", Kind: industry.Matched, Valid: true},
		{Row: 2, SIC: "bad"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveAssignments_Empty(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	require.NoError(t, s.SaveAssignments(context.Background(), "t1", nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CountAssignments(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT industry, COUNT\(\*\) FROM assignments`).
		WithArgs("t1").
		WillReturnRows(pgxmock.NewRows([]string{"industry", "count"}).
			AddRow("Agric", int64(4)).
			AddRow("", int64(1)))

	counts, err := s.CountAssignments(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Agric": 4, "": 1}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Close(t *testing.T) {
	called := false
	s := &PostgresStore{closeFn: func() { called = true }}
	require.NoError(t, s.Close())
	assert.True(t, called)
}
