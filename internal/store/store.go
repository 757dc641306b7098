// Package store persists industry tables and firm assignments.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/ffindustry/internal/assign"
	"github.com/sells-group/ffindustry/internal/industry"
)

// ErrNotFound is returned when a table id is unknown.
var ErrNotFound = eris.New("store: not found")

// TableInfo describes a saved table.
type TableInfo struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Industries int       `json:"industries"`
	Ranges     int       `json:"ranges"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store defines the persistence interface for tables and assignments.
type Store interface {
	// Tables
	SaveTable(ctx context.Context, name string, t *industry.Table) (string, error)
	LoadTable(ctx context.Context, id string) (*industry.Table, error)
	ListTables(ctx context.Context) ([]TableInfo, error)

	// Assignments. Rows are keyed by (table id, row number); saving a row
	// again replaces it.
	SaveAssignments(ctx context.Context, tableID string, batch []assign.Assignment) error
	CountAssignments(ctx context.Context, tableID string) (map[string]int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open connects to the named backend, "sqlite" or "postgres", and migrates it.
func Open(ctx context.Context, driver, dsn string, maxConns int32) (Store, error) {
	var (
		s   Store
		err error
	)
	switch driver {
	case "", "sqlite":
		s, err = NewSQLite(dsn)
	case "postgres":
		s, err = NewPostgres(ctx, dsn, maxConns)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close() //nolint:errcheck
		return nil, err
	}
	return s, nil
}

// AssignmentSink adapts a Store to assign.Sink for one table.
type AssignmentSink struct {
	Store   Store
	TableID string
}

// WriteAssignments implements assign.Sink.
func (s AssignmentSink) WriteAssignments(ctx context.Context, batch []assign.Assignment) error {
	return s.Store.SaveAssignments(ctx, s.TableID, batch)
}

// rangeRow is one industry_ranges row. Lower and Upper are nil on the
// placeholder row of an industry declared without ranges.
type rangeRow struct {
	IndustryOrd int
	RangeOrd    int
	Industry    string
	Lower       *int
	Upper       *int
}

func tableRows(t *industry.Table) []rangeRow {
	var rows []rangeRow
	for i, ind := range t.Industries() {
		if len(ind.Ranges) == 0 {
			rows = append(rows, rangeRow{IndustryOrd: i, Industry: ind.Name})
			continue
		}
		for j, r := range ind.Ranges {
			lo, hi := r.Lower, r.Upper
			rows = append(rows, rangeRow{IndustryOrd: i, RangeOrd: j, Industry: ind.Name, Lower: &lo, Upper: &hi})
		}
	}
	return rows
}

// buildTable replays rows, already ordered by industry then range ordinal.
func buildTable(rows []rangeRow) *industry.Table {
	t := industry.NewTable()
	for _, r := range rows {
		if r.Lower == nil || r.Upper == nil {
			t.Declare(r.Industry)
			continue
		}
		t.AddRange(r.Industry, industry.Range{Lower: *r.Lower, Upper: *r.Upper})
	}
	return t
}
