// Package assign labels every firm in a CSV or XLSX file with the industry
// its SIC code falls in.
package assign

import (
	"context"
	"encoding/csv"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/ffindustry/internal/fetcher"
	"github.com/sells-group/ffindustry/internal/industry"
)

// Options configures a classification pass.
type Options struct {
	Input          string // .csv or .xlsx
	Sheet          string // xlsx worksheet; first sheet when empty
	SICColumn      string
	IndustryColumn string
	BatchSize      int // sink batch size, default 500
	Classifier     industry.Classifier
	Sink           Sink // optional
}

// Assignment is the classification of one data row.
type Assignment struct {
	Row      int    // 1-based, header excluded
	SIC      string // raw cell value
	Industry string
	Kind     industry.ResultKind
	Valid    bool // false when SIC was not an integer
}

// Sink receives assignments in batches, in row order.
type Sink interface {
	WriteAssignments(ctx context.Context, batch []Assignment) error
}

// Stats summarises a pass.
type Stats struct {
	Rows       int
	Matched    int
	Fallback   int
	Unmatched  int
	InvalidSIC int
	BadDates   int
}

// Run reads opts.Input, writes it to w as CSV with an industry column
// appended, and returns counts by outcome. A row whose SIC cell is not an
// integer gets an empty industry and is counted, never rejected.
func Run(ctx context.Context, opts Options, w io.Writer) (Stats, error) {
	var stats Stats
	if opts.BatchSize <= 0 {
		opts.BatchSize = 500
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rowCh, errCh, closeFn, err := openRows(ctx, opts)
	if err != nil {
		return stats, err
	}
	defer closeFn()

	header, ok := <-rowCh
	if !ok {
		if err := firstErr(errCh); err != nil {
			return stats, eris.Wrap(err, "assign: read header")
		}
		return stats, eris.Errorf("assign: %s has no header row", opts.Input)
	}

	sicIdx := findColumn(header, opts.SICColumn)
	if sicIdx < 0 {
		return stats, eris.Errorf("assign: column %q not found in %s", opts.SICColumn, opts.Input)
	}
	if findColumn(header, opts.IndustryColumn) >= 0 {
		return stats, eris.Errorf("assign: column %q already exists in %s", opts.IndustryColumn, opts.Input)
	}
	var dateIdx []int
	for i, name := range header {
		if IsDateColumn(name) {
			dateIdx = append(dateIdx, i)
		}
	}

	cw := csv.NewWriter(w)
	outHeader := append(append([]string{}, header...), opts.IndustryColumn)
	if err := cw.Write(outHeader); err != nil {
		return stats, eris.Wrap(err, "assign: write header")
	}

	pending := make([]Assignment, 0, opts.BatchSize)
	flush := func() error {
		if opts.Sink == nil || len(pending) == 0 {
			pending = pending[:0]
			return nil
		}
		if err := opts.Sink.WriteAssignments(ctx, pending); err != nil {
			return eris.Wrapf(err, "assign: sink batch ending at row %d", pending[len(pending)-1].Row)
		}
		zap.L().Debug("assign: flushed batch", zap.Int("rows", len(pending)))
		pending = make([]Assignment, 0, opts.BatchSize)
		return nil
	}

	for row := range rowCh {
		stats.Rows++
		for len(row) < len(header) {
			row = append(row, "")
		}

		for _, i := range dateIdx {
			if strings.TrimSpace(row[i]) == "" {
				continue
			}
			if v, ok := NormalizeDate(row[i]); ok {
				row[i] = v
			} else {
				stats.BadDates++
			}
		}

		a := classifyRow(opts.Classifier, stats.Rows, row[sicIdx])
		switch {
		case !a.Valid:
			stats.InvalidSIC++
		case a.Kind == industry.Matched:
			stats.Matched++
		case a.Kind == industry.Fallback:
			stats.Fallback++
		default:
			stats.Unmatched++
		}

		if err := cw.Write(append(row, a.Industry)); err != nil {
			return stats, eris.Wrapf(err, "assign: write row %d", stats.Rows)
		}

		pending = append(pending, a)
		if len(pending) >= opts.BatchSize {
			if err := flush(); err != nil {
				return stats, err
			}
		}
	}
	if err := firstErr(errCh); err != nil {
		return stats, eris.Wrap(err, "assign: read rows")
	}
	if err := flush(); err != nil {
		return stats, err
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return stats, eris.Wrap(err, "assign: flush output")
	}
	return stats, nil
}

func classifyRow(c industry.Classifier, rowNum int, raw string) Assignment {
	a := Assignment{Row: rowNum, SIC: raw}
	sic, err := ParseSIC(raw)
	if err != nil {
		return a
	}
	res := c.Classify(sic)
	a.Industry, a.Kind, a.Valid = res.Industry, res.Kind, true
	return a
}

// ParseSIC reads an integer SIC code. Integral floats such as "2834.0",
// which spreadsheets often produce, are accepted.
func ParseSIC(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, eris.New("assign: empty SIC")
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, eris.Errorf("assign: SIC %q is not an integer", raw)
	}
	return int(f), nil
}

func findColumn(header []string, name string) int {
	name = strings.TrimSpace(name)
	for i, col := range header {
		if strings.EqualFold(strings.TrimSpace(col), name) {
			return i
		}
	}
	return -1
}

func openRows(ctx context.Context, opts Options) (<-chan []string, <-chan error, func(), error) {
	switch strings.ToLower(filepath.Ext(opts.Input)) {
	case ".xlsx":
		if _, err := os.Stat(opts.Input); err != nil {
			return nil, nil, nil, eris.Wrapf(err, "assign: open %s", opts.Input)
		}
		rowCh, errCh := fetcher.StreamXLSX(ctx, opts.Input, fetcher.XLSXOptions{SheetName: opts.Sheet})
		return rowCh, errCh, func() {}, nil
	default:
		f, err := os.Open(opts.Input)
		if err != nil {
			return nil, nil, nil, eris.Wrapf(err, "assign: open %s", opts.Input)
		}
		rowCh, errCh := fetcher.StreamCSV(ctx, f, fetcher.CSVOptions{LazyQuotes: true})
		return rowCh, errCh, func() { f.Close() }, nil //nolint:errcheck
	}
}

// firstErr drains errCh and returns its first non-nil error.
func firstErr(errCh <-chan error) error {
	var first error
	for err := range errCh {
		if err != nil && first == nil {
			first = err
		}
	}
	return first
}
