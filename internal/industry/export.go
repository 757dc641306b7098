package industry

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Format is a table export format.
type Format string

// Supported export formats.
const (
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat resolves a format name, case-insensitively. "yml" is accepted.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", eris.Errorf("industry: unknown export format %q", s)
	}
}

var csvHeader = []string{"industry", "lower", "upper"}

// Write exports t to w in the given format.
func Write(w io.Writer, t *Table, f Format) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, t)
	case FormatYAML:
		return WriteYAML(w, t)
	case FormatJSON:
		return WriteJSON(w, t)
	default:
		return eris.Errorf("industry: unknown export format %q", f)
	}
}

// WriteCSV writes one row per range in table order. An industry without
// ranges is written as a single row with empty bounds so it survives a
// round trip.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return eris.Wrap(err, "industry export: write header")
	}
	for _, ind := range t.Industries() {
		if len(ind.Ranges) == 0 {
			if err := cw.Write([]string{ind.Name, "", ""}); err != nil {
				return eris.Wrap(err, "industry export: write row")
			}
			continue
		}
		for _, r := range ind.Ranges {
			row := []string{ind.Name, strconv.Itoa(r.Lower), strconv.Itoa(r.Upper)}
			if err := cw.Write(row); err != nil {
				return eris.Wrap(err, "industry export: write row")
			}
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "industry export: flush")
}

// WriteYAML writes the ordered industry list as YAML.
func WriteYAML(w io.Writer, t *Table) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(t.Industries()); err != nil {
		return eris.Wrap(err, "industry export: encode yaml")
	}
	return eris.Wrap(enc.Close(), "industry export: close yaml")
}

// WriteJSON writes the ordered industry list as indented JSON.
func WriteJSON(w io.Writer, t *Table) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(t.Industries()), "industry export: encode json")
}

// ReadCSV rebuilds a table from the output of WriteCSV.
func ReadCSV(r io.Reader) (*Table, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "industry import: read csv")
	}
	if len(records) == 0 {
		return nil, eris.Wrap(ErrFormat, "industry import: empty csv")
	}

	t := NewTable()
	for i, rec := range records[1:] {
		if len(rec) < 3 {
			return nil, eris.Wrapf(ErrFormat, "industry import: row %d has %d columns", i+2, len(rec))
		}
		name := rec[0]
		if rec[1] == "" && rec[2] == "" {
			if _, ok := t.ranges[name]; !ok {
				t.Declare(name)
			}
			continue
		}
		lower, err := strconv.Atoi(rec[1])
		if err != nil {
			return nil, eris.Wrapf(ErrFormat, "industry import: row %d lower bound %q", i+2, rec[1])
		}
		upper, err := strconv.Atoi(rec[2])
		if err != nil {
			return nil, eris.Wrapf(ErrFormat, "industry import: row %d upper bound %q", i+2, rec[2])
		}
		t.AddRange(name, Range{Lower: lower, Upper: upper})
	}
	return t, nil
}
