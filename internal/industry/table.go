// Package industry parses Fama-French industry definition files and assigns
// SIC codes to the industries they declare.
package industry

// Range is an inclusive interval of 4-digit SIC codes.
type Range struct {
	Lower int `json:"lower" yaml:"lower"`
	Upper int `json:"upper" yaml:"upper"`
}

// Contains reports whether sic lies inside the range bounds.
func (r Range) Contains(sic int) bool {
	return r.Lower <= sic && sic <= r.Upper
}

// Industry is a named industry with its SIC ranges in declaration order.
type Industry struct {
	Name   string  `json:"name" yaml:"name"`
	Ranges []Range `json:"ranges" yaml:"ranges"`
}

// Table maps industry names to SIC ranges, preserving the order in which
// industries were first declared. A Table is built once and then only read;
// concurrent readers need no locking.
type Table struct {
	names  []string
	ranges map[string][]Range
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{ranges: make(map[string][]Range)}
}

// Declare starts a new, empty range list for name. Redeclaring an existing
// name discards its ranges but keeps its original position.
func (t *Table) Declare(name string) {
	if _, ok := t.ranges[name]; !ok {
		t.names = append(t.names, name)
	}
	t.ranges[name] = []Range{}
}

// AddRange appends r to the range list of name, declaring it if needed.
func (t *Table) AddRange(name string, r Range) {
	if _, ok := t.ranges[name]; !ok {
		t.Declare(name)
	}
	t.ranges[name] = append(t.ranges[name], r)
}

// Len returns the number of industries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.names)
}

// Names returns industry names in table order.
func (t *Table) Names() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Ranges returns a copy of the ranges for name and whether name exists.
func (t *Table) Ranges(name string) ([]Range, bool) {
	if t == nil {
		return nil, false
	}
	rs, ok := t.ranges[name]
	if !ok {
		return nil, false
	}
	out := make([]Range, len(rs))
	copy(out, rs)
	return out, true
}

// Industries returns every industry with its ranges, in table order.
func (t *Table) Industries() []Industry {
	if t == nil {
		return nil
	}
	out := make([]Industry, 0, len(t.names))
	for _, name := range t.names {
		rs, _ := t.Ranges(name)
		out = append(out, Industry{Name: name, Ranges: rs})
	}
	return out
}

// RangeCount returns the total number of ranges across all industries.
func (t *Table) RangeCount() int {
	if t == nil {
		return 0
	}
	n := 0
	for _, rs := range t.ranges {
		n += len(rs)
	}
	return n
}

// FromIndustries builds a table from an ordered industry list. Later
// entries with a repeated name replace earlier ones, as in a parsed file.
func FromIndustries(inds []Industry) *Table {
	t := NewTable()
	for _, ind := range inds {
		t.Declare(ind.Name)
		for _, r := range ind.Ranges {
			t.AddRange(ind.Name, r)
		}
	}
	return t
}
