package industry

import (
	"strings"

	"github.com/rotisserie/eris"
)

// DefaultFallbackLabel is the label given to unmatched codes when fallback
// is enabled.
const DefaultFallbackLabel = "Other"

// FallbackMode controls when the fallback label is returned.
type FallbackMode int

const (
	// FallbackEarly returns the fallback label as soon as the first range
	// examined fails to contain the code. Later ranges and industries are
	// never consulted. Empty industries at the head of the table are
	// skipped since they have no range to examine.
	FallbackEarly FallbackMode = iota
	// FallbackAfterScan checks every range first and returns the fallback
	// label only when none contains the code.
	FallbackAfterScan
)

func (m FallbackMode) String() string {
	if m == FallbackAfterScan {
		return "after-scan"
	}
	return "early"
}

// ParseFallbackMode accepts "early" or "after-scan". Empty means early.
func ParseFallbackMode(s string) (FallbackMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "early":
		return FallbackEarly, nil
	case "after-scan", "after_scan", "full":
		return FallbackAfterScan, nil
	default:
		return FallbackEarly, eris.Errorf("industry: unknown fallback mode %q", s)
	}
}

// ResultKind tells how a classification was reached.
type ResultKind int

const (
	// Unmatched means no range contained the code and no fallback applied.
	Unmatched ResultKind = iota
	// Matched means an industry range contained the code.
	Matched
	// Fallback means the fallback label was returned.
	Fallback
)

func (k ResultKind) String() string {
	switch k {
	case Matched:
		return "matched"
	case Fallback:
		return "fallback"
	default:
		return "unmatched"
	}
}

// Result is the outcome of classifying one SIC code. Industry is empty
// when Kind is Unmatched.
type Result struct {
	Industry string
	Kind     ResultKind
}

// Found reports whether the result carries a label.
func (r Result) Found() bool {
	return r.Kind != Unmatched
}

// Classifier assigns SIC codes to industries of a table.
type Classifier struct {
	Table    *Table
	Fallback bool
	Mode     FallbackMode
	Label    string // defaults to DefaultFallbackLabel
}

// Classify scans industries in table order and their ranges in list order,
// returning the first industry whose range contains sic.
func (c Classifier) Classify(sic int) Result {
	if c.Table != nil {
		for _, name := range c.Table.names {
			for _, r := range c.Table.ranges[name] {
				if r.Contains(sic) {
					return Result{Industry: name, Kind: Matched}
				}
				if c.Fallback && c.Mode == FallbackEarly {
					return c.fallback()
				}
			}
		}
	}
	if c.Fallback && c.Mode == FallbackAfterScan {
		return c.fallback()
	}
	return Result{}
}

func (c Classifier) fallback() Result {
	label := c.Label
	if label == "" {
		label = DefaultFallbackLabel
	}
	return Result{Industry: label, Kind: Fallback}
}

// Classify assigns sic using FallbackEarly semantics.
func Classify(t *Table, sic int, fallback bool) Result {
	return Classifier{Table: t, Fallback: fallback}.Classify(sic)
}
