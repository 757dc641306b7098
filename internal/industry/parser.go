package industry

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/htmlindex"
)

// DefaultEncoding is used when no encoding name is given.
const DefaultEncoding = "utf-8"

// maxLineSize bounds a single line of a definition file.
const maxLineSize = 1 << 20

// LineKind is the role a line plays in a definition file.
type LineKind int

const (
	// LineIgnored contributes nothing: blank lines and lines whose first
	// token is exactly three characters long.
	LineIgnored LineKind = iota
	// LineHeader declares an industry.
	LineHeader
	// LineRange declares a SIC range for the current industry.
	LineRange
)

func (k LineKind) String() string {
	switch k {
	case LineHeader:
		return "header"
	case LineRange:
		return "range"
	default:
		return "ignored"
	}
}

// Line is a classified definition-file line.
type Line struct {
	Kind     LineKind
	Industry string // set for LineHeader
	Range    Range  // set for LineRange
}

// ClassifyLine decides the role of one raw line by the character length of
// its first space-delimited token: shorter than 3 declares an industry named
// by the second token, longer than 3 declares a range, exactly 3 is ignored.
func ClassifyLine(raw string) (Line, error) {
	line := strings.TrimSpace(raw)
	if line == "" {
		return Line{Kind: LineIgnored}, nil
	}

	fields := strings.Split(line, " ")
	switch n := utf8.RuneCountInString(fields[0]); {
	case n < 3:
		if len(fields) < 2 {
			return Line{}, eris.Wrapf(ErrFormat, "industry header %q has no name", line)
		}
		return Line{Kind: LineHeader, Industry: fields[1]}, nil
	case n > 3:
		r, err := parseRange(line)
		if err != nil {
			return Line{}, err
		}
		return Line{Kind: LineRange, Range: r}, nil
	default:
		return Line{Kind: LineIgnored}, nil
	}
}

// parseRange reads "<lower>-<upper> ..." or "<lower> <upper> ...".
func parseRange(line string) (Range, error) {
	parts := strings.Split(strings.ReplaceAll(line, "-", " "), " ")
	if len(parts) < 2 {
		return Range{}, eris.Wrapf(ErrFormat, "range %q needs two bounds", line)
	}
	lo, hi := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	lower, err := strconv.Atoi(lo)
	if err != nil {
		return Range{}, eris.Wrapf(ErrFormat, "range %q: lower bound %q is not an integer", line, lo)
	}
	upper, err := strconv.Atoi(hi)
	if err != nil {
		return Range{}, eris.Wrapf(ErrFormat, "range %q: upper bound %q is not an integer", line, hi)
	}
	return Range{Lower: lower, Upper: upper}, nil
}

// Parse builds a table from UTF-8 text. Lines end at "\n", "\r\n" or a
// lone "\r". A line that is not valid UTF-8 fails with ErrIO. On any error
// no table is returned.
func Parse(r io.Reader) (*Table, error) {
	return parse(r, DefaultEncoding, false)
}

// parse reads lines already decoded to UTF-8. With rejectReplacement set, a
// U+FFFD left behind by a decoder is treated as undecodable input.
func parse(r io.Reader, encoding string, rejectReplacement bool) (*Table, error) {
	table := NewTable()
	var (
		current    string
		hasCurrent bool
		lineNo     int
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	sc.Split(scanUniversalLines)
	for sc.Scan() {
		lineNo++
		text := sc.Text()
		if !utf8.ValidString(text) || (rejectReplacement && strings.ContainsRune(text, utf8.RuneError)) {
			return nil, eris.Wrapf(ErrIO, "line %d: invalid %s", lineNo, encoding)
		}
		if lineNo == 1 {
			text = strings.TrimPrefix(text, "\ufeff")
		}

		ln, err := ClassifyLine(text)
		if err != nil {
			return nil, eris.Wrapf(err, "line %d", lineNo)
		}

		switch ln.Kind {
		case LineHeader:
			current, hasCurrent = ln.Industry, true
			table.Declare(current)
		case LineRange:
			if !hasCurrent {
				return nil, eris.Wrapf(ErrFormat, "line %d: range %d-%d before any industry header", lineNo, ln.Range.Lower, ln.Range.Upper)
			}
			table.AddRange(current, ln.Range)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, eris.Wrapf(ErrIO, "read after line %d: %v", lineNo, err)
	}

	return table, nil
}

// scanUniversalLines is a bufio.SplitFunc that ends a line at "\n", "\r\n"
// or a lone "\r". The terminator is dropped.
func scanUniversalLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		switch {
		case i+1 < len(data) && data[i+1] == '\n':
			return i + 2, data[:i], nil
		case i+1 < len(data) || atEOF:
			return i + 1, data[:i], nil
		default:
			// "\r" at the end of the buffer; the next read decides.
			return 0, nil, nil
		}
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// ParseEncoded decodes r with the named encoding before parsing. Names are
// resolved as in the WHATWG encoding standard ("utf-8", "latin1",
// "windows-1252", ...); an empty name means UTF-8. Input that is not valid
// in the encoding fails with ErrIO.
func ParseEncoded(r io.Reader, encoding string) (*Table, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := htmlindex.Get(encoding)
	if err != nil {
		return nil, eris.Wrapf(ErrIO, "unsupported encoding %q", encoding)
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		name = encoding
	}
	if name == DefaultEncoding {
		return parse(r, name, false)
	}
	return parse(enc.NewDecoder().Reader(r), name, true)
}

// ParseFile opens path and parses it with the named encoding.
func ParseFile(path, encoding string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(ErrIO, "open %s: %v", path, err)
	}
	defer f.Close() //nolint:errcheck

	table, err := ParseEncoded(f, encoding)
	if err != nil {
		return nil, eris.Wrapf(err, "parse %s", path)
	}

	zap.L().Debug("parsed industry definitions",
		zap.String("path", path),
		zap.Int("industries", table.Len()),
		zap.Int("ranges", table.RangeCount()),
	)
	return table, nil
}
