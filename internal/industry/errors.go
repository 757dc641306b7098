package industry

import "github.com/rotisserie/eris"

// Sentinel errors returned by the parser. Test with errors.Is.
var (
	// ErrIO means the definition file could not be opened, read or decoded.
	ErrIO = eris.New("industry: io error")

	// ErrFormat means a line could not be interpreted.
	ErrFormat = eris.New("industry: format error")
)
