package reader

import "fmt"

// SyntaxError reports malformed content grammar with the file and line
// where it was detected. Loads abort when one of these is returned.
type SyntaxError struct {
	Path string
	Line int
	Msg  string
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("reader: %s in %s at line %d", e.Msg, e.Path, e.Line)
}

// syntaxError builds a SyntaxError at the reader's current position.
func (r *Reader) syntaxError(msg string) error {
	return &SyntaxError{Path: r.filePath, Line: r.currentLine, Msg: msg}
}
