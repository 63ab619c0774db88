// Package writer serializes objects back to the tab-indented content text
// format, as the exact inverse of the reader: one "Name = Value" property
// per line, nesting expressed by leading tabs, no block delimiters.
package writer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Writer emits content text with automatic indentation tracking. Like the
// Reader, a Writer belongs to a single goroutine.
type Writer struct {
	out    *bufio.Writer
	file   *os.File
	path   string
	indent int
}

// New wraps an arbitrary output stream in a Writer. Flush must be called
// before the underlying stream is used elsewhere.
func New(w io.Writer) *Writer {
	return &Writer{out: bufio.NewWriter(w)}
}

// Create opens (or truncates) a file at path for writing content text,
// creating parent directories as needed.
func Create(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("writer: cannot create directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("writer: cannot create %s: %w", path, err)
	}
	return &Writer{out: bufio.NewWriter(f), file: f, path: path}, nil
}

// Path returns the file path this Writer writes to, if any.
func (w *Writer) Path() string { return w.path }

// NewProperty starts a property line at the current indentation:
// the name, a separator, and a pending value.
func (w *Writer) NewProperty(name string) {
	w.tabs()
	fmt.Fprintf(w.out, "%s = ", name)
}

// NewPropertyWithValue writes a complete "Name = Value" line.
func (w *Writer) NewPropertyWithValue(name string, value any) {
	w.NewProperty(name)
	fmt.Fprintf(w.out, "%v", value)
	w.NewLine()
}

// WriteValue appends a value to a line started with NewProperty.
func (w *Writer) WriteValue(value any) {
	fmt.Fprintf(w.out, "%v", value)
}

// ObjectStart finishes a property line with the object's class name and
// indents everything that follows one level deeper.
func (w *Writer) ObjectStart(className string) {
	fmt.Fprint(w.out, className)
	w.indent++
	w.NewLine()
}

// ObjectEnd closes the current object block by dedenting one level.
func (w *Writer) ObjectEnd() {
	w.indent--
}

// NewLine terminates the current line.
func (w *Writer) NewLine() {
	w.out.WriteByte('\n')
}

// NewDivider writes a visual comment divider between sections.
func (w *Writer) NewDivider() {
	w.tabs()
	fmt.Fprint(w.out, "//", strings.Repeat("/", 60))
	w.NewLine()
}

// NewComment writes a line comment at the current indentation.
func (w *Writer) NewComment(text string) {
	w.tabs()
	fmt.Fprintf(w.out, "// %s", text)
	w.NewLine()
}

// Flush writes any buffered output through to the underlying stream.
func (w *Writer) Flush() error {
	if err := w.out.Flush(); err != nil {
		return fmt.Errorf("writer: flush failed: %w", err)
	}
	return nil
}

// Close flushes and, when writing to a file, closes it.
func (w *Writer) Close() error {
	if err := w.Flush(); err != nil {
		if w.file != nil {
			w.file.Close()
		}
		return err
	}
	if w.file != nil {
		if err := w.file.Close(); err != nil {
			return fmt.Errorf("writer: cannot close %s: %w", w.path, err)
		}
	}
	return nil
}

// tabs writes the current indentation prefix.
func (w *Writer) tabs() {
	for i := 0; i < w.indent; i++ {
		w.out.WriteByte('\t')
	}
}
