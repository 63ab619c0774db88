// Package reader implements the streaming tokenizer for the tab-indented
// content text format. A Reader turns one or more chained files into a flat
// sequence of name/value properties: nesting comes from leading tab counts,
// comments are skipped transparently, and the reserved IncludeFile property
// splices other files in at the point it appears.
package reader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// IncludeDirective is the reserved property name that splices another file
// into the current property stream.
const IncludeDirective = "IncludeFile"

// defaultReportEvery is how many lines pass between progress reports.
const defaultReportEvery = 100

// ProgressFunc receives human-readable load progress reports.
// newFile is true when the report announces a file being opened or resumed.
type ProgressFunc func(report string, newFile bool)

// PackageResolver maps a content package name to its small numeric ID.
// Returns -1 for unknown packages.
type PackageResolver interface {
	PackageID(name string) int
}

// PresetSource resolves CopyOf references against presets that have already
// been registered. The returned value is the preset object itself; the
// consuming layer knows its concrete type.
type PresetSource interface {
	PresetByName(className, presetName string) (any, bool)
}

// Config controls how a Reader is opened and behaves.
type Config struct {
	// Root is the directory content paths are resolved against. Paths in
	// progress reports, source records and IncludeFile values stay relative
	// to it. Empty means the working directory.
	Root string

	// AllowMissing marks the top-level file as optional. The open error is
	// still returned, but callers treat it as a reported failure rather
	// than a fatal one.
	AllowMissing bool

	// Overwrite is carried to the registry: presets read through this
	// Reader replace existing ones with the same exact type and name.
	Overwrite bool

	// SkipIncludes discards IncludeFile directives instead of following them.
	SkipIncludes bool

	// Progress, if set, receives periodic load reports.
	Progress ProgressFunc

	// ReportEvery overrides how many lines pass between progress reports.
	ReportEvery int

	// Resolver maps the package name derived from the file path to an ID.
	Resolver PackageResolver

	// Presets resolves CopyOf references during parsing.
	Presets PresetSource
}

// frame is one suspended file on the include stack.
type frame struct {
	file   *os.File
	br     *bufio.Reader
	path   string
	line   int
	indent int
}

// Reader is a single-pass, stateful tokenizer over one logical stream of
// content text. It is owned by a single loading goroutine; none of its
// methods are safe for concurrent use.
type Reader struct {
	root string
	file *os.File
	br   *bufio.Reader

	filePath string
	fileName string // display name used in progress reports

	pkgName string
	pkgID   int

	currentLine int
	stack       []frame

	prevIndent    int
	indentDelta   int
	objectEndings int
	endOfStreams  bool

	overwrite    bool
	skipIncludes bool

	presets PresetSource

	progress    ProgressFunc
	reportEvery int
	reportTabs  string
}

// Open binds a Reader to the outermost content file. The package name is the
// first segment of the path, and its numeric ID is resolved through the
// configured resolver. A missing file is an error either way; when
// cfg.AllowMissing is set the error wraps the underlying not-found condition
// so callers can treat it as a reported failure instead of aborting.
func Open(path string, cfg Config) (*Reader, error) {
	if path == "" {
		return nil, errors.New("reader: empty file path")
	}

	pkgName := path
	if i := strings.IndexAny(path, `/\`); i >= 0 {
		pkgName = path[:i]
	}
	pkgID := -1
	if cfg.Resolver != nil {
		pkgID = cfg.Resolver.PackageID(pkgName)
	}

	f, err := os.Open(resolvePath(cfg.Root, path))
	if err != nil {
		if cfg.AllowMissing {
			return nil, fmt.Errorf("reader: optional file %s: %w", path, err)
		}
		return nil, fmt.Errorf("reader: cannot open content file %s: %w", path, err)
	}

	reportEvery := cfg.ReportEvery
	if reportEvery <= 0 {
		reportEvery = defaultReportEvery
	}

	r := &Reader{
		root:         cfg.Root,
		file:         f,
		br:           bufio.NewReader(f),
		filePath:     path,
		fileName:     baseName(path),
		pkgName:      pkgName,
		pkgID:        pkgID,
		currentLine:  1,
		overwrite:    cfg.Overwrite,
		skipIncludes: cfg.SkipIncludes,
		presets:      cfg.Presets,
		progress:     cfg.Progress,
		reportEvery:  reportEvery,
		reportTabs:   "\t",
	}

	if r.progress != nil {
		r.progress(fmt.Sprintf("\t%s on line %d", r.fileName, r.currentLine), true)
	}
	return r, nil
}

// Close releases the current stream and every still-open frame on the
// include stack. The Reader must not be used afterwards.
func (r *Reader) Close() error {
	var firstErr error
	if r.file != nil {
		firstErr = r.file.Close()
		r.file = nil
	}
	for _, fr := range r.stack {
		if err := fr.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	r.stack = nil
	r.br = nil
	return firstErr
}

// FilePath returns the path of the file currently being read.
func (r *Reader) FilePath() string { return r.filePath }

// CurrentLine returns the line number in the current file, starting at 1.
func (r *Reader) CurrentLine() int { return r.currentLine }

// PackageName returns the content package name derived from the top-level
// file path.
func (r *Reader) PackageName() string { return r.pkgName }

// PackageID returns the numeric ID of the content package, or -1 if the
// resolver did not recognize it.
func (r *Reader) PackageID() int { return r.pkgID }

// Overwrite reports whether presets read through this Reader should replace
// already-registered ones.
func (r *Reader) Overwrite() bool { return r.overwrite }

// Exhausted reports whether every stream, includes and all, has run out.
func (r *Reader) Exhausted() bool { return r.endOfStreams }

// Presets returns the CopyOf resolution source, which may be nil.
func (r *Reader) Presets() PresetSource { return r.presets }

// Report sends a diagnostic through the progress callback, if one is set.
// Used for non-fatal conditions like unrecognized properties.
func (r *Reader) Report(msg string) {
	if r.progress != nil {
		r.progress(r.reportTabs+msg, false)
	}
}

// NextProperty eats whitespace and reports whether another property is
// available at the current nesting level. It returns false once per level
// of dedent, which is the signal that the current object's block has ended.
func (r *Reader) NextProperty() (bool, error) {
	ok, err := r.discardEmptySpace()
	if err != nil {
		return false, err
	}
	if !ok || r.endOfStreams {
		return false, nil
	}
	// Fewer tabs than the previous line means one object ending per level
	// of dedent that has not been consumed yet.
	if r.objectEndings < -r.indentDelta {
		r.objectEndings++
		return false, nil
	}
	r.objectEndings = 0
	return true, nil
}

// ReadPropName scans the name part of a "Name = Value" line, consuming the
// separator. The reserved IncludeFile directive is handled here: the named
// file is spliced in and the first property name inside it is returned, so
// inclusion is invisible to callers. A name not followed by a value on the
// same line is a syntax error.
func (r *Reader) ReadPropName() (string, error) {
	ok, err := r.discardEmptySpace()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}

	var sb strings.Builder
	for {
		p, err := r.br.Peek(1)
		if err == io.EOF {
			if _, err := r.endIncludeFile(); err != nil {
				return "", err
			}
			break
		}
		if err != nil {
			return "", r.syntaxError("stream failed while reading a property name")
		}
		c := p[0]
		if c == '=' {
			r.br.Discard(1)
			break
		}
		if c == '\n' || c == '\r' || c == '\t' {
			return "", r.syntaxError("property name wasn't followed by a value")
		}
		r.br.Discard(1)
		sb.WriteByte(c)
	}
	name := strings.Trim(sb.String(), " ")

	if name == IncludeDirective {
		if r.skipIncludes {
			// Discard the include's path and move on to the next property.
			if _, err := r.ReadPropValue(); err != nil {
				return "", err
			}
			if ok, err := r.discardEmptySpace(); err != nil || !ok {
				return "", err
			}
			return r.ReadPropName()
		}
		// Splice the included file in and return its first property name.
		// If the include failed to open this just grabs the next property
		// from the current file instead.
		if _, err := r.startIncludeFile(); err != nil {
			return "", err
		}
		return r.ReadPropName()
	}
	return name, nil
}

// ReadPropValue reads the rest of the current line and returns everything
// after the first '=', trimmed of surrounding spaces. The defensive split
// lets it cope with being called before the name was consumed.
func (r *Reader) ReadPropValue() (string, error) {
	line, err := r.ReadLine()
	if err != nil {
		return "", err
	}
	if i := strings.IndexByte(line, '='); i >= 0 {
		line = line[i+1:]
	}
	return strings.Trim(line, " "), nil
}

// ReadLine consumes characters up to the next newline, carriage return or
// tab, stopping short of any trailing line comment. Leading whitespace and
// comments are skipped first.
func (r *Reader) ReadLine() (string, error) {
	if ok, err := r.discardEmptySpace(); err != nil || !ok {
		return "", err
	}

	var sb strings.Builder
	for {
		p, err := r.br.Peek(1)
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", r.syntaxError("stream failed while reading a line")
		}
		c := p[0]
		if c == '\n' || c == '\r' || c == '\t' {
			break
		}
		if c == '/' {
			if p2, _ := r.br.Peek(2); len(p2) == 2 && p2[1] == '/' {
				break
			}
		}
		r.br.Discard(1)
		sb.WriteByte(c)
	}
	return sb.String(), nil
}

// ReadTo consumes characters up to the terminator, optionally discarding it.
func (r *Reader) ReadTo(terminator byte, discardTerminator bool) (string, error) {
	var sb strings.Builder
	for {
		p, err := r.br.Peek(1)
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", r.syntaxError("stream failed while scanning for a terminator")
		}
		if p[0] == terminator {
			if discardTerminator {
				r.br.Discard(1)
			}
			break
		}
		r.br.Discard(1)
		sb.WriteByte(p[0])
	}
	return sb.String(), nil
}

// ReadString reads a property value as a plain string.
func (r *Reader) ReadString() (string, error) {
	return r.ReadPropValue()
}

// ReadInt reads a property value and parses it as an integer.
func (r *Reader) ReadInt() (int, error) {
	v, err := r.ReadPropValue()
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, r.syntaxError(fmt.Sprintf("expected an integer value, got %q", v))
	}
	return n, nil
}

// ReadFloat reads a property value and parses it as a float.
func (r *Reader) ReadFloat() (float64, error) {
	v, err := r.ReadPropValue()
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, r.syntaxError(fmt.Sprintf("expected a number value, got %q", v))
	}
	return f, nil
}

// ReadBool reads a property value and parses it as a boolean.
// Accepts 0/1 as well as the usual true/false spellings.
func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadPropValue()
	if err != nil {
		return false, err
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, r.syntaxError(fmt.Sprintf("expected a boolean value, got %q", v))
	}
	return b, nil
}

// discardEmptySpace is the core scanning primitive. It consumes spaces,
// counts tabs, counts newlines, and swallows both comment styles. When at
// least one newline was crossed it records the signed difference between
// this line's tab count and the previous one's, which is what NextProperty
// keys object endings off. Returns false once every stream has run out.
func (r *Reader) discardEmptySpace() (bool, error) {
	indent := 0
	ateLine := false

scan:
	for {
		p, err := r.br.Peek(1)
		if err == io.EOF {
			return r.endIncludeFile()
		}
		if err != nil {
			return false, r.syntaxError("stream failed while scanning")
		}
		switch c := p[0]; {
		case c == ' ':
			r.br.Discard(1)
		case c == '\t':
			indent++
			r.br.Discard(1)
		case c == '\n' || c == '\r':
			// Lines are only counted on '\n' so CRLF endings aren't
			// counted twice. Either kind resets the tab count.
			if c == '\n' {
				r.currentLine++
				if r.progress != nil && r.currentLine%r.reportEvery == 0 {
					r.progress(fmt.Sprintf("%s%s reading line %d", r.reportTabs, r.fileName, r.currentLine), false)
				}
			}
			indent = 0
			ateLine = true
			r.br.Discard(1)
		case c == '/':
			p2, _ := r.br.Peek(2)
			if len(p2) == 2 && p2[1] == '/' {
				// Line comment: run to end of line.
				r.br.Discard(2)
				if err := r.skipToLineEnd(); err != nil {
					return false, err
				}
			} else if len(p2) == 2 && p2[1] == '*' {
				r.br.Discard(2)
				if err := r.skipBlockComment(); err != nil {
					return false, err
				}
			} else {
				// A lone slash is data.
				break scan
			}
		default:
			break scan
		}
	}

	// Only commit the indentation delta when an actual line boundary was
	// crossed, so repeated calls don't disturb the tracking.
	if ateLine {
		r.indentDelta = indent - r.prevIndent
		r.prevIndent = indent
	}
	return true, nil
}

// skipToLineEnd consumes up to, but not including, the next line break.
func (r *Reader) skipToLineEnd() error {
	for {
		p, err := r.br.Peek(1)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return r.syntaxError("stream failed while skipping a comment")
		}
		if p[0] == '\n' || p[0] == '\r' {
			return nil
		}
		r.br.Discard(1)
	}
}

// skipBlockComment consumes until the matching "*/", counting embedded
// newlines toward the line counter.
func (r *Reader) skipBlockComment() error {
	for {
		b, err := r.br.ReadByte()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return r.syntaxError("stream failed inside a block comment")
		}
		if b == '\n' {
			r.currentLine++
		}
		if b == '*' {
			if p, _ := r.br.Peek(1); len(p) == 1 && p[0] == '/' {
				r.br.Discard(1)
				return nil
			}
		}
	}
}

// startIncludeFile suspends the current file on the include stack and opens
// the file named by the IncludeFile property's value. A file that fails to
// open is reported and skipped; the parent stream resumes where it was.
func (r *Reader) startIncludeFile() (bool, error) {
	if r.progress != nil {
		r.progress(fmt.Sprintf("%s%s on line %d includes:", r.reportTabs, r.fileName, r.currentLine), false)
	}

	// Suspend the current stream for when the included file runs out.
	r.stack = append(r.stack, frame{
		file:   r.file,
		br:     r.br,
		path:   r.filePath,
		line:   r.currentLine,
		indent: r.prevIndent,
	})

	path, err := r.ReadPropValue()
	if err != nil {
		r.restoreTopFrame()
		return false, err
	}

	f, err := os.Open(resolvePath(r.root, path))
	if err != nil {
		// Non-fatal: drop the include, resume the parent file.
		r.restoreTopFrame()
		r.Report(fmt.Sprintf("failed to open included file %q, skipping", path))
		if ok, err := r.discardEmptySpace(); err != nil || !ok {
			return false, err
		}
		return false, nil
	}

	r.file = f
	r.br = bufio.NewReader(f)
	r.filePath = path
	// Line counting starts over, and all properties in the included file
	// are indented relative to zero locally.
	r.currentLine = 1
	r.prevIndent = 0
	r.fileName = includeName(path)
	r.reportTabs = strings.Repeat("\t", len(r.stack)+1)

	if r.progress != nil {
		r.progress(fmt.Sprintf("%s%s on line %d", r.reportTabs, r.fileName, r.currentLine), true)
	}

	if ok, err := r.discardEmptySpace(); err != nil || !ok {
		return false, err
	}
	return true, nil
}

// restoreTopFrame reverts to the most recently suspended stream without
// touching its open file. Used when following an include didn't pan out.
func (r *Reader) restoreTopFrame() {
	top := r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]
	r.file = top.file
	r.br = top.br
	r.filePath = top.path
	r.currentLine = top.line
	r.prevIndent = top.indent
}

// endIncludeFile resumes the parent stream after an included file runs out.
// With no parent left the Reader is permanently exhausted. The suspended
// indentation is added, not assigned: leaving a file is itself a dedent
// relative to the including context.
func (r *Reader) endIncludeFile() (bool, error) {
	if r.progress != nil {
		r.progress(fmt.Sprintf("%s%s - done!", r.reportTabs, r.fileName), false)
	}
	if len(r.stack) == 0 {
		r.endOfStreams = true
		return false, nil
	}

	r.file.Close()
	top := r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]

	r.file = top.file
	r.br = top.br
	r.filePath = top.path
	r.currentLine = top.line
	r.prevIndent += top.indent
	r.fileName = includeName(top.path)
	r.reportTabs = strings.Repeat("\t", len(r.stack)+1)

	if r.progress != nil {
		r.progress(fmt.Sprintf("%s%s on line %d", r.reportTabs, r.fileName, r.currentLine), true)
	}
	return r.discardEmptySpace()
}

// resolvePath anchors a content-relative path to the root directory.
func resolvePath(root, path string) string {
	if root == "" {
		return path
	}
	return filepath.Join(root, path)
}

// baseName returns the path component after the last separator.
func baseName(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}

// includeName returns the path with the leading package segment stripped,
// which is how included files show up in progress reports.
func includeName(path string) string {
	if i := strings.IndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}
