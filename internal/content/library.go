package content

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/contentforge/internal/entity"
	"github.com/vovakirdan/contentforge/internal/reader"
)

// LoadOptions controls one package load.
type LoadOptions struct {
	// Progress receives human-readable load reports.
	Progress reader.ProgressFunc

	// Overwrite lets this package's presets replace same-named ones it
	// already defined, instead of keeping the first definition.
	Overwrite bool

	// SkipIncludes discards IncludeFile directives. Useful for reading
	// just a package's metadata quickly.
	SkipIncludes bool

	// AllowMissing treats a missing index file as a reported failure
	// rather than a fatal one.
	AllowMissing bool

	// ReportEvery overrides how many lines pass between progress reports.
	ReportEvery int
}

// Library composes independently authored content packages into one
// namespace: it assigns each package its numeric ID, resolves package names
// for the reader, allocates shared material-palette slots across packages,
// and answers cross-package preset lookups, CopyOf references included.
//
// Loading is synchronous and single-threaded; a Library must not be shared
// with other goroutines while a load is in flight. There is no rollback of
// a partially loaded package; callers wanting atomicity snapshot externally.
type Library struct {
	logger *log.Logger

	// root is the directory package paths resolve against.
	root string

	names map[string]int
	pkgs  []*Package

	// materialTaken marks global palette slots already claimed by some
	// package's material.
	materialTaken [MaterialSlots]bool
}

// NewLibrary creates an empty content library rooted at the given
// directory. Package names are resolved as subdirectories of the root;
// an empty root means the working directory.
func NewLibrary(root string) *Library {
	return &Library{
		logger: log.NewWithOptions(os.Stderr, log.Options{Prefix: "content"}),
		root:   root,
		names:  make(map[string]int),
	}
}

// Root returns the directory package paths resolve against.
func (l *Library) Root() string { return l.root }

// SetLogger replaces the library's diagnostic logger.
func (l *Library) SetLogger(logger *log.Logger) {
	if logger != nil {
		l.logger = logger
	}
}

// PackageID resolves a package name to its ID, implementing the reader's
// package resolver. Unknown names return -1.
func (l *Library) PackageID(name string) int {
	if id, ok := l.names[name]; ok {
		return id
	}
	return -1
}

// LoadPackage loads the named package directory and registers it. The
// package is assigned its ID before reading starts so its own files
// resolve to it. A load error leaves whatever was registered so far in
// place; there is no partial rollback.
func (l *Library) LoadPackage(name string, opts LoadOptions) (*Package, error) {
	if _, ok := l.names[name]; ok {
		return nil, fmt.Errorf("content: package %q is already loaded", name)
	}

	id := len(l.pkgs)
	p := newPackage(id)
	l.names[name] = id
	l.pkgs = append(l.pkgs, p)

	l.logger.Info("loading package", "name", name, "id", id)
	if err := p.Load(name, l, opts); err != nil {
		l.logger.Error("package load failed", "name", name, "error", err)
		return p, err
	}
	l.logger.Info("package loaded",
		"name", name,
		"presets", p.PresetCount(),
		"groups", len(p.Groups()),
	)
	return p, nil
}

// PackageByName returns a loaded package, or nil.
func (l *Library) PackageByName(name string) *Package {
	if id, ok := l.names[name]; ok {
		return l.pkgs[id]
	}
	return nil
}

// PackageByID returns a loaded package by its numeric ID, or nil.
func (l *Library) PackageByID(id int) *Package {
	if id < 0 || id >= len(l.pkgs) {
		return nil
	}
	return l.pkgs[id]
}

// Packages returns every loaded package in load order. Read-only.
func (l *Library) Packages() []*Package { return l.pkgs }

// GetPreset finds a preset by exact class and name, searching packages in
// load order.
func (l *Library) GetPreset(exactType, name string) entity.Entity {
	for _, p := range l.pkgs {
		if e := p.GetPreset(exactType, name); e != nil {
			return e
		}
	}
	return nil
}

// PresetByName implements the reader's CopyOf resolution source.
func (l *Library) PresetByName(className, presetName string) (any, bool) {
	if e := l.GetPreset(className, presetName); e != nil {
		return e, true
	}
	return nil, false
}

// TotalPresets returns the preset count across every loaded package.
func (l *Library) TotalPresets() int {
	n := 0
	for _, p := range l.pkgs {
		n += p.PresetCount()
	}
	return n
}

// registerMaterial claims a global palette slot for a package's material.
// The local index is kept when free; otherwise the lowest free slot is
// taken and the package's mapping table records the displacement. A
// package redefining one of its own local indexes is dropped: the first
// writer for a mapping slot wins.
func (l *Library) registerMaterial(p *Package, m MaterialPreset) {
	local := m.MaterialIndex()
	if local <= 0 || local >= MaterialSlots {
		l.logger.Warn("material index out of range",
			"package", p.FileName(), "preset", m.PresetName(), "index", local)
		return
	}

	global := local
	if l.materialTaken[global] {
		global = -1
		for i := 1; i < MaterialSlots; i++ {
			if !l.materialTaken[i] {
				global = i
				break
			}
		}
		if global < 0 {
			l.logger.Warn("material palette exhausted",
				"package", p.FileName(), "preset", m.PresetName())
			return
		}
	}

	if !p.MapMaterial(local, global) {
		l.logger.Warn("duplicate material index in package",
			"package", p.FileName(), "preset", m.PresetName(), "index", local)
		return
	}
	l.materialTaken[global] = true
	if global != local {
		l.logger.Info("remapped material",
			"package", p.FileName(), "preset", m.PresetName(),
			"from", local, "to", global)
	}
}
