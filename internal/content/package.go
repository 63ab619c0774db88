// Package content owns loaded game content: per-package preset registries
// with type and group indexes plus material-ID remapping, and the library
// that composes independently authored packages into one namespace.
package content

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vovakirdan/contentforge/internal/entity"
	"github.com/vovakirdan/contentforge/internal/reader"
	"github.com/vovakirdan/contentforge/internal/writer"
)

const (
	// AnyType is the type filter that matches every class.
	AnyType = "All"

	// KeepSource tells AddPreset to preserve the source-file record of the
	// preset being overridden.
	KeepSource = "Same"

	// MaterialSlots is the size of the shared material palette.
	MaterialSlots = 256

	// moduleClassName is the class a package index file declares itself as.
	moduleClassName = "DataModule"

	// indexFileName is the entry-point file inside every package directory.
	indexFileName = "Index.ini"
)

// PresetEntry pairs an owned preset with the file it was read from. The
// ordered entry list is the single source of truth for preset lifetime and
// for faithful re-serialization in file-read order.
type PresetEntry struct {
	Preset entity.Entity
	Source string
}

// typeEntry is one non-owning (preset name, instance) pair in the type index.
type typeEntry struct {
	name string
	ent  entity.Entity
}

// MaterialPreset is the capability the library needs from material presets
// to allocate shared palette slots.
type MaterialPreset interface {
	entity.Entity
	MaterialIndex() int
}

// Package is the registry for one content package: its declared metadata,
// the presets parsed from its files, a type index spanning every ancestor
// class, a group catalog, and the package-local material mapping table.
type Package struct {
	fileName      string // directory name, doubles as the package identity
	friendlyName  string
	author        string
	description   string
	version       int
	iconFile      string
	scanFolder    bool
	ignoreMissing bool

	id int

	presets   []PresetEntry
	typeIndex map[string][]typeEntry
	groups    []string

	// materials maps package-local material indexes to their resolved
	// global slots. Zero means unmapped; the first write to a slot wins.
	materials [MaterialSlots]uint8
}

// newPackage creates an empty registry bound to a library-assigned ID.
func newPackage(id int) *Package {
	return &Package{
		id:        id,
		typeIndex: make(map[string][]typeEntry),
	}
}

// FileName returns the package's directory name.
func (p *Package) FileName() string { return p.fileName }

// FriendlyName returns the human-readable package name from its index file.
func (p *Package) FriendlyName() string { return p.friendlyName }

// Author returns the declared package author.
func (p *Package) Author() string { return p.author }

// Description returns the declared package description.
func (p *Package) Description() string { return p.description }

// Version returns the declared package version, starting at 1.
func (p *Package) Version() int { return p.version }

// IconFile returns the declared icon image path, if any.
func (p *Package) IconFile() string { return p.iconFile }

// ID returns the library-assigned numeric package ID.
func (p *Package) ID() int { return p.id }

// PresetCount returns how many presets this package owns.
func (p *Package) PresetCount() int { return len(p.presets) }

// PresetEntries returns the owned presets in file-read order. The slice and
// the presets it points at belong to the package; callers must not mutate.
func (p *Package) PresetEntries() []PresetEntry { return p.presets }

// Load reads the package's index file and every file it includes,
// registering each declared preset. The library resolves the package name
// to this package's ID and supplies already-loaded presets for CopyOf.
func (p *Package) Load(name string, lib *Library, opts LoadOptions) error {
	p.fileName = name

	r, err := reader.Open(filepath.Join(name, indexFileName), reader.Config{
		Root:         lib.root,
		AllowMissing: opts.AllowMissing,
		Overwrite:    opts.Overwrite,
		SkipIncludes: opts.SkipIncludes,
		Progress:     opts.Progress,
		ReportEvery:  opts.ReportEvery,
		Resolver:     lib,
		Presets:      lib,
	})
	if err != nil {
		return err
	}
	defer r.Close()

	// The index file must open with a DataModule block.
	className, err := r.ReadPropValue()
	if err != nil {
		return err
	}
	if className != moduleClassName {
		return fmt.Errorf("content: %s declares %q where a %s block was expected",
			r.FilePath(), className, moduleClassName)
	}

	for {
		more, err := r.NextProperty()
		if err != nil {
			return err
		}
		if !more {
			if r.Exhausted() {
				break
			}
			continue
		}
		propName, err := r.ReadPropName()
		if err != nil {
			return err
		}
		if propName == "" {
			if r.Exhausted() {
				break
			}
			continue
		}
		if err := p.readProperty(propName, r, lib); err != nil {
			return err
		}
	}
	return nil
}

// readProperty consumes one top-level index property: either package
// metadata or an Add* preset declaration.
func (p *Package) readProperty(name string, r *reader.Reader, lib *Library) error {
	var err error
	switch name {
	case "ModuleName":
		p.friendlyName, err = r.ReadString()
	case "Author":
		p.author, err = r.ReadString()
	case "Description":
		p.description, err = r.ReadString()
	case "Version":
		p.version, err = r.ReadInt()
	case "IconFile":
		p.iconFile, err = r.ReadString()
	case "ScanFolderContents":
		p.scanFolder, err = r.ReadBool()
	case "IgnoreMissingItems":
		p.ignoreMissing, err = r.ReadBool()
	default:
		if strings.HasPrefix(name, "Add") {
			return p.readPreset(r, lib)
		}
		// Unknown metadata is non-fatal; eat the value to stay in sync.
		if _, err := r.ReadPropValue(); err != nil {
			return err
		}
		r.Report(fmt.Sprintf("unrecognized package property %q in %s around line %d",
			name, r.FilePath(), r.CurrentLine()))
	}
	return err
}

// readPreset instantiates one declared object block from the pool, parses
// it, and registers the result. The scratch instance goes back to its pool
// once the registry owns a clone.
func (p *Package) readPreset(r *reader.Reader, lib *Library) error {
	className, err := r.ReadPropValue()
	if err != nil {
		return err
	}
	ci, ok := entity.ClassByName(className)
	if !ok {
		return fmt.Errorf("content: unknown class %q in %s at line %d",
			className, r.FilePath(), r.CurrentLine())
	}
	inst, err := ci.NewInstance()
	if err != nil {
		return fmt.Errorf("content: cannot instantiate %q declared in %s at line %d: %w",
			className, r.FilePath(), r.CurrentLine(), err)
	}
	if err := entity.Read(r, inst, false, true); err != nil {
		ci.Release(inst)
		return err
	}

	inst.SetPackageID(p.id)
	if p.AddPreset(inst, r.Overwrite(), r.FilePath()) {
		for _, g := range inst.Groups() {
			p.RegisterGroup(g)
		}
		if mat, ok := inst.(MaterialPreset); ok && lib != nil {
			lib.registerMaterial(p, mat)
		}
	} else if inst.PresetName() != "" {
		r.Report(fmt.Sprintf("preset %s %q already defined, skipping redefinition from %s",
			className, inst.PresetName(), r.FilePath()))
	}

	ci.Release(inst)
	return nil
}

// AddPreset registers a named preset under its exact type and every
// ancestor type. The registry clones the argument and owns the clone; the
// caller keeps ownership of what it passed in.
//
// A preset with the same exact type and name already registered is left
// untouched unless overwrite is set, in which case the existing owned
// instance is re-initialized in place from the newcomer, keeping its
// position in the ordered list. Passing KeepSource as the source preserves
// the record of where the original was read from. Reports whether anything
// was inserted or replaced.
func (p *Package) AddPreset(e entity.Entity, overwrite bool, source string) bool {
	if e.PresetName() == "" {
		return false
	}

	existing := p.presetIfExactType(e.Class().Name(), e.PresetName())
	if existing == nil {
		clone, err := entity.Clone(e, nil)
		if err != nil {
			return false
		}
		clone.SetPresetName(e.PresetName())
		clone.SetPackageID(p.id)
		p.presets = append(p.presets, PresetEntry{Preset: clone, Source: source})
		p.addToTypeIndex(clone)
		return true
	}

	if !overwrite {
		return false
	}
	for i := range p.presets {
		if p.presets[i].Preset != existing {
			continue
		}
		// Re-initialize the owned instance in place so the type index
		// keeps pointing at it.
		if _, err := entity.Clone(e, existing); err != nil {
			return false
		}
		existing.SetPresetName(e.PresetName())
		existing.SetPackageID(p.id)
		if source != KeepSource {
			p.presets[i].Source = source
		}
		return true
	}
	return false
}

// GetPreset returns the preset registered under the exact class and name,
// or nil. This lookup is precise: a descendant registered in an ancestor's
// bucket does not match the ancestor's exact type.
func (p *Package) GetPreset(exactType, name string) entity.Entity {
	return p.presetIfExactType(exactType, name)
}

// PresetDataLocation returns the file a preset was read from, or empty.
func (p *Package) PresetDataLocation(exactType, name string) string {
	e := p.presetIfExactType(exactType, name)
	if e == nil {
		return ""
	}
	for i := range p.presets {
		if p.presets[i].Preset == e {
			return p.presets[i].Source
		}
	}
	return ""
}

// RegisterGroup adds a group name to the package catalog, keeping it
// sorted and duplicate-free.
func (p *Package) RegisterGroup(name string) {
	i := sort.SearchStrings(p.groups, name)
	if i < len(p.groups) && p.groups[i] == name {
		return
	}
	p.groups = append(p.groups, "")
	copy(p.groups[i+1:], p.groups[i:])
	p.groups[i] = name
}

// Groups returns every group name ever registered in this package, sorted.
func (p *Package) Groups() []string { return p.groups }

// GroupsWithType returns the groups that contain at least one preset of the
// given type or one of its descendants. AnyType matches every preset.
func (p *Package) GroupsWithType(typeFilter string) []string {
	var out []string
	seen := make(map[string]bool)
	for i := range p.presets {
		e := p.presets[i].Preset
		if typeFilter != AnyType && !e.Class().DerivesFrom(typeFilter) {
			continue
		}
		for _, g := range e.Groups() {
			if !seen[g] {
				seen[g] = true
				out = append(out, g)
			}
		}
	}
	sort.Strings(out)
	return out
}

// CollectByType returns the presets whose exact or ancestor type matches
// the filter, in registration order. AnyType returns every owned preset.
func (p *Package) CollectByType(typeFilter string) []entity.Entity {
	if typeFilter == AnyType {
		out := make([]entity.Entity, 0, len(p.presets))
		for i := range p.presets {
			out = append(out, p.presets[i].Preset)
		}
		return out
	}
	bucket := p.typeIndex[typeFilter]
	out := make([]entity.Entity, 0, len(bucket))
	for _, te := range bucket {
		out = append(out, te.ent)
	}
	return out
}

// CollectByGroup returns the presets tagged with the group whose exact or
// ancestor type matches the filter.
func (p *Package) CollectByGroup(group, typeFilter string) []entity.Entity {
	var out []entity.Entity
	for i := range p.presets {
		e := p.presets[i].Preset
		if !e.IsInGroup(group) {
			continue
		}
		if typeFilter != AnyType && !e.Class().DerivesFrom(typeFilter) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// MapMaterial records that the package-local material index maps to the
// given global slot. The first writer for a slot wins; later attempts to
// remap it report false without mutating.
func (p *Package) MapMaterial(fromID, toID int) bool {
	if fromID < 0 || fromID >= MaterialSlots || toID < 0 || toID >= MaterialSlots {
		return false
	}
	if p.materials[fromID] != 0 {
		return false
	}
	p.materials[fromID] = uint8(toID)
	return true
}

// MaterialMapping returns the global slot a local material index maps to.
// Unmapped indexes return zero.
func (p *Package) MaterialMapping(fromID int) int {
	if fromID < 0 || fromID >= MaterialSlots {
		return 0
	}
	return int(p.materials[fromID])
}

// Save re-serializes the package index: metadata first, then every owned
// preset as a nested block, in the order they were read.
func (p *Package) Save(w *writer.Writer) error {
	w.ObjectStart(moduleClassName)
	if p.friendlyName != "" {
		w.NewPropertyWithValue("ModuleName", p.friendlyName)
	}
	if p.author != "" {
		w.NewPropertyWithValue("Author", p.author)
	}
	if p.description != "" {
		w.NewPropertyWithValue("Description", p.description)
	}
	if p.version != 0 {
		w.NewPropertyWithValue("Version", p.version)
	}
	if p.iconFile != "" {
		w.NewPropertyWithValue("IconFile", p.iconFile)
	}
	for i := range p.presets {
		e := p.presets[i].Preset
		w.NewProperty("Add" + e.Class().Name())
		w.ObjectStart(e.Class().Name())
		if err := e.Save(w); err != nil {
			return err
		}
		w.ObjectEnd()
	}
	w.ObjectEnd()
	return nil
}

// presetIfExactType scans the type-index bucket for a precise
// (exact type, name) match.
func (p *Package) presetIfExactType(exactType, name string) entity.Entity {
	for _, te := range p.typeIndex[exactType] {
		if te.name == name && te.ent.Class().Name() == exactType {
			return te.ent
		}
	}
	return nil
}

// addToTypeIndex inserts a non-owning reference into the bucket of the
// preset's exact class and every ancestor up to the root.
func (p *Package) addToTypeIndex(e entity.Entity) {
	for ci := e.Class(); ci != nil; ci = ci.Parent() {
		p.typeIndex[ci.Name()] = append(p.typeIndex[ci.Name()], typeEntry{name: e.PresetName(), ent: e})
	}
}
