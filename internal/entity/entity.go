// Package entity provides the prototype object model underneath all loaded
// content: class descriptors with pooled allocation, a global append-only
// class registry, the lifecycle every content type implements, and the
// generic parse driver that populates objects from a Reader.
package entity

import (
	"fmt"
	"sort"

	"github.com/vovakirdan/contentforge/internal/reader"
	"github.com/vovakirdan/contentforge/internal/writer"
)

// Entity is the contract every registered content type implements. Concrete
// types embed Base for the common preset attributes and add their own
// fields, property handling, copying, and serialization on top.
type Entity interface {
	// Class returns this type's class descriptor.
	Class() *ClassInfo

	PresetName() string
	SetPresetName(name string)
	Description() string
	SetDescription(desc string)
	IsOriginalPreset() bool
	ResetOriginalPresetFlag()

	PackageID() int
	SetPackageID(id int)
	MigrateToPackage(id int) bool

	Groups() []string
	AddToGroup(group string)
	IsInGroup(group string) bool
	RandomWeight() int

	// Reset returns every field, inherited ones included, to its default.
	Reset()

	// CopyFrom deep-copies another instance of the same concrete type into
	// this one. The source is never mutated, and the copy starts out as a
	// non-original preset until it is explicitly renamed.
	CopyFrom(src Entity) error

	// ReadProperty consumes the value of a recognized property from the
	// Reader. Unrecognized names are delegated up the embedding chain; when
	// no level recognizes the name, ErrUnknownProperty comes back with the
	// value still unconsumed.
	ReadProperty(name string, r *reader.Reader) error

	// Save writes this instance's properties back out in content text form.
	Save(w *writer.Writer) error
}

// Base holds the preset attributes shared by every content type: the preset
// name and original-preset flag, a description, the owning package, group
// tags, and the weight used for weighted random selection.
type Base struct {
	presetName  string
	description string
	isOriginal  bool
	packageID   int

	groups []string // sorted, unique, case-sensitive

	// One-entry cache for repeated IsInGroup probes with the same name.
	lastGroupSearch string
	lastGroupResult bool

	randomWeight int
}

// ResetBase restores the shared preset attributes to their defaults.
func (b *Base) ResetBase() {
	b.presetName = ""
	b.description = ""
	b.isOriginal = false
	b.packageID = -1
	b.groups = nil
	b.lastGroupSearch = ""
	b.lastGroupResult = false
	b.randomWeight = 100
}

// CopyBaseFrom deep-copies the shared attributes from another Base. The
// result is always a non-original copy; only an explicit SetPresetName
// makes it authoritative again.
func (b *Base) CopyBaseFrom(src *Base) {
	b.presetName = src.presetName
	b.description = src.description
	b.isOriginal = false
	b.packageID = src.packageID
	b.groups = append([]string(nil), src.groups...)
	b.lastGroupSearch = ""
	b.lastGroupResult = false
	b.randomWeight = src.randomWeight
}

// PresetName returns the preset name, empty for anonymous instances.
func (b *Base) PresetName() string { return b.presetName }

// SetPresetName names this instance and flags it as an original preset.
func (b *Base) SetPresetName(name string) {
	b.isOriginal = true
	b.presetName = name
}

// Description returns the plain-text preset description.
func (b *Base) Description() string { return b.description }

// SetDescription sets the plain-text preset description.
func (b *Base) SetDescription(desc string) { b.description = desc }

// IsOriginalPreset reports whether this instance was explicitly named,
// rather than copied or spawned from a named preset.
func (b *Base) IsOriginalPreset() bool { return b.isOriginal }

// ResetOriginalPresetFlag marks this instance as a plain copy.
func (b *Base) ResetOriginalPresetFlag() { b.isOriginal = false }

// PackageID returns the ID of the content package this preset was
// registered with, or -1 when it hasn't been registered anywhere.
func (b *Base) PackageID() int { return b.packageID }

// SetPackageID records the owning content package.
func (b *Base) SetPackageID(id int) { b.packageID = id }

// MigrateToPackage makes this an original preset of a different package.
// Migrating to the package it is already in reports false.
func (b *Base) MigrateToPackage(id int) bool {
	if id == b.packageID {
		return false
	}
	b.packageID = id
	b.isOriginal = true
	return true
}

// Groups returns the group tags this preset belongs to, sorted.
func (b *Base) Groups() []string { return b.groups }

// AddToGroup tags this preset with a group, keeping the set sorted and
// duplicate-free.
func (b *Base) AddToGroup(group string) {
	i := sort.SearchStrings(b.groups, group)
	if i < len(b.groups) && b.groups[i] == group {
		return
	}
	b.groups = append(b.groups, "")
	copy(b.groups[i+1:], b.groups[i:])
	b.groups[i] = group
	b.lastGroupSearch = ""
}

// IsInGroup reports group membership, caching the last probe since callers
// tend to ask about the same group repeatedly.
func (b *Base) IsInGroup(group string) bool {
	if group == b.lastGroupSearch && group != "" {
		return b.lastGroupResult
	}
	i := sort.SearchStrings(b.groups, group)
	found := i < len(b.groups) && b.groups[i] == group
	b.lastGroupSearch = group
	b.lastGroupResult = found
	return found
}

// RandomWeight returns the 0..100 weight used for weighted selection.
// 0 means the preset is never picked.
func (b *Base) RandomWeight() int { return b.randomWeight }

// SetRandomWeight sets the selection weight, clamped to 0..100.
func (b *Base) SetRandomWeight(weight int) {
	b.randomWeight = min(max(weight, 0), 100)
}

// ReadProperty handles the property names shared by every content type.
// It is the end of every type's delegation chain.
func (b *Base) ReadProperty(name string, r *reader.Reader) error {
	switch name {
	case "PresetName", "InstanceName":
		v, err := r.ReadString()
		if err != nil {
			return err
		}
		b.SetPresetName(v)
	case "Description":
		v, err := r.ReadString()
		if err != nil {
			return err
		}
		b.description = v
	case "AddToGroup":
		v, err := r.ReadString()
		if err != nil {
			return err
		}
		b.AddToGroup(v)
	case "RandomWeight":
		n, err := r.ReadInt()
		if err != nil {
			return err
		}
		b.SetRandomWeight(n)
	default:
		return ErrUnknownProperty
	}
	return nil
}

// SaveBase writes the shared preset attributes. Defaults are omitted so the
// output stays as lean as hand-authored files.
func (b *Base) SaveBase(w *writer.Writer) error {
	if b.presetName != "" {
		w.NewPropertyWithValue("PresetName", b.presetName)
	}
	if b.description != "" {
		w.NewPropertyWithValue("Description", b.description)
	}
	for _, g := range b.groups {
		w.NewPropertyWithValue("AddToGroup", g)
	}
	if b.randomWeight != 100 {
		w.NewPropertyWithValue("RandomWeight", b.randomWeight)
	}
	return nil
}

// FullName returns "Package/PresetName" style identification for logs.
func FullName(e Entity, pkgName string) string {
	if pkgName == "" {
		return e.PresetName()
	}
	return fmt.Sprintf("%s/%s", pkgName, e.PresetName())
}
