package entity

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/contentforge/internal/reader"
)

// ErrUnknownProperty is returned by ReadProperty when no level of a type's
// delegation chain recognizes a property name. The driver then consumes the
// value so the stream position stays correct, and loading continues.
var ErrUnknownProperty = errors.New("entity: unrecognized property")

// Initializer is implemented by types that need extra set-up after all
// their properties have been read.
type Initializer interface {
	Init() error
}

// Read populates an entity from a Reader, consuming properties until the
// current block dedents. With checkType set, a leading class name is read
// from the stream and verified against the entity's class first. With
// doInit set, the entity's Init hook runs after the block is consumed.
//
// The reserved CopyOf property is resolved here against the Reader's preset
// source: the referenced preset of the same exact class is deep-copied into
// the entity before any remaining properties override individual fields.
func Read(r *reader.Reader, e Entity, checkType, doInit bool) error {
	if checkType {
		className, err := r.ReadPropValue()
		if err != nil {
			return err
		}
		if className != e.Class().Name() {
			return fmt.Errorf("entity: stream named class %q where %q was expected in %s at line %d",
				className, e.Class().Name(), r.FilePath(), r.CurrentLine())
		}
	}

	for {
		more, err := r.NextProperty()
		if err != nil {
			return err
		}
		if !more {
			break
		}

		name, err := r.ReadPropName()
		if err != nil {
			return err
		}
		if name == "" {
			if r.Exhausted() {
				break
			}
			continue
		}

		if name == "CopyOf" {
			if err := readCopyOf(r, e); err != nil {
				return err
			}
			continue
		}

		err = e.ReadProperty(name, r)
		switch {
		case errors.Is(err, ErrUnknownProperty):
			// Nobody claimed the name: eat the value so parsing stays in
			// sync, report it, and carry on.
			if _, verr := r.ReadPropValue(); verr != nil {
				return verr
			}
			r.Report(fmt.Sprintf("unrecognized property %q for %s in %s around line %d",
				name, e.Class().Name(), r.FilePath(), r.CurrentLine()))
		case err != nil:
			return err
		}
	}

	if doInit {
		if init, ok := e.(Initializer); ok {
			return init.Init()
		}
	}
	return nil
}

// readCopyOf resolves a CopyOf reference through the Reader's preset source
// and deep-copies the referenced preset into e. A missing reference is
// reported and skipped rather than aborting the load.
func readCopyOf(r *reader.Reader, e Entity) error {
	refName, err := r.ReadPropValue()
	if err != nil {
		return err
	}
	src := r.Presets()
	if src == nil {
		r.Report(fmt.Sprintf("CopyOf = %s ignored: no presets available to copy from", refName))
		return nil
	}
	ref, ok := src.PresetByName(e.Class().Name(), refName)
	if !ok {
		r.Report(fmt.Sprintf("CopyOf reference %q of class %s not found", refName, e.Class().Name()))
		return nil
	}
	refEnt, ok := ref.(Entity)
	if !ok {
		return fmt.Errorf("entity: preset source returned a non-entity for %q", refName)
	}
	return e.CopyFrom(refEnt)
}

// Clone deep-copies src into a new pooled instance, or into the supplied
// target after resetting it. Ownership of the result transfers to the
// caller; the source is never mutated.
func Clone(src, into Entity) (Entity, error) {
	ci := src.Class()
	if into == nil {
		var err error
		into, err = ci.NewInstance()
		if err != nil {
			return nil, err
		}
	} else {
		if into.Class() != ci {
			return nil, fmt.Errorf("entity: cannot clone %s into an instance of %s",
				ci.Name(), into.Class().Name())
		}
		into.Reset()
	}
	if err := into.CopyFrom(src); err != nil {
		return nil, err
	}
	return into, nil
}
