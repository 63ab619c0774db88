package presets

import (
	"fmt"

	"github.com/vovakirdan/contentforge/internal/entity"
	"github.com/vovakirdan/contentforge/internal/reader"
	"github.com/vovakirdan/contentforge/internal/writer"
)

// Actor is a controllable character preset. Its inventory holds nested
// entity blocks, so a single Actor definition exercises recursive parsing
// and deep cloning.
type Actor struct {
	SceneObject

	health      float64
	maxHealth   float64
	aimDistance float64
	stableVel   float64

	inventory []entity.Entity // owned; released back to their pools on Reset
}

// NewActor creates an Actor reset to defaults.
func NewActor() *Actor {
	a := &Actor{}
	a.Reset()
	return a
}

// Class returns the Actor class descriptor.
func (a *Actor) Class() *entity.ClassInfo { return ActorClass }

// Reset restores every field, inherited ones included, to its default.
// Owned inventory instances go back to their class pools.
func (a *Actor) Reset() {
	for _, item := range a.inventory {
		item.Class().Release(item)
	}
	a.inventory = nil

	a.ResetScene()
	a.health = 100
	a.maxHealth = 100
	a.aimDistance = 30
	a.stableVel = 1
}

// Health returns the starting health.
func (a *Actor) Health() float64 { return a.health }

// MaxHealth returns the health ceiling.
func (a *Actor) MaxHealth() float64 { return a.maxHealth }

// AimDistance returns how far the view reaches when aiming.
func (a *Actor) AimDistance() float64 { return a.aimDistance }

// StableVelocityThreshold returns the speed under which the actor is
// considered stable on its feet.
func (a *Actor) StableVelocityThreshold() float64 { return a.stableVel }

// Inventory returns the owned inventory entities. The slice must not be
// mutated by callers.
func (a *Actor) Inventory() []entity.Entity { return a.inventory }

// CopyFrom deep-copies another Actor into this one, cloning every
// inventory entity.
func (a *Actor) CopyFrom(src entity.Entity) error {
	o, ok := src.(*Actor)
	if !ok {
		return fmt.Errorf("presets: cannot copy %s into an Actor", src.Class().Name())
	}
	a.CopySceneFrom(&o.SceneObject)
	a.health = o.health
	a.maxHealth = o.maxHealth
	a.aimDistance = o.aimDistance
	a.stableVel = o.stableVel

	a.inventory = nil
	for _, item := range o.inventory {
		clone, err := entity.Clone(item, nil)
		if err != nil {
			return err
		}
		a.inventory = append(a.inventory, clone)
	}
	return nil
}

// ReadProperty consumes one recognized property value. AddInventory reads a
// whole nested entity block: the value names the class, the indented lines
// under it are the instance's properties.
func (a *Actor) ReadProperty(name string, r *reader.Reader) error {
	var err error
	switch name {
	case "Health":
		a.health, err = r.ReadFloat()
	case "MaxHealth":
		a.maxHealth, err = r.ReadFloat()
	case "AimDistance":
		a.aimDistance, err = r.ReadFloat()
	case "StableVelocityThreshold":
		a.stableVel, err = r.ReadFloat()
	case "AddInventory":
		return a.readInventoryItem(r)
	default:
		return a.SceneObject.ReadProperty(name, r)
	}
	return err
}

// readInventoryItem instantiates and parses one nested entity block.
func (a *Actor) readInventoryItem(r *reader.Reader) error {
	className, err := r.ReadPropValue()
	if err != nil {
		return err
	}
	ci, ok := entity.ClassByName(className)
	if !ok {
		return fmt.Errorf("presets: unknown inventory class %q in %s at line %d",
			className, r.FilePath(), r.CurrentLine())
	}
	item, err := ci.NewInstance()
	if err != nil {
		return fmt.Errorf("presets: cannot instantiate inventory item: %w", err)
	}
	if err := entity.Read(r, item, false, true); err != nil {
		ci.Release(item)
		return err
	}
	a.inventory = append(a.inventory, item)
	return nil
}

// Save writes this Actor's properties, inventory blocks included.
func (a *Actor) Save(w *writer.Writer) error {
	if err := a.SaveScene(w); err != nil {
		return err
	}
	w.NewPropertyWithValue("Health", a.health)
	w.NewPropertyWithValue("MaxHealth", a.maxHealth)
	w.NewPropertyWithValue("AimDistance", a.aimDistance)
	w.NewPropertyWithValue("StableVelocityThreshold", a.stableVel)
	for _, item := range a.inventory {
		w.NewProperty("AddInventory")
		w.ObjectStart(item.Class().Name())
		if err := item.Save(w); err != nil {
			return err
		}
		w.ObjectEnd()
	}
	return nil
}
