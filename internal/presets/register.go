// Package presets defines the built-in content types: the concrete classes
// hand-authored packages instantiate, arranged in a single-inheritance tree
// under the abstract Entity root. Classes are registered explicitly at
// program start-up through RegisterClasses, never from init, so there is no
// reliance on initialization order.
package presets

import (
	"sync"

	"github.com/vovakirdan/contentforge/internal/entity"
)

// Class descriptors for the built-in content tree. Abstract classes carry
// no factory; the pool batch sizes reflect how many of each type a typical
// package defines.
var (
	MaterialClass      = entity.NewClass("Material", entity.RootClass, func() entity.Entity { return NewMaterial() }, 32)
	SceneObjectClass   = entity.NewClass("SceneObject", entity.RootClass, nil, 0)
	TerrainObjectClass = entity.NewClass("TerrainObject", SceneObjectClass, func() entity.Entity { return NewTerrainObject() }, 16)
	ActorClass         = entity.NewClass("Actor", SceneObjectClass, func() entity.Entity { return NewActor() }, 16)
)

var registerOnce sync.Once

// RegisterClasses adds the whole built-in class tree to the global class
// registry. Call it once before any content load; repeated calls are no-ops.
func RegisterClasses() {
	registerOnce.Do(func() {
		entity.Register(entity.RootClass)
		entity.Register(MaterialClass)
		entity.Register(SceneObjectClass)
		entity.Register(TerrainObjectClass)
		entity.Register(ActorClass)
	})
}
