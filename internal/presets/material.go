package presets

import (
	"fmt"

	"github.com/vovakirdan/contentforge/internal/entity"
	"github.com/vovakirdan/contentforge/internal/reader"
	"github.com/vovakirdan/contentforge/internal/writer"
)

// Material describes one physical substance in a package's local material
// palette. Its index is package-local; the content library remaps indexes
// into the shared global palette when packages collide.
type Material struct {
	entity.Base

	index       int
	friction    float64
	restitution float64
	stickiness  float64
	integrity   float64
	density     float64
	priority    int
	settleTo    string
	scrap       bool

	colorR, colorG, colorB int
}

// NewMaterial creates a Material reset to defaults.
func NewMaterial() *Material {
	m := &Material{}
	m.Reset()
	return m
}

// Class returns the Material class descriptor.
func (m *Material) Class() *entity.ClassInfo { return MaterialClass }

// Reset restores every field, inherited ones included, to its default.
func (m *Material) Reset() {
	m.ResetBase()
	m.index = 0
	m.friction = 0
	m.restitution = 0
	m.stickiness = 0
	m.integrity = 0
	m.density = 1000
	m.priority = 0
	m.settleTo = ""
	m.scrap = false
	m.colorR, m.colorG, m.colorB = 0, 0, 0
}

// MaterialIndex returns the package-local palette index.
func (m *Material) MaterialIndex() int { return m.index }

// SetMaterialIndex sets the package-local palette index.
func (m *Material) SetMaterialIndex(index int) { m.index = index }

// Friction returns the surface friction scalar.
func (m *Material) Friction() float64 { return m.friction }

// Restitution returns the bounce scalar.
func (m *Material) Restitution() float64 { return m.restitution }

// Stickiness returns how likely particles are to stick on contact.
func (m *Material) Stickiness() float64 { return m.stickiness }

// StructuralIntegrity returns how much impulse the material absorbs before
// being knocked loose.
func (m *Material) StructuralIntegrity() float64 { return m.integrity }

// Density returns the density in kg per volume unit.
func (m *Material) Density() float64 { return m.density }

// Priority returns the draw/settle priority against other materials.
func (m *Material) Priority() int { return m.priority }

// SettleMaterial returns the name of the material this one settles into,
// empty when it settles as itself.
func (m *Material) SettleMaterial() string { return m.settleTo }

// IsScrap reports whether the material counts as scrap.
func (m *Material) IsScrap() bool { return m.scrap }

// Color returns the display color as 8-bit RGB components.
func (m *Material) Color() (r, g, b int) { return m.colorR, m.colorG, m.colorB }

// CopyFrom deep-copies another Material into this one.
func (m *Material) CopyFrom(src entity.Entity) error {
	o, ok := src.(*Material)
	if !ok {
		return fmt.Errorf("presets: cannot copy %s into a Material", src.Class().Name())
	}
	m.CopyBaseFrom(&o.Base)
	m.index = o.index
	m.friction = o.friction
	m.restitution = o.restitution
	m.stickiness = o.stickiness
	m.integrity = o.integrity
	m.density = o.density
	m.priority = o.priority
	m.settleTo = o.settleTo
	m.scrap = o.scrap
	m.colorR, m.colorG, m.colorB = o.colorR, o.colorG, o.colorB
	return nil
}

// ReadProperty consumes one recognized property value, delegating names it
// doesn't know to the base preset attributes.
func (m *Material) ReadProperty(name string, r *reader.Reader) error {
	var err error
	switch name {
	case "Index":
		m.index, err = r.ReadInt()
	case "Friction":
		m.friction, err = r.ReadFloat()
	case "Restitution", "Bounce":
		m.restitution, err = r.ReadFloat()
	case "Stickiness":
		m.stickiness, err = r.ReadFloat()
	case "StructuralIntegrity":
		m.integrity, err = r.ReadFloat()
	case "Density":
		m.density, err = r.ReadFloat()
	case "Priority":
		m.priority, err = r.ReadInt()
	case "SettleMaterial":
		m.settleTo, err = r.ReadString()
	case "IsScrap":
		m.scrap, err = r.ReadBool()
	case "ColorR":
		m.colorR, err = r.ReadInt()
	case "ColorG":
		m.colorG, err = r.ReadInt()
	case "ColorB":
		m.colorB, err = r.ReadInt()
	default:
		return m.Base.ReadProperty(name, r)
	}
	return err
}

// Save writes this Material's properties in content text form.
func (m *Material) Save(w *writer.Writer) error {
	if err := m.SaveBase(w); err != nil {
		return err
	}
	w.NewPropertyWithValue("Index", m.index)
	w.NewPropertyWithValue("Friction", m.friction)
	w.NewPropertyWithValue("Restitution", m.restitution)
	w.NewPropertyWithValue("Stickiness", m.stickiness)
	w.NewPropertyWithValue("StructuralIntegrity", m.integrity)
	w.NewPropertyWithValue("Density", m.density)
	w.NewPropertyWithValue("Priority", m.priority)
	if m.settleTo != "" {
		w.NewPropertyWithValue("SettleMaterial", m.settleTo)
	}
	if m.scrap {
		w.NewPropertyWithValue("IsScrap", 1)
	}
	w.NewPropertyWithValue("ColorR", m.colorR)
	w.NewPropertyWithValue("ColorG", m.colorG)
	w.NewPropertyWithValue("ColorB", m.colorB)
	return nil
}
