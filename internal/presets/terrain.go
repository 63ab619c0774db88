package presets

import (
	"fmt"

	"github.com/vovakirdan/contentforge/internal/entity"
	"github.com/vovakirdan/contentforge/internal/reader"
	"github.com/vovakirdan/contentforge/internal/writer"
)

// TerrainObject is a placeable piece of terrain: a texture plus the name of
// the material it is made of. The material reference is by preset name and
// is resolved by consumers, not at parse time, so packages can define their
// pieces before their materials.
type TerrainObject struct {
	SceneObject

	textureFile  string
	foreground   bool
	materialName string
}

// NewTerrainObject creates a TerrainObject reset to defaults.
func NewTerrainObject() *TerrainObject {
	t := &TerrainObject{}
	t.Reset()
	return t
}

// Class returns the TerrainObject class descriptor.
func (t *TerrainObject) Class() *entity.ClassInfo { return TerrainObjectClass }

// Reset restores every field, inherited ones included, to its default.
func (t *TerrainObject) Reset() {
	t.ResetScene()
	t.textureFile = ""
	t.foreground = false
	t.materialName = ""
}

// TextureFile returns the path of the texture image, relative to the
// owning package.
func (t *TerrainObject) TextureFile() string { return t.textureFile }

// Foreground reports whether the piece draws in front of actors.
func (t *TerrainObject) Foreground() bool { return t.foreground }

// MaterialName returns the preset name of the material this is made of.
func (t *TerrainObject) MaterialName() string { return t.materialName }

// CopyFrom deep-copies another TerrainObject into this one.
func (t *TerrainObject) CopyFrom(src entity.Entity) error {
	o, ok := src.(*TerrainObject)
	if !ok {
		return fmt.Errorf("presets: cannot copy %s into a TerrainObject", src.Class().Name())
	}
	t.CopySceneFrom(&o.SceneObject)
	t.textureFile = o.textureFile
	t.foreground = o.foreground
	t.materialName = o.materialName
	return nil
}

// ReadProperty consumes one recognized property value, delegating names it
// doesn't know up the scene-object chain.
func (t *TerrainObject) ReadProperty(name string, r *reader.Reader) error {
	var err error
	switch name {
	case "TextureFile":
		t.textureFile, err = r.ReadString()
	case "Foreground":
		t.foreground, err = r.ReadBool()
	case "Material":
		t.materialName, err = r.ReadString()
	default:
		return t.SceneObject.ReadProperty(name, r)
	}
	return err
}

// Save writes this TerrainObject's properties in content text form.
func (t *TerrainObject) Save(w *writer.Writer) error {
	if err := t.SaveScene(w); err != nil {
		return err
	}
	if t.textureFile != "" {
		w.NewPropertyWithValue("TextureFile", t.textureFile)
	}
	if t.foreground {
		w.NewPropertyWithValue("Foreground", 1)
	}
	if t.materialName != "" {
		w.NewPropertyWithValue("Material", t.materialName)
	}
	return nil
}
