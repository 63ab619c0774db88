package presets

import (
	"github.com/vovakirdan/contentforge/internal/entity"
	"github.com/vovakirdan/contentforge/internal/reader"
	"github.com/vovakirdan/contentforge/internal/writer"
)

// SceneObject is the abstract base for anything that can be placed in a
// scene and offered for purchase. It is never instantiated itself; concrete
// types embed it and chain their property handling through it.
type SceneObject struct {
	entity.Base

	goldCost int
	buyable  bool
}

// ResetScene restores the scene-level fields and everything inherited.
func (s *SceneObject) ResetScene() {
	s.ResetBase()
	s.goldCost = 0
	s.buyable = true
}

// CopySceneFrom deep-copies the scene-level fields and everything inherited.
func (s *SceneObject) CopySceneFrom(src *SceneObject) {
	s.CopyBaseFrom(&src.Base)
	s.goldCost = src.goldCost
	s.buyable = src.buyable
}

// GoldCost returns the purchase cost in gold.
func (s *SceneObject) GoldCost() int { return s.goldCost }

// Buyable reports whether this object shows up in buy menus.
func (s *SceneObject) Buyable() bool { return s.buyable }

// ReadProperty handles scene-level property names, delegating the rest to
// the base preset attributes.
func (s *SceneObject) ReadProperty(name string, r *reader.Reader) error {
	var err error
	switch name {
	case "GoldValue", "GoldCost":
		s.goldCost, err = r.ReadInt()
	case "Buyable":
		s.buyable, err = r.ReadBool()
	default:
		return s.Base.ReadProperty(name, r)
	}
	return err
}

// SaveScene writes the scene-level properties and everything inherited.
func (s *SceneObject) SaveScene(w *writer.Writer) error {
	if err := s.SaveBase(w); err != nil {
		return err
	}
	if s.goldCost != 0 {
		w.NewPropertyWithValue("GoldValue", s.goldCost)
	}
	if !s.buyable {
		w.NewPropertyWithValue("Buyable", 0)
	}
	return nil
}
