package content

import (
	"testing"

	"github.com/vovakirdan/contentforge/internal/entity"
	"github.com/vovakirdan/contentforge/internal/presets"
)

func newTestMaterial(name string, index int) *presets.Material {
	m := presets.NewMaterial()
	m.SetPresetName(name)
	m.SetMaterialIndex(index)
	return m
}

func TestAddPresetUniqueness(t *testing.T) {
	presets.RegisterClasses()
	p := newPackage(0)

	first := newTestMaterial("Stone", 5)
	if !p.AddPreset(first, false, "Base.rte/Materials.ini") {
		t.Fatal("first AddPreset() = false")
	}

	// Same name, no overwrite: the original stays.
	second := newTestMaterial("Stone", 9)
	if p.AddPreset(second, false, "Base.rte/Other.ini") {
		t.Error("duplicate AddPreset() without overwrite = true")
	}
	got := p.GetPreset("Material", "Stone").(*presets.Material)
	if got.MaterialIndex() != 5 {
		t.Errorf("index = %d, want the original 5", got.MaterialIndex())
	}
	if p.PresetCount() != 1 {
		t.Errorf("PresetCount() = %d, want 1", p.PresetCount())
	}
}

func TestAddPresetOverwriteInPlace(t *testing.T) {
	presets.RegisterClasses()
	p := newPackage(0)

	p.AddPreset(newTestMaterial("Stone", 5), false, "Base.rte/Materials.ini")
	before := p.GetPreset("Material", "Stone")

	if !p.AddPreset(newTestMaterial("Stone", 9), true, "Base.rte/Patch.ini") {
		t.Fatal("overwriting AddPreset() = false")
	}

	after := p.GetPreset("Material", "Stone")
	// The owned instance is re-initialized in place, so references held
	// through the type index stay valid.
	if after != before {
		t.Error("overwrite replaced the instance instead of re-initializing it")
	}
	if after.(*presets.Material).MaterialIndex() != 9 {
		t.Errorf("index = %d, want the override 9", after.(*presets.Material).MaterialIndex())
	}
	if p.PresetDataLocation("Material", "Stone") != "Base.rte/Patch.ini" {
		t.Errorf("source = %q, want the overriding file", p.PresetDataLocation("Material", "Stone"))
	}
}

func TestAddPresetKeepSource(t *testing.T) {
	presets.RegisterClasses()
	p := newPackage(0)

	p.AddPreset(newTestMaterial("Stone", 5), false, "Base.rte/Materials.ini")
	if !p.AddPreset(newTestMaterial("Stone", 9), true, KeepSource) {
		t.Fatal("overwriting AddPreset() = false")
	}
	if p.PresetDataLocation("Material", "Stone") != "Base.rte/Materials.ini" {
		t.Errorf("source = %q, want the original file kept", p.PresetDataLocation("Material", "Stone"))
	}
}

func TestAddPresetAnonymousRejected(t *testing.T) {
	presets.RegisterClasses()
	p := newPackage(0)

	if p.AddPreset(presets.NewMaterial(), false, "Base.rte/Materials.ini") {
		t.Error("AddPreset() accepted an unnamed preset")
	}
}

func TestAddPresetClonesArgument(t *testing.T) {
	presets.RegisterClasses()
	p := newPackage(0)

	arg := newTestMaterial("Stone", 5)
	p.AddPreset(arg, false, "Base.rte/Materials.ini")

	owned := p.GetPreset("Material", "Stone")
	if owned == entity.Entity(arg) {
		t.Error("registry took ownership of the caller's instance")
	}
	// Mutating the argument afterwards must not leak into the registry.
	arg.SetMaterialIndex(42)
	if owned.(*presets.Material).MaterialIndex() != 5 {
		t.Error("registry preset shares state with the caller's instance")
	}
	if !owned.IsOriginalPreset() {
		t.Error("registered preset is not flagged as original")
	}
}

func TestGetPresetExactType(t *testing.T) {
	presets.RegisterClasses()
	p := newPackage(0)

	actor := presets.NewActor()
	actor.SetPresetName("Grunt")
	p.AddPreset(actor, false, "Base.rte/Actors.ini")

	if p.GetPreset("Actor", "Grunt") == nil {
		t.Error("exact-type lookup missed the preset")
	}
	// The actor sits in its ancestors' index buckets, but an exact-type
	// lookup under the ancestor must not return it.
	if p.GetPreset("SceneObject", "Grunt") != nil {
		t.Error("ancestor-type lookup returned a descendant")
	}
}

func TestCollectByType(t *testing.T) {
	presets.RegisterClasses()
	p := newPackage(0)

	actor := presets.NewActor()
	actor.SetPresetName("Grunt")
	p.AddPreset(actor, false, "a")

	terrain := presets.NewTerrainObject()
	terrain.SetPresetName("Wall")
	p.AddPreset(terrain, false, "b")

	p.AddPreset(newTestMaterial("Stone", 5), false, "c")

	if got := len(p.CollectByType(AnyType)); got != 3 {
		t.Errorf("CollectByType(All) = %d presets, want 3", got)
	}
	// SceneObject collects both of its descendant types.
	if got := len(p.CollectByType("SceneObject")); got != 2 {
		t.Errorf("CollectByType(SceneObject) = %d presets, want 2", got)
	}
	if got := len(p.CollectByType("Material")); got != 1 {
		t.Errorf("CollectByType(Material) = %d presets, want 1", got)
	}
	if got := len(p.CollectByType("NoSuchType")); got != 0 {
		t.Errorf("CollectByType(NoSuchType) = %d presets, want 0", got)
	}
}

func TestCollectByGroup(t *testing.T) {
	presets.RegisterClasses()
	p := newPackage(0)

	actor := presets.NewActor()
	actor.SetPresetName("Grunt")
	actor.AddToGroup("Military")
	p.AddPreset(actor, false, "a")
	p.RegisterGroup("Military")

	terrain := presets.NewTerrainObject()
	terrain.SetPresetName("Bunker")
	terrain.AddToGroup("Military")
	p.AddPreset(terrain, false, "b")

	all := p.CollectByGroup("Military", AnyType)
	if len(all) != 2 {
		t.Fatalf("CollectByGroup(Military, All) = %d, want 2", len(all))
	}
	actors := p.CollectByGroup("Military", "Actor")
	if len(actors) != 1 || actors[0].PresetName() != "Grunt" {
		t.Errorf("CollectByGroup(Military, Actor) = %v", actors)
	}
	if got := p.CollectByGroup("Civilian", AnyType); len(got) != 0 {
		t.Errorf("CollectByGroup(Civilian) = %d, want 0", len(got))
	}
}

func TestRegisterGroupSortedUnique(t *testing.T) {
	p := newPackage(0)

	p.RegisterGroup("Weapons")
	p.RegisterGroup("Actors")
	p.RegisterGroup("Weapons")

	groups := p.Groups()
	if len(groups) != 2 || groups[0] != "Actors" || groups[1] != "Weapons" {
		t.Errorf("Groups() = %v, want sorted [Actors Weapons]", groups)
	}
}

func TestGroupsWithType(t *testing.T) {
	presets.RegisterClasses()
	p := newPackage(0)

	actor := presets.NewActor()
	actor.SetPresetName("Grunt")
	actor.AddToGroup("Military")
	p.AddPreset(actor, false, "a")

	mat := newTestMaterial("Stone", 5)
	mat.AddToGroup("Rocks")
	p.AddPreset(mat, false, "b")

	got := p.GroupsWithType("Actor")
	if len(got) != 1 || got[0] != "Military" {
		t.Errorf("GroupsWithType(Actor) = %v, want [Military]", got)
	}
	all := p.GroupsWithType(AnyType)
	if len(all) != 2 {
		t.Errorf("GroupsWithType(All) = %v, want both groups", all)
	}
}

func TestMapMaterialFirstWriterWins(t *testing.T) {
	p := newPackage(0)

	if !p.MapMaterial(5, 10) {
		t.Fatal("first MapMaterial(5, 10) = false")
	}
	if p.MapMaterial(5, 20) {
		t.Error("second MapMaterial(5, 20) = true, want first-writer-wins")
	}
	if got := p.MaterialMapping(5); got != 10 {
		t.Errorf("MaterialMapping(5) = %d, want 10", got)
	}
	if got := p.MaterialMapping(6); got != 0 {
		t.Errorf("MaterialMapping(6) = %d, want 0 for unmapped", got)
	}
}

func TestMapMaterialBounds(t *testing.T) {
	p := newPackage(0)

	if p.MapMaterial(-1, 10) || p.MapMaterial(MaterialSlots, 10) {
		t.Error("MapMaterial() accepted an out-of-range local index")
	}
	if p.MapMaterial(5, MaterialSlots) {
		t.Error("MapMaterial() accepted an out-of-range global slot")
	}
	if got := p.MaterialMapping(-1); got != 0 {
		t.Errorf("MaterialMapping(-1) = %d, want 0", got)
	}
}
