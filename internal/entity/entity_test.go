package entity

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/contentforge/internal/reader"
	"github.com/vovakirdan/contentforge/internal/writer"
)

// testThing is a minimal concrete content type used to exercise pooling,
// cloning, and the parse driver.
type testThing struct {
	Base
	value int
}

var testThingClass = NewClass("TestThing", RootClass, func() Entity { return &testThing{} }, 4)

func (t *testThing) Class() *ClassInfo { return testThingClass }

func (t *testThing) Reset() {
	t.ResetBase()
	t.value = 0
}

func (t *testThing) CopyFrom(src Entity) error {
	other, ok := src.(*testThing)
	if !ok {
		return errors.New("source is not a testThing")
	}
	t.CopyBaseFrom(&other.Base)
	t.value = other.value
	return nil
}

func (t *testThing) ReadProperty(name string, r *reader.Reader) error {
	if name == "Value" {
		n, err := r.ReadInt()
		if err != nil {
			return err
		}
		t.value = n
		return nil
	}
	return t.Base.ReadProperty(name, r)
}

func (t *testThing) Save(w *writer.Writer) error {
	if err := t.SaveBase(w); err != nil {
		return err
	}
	w.NewPropertyWithValue("Value", t.value)
	return nil
}

func TestPoolReuse(t *testing.T) {
	class := NewClass("PoolThing", RootClass, func() Entity { return &testThing{} }, 4)

	var out []Entity
	for i := 0; i < 4; i++ {
		e, err := class.NewInstance()
		if err != nil {
			t.Fatalf("NewInstance() failed: %v", err)
		}
		out = append(out, e)
	}

	_, inUse, allocated := class.PoolStats()
	if inUse != 4 {
		t.Errorf("inUse = %d, want 4", inUse)
	}
	if allocated != 4 {
		t.Errorf("allocated = %d, want 4", allocated)
	}

	for _, e := range out {
		class.Release(e)
	}

	// A second round of the same size must reuse the released instances
	// without allocating anything new.
	for i := 0; i < 4; i++ {
		if _, err := class.NewInstance(); err != nil {
			t.Fatalf("NewInstance() failed: %v", err)
		}
	}
	_, _, allocated = class.PoolStats()
	if allocated != 4 {
		t.Errorf("allocated after reuse = %d, want 4", allocated)
	}
}

func TestPoolGrowsByBatch(t *testing.T) {
	class := NewClass("BatchThing", RootClass, func() Entity { return &testThing{} }, 3)

	if _, err := class.NewInstance(); err != nil {
		t.Fatalf("NewInstance() failed: %v", err)
	}
	free, inUse, allocated := class.PoolStats()
	if free != 2 || inUse != 1 || allocated != 3 {
		t.Errorf("PoolStats() = %d, %d, %d, want 2, 1, 3", free, inUse, allocated)
	}
}

func TestPoolReleaseResets(t *testing.T) {
	class := NewClass("ResetThing", RootClass, func() Entity { return &testThing{} }, 1)

	e, err := class.NewInstance()
	if err != nil {
		t.Fatalf("NewInstance() failed: %v", err)
	}
	e.SetPresetName("Dirty")
	e.(*testThing).value = 42

	class.Release(e)

	e2, err := class.NewInstance()
	if err != nil {
		t.Fatalf("NewInstance() failed: %v", err)
	}
	if e2.PresetName() != "" || e2.(*testThing).value != 0 {
		t.Errorf("recycled instance not reset: name %q, value %d",
			e2.PresetName(), e2.(*testThing).value)
	}
}

func TestAbstractClassCannotInstantiate(t *testing.T) {
	abstract := NewClass("AbstractThing", RootClass, nil, 0)

	if abstract.IsConcrete() {
		t.Error("IsConcrete() = true for a factory-less class")
	}
	if _, err := abstract.NewInstance(); err == nil {
		t.Error("NewInstance() on an abstract class succeeded")
	}
}

func TestDerivesFrom(t *testing.T) {
	parent := NewClass("DeriveParent", RootClass, nil, 0)
	child := NewClass("DeriveChild", parent, func() Entity { return &testThing{} }, 1)

	if !child.DerivesFrom("DeriveChild") {
		t.Error("class does not derive from itself")
	}
	if !child.DerivesFrom("DeriveParent") || !child.DerivesFrom("Entity") {
		t.Error("class does not derive from its ancestors")
	}
	if child.DerivesFrom("DeriveSibling") {
		t.Error("class derives from an unrelated name")
	}
}

func TestRegistry(t *testing.T) {
	c := Register(NewClass("RegistryThing", RootClass, nil, 0))

	got, ok := ClassByName("RegistryThing")
	if !ok || got != c {
		t.Fatalf("ClassByName() = %v, %v", got, ok)
	}
	if _, ok := ClassByName("NoSuchClass"); ok {
		t.Error("ClassByName() found an unregistered class")
	}

	defer func() {
		if recover() == nil {
			t.Error("duplicate Register() did not panic")
		}
	}()
	Register(NewClass("RegistryThing", RootClass, nil, 0))
}

func TestPresetNameAndOriginalFlag(t *testing.T) {
	var e testThing
	e.Reset()

	if e.IsOriginalPreset() {
		t.Error("fresh instance claims to be an original preset")
	}
	e.SetPresetName("Thing One")
	if !e.IsOriginalPreset() {
		t.Error("named instance is not an original preset")
	}
	e.ResetOriginalPresetFlag()
	if e.IsOriginalPreset() {
		t.Error("flag survived ResetOriginalPresetFlag()")
	}
	if e.PresetName() != "Thing One" {
		t.Errorf("PresetName() = %q after flag reset", e.PresetName())
	}
}

func TestGroups(t *testing.T) {
	var e testThing
	e.Reset()

	e.AddToGroup("Weapons")
	e.AddToGroup("Actors")
	e.AddToGroup("Weapons") // duplicate

	groups := e.Groups()
	if len(groups) != 2 {
		t.Fatalf("Groups() has %d entries, want 2", len(groups))
	}
	if groups[0] != "Actors" || groups[1] != "Weapons" {
		t.Errorf("Groups() = %v, want sorted [Actors Weapons]", groups)
	}

	if !e.IsInGroup("Weapons") {
		t.Error("IsInGroup(Weapons) = false")
	}
	// Repeat probe hits the one-entry cache.
	if !e.IsInGroup("Weapons") {
		t.Error("cached IsInGroup(Weapons) = false")
	}
	if e.IsInGroup("Vehicles") {
		t.Error("IsInGroup(Vehicles) = true")
	}
	e.AddToGroup("Vehicles")
	if !e.IsInGroup("Vehicles") {
		t.Error("IsInGroup(Vehicles) = false after AddToGroup")
	}
}

func TestRandomWeightClamped(t *testing.T) {
	var e testThing
	e.Reset()

	if e.RandomWeight() != 100 {
		t.Errorf("default RandomWeight() = %d, want 100", e.RandomWeight())
	}
	e.SetRandomWeight(250)
	if e.RandomWeight() != 100 {
		t.Errorf("RandomWeight() = %d after overshoot, want 100", e.RandomWeight())
	}
	e.SetRandomWeight(-3)
	if e.RandomWeight() != 0 {
		t.Errorf("RandomWeight() = %d after undershoot, want 0", e.RandomWeight())
	}
}

func TestMigrateToPackage(t *testing.T) {
	var e testThing
	e.Reset()
	e.SetPackageID(2)
	e.ResetOriginalPresetFlag()

	if e.MigrateToPackage(2) {
		t.Error("migrating to the current package reported true")
	}
	if !e.MigrateToPackage(5) {
		t.Error("migrating to another package reported false")
	}
	if e.PackageID() != 5 || !e.IsOriginalPreset() {
		t.Errorf("after migration: package %d, original %v", e.PackageID(), e.IsOriginalPreset())
	}
}

func TestClone(t *testing.T) {
	src := &testThing{}
	src.Reset()
	src.SetPresetName("Proto")
	src.SetDescription("the prototype")
	src.AddToGroup("Tools")
	src.value = 7

	clone, err := Clone(src, nil)
	if err != nil {
		t.Fatalf("Clone() failed: %v", err)
	}
	got := clone.(*testThing)
	if got.value != 7 || got.PresetName() != "Proto" || got.Description() != "the prototype" {
		t.Errorf("clone fields = %d, %q, %q", got.value, got.PresetName(), got.Description())
	}
	if got.IsOriginalPreset() {
		t.Error("clone claims to be an original preset")
	}
	if !src.IsOriginalPreset() {
		t.Error("cloning cleared the source's original flag")
	}

	// Cloning into an existing instance resets it first.
	target := &testThing{}
	target.Reset()
	target.value = 99
	if _, err := Clone(src, target); err != nil {
		t.Fatalf("Clone() into target failed: %v", err)
	}
	if target.value != 7 {
		t.Errorf("target value = %d, want 7", target.value)
	}
}

// stubPresets resolves CopyOf references for driver tests.
type stubPresets map[string]Entity

func (s stubPresets) PresetByName(className, presetName string) (any, bool) {
	e, ok := s[presetName]
	return e, ok
}

func openEntityTest(t *testing.T, text string, presets reader.PresetSource) *reader.Reader {
	t.Helper()
	root := t.TempDir()
	path := filepath.Join(root, "Test.rte", "Index.ini")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll() failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	r, err := reader.Open("Test.rte/Index.ini", reader.Config{Root: root, Presets: presets})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestReadPopulatesEntity(t *testing.T) {
	r := openEntityTest(t,
		"TestThing\n"+
			"\tPresetName = Widget\n"+
			"\tValue = 9\n"+
			"\tMystery = who knows\n"+
			"\tAddToGroup = Gadgets\n",
		nil)

	var e testThing
	e.Reset()
	if err := Read(r, &e, true, false); err != nil {
		t.Fatalf("Read() failed: %v", err)
	}

	if e.PresetName() != "Widget" || e.value != 9 {
		t.Errorf("entity = %q, %d", e.PresetName(), e.value)
	}
	if !e.IsInGroup("Gadgets") {
		t.Error("group was not read")
	}
	if !e.IsOriginalPreset() {
		t.Error("named entity is not an original preset")
	}
}

func TestReadTypeMismatch(t *testing.T) {
	r := openEntityTest(t, "SomeOtherThing\n\tValue = 1\n", nil)

	var e testThing
	e.Reset()
	if err := Read(r, &e, true, false); err == nil {
		t.Error("Read() with a mismatched class name succeeded")
	}
}

func TestReadCopyOf(t *testing.T) {
	proto := &testThing{}
	proto.Reset()
	proto.SetPresetName("Proto")
	proto.SetDescription("base model")
	proto.value = 3

	r := openEntityTest(t,
		"TestThing\n"+
			"\tCopyOf = Proto\n"+
			"\tValue = 5\n",
		stubPresets{"Proto": proto})

	var e testThing
	e.Reset()
	if err := Read(r, &e, true, false); err != nil {
		t.Fatalf("Read() failed: %v", err)
	}

	// Copied fields come first, later properties override them.
	if e.Description() != "base model" {
		t.Errorf("Description() = %q, want copied value", e.Description())
	}
	if e.value != 5 {
		t.Errorf("value = %d, want the override 5", e.value)
	}
	if e.IsOriginalPreset() {
		t.Error("copy claims to be an original preset")
	}
	if proto.value != 3 {
		t.Error("source was mutated by the copy")
	}
}

func TestReadMissingCopyOfIsNonFatal(t *testing.T) {
	r := openEntityTest(t,
		"TestThing\n"+
			"\tCopyOf = Nowhere\n"+
			"\tValue = 2\n",
		stubPresets{})

	var e testThing
	e.Reset()
	if err := Read(r, &e, true, false); err != nil {
		t.Fatalf("Read() failed: %v", err)
	}
	if e.value != 2 {
		t.Errorf("value = %d, want 2", e.value)
	}
}
