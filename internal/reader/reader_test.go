package reader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeContent writes a content file under root, creating directories.
func writeContent(t *testing.T, root, rel, text string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll() failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
}

// openTest opens a content file rooted at a temp dir.
func openTest(t *testing.T, root, rel string, cfg Config) *Reader {
	t.Helper()
	cfg.Root = root
	r, err := Open(rel, cfg)
	if err != nil {
		t.Fatalf("Open(%q) failed: %v", rel, err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

// mustProp asserts the next property has the given name and value.
func mustProp(t *testing.T, r *Reader, wantName, wantValue string) {
	t.Helper()
	ok, err := r.NextProperty()
	if err != nil {
		t.Fatalf("NextProperty() failed: %v", err)
	}
	if !ok {
		t.Fatalf("NextProperty() = false, want property %q", wantName)
	}
	name, err := r.ReadPropName()
	if err != nil {
		t.Fatalf("ReadPropName() failed: %v", err)
	}
	if name != wantName {
		t.Fatalf("ReadPropName() = %q, want %q", name, wantName)
	}
	value, err := r.ReadPropValue()
	if err != nil {
		t.Fatalf("ReadPropValue() failed: %v", err)
	}
	if value != wantValue {
		t.Fatalf("ReadPropValue() = %q, want %q", value, wantValue)
	}
}

// mustEnd asserts NextProperty reports the end of the current block.
func mustEnd(t *testing.T, r *Reader) {
	t.Helper()
	ok, err := r.NextProperty()
	if err != nil {
		t.Fatalf("NextProperty() failed: %v", err)
	}
	if ok {
		t.Fatal("NextProperty() = true, want block end")
	}
}

func TestReaderFlatProperties(t *testing.T) {
	root := t.TempDir()
	writeContent(t, root, "Test.rte/Index.ini",
		"DataModule\n"+
			"\tModuleName = Test Module\n"+
			"\tVersion = 3\n")

	r := openTest(t, root, "Test.rte/Index.ini", Config{})

	head, err := r.ReadPropValue()
	if err != nil {
		t.Fatalf("ReadPropValue() failed: %v", err)
	}
	if head != "DataModule" {
		t.Errorf("header = %q, want DataModule", head)
	}

	mustProp(t, r, "ModuleName", "Test Module")
	mustProp(t, r, "Version", "3")

	mustEnd(t, r)
	if !r.Exhausted() {
		t.Error("Exhausted() = false after final property")
	}
}

func TestReaderPackageName(t *testing.T) {
	root := t.TempDir()
	writeContent(t, root, "Test.rte/Index.ini", "DataModule\n")

	resolver := stubResolver{"Test.rte": 7}
	r := openTest(t, root, "Test.rte/Index.ini", Config{Resolver: resolver})

	if r.PackageName() != "Test.rte" {
		t.Errorf("PackageName() = %q, want Test.rte", r.PackageName())
	}
	if r.PackageID() != 7 {
		t.Errorf("PackageID() = %d, want 7", r.PackageID())
	}
}

type stubResolver map[string]int

func (s stubResolver) PackageID(name string) int {
	if id, ok := s[name]; ok {
		return id
	}
	return -1
}

func TestReaderBlockEndings(t *testing.T) {
	root := t.TempDir()
	writeContent(t, root, "Test.rte/Index.ini",
		"DataModule\n"+
			"\tAddActor = Actor\n"+
			"\t\tPresetName = Grunt\n"+
			"\t\tAddInventory = TerrainObject\n"+
			"\t\t\tPresetName = Crate\n"+
			"\tModuleName = After\n")

	r := openTest(t, root, "Test.rte/Index.ini", Config{})

	if _, err := r.ReadPropValue(); err != nil {
		t.Fatalf("header read failed: %v", err)
	}
	mustProp(t, r, "AddActor", "Actor")
	mustProp(t, r, "PresetName", "Grunt")
	mustProp(t, r, "AddInventory", "TerrainObject")
	mustProp(t, r, "PresetName", "Crate")

	// Dedenting two levels at once must end two blocks, one per call.
	mustEnd(t, r)
	mustEnd(t, r)
	mustProp(t, r, "ModuleName", "After")
	mustEnd(t, r)
}

func TestReaderComments(t *testing.T) {
	root := t.TempDir()
	writeContent(t, root, "Test.rte/Index.ini",
		"DataModule\n"+
			"// a line comment\n"+
			"\tModuleName = Test // trailing comment\n"+
			"/* a block\n"+
			"   comment */\n"+
			"\tAuthor = Someone\n"+
			"\tIconFile = path/with/slashes.png\n")

	r := openTest(t, root, "Test.rte/Index.ini", Config{})

	if _, err := r.ReadPropValue(); err != nil {
		t.Fatalf("header read failed: %v", err)
	}
	mustProp(t, r, "ModuleName", "Test")
	mustProp(t, r, "Author", "Someone")
	// Lone slashes inside a value are data, not comments.
	mustProp(t, r, "IconFile", "path/with/slashes.png")
	mustEnd(t, r)
}

func TestReaderTypedValues(t *testing.T) {
	root := t.TempDir()
	writeContent(t, root, "Test.rte/Index.ini",
		"DataModule\n"+
			"\tVersion = 3\n"+
			"\tDensity = 2.5\n"+
			"\tBuyable = 1\n"+
			"\tBroken = abc\n")

	r := openTest(t, root, "Test.rte/Index.ini", Config{})

	if _, err := r.ReadPropValue(); err != nil {
		t.Fatalf("header read failed: %v", err)
	}

	next := func(want string) {
		t.Helper()
		if ok, err := r.NextProperty(); err != nil || !ok {
			t.Fatalf("NextProperty() = %v, %v", ok, err)
		}
		name, err := r.ReadPropName()
		if err != nil || name != want {
			t.Fatalf("ReadPropName() = %q, %v, want %q", name, err, want)
		}
	}

	next("Version")
	if n, err := r.ReadInt(); err != nil || n != 3 {
		t.Errorf("ReadInt() = %d, %v", n, err)
	}
	next("Density")
	if f, err := r.ReadFloat(); err != nil || f != 2.5 {
		t.Errorf("ReadFloat() = %v, %v", f, err)
	}
	next("Buyable")
	if b, err := r.ReadBool(); err != nil || !b {
		t.Errorf("ReadBool() = %v, %v", b, err)
	}
	next("Broken")
	if _, err := r.ReadInt(); err == nil {
		t.Error("ReadInt() on non-numeric value succeeded")
	} else {
		var serr *SyntaxError
		if !errors.As(err, &serr) {
			t.Errorf("ReadInt() error = %v, want *SyntaxError", err)
		}
	}
}

func TestReaderMalformedProperty(t *testing.T) {
	root := t.TempDir()
	writeContent(t, root, "Test.rte/Index.ini",
		"DataModule\n"+
			"\tNameWithoutValue\n"+
			"\tAuthor = Someone\n")

	r := openTest(t, root, "Test.rte/Index.ini", Config{})

	if _, err := r.ReadPropValue(); err != nil {
		t.Fatalf("header read failed: %v", err)
	}
	if ok, err := r.NextProperty(); err != nil || !ok {
		t.Fatalf("NextProperty() = %v, %v", ok, err)
	}
	_, err := r.ReadPropName()
	if err == nil {
		t.Fatal("ReadPropName() on a value-less name succeeded")
	}
	var serr *SyntaxError
	if !errors.As(err, &serr) {
		t.Fatalf("error = %v, want *SyntaxError", err)
	}
	if serr.Line != 2 {
		t.Errorf("SyntaxError.Line = %d, want 2", serr.Line)
	}
	if serr.Path == "" {
		t.Error("SyntaxError.Path is empty")
	}
}

func TestReaderIncludeTransparency(t *testing.T) {
	root := t.TempDir()
	writeContent(t, root, "Test.rte/Index.ini",
		"DataModule\n"+
			"\tModuleName = Test\n"+
			"\tIncludeFile = Test.rte/More.ini\n"+
			"\tAuthor = After\n")
	writeContent(t, root, "Test.rte/More.ini",
		"AddMaterial = Material\n"+
			"\tPresetName = Stone\n")

	r := openTest(t, root, "Test.rte/Index.ini", Config{})

	if _, err := r.ReadPropValue(); err != nil {
		t.Fatalf("header read failed: %v", err)
	}
	mustProp(t, r, "ModuleName", "Test")
	// The include is spliced in invisibly: its first property comes back
	// from the same ReadPropName call.
	mustProp(t, r, "AddMaterial", "Material")
	mustProp(t, r, "PresetName", "Stone")
	// Returning to the parent ends the material block, then the parent's
	// remaining property follows.
	mustEnd(t, r)
	mustProp(t, r, "Author", "After")
	mustEnd(t, r)
}

func TestReaderNestedIncludes(t *testing.T) {
	root := t.TempDir()
	writeContent(t, root, "Test.rte/Index.ini",
		"DataModule\n"+
			"\tIncludeFile = Test.rte/A.ini\n"+
			"\tAuthor = Done\n")
	writeContent(t, root, "Test.rte/A.ini",
		"ModuleName = FromA\n"+
			"IncludeFile = Test.rte/B.ini\n"+
			"Version = 2\n")
	writeContent(t, root, "Test.rte/B.ini",
		"Description = FromB\n")

	r := openTest(t, root, "Test.rte/Index.ini", Config{})

	if _, err := r.ReadPropValue(); err != nil {
		t.Fatalf("header read failed: %v", err)
	}
	mustProp(t, r, "ModuleName", "FromA")
	mustProp(t, r, "Description", "FromB")
	mustProp(t, r, "Version", "2")
	mustProp(t, r, "Author", "Done")
	mustEnd(t, r)
}

func TestReaderMissingIncludeIsNonFatal(t *testing.T) {
	root := t.TempDir()
	writeContent(t, root, "Test.rte/Index.ini",
		"DataModule\n"+
			"\tIncludeFile = Test.rte/Missing.ini\n"+
			"\tAuthor = Still Here\n")

	var reports []string
	r := openTest(t, root, "Test.rte/Index.ini", Config{
		Progress: func(report string, newFile bool) { reports = append(reports, report) },
	})

	if _, err := r.ReadPropValue(); err != nil {
		t.Fatalf("header read failed: %v", err)
	}
	mustProp(t, r, "Author", "Still Here")
	mustEnd(t, r)

	found := false
	for _, report := range reports {
		if strings.Contains(report, "Missing.ini") {
			found = true
		}
	}
	if !found {
		t.Error("missing include was not reported")
	}
}

func TestReaderSkipIncludes(t *testing.T) {
	root := t.TempDir()
	writeContent(t, root, "Test.rte/Index.ini",
		"DataModule\n"+
			"\tModuleName = Test\n"+
			"\tIncludeFile = Test.rte/More.ini\n"+
			"\tAuthor = After\n")
	writeContent(t, root, "Test.rte/More.ini",
		"Description = Skipped\n")

	r := openTest(t, root, "Test.rte/Index.ini", Config{SkipIncludes: true})

	if _, err := r.ReadPropValue(); err != nil {
		t.Fatalf("header read failed: %v", err)
	}
	mustProp(t, r, "ModuleName", "Test")
	mustProp(t, r, "Author", "After")
	mustEnd(t, r)
}

func TestReaderMissingTopFile(t *testing.T) {
	root := t.TempDir()

	if _, err := Open("Nope.rte/Index.ini", Config{Root: root}); err == nil {
		t.Error("Open() on a missing file succeeded")
	}
	_, err := Open("Nope.rte/Index.ini", Config{Root: root, AllowMissing: true})
	if err == nil {
		t.Fatal("Open() with AllowMissing returned no error for a missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("AllowMissing error = %v, want wrapped not-exist", err)
	}
}

func TestReaderCRLFLineEndings(t *testing.T) {
	root := t.TempDir()
	writeContent(t, root, "Test.rte/Index.ini",
		"DataModule\r\n"+
			"\tModuleName = Windows Authored\r\n"+
			"\tVersion = 1\r\n")

	r := openTest(t, root, "Test.rte/Index.ini", Config{})

	if _, err := r.ReadPropValue(); err != nil {
		t.Fatalf("header read failed: %v", err)
	}
	mustProp(t, r, "ModuleName", "Windows Authored")
	mustProp(t, r, "Version", "1")
	if r.CurrentLine() != 3 {
		t.Errorf("CurrentLine() = %d, want 3", r.CurrentLine())
	}
}
