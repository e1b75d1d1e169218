package pattern

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/printvault/printvault/types"
)

func mkdirs(t *testing.T, root string, dirs ...string) {
	t.Helper()
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(root, filepath.FromSlash(d)), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", d, err)
		}
	}
}

func mustParse(t *testing.T, template string) []Segment {
	t.Helper()
	segments, err := Parse(template)
	if err != nil {
		t.Fatalf("Parse(%q): %v", template, err)
	}
	return segments
}

func modelNames(models []types.DiscoveredModel) []string {
	names := make([]string, len(models))
	for i, m := range models {
		names[i] = m.Name
	}
	sort.Strings(names)
	return names
}

func findModel(models []types.DiscoveredModel, name string) *types.DiscoveredModel {
	for i := range models {
		if models[i].Name == name {
			return &models[i]
		}
	}
	return nil
}

func TestWalk_ModelOnly(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "Benchy", "VoronParts", ".hidden")
	// A plain file at the root is not a model candidate.
	if err := os.WriteFile(filepath.Join(root, "stray.stl"), []byte("solid"), 0o644); err != nil {
		t.Fatal(err)
	}

	models := Walk(root, mustParse(t, "{model}"))

	got := modelNames(models)
	want := []string{"Benchy", "VoronParts"}
	if len(got) != len(want) {
		t.Fatalf("model names = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("model names = %v, want %v", got, want)
		}
	}

	for _, m := range models {
		if m.CollectionName != nil {
			t.Errorf("model %s has collection %q, want nil", m.Name, *m.CollectionName)
		}
		if len(m.Metadata) != 0 {
			t.Errorf("model %s has metadata %v, want empty", m.Name, m.Metadata)
		}
		if !filepath.IsAbs(m.SourcePath) {
			t.Errorf("SourcePath %q is not absolute", m.SourcePath)
		}
	}
}

func TestWalk_MetadataBranchesIndependent(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "Lychee/Benchy", "Prusa/VoronParts")

	models := Walk(root, mustParse(t, "{metadata.artist}/{model}"))
	if len(models) != 2 {
		t.Fatalf("len(models) = %d, want 2", len(models))
	}

	benchy := findModel(models, "Benchy")
	voron := findModel(models, "VoronParts")
	if benchy == nil || voron == nil {
		t.Fatalf("missing expected models, got %v", modelNames(models))
	}

	if benchy.Metadata["artist"] != "Lychee" {
		t.Errorf("Benchy artist = %q, want Lychee", benchy.Metadata["artist"])
	}
	if voron.Metadata["artist"] != "Prusa" {
		t.Errorf("VoronParts artist = %q, want Prusa", voron.Metadata["artist"])
	}
	if len(benchy.Metadata) != 1 || len(voron.Metadata) != 1 {
		t.Errorf("metadata maps leaked keys: %v / %v", benchy.Metadata, voron.Metadata)
	}

	// Mutating one result must not affect the other.
	benchy.Metadata["artist"] = "changed"
	if voron.Metadata["artist"] != "Prusa" {
		t.Error("sibling metadata maps share storage")
	}
}

func TestWalk_CollectionAndMetadata(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root,
		"Calibration/cc0/Benchy",
		"Calibration/cc0/CalibrationCube",
		"Props/mit/Sword",
	)

	models := Walk(root, mustParse(t, "{Collection}/{metadata.license}/{model}"))
	if len(models) != 3 {
		t.Fatalf("len(models) = %d, want 3", len(models))
	}

	sword := findModel(models, "Sword")
	if sword == nil {
		t.Fatal("Sword not discovered")
	}
	if sword.CollectionName == nil || *sword.CollectionName != "Props" {
		t.Errorf("Sword collection = %v, want Props", sword.CollectionName)
	}
	if sword.Metadata["license"] != "mit" {
		t.Errorf("Sword license = %q, want mit", sword.Metadata["license"])
	}
}

func TestWalk_ModelMatchTerminatesDescent(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "Benchy/files", "Benchy/images")

	models := Walk(root, mustParse(t, "{model}"))
	if len(models) != 1 {
		t.Fatalf("len(models) = %d, want 1 (nested dirs are model content)", len(models))
	}
	if models[0].Name != "Benchy" {
		t.Errorf("Name = %q, want Benchy", models[0].Name)
	}
}

func TestWalk_EmptyAndMissingRoots(t *testing.T) {
	// Files only, no subdirectories.
	flat := t.TempDir()
	if err := os.WriteFile(filepath.Join(flat, "a.stl"), []byte("solid"), 0o644); err != nil {
		t.Fatal(err)
	}
	if models := Walk(flat, mustParse(t, "{model}")); len(models) != 0 {
		t.Errorf("flat dir yielded %d models, want 0", len(models))
	}

	// Non-existent root.
	missing := filepath.Join(t.TempDir(), "does-not-exist")
	if models := Walk(missing, mustParse(t, "{model}")); len(models) != 0 {
		t.Errorf("missing root yielded %d models, want 0", len(models))
	}

	// Pattern deeper than the tree.
	shallow := t.TempDir()
	mkdirs(t, shallow, "OnlyLevel")
	if models := Walk(shallow, mustParse(t, "{Collection}/{metadata.a}/{model}")); len(models) != 0 {
		t.Errorf("shallow tree yielded %d models, want 0", len(models))
	}
}
