package pipeline

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overrides.json")
	blob := `{"נוף הגליל": "נצרת עילית", "מעלות-תרשיחא": "מעלות תרשיחא"}`
	if err := os.WriteFile(path, []byte(blob), 0o644); err != nil {
		t.Fatal(err)
	}

	overrides, err := LoadOverrides(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(overrides) != 2 {
		t.Fatalf("len=%d want 2", len(overrides))
	}
	if overrides["נוף הגליל"] != "נצרת עילית" {
		t.Fatalf("unexpected mapping: %+v", overrides)
	}
}

func TestLoadOverridesMissingFileIsEmpty(t *testing.T) {
	overrides, err := LoadOverrides(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatal(err)
	}
	if len(overrides) != 0 {
		t.Fatalf("expected empty overrides, got %+v", overrides)
	}
}

func TestLoadOverridesMalformedIsFatal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overrides.json")
	if err := os.WriteFile(path, []byte(`{"a": `), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadOverrides(path); err == nil {
		t.Fatal("malformed overrides must be a hard failure")
	}
}

func TestLoadDenylist(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "denylist.txt")
	blob := "# tribal designations never geocode\nשבט\n\nמאוכלס בחלקו\n"
	if err := os.WriteFile(path, []byte(blob), 0o644); err != nil {
		t.Fatal(err)
	}

	denylist, err := LoadDenylist(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(denylist) != 2 {
		t.Fatalf("len=%d want 2: %+v", len(denylist), denylist)
	}
	if denylist[0] != "שבט" || denylist[1] != "מאוכלס בחלקו" {
		t.Fatalf("order not preserved: %+v", denylist)
	}
}

func TestLoadDenylistMissingFileIsEmpty(t *testing.T) {
	denylist, err := LoadDenylist(filepath.Join(t.TempDir(), "absent.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if denylist != nil {
		t.Fatalf("expected nil denylist, got %+v", denylist)
	}
}
