package storage

import (
	"path/filepath"
	"testing"

	"github.com/akivaschiff/israel-geolocation/internal"
	"github.com/akivaschiff/israel-geolocation/internal/util"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestReplaceLocationsPreservesOrder(t *testing.T) {
	db := openTestDB(t)

	locations := []internal.ResolvedLocation{
		{ID: 3000, Name: "ירושלים", Lat: 31.77, Lon: 35.21, Population: util.IntPtr(936425)},
		{ID: 5000, Name: "תל אביב-יפו", Lat: 32.08, Lon: 34.78, Population: util.IntPtr(460613)},
		{ID: 42, Name: "ללא אוכלוסייה", Lat: 31.0, Lon: 35.0},
	}
	if err := db.ReplaceLocations(locations); err != nil {
		t.Fatal(err)
	}

	got, err := db.ListLocations()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("len=%d want 3", len(got))
	}
	for i := range locations {
		if got[i].ID != locations[i].ID {
			t.Fatalf("order not preserved at %d: got id=%d want %d", i, got[i].ID, locations[i].ID)
		}
	}
	if got[2].Population != nil {
		t.Fatalf("nil population must round-trip as nil: %+v", got[2])
	}

	// A second replace must fully supersede the first.
	if err := db.ReplaceLocations(locations[:1]); err != nil {
		t.Fatal(err)
	}
	got, err = db.ListLocations()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != 3000 {
		t.Fatalf("replace left stale rows: %+v", got)
	}
}

func TestUnmatchedQueue(t *testing.T) {
	db := openTestDB(t)

	records := []internal.UnmatchedRecord{
		{RegistryCode: 966, HebrewName: "שבט אבו רובייעה"},
		{RegistryCode: 42, HebrewName: "יישוב", EnglishName: util.StringPtr("YISHUV")},
	}
	if err := db.ReplaceUnmatched(records); err != nil {
		t.Fatal(err)
	}

	got, err := db.ListUnmatched()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].RegistryCode != 42 {
		t.Fatalf("unexpected queue: %+v", got)
	}
	if got[0].EnglishName == nil || *got[0].EnglishName != "YISHUV" {
		t.Fatalf("english name lost: %+v", got[0])
	}

	if err := db.DeleteUnmatched([]int{42}); err != nil {
		t.Fatal(err)
	}
	got, err = db.ListUnmatched()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].RegistryCode != 966 {
		t.Fatalf("delete removed the wrong record: %+v", got)
	}
}

func TestMetadata(t *testing.T) {
	db := openTestDB(t)

	if value, err := db.GetMetadata("missing"); err != nil || value != nil {
		t.Fatalf("missing key: value=%v err=%v", value, err)
	}

	if err := db.SetMetadata("pipeline.last_reconcile", "2026-01-01T00:00:00Z"); err != nil {
		t.Fatal(err)
	}
	if err := db.SetMetadata("pipeline.last_reconcile", "2026-02-01T00:00:00Z"); err != nil {
		t.Fatal(err)
	}

	value, err := db.GetMetadata("pipeline.last_reconcile")
	if err != nil {
		t.Fatal(err)
	}
	if value == nil || *value != "2026-02-01T00:00:00Z" {
		t.Fatalf("upsert did not overwrite: %v", value)
	}
}
