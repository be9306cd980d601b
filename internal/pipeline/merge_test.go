package pipeline

import (
	"testing"

	"github.com/akivaschiff/israel-geolocation/internal"
	"github.com/akivaschiff/israel-geolocation/internal/util"
)

func TestMergeAndSortDedupAndOrder(t *testing.T) {
	newResolved := []internal.ResolvedLocation{
		{ID: 1, Name: "א", Population: util.IntPtr(100), MatchTier: internal.TierExactHebrew},
	}
	prior := []internal.ResolvedLocation{
		{ID: 1, Name: "א ישן", Population: util.IntPtr(999)},
		{ID: 2, Name: "ב", Population: util.IntPtr(50)},
	}

	merged := MergeAndSort(newResolved, prior)

	if len(merged) != 2 {
		t.Fatalf("len=%d want 2", len(merged))
	}
	if merged[0].ID != 1 || *merged[0].Population != 100 {
		t.Fatalf("duplicate must resolve to the first list's record: %+v", merged[0])
	}
	if merged[0].Name != "א" {
		t.Fatalf("stale prior fields leaked into the merged record: %+v", merged[0])
	}
	if merged[1].ID != 2 {
		t.Fatalf("unexpected second record: %+v", merged[1])
	}
	if merged[0].MatchTier != "" {
		t.Fatalf("transient tier must be stripped: %+v", merged[0])
	}
}

func TestMergeAndSortMissingPopulationLast(t *testing.T) {
	newResolved := []internal.ResolvedLocation{
		{ID: 1, Name: "ללא אוכלוסייה"},
		{ID: 2, Name: "קטן", Population: util.IntPtr(10)},
		{ID: 3, Name: "גדול", Population: util.IntPtr(100000)},
		{ID: 4, Name: "גם ללא"},
	}

	merged := MergeAndSort(newResolved, nil)

	wantOrder := []int64{3, 2, 1, 4}
	for i, want := range wantOrder {
		if merged[i].ID != want {
			t.Fatalf("position %d: got id=%d want %d", i, merged[i].ID, want)
		}
	}
}
