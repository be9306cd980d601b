package pipeline

import (
	"sort"

	"github.com/akivaschiff/israel-geolocation/internal"
)

// MergeAndSort combines freshly resolved records with the previously
// persisted set. Duplicate IDs collapse to the first occurrence: new
// records win over prior ones and no field-level merging is attempted.
// The result is stably sorted by population, descending, with records
// lacking a population treated as zero. Transient match-tier metadata
// is cleared.
//
// First-occurrence-wins is long-standing observed behavior; do not
// change it to last-wins without product sign-off.
func MergeAndSort(newResolved, priorResolved []internal.ResolvedLocation) []internal.ResolvedLocation {
	merged := make([]internal.ResolvedLocation, 0, len(newResolved)+len(priorResolved))
	seen := make(map[int64]struct{}, len(newResolved)+len(priorResolved))

	for _, location := range append(append([]internal.ResolvedLocation{}, newResolved...), priorResolved...) {
		if _, dup := seen[location.ID]; dup {
			continue
		}
		seen[location.ID] = struct{}{}
		location.MatchTier = ""
		merged = append(merged, location)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return populationOf(merged[i]) > populationOf(merged[j])
	})

	return merged
}

func populationOf(location internal.ResolvedLocation) int {
	if location.Population == nil {
		return 0
	}
	return *location.Population
}
