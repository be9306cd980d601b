package pipeline

import (
	"strings"

	"github.com/akivaschiff/israel-geolocation/internal"
	"github.com/akivaschiff/israel-geolocation/internal/geodata"
	"github.com/akivaschiff/israel-geolocation/internal/util"
)

// ReconcileResult carries both output sets plus the count of registry
// rows that had no name in either language and were skipped outright.
type ReconcileResult struct {
	Resolved  []internal.ResolvedLocation
	Unmatched []internal.UnmatchedRecord
	Skipped   int
}

// Reconcile attempts to resolve every registry record against the geo
// index, trying the manual, exact-Hebrew and exact-English tiers in that
// order and stopping at the first hit. Pure and deterministic: no
// network, no randomness, identical inputs give identical outputs.
func Reconcile(records []internal.RegistryRecord, index *geodata.Index, overrides internal.Overrides) ReconcileResult {
	result := ReconcileResult{
		Resolved:  make([]internal.ResolvedLocation, 0, len(records)),
		Unmatched: make([]internal.UnmatchedRecord, 0),
	}

	for _, record := range records {
		hebrew := strings.TrimSpace(record.HebrewName)
		english := ""
		if record.EnglishName != nil {
			english = strings.TrimSpace(*record.EnglishName)
		}
		if hebrew == "" && english == "" {
			result.Skipped++
			continue
		}

		if geo, tier, ok := match(hebrew, english, index, overrides); ok {
			result.Resolved = append(result.Resolved, resolve(record, geo, tier))
			continue
		}

		unmatched := internal.UnmatchedRecord{
			HebrewName:   hebrew,
			RegistryCode: record.RegistryCode,
		}
		if english != "" {
			unmatched.EnglishName = util.StringPtr(english)
		}
		result.Unmatched = append(result.Unmatched, unmatched)
	}

	return result
}

func match(hebrew, english string, index *geodata.Index, overrides internal.Overrides) (internal.GeoRecord, internal.MatchTier, bool) {
	if target, ok := overrides[hebrew]; ok {
		if geo, found := index.Get(util.NormalizeName(target)); found {
			return geo, internal.TierManual, true
		}
		if geo, found := index.Get(strings.TrimSpace(target)); found {
			return geo, internal.TierManual, true
		}
	}

	if hebrew != "" {
		if geo, found := index.Get(util.NormalizeName(hebrew)); found {
			return geo, internal.TierExactHebrew, true
		}
	}

	if english != "" {
		if geo, found := index.Get(util.NormalizeName(english)); found {
			return geo, internal.TierExactEnglish, true
		}
	}

	return internal.GeoRecord{}, "", false
}

func resolve(record internal.RegistryRecord, geo internal.GeoRecord, tier internal.MatchTier) internal.ResolvedLocation {
	id := int64(record.RegistryCode)
	if record.RegistryCode == 0 {
		id = geo.ID
	}

	return internal.ResolvedLocation{
		ID:         id,
		Name:       strings.TrimSpace(record.HebrewName),
		NameEn:     record.EnglishName,
		Lat:        geo.Lat,
		Lon:        geo.Lon,
		Population: record.Population,
		District:   record.District,
		Type:       record.Type,
		MatchTier:  tier,
	}
}
