package geodata

import (
	"strings"

	"github.com/akivaschiff/israel-geolocation/internal"
	"github.com/akivaschiff/israel-geolocation/internal/util"
)

// Index maps name variants to geo records. Up to three keys per record:
// normalized Hebrew name, raw trimmed Hebrew name, normalized English
// alias. A key is written at most once; earlier records in extract
// order win, which privileges the larger, more canonical entries the
// extract lists first. Read-only after construction.
type Index struct {
	byKey map[string]internal.GeoRecord
	names []string
}

func BuildIndex(records []internal.GeoRecord) *Index {
	idx := &Index{byKey: make(map[string]internal.GeoRecord, len(records)*2)}

	for _, r := range records {
		idx.add(util.NormalizeName(r.DisplayName), r)
		idx.add(strings.TrimSpace(r.DisplayName), r)
		if r.EnglishAlias != nil {
			idx.add(util.NormalizeName(*r.EnglishAlias), r)
		}
		idx.names = append(idx.names, r.DisplayName)
	}

	return idx
}

func (idx *Index) add(key string, record internal.GeoRecord) {
	if key == "" {
		return
	}
	if _, exists := idx.byKey[key]; exists {
		return
	}
	idx.byKey[key] = record
}

func (idx *Index) Get(key string) (internal.GeoRecord, bool) {
	record, ok := idx.byKey[key]
	return record, ok
}

// Len reports how many distinct keys the index holds.
func (idx *Index) Len() int {
	return len(idx.byKey)
}

// Names returns the display names of all indexed records in extract
// order. The manual-review export ranks these by edit distance.
func (idx *Index) Names() []string {
	return idx.names
}
