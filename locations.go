// Package israelgeo exposes the published resolved-location dataset for
// lookup. It is a thin read-only layer over the array the offline
// pipeline produces: a handful of linear scans, no state beyond the
// loaded slice.
package israelgeo

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/akivaschiff/israel-geolocation/internal/util"
)

// Location is one entry of the published dataset.
type Location struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	NameEn     *string `json:"nameEn,omitempty"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Population *int    `json:"population,omitempty"`
	District   *string `json:"district,omitempty"`
	Type       *string `json:"type,omitempty"`
}

// Locale selects which name field a search scans.
type Locale string

const (
	LocaleHebrew  Locale = "he"
	LocaleEnglish Locale = "en"
)

// Dataset wraps a loaded resolved-location array.
type Dataset struct {
	locations []Location
}

// New wraps an already-loaded array. The slice is used as-is; callers
// must not mutate it afterwards.
func New(locations []Location) *Dataset {
	return &Dataset{locations: locations}
}

// Load reads a dataset JSON file produced by the pipeline.
func Load(path string) (*Dataset, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	var locations []Location
	if err := json.Unmarshal(blob, &locations); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	return New(locations), nil
}

// Len reports the number of locations in the dataset.
func (d *Dataset) Len() int {
	return len(d.locations)
}

// All returns the locations in published order.
func (d *Dataset) All() []Location {
	return d.locations
}

// GetByID returns the location with the given id.
func (d *Dataset) GetByID(id int64) (Location, bool) {
	for _, l := range d.locations {
		if l.ID == id {
			return l, true
		}
	}
	return Location{}, false
}

// GetByName returns the first location whose Hebrew or English name
// equals the query after normalization.
func (d *Dataset) GetByName(name string) (Location, bool) {
	key := util.NormalizeName(name)
	if key == "" {
		return Location{}, false
	}

	for _, l := range d.locations {
		if util.NormalizeName(l.Name) == key {
			return l, true
		}
		if l.NameEn != nil && util.NormalizeName(*l.NameEn) == key {
			return l, true
		}
	}
	return Location{}, false
}

// SearchByName returns every location whose name in the given locale
// contains the query as a substring, in published order.
func (d *Dataset) SearchByName(query string, locale Locale) []Location {
	key := util.NormalizeName(query)
	if key == "" {
		return nil
	}

	var out []Location
	for _, l := range d.locations {
		var name string
		switch locale {
		case LocaleEnglish:
			if l.NameEn == nil {
				continue
			}
			name = *l.NameEn
		default:
			name = l.Name
		}
		if strings.Contains(util.NormalizeName(name), key) {
			out = append(out, l)
		}
	}
	return out
}

// FindNearest returns up to limit locations ranked by ascending
// Euclidean distance from the given coordinate. Good enough at country
// scale; this deliberately does not correct for latitude.
func (d *Dataset) FindNearest(lat, lon float64, limit int) []Location {
	if limit <= 0 || len(d.locations) == 0 {
		return nil
	}

	type ranked struct {
		location Location
		distance float64
	}

	out := make([]ranked, 0, len(d.locations))
	for _, l := range d.locations {
		dLat := l.Lat - lat
		dLon := l.Lon - lon
		out = append(out, ranked{location: l, distance: math.Sqrt(dLat*dLat + dLon*dLon)})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].distance < out[j].distance })
	if len(out) > limit {
		out = out[:limit]
	}

	locations := make([]Location, 0, len(out))
	for _, r := range out {
		locations = append(locations, r.location)
	}
	return locations
}
