// Package geodata loads the secondary geo dataset (an Overpass-style
// bulk extract) and builds the name lookup index used by reconciliation.
package geodata

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/akivaschiff/israel-geolocation/internal"
	"github.com/akivaschiff/israel-geolocation/internal/util"
)

type extractFile struct {
	Elements []extractElement `json:"elements"`
}

type extractElement struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    *float64          `json:"lat"`
	Lon    *float64          `json:"lon"`
	Center *extractCenter    `json:"center"`
	Tags   map[string]string `json:"tags"`
}

type extractCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// LoadExtract reads a bulk geo extract from disk. Nodes carry lat/lon
// directly; ways and relations carry a precomputed center. Elements
// missing a name or coordinates are skipped with a warning, never fatal.
func LoadExtract(path string) ([]internal.GeoRecord, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read geo extract: %w", err)
	}
	return ParseExtract(blob)
}

// ParseExtract decodes extract JSON into GeoRecords, preserving element
// order. Index construction depends on that order (first writer wins).
func ParseExtract(blob []byte) ([]internal.GeoRecord, error) {
	var file extractFile
	if err := json.Unmarshal(blob, &file); err != nil {
		return nil, fmt.Errorf("parse geo extract: %w", err)
	}

	out := make([]internal.GeoRecord, 0, len(file.Elements))
	skipped := 0
	for _, el := range file.Elements {
		record, ok := toGeoRecord(el)
		if !ok {
			skipped++
			continue
		}
		out = append(out, record)
	}

	if skipped > 0 {
		log.Warn().Int("skipped", skipped).Int("loaded", len(out)).Msg("geo extract had unusable elements")
	}
	return out, nil
}

func toGeoRecord(el extractElement) (internal.GeoRecord, bool) {
	name := strings.TrimSpace(el.Tags["name"])
	if name == "" {
		name = strings.TrimSpace(el.Tags["name:he"])
	}
	if name == "" {
		return internal.GeoRecord{}, false
	}

	var lat, lon float64
	switch {
	case el.Lat != nil && el.Lon != nil:
		lat, lon = *el.Lat, *el.Lon
	case el.Center != nil:
		lat, lon = el.Center.Lat, el.Center.Lon
	default:
		return internal.GeoRecord{}, false
	}

	record := internal.GeoRecord{
		ID:          el.ID,
		DisplayName: name,
		Lat:         lat,
		Lon:         lon,
	}
	if alias := strings.TrimSpace(el.Tags["name:en"]); alias != "" {
		record.EnglishAlias = util.StringPtr(alias)
	}
	return record, true
}
