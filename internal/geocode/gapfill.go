package geocode

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/akivaschiff/israel-geolocation/internal"
)

// RecordState is the terminal state of one unmatched record. Every
// record transitions from pending to exactly one of these in a single
// gap-filler pass.
type RecordState string

const (
	StateSkipped  RecordState = "SKIPPED"
	StateResolved RecordState = "RESOLVED"
	StateFailed   RecordState = "FAILED"
)

// Report is the outcome of one gap-filler pass. Aborted is set when a
// quota-exceeded response halted the remaining queue; everything
// accumulated up to that point is still valid and must be persisted.
type Report struct {
	Timestamp  time.Time                   `json:"timestamp"`
	Successful []internal.ResolvedLocation `json:"successful"`
	Failed     []internal.GeocodeFailure   `json:"failed"`
	Skipped    []internal.UnmatchedRecord  `json:"skipped"`
	Aborted    bool                        `json:"aborted"`
}

// Counts summarizes the report for run bookkeeping.
func (r Report) Counts() map[string]int {
	return map[string]int{
		"successful": len(r.Successful),
		"failed":     len(r.Failed),
		"skipped":    len(r.Skipped),
	}
}

// GapFiller walks the unmatched queue strictly sequentially, skipping
// names on the denylist without a network call and geocoding the rest.
type GapFiller struct {
	geocoder Geocoder
	denylist []string
}

func NewGapFiller(geocoder Geocoder, denylist []string) *GapFiller {
	return &GapFiller{geocoder: geocoder, denylist: denylist}
}

// Run processes the queue until it is exhausted or the provider reports
// quota exhaustion. Failures are recorded per record and do not stop
// the pass; the failing records stay queued for the next run.
func (g *GapFiller) Run(ctx context.Context, queue []internal.UnmatchedRecord) (Report, error) {
	report := Report{Timestamp: time.Now().UTC()}

	for _, record := range queue {
		if g.denied(record.HebrewName) {
			report.Skipped = append(report.Skipped, record)
			continue
		}

		outcome, err := g.geocoder.Geocode(ctx, bestName(record))
		if err != nil {
			return report, err
		}

		switch outcome.Status {
		case internal.GeocodeOK:
			report.Successful = append(report.Successful, internal.ResolvedLocation{
				ID:        int64(record.RegistryCode),
				Name:      record.HebrewName,
				NameEn:    record.EnglishName,
				Lat:       outcome.Lat,
				Lon:       outcome.Lon,
				MatchTier: internal.TierGeocoded,
			})
		case internal.GeocodeQuotaExceeded:
			report.Failed = append(report.Failed, internal.GeocodeFailure{
				Record: record,
				Status: outcome.Status,
				Reason: outcome.Message,
			})
			report.Aborted = true
			log.Warn().Str("name", record.HebrewName).Msg("geocoder quota exceeded, aborting remaining queue")
			return report, nil
		default:
			report.Failed = append(report.Failed, internal.GeocodeFailure{
				Record: record,
				Status: outcome.Status,
				Reason: outcome.Message,
			})
		}
	}

	return report, nil
}

func (g *GapFiller) denied(name string) bool {
	for _, pattern := range g.denylist {
		if pattern == "" {
			continue
		}
		if name == pattern || strings.Contains(name, pattern) {
			return true
		}
	}
	return false
}

// bestName prefers the Hebrew name, which the geocoder resolves far
// more reliably for local settlements.
func bestName(record internal.UnmatchedRecord) string {
	if strings.TrimSpace(record.HebrewName) != "" {
		return record.HebrewName
	}
	if record.EnglishName != nil {
		return *record.EnglishName
	}
	return ""
}
