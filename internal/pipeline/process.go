package pipeline

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/akivaschiff/israel-geolocation/internal"
	"github.com/akivaschiff/israel-geolocation/internal/config"
	"github.com/akivaschiff/israel-geolocation/internal/geocode"
	"github.com/akivaschiff/israel-geolocation/internal/geodata"
	"github.com/akivaschiff/israel-geolocation/internal/registry"
	"github.com/akivaschiff/israel-geolocation/internal/storage"
)

// Service orchestrates the offline pipeline stages against the store.
type Service struct {
	db  *storage.DB
	cfg config.Config
}

func NewService(db *storage.DB, cfg config.Config) *Service {
	return &Service{db: db, cfg: cfg}
}

type ReconcileSummary struct {
	Registry  int
	Matched   int
	Unmatched int
	Skipped   int
	Total     int
}

// RunReconcile fetches the registry (from the datastore API, or from a
// local workbook when registryXLSX is set), matches it against the geo
// extract, merges with the previously persisted set and stores the
// result plus the fresh unmatched queue.
func (s *Service) RunReconcile(ctx context.Context, geodataPath, registryXLSX string) (ReconcileSummary, error) {
	start := time.Now()

	var records []internal.RegistryRecord
	var err error
	if registryXLSX != "" {
		records, err = registry.LoadXLSX(registryXLSX)
	} else {
		records, err = registry.NewClient(s.cfg).FetchAll(ctx)
	}
	if err != nil {
		return ReconcileSummary{}, err
	}

	geoRecords, err := geodata.LoadExtract(geodataPath)
	if err != nil {
		return ReconcileSummary{}, err
	}
	index := geodata.BuildIndex(geoRecords)

	overrides, err := LoadOverrides(s.cfg.OverridesPath)
	if err != nil {
		return ReconcileSummary{}, err
	}

	result := Reconcile(records, index, overrides)

	prior, err := s.db.ListLocations()
	if err != nil {
		return ReconcileSummary{}, err
	}
	merged := MergeAndSort(result.Resolved, prior)

	if err := s.db.ReplaceLocations(merged); err != nil {
		return ReconcileSummary{}, err
	}
	if err := s.db.ReplaceUnmatched(result.Unmatched); err != nil {
		return ReconcileSummary{}, err
	}

	tiers := map[internal.MatchTier]int{}
	for _, r := range result.Resolved {
		tiers[r.MatchTier]++
	}
	log.Info().
		Int("registry", len(records)).
		Int("indexKeys", index.Len()).
		Int("matched", len(result.Resolved)).
		Int("unmatched", len(result.Unmatched)).
		Int("manual", tiers[internal.TierManual]).
		Int("exactHebrew", tiers[internal.TierExactHebrew]).
		Int("exactEnglish", tiers[internal.TierExactEnglish]).
		Msg("reconcile complete")

	counts := map[string]int{
		"registry":  len(records),
		"matched":   len(result.Resolved),
		"unmatched": len(result.Unmatched),
		"skipped":   result.Skipped,
		"total":     len(merged),
	}
	timings := map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())}
	if err := s.db.InsertRun(traceID(), "reconcile", counts, timings); err != nil {
		return ReconcileSummary{}, err
	}
	_ = s.db.SetMetadata("pipeline.last_reconcile", ReportTimestamp(time.Now()))

	return ReconcileSummary{
		Registry:  len(records),
		Matched:   len(result.Resolved),
		Unmatched: len(result.Unmatched),
		Skipped:   result.Skipped,
		Total:     len(merged),
	}, nil
}

// RunGeocode resumes from the persisted unmatched queue, geocodes what
// it can and folds the successes into the stored resolved set. A quota
// abort is not an error: everything accumulated so far is persisted and
// the rest of the queue stays put for the next run.
func (s *Service) RunGeocode(ctx context.Context, geocoder geocode.Geocoder) (geocode.Report, error) {
	start := time.Now()

	queue, err := s.db.ListUnmatched()
	if err != nil {
		return geocode.Report{}, err
	}
	denylist, err := LoadDenylist(s.cfg.DenylistPath)
	if err != nil {
		return geocode.Report{}, err
	}

	report, err := geocode.NewGapFiller(geocoder, denylist).Run(ctx, queue)
	if err != nil {
		return report, err
	}

	if len(report.Successful) > 0 {
		prior, err := s.db.ListLocations()
		if err != nil {
			return report, err
		}
		if err := s.db.ReplaceLocations(MergeAndSort(report.Successful, prior)); err != nil {
			return report, err
		}

		resolvedCodes := make([]int, 0, len(report.Successful))
		for _, l := range report.Successful {
			resolvedCodes = append(resolvedCodes, int(l.ID))
		}
		if err := s.db.DeleteUnmatched(resolvedCodes); err != nil {
			return report, err
		}
	}

	reportPath, err := WriteGeocodeReport(report, s.cfg.OutputDir)
	if err != nil {
		return report, err
	}

	log.Info().
		Int("successful", len(report.Successful)).
		Int("failed", len(report.Failed)).
		Int("skipped", len(report.Skipped)).
		Bool("aborted", report.Aborted).
		Str("report", reportPath).
		Msg("geocode pass complete")

	timings := map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())}
	if err := s.db.InsertRun(traceID(), "geocode", report.Counts(), timings); err != nil {
		return report, err
	}
	_ = s.db.SetMetadata("pipeline.last_geocode", ReportTimestamp(time.Now()))

	return report, nil
}

// ExportDataset writes the published dataset and the unmatched-towns
// report from the store.
func (s *Service) ExportDataset(outDir string) (string, string, error) {
	locations, err := s.db.ListLocations()
	if err != nil {
		return "", "", err
	}
	unmatched, err := s.db.ListUnmatched()
	if err != nil {
		return "", "", err
	}

	datasetPath := filepath.Join(outDir, "dataset.json")
	if err := WriteDataset(locations, datasetPath); err != nil {
		return "", "", err
	}
	unmatchedPath := filepath.Join(outDir, "unmatched.json")
	if err := WriteUnmatchedReport(unmatched, unmatchedPath); err != nil {
		return "", "", err
	}

	return datasetPath, unmatchedPath, nil
}

// ExportReview builds the manual-review workbook for the current
// unmatched queue against a geo extract.
func (s *Service) ExportReview(geodataPath, outputPath string) (int, error) {
	unmatched, err := s.db.ListUnmatched()
	if err != nil {
		return 0, err
	}

	geoRecords, err := geodata.LoadExtract(geodataPath)
	if err != nil {
		return 0, err
	}
	index := geodata.BuildIndex(geoRecords)

	if err := ExportReviewXLSX(unmatched, index, s.cfg.SimilarityThreshold, outputPath); err != nil {
		return 0, err
	}
	return len(unmatched), nil
}

func traceID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
