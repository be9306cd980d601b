package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/akivaschiff/israel-geolocation/internal"
	"github.com/akivaschiff/israel-geolocation/internal/geocode"
	"github.com/akivaschiff/israel-geolocation/internal/geodata"
	"github.com/akivaschiff/israel-geolocation/internal/util"
)

// WriteDataset persists the published artifact: the resolved-location
// array in its final order. Write failures are fatal to the run.
func WriteDataset(locations []internal.ResolvedLocation, path string) error {
	return writeJSON(locations, path)
}

// WriteUnmatchedReport persists the towns still lacking coordinates so
// the next geocoding pass can resume from it.
func WriteUnmatchedReport(unmatched []internal.UnmatchedRecord, path string) error {
	return writeJSON(unmatched, path)
}

// WriteGeocodeReport persists one gap-filler pass for auditing:
// timestamp, summary counts, then the full per-record lists.
func WriteGeocodeReport(report geocode.Report, outputDir string) (string, error) {
	payload := struct {
		Timestamp time.Time      `json:"timestamp"`
		Counts    map[string]int `json:"counts"`
		geocode.Report
	}{
		Timestamp: report.Timestamp,
		Counts:    report.Counts(),
		Report:    report,
	}

	name := fmt.Sprintf("geocode-report-%s.json", report.Timestamp.Format("20060102-150405"))
	path := filepath.Join(outputDir, name)
	if err := writeJSON(payload, path); err != nil {
		return "", err
	}
	return path, nil
}

func writeJSON(v any, path string) error {
	blob, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

type suggestion struct {
	name     string
	distance int
}

// ExportReviewXLSX writes a workbook of unmatched registry entries, each
// with up to three edit-distance-ranked geo-dataset names. This is the
// manual-review aid behind the curated overrides file; the suggestions
// are deliberately not applied automatically.
func ExportReviewXLSX(unmatched []internal.UnmatchedRecord, index *geodata.Index, threshold int, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{
		"registry_code", "hebrew_name", "english_name",
		"suggestion1", "distance1", "suggestion2", "distance2", "suggestion3", "distance3",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, record := range unmatched {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, record.RegistryCode)
		set(2, record.HebrewName)
		if record.EnglishName != nil {
			set(3, *record.EnglishName)
		}

		col := 4
		for _, s := range suggest(record.HebrewName, index.Names(), threshold) {
			set(col, s.name)
			set(col+1, s.distance)
			col += 2
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("write %s: %w", outputPath, err)
	}
	return f.SaveAs(outputPath)
}

func suggest(name string, candidates []string, threshold int) []suggestion {
	if name == "" {
		return nil
	}

	normalized := util.NormalizeName(name)
	out := make([]suggestion, 0, 8)
	for _, candidate := range candidates {
		if !util.Similar(normalized, candidate, threshold) {
			continue
		}
		out = append(out, suggestion{
			name:     candidate,
			distance: util.EditDistance(normalized, util.NormalizeName(candidate)),
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].distance < out[j].distance })
	if len(out) > 3 {
		out = out[:3]
	}
	return out
}

// ReportTimestamp formats the canonical report timestamp once, so run
// rows and file names agree.
func ReportTimestamp(ts time.Time) string {
	return ts.UTC().Format(time.RFC3339)
}
