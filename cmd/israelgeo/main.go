package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/akivaschiff/israel-geolocation/internal/config"
	"github.com/akivaschiff/israel-geolocation/internal/geocode"
	"github.com/akivaschiff/israel-geolocation/internal/pipeline"
	"github.com/akivaschiff/israel-geolocation/internal/storage"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()

	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	svc := pipeline.NewService(db, cfg)

	cmd := os.Args[1]
	switch cmd {
	case "reconcile":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		geodataPath := fs.String("geodata", "", "path to the geo extract JSON")
		registryXLSX := fs.String("registry-xlsx", "", "read the registry from a local workbook instead of the API")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*geodataPath) == "" {
			must(fmt.Errorf("--geodata is required"))
		}
		summary, err := svc.RunReconcile(context.Background(), *geodataPath, *registryXLSX)
		must(err)
		fmt.Printf("reconcile done registry=%d matched=%d unmatched=%d skipped=%d total=%d\n",
			summary.Registry, summary.Matched, summary.Unmatched, summary.Skipped, summary.Total)
	case "geocode:fill":
		must(cfg.Require("GEOCODER_API_KEY", cfg.GeocoderAPIKey))
		report, err := svc.RunGeocode(context.Background(), geocode.NewClient(cfg))
		must(err)
		fmt.Printf("geocode done successful=%d failed=%d skipped=%d aborted=%v\n",
			len(report.Successful), len(report.Failed), len(report.Skipped), report.Aborted)
	case "export:dataset":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		outDir := fs.String("out", cfg.OutputDir, "output directory")
		_ = fs.Parse(os.Args[2:])
		datasetPath, unmatchedPath, err := svc.ExportDataset(*outDir)
		must(err)
		fmt.Printf("exported dataset=%s unmatched=%s\n", datasetPath, unmatchedPath)
	case "export:review":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		geodataPath := fs.String("geodata", "", "path to the geo extract JSON")
		out := fs.String("out", filepath.Join(cfg.OutputDir, "review.xlsx"), "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*geodataPath) == "" {
			must(fmt.Errorf("--geodata is required"))
		}
		count, err := svc.ExportReview(*geodataPath, *out)
		must(err)
		fmt.Printf("review export done rows=%d output=%s\n", count, *out)
	case "run":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		geodataPath := fs.String("geodata", "", "path to the geo extract JSON")
		registryXLSX := fs.String("registry-xlsx", "", "read the registry from a local workbook instead of the API")
		skipGeocode := fs.Bool("skip-geocode", false, "reconcile and export without geocoding")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*geodataPath) == "" {
			must(fmt.Errorf("--geodata is required"))
		}

		ctx := context.Background()
		summary, err := svc.RunReconcile(ctx, *geodataPath, *registryXLSX)
		must(err)
		fmt.Printf("reconcile done registry=%d matched=%d unmatched=%d\n",
			summary.Registry, summary.Matched, summary.Unmatched)

		if !*skipGeocode && summary.Unmatched > 0 {
			must(cfg.Require("GEOCODER_API_KEY", cfg.GeocoderAPIKey))
			report, err := svc.RunGeocode(ctx, geocode.NewClient(cfg))
			must(err)
			fmt.Printf("geocode done successful=%d failed=%d skipped=%d aborted=%v\n",
				len(report.Successful), len(report.Failed), len(report.Skipped), report.Aborted)
		}

		datasetPath, unmatchedPath, err := svc.ExportDataset(cfg.OutputDir)
		must(err)
		fmt.Printf("run done dataset=%s unmatched=%s\n", datasetPath, unmatchedPath)
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("usage: israelgeo <command>")
	fmt.Println("commands:")
	fmt.Println("  reconcile --geodata=osm.json [--registry-xlsx=yishuvim.xlsx]")
	fmt.Println("  geocode:fill")
	fmt.Println("  export:dataset [--out=./out]")
	fmt.Println("  export:review --geodata=osm.json [--out=./out/review.xlsx]")
	fmt.Println("  run --geodata=osm.json [--registry-xlsx=...] [--skip-geocode]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
