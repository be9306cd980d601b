package geocode

import (
	"context"
	"testing"

	"github.com/akivaschiff/israel-geolocation/internal"
	"github.com/akivaschiff/israel-geolocation/internal/util"
)

type stubGeocoder struct {
	calls    int
	outcomes []internal.GeocodeOutcome
}

func (s *stubGeocoder) Geocode(ctx context.Context, name string) (internal.GeocodeOutcome, error) {
	outcome := s.outcomes[s.calls]
	s.calls++
	return outcome, nil
}

func TestGapFillerSkipsDenylistedWithoutNetworkCall(t *testing.T) {
	stub := &stubGeocoder{outcomes: []internal.GeocodeOutcome{}}
	filler := NewGapFiller(stub, []string{"שבט"})

	queue := []internal.UnmatchedRecord{
		{HebrewName: "שבט אבו רובייעה", RegistryCode: 966},
	}

	report, err := filler.Run(context.Background(), queue)
	if err != nil {
		t.Fatal(err)
	}
	if stub.calls != 0 {
		t.Fatalf("geocoder was called %d times for a denylisted record", stub.calls)
	}
	if len(report.Skipped) != 1 || len(report.Successful) != 0 || len(report.Failed) != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestGapFillerAbortsOnQuotaExceeded(t *testing.T) {
	stub := &stubGeocoder{outcomes: []internal.GeocodeOutcome{
		{Status: internal.GeocodeOK, Lat: 31.25, Lon: 34.79, FormattedAddress: "Somewhere, Israel"},
		{Status: internal.GeocodeQuotaExceeded, Message: "daily limit"},
		{Status: internal.GeocodeOK, Lat: 32.0, Lon: 35.0},
	}}
	filler := NewGapFiller(stub, nil)

	queue := []internal.UnmatchedRecord{
		{HebrewName: "יישוב א", RegistryCode: 1},
		{HebrewName: "יישוב ב", RegistryCode: 2},
		{HebrewName: "יישוב ג", RegistryCode: 3},
	}

	report, err := filler.Run(context.Background(), queue)
	if err != nil {
		t.Fatal(err)
	}

	if stub.calls != 2 {
		t.Fatalf("third record must never be attempted, calls=%d", stub.calls)
	}
	if len(report.Successful) != 1 || len(report.Failed) != 1 {
		t.Fatalf("unexpected report: successful=%d failed=%d", len(report.Successful), len(report.Failed))
	}
	if !report.Aborted {
		t.Fatal("quota exhaustion must flag the run as aborted")
	}
	if report.Successful[0].ID != 1 || report.Successful[0].Lat != 31.25 {
		t.Fatalf("accumulated success lost: %+v", report.Successful[0])
	}
	if report.Failed[0].Status != internal.GeocodeQuotaExceeded {
		t.Fatalf("quota failure not recorded: %+v", report.Failed[0])
	}
}

func TestGapFillerRecordsTransientFailuresAndContinues(t *testing.T) {
	stub := &stubGeocoder{outcomes: []internal.GeocodeOutcome{
		{Status: internal.GeocodeNoResult},
		{Status: internal.GeocodeError, Message: "connection reset"},
		{Status: internal.GeocodeOK, Lat: 33.0, Lon: 35.5},
	}}
	filler := NewGapFiller(stub, nil)

	queue := []internal.UnmatchedRecord{
		{HebrewName: "יישוב א", RegistryCode: 1},
		{HebrewName: "יישוב ב", RegistryCode: 2},
		{HebrewName: "", EnglishName: util.StringPtr("Metula"), RegistryCode: 3},
	}

	report, err := filler.Run(context.Background(), queue)
	if err != nil {
		t.Fatal(err)
	}

	if stub.calls != 3 {
		t.Fatalf("transient failures must not stop the queue, calls=%d", stub.calls)
	}
	if len(report.Failed) != 2 || len(report.Successful) != 1 {
		t.Fatalf("unexpected report: %+v", report.Counts())
	}
	if report.Aborted {
		t.Fatal("transient failures must not abort the run")
	}
	if report.Successful[0].MatchTier != internal.TierGeocoded {
		t.Fatalf("geocoded tier not tagged: %+v", report.Successful[0])
	}
}
