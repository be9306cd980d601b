package geocode

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/akivaschiff/israel-geolocation/internal"
	"github.com/akivaschiff/israel-geolocation/internal/config"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestClient(t *testing.T, handler roundTripFunc) *Client {
	t.Helper()

	cfg, _ := config.Load()
	cfg.GeocoderURL = "https://geocoder.test/json"
	cfg.GeocodeCountry = "Israel"
	cfg.GeocodeDelayMs = 0

	client := NewClient(cfg)
	client.httpClient = &http.Client{Transport: handler}
	return client
}

func TestGeocodeSuccess(t *testing.T) {
	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		address := r.URL.Query().Get("address")
		if address != "מצפה אבי\"ב, Israel" {
			t.Fatalf("unexpected address param: %q", address)
		}
		body := `{"status": "OK", "results": [{"formatted_address": "Mitspe Aviv, Israel",
			"geometry": {"location": {"lat": 32.75, "lng": 35.25}}}]}`
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(body)),
			Header:     make(http.Header),
		}, nil
	})

	outcome, err := client.Geocode(context.Background(), "מצפה אבי\"ב")
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Status != internal.GeocodeOK || outcome.Lat != 32.75 || outcome.Lon != 35.25 {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if outcome.FormattedAddress != "Mitspe Aviv, Israel" {
		t.Fatalf("formatted address lost: %+v", outcome)
	}
}

func TestGeocodeClassification(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   internal.GeocodeStatus
	}{
		{name: "zero results", status: 200, body: `{"status": "ZERO_RESULTS", "results": []}`, want: internal.GeocodeNoResult},
		{name: "quota body", status: 200, body: `{"status": "OVER_QUERY_LIMIT", "error_message": "quota"}`, want: internal.GeocodeQuotaExceeded},
		{name: "quota http", status: 429, body: `{}`, want: internal.GeocodeQuotaExceeded},
		{name: "denied", status: 200, body: `{"status": "REQUEST_DENIED", "error_message": "bad key"}`, want: internal.GeocodeError},
		{name: "server error", status: 500, body: `boom`, want: internal.GeocodeError},
		{name: "garbage", status: 200, body: `not json`, want: internal.GeocodeError},
		{name: "ok without results", status: 200, body: `{"status": "OK", "results": []}`, want: internal.GeocodeNoResult},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: tc.status,
					Body:       io.NopCloser(strings.NewReader(tc.body)),
					Header:     make(http.Header),
				}, nil
			})

			outcome, err := client.Geocode(context.Background(), "כלשהו")
			if err != nil {
				t.Fatal(err)
			}
			if outcome.Status != tc.want {
				t.Fatalf("got %s want %s", outcome.Status, tc.want)
			}
		})
	}
}
