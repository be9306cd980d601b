// Package geocode fills coordinates for registry entries the automatic
// matcher could not resolve, one rate-limited request at a time.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/akivaschiff/israel-geolocation/internal"
	"github.com/akivaschiff/israel-geolocation/internal/config"
)

// Geocoder resolves a free-text place name, qualified by country, to a
// coordinate. Implemented by Client; stubbed in tests.
type Geocoder interface {
	Geocode(ctx context.Context, name string) (internal.GeocodeOutcome, error)
}

type Client struct {
	cfg        config.Config
	httpClient *http.Client
	limiter    *RateLimiter
}

type geocodeResponse struct {
	Status       string          `json:"status"`
	ErrorMessage string          `json:"error_message"`
	Results      []geocodeResult `json:"results"`
}

type geocodeResult struct {
	FormattedAddress string `json:"formatted_address"`
	Geometry         struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.GeocodeTimeoutMs) * time.Millisecond},
		limiter:    NewRateLimiter(time.Duration(cfg.GeocodeDelayMs) * time.Millisecond),
	}
}

// Geocode issues one request for "<name>, <country>" and classifies the
// response. Transport failures and provider errors come back as an
// outcome, not an error: a miss is a value here, only the quota status
// escalates at the caller.
func (c *Client) Geocode(ctx context.Context, name string) (internal.GeocodeOutcome, error) {
	c.limiter.WaitTurn()

	u, err := url.Parse(c.cfg.GeocoderURL)
	if err != nil {
		return internal.GeocodeOutcome{}, err
	}
	q := u.Query()
	q.Set("address", fmt.Sprintf("%s, %s", name, c.cfg.GeocodeCountry))
	if c.cfg.GeocoderAPIKey != "" {
		q.Set("key", c.cfg.GeocoderAPIKey)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return internal.GeocodeOutcome{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return internal.GeocodeOutcome{Status: internal.GeocodeError, Message: err.Error()}, nil
	}
	body, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return internal.GeocodeOutcome{Status: internal.GeocodeError, Message: readErr.Error()}, nil
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return internal.GeocodeOutcome{Status: internal.GeocodeQuotaExceeded, Message: "http 429"}, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return internal.GeocodeOutcome{Status: internal.GeocodeError, Message: fmt.Sprintf("http %d", resp.StatusCode)}, nil
	}

	var payload geocodeResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return internal.GeocodeOutcome{Status: internal.GeocodeError, Message: "malformed geocoder response"}, nil
	}

	return classify(payload), nil
}

func classify(payload geocodeResponse) internal.GeocodeOutcome {
	switch payload.Status {
	case "OK":
		if len(payload.Results) == 0 {
			return internal.GeocodeOutcome{Status: internal.GeocodeNoResult}
		}
		first := payload.Results[0]
		return internal.GeocodeOutcome{
			Status:           internal.GeocodeOK,
			Lat:              first.Geometry.Location.Lat,
			Lon:              first.Geometry.Location.Lng,
			FormattedAddress: first.FormattedAddress,
		}
	case "ZERO_RESULTS":
		return internal.GeocodeOutcome{Status: internal.GeocodeNoResult}
	case "OVER_QUERY_LIMIT":
		return internal.GeocodeOutcome{Status: internal.GeocodeQuotaExceeded, Message: payload.ErrorMessage}
	default:
		message := payload.ErrorMessage
		if message == "" {
			message = payload.Status
		}
		return internal.GeocodeOutcome{Status: internal.GeocodeError, Message: message}
	}
}
