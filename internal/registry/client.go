// Package registry fetches the authoritative government settlement list,
// either from the open-data datastore API or from the published workbook.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/akivaschiff/israel-geolocation/internal"
	"github.com/akivaschiff/israel-geolocation/internal/config"
	"github.com/akivaschiff/israel-geolocation/internal/util"
)

// Registry column names as published by the datastore resource.
const (
	fieldHebrewName  = "שם_ישוב"
	fieldEnglishName = "שם_ישוב_לועזי"
	fieldCode        = "סמל_ישוב"
	fieldDistrict    = "שם_נפה"
	fieldPopulation  = "סך_הכל_אוכלוסייה"
	fieldType        = "צורת_יישוב"
)

type Client struct {
	cfg        config.Config
	httpClient *http.Client
}

type apiResponse struct {
	Success bool            `json:"success"`
	Error   json.RawMessage `json:"error"`
	Result  json.RawMessage `json:"result"`
}

type searchResult struct {
	Records []map[string]any `json:"records"`
	Total   *int             `json:"total"`
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.RegistryTimeoutMs) * time.Millisecond},
	}
}

// FetchAll pages through the datastore resource until a short page,
// mapping each row to a RegistryRecord. Malformed rows are skipped
// with a warning.
func (c *Client) FetchAll(ctx context.Context) ([]internal.RegistryRecord, error) {
	all := make([]internal.RegistryRecord, 0)
	offset := 0
	skipped := 0

	for {
		body, err := c.fetchJSON(ctx, "datastore_search", map[string]string{
			"resource_id": c.cfg.RegistryResourceID,
			"limit":       strconv.Itoa(c.cfg.RegistryPageSize),
			"offset":      strconv.Itoa(offset),
		})
		if err != nil {
			return nil, err
		}

		var page searchResult
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("parse registry page: %w", err)
		}

		for _, raw := range page.Records {
			record, err := toRegistryRecord(raw)
			if err != nil {
				skipped++
				continue
			}
			all = append(all, record)
		}

		if len(page.Records) < c.cfg.RegistryPageSize {
			break
		}
		offset += len(page.Records)
	}

	if skipped > 0 {
		log.Warn().Int("skipped", skipped).Int("loaded", len(all)).Msg("registry had malformed rows")
	}
	return all, nil
}

func (c *Client) fetchJSON(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	baseURL := strings.TrimRight(c.cfg.RegistryAPIBaseURL, "/") + "/"
	u, err := url.Parse(baseURL + endpoint)
	if err != nil {
		return nil, err
	}

	q := u.Query()
	for k, v := range params {
		if strings.TrimSpace(v) != "" {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()

	var lastErr error
	for attempt := 1; attempt <= 5; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if isRetryableStatus(resp.StatusCode) && attempt < 5 {
				backoff := time.Duration(250*(1<<(attempt-1))+rand.Intn(100)) * time.Millisecond
				time.Sleep(backoff)
				lastErr = fmt.Errorf("registry status %d", resp.StatusCode)
				continue
			}
			return nil, fmt.Errorf("registry api error: status=%d body=%s", resp.StatusCode, string(body))
		}

		var apiResp apiResponse
		if err := json.Unmarshal(body, &apiResp); err != nil {
			return nil, err
		}
		if !apiResp.Success {
			return nil, fmt.Errorf("registry api unsuccessful: %s", string(apiResp.Error))
		}
		return apiResp.Result, nil
	}

	if lastErr == nil {
		lastErr = errors.New("registry request failed")
	}
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func toRegistryRecord(raw map[string]any) (internal.RegistryRecord, error) {
	hebrew, _ := raw[fieldHebrewName].(string)
	hebrew = strings.TrimSpace(hebrew)

	code, hasCode := toInt(raw[fieldCode])
	if !hasCode {
		return internal.RegistryRecord{}, errors.New("missing settlement code")
	}

	record := internal.RegistryRecord{
		HebrewName:   hebrew,
		RegistryCode: code,
	}
	record.EnglishName = toStringPtr(raw[fieldEnglishName])
	record.District = toStringPtr(raw[fieldDistrict])
	record.Type = toStringPtr(raw[fieldType])
	if population, ok := toInt(raw[fieldPopulation]); ok && population > 0 {
		record.Population = util.IntPtr(population)
	}

	if record.HebrewName == "" && record.EnglishName == nil {
		return internal.RegistryRecord{}, errors.New("row has no name at all")
	}
	return record, nil
}

func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(t))
		return parsed, err == nil
	case json.Number:
		i, err := t.Int64()
		return int(i), err == nil
	default:
		return 0, false
	}
}

func toStringPtr(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return util.StringPtr(s)
}
