// Package pipeline holds the reconciliation core: manual overrides,
// tiered matching against the geo index, merge/dedup of result sets,
// and the exported artifacts.
package pipeline

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/akivaschiff/israel-geolocation/internal"
)

// LoadOverrides reads the curated registry-name → geo-name mapping.
// A missing file means no overrides; a malformed file is a hard failure
// because silently dropping curated fixes corrupts the dataset.
func LoadOverrides(path string) (internal.Overrides, error) {
	blob, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return internal.Overrides{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read overrides: %w", err)
	}

	overrides := internal.Overrides{}
	if err := json.Unmarshal(blob, &overrides); err != nil {
		return nil, fmt.Errorf("parse overrides %s: %w", path, err)
	}
	return overrides, nil
}

// LoadDenylist reads the list of name patterns the geocoder should never
// be asked about, one per line. Blank lines and '#' comments are ignored;
// order is preserved.
func LoadDenylist(path string) ([]string, error) {
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read denylist: %w", err)
	}
	defer file.Close()

	var out []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read denylist: %w", err)
	}
	return out, nil
}
