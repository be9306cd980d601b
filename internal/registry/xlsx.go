package registry

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/akivaschiff/israel-geolocation/internal"
	"github.com/akivaschiff/israel-geolocation/internal/util"
)

// The statistics bureau publishes the same registry as a workbook whose
// header labels use spaces where the datastore uses underscores.
var xlsxHeaderAliases = map[string]string{
	"שם ישוב":          fieldHebrewName,
	"שם_ישוב":          fieldHebrewName,
	"שם ישוב באנגלית":  fieldEnglishName,
	"שם_ישוב_לועזי":    fieldEnglishName,
	"סמל ישוב":         fieldCode,
	"סמל_ישוב":         fieldCode,
	"שם נפה":           fieldDistrict,
	"שם_נפה":           fieldDistrict,
	"סך הכל אוכלוסייה": fieldPopulation,
	"סך_הכל_אוכלוסייה": fieldPopulation,
	"צורת יישוב":       fieldType,
	"צורת_יישוב":       fieldType,
}

// LoadXLSX reads the settlement registry from a local workbook export.
func LoadXLSX(path string) ([]internal.RegistryRecord, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry workbook: %w", err)
	}
	return ParseXLSX(blob)
}

// ParseXLSX scans the first sheet for a header row it recognizes and
// maps the remaining rows. Rows without a settlement code are skipped
// with a warning.
func ParseXLSX(content []byte) ([]internal.RegistryRecord, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open registry workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}

	columns := map[string]int{}
	headerRow := -1
	for i, row := range rows {
		if i >= 5 {
			break
		}
		found := map[string]int{}
		for j, cell := range row {
			if field, ok := xlsxHeaderAliases[strings.TrimSpace(cell)]; ok {
				if _, dup := found[field]; !dup {
					found[field] = j
				}
			}
		}
		if _, hasName := found[fieldHebrewName]; hasName {
			if _, hasCode := found[fieldCode]; hasCode {
				columns = found
				headerRow = i
				break
			}
		}
	}
	if headerRow < 0 {
		return nil, fmt.Errorf("registry workbook: no recognizable header row in sheet %q", sheet)
	}

	out := make([]internal.RegistryRecord, 0, len(rows)-headerRow-1)
	skipped := 0
	for _, row := range rows[headerRow+1:] {
		record, ok := rowToRegistryRecord(row, columns)
		if !ok {
			skipped++
			continue
		}
		out = append(out, record)
	}

	if skipped > 0 {
		log.Warn().Int("skipped", skipped).Int("loaded", len(out)).Msg("registry workbook had unusable rows")
	}
	return out, nil
}

func rowToRegistryRecord(row []string, columns map[string]int) (internal.RegistryRecord, bool) {
	cell := func(field string) string {
		idx, ok := columns[field]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	code, err := strconv.Atoi(cell(fieldCode))
	if err != nil {
		return internal.RegistryRecord{}, false
	}
	hebrew := cell(fieldHebrewName)
	english := cell(fieldEnglishName)
	if hebrew == "" && english == "" {
		return internal.RegistryRecord{}, false
	}

	record := internal.RegistryRecord{
		HebrewName:   hebrew,
		RegistryCode: code,
	}
	if english != "" {
		record.EnglishName = util.StringPtr(english)
	}
	if district := cell(fieldDistrict); district != "" {
		record.District = util.StringPtr(district)
	}
	if typ := cell(fieldType); typ != "" {
		record.Type = util.StringPtr(typ)
	}
	if population, err := strconv.Atoi(strings.ReplaceAll(cell(fieldPopulation), ",", "")); err == nil && population > 0 {
		record.Population = util.IntPtr(population)
	}

	return record, true
}
