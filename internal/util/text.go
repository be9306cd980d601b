package util

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	reSpaces     = regexp.MustCompile(`\s+`)
	reHyphenPads = regexp.MustCompile(`\s*-\s*`)
)

// Registry exports and OSM tags disagree on which apostrophe codepoint
// Hebrew transliterations carry (geresh, right single quote, backtick),
// so all variants fold to a plain ASCII apostrophe.
var apostrophes = strings.NewReplacer("׳", "'", "’", "'", "‘", "'", "`", "'", "´", "'")

// NormalizeName canonicalizes a display name into a comparable key:
// NFC fold, whitespace collapse, no padding around hyphens, one
// apostrophe variant, lower case. Idempotent.
func NormalizeName(input string) string {
	s := norm.NFC.String(input)
	s = apostrophes.Replace(s)
	s = reSpaces.ReplaceAllString(s, " ")
	s = reHyphenPads.ReplaceAllString(s, "-")
	s = strings.TrimSpace(s)
	return strings.ToLower(s)
}

// EditDistance is the classic insert/delete/substitute distance with
// unit costs, computed over a full tabulation.
func EditDistance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	rows := len(ra) + 1
	cols := len(rb) + 1
	table := make([][]int, rows)
	for i := range table {
		table[i] = make([]int, cols)
		table[i][0] = i
	}
	for j := 1; j < cols; j++ {
		table[0][j] = j
	}

	for i := 1; i < rows; i++ {
		for j := 1; j < cols; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := table[i-1][j] + 1
			ins := table[i][j-1] + 1
			sub := table[i-1][j-1] + cost
			min := del
			if ins < min {
				min = ins
			}
			if sub < min {
				min = sub
			}
			table[i][j] = min
		}
	}

	return table[rows-1][cols-1]
}

// Similar reports whether two names are close enough to be the same
// place. Equal or substring-contained normalized forms always match;
// otherwise the edit distance must not exceed threshold.
//
// The automatic reconciliation tiers do not call Similar (too many
// near-identical settlement names); it backs the manual-review export.
func Similar(a, b string, threshold int) bool {
	na := NormalizeName(a)
	nb := NormalizeName(b)
	if na == nb {
		return true
	}
	if na != "" && nb != "" && (strings.Contains(na, nb) || strings.Contains(nb, na)) {
		return true
	}
	return EditDistance(na, nb) <= threshold
}

func StringPtr(v string) *string { return &v }

func IntPtr(v int) *int { return &v }
