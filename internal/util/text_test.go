package util

import "testing"

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "collapse and lower", input: "Tel  Aviv - Yafo", want: "tel aviv-yafo"},
		{name: "already normal", input: "tel aviv-yafo", want: "tel aviv-yafo"},
		{name: "trim", input: "  חיפה  ", want: "חיפה"},
		{name: "hebrew geresh", input: "בנימינה-גבעת עדה׳", want: "בנימינה-גבעת עדה'"},
		{name: "curly quote", input: "Sde Ya’aqov", want: "sde ya'aqov"},
		{name: "hyphen padding", input: "קדימה - צורן", want: "קדימה-צורן"},
		{name: "empty", input: "", want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeName(tc.input)
			if got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
			if again := NormalizeName(got); again != got {
				t.Fatalf("not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestEditDistance(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"abcdef", "abcxyz", 3},
		{"ירושלים", "ירושלים", 0},
		{"ירושלים", "ירושלם", 1},
	}

	for _, tc := range cases {
		if got := EditDistance(tc.a, tc.b); got != tc.want {
			t.Fatalf("EditDistance(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestSimilar(t *testing.T) {
	if !Similar("ירושלים", "ירושלים", 2) {
		t.Fatal("identical names must be similar")
	}
	if Similar("abcdef", "abcxyz", 2) {
		t.Fatal("distance 3 must not pass threshold 2")
	}
	if !Similar("Tel Aviv", "Tel Aviv-Yafo", 2) {
		t.Fatal("substring containment must match regardless of distance")
	}
	if !Similar("נהריה", "נהרייה", 1) {
		t.Fatal("single-rune difference within threshold must match")
	}
}
