package utils

import (
	"net/url"
	"slices"
	"testing"
)

func TestParseQueryList(t *testing.T) {
	cases := []struct {
		raw  string
		want []string
	}{
		{"", nil},
		{"category=hospital", []string{"hospital"}},
		{"category=hospital,clinic", []string{"hospital", "clinic"}},
		{"category=hospital&category=clinic", []string{"hospital", "clinic"}},
		{"category=hospital,+clinic&category=community", []string{"hospital", "clinic", "community"}},
		{"category=,hospital,,hospital", []string{"hospital"}},
		{"category=", nil},
		{"other=x", nil},
	}
	for _, tc := range cases {
		q, err := url.ParseQuery(tc.raw)
		if err != nil {
			t.Fatalf("%q: %v", tc.raw, err)
		}
		if got := ParseQueryList(q, "category"); !slices.Equal(got, tc.want) {
			t.Errorf("%q: got %v, want %v", tc.raw, got, tc.want)
		}
	}
}
