package profanity

import (
	"reflect"
	"testing"
)

func TestTermOccurrences(t *testing.T) {
	cases := []struct {
		name string
		term string
		text string
		want [][]int
	}{
		{"whole word", "damn", "a damn shame", [][]int{{2, 6}}},
		{"case insensitive", "damn", "DAMN it", [][]int{{0, 4}}},
		{"substring rejected", "ass", "classic assessment", nil},
		{"adjacent words", "damn", "damn damn", [][]int{{0, 4}, {5, 9}}},
		{"accented term", "cabrón", "qué cabrón eres", [][]int{{4, 11}}},
		{"accented suffix rejected", "damn", "damné", nil},
		{"apostrophe bound", "hell", "hell's bells", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NewTerm(tc.term).Occurrences(tc.text)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Occurrences(%q) = %v, want %v", tc.text, got, tc.want)
			}
		})
	}
}

func TestTermMask(t *testing.T) {
	cases := []struct {
		name string
		term string
		text string
		want string
	}{
		{"single", "damn", "a damn shame", "a **** shame"},
		{"adjacent repeats", "damn", "damn damn", "**** ****"},
		{"substring untouched", "ass", "classic assessment", "classic assessment"},
		{"accented", "cabrón", "qué cabrón eres", "qué **** eres"},
		{"no match", "damn", "all clear", "all clear"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NewTerm(tc.term).Mask(tc.text, "****"); got != tc.want {
				t.Fatalf("Mask(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}
