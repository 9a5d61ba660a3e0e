package fuzzy

import (
	"math"
	"testing"
)

func TestRatio_Identical(t *testing.T) {
	if r := Ratio("شازده کوچولو", "شازده کوچولو"); r != 1 {
		t.Errorf("Ratio = %v, want 1", r)
	}
}

func TestRatio_ScriptAndCaseInsensitive(t *testing.T) {
	if r := Ratio("كتاب", "کتاب"); r != 1 {
		t.Errorf("Arabic/Persian kaf Ratio = %v, want 1", r)
	}
	if r := Ratio("Parker", "PARKER "); r != 1 {
		t.Errorf("case Ratio = %v, want 1", r)
	}
}

func TestRatio_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"شازده کوچولو", "شاهزاده کوچولو"},
		{"abcd", "bcda"},
		{"parker jotter", "jotter"},
		{"", "x"},
	}
	for _, p := range pairs {
		if Ratio(p[0], p[1]) != Ratio(p[1], p[0]) {
			t.Errorf("Ratio(%q, %q) not symmetric", p[0], p[1])
		}
	}
}

func TestRatio_Typo(t *testing.T) {
	// two inserted letters
	r := Ratio("شازده کوچولو", "شاهزاده کوچولو")
	if r < 0.72 {
		t.Errorf("Ratio = %v, expected a typo to stay above the fallback cutoff", r)
	}
	if unrelated := Ratio("شازده کوچولو", "دفتر مشق"); unrelated >= 0.72 {
		t.Errorf("unrelated Ratio = %v, want < 0.72", unrelated)
	}
}

func TestRatio_KnownValue(t *testing.T) {
	// matching blocks "ab" + "d": 2*3/(4+4)
	if r := Ratio("abcd", "abxd"); math.Abs(r-0.75) > 1e-9 {
		t.Errorf("Ratio = %v, want 0.75", r)
	}
}

func TestPartialRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "anything", 0},
		{"anything", "", 0},
		{"parker", "parker jotter blue", 100},
		{"parker jotter blue", "parker", 100},
		{"خودکار", "خودکار پارکر", 100},
		{"abcd", "xxabxdxx", 75},
	}
	for _, tc := range tests {
		if got := PartialRatio(tc.a, tc.b); got != tc.want {
			t.Errorf("PartialRatio(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestPartialRatio_Range(t *testing.T) {
	inputs := []string{"a", "قلم", "parker", "شازده کوچولو", "xyz"}
	for _, a := range inputs {
		for _, b := range inputs {
			got := PartialRatio(a, b)
			if got < 0 || got > 100 {
				t.Errorf("PartialRatio(%q, %q) = %d, out of range", a, b, got)
			}
		}
	}
}
