package textutil

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"The Matrix", "thematrix"},
		{"Breakfast at Tiffany's", "breakfastattiffanys"},
		{"Fast & Furious", "fastandfurious"},
		{"  ", ""},
		{"Blade Runner 2049", "bladerunner2049"},
	}
	for _, tc := range tests {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEqualFold(t *testing.T) {
	if !EqualFold("the matrix", "The Matrix") {
		t.Error("expected case-insensitive equality")
	}
	if !EqualFold("Devils Wears Prada 2", "devils wears prada 2") {
		t.Error("expected whitespace-insensitive equality")
	}
	if EqualFold("", "") {
		t.Error("empty titles must not compare equal")
	}
	if EqualFold("Titane", "Blackhat") {
		t.Error("distinct titles must not compare equal")
	}
}

func TestOverlap(t *testing.T) {
	if got := Overlap("Blade Runner", "Blade Runner 2049"); got != 2 {
		t.Fatalf("overlap = %d, want 2", got)
	}
	if got := Overlap("Titane", "Blade Runner 2049"); got != 0 {
		t.Fatalf("overlap = %d, want 0", got)
	}
	if got := Overlap("Cars 2", "Cars"); got != 1 {
		t.Fatalf("overlap = %d, want 1", got)
	}
}
