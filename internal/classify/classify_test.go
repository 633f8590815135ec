package classify

import "testing"

func TestTokenSetRatioProperties(t *testing.T) {
	// Symmetric.
	if TokenSetRatio("granite slab polished", "polished granite") != TokenSetRatio("polished granite", "granite slab polished") {
		t.Fatal("ratio is not symmetric")
	}

	// Case and token-order insensitive.
	if got := TokenSetRatio("GRANITE SLAB", "slab granite"); got != 100 {
		t.Fatalf("reordered tokens score = %.1f, want 100", got)
	}

	// One side being a token subset of the other scores 100.
	if got := TokenSetRatio("granite", "granite slab polished"); got != 100 {
		t.Fatalf("subset score = %.1f, want 100", got)
	}

	// Disjoint strings score low.
	if got := TokenSetRatio("granite", "frozen shrimp"); got > 50 {
		t.Fatalf("disjoint score = %.1f, want low", got)
	}

	// Empty input scores zero.
	if got := TokenSetRatio("", "granite"); got != 0 {
		t.Fatalf("empty score = %.1f, want 0", got)
	}
}

func TestClassify(t *testing.T) {
	categories := []string{"Granite", "Marble", "Quartz"}
	classifier := New(categories, 70)

	cases := []struct {
		mark string
		want string
	}{
		{"GRANITE SLAB POLISHED", "Granite"},
		{"granite", "Granite"},
		{"ITALIAN MARBLE BLOCK", "Marble"},
		{"FROZEN SHRIMP 20KG", "Other"},
		{"", "Unknown"},
		{"   ", "Unknown"},
	}
	for _, tc := range cases {
		if got := classifier.Classify(tc.mark); got != tc.want {
			t.Fatalf("Classify(%q) = %q, want %q", tc.mark, got, tc.want)
		}
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	classifier := New([]string{"Granite", "Marble"}, 70)
	first := classifier.Classify("GRANITE SLAB")
	for i := 0; i < 10; i++ {
		if got := classifier.Classify("GRANITE SLAB"); got != first {
			t.Fatalf("run %d: Classify returned %q, previously %q", i, got, first)
		}
	}
}

func TestClassifyTieBreakPrefersFirstCandidate(t *testing.T) {
	// Both candidates contain the mark as a token subset, so both score 100.
	// The first candidate in the supplied order must win.
	classifier := New([]string{"Granite Slab", "Granite Tile"}, 70)
	if got := classifier.Classify("granite"); got != "Granite Slab" {
		t.Fatalf("tie broke to %q, want first candidate", got)
	}

	reversed := New([]string{"Granite Tile", "Granite Slab"}, 70)
	if got := reversed.Classify("granite"); got != "Granite Tile" {
		t.Fatalf("tie broke to %q, want first candidate", got)
	}
}

func TestClassifyNoCandidates(t *testing.T) {
	classifier := New(nil, 70)
	if got := classifier.Classify("granite"); got != CategoryUnknown {
		t.Fatalf("Classify with no candidates = %q, want %q", got, CategoryUnknown)
	}
}
