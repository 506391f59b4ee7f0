package similarity

import (
	"testing"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		query     string
		minScore  float64
		maxScore  float64
	}{
		{
			name:      "Identical strings",
			candidate: "The Matrix",
			query:     "The Matrix",
			minScore:  1.0,
			maxScore:  1.0,
		},
		{
			name:      "Case and punctuation",
			candidate: "THE.MATRIX",
			query:     "the matrix",
			minScore:  1.0,
			maxScore:  1.0,
		},
		{
			name:      "Accents are romanised",
			candidate: "Amélie",
			query:     "Amelie",
			minScore:  1.0,
			maxScore:  1.0,
		},
		{
			name:      "Ampersand vs and",
			candidate: "Me, MYSELF & I",
			query:     "Me Myself and I",
			minScore:  1.0,
			maxScore:  1.0,
		},
		{
			name:      "Trailer title covers query words",
			candidate: "DUNE | Official Trailer (2021)",
			query:     "Dune trailer 2021",
			minScore:  1.0,
			maxScore:  1.0,
		},
		{
			name:      "Partial coverage",
			candidate: "Dune Part Two Official Trailer",
			query:     "Dune trailer 2021",
			minScore:  0.6,
			maxScore:  0.7,
		},
		{
			name:      "Unrelated",
			candidate: "Cooking pasta at home",
			query:     "Dune trailer 2021",
			minScore:  0.0,
			maxScore:  0.3,
		},
		{
			name:      "Empty candidate",
			candidate: "",
			query:     "Dune",
			minScore:  0.0,
			maxScore:  0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := Similarity(tt.candidate, tt.query)
			if score < tt.minScore || score > tt.maxScore {
				t.Errorf("Similarity(%q, %q) = %.3f, want within [%.2f, %.2f]",
					tt.candidate, tt.query, score, tt.minScore, tt.maxScore)
			}
		})
	}
}

func TestBest(t *testing.T) {
	candidates := []string{
		"Reacting to every sci-fi trailer of 2021",
		"DUNE Official Main Trailer",
		"Dune | Official Trailer 2021",
	}

	if got := Best(candidates, "Dune trailer 2021"); got != 2 {
		t.Fatalf("expected index 2, got %d", got)
	}
	if got := Best(nil, "Dune"); got != -1 {
		t.Fatalf("expected -1 for no candidates, got %d", got)
	}
	if got := Best([]string{"same", "same"}, "same"); got != 0 {
		t.Fatalf("expected ties to prefer first, got %d", got)
	}
}
