package fuzzy

import "testing"

func TestLevenshteinDistance(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"go", "", 2},
		{"kitten", "sitting", 3},
		{"Golang", "golang", 0},
		{"café", "cafe", 0},
	}
	for _, tc := range cases {
		if got := LevenshteinDistance(tc.a, tc.b); got != tc.want {
			t.Errorf("LevenshteinDistance(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestFuzzyMatch(t *testing.T) {
	if !FuzzyMatch("concurency", "Notes on Go concurrency patterns", Threshold("concurency")) {
		t.Error("expected one-typo match")
	}
	if FuzzyMatch("rust", "Notes on Go concurrency patterns", Threshold("rust")) {
		t.Error("unexpected match")
	}
	if !FuzzyMatch("", "anything", 0) {
		t.Error("empty query should match")
	}
}

func TestRelevanceScoreRanksTitleAboveBody(t *testing.T) {
	inTitle := RelevanceScore("websocket", PostFields{Title: "A WebSocket bridge"})
	inTag := RelevanceScore("websocket", PostFields{Title: "Bridges", Tags: []string{"websocket"}})
	inBody := RelevanceScore("websocket", PostFields{Title: "Bridges", Content: "uses a websocket"})
	none := RelevanceScore("websocket", PostFields{Title: "Firestore tips"})

	if !(inTitle > inTag && inTag > inBody && inBody > 0) {
		t.Fatalf("unexpected ordering: title=%v tag=%v body=%v", inTitle, inTag, inBody)
	}
	if none != 0 {
		t.Fatalf("expected zero score, got %v", none)
	}
}
