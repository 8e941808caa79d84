package textutil

import "testing"

func TestTokenizeDropsSeparatorsAndShortTokens(t *testing.T) {
	tokens := Tokenize("Some.Show.S01E02-GROUP x")
	want := []string{"some", "show", "s01e02", "group"}
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %v", len(want), tokens)
	}
	for i, token := range want {
		if tokens[i] != token {
			t.Fatalf("token %d: expected %q, got %q", i, token, tokens[i])
		}
	}
}

func TestCosineSimilarityIdentical(t *testing.T) {
	a := NewFingerprint("Some Movie 2024 1080p BluRay")
	b := NewFingerprint("some.movie.2024.1080p.bluray")
	if sim := CosineSimilarity(a, b); sim < 0.999 {
		t.Fatalf("expected ~1.0 similarity, got %f", sim)
	}
}

func TestCosineSimilarityDisjoint(t *testing.T) {
	a := NewFingerprint("Alpha Beta Gamma")
	b := NewFingerprint("Delta Epsilon Zeta")
	if sim := CosineSimilarity(a, b); sim != 0 {
		t.Fatalf("expected 0 similarity, got %f", sim)
	}
}

func TestCosineSimilarityPartialOverlap(t *testing.T) {
	a := NewFingerprint("Some Movie 2024 1080p WEB")
	b := NewFingerprint("Some Movie 2024 2160p WEB")
	sim := CosineSimilarity(a, b)
	if sim <= 0.5 || sim >= 1 {
		t.Fatalf("expected partial similarity, got %f", sim)
	}
}

func TestCosineSimilarityNil(t *testing.T) {
	if sim := CosineSimilarity(nil, NewFingerprint("something here")); sim != 0 {
		t.Fatalf("expected 0 for nil fingerprint, got %f", sim)
	}
	if NewFingerprint("??") != nil {
		t.Fatal("expected nil fingerprint for tokenless text")
	}
}

func TestCommonPrefixLen(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"some movie 2024", "some movie 2160p", 11},
		{"abc", "abc", 3},
		{"abc", "xyz", 0},
		{"", "abc", 0},
	}
	for _, tc := range cases {
		if got := CommonPrefixLen(tc.a, tc.b); got != tc.want {
			t.Fatalf("CommonPrefixLen(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}
