package textutil

import (
	"math"
	"strings"
	"unicode"
)

// Fingerprint is a normalized term-frequency vector for similarity comparison.
type Fingerprint struct {
	terms map[string]float64
	norm  float64
}

// NewFingerprint builds a fingerprint from text. Returns nil when the text
// yields no usable tokens.
func NewFingerprint(text string) *Fingerprint {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	terms := make(map[string]float64, len(tokens))
	for _, token := range tokens {
		terms[token]++
	}
	var sum float64
	for _, count := range terms {
		sum += count * count
	}
	return &Fingerprint{terms: terms, norm: math.Sqrt(sum)}
}

// Tokenize splits text into lowercase alphanumeric tokens. Single-character
// tokens are dropped; release names carry no signal in them.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := fields[:0]
	for _, field := range fields {
		if len(field) < 2 {
			continue
		}
		tokens = append(tokens, field)
	}
	return tokens
}

// TokenCount returns the number of distinct tokens in the fingerprint.
func (f *Fingerprint) TokenCount() int {
	if f == nil {
		return 0
	}
	return len(f.terms)
}

// CosineSimilarity computes the cosine similarity between two fingerprints,
// in [0, 1]. Nil or empty fingerprints compare as 0.
func CosineSimilarity(a, b *Fingerprint) float64 {
	if a == nil || b == nil || a.norm == 0 || b.norm == 0 {
		return 0
	}
	var dot float64
	for term, count := range a.terms {
		if other, ok := b.terms[term]; ok {
			dot += count * other
		}
	}
	if dot == 0 {
		return 0
	}
	return dot / (a.norm * b.norm)
}

// CommonPrefixLen returns the length in runes of the shared prefix of a and b.
func CommonPrefixLen(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	n := len(ra)
	if len(rb) < n {
		n = len(rb)
	}
	for i := 0; i < n; i++ {
		if ra[i] != rb[i] {
			return i
		}
	}
	return n
}
