// Package textutil provides token-based text similarity for release names.
//
// Release names reported at submission and completion time often differ in
// separators, casing, or trailing tags. Fingerprints are term-frequency
// vectors over the alphanumeric tokens of a name; cosine similarity between
// two fingerprints is robust to token order and small additions, which makes
// it a good fuzzy-match signal for reconciling history entries.
package textutil
