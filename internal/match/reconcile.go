package match

import (
	"strings"
	"time"

	"loopguard/internal/history"
	"loopguard/internal/textutil"
)

const (
	// fuzzyThreshold is the minimum cosine similarity between normalized
	// name fingerprints for a fuzzy match.
	fuzzyThreshold = 0.85
	// prefixThreshold is the minimum shared normalized-name prefix, in
	// runes, for a fuzzy match.
	prefixThreshold = 20
)

// Completion is a completion event reported by the host after a download
// finishes. Any subset of the identifying fields may be present, and the
// display name can differ from the one seen at submission time.
type Completion struct {
	DisplayName  string
	Filename     string
	DuplicateKey string
	Category     string
	JobID        string
	CompletedAt  time.Time
}

// Match is a successful reconciliation of a completion event with a pending
// history entry.
type Match struct {
	Entry *history.Entry
	// Method names the chain step that produced the match, for audit logs.
	Method string
	// Ambiguous is set when the method produced multiple equally ranked
	// candidates and the most recently updated one was chosen.
	Ambiguous bool
}

type method struct {
	name string
	find func(Completion, []*history.Entry) []*history.Entry
}

// reconcileMethods is the ordered fallback chain, most reliable first.
var reconcileMethods = []method{
	{"duplicate_key_exact", findByDuplicateKey},
	{"job_id_exact", findByJobID},
	{"name_normalized", findByNormalizedName},
	{"name_fuzzy", findByFuzzyName},
	{"category_time_proximity", findByCategoryProximity},
}

// Reconcile resolves a completion event to a single pending entry. entries
// must be the active pending entries, most recently updated first. The
// second return is false when no method matched; the caller leaves history
// untouched and lets expiry reclaim the entry.
func Reconcile(event Completion, entries []*history.Entry) (Match, bool) {
	if len(entries) == 0 {
		return Match{}, false
	}
	for _, m := range reconcileMethods {
		candidates := m.find(event, entries)
		if len(candidates) == 0 {
			continue
		}
		// Input order is last_updated_at desc, and every find preserves it,
		// so the first candidate is the tie-break winner.
		return Match{
			Entry:     candidates[0],
			Method:    m.name,
			Ambiguous: len(candidates) > 1,
		}, true
	}
	return Match{}, false
}

func findByDuplicateKey(event Completion, entries []*history.Entry) []*history.Entry {
	key := strings.TrimSpace(event.DuplicateKey)
	if key == "" {
		return nil
	}
	var out []*history.Entry
	for _, entry := range entries {
		if entry.DuplicateKey == key {
			out = append(out, entry)
		}
	}
	return out
}

func findByJobID(event Completion, entries []*history.Entry) []*history.Entry {
	jobID := strings.TrimSpace(event.JobID)
	if jobID == "" {
		return nil
	}
	var out []*history.Entry
	for _, entry := range entries {
		if entry.JobID == jobID {
			out = append(out, entry)
		}
	}
	return out
}

func findByNormalizedName(event Completion, entries []*history.Entry) []*history.Entry {
	names := normalizedEventNames(event)
	if len(names) == 0 {
		return nil
	}
	var out []*history.Entry
	for _, entry := range entries {
		for _, name := range names {
			if entry.NormalizedName == name {
				out = append(out, entry)
				break
			}
		}
	}
	return out
}

func findByFuzzyName(event Completion, entries []*history.Entry) []*history.Entry {
	names := normalizedEventNames(event)
	if len(names) == 0 {
		return nil
	}
	fingerprints := make([]*textutil.Fingerprint, len(names))
	for i, name := range names {
		fingerprints[i] = textutil.NewFingerprint(name)
	}

	var out []*history.Entry
	for _, entry := range entries {
		// A differing category rules a fuzzy match out; a missing one on
		// either side does not.
		if event.Category != "" && entry.Category != "" && !strings.EqualFold(event.Category, entry.Category) {
			continue
		}
		entryFingerprint := textutil.NewFingerprint(entry.NormalizedName)
		for i, name := range names {
			if textutil.CosineSimilarity(fingerprints[i], entryFingerprint) >= fuzzyThreshold ||
				textutil.CommonPrefixLen(name, entry.NormalizedName) >= prefixThreshold {
				out = append(out, entry)
				break
			}
		}
	}
	return out
}

func findByCategoryProximity(event Completion, entries []*history.Entry) []*history.Entry {
	category := strings.TrimSpace(event.Category)
	if category == "" || event.CompletedAt.IsZero() {
		return nil
	}

	best := time.Duration(-1)
	var out []*history.Entry
	for _, entry := range entries {
		if !strings.EqualFold(entry.Category, category) {
			continue
		}
		distance := event.CompletedAt.Sub(entry.FirstSeenAt)
		if distance < 0 {
			distance = -distance
		}
		switch {
		case best < 0 || distance < best:
			best = distance
			out = out[:0]
			out = append(out, entry)
		case distance == best:
			out = append(out, entry)
		}
	}
	return out
}

func normalizedEventNames(event Completion) []string {
	var names []string
	if name := NormalizeName(event.DisplayName); name != "" {
		names = append(names, name)
	}
	filename := strings.TrimSuffix(strings.TrimSpace(event.Filename), ".nzb")
	if name := NormalizeName(filename); name != "" && (len(names) == 0 || name != names[0]) {
		names = append(names, name)
	}
	return names
}
