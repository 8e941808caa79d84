package match

import (
	"loopguard/internal/history"
)

// Decision is the outcome of evaluating a submission against active history.
type Decision struct {
	Block bool
	// Matched is the entry that caused a block, or the failed entry a retry
	// supersedes. Nil when the identity has no active history.
	Matched *history.Entry
	// Retry marks an allow that supersedes a failed attempt.
	Retry bool
	// Ambiguous is set when more than one active entry matched the identity.
	// The invariant says this cannot happen; it is handled defensively and
	// logged by the caller.
	Ambiguous bool
}

// Evaluate decides whether a submission is a duplicate. entries must be the
// active (non-expired) entries for the candidate's identity, most recently
// updated first, as returned by history.Tx.FindActive.
func Evaluate(entries []*history.Entry) Decision {
	if len(entries) == 0 {
		return Decision{}
	}

	// Tie-break: the store orders by last_updated_at desc, so the first
	// entry is the most recent.
	latest := entries[0]
	decision := Decision{Matched: latest, Ambiguous: len(entries) > 1}

	switch latest.Status {
	case history.StatusFailed:
		decision.Retry = true
	default:
		// Pending, success, and anything unknown block. An in-flight or
		// completed download must not be fetched again inside the window.
		decision.Block = true
	}
	return decision
}
