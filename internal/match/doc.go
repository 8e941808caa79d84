// Package match implements the duplicate-detection decision logic.
//
// Pre-queue: a candidate submission is reduced to a matching identity
// (the host's duplicate key when available and enabled, otherwise the
// normalized release name) and compared against active history entries.
// A pending or successful entry inside the window blocks the submission;
// a failed entry allows a retry.
//
// Post-completion: completion events can carry slightly different names
// than the original submission, so reconciliation walks an ordered chain
// of match methods from most to least reliable - duplicate key, job id,
// normalized name, fuzzy name, category plus time proximity. The first
// method producing a unique candidate wins; ties resolve to the most
// recently updated entry and are reported as ambiguous for logging.
//
// All functions here are pure; persistence and locking live in the
// history package.
package match
