// Package guard implements the two SABnzbd hook handlers.
//
// The pre-queue handler decides whether a submitted job is a duplicate of
// an active history entry and records accepted jobs as pending. The
// post-process handler reconciles completion events back to their pending
// entries and finalizes their status.
//
// Both handlers fail open: when history is unavailable or any gateway
// call fails, the job is accepted and the failure is logged. Blocking a
// legitimate download is worse than letting a duplicate through once.
package guard
