// Package history persists download attempts in SQLite and guards every
// read-modify-write with a cross-process file lock.
//
// Each entry records the matching identity of one submission together with
// its lifecycle status: pending until the host reports completion, then
// success or failed. Success and failed are terminal; a retry after a
// failure creates a fresh pending entry and supersedes the failed one.
// Entries older than the configured time window are inactive for every
// lookup and are physically removed by Prune.
//
// Handler invocations are short-lived processes sharing one database file,
// so mutations run inside Transact: a bounded flock acquisition followed by
// a SQL transaction, released on every exit path. Lock timeouts and corrupt
// databases surface as ErrUnavailable so callers can fail open.
package history
