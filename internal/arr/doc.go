// Package arr talks to Radarr and Sonarr over their v3 HTTP APIs.
//
// When a duplicate submission is blocked after a successful earlier
// download, the release is still sitting in the indexer manager's queue
// and would be grabbed again on the next search. The gateway finds the
// queue item on the instance responsible for the submission's category
// and removes it with blocklisting enabled so the release is not
// re-grabbed.
//
// Gateway failures are reported to the caller but must never influence
// the block/allow decision; callers log and move on.
package arr
