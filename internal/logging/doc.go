// Package logging builds the slog loggers used by every loopguard invocation.
//
// Output goes to the configured log file (rotated by size with numbered
// backups) and, for CLI runs, to stderr. The configured level follows the
// host-facing vocabulary: ALL logs everything, INFO and ERROR filter
// accordingly, NONE discards all output. Handlers are available in a compact
// console format and JSON.
package logging
