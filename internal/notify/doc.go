// Package notify delivers push notifications for block decisions and
// completed downloads.
//
// Backends are selected by name in the configuration. A disabled or
// unrecognized notifier resolves to a noop backend so handler code can
// always send without nil checks; the unrecognized case is logged as an
// error at construction time rather than silently dropped.
package notify
