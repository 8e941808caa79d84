package history

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a history entry.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

var allStatuses = []Status{StatusPending, StatusSuccess, StatusFailed}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case StatusPending, StatusSuccess, StatusFailed:
		return normalized, true
	}
	return "", false
}

// CanTransition reports whether an entry may move from one status to another.
// Only pending entries transition; success and failed are terminal.
func CanTransition(from, to Status) bool {
	if from != StatusPending {
		return false
	}
	return to == StatusSuccess || to == StatusFailed
}

// Terminal reports whether a status ends an entry's lifecycle.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// Entry represents one tracked download attempt.
type Entry struct {
	ID             int64
	Identity       string
	DisplayName    string
	NormalizedName string
	DuplicateKey   string
	Category       string
	JobID          string
	Status         Status
	FirstSeenAt    time.Time
	LastUpdatedAt  time.Time
}

// ActiveAt reports whether the entry is still inside the detection window.
// Expiry is a pure function of time; physical pruning is independent.
func (e *Entry) ActiveAt(now time.Time, window time.Duration) bool {
	return now.Sub(e.LastUpdatedAt) <= window
}

// Age returns how long ago the entry was first recorded.
func (e *Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.FirstSeenAt)
}

// Stats is a count of entries grouped by status.
type Stats map[Status]int

// DatabaseHealth captures diagnostic information about the history database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	TableExists      bool
	IntegrityCheck   bool
	TotalEntries     int
	Error            string
}
