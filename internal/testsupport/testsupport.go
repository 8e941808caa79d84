// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"loopguard/internal/config"
	"loopguard/internal/history"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp paths per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.HistoryFile = filepath.Join(base, "history.db")
	cfg.LogFile = filepath.Join(base, "loopguard.log")
	cfg.LogLevel = "NONE"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithWindowMinutes overrides the duplicate-detection window.
func WithWindowMinutes(minutes int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.TimeWindowMinutes = minutes
	}
}

// MustOpenStore opens a history.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
