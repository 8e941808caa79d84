package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"loopguard/internal/config"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")
	cfg, path, exists, err := config.Load(missing)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if path != missing {
		t.Fatalf("unexpected resolved path %q", path)
	}
	if cfg.TimeWindowMinutes != 1440 {
		t.Fatalf("expected default window, got %d", cfg.TimeWindowMinutes)
	}
	if !cfg.UseDuplicateKey || !cfg.VerifySSL {
		t.Fatal("expected use_duplicate_key and verify_ssl to default on")
	}
	if cfg.TimeWindow() != 1440*time.Minute {
		t.Fatalf("unexpected window duration %s", cfg.TimeWindow())
	}
}

func TestLoadParsesInstancesAndNotifier(t *testing.T) {
	path := writeConfig(t, `
time_window_minutes = 60
log_level = "error"
ignored_categories = ["manual", "Books"]

[[radarr_instances]]
category = "movies"
url = "http://localhost:7878/"
api_key = "abc"

[notifier]
enabled = true
name = "Gotify"
url = "http://gotify.local/"
token = "tok"
`)

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if cfg.TimeWindowMinutes != 60 {
		t.Fatalf("expected window 60, got %d", cfg.TimeWindowMinutes)
	}
	if cfg.LogLevel != "ERROR" {
		t.Fatalf("expected normalized log level ERROR, got %q", cfg.LogLevel)
	}
	if len(cfg.RadarrInstances) != 1 {
		t.Fatalf("expected one radarr instance, got %d", len(cfg.RadarrInstances))
	}
	if got := cfg.RadarrInstances[0].URL; got != "http://localhost:7878" {
		t.Fatalf("expected trailing slash trimmed, got %q", got)
	}
	if cfg.Notifier.Name != "gotify" {
		t.Fatalf("expected lowercased notifier name, got %q", cfg.Notifier.Name)
	}
	if cfg.Notifier.URL != "http://gotify.local" {
		t.Fatalf("expected trimmed notifier url, got %q", cfg.Notifier.URL)
	}
}

func TestLoadRejectsInvalidLogLevel(t *testing.T) {
	path := writeConfig(t, `log_level = "verbose"`)
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for invalid log level")
	}
}

func TestLoadRejectsIncompleteInstance(t *testing.T) {
	path := writeConfig(t, `
[[sonarr_instances]]
category = "tv"
url = "http://localhost:8989"
`)
	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "api_key") {
		t.Fatalf("expected api_key error, got %v", err)
	}
}

func TestCategoryIgnored(t *testing.T) {
	cfg := config.Default()
	cfg.IgnoredCategories = []string{"manual"}

	if !cfg.CategoryIgnored("manual") {
		t.Fatal("expected manual to be ignored")
	}
	if !cfg.CategoryIgnored("Manual") {
		t.Fatal("expected case-insensitive match")
	}
	if cfg.CategoryIgnored("movies") {
		t.Fatal("did not expect movies to be ignored")
	}
	if cfg.CategoryIgnored("") {
		t.Fatal("empty category should pass when ignore_no_category is off")
	}

	cfg.IgnoreNoCategory = true
	if !cfg.CategoryIgnored("") {
		t.Fatal("empty category should be ignored when ignore_no_category is on")
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.HistoryFile = filepath.Join(base, "state", "history.db")
	cfg.LogFile = filepath.Join(base, "logs", "loopguard.log")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{filepath.Join(base, "state"), filepath.Join(base, "logs")} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s to exist", dir)
		}
	}
}
