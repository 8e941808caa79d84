package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Instance identifies one Radarr or Sonarr endpoint bound to a host category.
type Instance struct {
	Category string `toml:"category"`
	URL      string `toml:"url"`
	APIKey   string `toml:"api_key"`
}

// Notifier selects and configures the notification backend.
type Notifier struct {
	Enabled  bool   `toml:"enabled"`
	Name     string `toml:"name"`
	URL      string `toml:"url"`
	Token    string `toml:"token"`
	Priority int    `toml:"priority"`
}

// Config encapsulates all configuration values for loopguard.
//
// Sections by concern:
//   - duplicate detection: time_window_minutes, use_duplicate_key,
//     ignored_categories, ignore_no_category
//   - persistence: history_file, lock_timeout_seconds
//   - logging: log_file, max_log_size_mb, max_log_backups, log_level, log_format
//   - gateways: verify_ssl, gateway_timeout_seconds, radarr_instances,
//     sonarr_instances, notifier, wants_raw_data, notify_on_complete
type Config struct {
	TimeWindowMinutes     int        `toml:"time_window_minutes"`
	HistoryFile           string     `toml:"history_file"`
	LockTimeoutSeconds    int        `toml:"lock_timeout_seconds"`
	LogFile               string     `toml:"log_file"`
	MaxLogSizeMB          int        `toml:"max_log_size_mb"`
	MaxLogBackups         int        `toml:"max_log_backups"`
	LogLevel              string     `toml:"log_level"`
	LogFormat             string     `toml:"log_format"`
	IgnoredCategories     []string   `toml:"ignored_categories"`
	IgnoreNoCategory      bool       `toml:"ignore_no_category"`
	VerifySSL             bool       `toml:"verify_ssl"`
	WantsRawData          bool       `toml:"wants_raw_data"`
	UseDuplicateKey       bool       `toml:"use_duplicate_key"`
	NotifyOnComplete      bool       `toml:"notify_on_complete"`
	GatewayTimeoutSeconds int        `toml:"gateway_timeout_seconds"`
	RadarrInstances       []Instance `toml:"radarr_instances"`
	SonarrInstances       []Instance `toml:"sonarr_instances"`
	Notifier              Notifier   `toml:"notifier"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/loopguard/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. A missing file yields
// defaults with exists=false.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("loopguard.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the parent directories for the history and log files.
func (c *Config) EnsureDirectories() error {
	for _, path := range []string{c.HistoryFile, c.LogFile} {
		dir := filepath.Dir(path)
		if dir == "." || dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// TimeWindow returns the duplicate-detection window as a duration.
func (c *Config) TimeWindow() time.Duration {
	return time.Duration(c.TimeWindowMinutes) * time.Minute
}

// LockTimeout bounds history lock acquisition.
func (c *Config) LockTimeout() time.Duration {
	return time.Duration(c.LockTimeoutSeconds) * time.Second
}

// GatewayTimeout bounds each outbound blocklist or notifier call.
func (c *Config) GatewayTimeout() time.Duration {
	return time.Duration(c.GatewayTimeoutSeconds) * time.Second
}

// CategoryIgnored reports whether a submission in the given category should
// bypass duplicate detection entirely.
func (c *Config) CategoryIgnored(category string) bool {
	category = strings.TrimSpace(category)
	if category == "" {
		return c.IgnoreNoCategory
	}
	for _, ignored := range c.IgnoredCategories {
		if strings.EqualFold(strings.TrimSpace(ignored), category) {
			return true
		}
	}
	return false
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
