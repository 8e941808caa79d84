package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeWindow()
	c.normalizeLogging()
	c.normalizeInstances()
	c.normalizeNotifier()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.HistoryFile) == "" {
		c.HistoryFile = defaultHistoryFile
	}
	if c.HistoryFile, err = expandPath(c.HistoryFile); err != nil {
		return fmt.Errorf("history_file: %w", err)
	}
	if strings.TrimSpace(c.LogFile) == "" {
		c.LogFile = defaultLogFile
	}
	if c.LogFile, err = expandPath(c.LogFile); err != nil {
		return fmt.Errorf("log_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeWindow() {
	if c.TimeWindowMinutes <= 0 {
		c.TimeWindowMinutes = defaultTimeWindowMinutes
	}
	if c.LockTimeoutSeconds <= 0 {
		c.LockTimeoutSeconds = defaultLockTimeoutSeconds
	}
	if c.GatewayTimeoutSeconds <= 0 {
		c.GatewayTimeoutSeconds = defaultGatewayTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.LogLevel = strings.ToUpper(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	if c.LogFormat == "" {
		c.LogFormat = defaultLogFormat
	}
	if c.MaxLogSizeMB <= 0 {
		c.MaxLogSizeMB = defaultMaxLogSizeMB
	}
	if c.MaxLogBackups < 0 {
		c.MaxLogBackups = 0
	}
}

func (c *Config) normalizeInstances() {
	trim := func(instances []Instance) []Instance {
		out := instances[:0]
		for _, inst := range instances {
			inst.Category = strings.TrimSpace(inst.Category)
			inst.URL = strings.TrimRight(strings.TrimSpace(inst.URL), "/")
			inst.APIKey = strings.TrimSpace(inst.APIKey)
			if inst.Category == "" && inst.URL == "" && inst.APIKey == "" {
				continue
			}
			out = append(out, inst)
		}
		return out
	}
	c.RadarrInstances = trim(c.RadarrInstances)
	c.SonarrInstances = trim(c.SonarrInstances)
}

func (c *Config) normalizeNotifier() {
	c.Notifier.Name = strings.ToLower(strings.TrimSpace(c.Notifier.Name))
	if c.Notifier.Name == "" {
		c.Notifier.Name = defaultNotifierName
	}
	c.Notifier.URL = strings.TrimRight(strings.TrimSpace(c.Notifier.URL), "/")
	c.Notifier.Token = strings.TrimSpace(c.Notifier.Token)
	if c.Notifier.Priority <= 0 {
		c.Notifier.Priority = defaultNotifierPriority
	}
}
