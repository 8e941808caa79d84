package config

import (
	"errors"
	"fmt"
	"strings"
)

var validLogLevels = map[string]struct{}{
	"ALL":   {},
	"INFO":  {},
	"ERROR": {},
	"NONE":  {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateInstances(c.RadarrInstances, "radarr_instances"); err != nil {
		return err
	}
	if err := c.validateInstances(c.SonarrInstances, "sonarr_instances"); err != nil {
		return err
	}
	return c.validateHistory()
}

func (c *Config) validateLogging() error {
	if _, ok := validLogLevels[c.LogLevel]; !ok {
		return fmt.Errorf("log_level must be one of ALL, INFO, ERROR, NONE (got %q)", c.LogLevel)
	}
	switch c.LogFormat {
	case "console", "json":
		return nil
	default:
		return fmt.Errorf("log_format must be console or json (got %q)", c.LogFormat)
	}
}

func (c *Config) validateInstances(instances []Instance, section string) error {
	seen := make(map[string]struct{}, len(instances))
	for i, inst := range instances {
		if inst.Category == "" {
			return fmt.Errorf("%s[%d]: category is required", section, i)
		}
		if inst.URL == "" {
			return fmt.Errorf("%s[%d] (%s): url is required", section, i, inst.Category)
		}
		if !strings.HasPrefix(inst.URL, "http://") && !strings.HasPrefix(inst.URL, "https://") {
			return fmt.Errorf("%s[%d] (%s): url must start with http:// or https://", section, i, inst.Category)
		}
		if inst.APIKey == "" {
			return fmt.Errorf("%s[%d] (%s): api_key is required", section, i, inst.Category)
		}
		key := strings.ToLower(inst.Category)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%s: duplicate category %q", section, inst.Category)
		}
		seen[key] = struct{}{}
	}
	return nil
}

func (c *Config) validateHistory() error {
	if strings.TrimSpace(c.HistoryFile) == "" {
		return errors.New("history_file must be set")
	}
	if c.HistoryFile == c.LogFile {
		return errors.New("history_file and log_file must differ")
	}
	return nil
}
