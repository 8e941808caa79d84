package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"loopguard/internal/arr"
	"loopguard/internal/config"
	"loopguard/internal/guard"
	"loopguard/internal/history"
	"loopguard/internal/logging"
	"loopguard/internal/notify"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// newRunLogger builds the configured logger tagged with a fresh run id so
// concurrent hook invocations stay distinguishable in the shared log file.
func (c *commandContext) newRunLogger(cfg *config.Config) (*slog.Logger, error) {
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return logger.With("run_id", uuid.NewString()), nil
}

func (c *commandContext) openStore() (*history.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return history.Open(cfg)
}

func (c *commandContext) newGuard(cfg *config.Config, store *history.Store, logger *slog.Logger) *guard.Guard {
	return guard.New(cfg, store, arr.NewGateway(cfg), notify.New(cfg, logger), logger)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
