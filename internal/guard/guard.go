package guard

import (
	"context"
	"log/slog"
	"time"

	"loopguard/internal/config"
	"loopguard/internal/history"
	"loopguard/internal/logging"
	"loopguard/internal/notify"
	"loopguard/internal/sab"
)

// Blocklister removes a release from the indexer manager's queue with
// blocklisting enabled. Implemented by arr.Gateway.
type Blocklister interface {
	Blocklist(ctx context.Context, category, title, downloadID string) (string, error)
}

// Guard wires the handlers to their dependencies.
type Guard struct {
	cfg       *config.Config
	store     *history.Store
	blocklist Blocklister
	notifier  notify.Notifier
	logger    *slog.Logger
	now       func() time.Time
}

// Option adjusts guard construction, primarily for tests.
type Option func(*Guard)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Guard) { g.now = now }
}

// New builds a guard. blocklister and notifier may be nil; the corresponding
// side effects are skipped.
func New(cfg *config.Config, store *history.Store, blocklister Blocklister, notifier notify.Notifier, logger *slog.Logger, opts ...Option) *Guard {
	if logger == nil {
		logger = logging.Discard()
	}
	g := &Guard{
		cfg:       cfg,
		store:     store,
		blocklist: blocklister,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Guard) send(ctx context.Context, logger *slog.Logger, event notify.Event) {
	if g.notifier == nil {
		return
	}
	if g.cfg.WantsRawData {
		raw := sab.AllVars()
		for key, value := range event.Raw {
			raw[key] = value
		}
		event.Raw = raw
	} else {
		event.Raw = nil
	}
	if err := g.notifier.Send(ctx, event); err != nil {
		logger.Error("notification failed", "backend", g.notifier.Name(), "error", err)
	}
}
