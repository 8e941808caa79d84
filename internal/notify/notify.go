package notify

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"loopguard/internal/config"
)

const userAgent = "Loopguard-Go/0.1.0"

// Event is one notification to deliver.
type Event struct {
	Title    string
	Message  string
	Priority int
	// Raw carries the host's raw event fields. Backends append them to the
	// message when present; the guard only populates them when the operator
	// opted in to raw data.
	Raw map[string]string
}

// Notifier delivers events to a push backend.
type Notifier interface {
	Name() string
	Send(ctx context.Context, event Event) error
}

// New selects the configured backend. Disabled configurations get a noop
// notifier; an unknown backend name also resolves to noop after an error log
// so a typo never breaks the decision flow.
func New(cfg *config.Config, logger *slog.Logger) Notifier {
	if !cfg.Notifier.Enabled {
		return noopNotifier{}
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Notifier.Name)) {
	case "gotify":
		return newGotify(cfg)
	case "ntfy":
		return newNtfy(cfg)
	case "noop", "":
		return noopNotifier{}
	default:
		if logger != nil {
			logger.Error("unknown notifier backend, notifications disabled", "name", cfg.Notifier.Name)
		}
		return noopNotifier{}
	}
}

type noopNotifier struct{}

func (noopNotifier) Name() string                      { return "noop" }
func (noopNotifier) Send(context.Context, Event) error { return nil }

// formatRaw renders the raw host fields as sorted key=value lines.
func formatRaw(raw map[string]string) string {
	if len(raw) == 0 {
		return ""
	}
	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var builder strings.Builder
	for _, key := range keys {
		builder.WriteString(key)
		builder.WriteString("=")
		builder.WriteString(raw[key])
		builder.WriteString("\n")
	}
	return strings.TrimRight(builder.String(), "\n")
}
