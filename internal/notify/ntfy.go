package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"loopguard/internal/config"
)

// ntfyNotifier publishes to an ntfy topic using the header protocol.
type ntfyNotifier struct {
	endpoint string
	token    string
	priority int
	client   *http.Client
}

func newNtfy(cfg *config.Config) *ntfyNotifier {
	timeout := cfg.GatewayTimeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyNotifier{
		endpoint: strings.TrimRight(strings.TrimSpace(cfg.Notifier.URL), "/"),
		token:    strings.TrimSpace(cfg.Notifier.Token),
		priority: cfg.Notifier.Priority,
		client:   &http.Client{Timeout: timeout},
	}
}

func (n *ntfyNotifier) Name() string { return "ntfy" }

func (n *ntfyNotifier) Send(ctx context.Context, event Event) error {
	message := event.Message
	if raw := formatRaw(event.Raw); raw != "" {
		message = message + "\n\n" + raw
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if event.Title != "" {
		req.Header.Set("Title", event.Title)
	}
	priority := event.Priority
	if priority == 0 {
		priority = n.priority
	}
	if priority > 0 {
		req.Header.Set("Priority", strconv.Itoa(priority))
	}
	if n.token != "" {
		req.Header.Set("Authorization", "Bearer "+n.token)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
