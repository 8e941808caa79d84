package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"loopguard/internal/config"
)

// gotifyNotifier posts messages to a Gotify server's /message endpoint.
type gotifyNotifier struct {
	endpoint string
	token    string
	priority int
	client   *http.Client
}

func newGotify(cfg *config.Config) *gotifyNotifier {
	timeout := cfg.GatewayTimeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &gotifyNotifier{
		endpoint: strings.TrimRight(strings.TrimSpace(cfg.Notifier.URL), "/"),
		token:    strings.TrimSpace(cfg.Notifier.Token),
		priority: cfg.Notifier.Priority,
		client:   &http.Client{Timeout: timeout},
	}
}

func (g *gotifyNotifier) Name() string { return "gotify" }

type gotifyMessage struct {
	Title    string         `json:"title"`
	Message  string         `json:"message"`
	Priority int            `json:"priority"`
	Extras   map[string]any `json:"extras,omitempty"`
}

func (g *gotifyNotifier) Send(ctx context.Context, event Event) error {
	message := event.Message
	if raw := formatRaw(event.Raw); raw != "" {
		message = fmt.Sprintf("%s\n\n```\n%s\n```", message, raw)
	}

	priority := event.Priority
	if priority == 0 {
		priority = g.priority
	}

	body, err := json.Marshal(gotifyMessage{
		Title:    event.Title,
		Message:  message,
		Priority: priority,
		Extras: map[string]any{
			"client::display": map[string]any{"contentType": "text/markdown"},
		},
	})
	if err != nil {
		return fmt.Errorf("encode gotify message: %w", err)
	}

	endpoint := fmt.Sprintf("%s/message?token=%s", g.endpoint, url.QueryEscape(g.token))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build gotify request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("send gotify notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("gotify returned %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
