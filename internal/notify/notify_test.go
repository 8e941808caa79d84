package notify_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"loopguard/internal/config"
	"loopguard/internal/logging"
	"loopguard/internal/notify"
)

func notifierConfig(name, url string) *config.Config {
	cfg := config.Default()
	cfg.Notifier = config.Notifier{Enabled: true, Name: name, URL: url, Token: "tok", Priority: 5}
	cfg.GatewayTimeoutSeconds = 1
	return &cfg
}

func TestGotifySendsMarkdownMessage(t *testing.T) {
	var gotPath, gotToken string
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.URL.Query().Get("token")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &payload)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := notify.New(notifierConfig("gotify", server.URL), logging.Discard())
	if notifier.Name() != "gotify" {
		t.Fatalf("expected gotify backend, got %s", notifier.Name())
	}

	err := notifier.Send(context.Background(), notify.Event{
		Title:   "Blocked",
		Message: "Duplicate download blocked",
		Raw:     map[string]string{"SAB_CAT": "movies", "SAB_FINAL_NAME": "X"},
	})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if gotPath != "/message" || gotToken != "tok" {
		t.Fatalf("unexpected request: path=%q token=%q", gotPath, gotToken)
	}
	if payload["title"] != "Blocked" {
		t.Fatalf("unexpected payload title: %#v", payload)
	}
	message, _ := payload["message"].(string)
	if !strings.Contains(message, "SAB_CAT=movies") || !strings.Contains(message, "```") {
		t.Fatalf("raw fields missing from message: %q", message)
	}
	if payload["priority"] != float64(5) {
		t.Fatalf("expected configured priority, got %v", payload["priority"])
	}
	extras, _ := payload["extras"].(map[string]any)
	if extras == nil || extras["client::display"] == nil {
		t.Fatalf("expected markdown display extras, got %#v", payload["extras"])
	}
}

func TestNtfySendsHeaderProtocol(t *testing.T) {
	var gotTitle, gotPriority, gotAuth, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTitle = r.Header.Get("Title")
		gotPriority = r.Header.Get("Priority")
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := notify.New(notifierConfig("ntfy", server.URL), logging.Discard())
	err := notifier.Send(context.Background(), notify.Event{Title: "Complete", Message: "done", Priority: 2})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if gotTitle != "Complete" || gotPriority != "2" || gotBody != "done" {
		t.Fatalf("unexpected request: title=%q priority=%q body=%q", gotTitle, gotPriority, gotBody)
	}
	if gotAuth != "Bearer tok" {
		t.Fatalf("expected bearer token, got %q", gotAuth)
	}
}

func TestDisabledAndUnknownBackendsAreNoop(t *testing.T) {
	cfg := config.Default()
	if name := notify.New(&cfg, logging.Discard()).Name(); name != "noop" {
		t.Fatalf("expected noop for disabled notifier, got %s", name)
	}

	unknown := notifierConfig("pigeon", "http://example.invalid")
	notifier := notify.New(unknown, logging.Discard())
	if notifier.Name() != "noop" {
		t.Fatalf("expected noop for unknown backend, got %s", notifier.Name())
	}
	if err := notifier.Send(context.Background(), notify.Event{Title: "x"}); err != nil {
		t.Fatalf("noop send must not fail: %v", err)
	}
}

func TestGotifySurfacesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	defer server.Close()

	notifier := notify.New(notifierConfig("gotify", server.URL), logging.Discard())
	err := notifier.Send(context.Background(), notify.Event{Title: "x", Message: "y"})
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected status error, got %v", err)
	}
}
