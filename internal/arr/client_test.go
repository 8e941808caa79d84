package arr_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"loopguard/internal/arr"
	"loopguard/internal/config"
)

type fakeQueue struct {
	records []map[string]any
	deleted []string
	apiKeys []string
}

func (f *fakeQueue) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.apiKeys = append(f.apiKeys, r.Header.Get("X-Api-Key"))
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/v3/queue":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"page":         1,
				"pageSize":     1000,
				"totalRecords": len(f.records),
				"records":      f.records,
			})
		case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/api/v3/queue/"):
			f.deleted = append(f.deleted, r.URL.Path+"?"+r.URL.RawQuery)
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}
}

func newTestClient(serverURL string) *arr.Client {
	return arr.NewClient(config.Instance{Category: "movies", URL: serverURL, APIKey: "secret"}, true, time.Second)
}

func TestBlocklistRemovesByDownloadID(t *testing.T) {
	queue := &fakeQueue{records: []map[string]any{
		{"id": 7, "title": "Decorated Queue Title", "downloadId": "SABnzbd_nzo_x"},
		{"id": 8, "title": "Other", "downloadId": "SABnzbd_nzo_y"},
	}}
	server := httptest.NewServer(queue.handler())
	defer server.Close()

	client := newTestClient(server.URL)
	if err := client.Blocklist(context.Background(), "No Such Title", "sabnzbd_NZO_X"); err != nil {
		t.Fatalf("Blocklist failed: %v", err)
	}

	if len(queue.deleted) != 1 {
		t.Fatalf("expected one delete, got %v", queue.deleted)
	}
	deleted := queue.deleted[0]
	if !strings.HasPrefix(deleted, "/api/v3/queue/7?") {
		t.Fatalf("deleted wrong item: %s", deleted)
	}
	if !strings.Contains(deleted, "blocklist=true") || !strings.Contains(deleted, "removeFromClient=true") {
		t.Fatalf("missing delete parameters: %s", deleted)
	}
	for _, key := range queue.apiKeys {
		if key != "secret" {
			t.Fatalf("expected api key on every request, got %q", key)
		}
	}
}

func TestBlocklistFallsBackToSubstringTitle(t *testing.T) {
	queue := &fakeQueue{records: []map[string]any{
		{"id": 3, "title": "Some.Movie.2024.1080p.BluRay [queued]", "downloadId": "zz"},
	}}
	server := httptest.NewServer(queue.handler())
	defer server.Close()

	client := newTestClient(server.URL)
	if err := client.Blocklist(context.Background(), "Some.Movie.2024.1080p.BluRay", ""); err != nil {
		t.Fatalf("Blocklist failed: %v", err)
	}
	if len(queue.deleted) != 1 || !strings.HasPrefix(queue.deleted[0], "/api/v3/queue/3?") {
		t.Fatalf("unexpected deletes: %v", queue.deleted)
	}
}

func TestBlocklistReportsMissingItem(t *testing.T) {
	queue := &fakeQueue{}
	server := httptest.NewServer(queue.handler())
	defer server.Close()

	client := newTestClient(server.URL)
	err := client.Blocklist(context.Background(), "Unknown Release", "nzo")
	if !errors.Is(err, arr.ErrQueueItemNotFound) {
		t.Fatalf("expected ErrQueueItemNotFound, got %v", err)
	}
	if len(queue.deleted) != 0 {
		t.Fatalf("unexpected deletes: %v", queue.deleted)
	}
}

func TestBlocklistSurfacesServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	err := client.Blocklist(context.Background(), "Anything", "")
	if err == nil || !strings.Contains(err.Error(), "500") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestGatewayRoutesByCategory(t *testing.T) {
	radarrQueue := &fakeQueue{records: []map[string]any{{"id": 1, "title": "Movie", "downloadId": "m1"}}}
	sonarrQueue := &fakeQueue{records: []map[string]any{{"id": 2, "title": "Show", "downloadId": "s1"}}}
	radarr := httptest.NewServer(radarrQueue.handler())
	defer radarr.Close()
	sonarr := httptest.NewServer(sonarrQueue.handler())
	defer sonarr.Close()

	cfg := &config.Config{
		VerifySSL:             true,
		GatewayTimeoutSeconds: 1,
		RadarrInstances:       []config.Instance{{Category: "movies", URL: radarr.URL, APIKey: "r"}},
		SonarrInstances:       []config.Instance{{Category: "tv", URL: sonarr.URL, APIKey: "s"}},
	}
	gateway := arr.NewGateway(cfg)

	kind, err := gateway.Blocklist(context.Background(), "TV", "Show", "s1")
	if err != nil || kind != "sonarr" {
		t.Fatalf("expected sonarr route, got kind=%q err=%v", kind, err)
	}
	if len(sonarrQueue.deleted) != 1 || len(radarrQueue.deleted) != 0 {
		t.Fatalf("wrong instance handled the request: sonarr=%v radarr=%v", sonarrQueue.deleted, radarrQueue.deleted)
	}

	if _, err := gateway.Blocklist(context.Background(), "books", "X", ""); !errors.Is(err, arr.ErrNoInstance) {
		t.Fatalf("expected ErrNoInstance, got %v", err)
	}
}

func TestGatewayFallsThroughToNextInstanceOnFailure(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer broken.Close()
	sonarrQueue := &fakeQueue{records: []map[string]any{{"id": 9, "title": "Show", "downloadId": "s9"}}}
	sonarr := httptest.NewServer(sonarrQueue.handler())
	defer sonarr.Close()

	cfg := &config.Config{
		VerifySSL:             true,
		GatewayTimeoutSeconds: 1,
		RadarrInstances:       []config.Instance{{Category: "tv", URL: broken.URL, APIKey: "r"}},
		SonarrInstances:       []config.Instance{{Category: "tv", URL: sonarr.URL, APIKey: "s"}},
	}
	gateway := arr.NewGateway(cfg)

	kind, err := gateway.Blocklist(context.Background(), "tv", "Show", "s9")
	if err != nil || kind != "sonarr" {
		t.Fatalf("expected fallback to sonarr, got kind=%q err=%v", kind, err)
	}
	if len(sonarrQueue.deleted) != 1 {
		t.Fatalf("expected sonarr to handle the request, deletes=%v", sonarrQueue.deleted)
	}

	// Every matching instance failing surfaces the last error, not a
	// missing-instance condition.
	cfg.SonarrInstances[0].URL = broken.URL
	gateway = arr.NewGateway(cfg)
	_, err = gateway.Blocklist(context.Background(), "tv", "Show", "s9")
	if err == nil || errors.Is(err, arr.ErrNoInstance) {
		t.Fatalf("expected a blocklist error when all instances fail, got %v", err)
	}
}

func TestFindQueueItemPaginates(t *testing.T) {
	var pagesServed []int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		page := 1
		fmt.Sscanf(r.URL.Query().Get("page"), "%d", &page)
		pagesServed = append(pagesServed, page)
		records := []map[string]any{{"id": 100 + page, "title": fmt.Sprintf("filler %d", page), "downloadId": ""}}
		if page == 2 {
			records = append(records, map[string]any{"id": 42, "title": "Wanted Release", "downloadId": "w"})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"page": page, "pageSize": 1, "totalRecords": 3, "records": records,
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	err := client.Blocklist(context.Background(), "Wanted Release", "")
	if err == nil {
		t.Fatal("expected delete 404 from bare handler")
	}
	if len(pagesServed) < 2 || pagesServed[0] != 1 || pagesServed[1] != 2 {
		t.Fatalf("expected sequential pagination, got %v", pagesServed)
	}
}
