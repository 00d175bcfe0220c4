package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/lysyi3m/advex-rss/app/feed"
	"github.com/lysyi3m/advex-rss/app/tasks"
	"github.com/mmcdole/gofeed"
)

type MockStatusProvider struct {
	status tasks.RunStatus
	ok     bool
}

func (m *MockStatusProvider) LastRun() (tasks.RunStatus, bool) {
	return m.status, m.ok
}

func setupServer(t *testing.T, status *MockStatusProvider) (*feed.Writer, http.Handler) {
	t.Helper()

	writer := feed.NewWriter(t.TempDir(), "advex_papers")
	handler := NewHandler(writer, status, []string{"top25", "weekly", "all"}, "test")
	return writer, NewServer(handler)
}

func doRequest(server http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

func TestGetFeed(t *testing.T) {
	writer, server := setupServer(t, &MockStatusProvider{})

	if _, err := writer.Run("weekly", []byte("<rss/>")); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{"/feeds/weekly", "/feeds/weekly.xml"} {
		w := doRequest(server, "GET", path)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200 for %s, got %d", path, w.Code)
		}
		if w.Body.String() != "<rss/>" {
			t.Errorf("Expected body '<rss/>', got '%s'", w.Body.String())
		}
		if ct := w.Header().Get("Content-Type"); ct != "application/rss+xml; charset=utf-8" {
			t.Errorf("Expected RSS content type, got '%s'", ct)
		}
		if w.Header().Get("X-Feed-Tag") != "weekly" {
			t.Errorf("Expected X-Feed-Tag 'weekly', got '%s'", w.Header().Get("X-Feed-Tag"))
		}
	}
}

func TestGetFeedNotFound(t *testing.T) {
	_, server := setupServer(t, &MockStatusProvider{})

	w := doRequest(server, "GET", "/feeds/monthly")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestGetFeedInvalidTag(t *testing.T) {
	_, server := setupServer(t, &MockStatusProvider{})

	w := doRequest(server, "GET", "/feeds/bad%20tag")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestGetHealth(t *testing.T) {
	tests := []struct {
		name     string
		provider *MockStatusProvider
		expected string
	}{
		{"pending", &MockStatusProvider{}, "pending"},
		{"ok", &MockStatusProvider{ok: true, status: tasks.RunStatus{StartedAt: time.Now(), Feeds: []tasks.WrittenFeed{{Tag: "all", Items: 1}}}}, "ok"},
		{"error", &MockStatusProvider{ok: true, status: tasks.RunStatus{Error: "fetch failed"}}, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, server := setupServer(t, tt.provider)

			w := doRequest(server, "GET", "/health")
			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}

			var body map[string]interface{}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("Expected JSON body, got: %v", err)
			}
			if body["status"] != tt.expected {
				t.Errorf("Expected status '%s', got '%v'", tt.expected, body["status"])
			}
			if _, ok := body["last_run"]; ok != tt.provider.ok {
				t.Errorf("Expected last_run present=%t", tt.provider.ok)
			}
		})
	}
}

func TestGetIndex(t *testing.T) {
	_, server := setupServer(t, &MockStatusProvider{})

	w := doRequest(server, "GET", "/")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var body struct {
		Service string            `json:"service"`
		Feeds   map[string]string `json:"feeds"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}

	if body.Service != "advex-rss" {
		t.Errorf("Expected service 'advex-rss', got '%s'", body.Service)
	}
	if body.Feeds["top25"] != "/feeds/top25" || len(body.Feeds) != 3 {
		t.Errorf("Unexpected feeds listing: %v", body.Feeds)
	}
}

func TestOptionsRequest(t *testing.T) {
	_, server := setupServer(t, &MockStatusProvider{})

	w := doRequest(server, "OPTIONS", "/feeds/all")
	if w.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Expected CORS header")
	}
}

func renderFeed(t *testing.T, items int) []byte {
	t.Helper()

	doc := &feed.Document{Channel: feed.DefaultConfig().Channel.Channel(time.Now())}
	for i := 0; i < items; i++ {
		doc.Items = append(doc.Items, feed.Item{
			Title:       fmt.Sprintf("Paper %d", i),
			Link:        fmt.Sprintf("https://example.com/%d", i),
			Description: "An abstract long enough to make every write take a while to finish.",
			Author:      "A,B",
			PublishedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		})
	}

	data, err := feed.NewGenerator().Run(doc)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestGetFeedDuringRewrite(t *testing.T) {
	writer, server := setupServer(t, &MockStatusProvider{})

	small := renderFeed(t, 500)
	large := renderFeed(t, 3000)

	if _, err := writer.Run("all", large); err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-done:
				return
			default:
			}
			data := large
			if i%2 == 0 {
				data = small
			}
			if _, err := writer.Run("all", data); err != nil {
				t.Errorf("Expected no write error, got: %v", err)
				return
			}
		}
	}()

	parser := gofeed.NewParser()
	for i := 0; i < 300; i++ {
		w := doRequest(server, "GET", "/feeds/all")
		if w.Code != http.StatusOK {
			t.Errorf("Request %d: expected status 200, got %d", i, w.Code)
			continue
		}

		body := w.Body.Bytes()
		if !bytes.Equal(body, small) && !bytes.Equal(body, large) {
			t.Errorf("Request %d: got a partial feed of %d bytes (complete sizes %d and %d)", i, len(body), len(small), len(large))
			continue
		}

		parsed, err := parser.Parse(bytes.NewReader(body))
		if err != nil {
			t.Errorf("Request %d: expected feed to parse, got: %v", i, err)
			continue
		}
		if len(parsed.Items) != 500 && len(parsed.Items) != 3000 {
			t.Errorf("Request %d: unexpected item count %d", i, len(parsed.Items))
		}
	}

	close(done)
	wg.Wait()
}
