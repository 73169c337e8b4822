package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestMetricsStreamSSE(t *testing.T) {
	setupTest()

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest("GET", "/metrics/stream", nil).WithContext(ctx)
	rr := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		metricsStreamHandler(rr, req)
	}()

	// Wait past the first immediate event plus one ticker interval.
	time.Sleep(120 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream handler did not stop on context cancel")
	}

	if ct := rr.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "data: ") {
		t.Fatalf("no SSE events in body:\n%s", body)
	}

	// Every data line carries a parseable snapshot event.
	for _, line := range strings.Split(body, "\n") {
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev streamEvent
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
			t.Fatalf("unparseable event %q: %v", line, err)
		}
		if len(ev.Families) == 0 {
			t.Error("event has no metric families")
		}
	}
}

func TestMetricsWatchWebSocket(t *testing.T) {
	setupTest()
	router := setupRoutes()
	server := httptest.NewServer(router)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/metrics/watch"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("WebSocket dial failed: %v (resp: %v)", err, resp)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev streamEvent
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("reading first snapshot: %v", err)
	}
	if len(ev.Families) == 0 {
		t.Fatal("snapshot has no metric families")
	}
	names := make(map[string]bool)
	for _, fam := range ev.Families {
		names[fam.Name] = true
	}
	for _, want := range []string{"http_requests_total", "demo_users_active"} {
		if !names[want] {
			t.Errorf("snapshot missing family %q", want)
		}
	}

	// A second event arrives on the ticker without any client message.
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("reading second snapshot: %v", err)
	}
}

func TestHealthReadyInfo(t *testing.T) {
	setupTest()
	router := setupRoutes()

	rr := doJSON(t, router, "GET", "/health", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("health = %d", rr.Code)
	}
	var health map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &health); err != nil {
		t.Fatal("Failed to parse response:", err)
	}
	if health["status"] != "healthy" {
		t.Errorf("health status = %v", health["status"])
	}

	rr = doJSON(t, router, "GET", "/ready", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("ready = %d", rr.Code)
	}

	rr = doJSON(t, router, "GET", "/info", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("info = %d", rr.Code)
	}
	var info map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &info); err != nil {
		t.Fatal(err)
	}
	if _, ok := info["server"]; !ok {
		t.Error("info missing server block")
	}
}
