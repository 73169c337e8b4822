package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/arun0009/httpmetrics/metrics"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// streamEvent is one live-metrics push, shared by the SSE and WebSocket
// endpoints.
type streamEvent struct {
	Timestamp time.Time       `json:"timestamp"`
	Uptime    string          `json:"uptime"`
	Families  []familyPayload `json:"families"`
}

type familyPayload struct {
	Name    string          `json:"name"`
	Kind    string          `json:"kind"`
	Samples []samplePayload `json:"samples"`
}

type samplePayload struct {
	Labels map[string]string `json:"labels,omitempty"`
	Value  float64           `json:"value"`
	Count  uint64            `json:"count,omitempty"`
}

func buildStreamEvent() streamEvent {
	ev := streamEvent{
		Timestamp: time.Now(),
		Uptime:    time.Since(startTime).String(),
	}
	for _, fam := range registry.Snapshot() {
		fp := familyPayload{Name: fam.Name, Kind: fam.Kind.String()}
		for _, s := range fam.Samples {
			sp := samplePayload{Value: s.Value}
			if len(fam.LabelNames) > 0 {
				sp.Labels = make(map[string]string, len(fam.LabelNames))
				for i, n := range fam.LabelNames {
					sp.Labels[n] = s.LabelValues[i]
				}
			}
			if fam.Kind == metrics.KindHistogram && s.Histogram != nil {
				sp.Count = s.Histogram.Count
			}
			fp.Samples = append(fp.Samples, sp)
		}
		ev.Families = append(ev.Families, fp)
	}
	return ev
}

func streamInterval() time.Duration {
	configLock.RLock()
	defer configLock.RUnlock()
	return config.StreamInterval
}

// metricsStreamHandler pushes periodic registry snapshots over Server-Sent
// Events until the client disconnects.
func metricsStreamHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher, ok := w.(http.Flusher)
	if !ok {
		log.Printf("Streaming not supported for %s", r.RemoteAddr)
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	log.Printf("Metrics stream established for %s", r.RemoteAddr)

	ticker := time.NewTicker(streamInterval())
	keepAlive := time.NewTicker(1 * time.Second)
	defer ticker.Stop()
	defer keepAlive.Stop()

	send := func() bool {
		jsonData, err := json.Marshal(buildStreamEvent())
		if err != nil {
			log.Printf("Metrics stream marshal error for %s: %v", r.RemoteAddr, err)
			return false
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", jsonData); err != nil {
			log.Printf("Metrics stream write error for %s: %v", r.RemoteAddr, err)
			return false
		}
		flusher.Flush()
		return true
	}

	if !send() {
		return
	}
	for {
		select {
		case <-r.Context().Done():
			log.Printf("Metrics stream closed by client %s: %v", r.RemoteAddr, r.Context().Err())
			return
		case <-ticker.C:
			if !send() {
				return
			}
		case <-keepAlive.C:
			if _, err := fmt.Fprintf(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// metricsWatchHandler pushes periodic registry snapshots over a WebSocket.
func metricsWatchHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}
	defer conn.Close()
	log.Printf("Metrics watch connected: %s", r.RemoteAddr)

	// The reader's only job is to notice the client going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(streamInterval())
	defer ticker.Stop()

	if err := conn.WriteJSON(buildStreamEvent()); err != nil {
		return
	}
	for {
		select {
		case <-done:
			log.Printf("Metrics watch closed by client %s", r.RemoteAddr)
			return
		case <-ticker.C:
			if err := conn.WriteJSON(buildStreamEvent()); err != nil {
				log.Printf("Metrics watch write error for %s: %v", r.RemoteAddr, err)
				return
			}
		}
	}
}
