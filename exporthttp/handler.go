// Package exporthttp serves a metrics.Registry over HTTP in the Prometheus
// text exposition format, ready to be scraped by a pull-based collector.
package exporthttp

import (
	"bytes"
	"log"
	"net/http"
	"strconv"

	"github.com/arun0009/httpmetrics/metrics"
)

// ContentType is the exposition format content type sent on every scrape.
const ContentType = "text/plain; version=0.0.4; charset=utf-8"

// Handler returns the scrape endpoint for reg. Snapshots are read without
// blocking concurrent metric writers; a serialization failure (only possible
// through internal state corruption) answers 500 and leaves the process
// serving.
func Handler(reg *metrics.Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var buf bytes.Buffer
		if err := WriteText(&buf, reg.Snapshot()); err != nil {
			log.Printf("metrics export failed: %v", err)
			http.Error(w, "metrics export failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", ContentType)
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}
		if _, err := buf.WriteTo(w); err != nil {
			log.Printf("metrics export write failed: %v", err)
		}
	})
}
