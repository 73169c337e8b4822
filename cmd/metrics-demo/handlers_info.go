package main

import (
	"net/http"
	"runtime"
	"time"
)

// Health check handlers
func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now(),
		"uptime":    time.Since(startTime).String(),
	})
}

func readyHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Server info handler
func infoHandler(w http.ResponseWriter, r *http.Request) {
	configLock.RLock()
	hostname := config.Hostname
	simulate := config.SimulateDelays
	failureRate := config.FailureRate
	configLock.RUnlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"timestamp":  time.Now(),
		"request_id": r.Header.Get("X-Request-ID"),
		"protocol":   r.Proto,
		"tls":        r.TLS != nil,
		"server": map[string]interface{}{
			"hostname":        hostname,
			"version":         "1.0.0",
			"go_version":      runtime.Version(),
			"platform":        runtime.GOOS + "/" + runtime.GOARCH,
			"start_time":      startTime,
			"uptime":          time.Since(startTime).String(),
			"simulate_delays": simulate,
			"failure_rate":    failureRate,
		},
	})
}
