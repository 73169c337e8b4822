package main

import (
	"bufio"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"
)

// statusRecorder captures the status code for the completion log line.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.written {
		sr.statusCode = code
		sr.written = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(p []byte) (int, error) {
	sr.written = true
	return sr.ResponseWriter.Write(p)
}

func (sr *statusRecorder) Flush() {
	if flusher, ok := sr.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Hijack keeps WebSocket upgrades working behind the logging wrapper.
func (sr *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := sr.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, fmt.Errorf("response does not implement http.Hijacker")
}

// loggingMiddleware logs the request and completion lines. Measurement is the
// instrumentation middleware's job; this only produces operator-facing logs.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		configLock.RLock()
		logRequests := config.LogRequests
		configLock.RUnlock()

		if !logRequests {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		log.Printf("%s %s %s", r.RemoteAddr, r.Method, r.URL.Path)

		sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(sr, r)

		log.Printf("%s %s %s - %d %v", r.RemoteAddr, r.Method, r.URL.Path, sr.statusCode, time.Since(start))
	})
}
