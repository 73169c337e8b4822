package main

import (
	crand "crypto/rand"
	"encoding/hex"
	"net/http"
)

// requestIDMiddleware ensures X-Request-ID is present and echoed back.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = generateRequestID()
			r.Header.Set("X-Request-ID", requestID)
		}
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r)
	})
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := crand.Read(bytes); err != nil {
		panic("failed to generate request ID: " + err.Error())
	}
	return hex.EncodeToString(bytes)
}
