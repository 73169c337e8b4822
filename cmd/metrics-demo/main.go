package main

import (
	"log"
	"net/http"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

func main() {
	initializeServer()

	router := setupRoutes()

	// Wrap the router with h2c to support HTTP/2 over cleartext
	handler := h2c.NewHandler(router, &http2.Server{})

	server := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Metrics demo server starting on port %s", config.Port)
	log.Printf("Scrape endpoint: http://localhost:%s/metrics", config.Port)

	if err := startServer(server); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}
