package main

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/arun0009/httpmetrics/exporthttp"
)

// setupRoutes configures all HTTP routes and middleware for the server.
func setupRoutes() *mux.Router {
	router := mux.NewRouter()

	// Apply middleware. Instrumentation runs first so it times everything
	// downstream, including the other middleware.
	router.Use(instrumenter.Middleware)
	router.Use(loggingMiddleware)
	router.Use(corsMiddleware)
	router.Use(requestIDMiddleware)
	if rateLimiter != nil {
		router.Use(rateLimitMiddleware)
	}
	// mux skips Use-middlewares for unmatched paths and method mismatches;
	// wrap those handlers so such traffic is still counted (under the
	// sentinel route) and OPTIONS preflights still get CORS treatment.
	router.NotFoundHandler = instrumenter.Middleware(http.NotFoundHandler())
	router.MethodNotAllowedHandler = instrumenter.Middleware(corsMiddleware(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		})))

	// Health check endpoints
	router.HandleFunc("/health", healthHandler).Methods("GET")
	router.HandleFunc("/ready", readyHandler).Methods("GET")

	// Server info
	router.HandleFunc("/info", infoHandler).Methods("GET")

	// Users
	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/users", listUsersHandler).Methods("GET")
	api.HandleFunc("/users", createUserHandler).Methods("POST")
	api.HandleFunc("/users/{id}", getUserHandler).Methods("GET")
	api.HandleFunc("/users/{id}", updateUserHandler).Methods("PUT")
	api.HandleFunc("/users/{id}", deleteUserHandler).Methods("DELETE")

	// Orders and payments
	api.HandleFunc("/orders", listOrdersHandler).Methods("GET")
	api.HandleFunc("/orders", createOrderHandler).Methods("POST")
	api.HandleFunc("/orders/{id}", getOrderHandler).Methods("GET")
	api.HandleFunc("/payments", createPaymentHandler).Methods("POST")

	// Demo workflow chaining all simulated services
	api.HandleFunc("/demo/complete-order-flow", completeOrderFlowHandler).Methods("POST")

	// Scrape endpoint and live metric streams
	router.Handle("/metrics", exporthttp.Handler(registry)).Methods("GET", "HEAD")
	router.HandleFunc("/metrics/stream", metricsStreamHandler).Methods("GET")
	router.HandleFunc("/metrics/watch", metricsWatchHandler).Methods("GET")

	return router
}
