package main

import "net/http"

// rateLimitMiddleware enforces a global rate limiter, skipping the scrape and
// stream endpoints so a throttled server can still be observed.
func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/metrics", "/metrics/stream", "/metrics/watch":
			next.ServeHTTP(w, r)
			return
		}
		if !rateLimiter.Allow() {
			// Set headers before writing status/body
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
			if c, err := rateLimited.With(nil); err == nil {
				c.Inc()
			}
			return
		}
		next.ServeHTTP(w, r)
	})
}
