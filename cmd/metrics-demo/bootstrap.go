package main

import (
	"log"
	"os"
	"sync"
	"time"

	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"github.com/arun0009/httpmetrics/metrics"
	"github.com/arun0009/httpmetrics/middleware"
)

var (
	configLock sync.RWMutex
	config     Config
	startTime  time.Time

	registry     *metrics.Registry
	instrumenter *middleware.Instrumenter
	rateLimiter  *rate.Limiter
	store        *Store
)

// initializeServer builds all process-wide state: config, the metrics
// registry with its instrumentation and business families, the rate limiter,
// and the seeded demo store.
func initializeServer() {
	startTime = time.Now()

	cfg := loadConfigFromEnv()
	configLock.Lock()
	config = cfg
	if hostname, _ := os.Hostname(); hostname != "" {
		config.Hostname = hostname
	}
	configLock.Unlock()

	registry = metrics.NewRegistry()
	var err error
	instrumenter, err = middleware.New(registry, middleware.WithExemptPath("/metrics"))
	if err != nil {
		log.Fatalf("Failed to register HTTP metrics: %v", err)
	}
	registerBusinessMetrics(registry)

	configLock.RLock()
	if config.RateLimitRPS > 0 && config.RateLimitBurst > 0 {
		rateLimiter = rate.NewLimiter(rate.Limit(config.RateLimitRPS), config.RateLimitBurst)
	}
	seedFile := config.SeedFile
	configLock.RUnlock()

	store = newStore()
	if seedFile != "" {
		if data, err := os.ReadFile(seedFile); err == nil {
			var seed SeedData
			if err := yaml.Unmarshal(data, &seed); err == nil {
				store.seed(seed)
			} else {
				log.Printf("Failed to parse seed file: %v", err)
			}
		} else {
			log.Printf("Failed to read seed file %s: %v", seedFile, err)
		}
	}
	store.recordActiveUsers()
}
