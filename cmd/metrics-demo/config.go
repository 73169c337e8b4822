package main

import (
	"os"
	"strconv"
	"time"
)

// Config holds server configuration
type Config struct {
	Port           string
	EnableTLS      bool
	CertFile       string
	KeyFile        string
	EnableCORS     bool
	LogRequests    bool
	RateLimitRPS   float64
	RateLimitBurst int
	SeedFile       string
	SimulateDelays bool
	FailureRate    float64
	StreamInterval time.Duration
	Hostname       string
}

// SeedData is the optional YAML file that pre-populates the demo store.
type SeedData struct {
	Users    []SeedUser    `yaml:"users" json:"users"`
	Products []SeedProduct `yaml:"products" json:"products"`
}

// SeedUser is one pre-populated user record.
type SeedUser struct {
	Name    string `yaml:"name" json:"name"`
	Email   string `yaml:"email" json:"email"`
	Address string `yaml:"address" json:"address"`
	Phone   string `yaml:"phone" json:"phone"`
	Active  bool   `yaml:"active" json:"active"`
}

// SeedProduct is one pre-populated product record.
type SeedProduct struct {
	SKU   string  `yaml:"sku" json:"sku"`
	Name  string  `yaml:"name" json:"name"`
	Price float64 `yaml:"price" json:"price"`
	Stock int     `yaml:"stock" json:"stock"`
}

// loadConfigFromEnv builds a Config from environment variables.
func loadConfigFromEnv() Config {
	return Config{
		Port:           getEnv("PORT", "8080"),
		EnableTLS:      getEnv("ENABLE_TLS", "false") == "true",
		CertFile:       getEnv("CERT_FILE", "server.crt"),
		KeyFile:        getEnv("KEY_FILE", "server.key"),
		EnableCORS:     getEnv("ENABLE_CORS", "true") == "true",
		LogRequests:    getEnv("LOG_REQUESTS", "true") == "true",
		RateLimitRPS:   parseFloat64(getEnv("RATE_LIMIT_RPS", "0")),
		RateLimitBurst: int(parseInt64(getEnv("RATE_LIMIT_BURST", "0"))),
		SeedFile:       getEnv("SEED_FILE", ""),
		SimulateDelays: getEnv("SIMULATE_DELAYS", "true") == "true",
		FailureRate:    parseFloat64(getEnv("FAILURE_RATE", "0.05")),
		StreamInterval: parseDuration(getEnv("STREAM_INTERVAL", "5s"), 5*time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt64(s string) int64 {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	return 0
}

func parseFloat64(s string) float64 {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return 0
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return fallback
}
