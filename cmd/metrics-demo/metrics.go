package main

import "github.com/arun0009/httpmetrics/metrics"

// Business metrics, recorded by the simulated services alongside the HTTP
// families the middleware owns.
var (
	ordersCreated *metrics.CounterVec
	payments      *metrics.CounterVec
	orderAmount   *metrics.HistogramVec
	activeUsers   *metrics.GaugeVec
	rateLimited   *metrics.CounterVec
)

// registerBusinessMetrics declares the demo's metric families on the shared
// registry. A conflict here is a programming error and aborts startup.
func registerBusinessMetrics(reg *metrics.Registry) {
	ordersCreated = reg.MustNewCounterVec(
		metrics.Opts{
			Name: "demo_orders_created_total",
			Help: "Total number of orders created, by outcome.",
		},
		[]string{"status"},
	)
	payments = reg.MustNewCounterVec(
		metrics.Opts{
			Name: "demo_payments_total",
			Help: "Total number of payment attempts.",
		},
		[]string{"method", "status"},
	)
	orderAmount = reg.MustNewHistogramVec(
		metrics.HistogramOpts{
			Opts: metrics.Opts{
				Name: "demo_order_amount_dollars",
				Help: "Distribution of order totals in dollars.",
			},
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500},
		},
		[]string{"status"},
	)
	activeUsers = reg.MustNewGaugeVec(
		metrics.Opts{
			Name: "demo_users_active",
			Help: "Number of active users in the store.",
		},
		nil,
	)
	rateLimited = reg.MustNewCounterVec(
		metrics.Opts{
			Name: "demo_rate_limited_total",
			Help: "Requests rejected by the global rate limiter.",
		},
		nil,
	)
}
