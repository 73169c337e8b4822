// Package middleware instruments every request of a gorilla/mux-routed HTTP
// service: request counts by method/route/status, latency and payload-size
// distributions, and an in-progress gauge that is balanced on every exit path
// including handler panics and client disconnects.
//
// The route label is always the matched route template (e.g. /users/{id}),
// never the raw path, so label cardinality stays bounded. Requests that reach
// the middleware without a matched route are labeled with RouteUnmatched;
// attach the middleware with Router.Use and additionally wrap the router's
// NotFoundHandler to have 404 traffic counted under that sentinel.
package middleware

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/arun0009/httpmetrics/metrics"
)

// RouteUnmatched is the route label used when no route template is known.
const RouteUnmatched = "unmatched"

// Option adjusts Instrumenter construction.
type Option func(*options)

type options struct {
	durationBuckets []float64
	sizeBuckets     []float64
	exemptPaths     map[string]struct{}
	errLog          *log.Logger
}

// WithDurationBuckets overrides the latency histogram bounds (seconds).
func WithDurationBuckets(buckets []float64) Option {
	return func(o *options) { o.durationBuckets = buckets }
}

// WithSizeBuckets overrides the request/response size histogram bounds (bytes).
func WithSizeBuckets(buckets []float64) Option {
	return func(o *options) { o.sizeBuckets = buckets }
}

// WithExemptPath excludes a raw request path from instrumentation. Typical
// use is the scrape endpoint itself, so scrapes do not count themselves.
func WithExemptPath(path string) Option {
	return func(o *options) { o.exemptPaths[path] = struct{}{} }
}

// WithErrorLog sets the logger for dropped metric updates. Defaults to the
// standard logger.
func WithErrorLog(l *log.Logger) Option {
	return func(o *options) { o.errLog = l }
}

// Instrumenter owns the standard HTTP metric families on a registry and
// produces the request-instrumentation middleware.
type Instrumenter struct {
	requests     *metrics.CounterVec
	duration     *metrics.HistogramVec
	inProgress   *metrics.GaugeVec
	requestSize  *metrics.HistogramVec
	responseSize *metrics.HistogramVec
	exemptPaths  map[string]struct{}
	errLog       *log.Logger
}

// New registers the HTTP metric families on reg. A registration conflict is
// returned as a *metrics.DuplicateMetricError and should stop startup.
func New(reg *metrics.Registry, opts ...Option) (*Instrumenter, error) {
	o := options{exemptPaths: make(map[string]struct{})}
	for _, opt := range opts {
		opt(&o)
	}
	if len(o.sizeBuckets) == 0 {
		o.sizeBuckets = []float64{64, 256, 1024, 4096, 16384, 65536, 262144, 1048576}
	}

	in := &Instrumenter{exemptPaths: o.exemptPaths, errLog: o.errLog}
	if in.errLog == nil {
		in.errLog = log.Default()
	}

	var err error
	if in.requests, err = reg.NewCounterVec(metrics.Opts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests.",
	}, []string{"method", "route", "status_code"}); err != nil {
		return nil, err
	}
	if in.duration, err = reg.NewHistogramVec(metrics.HistogramOpts{
		Opts: metrics.Opts{
			Name: "http_request_duration_seconds",
			Help: "HTTP request duration in seconds.",
		},
		Buckets: o.durationBuckets,
	}, []string{"method", "route"}); err != nil {
		return nil, err
	}
	if in.inProgress, err = reg.NewGaugeVec(metrics.Opts{
		Name: "http_requests_in_progress",
		Help: "Number of HTTP requests currently being served.",
	}, []string{"method", "route"}); err != nil {
		return nil, err
	}
	if in.requestSize, err = reg.NewHistogramVec(metrics.HistogramOpts{
		Opts: metrics.Opts{
			Name: "http_request_size_bytes",
			Help: "HTTP request size in bytes.",
		},
		Buckets: o.sizeBuckets,
	}, []string{"method", "route"}); err != nil {
		return nil, err
	}
	if in.responseSize, err = reg.NewHistogramVec(metrics.HistogramOpts{
		Opts: metrics.Opts{
			Name: "http_response_size_bytes",
			Help: "HTTP response size in bytes.",
		},
		Buckets: o.sizeBuckets,
	}, []string{"method", "route"}); err != nil {
		return nil, err
	}
	return in, nil
}

// Middleware wraps next with request instrumentation. It satisfies
// mux.MiddlewareFunc and never alters handler semantics: panics are recorded
// and re-raised unchanged, responses pass through untouched.
func (in *Instrumenter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, exempt := in.exemptPaths[r.URL.Path]; exempt {
			next.ServeHTTP(w, r)
			return
		}

		method := r.Method
		route := routeTemplate(r)
		start := time.Now()

		if g, err := in.inProgress.WithLabelValues(method, route); err == nil {
			g.Inc()
		} else {
			in.drop(err)
		}

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		// The finalizer runs on every exit path: normal return, handler
		// panic, or a handler that bailed out early on client disconnect.
		defer func() {
			rec := recover()
			elapsed := time.Since(start).Seconds()

			status := strconv.Itoa(rw.statusCode)
			if rec != nil && !rw.written {
				// Panic before any response was produced; net/http will
				// answer 500 (or drop the connection), count it as such.
				status = "500"
			}

			if c, err := in.requests.WithLabelValues(method, route, status); err == nil {
				c.Inc()
			} else {
				in.drop(err)
			}
			if h, err := in.duration.WithLabelValues(method, route); err == nil {
				h.Observe(elapsed)
			} else {
				in.drop(err)
			}
			if r.ContentLength >= 0 {
				if h, err := in.requestSize.WithLabelValues(method, route); err == nil {
					h.Observe(float64(r.ContentLength))
				} else {
					in.drop(err)
				}
			}
			if h, err := in.responseSize.WithLabelValues(method, route); err == nil {
				h.Observe(float64(rw.bytes))
			} else {
				in.drop(err)
			}
			if g, err := in.inProgress.WithLabelValues(method, route); err == nil {
				g.Dec()
			} else {
				in.drop(err)
			}

			if rec != nil {
				panic(rec)
			}
		}()

		next.ServeHTTP(rw, r)
	})
}

// drop logs a rejected metric update. Instrumentation is best effort: the
// sample is lost, the request is not.
func (in *Instrumenter) drop(err error) {
	in.errLog.Printf("metric update dropped: %v", err)
}

// routeTemplate resolves the normalized route label from the router's match
// metadata. Raw paths are never used as labels.
func routeTemplate(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return RouteUnmatched
	}
	tpl, err := route.GetPathTemplate()
	if err != nil || tpl == "" {
		return RouteUnmatched
	}
	return tpl
}
