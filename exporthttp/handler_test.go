package exporthttp

import (
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/arun0009/httpmetrics/metrics"
)

func newTestRegistry(t *testing.T) *metrics.Registry {
	t.Helper()
	reg := metrics.NewRegistry()

	cv, err := reg.NewCounterVec(metrics.Opts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests.",
	}, []string{"method", "route", "status_code"})
	if err != nil {
		t.Fatal(err)
	}
	c, _ := cv.With(metrics.Labels{"method": "GET", "route": "/users/{id}", "status_code": "200"})
	c.Add(3)
	c2, _ := cv.With(metrics.Labels{"method": "GET", "route": "/users/{id}", "status_code": "404"})
	c2.Inc()

	gv, err := reg.NewGaugeVec(metrics.Opts{
		Name: "http_requests_in_progress",
		Help: "Number of HTTP requests currently being served.",
	}, []string{"method", "route"})
	if err != nil {
		t.Fatal(err)
	}
	g, _ := gv.With(metrics.Labels{"method": "GET", "route": "/users/{id}"})
	g.Set(2)

	hv, err := reg.NewHistogramVec(metrics.HistogramOpts{
		Opts:    metrics.Opts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds."},
		Buckets: []float64{0.1, 0.5, 1},
	}, []string{"route"})
	if err != nil {
		t.Fatal(err)
	}
	h, _ := hv.With(metrics.Labels{"route": "/users/{id}"})
	h.Observe(0.05)
	h.Observe(0.25)
	h.Observe(2)

	return reg
}

func scrape(t *testing.T, reg *metrics.Registry) (*httptest.ResponseRecorder, map[string]*dto.MetricFamily) {
	t.Helper()
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("scrape status = %d, want 200", rr.Code)
	}

	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(strings.NewReader(rr.Body.String()))
	if err != nil {
		t.Fatalf("exposition output does not parse: %v\n%s", err, rr.Body.String())
	}
	return rr, mfs
}

func TestHandlerServesExpositionFormat(t *testing.T) {
	reg := newTestRegistry(t)
	rr, mfs := scrape(t, reg)

	if ct := rr.Header().Get("Content-Type"); ct != ContentType {
		t.Errorf("Content-Type = %q, want %q", ct, ContentType)
	}

	counters, ok := mfs["http_requests_total"]
	if !ok {
		t.Fatal("http_requests_total missing from scrape")
	}
	if counters.GetType() != dto.MetricType_COUNTER {
		t.Errorf("http_requests_total type = %v, want counter", counters.GetType())
	}
	if len(counters.Metric) != 2 {
		t.Fatalf("http_requests_total samples = %d, want 2", len(counters.Metric))
	}
	var total float64
	for _, m := range counters.Metric {
		total += m.Counter.GetValue()
	}
	if total != 4 {
		t.Errorf("summed http_requests_total = %v, want 4", total)
	}

	gauges, ok := mfs["http_requests_in_progress"]
	if !ok {
		t.Fatal("http_requests_in_progress missing from scrape")
	}
	if gauges.GetType() != dto.MetricType_GAUGE {
		t.Errorf("gauge family type = %v", gauges.GetType())
	}
	if got := gauges.Metric[0].Gauge.GetValue(); got != 2 {
		t.Errorf("gauge value = %v, want 2", got)
	}
}

func TestHandlerHistogramSeries(t *testing.T) {
	reg := newTestRegistry(t)
	_, mfs := scrape(t, reg)

	hist, ok := mfs["http_request_duration_seconds"]
	if !ok {
		t.Fatal("http_request_duration_seconds missing from scrape")
	}
	if hist.GetType() != dto.MetricType_HISTOGRAM {
		t.Fatalf("histogram family type = %v", hist.GetType())
	}
	h := hist.Metric[0].Histogram
	if h.GetSampleCount() != 3 {
		t.Errorf("sample count = %d, want 3", h.GetSampleCount())
	}
	if got := h.GetSampleSum(); math.Abs(got-2.3) > 1e-9 {
		t.Errorf("sample sum = %v, want 2.3", got)
	}

	// Buckets are cumulative: 0.05 -> le=0.1, 0.25 -> le=0.5, 2 -> +Inf.
	want := map[float64]uint64{0.1: 1, 0.5: 2, 1: 2}
	var prev uint64
	for _, b := range h.Bucket {
		if c, ok := want[b.GetUpperBound()]; ok && b.GetCumulativeCount() != c {
			t.Errorf("bucket le=%v count = %d, want %d", b.GetUpperBound(), b.GetCumulativeCount(), c)
		}
		if b.GetCumulativeCount() < prev {
			t.Errorf("bucket counts not cumulative: %v", h.Bucket)
		}
		prev = b.GetCumulativeCount()
	}
}

func TestHandlerEscapesLabelValues(t *testing.T) {
	reg := metrics.NewRegistry()
	cv, _ := reg.NewCounterVec(metrics.Opts{Name: "odd_total", Help: `has "quotes" and \slashes\`}, []string{"v"})
	c, _ := cv.With(metrics.Labels{"v": "a\"b\\c\nd"})
	c.Inc()

	_, mfs := scrape(t, reg)
	fam, ok := mfs["odd_total"]
	if !ok {
		t.Fatal("odd_total missing from scrape")
	}
	if got := fam.Metric[0].Label[0].GetValue(); got != "a\"b\\c\nd" {
		t.Errorf("label value round-trip = %q", got)
	}
}

func TestHandlerRejectsNonReadMethods(t *testing.T) {
	reg := newTestRegistry(t)
	req := httptest.NewRequest("POST", "/metrics", nil)
	rr := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /metrics status = %d, want 405", rr.Code)
	}
	if allow := rr.Header().Get("Allow"); allow != "GET, HEAD" {
		t.Errorf("Allow = %q", allow)
	}
}

func TestHandlerHead(t *testing.T) {
	reg := newTestRegistry(t)
	req := httptest.NewRequest("HEAD", "/metrics", nil)
	rr := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("HEAD /metrics status = %d, want 200", rr.Code)
	}
	if rr.Body.Len() != 0 {
		t.Errorf("HEAD body length = %d, want 0", rr.Body.Len())
	}
}

func TestWriteTextDeterministic(t *testing.T) {
	reg := newTestRegistry(t)
	var a, b strings.Builder
	if err := WriteText(&a, reg.Snapshot()); err != nil {
		t.Fatal(err)
	}
	if err := WriteText(&b, reg.Snapshot()); err != nil {
		t.Fatal(err)
	}
	if a.String() != b.String() {
		t.Error("two snapshots of idle registry serialized differently")
	}
}
