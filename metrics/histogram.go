package metrics

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"
)

// DefBuckets are the default histogram bounds, tuned for request latencies in
// seconds from 5ms to 10s.
var DefBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// HistogramVec is a family of fixed-bucket distributions keyed by label
// values. Every cell of the family shares the same bucket bounds.
type HistogramVec struct {
	name   string
	help   string
	names  []string
	bounds []float64

	mu    sync.RWMutex
	cells map[string]*Histogram
}

// NewHistogramVec declares a histogram family on the registry. Bounds are
// sorted and deduplicated; an explicit +Inf bound is stripped since the
// overflow bucket is implicit. Leaving Buckets nil selects DefBuckets.
func (r *Registry) NewHistogramVec(opts HistogramOpts, labelNames []string) (*HistogramVec, error) {
	bounds, err := normalizeBuckets(opts.Name, opts.Buckets)
	if err != nil {
		return nil, err
	}
	hv := &HistogramVec{
		name:   opts.Name,
		help:   opts.Help,
		names:  append([]string(nil), labelNames...),
		bounds: bounds,
		cells:  make(map[string]*Histogram),
	}
	f, err := r.register(hv)
	if err != nil {
		return nil, err
	}
	return f.(*HistogramVec), nil
}

// MustNewHistogramVec is NewHistogramVec that panics on error.
func (r *Registry) MustNewHistogramVec(opts HistogramOpts, labelNames []string) *HistogramVec {
	hv, err := r.NewHistogramVec(opts, labelNames)
	if err != nil {
		panic(err)
	}
	return hv
}

func normalizeBuckets(metric string, buckets []float64) ([]float64, error) {
	if len(buckets) == 0 {
		buckets = DefBuckets
	}
	bounds := append([]float64(nil), buckets...)
	sort.Float64s(bounds)
	out := bounds[:0]
	for _, b := range bounds {
		if math.IsNaN(b) {
			return nil, &DuplicateMetricError{Name: metric, Reason: "NaN bucket bound"}
		}
		if math.IsInf(b, +1) {
			continue
		}
		if len(out) > 0 && out[len(out)-1] == b {
			continue
		}
		out = append(out, b)
	}
	if len(out) == 0 {
		return nil, &DuplicateMetricError{Name: metric, Reason: "no finite bucket bounds"}
	}
	return out, nil
}

// With returns the histogram cell for the given labels, creating it on first
// use.
func (v *HistogramVec) With(labels Labels) (*Histogram, error) {
	values, err := valuesFor(v.name, v.names, labels)
	if err != nil {
		return nil, err
	}
	return v.cell(values), nil
}

// WithLabelValues is With taking values in declaration order.
func (v *HistogramVec) WithLabelValues(values ...string) (*Histogram, error) {
	if len(values) != len(v.names) {
		return nil, &InvalidLabelError{
			Metric: v.name,
			Reason: fmt.Sprintf("expected %d label value(s) for %v, got %d", len(v.names), v.names, len(values)),
		}
	}
	return v.cell(values), nil
}

func (v *HistogramVec) cell(values []string) *Histogram {
	key := cellKey(values)
	v.mu.RLock()
	h := v.cells[key]
	v.mu.RUnlock()
	if h != nil {
		return h
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if h = v.cells[key]; h == nil {
		h = &Histogram{
			values:  append([]string(nil), values...),
			bounds:  v.bounds,
			buckets: make([]atomic.Uint64, len(v.bounds)+1),
		}
		v.cells[key] = h
	}
	return h
}

func (v *HistogramVec) familyName() string         { return v.name }
func (v *HistogramVec) familyKind() Kind           { return KindHistogram }
func (v *HistogramVec) familyLabelNames() []string { return v.names }
func (v *HistogramVec) familyBuckets() []float64   { return v.bounds }

func (v *HistogramVec) snapshot() FamilySnapshot {
	snap := FamilySnapshot{Name: v.name, Help: v.help, Kind: KindHistogram, LabelNames: v.names}
	v.mu.RLock()
	cells := make([]*Histogram, 0, len(v.cells))
	for _, h := range v.cells {
		cells = append(cells, h)
	}
	v.mu.RUnlock()
	for _, h := range cells {
		hv := h.value()
		snap.Samples = append(snap.Samples, Sample{LabelValues: h.values, Value: hv.Sum, Histogram: &hv})
	}
	sortSamples(snap.Samples)
	return snap
}

// Histogram is a single distribution cell. buckets[i] holds the count of
// observations routed to bounds[i]; the final element is the +Inf overflow.
// Cumulation happens at snapshot time so Observe touches exactly one bucket.
type Histogram struct {
	values  []string
	bounds  []float64
	buckets []atomic.Uint64
	sum     atomicFloat
}

// Observe records a value. Negative and NaN observations are dropped;
// durations and sizes are never negative, so such a value is a caller bug.
func (h *Histogram) Observe(v float64) {
	if v < 0 || v != v {
		return
	}
	idx := sort.SearchFloat64s(h.bounds, v)
	h.buckets[idx].Add(1)
	h.sum.Add(v)
}

// value materializes the cumulative view. The total count is derived from the
// bucket cells themselves, so Count always equals the +Inf bucket.
func (h *Histogram) value() HistogramValue {
	counts := make([]uint64, len(h.buckets))
	var running uint64
	for i := range h.buckets {
		running += h.buckets[i].Load()
		counts[i] = running
	}
	return HistogramValue{
		Bounds: h.bounds,
		Counts: counts,
		Sum:    h.sum.Load(),
		Count:  running,
	}
}

// Count returns the current total number of observations.
func (h *Histogram) Count() uint64 {
	var total uint64
	for i := range h.buckets {
		total += h.buckets[i].Load()
	}
	return total
}

// Sum returns the current sum of observed values.
func (h *Histogram) Sum() float64 { return h.sum.Load() }
