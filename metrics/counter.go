package metrics

import (
	"fmt"
	"sync"
)

// CounterVec is a family of monotonically increasing counters keyed by label
// values.
type CounterVec struct {
	name  string
	help  string
	names []string

	mu    sync.RWMutex
	cells map[string]*Counter
}

// NewCounterVec declares a counter family on the registry.
func (r *Registry) NewCounterVec(opts Opts, labelNames []string) (*CounterVec, error) {
	cv := &CounterVec{
		name:  opts.Name,
		help:  opts.Help,
		names: append([]string(nil), labelNames...),
		cells: make(map[string]*Counter),
	}
	f, err := r.register(cv)
	if err != nil {
		return nil, err
	}
	return f.(*CounterVec), nil
}

// MustNewCounterVec is NewCounterVec that panics on error, for use at startup
// where a registration failure must not let the process serve traffic.
func (r *Registry) MustNewCounterVec(opts Opts, labelNames []string) *CounterVec {
	cv, err := r.NewCounterVec(opts, labelNames)
	if err != nil {
		panic(err)
	}
	return cv
}

// With returns the counter cell for the given labels, creating it on first
// use. The label keys must match the declared names exactly.
func (v *CounterVec) With(labels Labels) (*Counter, error) {
	values, err := valuesFor(v.name, v.names, labels)
	if err != nil {
		return nil, err
	}
	return v.cell(values), nil
}

// WithLabelValues is With taking values in declaration order.
func (v *CounterVec) WithLabelValues(values ...string) (*Counter, error) {
	if len(values) != len(v.names) {
		return nil, &InvalidLabelError{
			Metric: v.name,
			Reason: fmt.Sprintf("expected %d label value(s) for %v, got %d", len(v.names), v.names, len(values)),
		}
	}
	return v.cell(values), nil
}

func (v *CounterVec) cell(values []string) *Counter {
	key := cellKey(values)
	v.mu.RLock()
	c := v.cells[key]
	v.mu.RUnlock()
	if c != nil {
		return c
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if c = v.cells[key]; c == nil {
		c = &Counter{values: append([]string(nil), values...)}
		v.cells[key] = c
	}
	return c
}

func (v *CounterVec) familyName() string         { return v.name }
func (v *CounterVec) familyKind() Kind           { return KindCounter }
func (v *CounterVec) familyLabelNames() []string { return v.names }
func (v *CounterVec) familyBuckets() []float64   { return nil }

func (v *CounterVec) snapshot() FamilySnapshot {
	snap := FamilySnapshot{Name: v.name, Help: v.help, Kind: KindCounter, LabelNames: v.names}
	v.mu.RLock()
	cells := make([]*Counter, 0, len(v.cells))
	for _, c := range v.cells {
		cells = append(cells, c)
	}
	v.mu.RUnlock()
	for _, c := range cells {
		snap.Samples = append(snap.Samples, Sample{LabelValues: c.values, Value: c.val.Load()})
	}
	sortSamples(snap.Samples)
	return snap
}

// Counter is a single monotonically increasing cell. It never decreases;
// negative adds are dropped.
type Counter struct {
	values []string
	val    atomicFloat
}

func (c *Counter) Inc() { c.val.Add(1) }

func (c *Counter) Add(n float64) {
	if n < 0 || n != n {
		return
	}
	c.val.Add(n)
}

// Value returns the current count.
func (c *Counter) Value() float64 { return c.val.Load() }
