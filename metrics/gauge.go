package metrics

import (
	"fmt"
	"sync"
)

// GaugeVec is a family of point-in-time adjustable values keyed by label
// values. The registry enforces no floor; callers that use a gauge for
// in-progress accounting must balance every Inc with a Dec.
type GaugeVec struct {
	name  string
	help  string
	names []string

	mu    sync.RWMutex
	cells map[string]*Gauge
}

// NewGaugeVec declares a gauge family on the registry.
func (r *Registry) NewGaugeVec(opts Opts, labelNames []string) (*GaugeVec, error) {
	gv := &GaugeVec{
		name:  opts.Name,
		help:  opts.Help,
		names: append([]string(nil), labelNames...),
		cells: make(map[string]*Gauge),
	}
	f, err := r.register(gv)
	if err != nil {
		return nil, err
	}
	return f.(*GaugeVec), nil
}

// MustNewGaugeVec is NewGaugeVec that panics on error.
func (r *Registry) MustNewGaugeVec(opts Opts, labelNames []string) *GaugeVec {
	gv, err := r.NewGaugeVec(opts, labelNames)
	if err != nil {
		panic(err)
	}
	return gv
}

// With returns the gauge cell for the given labels, creating it on first use.
func (v *GaugeVec) With(labels Labels) (*Gauge, error) {
	values, err := valuesFor(v.name, v.names, labels)
	if err != nil {
		return nil, err
	}
	return v.cell(values), nil
}

// WithLabelValues is With taking values in declaration order.
func (v *GaugeVec) WithLabelValues(values ...string) (*Gauge, error) {
	if len(values) != len(v.names) {
		return nil, &InvalidLabelError{
			Metric: v.name,
			Reason: fmt.Sprintf("expected %d label value(s) for %v, got %d", len(v.names), v.names, len(values)),
		}
	}
	return v.cell(values), nil
}

func (v *GaugeVec) cell(values []string) *Gauge {
	key := cellKey(values)
	v.mu.RLock()
	g := v.cells[key]
	v.mu.RUnlock()
	if g != nil {
		return g
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if g = v.cells[key]; g == nil {
		g = &Gauge{values: append([]string(nil), values...)}
		v.cells[key] = g
	}
	return g
}

func (v *GaugeVec) familyName() string         { return v.name }
func (v *GaugeVec) familyKind() Kind           { return KindGauge }
func (v *GaugeVec) familyLabelNames() []string { return v.names }
func (v *GaugeVec) familyBuckets() []float64   { return nil }

func (v *GaugeVec) snapshot() FamilySnapshot {
	snap := FamilySnapshot{Name: v.name, Help: v.help, Kind: KindGauge, LabelNames: v.names}
	v.mu.RLock()
	cells := make([]*Gauge, 0, len(v.cells))
	for _, g := range v.cells {
		cells = append(cells, g)
	}
	v.mu.RUnlock()
	for _, g := range cells {
		snap.Samples = append(snap.Samples, Sample{LabelValues: g.values, Value: g.val.Load()})
	}
	sortSamples(snap.Samples)
	return snap
}

// Gauge is a single adjustable cell.
type Gauge struct {
	values []string
	val    atomicFloat
}

func (g *Gauge) Inc()              { g.val.Add(1) }
func (g *Gauge) Dec()              { g.val.Add(-1) }
func (g *Gauge) Add(delta float64) { g.val.Add(delta) }
func (g *Gauge) Set(v float64)     { g.val.Store(v) }

// Value returns the current gauge reading.
func (g *Gauge) Value() float64 { return g.val.Load() }
