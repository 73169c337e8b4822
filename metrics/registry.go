package metrics

import (
	"fmt"
	"sync"
)

// Kind identifies the metric family type.
type Kind int

const (
	KindCounter Kind = iota
	KindGauge
	KindHistogram
)

func (k Kind) String() string {
	switch k {
	case KindCounter:
		return "counter"
	case KindGauge:
		return "gauge"
	case KindHistogram:
		return "histogram"
	}
	return "unknown"
}

// Opts names a metric family. Help becomes the # HELP line on export.
type Opts struct {
	Name string
	Help string
}

// HistogramOpts adds the bucket upper bounds for a histogram family. Leaving
// Buckets nil selects DefBuckets.
type HistogramOpts struct {
	Opts
	Buckets []float64
}

// family is the registry's view of a metric vector.
type family interface {
	familyName() string
	familyKind() Kind
	familyLabelNames() []string
	familyBuckets() []float64
	snapshot() FamilySnapshot
}

// Registry owns all metric families of a process. The zero value is not
// usable; create one with NewRegistry.
type Registry struct {
	mu       sync.Mutex
	families map[string]family
	order    []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{families: make(map[string]family)}
}

// register adds f, or returns the already-registered family when the shape is
// identical (idempotent re-registration). A name collision with a different
// shape is a DuplicateMetricError.
func (r *Registry) register(f family) (family, error) {
	name := f.familyName()
	if !validMetricName(name) {
		return nil, &DuplicateMetricError{Name: name, Reason: "invalid metric name"}
	}
	if err := checkLabelNames(name, f.familyLabelNames()); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.families[name]; ok {
		if reason := shapeMismatch(old, f); reason != "" {
			return nil, &DuplicateMetricError{Name: name, Reason: reason}
		}
		return old, nil
	}
	r.families[name] = f
	r.order = append(r.order, name)
	return f, nil
}

// shapeMismatch compares kind, label names, and bucket bounds. It returns an
// empty string when the shapes are identical.
func shapeMismatch(old, next family) string {
	if old.familyKind() != next.familyKind() {
		return fmt.Sprintf("registered as %s, requested as %s", old.familyKind(), next.familyKind())
	}
	a, b := old.familyLabelNames(), next.familyLabelNames()
	if len(a) != len(b) {
		return fmt.Sprintf("registered with labels %v, requested %v", a, b)
	}
	for i := range a {
		if a[i] != b[i] {
			return fmt.Sprintf("registered with labels %v, requested %v", a, b)
		}
	}
	ab, bb := old.familyBuckets(), next.familyBuckets()
	if len(ab) != len(bb) {
		return "registered with different buckets"
	}
	for i := range ab {
		if ab[i] != bb[i] {
			return "registered with different buckets"
		}
	}
	return ""
}

// Snapshot returns a point-in-time copy of every family in registration
// order, with samples ordered by label values. Writers are never blocked:
// the registry lock covers only the family list copy, and cell values are
// read with atomic loads. Values across families may be mutually skewed
// while traffic is in flight; each individual cell is internally consistent.
func (r *Registry) Snapshot() []FamilySnapshot {
	r.mu.Lock()
	fams := make([]family, 0, len(r.order))
	for _, name := range r.order {
		fams = append(fams, r.families[name])
	}
	r.mu.Unlock()

	out := make([]FamilySnapshot, 0, len(fams))
	for _, f := range fams {
		out = append(out, f.snapshot())
	}
	return out
}
