package metrics

import "sort"

// FamilySnapshot is a point-in-time copy of one metric family.
type FamilySnapshot struct {
	Name       string
	Help       string
	Kind       Kind
	LabelNames []string
	Samples    []Sample
}

// Sample is one cell of a family. Value holds the counter/gauge reading (the
// sum, for histograms); Histogram is set only for histogram families.
type Sample struct {
	LabelValues []string
	Value       float64
	Histogram   *HistogramValue
}

// HistogramValue is the cumulative view of one histogram cell. Counts is
// parallel to Bounds with one extra trailing element for the +Inf bucket;
// Counts[i] includes every observation <= Bounds[i], so it is monotonically
// non-decreasing and the last element equals Count.
type HistogramValue struct {
	Bounds []float64
	Counts []uint64
	Sum    float64
	Count  uint64
}

// sortSamples orders samples by their label values so exports are
// deterministic for a fixed set of cells.
func sortSamples(samples []Sample) {
	sort.Slice(samples, func(i, j int) bool {
		a, b := samples[i].LabelValues, samples[j].LabelValues
		for k := 0; k < len(a) && k < len(b); k++ {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return len(a) < len(b)
	})
}
