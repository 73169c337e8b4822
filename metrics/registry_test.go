package metrics

import (
	"errors"
	"testing"
)

func TestRegisterSameShapeIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	a, err := reg.NewCounterVec(Opts{Name: "requests_total", Help: "total"}, []string{"method"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := reg.NewCounterVec(Opts{Name: "requests_total", Help: "total"}, []string{"method"})
	if err != nil {
		t.Fatalf("re-registration with identical shape should succeed: %v", err)
	}
	if a != b {
		t.Error("re-registration returned a different family")
	}
}

func TestRegisterDuplicateKind(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.NewCounterVec(Opts{Name: "requests_total"}, []string{"method"}); err != nil {
		t.Fatal(err)
	}
	_, err := reg.NewGaugeVec(Opts{Name: "requests_total"}, []string{"method"})
	var dup *DuplicateMetricError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateMetricError, got %v", err)
	}
	if dup.Name != "requests_total" {
		t.Errorf("error names wrong metric: %q", dup.Name)
	}
}

func TestRegisterDuplicateLabelShape(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.NewCounterVec(Opts{Name: "requests_total"}, []string{"method", "route"}); err != nil {
		t.Fatal(err)
	}
	_, err := reg.NewCounterVec(Opts{Name: "requests_total"}, []string{"method"})
	var dup *DuplicateMetricError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateMetricError, got %v", err)
	}
}

func TestRegisterRejectsBadNames(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.NewCounterVec(Opts{Name: "1bad"}, nil); err == nil {
		t.Error("metric name starting with a digit accepted")
	}
	if _, err := reg.NewCounterVec(Opts{Name: "ok_total"}, []string{"bad-label"}); err == nil {
		t.Error("label name with dash accepted")
	}
	if _, err := reg.NewCounterVec(Opts{Name: "ok2_total"}, []string{"a", "a"}); err == nil {
		t.Error("repeated label name accepted")
	}
	if _, err := reg.NewCounterVec(Opts{Name: "ok3_total"}, []string{"__reserved"}); err == nil {
		t.Error("reserved label name accepted")
	}
}

func TestMustNewPanicsOnConflict(t *testing.T) {
	reg := NewRegistry()
	reg.MustNewCounterVec(Opts{Name: "requests_total"}, nil)
	defer func() {
		if recover() == nil {
			t.Error("MustNewGaugeVec did not panic on a name conflict")
		}
	}()
	reg.MustNewGaugeVec(Opts{Name: "requests_total"}, nil)
}

func TestWithValidatesLabels(t *testing.T) {
	reg := NewRegistry()
	cv, err := reg.NewCounterVec(Opts{Name: "requests_total"}, []string{"method", "route"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := cv.With(Labels{"method": "GET", "route": "/users"}); err != nil {
		t.Fatalf("exact label set rejected: %v", err)
	}

	cases := []Labels{
		{"method": "GET"},                                       // missing
		{"method": "GET", "route": "/users", "status": "200"},   // extra
		{"method": "GET", "path": "/users"},                     // wrong key
		nil,                                                     // none
	}
	for _, labels := range cases {
		_, err := cv.With(labels)
		var inv *InvalidLabelError
		if !errors.As(err, &inv) {
			t.Errorf("labels %v: expected InvalidLabelError, got %v", labels, err)
		}
	}

	if _, err := cv.WithLabelValues("GET"); err == nil {
		t.Error("WithLabelValues accepted wrong arity")
	}
}

func TestWithReturnsSameCell(t *testing.T) {
	reg := NewRegistry()
	cv, _ := reg.NewCounterVec(Opts{Name: "requests_total"}, []string{"method"})
	a, _ := cv.With(Labels{"method": "GET"})
	b, _ := cv.WithLabelValues("GET")
	if a != b {
		t.Error("same label values produced distinct cells")
	}
	a.Inc()
	if got := b.Value(); got != 1 {
		t.Errorf("cell value = %v, want 1", got)
	}
}

func TestCounterNeverDecreases(t *testing.T) {
	reg := NewRegistry()
	cv, _ := reg.NewCounterVec(Opts{Name: "requests_total"}, nil)
	c, _ := cv.With(nil)
	c.Inc()
	c.Add(2.5)
	c.Add(-5) // dropped
	if got := c.Value(); got != 3.5 {
		t.Errorf("counter = %v, want 3.5", got)
	}
}

func TestGaugeOperations(t *testing.T) {
	reg := NewRegistry()
	gv, _ := reg.NewGaugeVec(Opts{Name: "in_progress"}, []string{"route"})
	g, _ := gv.With(Labels{"route": "/users"})
	g.Inc()
	g.Inc()
	g.Dec()
	if got := g.Value(); got != 1 {
		t.Errorf("gauge = %v, want 1", got)
	}
	g.Add(-1)
	if got := g.Value(); got != 0 {
		t.Errorf("gauge = %v, want 0", got)
	}
	g.Set(42.5)
	if got := g.Value(); got != 42.5 {
		t.Errorf("gauge = %v, want 42.5", got)
	}
}

func TestSnapshotOrderAndSorting(t *testing.T) {
	reg := NewRegistry()
	cv := reg.MustNewCounterVec(Opts{Name: "b_total", Help: "b"}, []string{"route"})
	gv := reg.MustNewGaugeVec(Opts{Name: "a_current", Help: "a"}, []string{"route"})

	for _, route := range []string{"/z", "/a", "/m"} {
		c, _ := cv.With(Labels{"route": route})
		c.Inc()
	}
	g, _ := gv.With(Labels{"route": "/x"})
	g.Set(7)

	snap := reg.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("snapshot families = %d, want 2", len(snap))
	}
	// Registration order, not name order.
	if snap[0].Name != "b_total" || snap[1].Name != "a_current" {
		t.Errorf("family order = %s, %s", snap[0].Name, snap[1].Name)
	}
	got := make([]string, 0, 3)
	for _, s := range snap[0].Samples {
		got = append(got, s.LabelValues[0])
	}
	want := []string{"/a", "/m", "/z"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample order = %v, want %v", got, want)
		}
	}
}
