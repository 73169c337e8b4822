package metrics

import (
	"fmt"
	"strings"
)

// Labels maps declared label names to concrete values for one sample cell.
type Labels map[string]string

// cellKeySep joins label values into a map key. 0xff cannot appear in valid
// UTF-8 text, so joined values never collide.
const cellKeySep = "\xff"

func cellKey(values []string) string {
	return strings.Join(values, cellKeySep)
}

// validMetricName reports whether name matches [a-zA-Z_:][a-zA-Z0-9_:]*.
func validMetricName(name string) bool {
	if name == "" {
		return false
	}
	for i, c := range name {
		if c == '_' || c == ':' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			continue
		}
		if i > 0 && c >= '0' && c <= '9' {
			continue
		}
		return false
	}
	return true
}

// validLabelName reports whether name matches [a-zA-Z_][a-zA-Z0-9_]* and is
// not reserved (double-underscore prefix).
func validLabelName(name string) bool {
	if name == "" || strings.HasPrefix(name, "__") {
		return false
	}
	for i, c := range name {
		if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			continue
		}
		if i > 0 && c >= '0' && c <= '9' {
			continue
		}
		return false
	}
	return true
}

// checkLabelNames validates a declared label-name list at registration time.
func checkLabelNames(metric string, names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if !validLabelName(n) {
			return &DuplicateMetricError{Name: metric, Reason: fmt.Sprintf("invalid label name %q", n)}
		}
		if _, dup := seen[n]; dup {
			return &DuplicateMetricError{Name: metric, Reason: fmt.Sprintf("repeated label name %q", n)}
		}
		seen[n] = struct{}{}
	}
	return nil
}

// valuesFor resolves a Labels map against the declared names, in declaration
// order. The supplied keys must match the declared set exactly.
func valuesFor(metric string, names []string, labels Labels) ([]string, error) {
	if len(labels) != len(names) {
		return nil, &InvalidLabelError{
			Metric: metric,
			Reason: fmt.Sprintf("expected %d label(s) %v, got %d", len(names), names, len(labels)),
		}
	}
	values := make([]string, len(names))
	for i, n := range names {
		v, ok := labels[n]
		if !ok {
			return nil, &InvalidLabelError{Metric: metric, Reason: fmt.Sprintf("missing label %q", n)}
		}
		values[i] = v
	}
	return values, nil
}
