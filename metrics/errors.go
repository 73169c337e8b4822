package metrics

import "fmt"

// DuplicateMetricError is returned when a metric name is registered a second
// time with a different kind, label set, or bucket layout. Registration
// failures are programming errors and should be treated as fatal at startup.
type DuplicateMetricError struct {
	Name   string
	Reason string
}

func (e *DuplicateMetricError) Error() string {
	return fmt.Sprintf("metrics: duplicate registration of %q: %s", e.Name, e.Reason)
}

// InvalidLabelError is returned when a lookup supplies labels that do not
// match the names declared at registration time. Callers on the request path
// should log it and drop the sample rather than fail the request.
type InvalidLabelError struct {
	Metric string
	Reason string
}

func (e *InvalidLabelError) Error() string {
	return fmt.Sprintf("metrics: invalid labels for %q: %s", e.Metric, e.Reason)
}
