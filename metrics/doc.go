// Package metrics implements a small process-wide metrics registry with
// counter, gauge, and histogram primitives keyed by fixed label sets.
//
// A Registry is created explicitly with NewRegistry and passed to whatever
// needs to record or export measurements; there is no package-level default.
// Metric families are declared once at startup, cells are created lazily per
// unique label-value combination and live for the process lifetime. All cell
// updates are lock-free so concurrent request handlers never contend on a
// shared lock. Snapshot produces a point-in-time read suitable for the
// Prometheus text exposition format without pausing writers.
package metrics
