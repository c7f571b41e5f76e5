// Package report provides the data model for test reports assembled from a
// runner's event stream.
//
// The main functionalities include:
//   - Holding ordered suites of ordered test cases.
//   - Aggregating per-suite and per-run counters.
//   - Rendering a per-suite summary table.
//
// This package is the boundary between event parsing and report serialization.
package report
