// Package cargo decodes the line-delimited JSON event stream emitted by
// `cargo test -- -Z unstable-options --format json --report-time` and folds
// it into a test report.
//
// The main functionalities include:
//   - Filtering runner diagnostics out of the combined output stream.
//   - Decoding suite and test events, repairing a known escaping bug of the runner.
//   - Enforcing the suite/test nesting protocol of the stream.
//   - Reconciling the duration encodings emitted by different runner versions.
//
// This package is useful for converting raw `cargo test` output into a report
// that CI systems can ingest.
package cargo
