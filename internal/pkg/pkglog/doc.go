// Package pkglog contains the structured logging pipeline used across the
// application.
//
// It keeps logs consistent and correlatable by:
//   - Carrying correlation, transaction, and user identifiers on the request
//     context so nested calls emit them without explicit parameter passing.
//   - Emitting one JSON object per line with stable keys, so downstream
//     collectors can query every log type uniformly.
//   - Routing each domain's records to its own rotating file sink through a
//     bounded queue, so producing a log line never waits on disk.
//
// Logging is best effort: a record value that cannot be serialized is degraded
// to its string form, and a sink that cannot be written to reports to stderr
// and an internal counter. Failures in this package never reach business code.
package pkglog
