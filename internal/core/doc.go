// Package core hosts the validation engine behind the HTTP server.
//
// The engine itself (package validator) is a pure function. This package
// adds what a shared service needs around it:
//
//   - Intake rules: empty uploads, size limits and unknown projects are
//     refused before any work starts.
//   - [ValidationLimiter]: a semaphore capping concurrent validations, with a
//     bounded wait and drain support for graceful shutdown.
//   - Run history: a [RunSummary] per validation, kept in memory
//     ([MemoryRunStore]) or in PostgreSQL ([PgRunStore]).
//   - [Metrics]: Prometheus collectors on a private registry.
//   - [Fingerprint]: an xxh3 content hash so repeated uploads show up in
//     history.
//
// # Error Handling
//
// Structural verdicts on a file are results, not errors. Errors returned by
// [Service.Validate] mean the file was not validated; [MapError] turns them
// into user-facing messages with support codes (FILE, VAL, PRJ, VLD, RATE,
// ERR000). See error_messages.go for the full table.
package core
