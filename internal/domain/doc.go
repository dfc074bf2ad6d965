// Package domain contains the core domain entities and value objects for filetranslator.
//
// This package represents the innermost layer of the Clean Architecture. It has
// no dependencies on infrastructure concerns (HTTP, file system, logging) and
// contains only pure business logic.
//
// # Entities
//
//   - [Unit]: One translatable item popped from a source store (a line or a <String> block)
//   - [StepOutcome]: The result of a single locate/translate/append/remove step
//   - [BatchReport]: The tally of a batch run (processed, skipped, errors, abort reason)
//   - [Status]: A point-in-time view of both stores and the batch state
//
// # Errors
//
// Sentinel errors in errors.go are returned by the public API and can be
// checked with errors.Is. [Classify] maps any error to a [Kind] for logs and
// API responses.
package domain
