// Package ports defines the interfaces (ports) that connect the application
// layer to infrastructure adapters.
//
// # Port Interfaces
//
//   - [EntrySource]: Locates and removes pending units in the input file
//   - [EntrySink]: Appends translated units to the output file
//   - [Translator]: The translation backend
//   - [ReportRepository]: Persists the last batch report
//   - [Logger]: Structured logging abstraction
//   - [HTTPClient]: HTTP request abstraction for dependency injection
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with the file
// system, zerolog, go-openai and genai.
package ports
