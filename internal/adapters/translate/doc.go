// Package translate provides the translation backends behind
// ports.Translator: an OpenAI-compatible chat client (Ollama by default),
// Google Gemini, an echo backend for dry runs, and an optional circuit
// breaker that wraps any of them.
//
// Every backend reports failures wrapped in domain.ErrBackendFailure.
package translate
