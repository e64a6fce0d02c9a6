// Package ollama is a minimal client for a local Ollama instance. The
// detection engine uses it to verify borderline ad segments; calls carry a
// per-request timeout and are never retried, because the verifier treats
// any failure as a conservative no-op rather than transient noise worth
// re-asking about.
package ollama
