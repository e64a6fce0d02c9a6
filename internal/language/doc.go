// Package language normalizes transcriber language codes. Transcription
// services report languages inconsistently (ISO 639-1, ISO 639-2, or full
// words); everything funnels through here before being persisted or logged.
package language
