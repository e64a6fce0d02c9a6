// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// This package has no podsweep-specific dependencies and could be extracted
// as a standalone library.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio or artwork stream properties
//   - Format: container-level metadata (duration, size, bitrate)
//
// Primary entry point:
//   - Inspect: executes ffprobe and returns parsed Result
//
// Helper methods on Result and Stream provide convenient access to audio
// stream listing, cover-art detection, duration parsing, sample rate and
// language tags.
package ffprobe
