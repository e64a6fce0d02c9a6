// Package audio selects the primary audio stream of a downloaded episode so
// decode and cut target the same deterministic stream even when the container
// carries cover art or extra tracks.
package audio
