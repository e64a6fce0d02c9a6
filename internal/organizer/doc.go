// Package organizer finalizes processed items by moving cleaned audio into
// the podcast library and triggering follow-up actions.
//
// It resolves metadata to derive filesystem targets, handles collision-safe
// moves, writes the optional detection report sidecar, and routes items
// flagged for manual inspection into the review directory with appropriate
// notifications. Progress updates and error wrapping follow the same
// conventions as other stages so the workflow manager can react uniformly.
package organizer
