// Package detections defines the ad detection payload shared between
// workflow stages.
//
// The Report type captures what the detection engine found in an episode:
// the mode it ran in, the signal sources that were available, and the ad
// segments with per-segment confidence and method tags. Stages read and
// extend the report rather than maintaining separate state, so it becomes
// the single source of truth for what gets cut and why. Persisted as JSON
// in queue.detections_json and written next to organized episodes as a
// sidecar.
//
// # Entry Points
//
// Parse: load a report from JSON (returns an empty report on blank input).
// Report.Encode: serialise the report for persistence.
// Report.KeepSpans: invert ad segments into the audio spans worth keeping,
// widened by a safety buffer so speech at the boundaries survives the cut.
package detections
