// Package detect is the ad-segment detection engine. It fuses audio and
// text signal channels onto one timestamp axis, partitions the fused signal
// at statistical change points, scores the resulting intervals with the
// domain classifier, grows them through local context evidence, coalesces
// and filters them, and optionally verifies borderline intervals through a
// local LLM. The engine degrades gracefully: any subset of the optional
// collaborators (embedder, diarizer, verifier) may be absent and detection
// still runs on the remaining channels.
package detect
