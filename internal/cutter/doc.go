// Package cutter implements the ad-removal stage. Detected ad segments are
// inverted into keep spans, an ffmpeg filter graph trims and concatenates
// the surviving audio, and the result is re-encoded to MP3. The cleaned
// file's duration is verified against the expected keep time before the
// item moves on. Episodes with no detected ads are copied through without
// a re-encode.
package cutter
