// Package transcript models timed speech-to-text output for an episode.
//
// A Transcript is the JSON payload returned by the transcription service and
// persisted to disk between workflow stages: an ordered list of timed text
// segments plus the detected language. Downstream consumers slice it by time
// window (keyword scanning, interval scoring, LLM verification) through
// TextBetween rather than re-reading the file.
//
// Speaker labels, when the transcriber or diarizer provides them, are folded
// into contiguous SpeakerTurn runs for the audio signal extractor.
package transcript
