// Package transcribe implements the transcription stage: episode audio is
// uploaded to the configured speech-to-text service and the timed transcript
// is persisted next to the staged audio.
package transcribe
