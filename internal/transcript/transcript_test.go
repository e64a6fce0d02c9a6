package transcript_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"podsweep/internal/transcript"
)

func TestParseSortsAndClampsSegments(t *testing.T) {
	data := []byte(`{
		"language": "en",
		"segments": [
			{"start": 12.0, "end": 15.5, "text": "later words"},
			{"start": -0.2, "end": 2.0, "text": "welcome back"},
			{"start": 5.0, "end": 4.0, "text": "inverted"}
		]
	}`)
	tr, err := transcript.Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if tr.Language != "en" {
		t.Fatalf("unexpected language: %q", tr.Language)
	}
	if tr.Segments[0].Text != "welcome back" || tr.Segments[0].Start != 0 {
		t.Fatalf("expected clamped first segment, got %+v", tr.Segments[0])
	}
	if tr.Segments[1].End != tr.Segments[1].Start {
		t.Fatalf("expected inverted segment clamped, got %+v", tr.Segments[1])
	}
	if tr.Segments[2].Text != "later words" {
		t.Fatalf("expected sorted order, got %+v", tr.Segments)
	}
}

func TestParseRejectsMalformedJSON(t *testing.T) {
	if _, err := transcript.Parse([]byte("{segments")); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestLoadMissingPath(t *testing.T) {
	if _, err := transcript.Load(""); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrNotExist for blank path, got %v", err)
	}
	if _, err := transcript.Load(filepath.Join(t.TempDir(), "absent.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrNotExist for absent file, got %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transcript.json")
	original := &transcript.Transcript{
		Language: "en",
		Segments: []transcript.Segment{
			{Start: 0, End: 4.5, Text: "welcome to the show", Speaker: "SPEAKER_00"},
			{Start: 4.5, End: 9.0, Text: "today we talk about falcons", Speaker: "SPEAKER_00"},
		},
	}
	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := transcript.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded.Segments) != 2 || loaded.Segments[1].Text != "today we talk about falcons" {
		t.Fatalf("unexpected loaded transcript: %+v", loaded)
	}
	if loaded.Duration() != 9.0 {
		t.Fatalf("unexpected duration: %v", loaded.Duration())
	}
}

func TestTextBetweenUsesOverlap(t *testing.T) {
	tr := &transcript.Transcript{
		Segments: []transcript.Segment{
			{Start: 0, End: 10, Text: "intro"},
			{Start: 10, End: 20, Text: "sponsor read"},
			{Start: 20, End: 30, Text: "back to content"},
		},
	}
	if got := tr.TextBetween(12, 18); got != "sponsor read" {
		t.Fatalf("expected single overlapping segment, got %q", got)
	}
	if got := tr.TextBetween(5, 25); got != "intro sponsor read back to content" {
		t.Fatalf("expected all overlapping segments, got %q", got)
	}
	if got := tr.TextBetween(30, 40); got != "" {
		t.Fatalf("expected empty text outside range, got %q", got)
	}
	if got := tr.TextBetween(20, 20); got != "" {
		t.Fatalf("expected empty text for empty window, got %q", got)
	}
}

func TestIsEmptyAndCharCount(t *testing.T) {
	var nilTranscript *transcript.Transcript
	if !nilTranscript.IsEmpty() {
		t.Fatal("expected nil transcript to be empty")
	}
	blank := &transcript.Transcript{Segments: []transcript.Segment{{Start: 0, End: 1, Text: "   "}}}
	if !blank.IsEmpty() {
		t.Fatal("expected whitespace-only transcript to be empty")
	}
	tr := &transcript.Transcript{Segments: []transcript.Segment{
		{Start: 0, End: 1, Text: "hello"},
		{Start: 1, End: 2, Text: "world"},
	}}
	if tr.IsEmpty() {
		t.Fatal("expected transcript with text to be non-empty")
	}
	if tr.CharCount() != len("hello world") {
		t.Fatalf("unexpected char count: %d", tr.CharCount())
	}
}

func TestSpeakerTurnsMergeContiguousRuns(t *testing.T) {
	tr := &transcript.Transcript{
		Segments: []transcript.Segment{
			{Start: 0, End: 5, Text: "a", Speaker: "SPEAKER_00"},
			{Start: 5.5, End: 10, Text: "b", Speaker: "SPEAKER_00"},
			{Start: 10, End: 12, Text: "c", Speaker: "SPEAKER_01"},
			{Start: 30, End: 35, Text: "d", Speaker: "SPEAKER_00"},
		},
	}
	turns := tr.SpeakerTurns()
	if len(turns) != 3 {
		t.Fatalf("expected 3 turns, got %+v", turns)
	}
	if turns[0].Speaker != "SPEAKER_00" || turns[0].Start != 0 || turns[0].End != 10 {
		t.Fatalf("expected merged first turn, got %+v", turns[0])
	}
	if turns[1].Speaker != "SPEAKER_01" {
		t.Fatalf("unexpected second turn: %+v", turns[1])
	}
	if turns[2].Start != 30 {
		t.Fatalf("expected distant same-speaker run to start a new turn, got %+v", turns[2])
	}
}

func TestSpeakerTurnsWithoutLabels(t *testing.T) {
	tr := &transcript.Transcript{
		Segments: []transcript.Segment{{Start: 0, End: 5, Text: "no labels"}},
	}
	if turns := tr.SpeakerTurns(); turns != nil {
		t.Fatalf("expected nil turns without labels, got %+v", turns)
	}
}
