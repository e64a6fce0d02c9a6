package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"
)

// Segment is a single timed utterance from the transcriber.
type Segment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
	Speaker string  `json:"speaker,omitempty"`
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 {
	if s.End <= s.Start {
		return 0
	}
	return s.End - s.Start
}

// SpeakerTurn is a contiguous run of speech attributed to one speaker.
type SpeakerTurn struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
}

// Transcript is the timed transcription of one episode.
type Transcript struct {
	Language string    `json:"language,omitempty"`
	Segments []Segment `json:"segments"`
}

// Parse decodes transcript JSON. Segments are sorted by start time and
// negative timestamps clamped to zero.
func Parse(data []byte) (*Transcript, error) {
	var t Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse transcript json: %w", err)
	}
	for i := range t.Segments {
		if t.Segments[i].Start < 0 {
			t.Segments[i].Start = 0
		}
		if t.Segments[i].End < t.Segments[i].Start {
			t.Segments[i].End = t.Segments[i].Start
		}
	}
	slices.SortStableFunc(t.Segments, func(a, b Segment) int {
		switch {
		case a.Start < b.Start:
			return -1
		case a.Start > b.Start:
			return 1
		default:
			return 0
		}
	})
	return &t, nil
}

// Load reads and parses a transcript file.
func Load(path string) (*Transcript, error) {
	if strings.TrimSpace(path) == "" {
		return nil, os.ErrNotExist
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Save writes the transcript as JSON to the target path.
func (t *Transcript) Save(path string) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return nil
}

// IsEmpty reports whether the transcript carries no usable text.
func (t *Transcript) IsEmpty() bool {
	if t == nil || len(t.Segments) == 0 {
		return true
	}
	for _, seg := range t.Segments {
		if strings.TrimSpace(seg.Text) != "" {
			return false
		}
	}
	return true
}

// Duration returns the end time of the last segment in seconds.
func (t *Transcript) Duration() float64 {
	if t == nil {
		return 0
	}
	var max float64
	for _, seg := range t.Segments {
		if seg.End > max {
			max = seg.End
		}
	}
	return max
}

// Text joins all segment texts in order with single spaces.
func (t *Transcript) Text() string {
	if t == nil {
		return ""
	}
	parts := make([]string, 0, len(t.Segments))
	for _, seg := range t.Segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// CharCount returns the length of the joined transcript text.
func (t *Transcript) CharCount() int {
	return len(t.Text())
}

// TextBetween joins the text of all segments overlapping the window
// [start, end). Segment boundaries do not need to align with the window.
func (t *Transcript) TextBetween(start, end float64) string {
	if t == nil || end <= start {
		return ""
	}
	var parts []string
	for _, seg := range t.Segments {
		if seg.Start >= end {
			break
		}
		if seg.End <= start {
			continue
		}
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// turnMergeGapSeconds is the largest silence between same-speaker segments
// that still counts as one continuous turn.
const turnMergeGapSeconds = 2.0

// SpeakerTurns folds labelled segments into contiguous per-speaker runs.
// Unlabelled segments are skipped. Returns nil when no segment carries a
// speaker label.
func (t *Transcript) SpeakerTurns() []SpeakerTurn {
	if t == nil {
		return nil
	}
	var turns []SpeakerTurn
	for _, seg := range t.Segments {
		speaker := strings.TrimSpace(seg.Speaker)
		if speaker == "" {
			continue
		}
		if n := len(turns); n > 0 && turns[n-1].Speaker == speaker && seg.Start <= turns[n-1].End+turnMergeGapSeconds {
			if seg.End > turns[n-1].End {
				turns[n-1].End = seg.End
			}
			continue
		}
		turns = append(turns, SpeakerTurn{Start: seg.Start, End: seg.End, Speaker: speaker})
	}
	return turns
}
