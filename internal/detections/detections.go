package detections

import (
	"encoding/json"
	"slices"
	"strings"
	"time"
)

// Method tags recorded on detected segments. Refinement passes append
// tag suffixes, so a value like "hybrid+expanded+llm" traces the full
// decision path for a segment.
const (
	MethodHybrid      = "hybrid"
	MethodAudio       = "audio"
	MethodText        = "text"
	MethodOpeningScan = "opening_scan"

	TagExpanded = "+expanded"
	TagLLM      = "+llm"
)

// Segment is a detected ad interval within an episode.
type Segment struct {
	Start      float64            `json:"start"`
	End        float64            `json:"end"`
	Confidence float64            `json:"confidence"`
	Method     string             `json:"method"`
	Text       string             `json:"text,omitempty"`
	Signals    map[string]float64 `json:"signals,omitempty"`
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 {
	if s.End <= s.Start {
		return 0
	}
	return s.End - s.Start
}

// Capabilities records which signal sources were available to the engine
// for a detection run.
type Capabilities struct {
	Audio       bool `json:"audio"`
	Text        bool `json:"text"`
	Embeddings  bool `json:"embeddings"`
	Diarization bool `json:"diarization"`
	Verifier    bool `json:"verifier"`
}

// Report captures the outcome of a detection run. It travels with the queue
// item from the detect stage through cutting and organizing.
type Report struct {
	Mode            string       `json:"mode"`
	Capabilities    Capabilities `json:"capabilities"`
	EpisodeSeconds  float64      `json:"episode_seconds,omitempty"`
	TranscriptChars int          `json:"transcript_chars,omitempty"`
	Segments        []Segment    `json:"segments,omitempty"`
	GeneratedAt     time.Time    `json:"generated_at,omitempty"`
}

// Parse loads a report from JSON, returning an empty report on blank input.
func Parse(raw string) (Report, error) {
	var report Report
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return report, nil
	}
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		return Report{}, err
	}
	report.Segments = slices.Clone(report.Segments)
	sortSegments(report.Segments)
	return report, nil
}

// Encode serialises the report to JSON.
func (r Report) Encode() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// AdSeconds sums the duration of all detected segments.
func (r Report) AdSeconds() float64 {
	var total float64
	for _, seg := range r.Segments {
		total += seg.Duration()
	}
	return total
}

// Coverage reports the detected ad time as a fraction of the episode.
func (r Report) Coverage() float64 {
	if r.EpisodeSeconds <= 0 {
		return 0
	}
	return r.AdSeconds() / r.EpisodeSeconds
}

func sortSegments(segments []Segment) {
	slices.SortStableFunc(segments, func(a, b Segment) int {
		switch {
		case a.Start < b.Start:
			return -1
		case a.Start > b.Start:
			return 1
		default:
			return 0
		}
	})
}
