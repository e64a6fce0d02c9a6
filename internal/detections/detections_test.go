package detections

import (
	"testing"
	"time"
)

func TestParseEncodeRoundTrip(t *testing.T) {
	report := Report{
		Mode: "balanced",
		Capabilities: Capabilities{
			Audio: true,
			Text:  true,
		},
		EpisodeSeconds:  1800,
		TranscriptChars: 24000,
		Segments: []Segment{
			{Start: 30, End: 95, Confidence: 0.82, Method: MethodHybrid, Signals: map[string]float64{"signal_avg": 0.7, "classifier": 0.9}},
			{Start: 900, End: 960, Confidence: 0.55, Method: MethodHybrid + TagLLM},
		},
		GeneratedAt: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
	}
	encoded, err := report.Encode()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	decoded, err := Parse(encoded)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if decoded.Mode != "balanced" || !decoded.Capabilities.Text {
		t.Fatalf("unexpected decoded report: %+v", decoded)
	}
	if len(decoded.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(decoded.Segments))
	}
	if decoded.Segments[0].Signals["classifier"] != 0.9 {
		t.Fatalf("unexpected signals: %+v", decoded.Segments[0].Signals)
	}
	if decoded.Segments[1].Method != "hybrid+llm" {
		t.Fatalf("unexpected method tag: %q", decoded.Segments[1].Method)
	}
}

func TestParseBlankReturnsEmptyReport(t *testing.T) {
	report, err := Parse("   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Segments) != 0 || report.Mode != "" {
		t.Fatalf("expected empty report, got %+v", report)
	}
}

func TestParseRejectsMalformedJSON(t *testing.T) {
	if _, err := Parse("{segments:"); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestParseSortsSegments(t *testing.T) {
	report, err := Parse(`{"mode":"fast","segments":[{"start":600,"end":660},{"start":30,"end":90}]}`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if report.Segments[0].Start != 30 || report.Segments[1].Start != 600 {
		t.Fatalf("expected segments sorted by start, got %+v", report.Segments)
	}
}

func TestAdSecondsAndCoverage(t *testing.T) {
	report := Report{
		EpisodeSeconds: 1000,
		Segments: []Segment{
			{Start: 0, End: 60},
			{Start: 500, End: 590},
			{Start: 700, End: 650}, // inverted interval contributes nothing
		},
	}
	if got := report.AdSeconds(); got != 150 {
		t.Fatalf("expected 150 ad seconds, got %v", got)
	}
	if got := report.Coverage(); got != 0.15 {
		t.Fatalf("expected 0.15 coverage, got %v", got)
	}
}

func TestKeepSpansNoAdsKeepsWholeEpisode(t *testing.T) {
	report := Report{EpisodeSeconds: 1800}
	spans := report.KeepSpans(0, 0.5)
	if len(spans) != 1 || spans[0].Start != 0 || spans[0].End != 1800 {
		t.Fatalf("expected single full span, got %+v", spans)
	}
}

func TestKeepSpansInvertsWithBuffer(t *testing.T) {
	report := Report{
		EpisodeSeconds: 600,
		Segments: []Segment{
			{Start: 100, End: 160},
			{Start: 300, End: 345},
		},
	}
	spans := report.KeepSpans(600, 0.5)
	if len(spans) != 3 {
		t.Fatalf("expected 3 keep spans, got %+v", spans)
	}
	if spans[0].Start != 0 || spans[0].End != 100.5 {
		t.Fatalf("unexpected head span: %+v", spans[0])
	}
	if spans[1].Start != 159.5 || spans[1].End != 300.5 {
		t.Fatalf("unexpected middle span: %+v", spans[1])
	}
	if spans[2].Start != 344.5 || spans[2].End != 600 {
		t.Fatalf("unexpected tail span: %+v", spans[2])
	}
}

func TestKeepSpansDropsHeadSliverForPrerollAd(t *testing.T) {
	report := Report{
		EpisodeSeconds: 600,
		Segments:       []Segment{{Start: 0, End: 45}},
	}
	spans := report.KeepSpans(600, 0.5)
	if len(spans) != 1 {
		t.Fatalf("expected single tail span, got %+v", spans)
	}
	if spans[0].Start != 44.5 || spans[0].End != 600 {
		t.Fatalf("unexpected tail span: %+v", spans[0])
	}
}

func TestKeepSpansClampsSegmentsPastEpisodeEnd(t *testing.T) {
	report := Report{
		EpisodeSeconds: 600,
		Segments:       []Segment{{Start: 560, End: 700}},
	}
	spans := report.KeepSpans(600, 0.5)
	if len(spans) != 1 {
		t.Fatalf("expected single head span, got %+v", spans)
	}
	if spans[0].Start != 0 || spans[0].End != 560.5 {
		t.Fatalf("unexpected head span: %+v", spans[0])
	}
}

func TestKeepSpansSkipsSegmentsShorterThanBuffers(t *testing.T) {
	report := Report{
		EpisodeSeconds: 600,
		Segments:       []Segment{{Start: 100, End: 100.8}},
	}
	spans := report.KeepSpans(600, 0.5)
	if len(spans) != 1 || spans[0].Start != 0 || spans[0].End != 600 {
		t.Fatalf("expected sub-buffer segment ignored, got %+v", spans)
	}
}
