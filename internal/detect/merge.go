package detect

import (
	"slices"
	"strings"

	"podsweep/internal/detections"
)

// DefaultMergeGapSeconds is the generic gap below which two intervals
// coalesce. The engine merges at a wider hybrid gap; the opening scan wider
// still.
const DefaultMergeGapSeconds = 5.0

// MergeSegments sorts intervals by start and coalesces any interval whose
// start lies within gap seconds of the previous interval's end. Merged
// confidence is the arithmetic mean of the two; signal maps are averaged
// key-wise over the union of keys with missing keys treated as zero. The
// input is not mutated. Merging is idempotent: applying it to its own
// output changes nothing.
func MergeSegments(segments []detections.Segment, gap float64) []detections.Segment {
	if len(segments) == 0 {
		return nil
	}
	sorted := make([]detections.Segment, len(segments))
	for i, seg := range segments {
		sorted[i] = cloneSegment(seg)
	}
	slices.SortStableFunc(sorted, func(a, b detections.Segment) int {
		switch {
		case a.Start < b.Start:
			return -1
		case a.Start > b.Start:
			return 1
		default:
			return 0
		}
	})

	merged := sorted[:1]
	for _, seg := range sorted[1:] {
		last := &merged[len(merged)-1]
		if seg.Start-last.End <= gap {
			*last = mergePair(*last, seg)
			continue
		}
		merged = append(merged, seg)
	}
	return merged
}

// FilterMinDuration drops intervals shorter than minSeconds. Decreasing the
// minimum can only add intervals back, never remove surviving ones.
func FilterMinDuration(segments []detections.Segment, minSeconds float64) []detections.Segment {
	var kept []detections.Segment
	for _, seg := range segments {
		if seg.Duration() >= minSeconds {
			kept = append(kept, seg)
		}
	}
	return kept
}

func mergePair(a, b detections.Segment) detections.Segment {
	out := a
	if b.End > out.End {
		out.End = b.End
	}
	out.Confidence = clampUnit((a.Confidence + b.Confidence) / 2)
	out.Signals = averageSignals(a.Signals, b.Signals)
	if b.Method != a.Method && b.Method != "" {
		out.Method = mergeMethods(a.Method, b.Method)
	}
	if a.Text != "" && b.Text != "" {
		out.Text = a.Text + " " + b.Text
	} else if b.Text != "" {
		out.Text = b.Text
	}
	return out
}

func averageSignals(a, b map[string]float64) map[string]float64 {
	if a == nil && b == nil {
		return nil
	}
	union := make(map[string]float64, len(a)+len(b))
	for key := range a {
		union[key] = 0
	}
	for key := range b {
		union[key] = 0
	}
	for key := range union {
		union[key] = (a[key] + b[key]) / 2
	}
	return union
}

func mergeMethods(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" || strings.Contains(a, b) {
		return a
	}
	return a + "," + b
}

func cloneSegment(seg detections.Segment) detections.Segment {
	out := seg
	if seg.Signals != nil {
		out.Signals = make(map[string]float64, len(seg.Signals))
		for key, value := range seg.Signals {
			out.Signals[key] = value
		}
	}
	return out
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
