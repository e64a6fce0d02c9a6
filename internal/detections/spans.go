package detections

// Span is a half-open audio interval in seconds.
type Span struct {
	Start float64
	End   float64
}

// Duration returns the span length in seconds.
func (s Span) Duration() float64 {
	if s.End <= s.Start {
		return 0
	}
	return s.End - s.Start
}

// KeepSpans inverts the detected ad segments over [0, total] into the spans
// of audio that survive the cut. Each cut is pulled inward by buffer seconds
// on either side so speech straddling a boundary is preserved. Keep spans
// shorter than twice the buffer are treated as inversion slivers and dropped.
// With no segments the whole episode is kept.
func (r Report) KeepSpans(total, buffer float64) []Span {
	if total <= 0 {
		total = r.EpisodeSeconds
	}
	if total <= 0 {
		return nil
	}
	if buffer < 0 {
		buffer = 0
	}
	if len(r.Segments) == 0 {
		return []Span{{Start: 0, End: total}}
	}

	segments := append([]Segment(nil), r.Segments...)
	sortSegments(segments)

	minKeep := 2 * buffer
	var keeps []Span
	cursor := 0.0
	for _, seg := range segments {
		cutStart := seg.Start + buffer
		cutEnd := seg.End - buffer
		if cutStart < 0 {
			cutStart = 0
		}
		if cutEnd > total {
			cutEnd = total
		}
		if cutEnd <= cutStart {
			// Segment too short to cut once the buffer is applied.
			continue
		}
		if cutStart > cursor {
			keeps = appendKeep(keeps, Span{Start: cursor, End: cutStart}, minKeep)
		}
		if cutEnd > cursor {
			cursor = cutEnd
		}
	}
	if cursor < total {
		keeps = appendKeep(keeps, Span{Start: cursor, End: total}, minKeep)
	}
	return keeps
}

func appendKeep(spans []Span, span Span, minKeep float64) []Span {
	if span.Duration() < minKeep {
		return spans
	}
	return append(spans, span)
}
