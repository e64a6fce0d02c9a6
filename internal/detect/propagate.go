package detect

import (
	"context"
	"strings"

	"podsweep/internal/adclass"
	"podsweep/internal/detections"
	"podsweep/internal/transcript"
)

// Opening scan parameters. Pre-roll sponsor reads are common enough that
// the first three minutes get a dedicated sliding-window sweep at a lower
// classification threshold than the main pipeline.
const (
	openingScanSeconds   = 180.0
	openingWindowSeconds = 30.0
	openingHopSeconds    = 15.0
	openingThreshold     = 0.3
	openingMergeGap      = 20.0
	openingMinConfidence = 0.5
)

// Edge expansion parameters. Neighboring transcript segments within the
// window extend a detected interval when they lean ad-ward on their own,
// at a deliberately permissive threshold.
const (
	edgeWindowSeconds = 30.0
	edgeThreshold     = 0.25
)

// openingScan slides a window across the episode opening and classifies
// each window's text. Qualifying windows are merged and returned as
// detection candidates regardless of what the change-point pipeline found.
func (e *Engine) openingScan(ctx context.Context, t *transcript.Transcript) []detections.Segment {
	limit := t.Duration()
	if limit > openingScanSeconds {
		limit = openingScanSeconds
	}
	var windows []detections.Segment
	for start := 0.0; start < limit; start += openingHopSeconds {
		end := start + openingWindowSeconds
		text := t.TextBetween(start, end)
		if text == "" {
			continue
		}
		features := e.classifier.Classify(ctx, adclass.Span{Text: text, Duration: openingWindowSeconds})
		if !features.IsAd(openingThreshold) && !features.HasSponsorPhrase && !features.HasPromoCode {
			continue
		}
		confidence := features.Confidence
		if confidence < openingMinConfidence {
			confidence = openingMinConfidence
		}
		signals := map[string]float64{"classifier": features.Confidence}
		addFeatureSignals(signals, features)
		windows = append(windows, detections.Segment{
			Start:      start,
			End:        end,
			Confidence: confidence,
			Method:     detections.MethodOpeningScan,
			Signals:    signals,
		})
	}
	return MergeSegments(windows, openingMergeGap)
}

// expandEdges grows each detected interval over neighboring transcript
// segments that carry ad-leaning evidence: anything moderately confident,
// or a sponsor phrase / intro transition on the left (ads open with those)
// and a promo code / outro transition on the right (ads close with those).
// Expansion only ever grows intervals.
func (e *Engine) expandEdges(ctx context.Context, t *transcript.Transcript, segments []detections.Segment) []detections.Segment {
	if len(segments) == 0 {
		return segments
	}
	out := make([]detections.Segment, len(segments))
	copy(out, segments)
	for i := range out {
		expanded := false
		for _, neighbor := range t.Segments {
			if neighbor.End <= out[i].Start-edgeWindowSeconds || neighbor.Start >= out[i].End+edgeWindowSeconds {
				continue
			}
			text := strings.TrimSpace(neighbor.Text)
			if text == "" {
				continue
			}
			if neighbor.End <= out[i].Start {
				features := e.classifier.Classify(ctx, adclass.Span{Text: text, Duration: neighbor.Duration()})
				if features.Confidence > edgeThreshold || features.HasSponsorPhrase || features.HasIntroTransition {
					if neighbor.Start < out[i].Start {
						out[i].Start = neighbor.Start
						expanded = true
					}
				}
			} else if neighbor.Start >= out[i].End {
				features := e.classifier.Classify(ctx, adclass.Span{Text: text, Duration: neighbor.Duration()})
				if features.Confidence > edgeThreshold || features.HasPromoCode || features.HasOutroTransition {
					if neighbor.End > out[i].End {
						out[i].End = neighbor.End
						expanded = true
					}
				}
			}
		}
		if expanded && !strings.Contains(out[i].Method, detections.TagExpanded) {
			out[i].Method += detections.TagExpanded
		}
	}
	return out
}
