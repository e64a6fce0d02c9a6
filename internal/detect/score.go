package detect

import (
	"context"

	"podsweep/internal/adclass"
	"podsweep/internal/detections"
	"podsweep/internal/transcript"
)

// scoreIntervals walks the intervals between consecutive breakpoints
// (bracketed with the signal's first and last timestamps) and blends the
// fused-signal average with the domain classifier's confidence. Intervals
// below the emission threshold are dropped here; weaker peripheral evidence
// gets its chance in the context propagation passes.
func (e *Engine) scoreIntervals(ctx context.Context, vector *SignalVector, fused []float64, breaks []int, t *transcript.Transcript, caps detections.Capabilities) []detections.Segment {
	axis := vector.Timestamps
	bounds := make([]int, 0, len(breaks)+2)
	bounds = append(bounds, 0)
	for _, b := range breaks {
		if b > 0 && b < len(axis) {
			bounds = append(bounds, b)
		}
	}
	bounds = append(bounds, len(axis))

	method := detectionMethod(caps)
	var results []detections.Segment
	for i := 1; i < len(bounds); i++ {
		lo, hi := bounds[i-1], bounds[i]
		if hi <= lo {
			continue
		}
		start := axis[lo]
		end := axis[len(axis)-1]
		if hi < len(axis) {
			end = axis[hi]
		}
		if end <= start {
			continue
		}

		average := mean(fused[lo:hi])
		confidence := average
		signals := map[string]float64{"signal_avg": average}

		if caps.Text {
			text := t.TextBetween(start, end)
			if text == "" {
				continue
			}
			features := e.classifier.Classify(ctx, adclass.Span{
				Text:     text,
				Duration: end - start,
				Before:   t.TextBetween(start-contextWindowSeconds, start),
				After:    t.TextBetween(end, end+contextWindowSeconds),
			})
			confidence = signalBlendWeight*average + classifierBlendWeight*features.Confidence
			signals["classifier"] = features.Confidence
			addFeatureSignals(signals, features)
		}

		if confidence <= e.cfg.MinConfidence {
			continue
		}
		results = append(results, detections.Segment{
			Start:      start,
			End:        end,
			Confidence: clampUnit(confidence),
			Method:     method,
			Signals:    signals,
		})
	}
	return results
}

func detectionMethod(caps detections.Capabilities) string {
	switch {
	case caps.Audio && caps.Text:
		return detections.MethodHybrid
	case caps.Audio:
		return detections.MethodAudio
	default:
		return detections.MethodText
	}
}

func addFeatureSignals(signals map[string]float64, features adclass.Features) {
	flags := map[string]bool{
		"sponsor":         features.HasSponsorPhrase,
		"promo":           features.HasPromoCode,
		"url":             features.HasURLMention,
		"cta":             features.HasCallToAction,
		"intro":           features.HasIntroTransition,
		"outro":           features.HasOutroTransition,
		"standard_length": features.IsStandardLength,
		"topic_island":    features.IsTopicIsland,
	}
	for name, on := range flags {
		if on {
			signals[name] = 1
		}
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, value := range values {
		sum += value
	}
	return sum / float64(len(values))
}
