package segmenter

import "slices"

// DefaultCrossingThreshold is the flip level used by single-channel scans.
const DefaultCrossingThreshold = 0.4

// ThresholdCrossings runs a two-state machine over the signal and emits a
// breakpoint at every flip between "above" and "below" the threshold. It is
// the degraded substitute for the optimal search on single-channel signals:
// cheap, local, and blind to gradual drifts.
func ThresholdCrossings(values []float64, threshold float64) []int {
	if len(values) < 2 {
		return nil
	}
	var breaks []int
	above := values[0] >= threshold
	for i := 1; i < len(values); i++ {
		now := values[i] >= threshold
		if now != above {
			breaks = append(breaks, i)
			above = now
		}
	}
	return breaks
}

// Gradient-peak parameters: a point is a breakpoint when its absolute
// discrete gradient exceeds the signal's 90th percentile and it sits more
// than five samples past the previous breakpoint.
const (
	gradientPercentile = 0.90
	gradientMinSpacing = 5
)

// GradientPeaks emits a breakpoint at each steep slope in the signal.
func GradientPeaks(values []float64) []int {
	if len(values) < 3 {
		return nil
	}
	grads := make([]float64, len(values)-1)
	for i := range grads {
		grads[i] = values[i+1] - values[i]
		if grads[i] < 0 {
			grads[i] = -grads[i]
		}
	}

	sorted := slices.Clone(grads)
	slices.Sort(sorted)
	threshold := sorted[int(float64(len(sorted))*gradientPercentile)]

	var breaks []int
	last := -gradientMinSpacing - 1
	for i, grad := range grads {
		if grad > threshold && i-last > gradientMinSpacing {
			breaks = append(breaks, i+1)
			last = i
		}
	}
	return breaks
}
