package detect

import (
	"podsweep/internal/audiosig"
	"podsweep/internal/textsig"
)

// Detection modes. Fast runs on audio channels alone, balanced adds the
// cheap text channels, accurate adds the embedding-based ones.
const (
	ModeFast     = "fast"
	ModeBalanced = "balanced"
	ModeAccurate = "accurate"
)

// modeWeights maps each mode to its channel weight table. Each table sums
// to 1.0; channels missing at runtime drop out and the fusion renormalizes
// over the weight actually present.
var modeWeights = map[string]map[string]float64{
	ModeFast: {
		audiosig.ChannelEnergy:   0.25,
		audiosig.ChannelSpectral: 0.25,
		audiosig.ChannelChange:   0.30,
		audiosig.ChannelSpeech:   0.20,
	},
	ModeBalanced: {
		audiosig.ChannelEnergy:    0.15,
		audiosig.ChannelSpectral:  0.15,
		audiosig.ChannelChange:    0.15,
		textsig.ChannelKeyword:    0.30,
		textsig.ChannelTransition: 0.25,
	},
	ModeAccurate: {
		audiosig.ChannelEnergy:    0.10,
		audiosig.ChannelSpectral:  0.10,
		audiosig.ChannelChange:    0.10,
		textsig.ChannelKeyword:    0.25,
		textsig.ChannelTransition: 0.15,
		textsig.ChannelEmbedding:  0.20,
		textsig.ChannelBoundary:   0.10,
	},
}

// NormalizeMode maps unknown or empty mode names to the balanced default.
func NormalizeMode(mode string) string {
	if _, ok := modeWeights[mode]; ok {
		return mode
	}
	return ModeBalanced
}

// SignalVector holds named signal channels aligned 1:1 with one timestamp
// axis. Every channel array has exactly the axis length.
type SignalVector struct {
	Timestamps []float64
	channels   map[string][]float64
}

// NewSignalVector starts an empty vector over the given axis.
func NewSignalVector(timestamps []float64) *SignalVector {
	return &SignalVector{
		Timestamps: timestamps,
		channels:   make(map[string][]float64),
	}
}

// Add aligns a channel onto the axis and stores it. Channels longer than
// the axis are truncated at the tail, shorter ones zero-padded at the tail.
// The policy is lossy at the tail of mismatched channels; it is kept
// because downstream thresholds were tuned against it.
func (v *SignalVector) Add(name string, values []float64) {
	if len(v.Timestamps) == 0 || len(values) == 0 {
		return
	}
	aligned := make([]float64, len(v.Timestamps))
	copy(aligned, values)
	v.channels[name] = aligned
}

// Channel returns the aligned values for a channel, or nil when absent.
func (v *SignalVector) Channel(name string) []float64 {
	return v.channels[name]
}

// HasChannel reports whether a channel was added.
func (v *SignalVector) HasChannel(name string) bool {
	_, ok := v.channels[name]
	return ok
}

// ChannelCount returns the number of stored channels.
func (v *SignalVector) ChannelCount() int {
	return len(v.channels)
}

// Fused min-max normalizes each weighted channel independently and combines
// them into a single scalar series. Returns nil when no weighted channel is
// present.
func (v *SignalVector) Fused(weights map[string]float64) []float64 {
	if len(v.Timestamps) == 0 {
		return nil
	}
	fused := make([]float64, len(v.Timestamps))
	totalWeight := 0.0
	for name, weight := range weights {
		values, ok := v.channels[name]
		if !ok || weight <= 0 {
			continue
		}
		normalized := minMaxNormalize(values)
		for i, value := range normalized {
			fused[i] += weight * value
		}
		totalWeight += weight
	}
	if totalWeight == 0 {
		return nil
	}
	for i := range fused {
		fused[i] /= totalWeight
	}
	return fused
}

// minMaxNormalize rescales values onto [0, 1]. A flat channel is returned
// unscaled rather than forced to a constant.
func minMaxNormalize(values []float64) []float64 {
	min, max := values[0], values[0]
	for _, value := range values[1:] {
		if value < min {
			min = value
		}
		if value > max {
			max = value
		}
	}
	normalized := make([]float64, len(values))
	if max == min {
		copy(normalized, values)
		return normalized
	}
	span := max - min
	for i, value := range values {
		normalized[i] = (value - min) / span
	}
	return normalized
}
