package audiosig

import "math"

// Change score weights for the frame-to-frame comparison. They sum to 1.0
// and are fixed: tuning happens through the fuser's channel weights, not
// here.
const (
	changeWeightEnergy   = 0.2
	changeWeightCentroid = 0.2
	changeWeightMFCC     = 0.3
	changeWeightSpeech   = 0.15
	changeWeightSpeaker  = 0.15
)

// Normalizers that bring each raw delta into the unit range before
// weighting. The energy floor avoids division blowups on silent frames.
const (
	energyDeltaFloor   = 0.001
	centroidDeltaScale = 5000.0
	mfccDistanceScale  = 50.0
)

// ChangeScores computes one score per consecutive frame pair, so the result
// is one element shorter than the input. Each score blends relative energy
// and brightness deltas, cepstral distance, and speech/speaker flips; a
// score near 1 marks an abrupt acoustic shift such as a content-to-ad cut.
// Scores depend on the previous frame, so this is a single sequential pass.
func ChangeScores(frames []Frame) []float64 {
	if len(frames) < 2 {
		return nil
	}
	scores := make([]float64, len(frames)-1)
	for i := 1; i < len(frames); i++ {
		scores[i-1] = changeScore(frames[i-1], frames[i])
	}
	return scores
}

func changeScore(prev, cur Frame) float64 {
	energyDelta := math.Abs(cur.Energy-prev.Energy) / (prev.Energy + energyDeltaFloor)
	centroidDelta := math.Abs(cur.SpectralCentroid-prev.SpectralCentroid) / centroidDeltaScale
	mfccDelta := mfccDistance(prev.MFCC, cur.MFCC) / mfccDistanceScale

	score := changeWeightEnergy*clampUnit(energyDelta) +
		changeWeightCentroid*clampUnit(centroidDelta) +
		changeWeightMFCC*clampUnit(mfccDelta)
	if prev.IsSpeech != cur.IsSpeech {
		score += changeWeightSpeech
	}
	if speakerFlip(prev.Speaker, cur.Speaker) {
		score += changeWeightSpeaker
	}
	return clampUnit(score)
}

func mfccDistance(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// speakerFlip is true only when both frames carry a diarized speaker and the
// ids differ. A frame without an id never counts as a flip, so diarization
// gaps do not masquerade as boundaries.
func speakerFlip(prev, cur *int) bool {
	if prev == nil || cur == nil {
		return false
	}
	return *prev != *cur
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
