package audiosig

import "math"

// Signal channel names consumed by the fuser.
const (
	ChannelEnergy   = "audio_energy"
	ChannelSpectral = "audio_spectral"
	ChannelChange   = "audio_change"
	ChannelSpeech   = "audio_speech"
)

// MFCCCount is the number of cepstral coefficients kept per frame.
const MFCCCount = 13

// Centroid values are divided by this when emitted as the spectral channel,
// bringing typical speech brightness into the unit range.
const centroidScale = 5000.0

// Frame holds the analysis features for one fixed-duration window.
type Frame struct {
	Start            float64
	End              float64
	Energy           float64
	SpectralCentroid float64
	SpectralRolloff  float64
	ZCR              float64
	MFCC             []float64
	IsSpeech         bool
	// Speaker is the diarized speaker id, nil when diarization is disabled
	// or no turn contains the frame midpoint.
	Speaker *int
}

// Config controls frame windowing.
type Config struct {
	// FrameDuration is the analysis window in seconds. Default 1.0.
	FrameDuration float64
	// HopDuration is the advance between windows in seconds. Default 0.5.
	HopDuration float64
}

func (c Config) withDefaults() Config {
	if c.FrameDuration <= 0 {
		c.FrameDuration = 1.0
	}
	if c.HopDuration <= 0 {
		c.HopDuration = 0.5
	}
	return c
}

// Extract computes feature frames over mono PCM samples in [-1, 1]. Audio
// shorter than one window yields no frames.
func Extract(samples []float64, sampleRate int, cfg Config) []Frame {
	if len(samples) == 0 || sampleRate <= 0 {
		return nil
	}
	cfg = cfg.withDefaults()
	frameSamples := int(cfg.FrameDuration * float64(sampleRate))
	hopSamples := int(cfg.HopDuration * float64(sampleRate))
	if frameSamples <= 0 || hopSamples <= 0 || frameSamples > len(samples) {
		return nil
	}

	analyzer := newSpectralAnalyzer(sampleRate)
	frames := make([]Frame, 0, 1+(len(samples)-frameSamples)/hopSamples)
	for position := 0; position+frameSamples <= len(samples); position += hopSamples {
		window := samples[position : position+frameSamples]
		frame := Frame{
			Start: float64(position) / float64(sampleRate),
			End:   float64(position+frameSamples) / float64(sampleRate),
		}
		frame.Energy = rmsEnergy(window)
		frame.ZCR = zeroCrossingRate(window)
		frame.SpectralCentroid, frame.SpectralRolloff, frame.MFCC = analyzer.analyze(window)
		frame.IsSpeech = frame.Energy > 0.01 && frame.ZCR >= 0.02 && frame.ZCR <= 0.15
		frames = append(frames, frame)
	}
	return frames
}

// Channels converts frames into the fuser's named signal arrays plus the
// frame-start timestamp axis. The change channel is one shorter than the
// frame count by construction, so a leading zero keeps every array the same
// length.
func Channels(frames []Frame) ([]float64, map[string][]float64) {
	if len(frames) == 0 {
		return nil, nil
	}
	n := len(frames)
	timestamps := make([]float64, n)
	energy := make([]float64, n)
	spectral := make([]float64, n)
	speech := make([]float64, n)
	for i, frame := range frames {
		timestamps[i] = frame.Start
		energy[i] = frame.Energy
		spectral[i] = frame.SpectralCentroid / centroidScale
		if frame.IsSpeech {
			speech[i] = 1
		}
	}

	change := make([]float64, n)
	copy(change[1:], ChangeScores(frames))

	return timestamps, map[string][]float64{
		ChannelEnergy:   energy,
		ChannelSpectral: spectral,
		ChannelChange:   change,
		ChannelSpeech:   speech,
	}
}

func rmsEnergy(window []float64) float64 {
	if len(window) == 0 {
		return 0
	}
	sum := 0.0
	for _, sample := range window {
		sum += sample * sample
	}
	return math.Sqrt(sum / float64(len(window)))
}

func zeroCrossingRate(window []float64) float64 {
	if len(window) < 2 {
		return 0
	}
	crossings := 0
	prevNegative := window[0] < 0
	for _, sample := range window[1:] {
		negative := sample < 0
		if negative != prevNegative {
			crossings++
			prevNegative = negative
		}
	}
	return float64(crossings) / float64(len(window)-1)
}
