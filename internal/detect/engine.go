package detect

import (
	"context"
	"log/slog"
	"time"

	"podsweep/internal/adclass"
	"podsweep/internal/audiosig"
	"podsweep/internal/config"
	"podsweep/internal/detections"
	"podsweep/internal/logging"
	"podsweep/internal/segmenter"
	"podsweep/internal/textsig"
	"podsweep/internal/transcript"
)

// Minimum fused-signal samples before the change-point search is worth
// running. Shorter signals fall through to the opening scan alone.
const (
	minSamplesMultiChannel  = 10
	minSamplesSingleChannel = 5
	minSegmentSizeMulti     = 5
	minSegmentSizeSingle    = 3
)

// Confidence blend between the fused-signal average and the domain
// classifier when transcript text is available.
const (
	signalBlendWeight     = 0.4
	classifierBlendWeight = 0.6
)

// contextWindowSeconds is how much neighboring transcript the classifier
// sees on each side of a span.
const contextWindowSeconds = 60.0

// Generator is the LLM surface the verifier needs; *ollama.Client
// satisfies it.
type Generator interface {
	Generate(ctx context.Context, system, prompt string, jsonFormat bool) (string, error)
}

// Options wires the engine's collaborators. Embedder and Generator are
// optional; a nil value disables the corresponding capability.
type Options struct {
	Detection config.Detection
	LLM       config.LLM
	Embed     adclass.EmbedFunc
	Generator Generator
	Logger    *slog.Logger
}

// Engine runs the full detection pipeline over one episode.
type Engine struct {
	cfg          config.Detection
	llmCfg       config.LLM
	classifier   *adclass.Classifier
	text         *textsig.Extractor
	generator    Generator
	embedPresent bool
	logger       *slog.Logger
}

// NewEngine builds an engine. Zero-valued tunables take the engine
// defaults (the config loader normally fills them in).
func NewEngine(opts Options) *Engine {
	cfg := opts.Detection
	cfg.Mode = NormalizeMode(cfg.Mode)
	if cfg.MinConfidence <= 0 {
		cfg.MinConfidence = 0.35
	}
	if cfg.ClassifierThreshold <= 0 {
		cfg.ClassifierThreshold = 0.4
	}
	if cfg.MergeGapSeconds <= 0 {
		cfg.MergeGapSeconds = 15
	}
	if cfg.MinAdSeconds <= 0 {
		cfg.MinAdSeconds = 10
	}
	if cfg.ChangepointPenalty <= 0 {
		cfg.ChangepointPenalty = 0.3
	}
	if cfg.ChangepointPenaltySingle <= 0 {
		cfg.ChangepointPenaltySingle = 0.5
	}
	llmCfg := opts.LLM
	if llmCfg.VerifyLow <= 0 {
		llmCfg.VerifyLow = 0.35
	}
	if llmCfg.VerifyHigh <= 0 {
		llmCfg.VerifyHigh = 0.65
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	patterns := adclass.DefaultPatterns()
	return &Engine{
		cfg:          cfg,
		llmCfg:       llmCfg,
		classifier:   adclass.New(patterns, opts.Embed),
		text:         textsig.New(patterns, opts.Embed),
		generator:    opts.Generator,
		embedPresent: opts.Embed != nil,
		logger:       logger,
	}
}

// Mode returns the normalized detection mode the engine runs in.
func (e *Engine) Mode() string {
	return e.cfg.Mode
}

// Classifier exposes the engine's domain classifier for direct span
// classification outside a full pipeline run.
func (e *Engine) Classifier() *adclass.Classifier {
	return e.classifier
}

// Detect runs the pipeline: fuse, segment, score, propagate context, merge,
// filter, verify. Missing inputs are never an error; an episode with no
// usable transcript and no audio frames yields an empty report. The only
// error returned is context cancellation.
func (e *Engine) Detect(ctx context.Context, t *transcript.Transcript, frames []audiosig.Frame) (detections.Report, error) {
	report := detections.Report{
		Mode:        e.cfg.Mode,
		GeneratedAt: time.Now().UTC(),
		Capabilities: detections.Capabilities{
			Audio:       len(frames) > 0,
			Text:        !t.IsEmpty(),
			Embeddings:  e.embedPresent,
			Diarization: hasSpeakers(frames),
			Verifier:    e.generator != nil && e.llmCfg.Enabled,
		},
	}
	if !report.Capabilities.Audio && !report.Capabilities.Text {
		e.logger.Warn("nothing to detect on", logging.String("reason", "no audio frames and empty transcript"))
		return report, nil
	}
	if report.Capabilities.Text {
		report.TranscriptChars = t.CharCount()
	}
	report.EpisodeSeconds = episodeSeconds(t, frames)

	vector := e.buildSignalVector(ctx, t, frames)
	candidates := e.segmentAndScore(ctx, vector, t, report.Capabilities)
	if err := ctx.Err(); err != nil {
		return detections.Report{}, err
	}

	if report.Capabilities.Text {
		if e.cfg.OpeningScan {
			candidates = append(e.openingScan(ctx, t), candidates...)
		}
		if e.cfg.EdgeExpansion {
			candidates = e.expandEdges(ctx, t, candidates)
		}
	}

	merged := MergeSegments(candidates, e.cfg.MergeGapSeconds)
	kept := FilterMinDuration(merged, e.cfg.MinAdSeconds)

	if report.Capabilities.Verifier && report.Capabilities.Text {
		kept = e.verifySegments(ctx, t, kept)
	}
	if err := ctx.Err(); err != nil {
		return detections.Report{}, err
	}

	for i := range kept {
		kept[i].Confidence = clampUnit(kept[i].Confidence)
	}
	report.Segments = kept
	e.logger.Info("detection run complete",
		logging.String("mode", e.cfg.Mode),
		logging.Int("segments", len(kept)),
		logging.Float64("ad_seconds", detections.Report{Segments: kept}.AdSeconds()),
	)
	return report, nil
}

// buildSignalVector assembles all available channels onto one axis. The
// audio frame axis wins when both sources exist; the text channels are then
// aligned onto it under the pad/truncate policy.
func (e *Engine) buildSignalVector(ctx context.Context, t *transcript.Transcript, frames []audiosig.Frame) *SignalVector {
	audioAxis, audioChannels := audiosig.Channels(frames)
	textAxis, textChannels := e.text.Channels(ctx, t)

	axis := audioAxis
	if len(axis) == 0 {
		axis = textAxis
	}
	vector := NewSignalVector(axis)
	for name, values := range audioChannels {
		vector.Add(name, values)
	}
	for name, values := range textChannels {
		vector.Add(name, values)
	}
	return vector
}

// segmentAndScore fuses the channels, finds change points, and scores each
// inter-breakpoint interval.
func (e *Engine) segmentAndScore(ctx context.Context, vector *SignalVector, t *transcript.Transcript, caps detections.Capabilities) []detections.Segment {
	fused := vector.Fused(modeWeights[e.cfg.Mode])
	if fused == nil {
		return nil
	}

	single := vector.ChannelCount() == 1
	minSamples := minSamplesMultiChannel
	if single {
		minSamples = minSamplesSingleChannel
	}
	if len(fused) < minSamples {
		return nil
	}

	segCfg := segmenter.Config{MinSize: minSegmentSizeMulti, Penalty: e.cfg.ChangepointPenalty}
	if single {
		segCfg = segmenter.Config{MinSize: minSegmentSizeSingle, Penalty: e.cfg.ChangepointPenaltySingle}
	}
	breaks := segmenter.ChangePoints(fused, segCfg)
	if len(breaks) == 0 && single {
		breaks = segmenter.ThresholdCrossings(fused, segmenter.DefaultCrossingThreshold)
		if len(breaks) == 0 {
			breaks = segmenter.GradientPeaks(fused)
		}
	}
	return e.scoreIntervals(ctx, vector, fused, breaks, t, caps)
}

func hasSpeakers(frames []audiosig.Frame) bool {
	for _, frame := range frames {
		if frame.Speaker != nil {
			return true
		}
	}
	return false
}

func episodeSeconds(t *transcript.Transcript, frames []audiosig.Frame) float64 {
	seconds := t.Duration()
	if n := len(frames); n > 0 && frames[n-1].End > seconds {
		seconds = frames[n-1].End
	}
	return seconds
}
