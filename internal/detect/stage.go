package detect

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"podsweep/internal/audiosig"
	"podsweep/internal/config"
	"podsweep/internal/logging"
	"podsweep/internal/media"
	"podsweep/internal/media/audio"
	"podsweep/internal/media/ffprobe"
	"podsweep/internal/notifications"
	"podsweep/internal/queue"
	"podsweep/internal/services"
	"podsweep/internal/services/diarizer"
	"podsweep/internal/services/embedder"
	"podsweep/internal/services/ollama"
	"podsweep/internal/stage"
	"podsweep/internal/transcript"
)

// A transcript this long with zero detections is suspicious enough to
// route the episode to manual review instead of silently passing it
// through uncut.
const reviewTranscriptChars = 20000

// Diarizer is the speaker-turn surface the stage needs; *diarizer.Client
// satisfies it.
type Diarizer interface {
	Diarize(ctx context.Context, audioPath string) ([]audiosig.Turn, error)
}

// Stage runs ad detection for queue items.
type Stage struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	engine   *Engine
	diarizer Diarizer
	verifier *ollama.Client
	notifier notifications.Service
}

// NewStage constructs the detect stage handler using default dependencies.
func NewStage(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Stage {
	var diarizerClient Diarizer
	if cfg.Diarizer.Enabled {
		diarizerClient = diarizer.NewClient(diarizer.Config{
			URL:            cfg.Diarizer.URL,
			TimeoutSeconds: cfg.Diarizer.RequestTimeout,
		})
	}
	var verifier *ollama.Client
	if cfg.LLM.Enabled {
		verifier = ollama.NewClient(ollama.Config{
			BaseURL:        cfg.LLM.BaseURL,
			Model:          cfg.LLM.Model,
			TimeoutSeconds: cfg.LLM.TimeoutSeconds,
		})
	}
	embedClient, err := embedder.New(embedder.Config{
		Backend:        cfg.Embedder.Backend,
		URL:            cfg.Embedder.URL,
		TimeoutSeconds: cfg.Embedder.RequestTimeout,
	})
	if err != nil || !cfg.Embedder.Enabled {
		embedClient = nil
	}
	return NewStageWithDependencies(cfg, store, logger, embedClient, diarizerClient, verifier, notifications.NewService(cfg))
}

// NewStageWithDependencies allows injecting collaborators (used in tests).
func NewStageWithDependencies(
	cfg *config.Config,
	store *queue.Store,
	logger *slog.Logger,
	embedClient embedder.Client,
	diarizerClient Diarizer,
	verifier *ollama.Client,
	notifier notifications.Service,
) *Stage {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "detect"))
	}
	opts := Options{
		Detection: cfg.Detection,
		LLM:       cfg.LLM,
		Logger:    stageLogger,
	}
	if embedClient != nil {
		opts.Embed = embedClient.Embed
	}
	var generator Generator
	if verifier != nil {
		generator = verifier
		opts.Generator = generator
	}
	return &Stage{
		store:    store,
		cfg:      cfg,
		logger:   stageLogger,
		engine:   NewEngine(opts),
		diarizer: diarizerClient,
		verifier: verifier,
		notifier: notifier,
	}
}

// Engine exposes the configured engine for one-shot CLI runs.
func (s *Stage) Engine() *Engine {
	return s.engine
}

func (s *Stage) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, s.logger)
	item.InitProgress("Detecting", "Preparing ad detection")
	logger.Info("starting detection preparation",
		logging.String("episode_title", strings.TrimSpace(item.EpisodeTitle)),
		logging.String("audio_file", strings.TrimSpace(item.AudioFile)),
		logging.String("transcript_file", strings.TrimSpace(item.TranscriptFile)),
	)
	return nil
}

func (s *Stage) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, s.logger)
	if strings.TrimSpace(item.AudioFile) == "" && strings.TrimSpace(item.TranscriptFile) == "" {
		return services.Wrap(
			services.ErrValidation,
			"detecting",
			"validate inputs",
			"No audio file or transcript present for detection; run download and transcribe first",
			nil,
		)
	}

	episodeTranscript := s.loadTranscript(logger, item)
	frames := s.extractFrames(ctx, logger, item)
	item.SetProgress("Detecting", "Running detection engine", 40)
	if err := s.store.Update(ctx, item); err != nil {
		logger.Warn("failed to persist detection progress", logging.Error(err))
	}

	report, err := s.engine.Detect(ctx, episodeTranscript, frames)
	if err != nil {
		return services.Wrap(services.ErrTransient, "detecting", "run engine", "Detection interrupted", err)
	}

	encoded, err := report.Encode()
	if err != nil {
		return services.Wrap(services.ErrValidation, "detecting", "encode report", "Could not serialize detection report", err)
	}
	item.DetectionsJSON = encoded
	item.DetectionMode = report.Mode

	if len(report.Segments) == 0 && report.TranscriptChars >= reviewTranscriptChars {
		item.NeedsReview = true
		item.ReviewReason = fmt.Sprintf("no ad segments detected in %d-character transcript", report.TranscriptChars)
		logger.Warn("detection found nothing in a long episode", logging.Int("transcript_chars", report.TranscriptChars))
		if s.notifier != nil {
			if err := s.notifier.Publish(ctx, notifications.EventDetectionReview, notifications.Payload{
				"episode": item.EpisodeTitle,
				"reason":  item.ReviewReason,
			}); err != nil {
				logger.Debug("review notification failed", logging.Error(err))
			}
		}
	}

	item.SetProgressComplete("Detecting", fmt.Sprintf("Found %d ad segments (%.0fs)", len(report.Segments), report.AdSeconds()))
	logger.Info("detection complete",
		logging.Int("segments", len(report.Segments)),
		logging.Float64("ad_seconds", report.AdSeconds()),
		logging.Float64("coverage", report.Coverage()),
		logging.Bool("audio", report.Capabilities.Audio),
		logging.Bool("text", report.Capabilities.Text),
	)
	return nil
}

// loadTranscript returns nil when the transcript is missing or unreadable;
// detection then runs audio-only.
func (s *Stage) loadTranscript(logger *slog.Logger, item *queue.Item) *transcript.Transcript {
	path := strings.TrimSpace(item.TranscriptFile)
	if path == "" {
		return nil
	}
	episodeTranscript, err := transcript.Load(path)
	if err != nil {
		logger.Warn("transcript unavailable, detecting on audio alone",
			logging.String("transcript_file", path),
			logging.Error(err),
		)
		return nil
	}
	return episodeTranscript
}

// extractFrames decodes the audio and computes feature frames. Any failure
// degrades to text-only detection with a warning.
func (s *Stage) extractFrames(ctx context.Context, logger *slog.Logger, item *queue.Item) []audiosig.Frame {
	path := strings.TrimSpace(item.AudioFile)
	if path == "" {
		return nil
	}
	started := time.Now()
	waveform, err := media.DecodePCM(ctx, s.cfg.FFmpegBinary(), path, s.primaryStreamIndex(ctx, logger, path), s.cfg.Detection.SampleRate)
	if err != nil {
		logger.Warn("audio decode failed, detecting on text alone",
			logging.String("audio_file", filepath.Base(path)),
			logging.Error(err),
		)
		return nil
	}
	frames := audiosig.Extract(waveform.Samples, waveform.SampleRate, audiosig.Config{})
	logger.Info("audio features extracted",
		logging.Int("frames", len(frames)),
		logging.Duration("elapsed", time.Since(started)),
	)

	if s.diarizer != nil && len(frames) > 0 {
		turns, err := s.diarizer.Diarize(ctx, path)
		if err != nil {
			logger.Warn("diarization failed, continuing without speaker channel", logging.Error(err))
		} else {
			audiosig.AssignSpeakers(frames, turns)
		}
	}
	return frames
}

// primaryStreamIndex probes the container and picks one audio stream for the
// decode. Probe failures fall back to ffmpeg's own default stream choice.
func (s *Stage) primaryStreamIndex(ctx context.Context, logger *slog.Logger, path string) int {
	result, err := ffprobe.Inspect(ctx, s.cfg.FFprobeBinary(), path)
	if err != nil {
		logger.Warn("stream probe failed, using default audio stream", logging.Error(err))
		return -1
	}
	if result.AudioStreamCount() <= 1 {
		return -1
	}
	selection := audio.SelectPrimary(result)
	if selection.Index < 0 {
		return -1
	}
	logger.Info("selected primary audio stream",
		logging.Int("stream_index", selection.Index),
		logging.String("stream", selection.Label()),
		logging.Int("skipped", len(selection.Skipped)),
	)
	return selection.Index
}

func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	const name = "detect"
	if s.verifier != nil {
		checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := s.verifier.Health(checkCtx); err != nil {
			return stage.Unhealthy(name, fmt.Sprintf("llm verifier unreachable: %v", err))
		}
	}
	return stage.Healthy(name)
}
