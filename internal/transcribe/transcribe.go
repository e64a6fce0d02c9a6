package transcribe

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"podsweep/internal/config"
	"podsweep/internal/language"
	"podsweep/internal/logging"
	"podsweep/internal/notifications"
	"podsweep/internal/queue"
	"podsweep/internal/services"
	"podsweep/internal/services/transcriber"
	"podsweep/internal/stage"
	"podsweep/internal/transcript"
)

// TranscriptFileName is how the transcript JSON is named inside the
// episode's staging directory.
const TranscriptFileName = "transcript.json"

// Transcriber is the speech-to-text surface the stage needs;
// *transcriber.Client satisfies it.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*transcript.Transcript, error)
	Health(ctx context.Context) error
}

// Stage uploads episode audio for transcription and records the result.
type Stage struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	client   Transcriber
	notifier notifications.Service
}

// NewStage constructs the transcription stage handler using default dependencies.
func NewStage(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Stage {
	client := transcriber.NewClient(transcriber.Config{
		URL:            cfg.Transcriber.URL,
		Language:       cfg.Transcriber.Language,
		TimeoutSeconds: cfg.Transcriber.RequestTimeout,
	})
	return NewStageWithClient(cfg, store, logger, client, notifications.NewService(cfg))
}

// NewStageWithClient allows injecting the transcriber (used in tests).
func NewStageWithClient(cfg *config.Config, store *queue.Store, logger *slog.Logger, client Transcriber, notifier notifications.Service) *Stage {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "transcribe"))
	}
	return &Stage{store: store, cfg: cfg, logger: stageLogger, client: client, notifier: notifier}
}

func (s *Stage) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, s.logger)
	item.InitProgress("Transcribing", "Preparing transcription")
	logger.Info("starting transcription preparation",
		logging.String("episode_title", strings.TrimSpace(item.EpisodeTitle)),
		logging.String("audio_file", strings.TrimSpace(item.AudioFile)),
	)
	return nil
}

func (s *Stage) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, s.logger)
	audioPath := strings.TrimSpace(item.AudioFile)
	if audioPath == "" {
		return services.Wrap(
			services.ErrValidation,
			"transcribing",
			"validate inputs",
			"No audio file on the queue item; run the download stage first",
			nil,
		)
	}
	if _, err := os.Stat(audioPath); err != nil {
		return services.Wrap(
			services.ErrValidation,
			"transcribing",
			"validate inputs",
			fmt.Sprintf("Audio file %s is missing from staging", filepath.Base(audioPath)),
			err,
		)
	}

	item.SetProgress("Transcribing", "Uploading audio to transcriber", 10)
	if err := s.store.Update(ctx, item); err != nil {
		logger.Warn("failed to persist transcription progress", logging.Error(err))
	}

	started := time.Now()
	result, err := s.client.Transcribe(ctx, audioPath)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "transcribing", "transcribe audio", "Transcription service failed", err)
	}
	if result.IsEmpty() {
		logger.Warn("transcriber returned an empty transcript", logging.String("audio_file", filepath.Base(audioPath)))
	}
	result.Language = language.ToISO2(result.Language)

	destination := filepath.Join(filepath.Dir(audioPath), TranscriptFileName)
	if err := result.Save(destination); err != nil {
		return services.Wrap(services.ErrConfiguration, "transcribing", "save transcript", "Could not write the transcript JSON", err)
	}
	item.TranscriptFile = destination

	item.SetProgressComplete("Transcribing", fmt.Sprintf("Transcribed %d segments", len(result.Segments)))
	logger.Info("transcription complete",
		logging.Int("segments", len(result.Segments)),
		logging.Int("chars", result.CharCount()),
		logging.String("language", language.DisplayName(result.Language)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}

func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	const name = "transcribe"
	if strings.TrimSpace(s.cfg.Transcriber.URL) == "" {
		return stage.Unhealthy(name, "transcriber.url is not configured")
	}
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.client.Health(checkCtx); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("transcriber unreachable: %v", err))
	}
	return stage.Healthy(name)
}
