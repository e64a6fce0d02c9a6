package cutter

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"podsweep/internal/config"
	"podsweep/internal/detections"
	"podsweep/internal/fileutil"
	"podsweep/internal/logging"
	"podsweep/internal/media/ffprobe"
	"podsweep/internal/queue"
	"podsweep/internal/services"
	"podsweep/internal/stage"
)

// CleanFileName is how the ad-free audio is named inside the episode's
// staging directory.
const CleanFileName = "clean.mp3"

// Duration verification tolerance: the cleaned file may deviate from the
// summed keep time by this many seconds plus the fractional slack, which
// absorbs encoder padding and frame rounding.
const (
	durationToleranceSeconds  = 2.0
	durationToleranceFraction = 0.02
)

// Runner executes an external command and returns its stderr output.
// Injectable so tests can observe the ffmpeg invocation without encoding.
type Runner func(ctx context.Context, name string, args ...string) (string, error)

// Prober reports a media file's duration in seconds.
type Prober func(ctx context.Context, path string) (float64, error)

// Cutter removes detected ad segments from episode audio.
type Cutter struct {
	store  *queue.Store
	cfg    *config.Config
	logger *slog.Logger
	run    Runner
	probe  Prober
}

// NewCutter constructs the cut stage handler using the real ffmpeg/ffprobe
// binaries from configuration.
func NewCutter(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Cutter {
	c := &Cutter{store: store, cfg: cfg, logger: logger}
	if c.logger != nil {
		c.logger = c.logger.With(logging.String("component", "cutter"))
	}
	c.run = runCommand
	c.probe = func(ctx context.Context, path string) (float64, error) {
		result, err := ffprobe.Inspect(ctx, cfg.FFprobeBinary(), path)
		if err != nil {
			return 0, err
		}
		return result.DurationSeconds(), nil
	}
	return c
}

// NewCutterWithRunners allows injecting the command runner and duration
// prober (used in tests).
func NewCutterWithRunners(cfg *config.Config, store *queue.Store, logger *slog.Logger, run Runner, probe Prober) *Cutter {
	c := NewCutter(cfg, store, logger)
	if run != nil {
		c.run = run
	}
	if probe != nil {
		c.probe = probe
	}
	return c
}

func (c *Cutter) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, c.logger)
	item.InitProgress("Cutting", "Preparing ad removal")
	logger.Info("starting cut preparation",
		logging.String("episode_title", strings.TrimSpace(item.EpisodeTitle)),
		logging.String("audio_file", strings.TrimSpace(item.AudioFile)),
	)
	return nil
}

func (c *Cutter) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, c.logger)
	audioPath := strings.TrimSpace(item.AudioFile)
	if audioPath == "" {
		return services.Wrap(
			services.ErrValidation,
			"cutting",
			"validate inputs",
			"No audio file on the queue item; earlier stages did not complete",
			nil,
		)
	}
	report, err := stage.ParseDetections(item.DetectionsJSON)
	if err != nil {
		return err
	}

	total, err := c.probe(ctx, audioPath)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "cutting", "probe source", "Could not read the source audio duration", err)
	}
	if total <= 0 {
		total = report.EpisodeSeconds
	}

	destination := filepath.Join(filepath.Dir(audioPath), CleanFileName)
	if len(report.Segments) == 0 {
		logger.Info("no ad segments detected, copying source through")
		if err := fileutil.CopyVerified(audioPath, destination); err != nil {
			return services.Wrap(services.ErrConfiguration, "cutting", "copy source", "Could not copy the untouched episode", err)
		}
		item.CleanedFile = destination
		item.SetProgressComplete("Cutting", "No ads to remove")
		return nil
	}

	spans := report.KeepSpans(total, c.cfg.Cut.BufferSeconds)
	if len(spans) == 0 {
		return services.Wrap(
			services.ErrValidation,
			"cutting",
			"compute keep spans",
			"Detected ads cover the whole episode; nothing would remain after cutting",
			nil,
		)
	}

	item.SetProgress("Cutting", fmt.Sprintf("Encoding %d kept spans", len(spans)), 20)
	if err := c.store.Update(ctx, item); err != nil {
		logger.Warn("failed to persist cut progress", logging.Error(err))
	}

	encodeCtx := ctx
	if c.cfg.Cut.EncodeTimeout > 0 {
		var cancel context.CancelFunc
		encodeCtx, cancel = context.WithTimeout(ctx, time.Duration(c.cfg.Cut.EncodeTimeout)*time.Second)
		defer cancel()
	}
	started := time.Now()
	args := encodeArgs(audioPath, destination, spans, c.cfg.Cut.MP3Quality)
	if stderr, err := c.run(encodeCtx, c.cfg.FFmpegBinary(), args...); err != nil {
		os.Remove(destination)
		return services.Wrap(
			services.ErrExternalTool,
			"cutting",
			"encode clean audio",
			fmt.Sprintf("ffmpeg failed: %s", strings.TrimSpace(stderr)),
			err,
		)
	}

	expected := keptSeconds(spans)
	if err := c.verifyDuration(ctx, destination, expected); err != nil {
		os.Remove(destination)
		return err
	}

	item.CleanedFile = destination
	removed := total - expected
	item.SetProgressComplete("Cutting", fmt.Sprintf("Removed %.0fs of ads", removed))
	logger.Info("cut complete",
		logging.Int("kept_spans", len(spans)),
		logging.Float64("removed_seconds", removed),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}

func (c *Cutter) HealthCheck(ctx context.Context) stage.Health {
	const name = "cut"
	if _, err := exec.LookPath(c.cfg.FFmpegBinary()); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("ffmpeg not found: %v", err))
	}
	if _, err := exec.LookPath(c.cfg.FFprobeBinary()); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("ffprobe not found: %v", err))
	}
	return stage.Healthy(name)
}

// verifyDuration probes the cleaned file and checks it against the summed
// keep time within the encoder tolerance.
func (c *Cutter) verifyDuration(ctx context.Context, path string, expected float64) error {
	actual, err := c.probe(ctx, path)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "cutting", "probe result", "Could not read the cleaned audio duration", err)
	}
	tolerance := durationToleranceSeconds + expected*durationToleranceFraction
	if diff := actual - expected; diff > tolerance || diff < -tolerance {
		return services.Wrap(
			services.ErrExternalTool,
			"cutting",
			"verify duration",
			fmt.Sprintf("Cleaned audio is %.1fs, expected %.1fs (±%.1fs)", actual, expected, tolerance),
			nil,
		)
	}
	return nil
}

// encodeArgs builds the full ffmpeg invocation: one atrim+asetpts chain per
// keep span, concatenated and encoded with libmp3lame.
func encodeArgs(source, destination string, spans []detections.Span, quality int) []string {
	return []string{
		"-hide_banner", "-loglevel", "error",
		"-y",
		"-i", source,
		"-filter_complex", FilterGraph(spans),
		"-map", "[out]",
		"-codec:a", "libmp3lame",
		"-q:a", fmt.Sprintf("%d", quality),
		destination,
	}
}

// FilterGraph renders the filter_complex expression selecting the keep
// spans from the first input's audio.
func FilterGraph(spans []detections.Span) string {
	var graph strings.Builder
	for i, span := range spans {
		fmt.Fprintf(&graph, "[0:a]atrim=start=%.3f:end=%.3f,asetpts=PTS-STARTPTS[a%d];", span.Start, span.End, i)
	}
	for i := range spans {
		fmt.Fprintf(&graph, "[a%d]", i)
	}
	fmt.Fprintf(&graph, "concat=n=%d:v=0:a=1[out]", len(spans))
	return graph.String()
}

func keptSeconds(spans []detections.Span) float64 {
	var total float64
	for _, span := range spans {
		total += span.Duration()
	}
	return total
}

func runCommand(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.String(), err
}
