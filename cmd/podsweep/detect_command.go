package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"podsweep/internal/audiosig"
	"podsweep/internal/detect"
	"podsweep/internal/detections"
	"podsweep/internal/logging"
	"podsweep/internal/media"
	"podsweep/internal/services/embedder"
	"podsweep/internal/services/ollama"
	"podsweep/internal/transcript"
)

func newDetectCommand(ctx *commandContext) *cobra.Command {
	var transcriptPath string
	var mode string

	cmd := &cobra.Command{
		Use:   "detect <audio>",
		Short: "Run ad detection on an audio file without queueing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			audioPath, err := filepath.Abs(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("resolve audio path: %w", err)
			}
			if _, err := os.Stat(audioPath); err != nil {
				return fmt.Errorf("inspect audio file: %w", err)
			}

			episodeTranscript, err := loadDetectTranscript(audioPath, transcriptPath)
			if err != nil {
				return err
			}

			detection := cfg.Detection
			if strings.TrimSpace(mode) != "" {
				detection.Mode = detect.NormalizeMode(mode)
			}

			opts := detect.Options{
				Detection: detection,
				LLM:       cfg.LLM,
				Logger:    logging.NewNop(),
			}
			if cfg.Embedder.Enabled {
				embedClient, err := embedder.New(embedder.Config{
					Backend:        cfg.Embedder.Backend,
					URL:            cfg.Embedder.URL,
					TimeoutSeconds: cfg.Embedder.RequestTimeout,
				})
				if err == nil && embedClient != nil {
					opts.Embed = embedClient.Embed
				}
			}
			if cfg.LLM.Enabled {
				opts.Generator = ollama.NewClient(ollama.Config{
					BaseURL:        cfg.LLM.BaseURL,
					Model:          cfg.LLM.Model,
					TimeoutSeconds: cfg.LLM.TimeoutSeconds,
				})
			}
			engine := detect.NewEngine(opts)

			var frames []audiosig.Frame
			waveform, decodeErr := media.DecodePCM(cmd.Context(), cfg.FFmpegBinary(), audioPath, -1, detection.SampleRate)
			if decodeErr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: audio decode failed, detecting on text alone: %v\n", decodeErr)
			} else {
				frames = audiosig.Extract(waveform.Samples, waveform.SampleRate, audiosig.Config{})
			}
			if len(frames) == 0 && episodeTranscript.IsEmpty() {
				return errors.New("no transcript and audio decoding failed; nothing to detect on")
			}

			report, err := engine.Detect(cmd.Context(), episodeTranscript, frames)
			if err != nil {
				return err
			}

			if ctx.JSONMode() {
				return writeJSON(cmd, report)
			}
			printDetectReport(cmd, report)
			return nil
		},
	}

	cmd.Flags().StringVar(&transcriptPath, "transcript", "", "Transcript JSON (defaults to transcript.json next to the audio)")
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "Detection mode: fast, balanced, or accurate")
	return cmd
}

// loadDetectTranscript resolves the transcript for a one-shot run. An explicit
// path must exist; the implicit sibling lookup is best-effort.
func loadDetectTranscript(audioPath, transcriptPath string) (*transcript.Transcript, error) {
	transcriptPath = strings.TrimSpace(transcriptPath)
	if transcriptPath != "" {
		t, err := transcript.Load(transcriptPath)
		if err != nil {
			return nil, fmt.Errorf("load transcript: %w", err)
		}
		return t, nil
	}

	candidates := []string{
		filepath.Join(filepath.Dir(audioPath), "transcript.json"),
		strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + ".json",
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		t, err := transcript.Load(candidate)
		if err != nil {
			return nil, fmt.Errorf("load transcript %s: %w", candidate, err)
		}
		return t, nil
	}
	return nil, nil
}

func printDetectReport(cmd *cobra.Command, report detections.Report) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Mode: %s\n", report.Mode)
	caps := make([]string, 0, 5)
	if report.Capabilities.Audio {
		caps = append(caps, "audio")
	}
	if report.Capabilities.Text {
		caps = append(caps, "text")
	}
	if report.Capabilities.Embeddings {
		caps = append(caps, "embeddings")
	}
	if report.Capabilities.Diarization {
		caps = append(caps, "diarization")
	}
	if report.Capabilities.Verifier {
		caps = append(caps, "verifier")
	}
	fmt.Fprintf(out, "Signals: %s\n", strings.Join(caps, ", "))
	if report.EpisodeSeconds > 0 {
		fmt.Fprintf(out, "Episode length: %s\n", formatTimestamp(report.EpisodeSeconds))
	}

	if len(report.Segments) == 0 {
		fmt.Fprintln(out, "No ad segments detected")
		return
	}

	rows := make([][]string, 0, len(report.Segments))
	for _, seg := range report.Segments {
		rows = append(rows, []string{
			formatTimestamp(seg.Start),
			formatTimestamp(seg.End),
			fmt.Sprintf("%.0fs", seg.Duration()),
			fmt.Sprintf("%.2f", seg.Confidence),
			seg.Method,
		})
	}
	table := renderTable(
		[]string{"Start", "End", "Duration", "Confidence", "Method"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignLeft},
	)
	fmt.Fprint(out, table)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Detected %.0fs of ads across %d segments (%.1f%% of episode)\n",
		report.AdSeconds(), len(report.Segments), report.Coverage()*100)
}
