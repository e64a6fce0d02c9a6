package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"podsweep/internal/cutter"
	"podsweep/internal/detect"
	"podsweep/internal/logging"
	"podsweep/internal/notifications"
	"podsweep/internal/organizer"
	"podsweep/internal/queue"
	"podsweep/internal/stageexec"
	"podsweep/internal/transcribe"
)

// processStep pairs a stage handler with its queue transition.
type processStep struct {
	name       string
	handler    stageexec.Handler
	processing queue.Status
	done       queue.Status
}

func newProcessCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "process <file>",
		Short: "Run the full ad removal pipeline on a local audio file",
		Long: "Process transcribes, detects, cuts, and organizes a local audio file " +
			"synchronously without the daemon. The item is tracked in the queue " +
			"database like daemon-processed episodes.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			absPath, err := filepath.Abs(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}
			info, err := os.Stat(absPath)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("file does not exist: %s", absPath)
				}
				return fmt.Errorf("inspect file: %w", err)
			}
			if info.IsDir() {
				return fmt.Errorf("%s is a directory", absPath)
			}
			ext := strings.ToLower(filepath.Ext(info.Name()))
			if _, ok := audioFileExtensions[ext]; !ok {
				return fmt.Errorf("unsupported file extension %q", ext)
			}

			store, err := queue.Open(cfg)
			if err != nil {
				return fmt.Errorf("open queue database: %w", err)
			}
			defer store.Close()

			logger, err := logging.New(logging.Options{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			item, err := store.NewLocalFile(cmd.Context(), absPath)
			if err != nil {
				return fmt.Errorf("enqueue local file: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Processing %s as item #%d\n", filepath.Base(absPath), item.ID)

			notifier := notifications.NewService(cfg)
			steps := []processStep{
				{"transcribe", transcribe.NewStage(cfg, store, logger), queue.StatusTranscribing, queue.StatusTranscribed},
				{"detect", detect.NewStage(cfg, store, logger), queue.StatusDetecting, queue.StatusDetected},
				{"cut", cutter.NewCutter(cfg, store, logger), queue.StatusCutting, queue.StatusCut},
				{"organize", organizer.NewOrganizer(cfg, store, logger), queue.StatusOrganizing, queue.StatusCompleted},
			}

			for _, step := range steps {
				fmt.Fprintf(out, "Running %s...\n", step.name)
				err := stageexec.Run(cmd.Context(), stageexec.Options{
					Logger:     logger,
					Store:      store,
					Notifier:   notifier,
					Handler:    step.handler,
					StageName:  step.name,
					Processing: step.processing,
					Done:       step.done,
					Item:       item,
				})
				if err != nil {
					fmt.Fprintf(out, "Item #%d left in %s state for inspection\n", item.ID, item.Status)
					return fmt.Errorf("%s: %w", step.name, err)
				}
				if item.Status == queue.StatusReview {
					fmt.Fprintf(out, "Item #%d routed to review: %s\n", item.ID, item.ReviewReason)
					return nil
				}
			}

			fmt.Fprintf(out, "Done: %s\n", item.FinalFile)
			return nil
		},
	}
}
