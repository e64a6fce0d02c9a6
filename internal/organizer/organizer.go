package organizer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"podsweep/internal/config"
	"podsweep/internal/detections"
	"podsweep/internal/fileutil"
	"podsweep/internal/logging"
	"podsweep/internal/notifications"
	"podsweep/internal/queue"
	"podsweep/internal/services"
	"podsweep/internal/stage"
)

// ReportSuffix names the detection report sidecar written next to the
// organized episode.
const ReportSuffix = ".report.json"

// Organizer moves cleaned episodes into the final library location.
type Organizer struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	notifier notifications.Service
}

// NewOrganizer constructs the organizer stage handler using default dependencies.
func NewOrganizer(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Organizer {
	return NewOrganizerWithDependencies(cfg, store, logger, notifications.NewService(cfg))
}

// NewOrganizerWithDependencies allows injecting collaborators (used in tests).
func NewOrganizerWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, notifier notifications.Service) *Organizer {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "organizer"))
	}
	return &Organizer{store: store, cfg: cfg, logger: stageLogger, notifier: notifier}
}

func (o *Organizer) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, o.logger)
	item.InitProgress("Organizing", "Preparing library organization")
	logger.Info("starting organization preparation",
		logging.String("episode_title", strings.TrimSpace(item.EpisodeTitle)),
		logging.String("cleaned_file", strings.TrimSpace(item.CleanedFile)),
	)
	return nil
}

func (o *Organizer) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, o.logger)
	cleaned := strings.TrimSpace(item.CleanedFile)
	if cleaned == "" {
		return services.Wrap(
			services.ErrValidation,
			"organizing",
			"validate inputs",
			"No cleaned file present for organization; run the cut stage first",
			nil,
		)
	}
	if _, err := os.Stat(cleaned); err != nil {
		return services.Wrap(
			services.ErrValidation,
			"organizing",
			"validate inputs",
			fmt.Sprintf("Cleaned file %s is missing from staging", filepath.Base(cleaned)),
			err,
		)
	}

	if item.NeedsReview {
		return o.routeToReview(ctx, item, cleaned)
	}

	meta := o.resolveMetadata(item)
	targetDir := meta.GetLibraryPath(o.cfg.Paths.LibraryDir, o.cfg.Organizer.PodcastsDir)
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "organizing", "create library dir", "Could not create the library directory", err)
	}

	target := filepath.Join(targetDir, meta.GetFilename()+".mp3")
	if !o.cfg.Organizer.OverwriteExisting {
		target = uniquePath(target)
	}

	item.SetProgress("Organizing", fmt.Sprintf("Moving to %s", filepath.Base(target)), 50)
	if err := o.store.Update(ctx, item); err != nil {
		logger.Warn("failed to persist organization progress", logging.Error(err))
	}

	if err := moveOrCopyFile(logger, cleaned, target); err != nil {
		return services.Wrap(services.ErrConfiguration, "organizing", "move episode", "Could not place the episode in the library", err)
	}
	item.FinalFile = target
	item.CleanedFile = target

	report := o.writeReportSidecar(logger, item, target)
	o.cleanupStaging(item)

	item.SetProgressComplete("Organizing", fmt.Sprintf("Organized as %s", filepath.Base(target)))
	logger.Info("organization complete",
		logging.String("final_file", target),
		logging.Float64("removed_seconds", report.AdSeconds()),
	)
	if o.notifier != nil {
		payload := notifications.Payload{
			"episode": item.EpisodeTitle,
			"file":    filepath.Base(target),
		}
		if removed := report.AdSeconds(); removed > 0 {
			payload["removed"] = fmt.Sprintf("%.0fs", removed)
		}
		if err := o.notifier.Publish(ctx, notifications.EventEpisodeCompleted, payload); err != nil {
			logger.Warn("completion notification failed", logging.Error(err))
		}
	}
	return nil
}

func (o *Organizer) HealthCheck(ctx context.Context) stage.Health {
	const name = "organize"
	library := strings.TrimSpace(o.cfg.Paths.LibraryDir)
	if library == "" {
		return stage.Unhealthy(name, "library_dir is not configured")
	}
	if info, err := os.Stat(library); err != nil || !info.IsDir() {
		return stage.Unhealthy(name, fmt.Sprintf("library directory unavailable: %s", library))
	}
	return stage.Healthy(name)
}

// resolveMetadata prefers stored metadata and falls back to item fields,
// then to the cleaned file's name.
func (o *Organizer) resolveMetadata(item *queue.Item) queue.Metadata {
	if strings.TrimSpace(item.MetadataJSON) != "" {
		meta := queue.MetadataFromJSON(item.MetadataJSON, item.EpisodeTitle)
		if strings.TrimSpace(meta.Title()) != "" && strings.TrimSpace(meta.GetFilename()) != "" {
			if meta.ShowValue == "" {
				meta.ShowValue = strings.TrimSpace(item.ShowTitle)
			}
			return meta
		}
	}
	title := strings.TrimSpace(item.EpisodeTitle)
	if title == "" {
		base := filepath.Base(strings.TrimSpace(item.CleanedFile))
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return queue.NewBasicMetadata(title, item.ShowTitle)
}

// writeReportSidecar persists the detection report next to the organized
// file when configured. Sidecar failures never fail the stage.
func (o *Organizer) writeReportSidecar(logger *slog.Logger, item *queue.Item, target string) detections.Report {
	report, err := detections.Parse(item.DetectionsJSON)
	if err != nil {
		logger.Warn("stored detection report unreadable", logging.Error(err))
		return detections.Report{}
	}
	if !o.cfg.Organizer.SaveReport || strings.TrimSpace(item.DetectionsJSON) == "" {
		return report
	}
	sidecar := strings.TrimSuffix(target, filepath.Ext(target)) + ReportSuffix
	if err := os.WriteFile(sidecar, []byte(item.DetectionsJSON), 0o644); err != nil {
		logger.Warn("could not write report sidecar", logging.String("path", sidecar), logging.Error(err))
	}
	return report
}

// cleanupStaging removes the per-item staging directory once the episode
// lives in the library. Best effort.
func (o *Organizer) cleanupStaging(item *queue.Item) {
	root := item.StagingRoot(o.cfg.Paths.StagingDir)
	if root == "" {
		return
	}
	if resolved, err := filepath.Abs(root); err != nil || resolved == string(filepath.Separator) {
		return
	}
	_ = os.RemoveAll(root)
}

// uniquePath appends " (n)" before the extension until the path is free.
func uniquePath(path string) string {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return path
	}
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, i, ext)
		if _, err := os.Stat(candidate); errors.Is(err, fs.ErrNotExist) {
			return candidate
		}
	}
}

// moveOrCopyFile renames when source and target share a filesystem and
// falls back to a verified copy across devices.
func moveOrCopyFile(logger *slog.Logger, source, target string) error {
	err := os.Rename(source, target)
	if err == nil {
		return nil
	}
	var linkErr *os.LinkError
	if errors.As(err, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV) {
		if logger != nil {
			logger.Debug("cross-device move, copying instead", logging.String("target", target))
		}
		if copyErr := fileutil.CopyVerified(source, target); copyErr != nil {
			return copyErr
		}
		return os.Remove(source)
	}
	return err
}
