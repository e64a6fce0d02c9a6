package organizer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"podsweep/internal/logging"
	"podsweep/internal/notifications"
	"podsweep/internal/queue"
	"podsweep/internal/services"
)

// routeToReview moves a flagged episode into the review directory instead
// of the library. The item still completes; a human sorts it out from
// there.
func (o *Organizer) routeToReview(ctx context.Context, item *queue.Item, cleaned string) error {
	logger := logging.WithContext(ctx, o.logger)
	reason := strings.TrimSpace(item.ReviewReason)
	logger.Info("routing item to manual review", logging.String("reason", reason))

	reviewDir := strings.TrimSpace(o.cfg.Paths.ReviewDir)
	if reviewDir == "" {
		return services.Wrap(services.ErrConfiguration, "organizing", "resolve review dir", "review_dir is not configured", nil)
	}
	if err := os.MkdirAll(reviewDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "organizing", "create review dir", "Could not create the review directory", err)
	}

	meta := o.resolveMetadata(item)
	target := uniquePath(filepath.Join(reviewDir, meta.GetFilename()+".mp3"))
	if err := moveOrCopyFile(logger, cleaned, target); err != nil {
		return services.Wrap(services.ErrConfiguration, "organizing", "move to review", "Could not place the episode in the review directory", err)
	}
	item.FinalFile = target
	item.CleanedFile = target
	o.writeReportSidecar(logger, item, target)
	o.cleanupStaging(item)

	item.SetProgressComplete("Manual review", fmt.Sprintf("Moved to review directory: %s", filepath.Base(target)))
	item.ProgressStage = "Manual review"
	if strings.TrimSpace(item.ErrorMessage) == "" {
		item.ErrorMessage = reason
	}
	if o.notifier != nil {
		if err := o.notifier.Publish(ctx, notifications.EventDetectionReview, notifications.Payload{
			"episode": item.EpisodeTitle,
			"reason":  reason,
		}); err != nil {
			logger.Warn("review notification failed", logging.Error(err))
		}
	}
	return nil
}
