package download

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"podsweep/internal/config"
	"podsweep/internal/logging"
	"podsweep/internal/notifications"
	"podsweep/internal/queue"
	"podsweep/internal/services"
	"podsweep/internal/stage"
	"podsweep/internal/textutil"
)

const (
	copyChunkBytes   = 8 * 1024
	progressInterval = 2 * time.Second
	defaultFileName  = "episode.mp3"
)

// Downloader fetches episode audio from the item's source URL into the
// per-item staging directory.
type Downloader struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	client   *http.Client
	notifier notifications.Service
}

// NewDownloader constructs the download stage handler using default dependencies.
func NewDownloader(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Downloader {
	return NewDownloaderWithClient(cfg, store, logger, nil, notifications.NewService(cfg))
}

// NewDownloaderWithClient allows injecting the HTTP client (used in tests).
func NewDownloaderWithClient(cfg *config.Config, store *queue.Store, logger *slog.Logger, client *http.Client, notifier notifications.Service) *Downloader {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "download"))
	}
	if client == nil {
		timeout := time.Duration(cfg.Download.RequestTimeout) * time.Second
		client = &http.Client{Timeout: timeout}
	}
	return &Downloader{store: store, cfg: cfg, logger: stageLogger, client: client, notifier: notifier}
}

func (d *Downloader) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, d.logger)
	item.InitProgress("Downloading", "Preparing episode download")
	item.ProgressBytesCopied = 0
	item.ProgressTotalBytes = 0
	logger.Info("starting download preparation",
		logging.String("episode_title", strings.TrimSpace(item.EpisodeTitle)),
		logging.String("source", strings.TrimSpace(item.Source)),
	)
	return nil
}

func (d *Downloader) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, d.logger)
	source := strings.TrimSpace(item.Source)
	if source == "" {
		return services.Wrap(
			services.ErrValidation,
			"downloading",
			"validate inputs",
			"No source URL on the queue item; re-add the episode with a feed or direct URL",
			nil,
		)
	}
	if existing := strings.TrimSpace(item.AudioFile); existing != "" {
		if _, err := os.Stat(existing); err == nil {
			logger.Info("audio already present, skipping download", logging.String("audio_file", existing))
			item.SetProgressComplete("Downloading", "Audio already on disk")
			return nil
		}
	}
	parsed, err := url.Parse(source)
	if err != nil || parsed.Scheme != "http" && parsed.Scheme != "https" {
		return services.Wrap(
			services.ErrValidation,
			"downloading",
			"parse source url",
			fmt.Sprintf("Source %q is not an http(s) URL", source),
			err,
		)
	}

	stagingDir := item.StagingRoot(d.cfg.Paths.StagingDir)
	if stagingDir == "" {
		return services.Wrap(services.ErrConfiguration, "downloading", "resolve staging dir", "staging_dir is not configured", nil)
	}
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "downloading", "create staging dir", "Could not create the episode staging directory", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return services.Wrap(services.ErrValidation, "downloading", "build request", "Could not build the download request", err)
	}
	req.Header.Set("User-Agent", d.cfg.Download.UserAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransient, "downloading", "fetch audio", "Episode download failed; the host may be unreachable", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		marker := services.ErrExternalTool
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			marker = services.ErrTransient
		}
		return services.Wrap(
			marker,
			"downloading",
			"fetch audio",
			fmt.Sprintf("Download returned HTTP %d", resp.StatusCode),
			nil,
		)
	}

	destination := filepath.Join(stagingDir, fileNameFor(item, parsed, resp.Header.Get("Content-Disposition")))
	written, err := d.streamToFile(ctx, item, resp, destination)
	if err != nil {
		os.Remove(destination)
		return err
	}

	item.AudioFile = destination
	item.ProgressBytesCopied = written
	item.SetProgressComplete("Downloading", fmt.Sprintf("Downloaded %s", formatBytes(written)))
	logger.Info("download complete",
		logging.String("audio_file", filepath.Base(destination)),
		logging.Int64("bytes", written),
	)
	if d.notifier != nil {
		if err := d.notifier.Publish(ctx, notifications.EventDownloadCompleted, notifications.Payload{
			"episode": item.EpisodeTitle,
			"size":    formatBytes(written),
		}); err != nil {
			logger.Debug("download notification failed", logging.Error(err))
		}
	}
	return nil
}

// streamToFile copies the response body in small chunks, persisting byte
// progress at a coarse interval so `podsweep show` has live numbers.
func (d *Downloader) streamToFile(ctx context.Context, item *queue.Item, resp *http.Response, destination string) (int64, error) {
	out, err := os.Create(destination)
	if err != nil {
		return 0, services.Wrap(services.ErrConfiguration, "downloading", "create file", "Could not create the staging file", err)
	}
	defer out.Close()

	item.ProgressTotalBytes = resp.ContentLength
	var written int64
	lastFlush := time.Now()
	buffer := make([]byte, copyChunkBytes)
	for {
		if err := ctx.Err(); err != nil {
			return written, services.Wrap(services.ErrTransient, "downloading", "copy audio", "Download cancelled", err)
		}
		n, readErr := resp.Body.Read(buffer)
		if n > 0 {
			if _, writeErr := out.Write(buffer[:n]); writeErr != nil {
				return written, services.Wrap(services.ErrConfiguration, "downloading", "write file", "Writing the staging file failed; check disk space", writeErr)
			}
			written += int64(n)
			if time.Since(lastFlush) >= progressInterval {
				lastFlush = time.Now()
				d.persistProgress(ctx, item, written, resp.ContentLength)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return written, services.Wrap(services.ErrTransient, "downloading", "copy audio", "Connection dropped mid-download", readErr)
		}
	}
	if err := out.Sync(); err != nil {
		return written, services.Wrap(services.ErrConfiguration, "downloading", "sync file", "Flushing the staging file failed", err)
	}
	return written, nil
}

func (d *Downloader) persistProgress(ctx context.Context, item *queue.Item, written, total int64) {
	item.ProgressBytesCopied = written
	percent := 0.0
	message := fmt.Sprintf("Downloaded %s", formatBytes(written))
	if total > 0 {
		percent = float64(written) / float64(total) * 100
		message = fmt.Sprintf("Downloaded %s of %s", formatBytes(written), formatBytes(total))
	}
	item.SetProgress("Downloading", message, percent)
	if d.store == nil {
		return
	}
	if err := d.store.UpdateProgress(ctx, item); err != nil && d.logger != nil {
		d.logger.Debug("progress persist failed", logging.Error(err))
	}
}

func (d *Downloader) HealthCheck(ctx context.Context) stage.Health {
	return stage.Healthy("download")
}

// fileNameFor picks the staged file name: Content-Disposition wins, then
// the URL path base, then a title-derived fallback.
func fileNameFor(item *queue.Item, parsed *url.URL, disposition string) string {
	if disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil {
			if name := textutil.SanitizeFileName(params["filename"]); name != "" {
				return name
			}
		}
	}
	if base := path.Base(parsed.Path); base != "" && base != "/" && base != "." {
		if name := textutil.SanitizeFileName(base); name != "" {
			if path.Ext(name) == "" {
				name += ".mp3"
			}
			return name
		}
	}
	if title := textutil.SanitizeFileName(item.EpisodeTitle); title != "" {
		return title + ".mp3"
	}
	return defaultFileName
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
