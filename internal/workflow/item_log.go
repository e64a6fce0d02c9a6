package workflow

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"podsweep/internal/config"
	"podsweep/internal/logging"
	"podsweep/internal/queue"
)

// ItemLogger manages dedicated per-episode log files so item processing output
// stays separate from the daemon log.
type ItemLogger struct {
	baseDir string
	cfg     *config.Config
}

// NewItemLogger creates a new item logger.
func NewItemLogger(cfg *config.Config) *ItemLogger {
	dir := ""
	if cfg != nil && cfg.Paths.LogDir != "" {
		dir = filepath.Join(cfg.Paths.LogDir, "items")
	}
	return &ItemLogger{baseDir: dir, cfg: cfg}
}

// Ensure prepares the log directory and file path for an item.
func (l *ItemLogger) Ensure(item *queue.Item) (string, bool, error) {
	if item == nil {
		return "", false, fmt.Errorf("queue item is nil")
	}
	if strings.TrimSpace(l.baseDir) == "" {
		return "", false, fmt.Errorf("item log directory not configured")
	}
	created := false
	if strings.TrimSpace(item.ItemLogPath) == "" {
		filename := l.filename(item)
		if filename == "" {
			filename = fmt.Sprintf("item-%d.log", item.ID)
		}
		item.ItemLogPath = filepath.Join(l.baseDir, filename)
		created = true
	}
	if err := os.MkdirAll(filepath.Dir(item.ItemLogPath), 0o755); err != nil {
		return "", false, fmt.Errorf("ensure item log directory: %w", err)
	}
	return item.ItemLogPath, created, nil
}

// CreateHandler builds a slog.Handler writing to the specified path.
func (l *ItemLogger) CreateHandler(path string) (slog.Handler, error) {
	level := "info"
	format := "json"
	if l.cfg != nil {
		if strings.TrimSpace(l.cfg.Logging.Level) != "" {
			level = l.cfg.Logging.Level
		}
		if strings.TrimSpace(l.cfg.Logging.Format) != "" {
			format = l.cfg.Logging.Format
		}
	}
	logger, err := logging.New(logging.Options{
		Level:            level,
		Format:           format,
		OutputPaths:      []string{path},
		ErrorOutputPaths: []string{path},
		Development:      false,
	})
	if err != nil {
		return nil, err
	}
	return logger.Handler(), nil
}

func (l *ItemLogger) filename(item *queue.Item) string {
	timestamp := time.Now().UTC().Format("20060102T150405")
	fingerprint := strings.TrimSpace(item.EpisodeFingerprint)
	if fingerprint == "" {
		fingerprint = fmt.Sprintf("item-%d", item.ID)
	}
	title := sanitizeSlug(item.EpisodeTitle)
	if title == "" {
		title = "untitled"
	}
	return fmt.Sprintf("%s-%s-%s.log", timestamp, fingerprint, title)
}

func sanitizeSlug(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	var builder strings.Builder
	builder.Grow(len(value))
	lastDash := false
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			builder.WriteRune(r)
			lastDash = false
		case r >= 'A' && r <= 'Z':
			builder.WriteRune(unicode.ToLower(r))
			lastDash = false
		case unicode.IsDigit(r):
			builder.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				builder.WriteByte('-')
				lastDash = true
			}
		}
	}
	slug := strings.Trim(builder.String(), "-")
	if slug == "" {
		return ""
	}
	return slug
}
