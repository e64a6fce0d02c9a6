package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"podsweep/internal/queue"
)

var audioFileExtensions = map[string]struct{}{
	".mp3":  {},
	".m4a":  {},
	".aac":  {},
	".ogg":  {},
	".opus": {},
	".wav":  {},
	".flac": {},
}

func newAddCommand(ctx *commandContext) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "add <url|file>",
		Short: "Queue an episode URL or local audio file for ad removal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := strings.TrimSpace(args[0])
			if source == "" {
				return errors.New("source is required")
			}
			if isEpisodeURL(source) {
				return addEpisodeURL(ctx, cmd, title, source)
			}
			return addLocalFile(ctx, cmd, source)
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Episode title (defaults to the URL filename)")
	return cmd
}

func isEpisodeURL(source string) bool {
	parsed, err := url.Parse(source)
	if err != nil {
		return false
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
		return parsed.Host != ""
	default:
		return false
	}
}

func addEpisodeURL(ctx *commandContext, cmd *cobra.Command, title, source string) error {
	out := cmd.OutOrStdout()

	client, err := ctx.dialClient()
	if err == nil {
		defer client.Close()
		resp, err := client.AddEpisode(title, source)
		if err != nil {
			return err
		}
		if resp == nil {
			return errors.New("empty response from daemon")
		}
		if ctx.JSONMode() {
			return writeJSON(cmd, resp)
		}
		if !resp.Created {
			fmt.Fprintf(out, "Episode already queued as item #%d (%s)\n", resp.Item.ID, resp.Item.EpisodeTitle)
			return nil
		}
		fmt.Fprintf(out, "Queued episode as item #%d (%s)\n", resp.Item.ID, resp.Item.EpisodeTitle)
		return nil
	}

	cfg, cfgErr := ctx.ensureConfig()
	if cfgErr != nil {
		return cfgErr
	}
	store, storeErr := queue.Open(cfg)
	if storeErr != nil {
		return fmt.Errorf("daemon unreachable and queue database unavailable: %w", storeErr)
	}
	defer store.Close()

	title = strings.TrimSpace(title)
	if title == "" {
		parsed, err := url.Parse(source)
		if err != nil {
			return fmt.Errorf("invalid episode url %q", source)
		}
		title = filepath.Base(parsed.Path)
	}

	fingerprint := queue.EpisodeFingerprint(title, source)
	existing, err := store.FindByFingerprint(cmd.Context(), fingerprint)
	if err != nil {
		return fmt.Errorf("check for duplicate episode: %w", err)
	}
	if existing != nil && existing.IsInWorkflow() {
		if ctx.JSONMode() {
			return writeJSON(cmd, map[string]any{"id": existing.ID, "created": false})
		}
		fmt.Fprintf(out, "Episode already queued as item #%d (%s)\n", existing.ID, existing.EpisodeTitle)
		return nil
	}

	item, err := store.NewEpisode(cmd.Context(), title, source, fingerprint)
	if err != nil {
		return fmt.Errorf("enqueue episode: %w", err)
	}
	if ctx.JSONMode() {
		return writeJSON(cmd, map[string]any{"id": item.ID, "created": true})
	}
	fmt.Fprintf(out, "Queued episode as item #%d (%s)\n", item.ID, title)
	return nil
}

func addLocalFile(ctx *commandContext, cmd *cobra.Command, source string) error {
	absPath, err := filepath.Abs(source)
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

	out := cmd.OutOrStdout()

	client, err := ctx.dialClient()
	if err == nil {
		defer client.Close()
		resp, err := client.AddFile(absPath)
		if err != nil {
			return err
		}
		if resp == nil {
			return errors.New("empty response from daemon")
		}
		if ctx.JSONMode() {
			return writeJSON(cmd, resp)
		}
		fmt.Fprintf(out, "Queued local file as item #%d (%s)\n", resp.Item.ID, filepath.Base(absPath))
		return nil
	}

	cfg, cfgErr := ctx.ensureConfig()
	if cfgErr != nil {
		return cfgErr
	}
	store, storeErr := queue.Open(cfg)
	if storeErr != nil {
		return fmt.Errorf("daemon unreachable and queue database unavailable: %w", storeErr)
	}
	defer store.Close()

	item, err := store.NewLocalFile(cmd.Context(), absPath)
	if err != nil {
		return err
	}
	if ctx.JSONMode() {
		return writeJSON(cmd, map[string]any{"id": item.ID, "created": true})
	}
	fmt.Fprintf(out, "Queued local file as item #%d (%s)\n", item.ID, filepath.Base(absPath))
	return nil
}
