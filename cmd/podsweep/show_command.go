package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"podsweep/internal/api"
	"podsweep/internal/detections"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <itemID>",
		Short: "Show details for a queue item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parsePositiveIDs(args)
			if err != nil {
				return err
			}
			id := ids[0]

			return ctx.withQueue(func(q queueAPI) error {
				item, err := q.Describe(cmd.Context(), id)
				if err != nil {
					return err
				}
				if item == nil {
					return fmt.Errorf("item %d not found", id)
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, item)
				}
				printQueueItemDetail(cmd, item)
				return nil
			})
		},
	}
}

func printQueueItemDetail(cmd *cobra.Command, item *api.QueueItem) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Item #%d\n", item.ID)
	printDetailLine(out, "Title", item.EpisodeTitle)
	printDetailLine(out, "Show", item.ShowTitle)
	printDetailLine(out, "Source", item.Source)
	printDetailLine(out, "Status", formatStatusLabel(item.Status))
	printDetailLine(out, "Lane", item.ProcessingLane)
	if stage := strings.TrimSpace(item.Progress.Stage); stage != "" {
		detail := fmt.Sprintf("%s (%.0f%%)", stage, item.Progress.Percent)
		if message := strings.TrimSpace(item.Progress.Message); message != "" {
			detail += " " + message
		}
		printDetailLine(out, "Progress", detail)
	}
	printDetailLine(out, "Created", formatDisplayTime(item.CreatedAt))
	printDetailLine(out, "Updated", formatDisplayTime(item.UpdatedAt))
	printDetailLine(out, "Fingerprint", item.EpisodeFingerprint)
	printDetailLine(out, "Audio file", item.AudioFile)
	printDetailLine(out, "Transcript", item.TranscriptFile)
	printDetailLine(out, "Cleaned file", item.CleanedFile)
	printDetailLine(out, "Final file", item.FinalFile)
	printDetailLine(out, "Item log", item.ItemLogPath)
	printDetailLine(out, "Detection mode", item.DetectionMode)
	if item.NeedsReview {
		printDetailLine(out, "Review", item.ReviewReason)
	}
	printDetailLine(out, "Error", item.ErrorMessage)
	printDetectionSummary(out, item.Detections)
}

func printDetailLine(out io.Writer, label, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	fmt.Fprintf(out, "  %-16s %s\n", label+":", value)
}

func printDetectionSummary(out io.Writer, raw json.RawMessage) {
	if len(raw) == 0 {
		return
	}
	report, err := detections.Parse(string(raw))
	if err != nil || len(report.Segments) == 0 {
		return
	}
	fmt.Fprintf(out, "  %-16s %d segments, %.0fs of ads (%.1f%% of episode)\n",
		"Detections:", len(report.Segments), report.AdSeconds(), report.Coverage()*100)
	for _, seg := range report.Segments {
		fmt.Fprintf(out, "    %s - %s  confidence %.2f  %s\n",
			formatTimestamp(seg.Start), formatTimestamp(seg.End), seg.Confidence, seg.Method)
	}
}

func formatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
