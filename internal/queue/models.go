package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a queue item.
type Status string

const (
	StatusPending      Status = "pending"
	StatusDownloading  Status = "downloading"
	StatusDownloaded   Status = "downloaded"
	StatusTranscribing Status = "transcribing"
	StatusTranscribed  Status = "transcribed"
	StatusDetecting    Status = "detecting"
	StatusDetected     Status = "detected"
	StatusCutting      Status = "cutting"
	StatusCut          Status = "cut"
	StatusOrganizing   Status = "organizing"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
	StatusReview       Status = "review"
)

// UserStopReason is the review reason set when a user explicitly stops an item.
const UserStopReason = "Stop requested by user"

// DaemonStopReason is the error message set when items are failed due to daemon shutdown.
const DaemonStopReason = "Daemon stopped"

var allStatuses = []Status{
	StatusPending,
	StatusDownloading,
	StatusDownloaded,
	StatusTranscribing,
	StatusTranscribed,
	StatusDetecting,
	StatusDetected,
	StatusCutting,
	StatusCut,
	StatusOrganizing,
	StatusCompleted,
	StatusFailed,
	StatusReview,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusDownloading:  {},
	StatusTranscribing: {},
	StatusDetecting:    {},
	StatusCutting:      {},
	StatusOrganizing:   {},
}

type statusTransition struct {
	from Status
	to   Status
}

var stageRollbackTransitions = []statusTransition{
	{from: StatusDownloading, to: StatusPending},
	{from: StatusTranscribing, to: StatusDownloaded},
	{from: StatusDetecting, to: StatusTranscribed},
	{from: StatusCutting, to: StatusDetected},
	{from: StatusOrganizing, to: StatusCut},
}

func processingRollbackTransitions() []statusTransition {
	return stageRollbackTransitions
}

// DatabaseHealth captures diagnostic information about the queue database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	SchemaVersion    string
	TableExists      bool
	ColumnsPresent   []string
	MissingColumns   []string
	IntegrityCheck   bool
	TotalItems       int
	Error            string
}

// HealthSummary describes aggregated queue counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Failed     int
	Review     int
	Completed  int
}

// Item represents a queue item persisted in SQLite. Each item tracks one
// podcast episode from source fetch through ad removal and library placement.
type Item struct {
	ID                  int64
	Source              string
	EpisodeTitle        string
	ShowTitle           string
	Status              Status
	AudioFile           string
	TranscriptFile      string
	DetectionsJSON      string
	CleanedFile         string
	FinalFile           string
	ItemLogPath         string
	ErrorMessage        string
	CreatedAt           time.Time
	UpdatedAt           time.Time
	ProgressStage       string
	ProgressPercent     float64
	ProgressMessage     string
	ProgressBytesCopied int64 // Only set during downloading
	ProgressTotalBytes  int64 // Only set during downloading
	DetectionMode       string
	EpisodeFingerprint  string
	MetadataJSON        string
	LastHeartbeat       *time.Time
	NeedsReview         bool
	ReviewReason        string
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsProcessing returns true when the status reflects an in-flight operation.
func (i Item) IsProcessing() bool {
	_, ok := processingStatuses[i.Status]
	return ok
}

// IsProcessingStatus reports whether a status reflects an in-flight operation.
func IsProcessingStatus(status Status) bool {
	_, ok := processingStatuses[status]
	return ok
}

// IsUserStopReason reports whether a review reason represents a user-initiated stop.
func IsUserStopReason(reason string) bool {
	return strings.EqualFold(strings.TrimSpace(reason), UserStopReason)
}

// InitProgress resets progress fields for a new stage.
// If ProgressStage is currently empty, it is set to the provided stage value;
// otherwise the existing stage is preserved (to support resume scenarios).
// ProgressMessage is set to message, ProgressPercent is reset to 0,
// and ErrorMessage is cleared.
func (i *Item) InitProgress(stage, message string) {
	if i.ProgressStage == "" {
		i.ProgressStage = stage
	}
	i.ProgressMessage = message
	i.ProgressPercent = 0
	i.ErrorMessage = ""
}

// SetProgress updates all three progress fields atomically.
// Use this instead of setting ProgressStage, ProgressPercent, and ProgressMessage individually.
func (i *Item) SetProgress(stage, message string, percent float64) {
	i.ProgressStage = stage
	i.ProgressMessage = message
	i.ProgressPercent = percent
}

// SetProgressComplete sets progress to 100% with the given stage and message.
// Convenience method for stage completion.
func (i *Item) SetProgressComplete(stage, message string) {
	i.SetProgress(stage, message, 100)
}

// SetFailed marks the item as failed with the given error message.
// Clears heartbeat and sets progress fields appropriately.
func (i *Item) SetFailed(message string) {
	i.Status = StatusFailed
	i.ErrorMessage = message
	i.ProgressPercent = 0
	i.ProgressMessage = message
	i.LastHeartbeat = nil
	i.ProgressStage = "Failed"
}

// SetReview parks the item for manual intervention with the given reason.
func (i *Item) SetReview(reason string) {
	i.Status = StatusReview
	i.NeedsReview = true
	i.ReviewReason = reason
	i.ProgressPercent = 0
	i.ProgressMessage = reason
	i.LastHeartbeat = nil
	i.ProgressStage = "Review"
}

// IsInWorkflow returns true when an item is actively progressing (or queued to
// progress) through stages and should not be re-enqueued simply because the
// same episode was submitted again.
func (i Item) IsInWorkflow() bool {
	if i.IsProcessing() {
		return true
	}
	switch i.Status {
	case StatusPending,
		StatusDownloaded,
		StatusTranscribed,
		StatusDetected,
		StatusCut,
		StatusOrganizing,
		StatusCompleted:
		return true
	default:
		return false
	}
}

// StageKey returns the normalized stage identifier used in API/CLI presentation.
func (s Status) StageKey() string {
	switch s {
	case "":
		return ""
	case StatusPending:
		return "planned"
	case StatusCompleted:
		return "final"
	case StatusDownloading,
		StatusDownloaded,
		StatusTranscribing,
		StatusTranscribed,
		StatusDetecting,
		StatusDetected,
		StatusCutting,
		StatusCut,
		StatusOrganizing,
		StatusFailed,
		StatusReview:
		return string(s)
	default:
		return ""
	}
}

// ProcessingLane partitions workflow into the network fetch lane and the local
// processing lane so daemon work can overlap.
type ProcessingLane string

const (
	LaneFetch   ProcessingLane = "fetch"
	LaneProcess ProcessingLane = "process"
)

// LaneForItem maps a queue item to its processing lane for observability purposes.
func LaneForItem(item *Item) ProcessingLane {
	if item == nil {
		return LaneFetch
	}
	switch item.Status {
	case StatusPending, StatusDownloading:
		return LaneFetch
	case StatusDownloaded, StatusTranscribing, StatusTranscribed, StatusDetecting, StatusDetected, StatusCutting, StatusCut, StatusOrganizing, StatusCompleted:
		return LaneProcess
	case StatusFailed, StatusReview:
		if item.AudioFile != "" {
			return LaneProcess
		}
		return LaneFetch
	default:
		return LaneFetch
	}
}
