package api

import "encoding/json"

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// QueueItem describes a queue entry in a transport-friendly format.
type QueueItem struct {
	ID                 int64           `json:"id"`
	EpisodeTitle       string          `json:"episodeTitle"`
	ShowTitle          string          `json:"showTitle,omitempty"`
	Source             string          `json:"source"`
	Status             string          `json:"status"`
	ProcessingLane     string          `json:"processingLane"`
	Progress           QueueProgress   `json:"progress"`
	ErrorMessage       string          `json:"errorMessage"`
	CreatedAt          string          `json:"createdAt,omitempty"`
	UpdatedAt          string          `json:"updatedAt,omitempty"`
	EpisodeFingerprint string          `json:"episodeFingerprint,omitempty"`
	AudioFile          string          `json:"audioFile,omitempty"`
	TranscriptFile     string          `json:"transcriptFile,omitempty"`
	CleanedFile        string          `json:"cleanedFile,omitempty"`
	FinalFile          string          `json:"finalFile,omitempty"`
	ItemLogPath        string          `json:"itemLogPath,omitempty"`
	DetectionMode      string          `json:"detectionMode,omitempty"`
	NeedsReview        bool            `json:"needsReview"`
	ReviewReason       string          `json:"reviewReason,omitempty"`
	Detections         json.RawMessage `json:"detections,omitempty"`
	Metadata           json.RawMessage `json:"metadata,omitempty"`
}

// QueueProgress captures stage progress information for a queue entry.
type QueueProgress struct {
	Stage   string  `json:"stage"`
	Percent float64 `json:"percent"`
	Message string  `json:"message"`
}

// WorkflowStatus summarizes workflow execution state.
type WorkflowStatus struct {
	Running     bool           `json:"running"`
	QueueStats  map[string]int `json:"queueStats"`
	LastError   string         `json:"lastError,omitempty"`
	LastItem    *QueueItem     `json:"lastItem,omitempty"`
	StageHealth []StageHealth  `json:"stageHealth"`
}

// StageHealth mirrors readiness reporting for workflow stages.
type StageHealth struct {
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}

// DependencyStatus captures availability of an external dependency.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
	Severity    string `json:"severity,omitempty"`
}

// StatusLine is a labeled severity/detail pair for status rendering.
type StatusLine struct {
	Label    string `json:"label"`
	Severity string `json:"severity"`
	Detail   string `json:"detail"`
}

// DependencySummary aggregates dependency readiness counts.
type DependencySummary struct {
	Total           int    `json:"total"`
	Available       int    `json:"available"`
	MissingRequired int    `json:"missingRequired"`
	MissingOptional int    `json:"missingOptional"`
	Severity        string `json:"severity"`
	Detail          string `json:"detail"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool               `json:"running"`
	PID          int                `json:"pid"`
	QueueDBPath  string             `json:"queueDbPath"`
	LockFilePath string             `json:"lockFilePath"`
	Workflow     WorkflowStatus     `json:"workflow"`
	Dependencies []DependencyStatus `json:"dependencies"`
}

// QueueStatsResponse provides a normalized queue stats payload.
type QueueStatsResponse struct {
	Counts map[string]int `json:"counts"`
}

// QueueListResponse wraps a collection of queue items for API responses.
type QueueListResponse struct {
	Items []QueueItem `json:"items"`
}

// QueueItemResponse wraps a single queue item.
type QueueItemResponse struct {
	Item QueueItem `json:"item"`
}

// EnqueueEpisodeRequest submits a remote episode for processing.
type EnqueueEpisodeRequest struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// EnqueueEpisodeResponse reports the enqueued (or deduplicated) item.
type EnqueueEpisodeResponse struct {
	Item    QueueItem `json:"item"`
	Created bool      `json:"created"`
}

// HealthResponse combines stage readiness and external dependency availability.
type HealthResponse struct {
	Stages       []StageHealth      `json:"stages"`
	Dependencies []DependencyStatus `json:"dependencies"`
}
