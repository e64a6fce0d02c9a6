// Package api defines wire-format types and converters for the IPC and HTTP
// API layer. It translates internal queue models into transport-friendly DTOs
// so external consumers never couple to internal types.
//
// # Key Types
//
// QueueItem: transport representation of a queue entry with progress,
// detection results, and produced file paths.
//
// WorkflowStatus: daemon running state, queue stats, stage health, and last item.
//
// DaemonStatus: aggregated runtime information including dependencies.
//
// # Converters
//
// FromQueueItem: queue.Item -> QueueItem with progress defaults and raw
// detection/metadata JSON passed through.
//
// FromStatusSummary: workflow.StatusSummary -> WorkflowStatus.
//
// StageHealthSlice: deterministic ordering of stage health map.
//
// # Design Notes
//
// DTOs use camelCase JSON tags for JavaScript/TypeScript consumers. Internal
// enums (queue.Status, queue.ProcessingLane) are exposed as lowercase strings.
// Timestamps use RFC3339 with milliseconds. Detection reports and metadata are
// passed through as json.RawMessage to avoid double-encoding.
package api
