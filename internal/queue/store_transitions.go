package queue

import (
	"context"
	"fmt"
	"strings"
	"time"
)

func rollbackCaseClause() (string, []any) {
	transitions := processingRollbackTransitions()
	var sb strings.Builder
	args := make([]any, 0, len(transitions)*2)
	sb.WriteString("CASE status")
	for _, tr := range transitions {
		sb.WriteString(" WHEN ? THEN ?")
		args = append(args, tr.from, tr.to)
	}
	sb.WriteString(" ELSE status END")
	return sb.String(), args
}

// ResetStuckProcessing resets items in processing states back to the start of their current stage.
func (s *Store) ResetStuckProcessing(ctx context.Context) (int64, error) {
	caseClause, caseArgs := rollbackCaseClause()
	transitions := processingRollbackTransitions()
	statusArgs := make([]any, 0, len(transitions))
	for _, tr := range transitions {
		statusArgs = append(statusArgs, tr.from)
	}

	query := `UPDATE queue_items
         SET status = ` + caseClause + `,
             progress_stage = 'Reset from stuck processing',
             progress_percent = 0, progress_message = NULL, last_heartbeat = NULL, updated_at = ?
         WHERE status IN (` + makePlaceholders(len(statusArgs)) + `)`

	args := make([]any, 0, len(caseArgs)+1+len(statusArgs))
	args = append(args, caseArgs...)
	args = append(args, time.Now().UTC().Format(time.RFC3339Nano))
	args = append(args, statusArgs...)

	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("reset stuck items: %w", err)
	}
	return res.RowsAffected()
}

// UpdateHeartbeat updates the last heartbeat timestamp for an in-flight item.
func (s *Store) UpdateHeartbeat(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE queue_items SET last_heartbeat = ?, updated_at = ? WHERE id = ?`,
		now.Format(time.RFC3339Nano),
		now.Format(time.RFC3339Nano),
		id,
	); err != nil {
		return fmt.Errorf("update heartbeat: %w", err)
	}
	return nil
}

// ReclaimStaleProcessing returns items stuck in processing back to the start of
// their current stage when heartbeats expire. When statuses are provided, only
// items in those processing states are considered; otherwise all processing
// states are eligible.
func (s *Store) ReclaimStaleProcessing(ctx context.Context, cutoff time.Time, statuses ...Status) (int64, error) {
	caseClause, caseArgs := rollbackCaseClause()

	var statusArgs []any
	if len(statuses) == 0 {
		transitions := processingRollbackTransitions()
		statusArgs = make([]any, 0, len(transitions))
		for _, tr := range transitions {
			statusArgs = append(statusArgs, tr.from)
		}
	} else {
		statusArgs = make([]any, 0, len(statuses))
		for _, status := range statuses {
			statusArgs = append(statusArgs, status)
		}
	}

	query := `UPDATE queue_items
        SET status = ` + caseClause + `,
            progress_stage = 'Reclaimed from stale processing',
            progress_percent = 0, progress_message = NULL, last_heartbeat = NULL, updated_at = ?
        WHERE status IN (` + makePlaceholders(len(statusArgs)) + `) AND last_heartbeat IS NOT NULL AND last_heartbeat < ?`

	args := make([]any, 0, len(caseArgs)+len(statusArgs)+2)
	args = append(args, caseArgs...)
	args = append(args, time.Now().UTC().Format(time.RFC3339Nano))
	args = append(args, statusArgs...)
	args = append(args, cutoff.UTC().Format(time.RFC3339Nano))

	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("reclaim stale items: %w", err)
	}
	return res.RowsAffected()
}

// RetryFailed moves failed and review items back into the workflow. Items that
// already hold a downloaded audio file resume at the downloaded state instead
// of refetching the source. Passing IDs restricts the retry to those items.
func (s *Store) RetryFailed(ctx context.Context, ids ...int64) (int64, error) {
	const retrySet = `UPDATE queue_items
        SET status = CASE WHEN audio_file IS NOT NULL AND audio_file != '' THEN ? ELSE ? END,
            progress_stage = 'Retry requested', progress_percent = 0,
            progress_message = NULL, error_message = NULL,
            needs_review = 0, review_reason = NULL, updated_at = ?`

	if len(ids) == 0 {
		res, err := s.execWithRetry(
			ctx,
			retrySet+` WHERE status IN (?, ?)`,
			StatusDownloaded,
			StatusPending,
			time.Now().UTC().Format(time.RFC3339Nano),
			StatusFailed,
			StatusReview,
		)
		if err != nil {
			return 0, fmt.Errorf("retry failed items: %w", err)
		}
		return res.RowsAffected()
	}

	placeholders := makePlaceholders(len(ids))
	args := make([]any, 0, len(ids)+5)
	args = append(args, StatusDownloaded, StatusPending, time.Now().UTC().Format(time.RFC3339Nano), StatusFailed, StatusReview)
	for _, id := range ids {
		args = append(args, id)
	}
	query := retrySet + ` WHERE status IN (?, ?) AND id IN (` + placeholders + `)`
	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("retry selected items: %w", err)
	}
	return res.RowsAffected()
}
