package queue

import (
	"database/sql"
	"errors"
	"time"
)

const itemColumns = "id, source, episode_title, show_title, status, audio_file, transcript_file, detections_json, cleaned_file, final_file, item_log_path, error_message, created_at, updated_at, progress_stage, progress_percent, progress_message, progress_bytes_copied, progress_total_bytes, detection_mode, episode_fingerprint, metadata_json, last_heartbeat, needs_review, review_reason"

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		id               int64
		source           sql.NullString
		episodeTitle     sql.NullString
		showTitle        sql.NullString
		statusStr        string
		audioFile        sql.NullString
		transcriptFile   sql.NullString
		detectionsJSON   sql.NullString
		cleanedFile      sql.NullString
		finalFile        sql.NullString
		itemLogPath      sql.NullString
		errorMessage     sql.NullString
		createdRaw       sql.NullString
		updatedRaw       sql.NullString
		progressStage    sql.NullString
		progressPercent  sql.NullFloat64
		progressMessage  sql.NullString
		progressBytes    sql.NullInt64
		progressTotal    sql.NullInt64
		detectionMode    sql.NullString
		fingerprint      sql.NullString
		metadata         sql.NullString
		lastHeartbeatRaw sql.NullString
		needsReview      sql.NullInt64
		reviewReason     sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&source,
		&episodeTitle,
		&showTitle,
		&statusStr,
		&audioFile,
		&transcriptFile,
		&detectionsJSON,
		&cleanedFile,
		&finalFile,
		&itemLogPath,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
		&progressStage,
		&progressPercent,
		&progressMessage,
		&progressBytes,
		&progressTotal,
		&detectionMode,
		&fingerprint,
		&metadata,
		&lastHeartbeatRaw,
		&needsReview,
		&reviewReason,
	); err != nil {
		return nil, err
	}

	item := &Item{
		ID:                  id,
		Source:              source.String,
		EpisodeTitle:        episodeTitle.String,
		ShowTitle:           showTitle.String,
		Status:              Status(statusStr),
		AudioFile:           audioFile.String,
		TranscriptFile:      transcriptFile.String,
		DetectionsJSON:      detectionsJSON.String,
		CleanedFile:         cleanedFile.String,
		FinalFile:           finalFile.String,
		ItemLogPath:         itemLogPath.String,
		ErrorMessage:        errorMessage.String,
		ProgressStage:       progressStage.String,
		ProgressPercent:     progressPercent.Float64,
		ProgressMessage:     progressMessage.String,
		ProgressBytesCopied: progressBytes.Int64,
		ProgressTotalBytes:  progressTotal.Int64,
		DetectionMode:       detectionMode.String,
		EpisodeFingerprint:  fingerprint.String,
		MetadataJSON:        metadata.String,
	}
	if needsReview.Valid {
		item.NeedsReview = needsReview.Int64 != 0
	}
	item.ReviewReason = reviewReason.String

	if created, err := parseTimeString(createdRaw.String); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		item.UpdatedAt = updated
	}
	if lastHeartbeatRaw.Valid {
		if heartbeat, err := parseTimeString(lastHeartbeatRaw.String); err == nil {
			item.LastHeartbeat = &heartbeat
		}
	}
	return item, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	v := value.UTC().Format(time.RFC3339Nano)
	return v
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
