package api

import "encoding/json"

// MetadataField extracts a string field from metadata JSON.
func MetadataField(metadataJSON, field, fallback string) string {
	if metadataJSON == "" {
		return fallback
	}
	var metadata map[string]any
	if err := json.Unmarshal([]byte(metadataJSON), &metadata); err != nil {
		return fallback
	}
	value, ok := metadata[field].(string)
	if !ok || value == "" {
		return fallback
	}
	return value
}

// MetadataTitle extracts the episode title from metadata JSON.
func MetadataTitle(metadataJSON string) string {
	return MetadataField(metadataJSON, "title", "Unknown")
}

// MetadataShow extracts the show name from metadata JSON.
func MetadataShow(metadataJSON string) string {
	return MetadataField(metadataJSON, "show", "")
}

// MetadataFilename extracts the target filename from metadata JSON.
func MetadataFilename(metadataJSON string) string {
	return MetadataField(metadataJSON, "filename", "")
}
