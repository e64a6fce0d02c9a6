package queue

import (
	"encoding/json"
	"strings"
)

// Metadata provides a minimal implementation of organizer.MetadataProvider.
type Metadata struct {
	TitleValue      string  `json:"title"`
	ShowValue       string  `json:"show"`
	LibraryPath     string  `json:"library_path"`
	FilenameValue   string  `json:"filename"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
	Language        string  `json:"language,omitempty"`
}

// MetadataFromJSON builds metadata from stored JSON, falling back to basic inference.
func MetadataFromJSON(data, fallbackTitle string) Metadata {
	meta := Metadata{TitleValue: fallbackTitle, FilenameValue: fallbackTitle}
	_ = json.Unmarshal([]byte(data), &meta)
	return meta
}

// NewBasicMetadata constructs a metadata record using the provided episode
// title and show name. Filenames are sanitized for filesystem safety.
func NewBasicMetadata(title, show string) Metadata {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Manual Import"
	}
	return Metadata{
		TitleValue:    title,
		ShowValue:     strings.TrimSpace(show),
		FilenameValue: sanitizeFilename(title),
	}
}

// GetLibraryPath resolves the destination directory inside the library root.
// Episodes with a show name are grouped into per-show directories.
func (m Metadata) GetLibraryPath(root, podcastsDir string) string {
	if m.LibraryPath != "" {
		return m.LibraryPath
	}
	base := root + "/" + podcastsDir
	if m.ShowValue != "" {
		if show := sanitizeFilename(m.ShowValue); show != "" {
			return base + "/" + show
		}
	}
	return base
}

func (m Metadata) GetFilename() string {
	if m.FilenameValue != "" {
		return m.FilenameValue
	}
	return m.TitleValue
}

func (m Metadata) Title() string { return m.TitleValue }

func (m Metadata) Show() string { return m.ShowValue }

func sanitizeFilename(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	replacer := strings.NewReplacer(
		"/", "-",
		"\\", "-",
		":", "-",
		"*", "-",
		"?", "",
		"\"", "",
		"<", "",
		">", "",
		"|", "",
		"\n", " ",
		"\t", " ",
	)
	cleaned := replacer.Replace(value)
	fields := strings.Fields(cleaned)
	if len(fields) == 0 {
		return ""
	}
	return strings.Join(fields, " ")
}
