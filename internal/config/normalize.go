package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDownload()
	c.normalizeTranscriber()
	c.normalizeDiarizer()
	c.normalizeEmbedder()
	c.normalizeDetection()
	c.normalizeLLM()
	c.normalizeCut()
	c.normalizeOrganizer()
	c.normalizeNotifications()
	c.normalizeAPI()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.ReviewDir, err = expandPath(c.Paths.ReviewDir); err != nil {
		return fmt.Errorf("paths.review_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDownload() {
	c.Download.UserAgent = strings.TrimSpace(c.Download.UserAgent)
	if c.Download.UserAgent == "" {
		c.Download.UserAgent = defaultDownloadUserAgent
	}
	if c.Download.RequestTimeout <= 0 {
		c.Download.RequestTimeout = defaultDownloadTimeout
	}
}

func (c *Config) normalizeTranscriber() {
	// PODSWEEP_TRANSCRIBER_URL overrides the file value so containerized
	// deployments can point at a sidecar without editing config.
	if value, ok := os.LookupEnv("PODSWEEP_TRANSCRIBER_URL"); ok && strings.TrimSpace(value) != "" {
		c.Transcriber.URL = value
	}
	c.Transcriber.URL = strings.TrimRight(strings.TrimSpace(c.Transcriber.URL), "/")
	if c.Transcriber.URL == "" {
		c.Transcriber.URL = defaultTranscriberURL
	}
	if c.Transcriber.RequestTimeout <= 0 {
		c.Transcriber.RequestTimeout = defaultTranscriberTimeout
	}
	c.Transcriber.Language = strings.ToLower(strings.TrimSpace(c.Transcriber.Language))
}

func (c *Config) normalizeDiarizer() {
	c.Diarizer.URL = strings.TrimRight(strings.TrimSpace(c.Diarizer.URL), "/")
	if c.Diarizer.URL == "" {
		c.Diarizer.URL = defaultDiarizerURL
	}
	if c.Diarizer.RequestTimeout <= 0 {
		c.Diarizer.RequestTimeout = defaultDiarizerTimeout
	}
}

func (c *Config) normalizeEmbedder() {
	c.Embedder.Backend = strings.ToLower(strings.TrimSpace(c.Embedder.Backend))
	if c.Embedder.Backend == "" {
		c.Embedder.Backend = defaultEmbedderBackend
	}
	c.Embedder.URL = strings.TrimRight(strings.TrimSpace(c.Embedder.URL), "/")
	if c.Embedder.RequestTimeout <= 0 {
		c.Embedder.RequestTimeout = defaultEmbedderTimeout
	}
}

func (c *Config) normalizeDetection() {
	c.Detection.Mode = strings.ToLower(strings.TrimSpace(c.Detection.Mode))
	if c.Detection.Mode == "" {
		c.Detection.Mode = defaultDetectionMode
	}
	if c.Detection.MinConfidence <= 0 {
		c.Detection.MinConfidence = 0.35
	}
	if c.Detection.ClassifierThreshold <= 0 {
		c.Detection.ClassifierThreshold = 0.4
	}
	if c.Detection.MergeGapSeconds <= 0 {
		c.Detection.MergeGapSeconds = 15
	}
	if c.Detection.MinAdSeconds <= 0 {
		c.Detection.MinAdSeconds = 10
	}
	if c.Detection.ChangepointPenalty <= 0 {
		c.Detection.ChangepointPenalty = 0.3
	}
	if c.Detection.ChangepointPenaltySingle <= 0 {
		c.Detection.ChangepointPenaltySingle = 0.5
	}
	if c.Detection.SampleRate <= 0 {
		c.Detection.SampleRate = defaultDetectionSampleRate
	}
}

func (c *Config) normalizeLLM() {
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		// Honour the conventional Ollama environment variable when the file
		// leaves the endpoint unset.
		if value, ok := os.LookupEnv("OLLAMA_HOST"); ok && strings.TrimSpace(value) != "" {
			c.LLM.BaseURL = strings.TrimSpace(value)
		}
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultOllamaBaseURL
	}
	if !strings.Contains(c.LLM.BaseURL, "://") {
		c.LLM.BaseURL = "http://" + c.LLM.BaseURL
	}
	c.LLM.BaseURL = strings.TrimRight(c.LLM.BaseURL, "/")
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultOllamaModel
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
	if c.LLM.VerifyLow <= 0 {
		c.LLM.VerifyLow = 0.35
	}
	if c.LLM.VerifyHigh <= 0 {
		c.LLM.VerifyHigh = 0.65
	}
}

func (c *Config) normalizeCut() {
	if c.Cut.BufferSeconds <= 0 {
		c.Cut.BufferSeconds = 0.5
	}
	if c.Cut.MP3Quality < 0 {
		c.Cut.MP3Quality = defaultCutMP3Quality
	}
	if c.Cut.EncodeTimeout <= 0 {
		c.Cut.EncodeTimeout = defaultCutEncodeTimeout
	}
	if c.Cut.ProbeTimeout <= 0 {
		c.Cut.ProbeTimeout = defaultCutProbeTimeout
	}
}

func (c *Config) normalizeOrganizer() {
	c.Organizer.PodcastsDir = strings.TrimSpace(c.Organizer.PodcastsDir)
	if c.Organizer.PodcastsDir == "" {
		c.Organizer.PodcastsDir = defaultPodcastsDir
	}
}

func (c *Config) normalizeNotifications() {
	// PODSWEEP_NTFY_TOPIC overrides the file value so topics stay out of
	// shared config files.
	if value, ok := os.LookupEnv("PODSWEEP_NTFY_TOPIC"); ok && strings.TrimSpace(value) != "" {
		c.Notifications.NtfyTopic = value
	}
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func (c *Config) normalizeAPI() {
	c.API.Bind = strings.TrimSpace(c.API.Bind)
	if c.API.Bind == "" {
		c.API.Bind = defaultAPIBind
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
