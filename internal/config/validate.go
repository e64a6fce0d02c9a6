package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateTranscriber(); err != nil {
		return err
	}
	if err := c.validateDiarizer(); err != nil {
		return err
	}
	if err := c.validateEmbedder(); err != nil {
		return err
	}
	if err := c.validateDetection(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateCut(); err != nil {
		return err
	}
	if err := c.validateOrganizer(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if err := ensurePositiveMap(map[string]int{
		"workflow.queue_poll_interval":  c.Workflow.QueuePollInterval,
		"workflow.error_retry_interval": c.Workflow.ErrorRetryInterval,
		"download.request_timeout":      c.Download.RequestTimeout,
		"notifications.request_timeout": c.Notifications.RequestTimeout,
	}); err != nil {
		return err
	}
	if c.Workflow.HeartbeatInterval <= 0 {
		return errors.New("workflow.heartbeat_interval must be positive")
	}
	if c.Workflow.HeartbeatTimeout <= 0 {
		return errors.New("workflow.heartbeat_timeout must be positive")
	}
	if c.Workflow.HeartbeatTimeout <= c.Workflow.HeartbeatInterval {
		return errors.New("workflow.heartbeat_timeout must be greater than workflow.heartbeat_interval")
	}
	return nil
}

func (c *Config) validateTranscriber() error {
	if strings.TrimSpace(c.Transcriber.URL) == "" {
		return errors.New("transcriber.url must be set")
	}
	if c.Transcriber.RequestTimeout <= 0 {
		return errors.New("transcriber.request_timeout must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateDiarizer() error {
	if !c.Diarizer.Enabled {
		return nil
	}
	if strings.TrimSpace(c.Diarizer.URL) == "" {
		return errors.New("diarizer.url must be set when diarizer.enabled is true")
	}
	if c.Diarizer.RequestTimeout <= 0 {
		return errors.New("diarizer.request_timeout must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateEmbedder() error {
	switch c.Embedder.Backend {
	case "http", "lexical":
	default:
		return fmt.Errorf("embedder.backend must be \"http\" or \"lexical\", got %q", c.Embedder.Backend)
	}
	if c.Embedder.Enabled && c.Embedder.Backend == "http" && strings.TrimSpace(c.Embedder.URL) == "" {
		return errors.New("embedder.url must be set when embedder.backend is \"http\"")
	}
	return nil
}

func (c *Config) validateDetection() error {
	cfg := c.Detection
	switch cfg.Mode {
	case "fast", "balanced", "accurate":
	default:
		return fmt.Errorf("detection.mode must be one of fast, balanced, accurate; got %q", cfg.Mode)
	}
	if cfg.MinConfidence <= 0 || cfg.MinConfidence >= 1 {
		return errors.New("detection.min_confidence must be between 0 and 1")
	}
	if cfg.ClassifierThreshold <= 0 || cfg.ClassifierThreshold >= 1 {
		return errors.New("detection.classifier_threshold must be between 0 and 1")
	}
	if cfg.MergeGapSeconds <= 0 {
		return errors.New("detection.merge_gap_seconds must be positive")
	}
	if cfg.MinAdSeconds <= 0 {
		return errors.New("detection.min_ad_seconds must be positive")
	}
	if cfg.ChangepointPenalty <= 0 {
		return errors.New("detection.changepoint_penalty must be positive")
	}
	if cfg.ChangepointPenaltySingle <= 0 {
		return errors.New("detection.changepoint_penalty_single must be positive")
	}
	if cfg.SampleRate < 8000 {
		return fmt.Errorf("detection.sample_rate must be at least 8000, got %d", cfg.SampleRate)
	}
	return nil
}

func (c *Config) validateLLM() error {
	if c.LLM.Enabled {
		if strings.TrimSpace(c.LLM.BaseURL) == "" {
			return errors.New("llm.base_url must be set when llm.enabled is true (or set OLLAMA_HOST)")
		}
		if strings.TrimSpace(c.LLM.Model) == "" {
			return errors.New("llm.model must be set when llm.enabled is true")
		}
	}
	if c.LLM.TimeoutSeconds <= 0 {
		return errors.New("llm.timeout_seconds must be positive")
	}
	if c.LLM.VerifyLow <= 0 || c.LLM.VerifyLow >= 1 {
		return errors.New("llm.verify_low must be between 0 and 1")
	}
	if c.LLM.VerifyHigh <= 0 || c.LLM.VerifyHigh >= 1 {
		return errors.New("llm.verify_high must be between 0 and 1")
	}
	if c.LLM.VerifyHigh <= c.LLM.VerifyLow {
		return errors.New("llm.verify_high must be greater than llm.verify_low")
	}
	return nil
}

func (c *Config) validateCut() error {
	if c.Cut.BufferSeconds < 0 {
		return errors.New("cut.buffer_seconds must be >= 0")
	}
	if c.Cut.MP3Quality < 0 || c.Cut.MP3Quality > 9 {
		return errors.New("cut.mp3_quality must be between 0 and 9")
	}
	if c.Cut.EncodeTimeout <= 0 {
		return errors.New("cut.encode_timeout must be positive (seconds)")
	}
	if c.Cut.ProbeTimeout <= 0 {
		return errors.New("cut.probe_timeout must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateOrganizer() error {
	if c.Organizer.PodcastsDir == "" {
		return errors.New("organizer.podcasts_dir must be set")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive (seconds)")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
