package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StagingDir string `toml:"staging_dir"`
	LibraryDir string `toml:"library_dir"`
	LogDir     string `toml:"log_dir"`
	ReviewDir  string `toml:"review_dir"`
}

// Workflow contains configuration for daemon timing and intervals.
type Workflow struct {
	QueuePollInterval  int `toml:"queue_poll_interval"`
	ErrorRetryInterval int `toml:"error_retry_interval"`
	HeartbeatInterval  int `toml:"heartbeat_interval"`
	HeartbeatTimeout   int `toml:"heartbeat_timeout"`
}

// Download contains configuration for episode audio retrieval.
type Download struct {
	UserAgent      string `toml:"user_agent"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Transcriber contains configuration for the speech-to-text service.
type Transcriber struct {
	URL            string `toml:"url"`
	RequestTimeout int    `toml:"request_timeout"`
	Language       string `toml:"language"`
}

// Diarizer contains configuration for the optional speaker diarization service.
type Diarizer struct {
	Enabled        bool   `toml:"enabled"`
	URL            string `toml:"url"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Embedder contains configuration for sentence embedding lookups used by the
// text signal extractor and the segment classifier.
type Embedder struct {
	Enabled bool `toml:"enabled"`
	// Backend selects the embedding source: "http" calls the configured URL,
	// "lexical" derives vectors from token statistics without a service.
	Backend        string `toml:"backend"`
	URL            string `toml:"url"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Detection contains tunables for the ad detection engine.
type Detection struct {
	// Mode is one of "fast", "balanced", or "accurate".
	Mode string `toml:"mode"`
	// MinConfidence is the confidence below which candidate segments are
	// discarded. Default: 0.35
	MinConfidence float64 `toml:"min_confidence"`
	// ClassifierThreshold is the text classifier score above which an interval
	// counts as ad-like. Default: 0.4
	ClassifierThreshold float64 `toml:"classifier_threshold"`
	// MergeGapSeconds merges adjacent ad segments separated by a shorter gap.
	// Default: 15
	MergeGapSeconds float64 `toml:"merge_gap_seconds"`
	// MinAdSeconds drops detected segments shorter than this. Default: 10
	MinAdSeconds float64 `toml:"min_ad_seconds"`
	// ChangepointPenalty tunes breakpoint sensitivity when several signal
	// channels are fused. Default: 0.3
	ChangepointPenalty float64 `toml:"changepoint_penalty"`
	// ChangepointPenaltySingle applies when only one signal channel is
	// available. Default: 0.5
	ChangepointPenaltySingle float64 `toml:"changepoint_penalty_single"`
	// SampleRate is the mono PCM rate audio is decoded to for feature
	// extraction. Default: 16000
	SampleRate int `toml:"sample_rate"`
	// OpeningScan controls the dedicated sweep for pre-roll sponsor reads in
	// the first three minutes.
	OpeningScan bool `toml:"opening_scan"`
	// EdgeExpansion controls growing detected segments into adjacent
	// ad-flavored transcript windows.
	EdgeExpansion bool `toml:"edge_expansion"`
}

// LLM contains configuration for borderline segment verification through a
// local Ollama instance.
type LLM struct {
	Enabled        bool   `toml:"enabled"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	// VerifyLow and VerifyHigh bound the confidence band sent for
	// verification; segments outside the band are decided without the LLM.
	VerifyLow  float64 `toml:"verify_low"`
	VerifyHigh float64 `toml:"verify_high"`
}

// Cut contains configuration for ad removal and re-encoding.
type Cut struct {
	// BufferSeconds widens each kept span to avoid clipping speech at ad
	// boundaries. Default: 0.5
	BufferSeconds float64 `toml:"buffer_seconds"`
	// MP3Quality is the libmp3lame VBR quality (0 best, 9 worst). Default: 2
	MP3Quality    int `toml:"mp3_quality"`
	EncodeTimeout int `toml:"encode_timeout"`
	ProbeTimeout  int `toml:"probe_timeout"`
}

// Organizer contains configuration for final library placement.
type Organizer struct {
	PodcastsDir       string `toml:"podcasts_dir"`
	OverwriteExisting bool   `toml:"overwrite_existing"`
	// SaveReport writes a JSON sidecar describing removed segments next to
	// the organized episode.
	SaveReport bool `toml:"save_report"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Download       bool   `toml:"download"`
	Transcription  bool   `toml:"transcription"`
	Detection      bool   `toml:"detection"`
	Organization   bool   `toml:"organization"`
	Queue          bool   `toml:"queue"`
	Review         bool   `toml:"review"`
	Errors         bool   `toml:"errors"`
}

// API contains configuration for the daemon HTTP endpoint.
type API struct {
	Bind string `toml:"bind"`
	// Token, when set, requires callers to present it as a bearer token.
	Token string `toml:"token"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format         string            `toml:"format"`
	Level          string            `toml:"level"`
	RetentionDays  int               `toml:"retention_days"`
	StageOverrides map[string]string `toml:"stage_overrides"`
}

// Config encapsulates all configuration values for podsweep.
//
// Configuration sections by subsystem:
//   - Paths: staging, library, log, and review directories
//   - Workflow: daemon polling intervals and heartbeat timing
//   - Download: episode audio retrieval settings
//   - Transcriber: speech-to-text service endpoint
//   - Diarizer: optional speaker diarization service endpoint
//   - Embedder: sentence embedding backend for semantic signals
//   - Detection: ad detection engine mode and thresholds
//   - LLM: Ollama settings for borderline segment verification
//   - Cut: ad removal buffers and encoder settings
//   - Organizer: library layout for cleaned episodes
//   - Notifications: ntfy push notification settings
//   - API: daemon HTTP bind address
//   - Logging: log format, level, and retention
type Config struct {
	Paths         Paths         `toml:"paths"`
	Workflow      Workflow      `toml:"workflow"`
	Download      Download      `toml:"download"`
	Transcriber   Transcriber   `toml:"transcriber"`
	Diarizer      Diarizer      `toml:"diarizer"`
	Embedder      Embedder      `toml:"embedder"`
	Detection     Detection     `toml:"detection"`
	LLM           LLM           `toml:"llm"`
	Cut           Cut           `toml:"cut"`
	Organizer     Organizer     `toml:"organizer"`
	Notifications Notifications `toml:"notifications"`
	API           API           `toml:"api"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/podsweep/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/podsweep/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("podsweep.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
// LibraryDir is created on a best-effort basis so the daemon can run when
// external storage is temporarily unavailable.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.LogDir, c.Paths.ReviewDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.LibraryDir) != "" {
		// Best-effort to avoid failing config load when storage is offline.
		_ = os.MkdirAll(c.Paths.LibraryDir, 0o755)
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable name used for decoding and cutting.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for media validation.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
