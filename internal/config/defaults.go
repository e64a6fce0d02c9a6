package config

const (
	defaultStagingDir                = "~/.local/share/podsweep/staging"
	defaultLibraryDir                = "~/library"
	defaultLogDir                    = "~/.local/share/podsweep/logs"
	defaultReviewDir                 = "~/review"
	defaultLogRetentionDays          = 60
	defaultLogFormat                 = "console"
	defaultLogLevel                  = "info"
	defaultAPIBind                   = "127.0.0.1:7465"
	defaultPodcastsDir               = "podcasts"
	defaultDownloadUserAgent         = "podsweep/1.0"
	defaultDownloadTimeout           = 900
	defaultTranscriberURL            = "http://127.0.0.1:8765"
	defaultTranscriberTimeout        = 1800
	defaultDiarizerURL               = "http://127.0.0.1:8767"
	defaultDiarizerTimeout           = 900
	defaultEmbedderBackend           = "lexical"
	defaultEmbedderTimeout           = 120
	defaultDetectionMode             = "balanced"
	defaultDetectionSampleRate       = 16000
	defaultOllamaBaseURL             = "http://127.0.0.1:11434"
	defaultOllamaModel               = "llama3.2"
	defaultLLMTimeoutSeconds         = 20
	defaultCutEncodeTimeout          = 1800
	defaultCutProbeTimeout           = 60
	defaultCutMP3Quality             = 2
	defaultNotifyRequestTimeout      = 10
	defaultWorkflowHeartbeatInterval = 15
	defaultWorkflowHeartbeatTimeout  = 120
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			LibraryDir: defaultLibraryDir,
			LogDir:     defaultLogDir,
			ReviewDir:  defaultReviewDir,
		},
		Workflow: Workflow{
			QueuePollInterval:  5,
			ErrorRetryInterval: 10,
			HeartbeatInterval:  defaultWorkflowHeartbeatInterval,
			HeartbeatTimeout:   defaultWorkflowHeartbeatTimeout,
		},
		Download: Download{
			UserAgent:      defaultDownloadUserAgent,
			RequestTimeout: defaultDownloadTimeout,
		},
		Transcriber: Transcriber{
			URL:            defaultTranscriberURL,
			RequestTimeout: defaultTranscriberTimeout,
		},
		Diarizer: Diarizer{
			URL:            defaultDiarizerURL,
			RequestTimeout: defaultDiarizerTimeout,
		},
		Embedder: Embedder{
			Backend:        defaultEmbedderBackend,
			RequestTimeout: defaultEmbedderTimeout,
		},
		Detection: Detection{
			Mode:                     defaultDetectionMode,
			MinConfidence:            0.35,
			ClassifierThreshold:      0.4,
			MergeGapSeconds:          15,
			MinAdSeconds:             10,
			ChangepointPenalty:       0.3,
			ChangepointPenaltySingle: 0.5,
			SampleRate:               defaultDetectionSampleRate,
			OpeningScan:              true,
			EdgeExpansion:            true,
		},
		LLM: LLM{
			BaseURL:        defaultOllamaBaseURL,
			Model:          defaultOllamaModel,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
			VerifyLow:      0.35,
			VerifyHigh:     0.65,
		},
		Cut: Cut{
			BufferSeconds: 0.5,
			MP3Quality:    defaultCutMP3Quality,
			EncodeTimeout: defaultCutEncodeTimeout,
			ProbeTimeout:  defaultCutProbeTimeout,
		},
		Organizer: Organizer{
			PodcastsDir: defaultPodcastsDir,
			SaveReport:  true,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Download:       true,
			Transcription:  true,
			Detection:      true,
			Organization:   true,
			Queue:          true,
			Review:         true,
			Errors:         true,
		},
		API: API{
			Bind: defaultAPIBind,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
