package config

const (
	defaultTranscriptsDir   = "~/.local/share/loom/transcripts"
	defaultAnalysisTypesDir = "~/.config/loom/analysis"
	defaultLogDir           = "~/.local/share/loom/logs"
	defaultCatalogPath      = "~/.local/share/loom/catalog.db"
	defaultLLMBaseURL       = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel         = "google/gemini-3-flash-preview"
	defaultLLMReferer       = "https://github.com/loom-kb/loom"
	defaultLLMTitle         = "Loom Transcript Analysis"
	defaultLLMTimeout       = 120
	defaultMaxRounds        = 1
	defaultNotifyTimeout    = 10
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			TranscriptsDir:   defaultTranscriptsDir,
			AnalysisTypesDir: defaultAnalysisTypesDir,
			LogDir:           defaultLogDir,
			CatalogPath:      defaultCatalogPath,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeout,
		},
		Analysis: Analysis{
			DefaultMaxRounds: defaultMaxRounds,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			BatchComplete:  true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
