package config

const (
	defaultDataDir            = "~/.local/share/cinelist"
	defaultLogDir             = "~/.local/share/cinelist/logs"
	defaultOMDbBaseURL        = "https://www.omdbapi.com/"
	defaultLLMBaseURL         = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel           = "google/gemini-2.0-flash-001"
	defaultLLMTitle           = "cinelist"
	defaultSuggestionReason   = "Recommended based on your taste"
	defaultSuggestionCount    = 5
	defaultSuggestionSample   = 5
	defaultSuggestionTemp     = 0.9
	defaultReplaceTemperature = 1.0
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		OMDb: OMDb{
			BaseURL:           defaultOMDbBaseURL,
			TimeoutSeconds:    10,
			RequestsPerSecond: 5,
			Burst:             5,
			CacheTTLSeconds:   600,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Title:          defaultLLMTitle,
			TimeoutSeconds: 30,
			RetryAttempts:  3,
		},
		Suggestions: Suggestions{
			Count:              defaultSuggestionCount,
			SampleSize:         defaultSuggestionSample,
			Temperature:        defaultSuggestionTemp,
			ReplaceTemperature: defaultReplaceTemperature,
			Concurrency:        defaultSuggestionCount,
			DefaultReason:      defaultSuggestionReason,
		},
		Logging: Logging{
			Format: "console",
			Level:  "warn",
		},
	}
}
