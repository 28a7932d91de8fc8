// Package config provides configuration management and credential
// resolution for draftcommit.
package config

// Provider names for the two supported remote providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config represents the complete draftcommit configuration.
type Config struct {
	Providers ProvidersConfig `mapstructure:"providers"`
	Git       GitConfig       `mapstructure:"git"`
	UI        UIConfig        `mapstructure:"ui"`
	History   HistoryConfig   `mapstructure:"history"`
	Security  SecurityConfig  `mapstructure:"security"`
	Cache     CacheConfig     `mapstructure:"cache"`
}

// ProvidersConfig contains the settings for both text-generation providers.
type ProvidersConfig struct {
	// Preferred forces the preferred provider ("gemini" or "openai").
	// When empty, gemini is preferred whenever its key is available.
	Preferred    string  `mapstructure:"preferred"`
	GeminiAPIKey string  `mapstructure:"gemini_api_key"`
	OpenAIAPIKey string  `mapstructure:"openai_api_key"`
	GeminiModel  string  `mapstructure:"gemini_model"`
	OpenAIModel  string  `mapstructure:"openai_model"`
	Endpoint     string  `mapstructure:"endpoint"`
	Temperature  float32 `mapstructure:"temperature"`
	MaxTokens    int     `mapstructure:"max_tokens"`
}

// GitConfig contains git-related settings.
type GitConfig struct {
	// EnvSearchDepth is how many ancestor directories are scanned for
	// .env credential files, in addition to the working directory.
	EnvSearchDepth int `mapstructure:"env_search_depth"`
}

// UIConfig contains UI-related settings.
type UIConfig struct {
	Editor       string `mapstructure:"editor"`
	ColorEnabled bool   `mapstructure:"color_enabled"`
}

// HistoryConfig contains history-related settings.
type HistoryConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	MaxEntries int    `mapstructure:"max_entries"`
	FilePath   string `mapstructure:"file_path"`
}

// SecurityConfig contains security-related settings.
type SecurityConfig struct {
	// WarningAcknowledged indicates if the user has acknowledged the first-use security warning.
	WarningAcknowledged bool `mapstructure:"warning_acknowledged"`
}

// CacheConfig contains response cache settings.
type CacheConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	MaxEntries int  `mapstructure:"max_entries"`
	TTLMinutes int  `mapstructure:"ttl_minutes"`
}

// Manager defines the interface for configuration management.
type Manager interface {
	Load() (*Config, error)
	Save(config *Config) error
	Set(key string, value string) error
	Get(key string) (string, error)
	Init() error
	List() map[string]interface{}
	GetConfigPath() string
}
