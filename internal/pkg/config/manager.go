package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

const (
	// DefaultConfigFileExt is the default config file extension.
	DefaultConfigFileExt = "yaml"
)

// ViperManager implements the Manager interface using Viper.
type ViperManager struct {
	v          *viper.Viper
	configPath string
}

// NewManager creates a new configuration manager.
// If configPath is empty, it uses the default path (~/.draftcommit/config.yaml).
func NewManager(configPath string) (*ViperManager, error) {
	v := viper.New()

	v.SetConfigType(DefaultConfigFileExt)

	if configPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(homeDir, ".draftcommit", "config.yaml")
	}

	v.SetConfigFile(configPath)

	v.SetEnvPrefix("DRAFTCOMMIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults first (required for env binding to work with nested keys)
	setDefaults(v)

	// Explicitly bind environment variables for nested keys
	bindEnvVars(v)

	return &ViperManager{
		v:          v,
		configPath: configPath,
	}, nil
}

// bindEnvVars explicitly binds environment variables for all config keys.
// Viper's AutomaticEnv doesn't work well with nested keys.
func bindEnvVars(v *viper.Viper) {
	// Provider settings. The bare GEMINI_API_KEY / OPENAI_API_KEY names are
	// also bound so the standard variables both vendors document work as-is.
	_ = v.BindEnv("providers.preferred", "DRAFTCOMMIT_PROVIDERS_PREFERRED")
	_ = v.BindEnv("providers.gemini_api_key", "DRAFTCOMMIT_PROVIDERS_GEMINI_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("providers.openai_api_key", "DRAFTCOMMIT_PROVIDERS_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("providers.gemini_model", "DRAFTCOMMIT_PROVIDERS_GEMINI_MODEL")
	_ = v.BindEnv("providers.openai_model", "DRAFTCOMMIT_PROVIDERS_OPENAI_MODEL")
	_ = v.BindEnv("providers.endpoint", "DRAFTCOMMIT_PROVIDERS_ENDPOINT")
	_ = v.BindEnv("providers.temperature", "DRAFTCOMMIT_PROVIDERS_TEMPERATURE")
	_ = v.BindEnv("providers.max_tokens", "DRAFTCOMMIT_PROVIDERS_MAX_TOKENS")

	// Git settings
	_ = v.BindEnv("git.env_search_depth", "DRAFTCOMMIT_GIT_ENV_SEARCH_DEPTH")

	// UI settings
	_ = v.BindEnv("ui.editor", "DRAFTCOMMIT_UI_EDITOR")
	_ = v.BindEnv("ui.color_enabled", "DRAFTCOMMIT_UI_COLOR_ENABLED")

	// History settings
	_ = v.BindEnv("history.enabled", "DRAFTCOMMIT_HISTORY_ENABLED")
	_ = v.BindEnv("history.max_entries", "DRAFTCOMMIT_HISTORY_MAX_ENTRIES")
	_ = v.BindEnv("history.file_path", "DRAFTCOMMIT_HISTORY_FILE_PATH")

	// Security settings
	_ = v.BindEnv("security.warning_acknowledged", "DRAFTCOMMIT_SECURITY_WARNING_ACKNOWLEDGED")

	// Cache settings
	_ = v.BindEnv("cache.enabled", "DRAFTCOMMIT_CACHE_ENABLED")
	_ = v.BindEnv("cache.max_entries", "DRAFTCOMMIT_CACHE_MAX_ENTRIES")
	_ = v.BindEnv("cache.ttl_minutes", "DRAFTCOMMIT_CACHE_TTL_MINUTES")
}

// setDefaults sets the default configuration values.
func setDefaults(v *viper.Viper) {
	// Provider defaults
	v.SetDefault("providers.preferred", "")
	v.SetDefault("providers.gemini_api_key", "")
	v.SetDefault("providers.openai_api_key", "")
	v.SetDefault("providers.gemini_model", "gemini-2.0-flash")
	v.SetDefault("providers.openai_model", "gpt-4o-mini")
	v.SetDefault("providers.endpoint", "")
	v.SetDefault("providers.temperature", 0.2)
	v.SetDefault("providers.max_tokens", 500)

	// Git defaults
	v.SetDefault("git.env_search_depth", DefaultEnvSearchDepth)

	// UI defaults
	v.SetDefault("ui.editor", "")
	v.SetDefault("ui.color_enabled", true)

	// History defaults
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.max_entries", 1000)
	homeDir, _ := os.UserHomeDir()
	v.SetDefault("history.file_path", filepath.Join(homeDir, ".draftcommit", "history.json"))

	// Security defaults
	v.SetDefault("security.warning_acknowledged", false)

	// Cache defaults
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.max_entries", 100)
	v.SetDefault("cache.ttl_minutes", 60)
}

// GetConfigPath returns the path to the configuration file.
func (m *ViperManager) GetConfigPath() string {
	return m.configPath
}

// Load loads the configuration from file, environment, and defaults.
// Priority: flags > env > file > defaults
func (m *ViperManager) Load() (*Config, error) {
	if err := m.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Only return error if it's not a "file not found" error
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := m.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Init creates a new configuration file with default values.
// Sets file permissions to 0600 since the file may hold API keys.
func (m *ViperManager) Init() error {
	if _, err := os.Stat(m.configPath); err == nil {
		return fmt.Errorf("config file already exists at %s", m.configPath)
	}

	dir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := m.v.WriteConfigAs(m.configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	if err := os.Chmod(m.configPath, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	return nil
}

// Save saves the configuration to file.
func (m *ViperManager) Save(config *Config) error {
	m.v.Set("providers", config.Providers)
	m.v.Set("git", config.Git)
	m.v.Set("ui", config.UI)
	m.v.Set("history", config.History)
	m.v.Set("security", config.Security)
	m.v.Set("cache", config.Cache)

	if err := m.v.WriteConfig(); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Set sets a configuration value by key.
// Supports nested keys using dot notation (e.g., "providers.preferred").
func (m *ViperManager) Set(key string, value string) error {
	if err := m.v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	existingValue := m.v.Get(key)
	convertedValue, err := convertValue(value, existingValue)
	if err != nil {
		return fmt.Errorf("failed to convert value for key %s: %w", key, err)
	}

	m.v.Set(key, convertedValue)

	if err := m.v.WriteConfig(); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// convertValue converts a string value to the appropriate type based on the existing value type.
func convertValue(value string, existingValue interface{}) (interface{}, error) {
	if existingValue == nil {
		return value, nil
	}

	switch existingValue.(type) {
	case bool:
		return strconv.ParseBool(value)
	case int, int64:
		return strconv.ParseInt(value, 10, 64)
	case float32, float64:
		return strconv.ParseFloat(value, 64)
	case []interface{}, []string:
		return strings.Split(value, ","), nil
	default:
		return value, nil
	}
}

// Get retrieves a configuration value by key.
func (m *ViperManager) Get(key string) (string, error) {
	if err := m.v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to read config file: %w", err)
		}
	}

	value := m.v.Get(key)
	if value == nil {
		return "", fmt.Errorf("key not found: %s", key)
	}

	return fmt.Sprintf("%v", value), nil
}

// List returns all configuration values as a map.
func (m *ViperManager) List() map[string]interface{} {
	_ = m.v.ReadInConfig()

	return m.v.AllSettings()
}

// SetOverride sets a temporary override for a configuration key.
// Used for command-line flag overrides that shouldn't persist.
func (m *ViperManager) SetOverride(key string, value interface{}) {
	m.v.Set(key, value)
}

// ConfigExists checks if the configuration file exists.
func (m *ViperManager) ConfigExists() bool {
	_, err := os.Stat(m.configPath)
	return err == nil
}

// AcknowledgeSecurityWarning marks the security warning as acknowledged.
func (m *ViperManager) AcknowledgeSecurityWarning() error {
	// Ensure the config file exists so the acknowledgment can persist
	dir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(m.configPath); os.IsNotExist(err) {
		f, err := os.OpenFile(m.configPath, os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		f.Close()
	}

	return m.Set("security.warning_acknowledged", "true")
}

// IsSecurityWarningAcknowledged checks if the security warning has been acknowledged.
func (m *ViperManager) IsSecurityWarningAcknowledged() bool {
	_ = m.v.ReadInConfig()
	return m.v.GetBool("security.warning_acknowledged")
}
