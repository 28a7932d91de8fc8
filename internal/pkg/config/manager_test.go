package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfigManager(t *testing.T) *ViperManager {
	t.Helper()

	m, err := NewManager(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	return m
}

func TestLoadDefaults(t *testing.T) {
	m := testConfigManager(t)

	cfg, err := m.Load()
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.0-flash", cfg.Providers.GeminiModel)
	assert.Equal(t, "gpt-4o-mini", cfg.Providers.OpenAIModel)
	assert.Equal(t, DefaultEnvSearchDepth, cfg.Git.EnvSearchDepth)
	assert.True(t, cfg.History.Enabled)
	assert.True(t, cfg.Cache.Enabled)
	assert.False(t, cfg.Security.WarningAcknowledged)
}

func TestInitCreatesFileWithRestrictedPermissions(t *testing.T) {
	m := testConfigManager(t)

	require.NoError(t, m.Init())
	assert.True(t, m.ConfigExists())

	if runtime.GOOS != "windows" {
		info, err := os.Stat(m.GetConfigPath())
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}

	// A second init must not clobber an existing file.
	require.Error(t, m.Init())
}

func TestSetAndGet(t *testing.T) {
	m := testConfigManager(t)
	require.NoError(t, m.Init())

	require.NoError(t, m.Set("providers.preferred", "openai"))

	got, err := m.Get("providers.preferred")
	require.NoError(t, err)
	assert.Equal(t, "openai", got)

	// Values typed in defaults keep their type on set.
	require.NoError(t, m.Set("cache.max_entries", "50"))
	cfg, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Cache.MaxEntries)

	require.Error(t, m.Set("cache.max_entries", "not-a-number"))
}

func TestSetOverrideDoesNotPersist(t *testing.T) {
	m := testConfigManager(t)
	require.NoError(t, m.Init())

	m.SetOverride("providers.preferred", "openai")

	cfg, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.Providers.Preferred)

	// A fresh manager on the same file sees the stored value, not the override.
	fresh, err := NewManager(m.GetConfigPath())
	require.NoError(t, err)
	freshCfg, err := fresh.Load()
	require.NoError(t, err)
	assert.Equal(t, "", freshCfg.Providers.Preferred)
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("DRAFTCOMMIT_PROVIDERS_PREFERRED", "openai")

	m := testConfigManager(t)
	require.NoError(t, m.Init())

	cfg, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.Providers.Preferred)
}

func TestBareProviderKeyVariables(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "AIzaSyA1B2C3D4E5F6G7H8I9J0K1L2M3N4O5")
	t.Setenv("OPENAI_API_KEY", "sk-abcdefghijklmnopqrstuvwxyz")

	m := testConfigManager(t)
	cfg, err := m.Load()
	require.NoError(t, err)

	assert.Equal(t, "AIzaSyA1B2C3D4E5F6G7H8I9J0K1L2M3N4O5", cfg.Providers.GeminiAPIKey)
	assert.Equal(t, "sk-abcdefghijklmnopqrstuvwxyz", cfg.Providers.OpenAIAPIKey)
}

func TestAcknowledgeSecurityWarning(t *testing.T) {
	m := testConfigManager(t)

	assert.False(t, m.IsSecurityWarningAcknowledged())
	require.NoError(t, m.AcknowledgeSecurityWarning())
	assert.True(t, m.IsSecurityWarningAcknowledged())
}
