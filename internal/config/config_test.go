package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tontrade/tontrade/internal/config"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()

	assert.Equal(t, config.DefaultChainMainnetURL, cfg.Chain.MainnetURL)
	assert.Equal(t, config.DefaultDexURL, cfg.Dex.URL)
	assert.Equal(t, config.DefaultTokenFile, cfg.TokenFile)
	assert.Equal(t, config.DefaultSessionTTLMin, cfg.Session.TTLMinutes)
	assert.False(t, cfg.Chain.Testnet)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultGreeting, cfg.Greeting)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "greeting: hello\nchain:\n  testnet: true\n  api_key: k123\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "hello", cfg.Greeting)
	assert.True(t, cfg.Chain.Testnet)
	assert.Equal(t, "k123", cfg.Chain.APIKey)
	// Unset fields keep defaults
	assert.Equal(t, config.DefaultDatabasePath, cfg.DatabasePath)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("greeting: [unclosed"), 0o600))

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestApplyEnvironment(t *testing.T) {
	t.Setenv(config.EnvBotToken, "tok")
	t.Setenv(config.EnvTestnet, "True")
	t.Setenv(config.EnvEncryptionKey, "secret")
	t.Setenv(config.EnvSessionTTL, "5")

	cfg := config.Default()
	config.ApplyEnvironment(cfg)

	assert.Equal(t, "tok", cfg.BotToken)
	assert.True(t, cfg.Chain.Testnet)
	assert.Equal(t, "secret", cfg.EncryptionKey)
	assert.Equal(t, 5, cfg.Session.TTLMinutes)
}

func TestApplyEnvironment_BadTTLIgnored(t *testing.T) {
	t.Setenv(config.EnvSessionTTL, "not-a-number")

	cfg := config.Default()
	config.ApplyEnvironment(cfg)

	assert.Equal(t, config.DefaultSessionTTLMin, cfg.Session.TTLMinutes)
}

func TestChainConfig_URL(t *testing.T) {
	c := config.ChainConfig{MainnetURL: "https://main", TestnetURL: "https://test"}
	assert.Equal(t, "https://main", c.URL())
	c.Testnet = true
	assert.Equal(t, "https://test", c.URL())
}

func TestValidate(t *testing.T) {
	cfg := config.Default()
	assert.Error(t, cfg.Validate())

	cfg.BotToken = "tok"
	assert.NoError(t, cfg.Validate())
}
