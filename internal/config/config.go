// Package config provides configuration management for the bot.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default endpoint and file locations.
const (
	DefaultChainMainnetURL = "https://tonapi.io"
	DefaultChainTestnetURL = "https://testnet.tonapi.io"
	DefaultMarketURL       = "https://pro-api.coinmarketcap.com"
	DefaultDexURL          = "https://api.ston.fi"
	DefaultDatabasePath    = "tontrade.db"
	DefaultTokenFile       = "tokens.txt"
	DefaultGreeting        = "Welcome!"
	DefaultSessionTTLMin   = 30
)

// Proxy-TON addresses used by the DEX for the native side of a pair.
const (
	DefaultPTONMainnet = "EQBnGWMCf3-FZZq1W4IWcWiGAc3PHuZ0_H-7sad2oY00o83S"
	DefaultPTONTestnet = "kQACS30DNoUQ7NfApPvzh7eBmSZ9L4bfe7LfPosuIBdFSKPa"
)

// Config represents the application configuration.
type Config struct {
	BotToken      string        `yaml:"bot_token"`
	Greeting      string        `yaml:"greeting"`
	DatabasePath  string        `yaml:"database_path"`
	TokenFile     string        `yaml:"token_file"`
	EncryptionKey string        `yaml:"encryption_key"`
	Chain         ChainConfig   `yaml:"chain"`
	Market        MarketConfig  `yaml:"market"`
	Dex           DexConfig     `yaml:"dex"`
	Session       SessionConfig `yaml:"session"`
	Logging       LoggingConfig `yaml:"logging"`
}

// ChainConfig defines chain API settings.
type ChainConfig struct {
	APIKey     string `yaml:"api_key"`
	Testnet    bool   `yaml:"testnet"`
	MainnetURL string `yaml:"mainnet_url"`
	TestnetURL string `yaml:"testnet_url"`
}

// URL returns the base URL for the selected network.
func (c ChainConfig) URL() string {
	if c.Testnet {
		return c.TestnetURL
	}
	return c.MainnetURL
}

// MarketConfig defines price/metadata API settings.
type MarketConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
}

// DexConfig defines swap aggregator settings.
type DexConfig struct {
	URL         string `yaml:"url"`
	PTONMainnet string `yaml:"pton_mainnet"`
	PTONTestnet string `yaml:"pton_testnet"`
}

// PTON returns the proxy-TON address for the selected network.
func (d DexConfig) PTON(testnet bool) string {
	if testnet {
		return d.PTONTestnet
	}
	return d.PTONMainnet
}

// SessionConfig defines conversation-state lifetime settings.
type SessionConfig struct {
	TTLMinutes int `yaml:"ttl_minutes"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Environment string `yaml:"environment"`
}

// Default returns a configuration with default values.
func Default() *Config {
	return &Config{
		Greeting:     DefaultGreeting,
		DatabasePath: DefaultDatabasePath,
		TokenFile:    DefaultTokenFile,
		Chain: ChainConfig{
			MainnetURL: DefaultChainMainnetURL,
			TestnetURL: DefaultChainTestnetURL,
		},
		Market: MarketConfig{URL: DefaultMarketURL},
		Dex: DexConfig{
			URL:         DefaultDexURL,
			PTONMainnet: DefaultPTONMainnet,
			PTONTestnet: DefaultPTONTestnet,
		},
		Session: SessionConfig{TTLMinutes: DefaultSessionTTLMin},
		Logging: LoggingConfig{Level: "info", Environment: "development"},
	}
}

// Load reads the configuration from an optional YAML file and applies
// environment overrides on top. A missing file is not an error; the
// defaults are used.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the operator
		switch {
		case os.IsNotExist(err):
			// fall through to env overrides
		case err != nil:
			return nil, fmt.Errorf("reading config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	ApplyEnvironment(cfg)
	return cfg, nil
}

// Validate checks that required settings are present.
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("bot token is required (set %s)", EnvBotToken)
	}
	return nil
}
