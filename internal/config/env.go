package config

import (
	"os"
	"strconv"
	"strings"
)

// Environment variable names.
const (
	EnvBotToken      = "BOT_TOKEN" // #nosec G101 -- false positive, this is a const name not a credential
	EnvGreeting      = "GREETING"
	EnvDatabase      = "DATABASE"
	EnvTokenFile     = "TOKEN_FILE"
	EnvEncryptionKey = "ENCRYPTION_KEY"
	EnvChainAPIKey   = "TON_CONSOLE_API_KEY" // #nosec G101 -- const name, not a credential
	EnvTestnet       = "IS_TESTNET"
	EnvMarketAPIKey  = "COINMARKETCAP_API_KEY" // #nosec G101 -- const name, not a credential
	EnvMarketURL     = "COINMARKETCAP_API_URL"
	EnvChainURL      = "TON_API_URL"
	EnvDexURL        = "STONFI_API_URL"
	EnvSessionTTL    = "SESSION_TTL_MINUTES"
	EnvLogLevel      = "LOG_LEVEL"
	EnvLogEnv        = "LOG_ENVIRONMENT"
)

// ApplyEnvironment applies environment variable overrides to the configuration.
//
//nolint:gocognit,gocyclo // Environment variable overrides require sequential checks
func ApplyEnvironment(cfg *Config) {
	if v := os.Getenv(EnvBotToken); v != "" {
		cfg.BotToken = v
	}

	if v := os.Getenv(EnvGreeting); v != "" {
		cfg.Greeting = v
	}

	if v := os.Getenv(EnvDatabase); v != "" {
		cfg.DatabasePath = v
	}

	if v := os.Getenv(EnvTokenFile); v != "" {
		cfg.TokenFile = v
	}

	if v := os.Getenv(EnvEncryptionKey); v != "" {
		cfg.EncryptionKey = v
	}

	if v := os.Getenv(EnvChainAPIKey); v != "" {
		cfg.Chain.APIKey = v
	}

	if v := os.Getenv(EnvTestnet); v != "" {
		cfg.Chain.Testnet = parseBool(v)
	}

	if v := os.Getenv(EnvChainURL); v != "" {
		if cfg.Chain.Testnet {
			cfg.Chain.TestnetURL = strings.TrimSpace(v)
		} else {
			cfg.Chain.MainnetURL = strings.TrimSpace(v)
		}
	}

	if v := os.Getenv(EnvMarketAPIKey); v != "" {
		cfg.Market.APIKey = v
	}

	if v := os.Getenv(EnvMarketURL); v != "" {
		cfg.Market.URL = strings.TrimSpace(v)
	}

	if v := os.Getenv(EnvDexURL); v != "" {
		cfg.Dex.URL = strings.TrimSpace(v)
	}

	if v := os.Getenv(EnvSessionTTL); v != "" {
		if ttl, err := strconv.Atoi(v); err == nil && ttl > 0 {
			cfg.Session.TTLMinutes = ttl
		}
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}

	if v := os.Getenv(EnvLogEnv); v != "" {
		cfg.Logging.Environment = strings.ToLower(v)
	}
}

// parseBool parses a boolean string value.
// "True" is accepted for compatibility with existing deployments.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "1" || s == "true" || s == "yes" || s == "on" {
		return true
	}
	b, _ := strconv.ParseBool(s)
	return b
}
