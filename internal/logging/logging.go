// Package logging builds the application logger.
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New constructs a zap logger for the given level and environment.
// Environment "production" selects the JSON encoder; anything else
// selects the development console encoder.
func New(level, environment string) (*zap.Logger, error) {
	var cfg zap.Config
	if environment == "production" {
		cfg = zap.NewProductionConfig()
		cfg.DisableStacktrace = true
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	if level != "" {
		parsed, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg.Level = parsed
	}

	cfg.InitialFields = map[string]interface{}{
		"service": "tontrade",
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}
