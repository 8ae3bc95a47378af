package balance

import (
	"bufio"
	"os"
	"regexp"
	"strings"
)

// tokenLineRegex matches configured token lines: `Name ($SYM) | contract`.
var tokenLineRegex = regexp.MustCompile(`^([^|]+) \(\$([^)]+)\) \| (\S+)`)

// ConfiguredToken is a token from the static token file.
type ConfiguredToken struct {
	Symbol   string
	Name     string
	Contract string
}

// LoadTokenFile parses the configured token list. Lines that do not
// match the expected format are skipped.
func LoadTokenFile(path string) ([]ConfiguredToken, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path comes from the operator
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var tokens []ConfiguredToken
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		match := tokenLineRegex.FindStringSubmatch(scanner.Text())
		if match == nil {
			continue
		}
		tokens = append(tokens, ConfiguredToken{
			Name:     strings.TrimSpace(match[1]),
			Symbol:   strings.TrimSpace(match[2]),
			Contract: strings.TrimSpace(match[3]),
		})
	}
	if err := scanner.Err(); err != nil {
		return tokens, err
	}
	return tokens, nil
}
