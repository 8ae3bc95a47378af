package balance

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTokenFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tokens.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadTokenFile(t *testing.T) {
	path := writeTokenFile(t, "Tether USD ($USDT) | EQusdt\nNotcoin ($NOT) | EQnot\n")

	tokens, err := LoadTokenFile(path)
	require.NoError(t, err)
	require.Len(t, tokens, 2)

	assert.Equal(t, "Tether USD", tokens[0].Name)
	assert.Equal(t, "USDT", tokens[0].Symbol)
	assert.Equal(t, "EQusdt", tokens[0].Contract)
	assert.Equal(t, "NOT", tokens[1].Symbol)
}

func TestLoadTokenFileSkipsMalformedLines(t *testing.T) {
	path := writeTokenFile(t, "# comment\n\nTether USD ($USDT) | EQusdt\nnot a token line\n")

	tokens, err := LoadTokenFile(path)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "USDT", tokens[0].Symbol)
}

func TestLoadTokenFileMissing(t *testing.T) {
	_, err := LoadTokenFile(filepath.Join(t.TempDir(), "absent.txt"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
