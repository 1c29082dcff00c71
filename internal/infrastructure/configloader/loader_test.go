package configloader

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
server:
  port: "9090"
logging:
  level: debug
tracker:
  baseURL: https://tracker-fractal-api.catprotocol.org
  tokenId: 45ee725c2c5993b3e4d308842d87e973bf1951f5f7a804b21e4dd964ecd12d6b_0
  trackedTokenIds:
    - other_0
    - 45ee725c2c5993b3e4d308842d87e973bf1951f5f7a804b21e4dd964ecd12d6b_0
  utxoLimit: 8
network:
  identifier: fractal-mainnet
sdk:
  feeRate: 3
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFileAndDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 8, cfg.Tracker.UtxoLimit)
	assert.EqualValues(t, 3, cfg.SDK.FeeRate)
	assert.Equal(t, 5*time.Second, cfg.PollInterval())
	assert.Equal(t, 10*time.Second, cfg.TrackerTimeout())
	assert.Equal(t, []string{"*"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, []string{
		"45ee725c2c5993b3e4d308842d87e973bf1951f5f7a804b21e4dd964ecd12d6b_0",
		"other_0",
	}, cfg.TokenIDs())
	assert.Equal(t, []string{
		"45ee725c2c5993b3e4d308842d87e973bf1951f5f7a804b21e4dd964ecd12d6b_0",
		"other_0",
		"listed_0",
	}, cfg.TokenIDs("other_0", "listed_0", " "))
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv("TRACKER_URL", "http://localhost:3000")
	t.Setenv("TOKEN_ID", "env_0")
	t.Setenv("NETWORK", "btc-signet")
	t.Setenv("FEE_RATE", "7")

	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000", cfg.Tracker.BaseURL)
	assert.Equal(t, "env_0", cfg.Tracker.TokenID)
	assert.Equal(t, "btc-signet", cfg.Network.Identifier)
	assert.EqualValues(t, 7, cfg.SDK.FeeRate)
}

func TestLoadWithoutFileUsesEnvironment(t *testing.T) {
	t.Setenv("TRACKER_URL", "http://localhost:3000")
	t.Setenv("TOKEN_ID", "env_0")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	assert.Equal(t, "fractal-mainnet", cfg.Network.Identifier)
	assert.Equal(t, 4, cfg.Tracker.UtxoLimit)
	assert.EqualValues(t, 1, cfg.SDK.FeeRate)
}

func TestLoadValidation(t *testing.T) {
	_, err := Load(writeConfig(t, "network:\n  identifier: ethereum\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TRACKER_URL")
	assert.Contains(t, err.Error(), "TOKEN_ID")
	assert.Contains(t, err.Error(), `"ethereum"`)

	_, err = Load(writeConfig(t, "server: [unclosed"))
	assert.Error(t, err)
}

func TestPathFromEnv(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	assert.Equal(t, DefaultPath, PathFromEnv())
	t.Setenv("CONFIG_PATH", "/etc/cat20/config.yml")
	assert.Equal(t, "/etc/cat20/config.yml", PathFromEnv())
}
