package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[log]
level = 0
format = "text"
add_source = false

[db]
host = "localhost"
port = 5432
user = "duel"
password = "secret"
database = "duelmarket"
pool_size = 10

[web]
host = "0.0.0.0"
port = 9000

[market]
listing_duration = "72h"
auction_duration = "24h"
sweep_interval = "15s"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, "duelmarket", cfg.DB.Database)
	assert.Equal(t, 10, cfg.DB.PoolSize)
	assert.Equal(t, "0.0.0.0:9000", cfg.Web.Addr())
	assert.Equal(t, 72*time.Hour, cfg.Market.ListingHorizon())
	assert.Equal(t, 24*time.Hour, cfg.Market.AuctionHorizon())
	assert.Equal(t, 15*time.Second, cfg.Market.SweepEvery())
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	path := writeConfig(t, `
[market]
listing_duration = "three days"
`)
	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
}

func TestWebConfig_DefaultPort(t *testing.T) {
	assert.Equal(t, ":8080", WebConfig{}.Addr())
}
