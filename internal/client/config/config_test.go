package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, 6, c.PageSize)
	assert.Equal(t, BackendWalrus, c.BlobBackend)
	assert.Equal(t, 5, c.Epochs)
	assert.Equal(t, "sui:testnet", c.Network)
	assert.Equal(t, 5*time.Second, c.OnlineCheckInterval)
	assert.Zero(t, c.InlineContentLimit)
	require.NoError(t, c.Validate())
}

func TestLoadConfig_DefaultsWithoutSources(t *testing.T) {
	cfg, err := LoadConfig(nil)
	require.NoError(t, err)

	var want Config
	want.LoadDefaults()
	assert.Equal(t, &want, cfg)
}

func TestLoadConfig_Precedence(t *testing.T) {
	path := writeTempJSON(t, "", "", map[string]any{
		"rpc_url":   "https://from-file",
		"page_size": 10,
		"db_path":   "file.db",
	})
	t.Setenv("SUIBLOG_PAGE_SIZE", "12")
	t.Setenv("SUIBLOG_DB_PATH", "env.db")

	cfg, err := LoadConfig([]string{"-c", path, "-d", "flag.db"})
	require.NoError(t, err)

	assert.Equal(t, "https://from-file", cfg.RPCURL)
	assert.Equal(t, 12, cfg.PageSize)
	assert.Equal(t, "flag.db", cfg.DBPath)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"package id", func(c *Config) { c.PackageID = "" }, "package_id"},
		{"rpc url", func(c *Config) { c.RPCURL = "" }, "rpc_url"},
		{"page size", func(c *Config) { c.PageSize = 0 }, "page_size"},
		{"epochs", func(c *Config) { c.Epochs = -1 }, "epochs"},
		{"inline limit", func(c *Config) { c.InlineContentLimit = -5 }, "inline_content_limit"},
		{"backend", func(c *Config) { c.BlobBackend = "ipfs" }, "blob_backend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			tt.mutate(&c)
			assert.ErrorContains(t, c.Validate(), tt.want)
		})
	}
}

func TestLoadConfig_InvalidResult(t *testing.T) {
	_, err := LoadConfig([]string{"-p", "0"})
	assert.ErrorContains(t, err, "invalid config")
}
