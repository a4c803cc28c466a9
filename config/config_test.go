package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/launchsync/launch"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, launch.Descending, cfg.Sync.Order())
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
  format: json
database:
  backend: memory
remote:
  base_url: http://localhost:9000/2.2.0
  timeout: 5s
sync:
  page_size: 10
  fetch_timeout: 2s
  stale_after: 12h
  past_order: asc
server:
  addr: 0.0.0.0:9090
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "stderr", cfg.Logging.Output)
	assert.Equal(t, "memory", cfg.Database.Backend)
	assert.Equal(t, "http://localhost:9000/2.2.0", cfg.Remote.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Remote.Timeout)
	assert.Equal(t, 10, cfg.Sync.PageSize)
	assert.Equal(t, 12*time.Hour, cfg.Sync.StaleAfter)
	assert.Equal(t, launch.Ascending, cfg.Sync.Order())
	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr)

	sc := cfg.Sync.Coordinator()
	assert.Equal(t, 10, sc.PageSize)
	assert.Equal(t, 2*time.Second, sc.FetchTimeout)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "sync:\n  page_size: 10\n")
	t.Setenv("LAUNCHSYNC_SYNC_PAGE_SIZE", "40")
	t.Setenv("LAUNCHSYNC_DATABASE_PATH", "/var/lib/launchsync/cache.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Sync.PageSize)
	assert.Equal(t, "/var/lib/launchsync/cache.db", cfg.Database.Path)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(c *Config)
		valid  bool
	}{
		{name: "defaults", mutate: func(*Config) {}, valid: true},
		{name: "memory without path", mutate: func(c *Config) { c.Database.Backend = "memory"; c.Database.Path = "" }, valid: true},
		{name: "sqlite without path", mutate: func(c *Config) { c.Database.Path = "" }},
		{name: "unknown backend", mutate: func(c *Config) { c.Database.Backend = "postgres" }},
		{name: "zero page size", mutate: func(c *Config) { c.Sync.PageSize = 0 }},
		{name: "oversized page", mutate: func(c *Config) { c.Sync.PageSize = 500 }},
		{name: "bad base url", mutate: func(c *Config) { c.Remote.BaseURL = "not a url" }},
		{name: "bad order", mutate: func(c *Config) { c.Sync.PastOrder = "sideways" }},
		{name: "bad log level", mutate: func(c *Config) { c.Logging.Level = "TRACE" }},
		{name: "zero stale window", mutate: func(c *Config) { c.Sync.StaleAfter = 0 }},
		{name: "bad addr", mutate: func(c *Config) { c.Server.Addr = "nowhere" }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := Validate(cfg)
			if tc.valid {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
		})
	}
}
