package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no tracker.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "items.json", cfg.ItemsFile)
	assert.Equal(t, "price_history.json", cfg.HistoryFile)
	assert.Equal(t, 0, cfg.History.MaxPoints)
	assert.Equal(t, 15*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, 5, cfg.Fetch.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.Fetch.InitialBackoff)
	assert.Equal(t, 30*time.Second, cfg.Fetch.MaxBackoff)
	assert.InDelta(t, 0.5, cfg.Fetch.PerHostRPS, 0.001)
	assert.Equal(t, 1, cfg.Fetch.Burst)
	assert.Equal(t, 2*time.Second, cfg.Cycle.DelayMin)
	assert.Equal(t, 5*time.Second, cfg.Cycle.DelayMax)
	assert.Equal(t, "@every 30m", cfg.Watch.Schedule)
	assert.True(t, cfg.Watch.RunOnStart)
	assert.True(t, cfg.Notify.Desktop)
	assert.Empty(t, cfg.Notify.WebhookURL)
	assert.Equal(t, "sqlite", cfg.Journal.Driver)
	assert.Equal(t, "tracker.db", cfg.Journal.DatabaseURL)
	assert.Equal(t, 8099, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
items_file: watchlist.json
fetch:
  timeout: 30s
  max_retries: 3
cycle:
  delay_min: 0s
  delay_max: 0s
journal:
  driver: none
log:
  level: debug
  format: json
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tracker.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "watchlist.json", cfg.ItemsFile)
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, 3, cfg.Fetch.MaxRetries)
	assert.Zero(t, cfg.Cycle.DelayMax)
	assert.Equal(t, "none", cfg.Journal.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Defaults still apply for unset values
	assert.Equal(t, "price_history.json", cfg.HistoryFile)
	assert.Equal(t, 2*time.Second, cfg.Fetch.InitialBackoff)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
journal:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tracker.yaml"), []byte(yaml), 0644))

	t.Setenv("TRACKER_JOURNAL_DRIVER", "none")
	t.Setenv("TRACKER_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "none", cfg.Journal.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("TRACKER_SERVER_PORT", "3000")
	t.Setenv("TRACKER_FETCH_TIMEOUT", "45s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 45*time.Second, cfg.Fetch.Timeout)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.ItemsFile = "items.json"
	cfg.HistoryFile = "price_history.json"
	cfg.Fetch.Timeout = 15 * time.Second
	cfg.Fetch.MaxRetries = 5
	cfg.Cycle.DelayMin = 2 * time.Second
	cfg.Cycle.DelayMax = 5 * time.Second
	cfg.Watch.Schedule = "@every 30m"
	cfg.Journal.Driver = "sqlite"
	cfg.Server.Port = 8099
	return cfg
}

func TestValidateCheckMode(t *testing.T) {
	assert.NoError(t, validDefaults().Validate("check"))
}

func TestValidateMissingFiles(t *testing.T) {
	cfg := validDefaults()
	cfg.ItemsFile = ""
	cfg.HistoryFile = ""

	err := cfg.Validate("check")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "items_file is required")
	assert.Contains(t, err.Error(), "history_file is required")
}

func TestValidateRetryBounds(t *testing.T) {
	cfg := validDefaults()

	cfg.Fetch.MaxRetries = 0
	err := cfg.Validate("check")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "fetch.max_retries must be between 1 and 10")

	cfg.Fetch.MaxRetries = 11
	err = cfg.Validate("check")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "fetch.max_retries must be between 1 and 10")

	cfg.Fetch.MaxRetries = 10
	assert.NoError(t, cfg.Validate("check"))
}

func TestValidateDelayBounds(t *testing.T) {
	cfg := validDefaults()
	cfg.Cycle.DelayMin = 5 * time.Second
	cfg.Cycle.DelayMax = 2 * time.Second

	err := cfg.Validate("check")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle.delay_max")
}

func TestValidateJournalDriver(t *testing.T) {
	cfg := validDefaults()

	cfg.Journal.Driver = "oracle"
	err := cfg.Validate("check")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "journal.driver")

	cfg.Journal.Driver = "postgres"
	cfg.Journal.DatabaseURL = ""
	err = cfg.Validate("check")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "journal.database_url is required")

	cfg.Journal.DatabaseURL = "postgres://localhost/tracker"
	assert.NoError(t, cfg.Validate("check"))
}

func TestValidateWatchSchedule(t *testing.T) {
	cfg := validDefaults()
	cfg.Watch.Schedule = ""

	assert.NoError(t, cfg.Validate("check"))

	err := cfg.Validate("watch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watch.schedule is required")
}

func TestValidateServePort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	assert.NoError(t, cfg.Validate("check"))

	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateUnknownMode(t *testing.T) {
	err := validDefaults().Validate("unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
