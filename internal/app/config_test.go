package app

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
	f := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(f, []byte(content), 0644))
	return f
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv(EnvGeminiAPIKey, "")
	t.Setenv(EnvTranscriptAPIKey, "")

	c, realpath, err := LoadConfig(writeConfig(t, "server:\n  http-port: :9100\n"))
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(realpath))
	assert.Equal(t, realpath, c.File)
	assert.Equal(t, ":9100", c.Server.HttpPort)
	assert.Equal(t, "sqlite", c.Database.Type)
	assert.True(t, c.Database.AutoMigrate)
	assert.Equal(t, 8000, c.Importer.MaxTranscriptChars)
	assert.Equal(t, "0 3 * * *", c.Export.Cron)
	assert.Equal(t, "localfs", c.Export.Storage.Type)
	assert.Equal(t, 365*24*time.Hour, c.GetTokenExpiry())
	assert.Equal(t, 30*24*time.Hour, c.GetImportRunRetention())
	assert.Equal(t, time.Second, c.GetRateLimitFill())
	assert.Equal(t, time.Minute, c.GetContextTimeout())
}

func TestLoadConfig_ExplicitFalseSurvives(t *testing.T) {
	c, _, err := LoadConfig(writeConfig(t, `
database:
  auto-migrate: false
user:
  register-is-enable: false
log:
  production: false
`))
	require.NoError(t, err)

	assert.False(t, c.Database.AutoMigrate)
	assert.False(t, c.User.RegisterIsEnable)
	assert.False(t, c.Log.Production)
}

func TestLoadConfig_EnvFillsEmptySecrets(t *testing.T) {
	t.Setenv(EnvGeminiAPIKey, "env-gemini")
	t.Setenv(EnvTranscriptAPIKey, "env-transcript")

	c, _, err := LoadConfig(writeConfig(t, "gemini:\n  api-key: yaml-gemini\n"))
	require.NoError(t, err)

	assert.Equal(t, "yaml-gemini", c.Gemini.APIKey)
	assert.Equal(t, "env-transcript", c.Transcript.APIKey)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, _, err = LoadConfig(writeConfig(t, "server: [unclosed"))
	assert.Error(t, err)
}

func TestAppConfig_QueueAndPoolOverrides(t *testing.T) {
	c, _, err := LoadConfig(writeConfig(t, `
app:
  worker-pool-max-workers: 3
  worker-pool-queue-size: 7
  write-queue-capacity: 9
  write-queue-timeout: 2s
  write-queue-idle-time: 1m
`))
	require.NoError(t, err)

	wp := c.GetWorkerPoolConfig()
	assert.Equal(t, 3, wp.MaxWorkers)
	assert.Equal(t, 7, wp.QueueSize)

	wq := c.GetWriteQueueConfig()
	assert.Equal(t, 9, wq.QueueCapacity)
	assert.Equal(t, 2*time.Second, wq.WriteTimeout)
	assert.Equal(t, time.Minute, wq.IdleTimeout)

	dc := c.Database.DaoConfig("debug")
	assert.Equal(t, "debug", dc.RunMode)
	assert.Equal(t, c.Database.Path, dc.Path)
}
