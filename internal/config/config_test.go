package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("TRACKER_DATABASE_URL")
	os.Unsetenv("TRACKER_PATH")
	os.Unsetenv("TEMPORAL_ADDRESS")
	os.Unsetenv("TASK_QUEUE")
	os.Unsetenv("HTTP_LISTEN_ADDR")
	os.Unsetenv("LOG_LEVEL")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "", cfg.TrackerDatabaseURL)
	assert.Equal(t, ".deployments.db", cfg.TrackerPath)
	assert.Equal(t, "localhost:7233", cfg.TemporalAddress)
	assert.Equal(t, "deployment-tasks", cfg.TaskQueue)
	assert.Equal(t, ":8090", cfg.HTTPListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_AllEnvVars(t *testing.T) {
	t.Setenv("TRACKER_DATABASE_URL", "postgres://deploy:5432/tracker")
	t.Setenv("TEMPORAL_ADDRESS", "temporal.example.com:7233")
	t.Setenv("TASK_QUEUE", "deploys")
	t.Setenv("HTTP_LISTEN_ADDR", ":7071")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("GITHUB_TOKEN", "ghp_test")
	t.Setenv("GITHUB_OWNER", "acme")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://deploy:5432/tracker", cfg.TrackerDatabaseURL)
	assert.Equal(t, "temporal.example.com:7233", cfg.TemporalAddress)
	assert.Equal(t, "deploys", cfg.TaskQueue)
	assert.Equal(t, ":7071", cfg.HTTPListenAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "ghp_test", cfg.GitHubToken)
	assert.Equal(t, "acme", cfg.GitHubOwner)
}

func TestValidate_Worker_MissingFields(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate("worker")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TEMPORAL_ADDRESS")
	assert.Contains(t, err.Error(), "HTTP_LISTEN_ADDR")
}

func TestValidate_Worker_SqliteFallback(t *testing.T) {
	cfg := &Config{
		TemporalAddress: "localhost:7233",
		HTTPListenAddr:  ":8090",
		TrackerPath:     ".deployments.db",
	}
	assert.NoError(t, cfg.Validate("worker"))
}

func TestValidate_UnknownRole(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate("control-tower")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown role")
}

func TestValidate_AllPresent(t *testing.T) {
	cfg := &Config{
		TrackerDatabaseURL: "postgres://localhost/tracker",
		TemporalAddress:    "localhost:7233",
		HTTPListenAddr:     ":8090",
	}
	assert.NoError(t, cfg.Validate("worker"))
	assert.NoError(t, cfg.Validate("migrate"))
}
