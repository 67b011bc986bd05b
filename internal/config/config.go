package config

import (
	"fmt"
	"os"
	"strings"
)

type Config struct {
	// TrackerDatabaseURL points the deployment history store at Postgres.
	// When empty, the sqlite store at TrackerPath is used instead.
	TrackerDatabaseURL string
	TrackerPath        string

	TemporalAddress string
	TaskQueue       string
	HTTPListenAddr  string
	LogLevel        string
	ServiceName     string
	Environment     string

	// Provider credentials. The providers themselves are abstracted, but the
	// repository host and detector read these.
	GitHubToken string
	GitHubOwner string
	VercelToken string
	RenderToken string
}

func Load() (*Config, error) {
	cfg := &Config{
		TrackerDatabaseURL: getEnv("TRACKER_DATABASE_URL", ""),
		TrackerPath:        getEnv("TRACKER_PATH", ".deployments.db"),
		TemporalAddress:    getEnv("TEMPORAL_ADDRESS", "localhost:7233"),
		TaskQueue:          getEnv("TASK_QUEUE", "deployment-tasks"),
		HTTPListenAddr:     getEnv("HTTP_LISTEN_ADDR", ":8090"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		ServiceName:        getEnv("SERVICE_NAME", "deployd"),
		Environment:        getEnv("ENVIRONMENT", "production"),
		GitHubToken:        getEnv("GITHUB_TOKEN", ""),
		GitHubOwner:        getEnv("GITHUB_OWNER", ""),
		VercelToken:        getEnv("VERCEL_TOKEN", ""),
		RenderToken:        getEnv("RENDER_TOKEN", ""),
	}

	return cfg, nil
}

// Validate checks that the fields required by the given role are present.
// Roles: "worker", "migrate".
func (c *Config) Validate(role string) error {
	var missing []string

	switch role {
	case "worker":
		if c.TemporalAddress == "" {
			missing = append(missing, "TEMPORAL_ADDRESS")
		}
		if c.HTTPListenAddr == "" {
			missing = append(missing, "HTTP_LISTEN_ADDR")
		}
		if c.TrackerDatabaseURL == "" && c.TrackerPath == "" {
			missing = append(missing, "TRACKER_DATABASE_URL or TRACKER_PATH")
		}
	case "migrate":
		if c.TrackerDatabaseURL == "" && c.TrackerPath == "" {
			missing = append(missing, "TRACKER_DATABASE_URL or TRACKER_PATH")
		}
	default:
		return fmt.Errorf("unknown role %q", role)
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
