package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the client.
type Config struct {
	// APIURL is the backend base URL, including any path prefix.
	APIURL string

	// StateDir holds the persisted session and the log file.
	StateDir string

	// LogLevel is the zap level name ("debug", "info", "warn", "error").
	LogLevel string
}

const defaultAPIURL = "https://tickets-backend-production.up.railway.app/api"

// Load reads configuration from the environment, consulting a .env file when
// present and applying defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	stateDir := os.Getenv("MESA_STATE_DIR")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("config.Load: get home dir: %w", err)
		}
		stateDir = filepath.Join(home, ".mesa")
	}

	cfg := &Config{
		APIURL:   getEnv("MESA_API_URL", defaultAPIURL),
		StateDir: stateDir,
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
	return cfg, nil
}

// LogFile returns the path of the log file inside the state dir.
func (c *Config) LogFile() string {
	return filepath.Join(c.StateDir, "mesa.log")
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
