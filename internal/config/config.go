package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"skillpath_quiz/internal/logger"
)

const envPrefix = "SKILLPATH"

// Config is the process configuration read from SKILLPATH_* variables.
type Config struct {
	Log      logger.Config  `envconfig:"LOG"`
	Content  ContentConfig  `envconfig:"CONTENT"`
	Progress ProgressConfig `envconfig:"PROGRESS"`
	Results  ResultsConfig  `envconfig:"RESULTS"`
	HTTP     HTTPConfig     `envconfig:"HTTP"`
}

// ContentConfig locates the quiz catalog and scene files. An empty
// ContentDir serves the content embedded in the binary.
type ContentConfig struct {
	ContentDir  string `envconfig:"DIR"`
	CatalogPath string `envconfig:"CATALOG_PATH" default:"quiz.yaml"`
}

// ProgressConfig selects where in-progress sessions live.
type ProgressConfig struct {
	Backend    string        `envconfig:"BACKEND" default:"memory"`
	RedisURL   string        `envconfig:"REDIS_URL"`
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"0s"`
	LockTTL    time.Duration `envconfig:"LOCK_TTL" default:"10s"`
}

// ResultsConfig selects where finished quizzes are recorded.
type ResultsConfig struct {
	Backend    string `envconfig:"BACKEND" default:"memory"`
	Dir        string `envconfig:"DIR" default:"data/results"`
	SQLitePath string `envconfig:"SQLITE_PATH" default:"data/results.db"`
}

// HTTPConfig configures the chat transport listener.
type HTTPConfig struct {
	Addr            string        `envconfig:"ADDR" default:":8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// Load reads envFiles (missing files are skipped) and then the environment.
func Load(envFiles ...string) (*Config, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error loading %s: %w", file, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("error processing environment configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks backend selections and their required settings.
func (c *Config) Validate() error {
	c.Progress.Backend = strings.ToLower(strings.TrimSpace(c.Progress.Backend))
	c.Results.Backend = strings.ToLower(strings.TrimSpace(c.Results.Backend))

	switch c.Progress.Backend {
	case "memory":
	case "redis":
		if c.Progress.RedisURL == "" {
			return fmt.Errorf("%s_PROGRESS_REDIS_URL is required for the redis progress backend", envPrefix)
		}
	default:
		return fmt.Errorf("unknown progress backend %q (want memory or redis)", c.Progress.Backend)
	}

	switch c.Results.Backend {
	case "memory":
	case "file":
		if c.Results.Dir == "" {
			return fmt.Errorf("%s_RESULTS_DIR is required for the file results backend", envPrefix)
		}
	case "sqlite":
		if c.Results.SQLitePath == "" {
			return fmt.Errorf("%s_RESULTS_SQLITE_PATH is required for the sqlite results backend", envPrefix)
		}
	default:
		return fmt.Errorf("unknown results backend %q (want memory, file or sqlite)", c.Results.Backend)
	}
	return nil
}
