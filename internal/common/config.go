package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	Environment string        `toml:"environment" validate:"oneof=development production"`
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Source      SourceConfig  `toml:"source"`
	Sync        SyncConfig    `toml:"sync"`
	Logging     LoggingConfig `toml:"logging"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gt=0,lte=65535"`
	Host string `toml:"host" validate:"required"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"`
	ResetOnStartup bool   `toml:"reset_on_startup"`
	GCInterval     string `toml:"gc_interval"` // e.g. "1h" - value-log GC cadence, empty disables
}

// SourceConfig configures access to the federation data source.
// The source blocks plain HTTP clients, so pages are always fetched
// through a headless browser session.
type SourceConfig struct {
	BaseURL     string        `toml:"base_url" validate:"required,url"`
	UserAgent   string        `toml:"user_agent"`
	Headless    bool          `toml:"headless"`
	NoSandbox   bool          `toml:"no_sandbox"`
	FetchDelay  time.Duration `toml:"fetch_delay"`  // delay between horses, anti-automation pacing
	PageTimeout time.Duration `toml:"page_timeout"` // per-page navigation timeout
	RenderWait  time.Duration `toml:"render_wait"`  // wait after navigation for tables to render
}

type SyncConfig struct {
	NightlyEnabled  bool   `toml:"nightly_enabled"`
	NightlySchedule string `toml:"nightly_schedule"` // standard 5-field cron expression
}

type LoggingConfig struct {
	Level  string   `toml:"level" validate:"oneof=debug info warn error"`
	Format string   `toml:"format" validate:"oneof=text json"`
	Output []string `toml:"output"` // "stdout", "file"
}

// NewDefaultConfig creates a configuration with default values.
// Technical parameters are hardcoded here for production stability;
// only user-facing settings should be exposed in safkan.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8085,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path:       "./data",
				GCInterval: "1h",
			},
		},
		Source: SourceConfig{
			BaseURL:     "https://www.tjk.org",
			UserAgent:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			Headless:    true,
			NoSandbox:   false,
			FetchDelay:  1 * time.Second, // deliberate throughput/robustness trade-off
			PageTimeout: 30 * time.Second,
			RenderWait:  2 * time.Second,
		},
		Sync: SyncConfig{
			NightlyEnabled:  true,
			NightlySchedule: "0 3 * * *", // 03:00 every night
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout", "file"},
		},
	}
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
// An empty path loads defaults plus environment overrides only.
func LoadFromFile(path string) (*Config, error) {
	config := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	// Environment selection (highest priority: SAFKAN_ENV, fallback: GO_ENV)
	if env := os.Getenv("SAFKAN_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("SAFKAN_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("SAFKAN_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	if badgerPath := os.Getenv("SAFKAN_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	if baseURL := os.Getenv("SAFKAN_SOURCE_BASE_URL"); baseURL != "" {
		config.Source.BaseURL = baseURL
	}
	if userAgent := os.Getenv("SAFKAN_SOURCE_USER_AGENT"); userAgent != "" {
		config.Source.UserAgent = userAgent
	}
	if headless := os.Getenv("SAFKAN_SOURCE_HEADLESS"); headless != "" {
		if h, err := strconv.ParseBool(headless); err == nil {
			config.Source.Headless = h
		}
	}
	if delay := os.Getenv("SAFKAN_SOURCE_FETCH_DELAY"); delay != "" {
		if d, err := time.ParseDuration(delay); err == nil {
			config.Source.FetchDelay = d
		}
	}

	if schedule := os.Getenv("SAFKAN_SYNC_NIGHTLY_SCHEDULE"); schedule != "" {
		config.Sync.NightlySchedule = schedule
	}
	if enabled := os.Getenv("SAFKAN_SYNC_NIGHTLY_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.Sync.NightlyEnabled = e
		}
	}

	if level := os.Getenv("SAFKAN_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("SAFKAN_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if output := os.Getenv("SAFKAN_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}
}

// Validate checks struct tags and the nightly cron expression
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Sync.NightlyEnabled && c.Sync.NightlySchedule != "" {
		parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
		if _, err := parser.Parse(c.Sync.NightlySchedule); err != nil {
			return fmt.Errorf("invalid nightly schedule %q: %w", c.Sync.NightlySchedule, err)
		}
	}

	if c.Source.FetchDelay < 0 {
		return fmt.Errorf("source fetch_delay cannot be negative")
	}

	return nil
}

// IsProduction reports whether the configured environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
