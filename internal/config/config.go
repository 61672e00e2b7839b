package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	ItemsFile   string        `yaml:"items_file" mapstructure:"items_file"`
	HistoryFile string        `yaml:"history_file" mapstructure:"history_file"`
	History     HistoryConfig `yaml:"history" mapstructure:"history"`
	Fetch       FetchConfig   `yaml:"fetch" mapstructure:"fetch"`
	Extract     ExtractConfig `yaml:"extract" mapstructure:"extract"`
	Cycle       CycleConfig   `yaml:"cycle" mapstructure:"cycle"`
	Watch       WatchConfig   `yaml:"watch" mapstructure:"watch"`
	Notify      NotifyConfig  `yaml:"notify" mapstructure:"notify"`
	Journal     JournalConfig `yaml:"journal" mapstructure:"journal"`
	Server      ServerConfig  `yaml:"server" mapstructure:"server"`
	Log         LogConfig     `yaml:"log" mapstructure:"log"`
}

// HistoryConfig configures the price history store.
type HistoryConfig struct {
	// MaxPoints caps stored observations per item. Zero keeps everything.
	MaxPoints int `yaml:"max_points" mapstructure:"max_points"`
}

// FetchConfig configures page fetching and retries.
type FetchConfig struct {
	Timeout        time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxRetries     int           `yaml:"max_retries" mapstructure:"max_retries"`
	InitialBackoff time.Duration `yaml:"initial_backoff" mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff" mapstructure:"max_backoff"`
	PerHostRPS     float64       `yaml:"per_host_rps" mapstructure:"per_host_rps"`
	Burst          int           `yaml:"burst" mapstructure:"burst"`
}

// ExtractConfig configures price extraction.
type ExtractConfig struct {
	// RulesFile points at an optional YAML file overriding the built-in
	// CSS selector chains per platform.
	RulesFile string `yaml:"rules_file" mapstructure:"rules_file"`
}

// CycleConfig configures pacing inside a tracking cycle.
type CycleConfig struct {
	DelayMin time.Duration `yaml:"delay_min" mapstructure:"delay_min"`
	DelayMax time.Duration `yaml:"delay_max" mapstructure:"delay_max"`
}

// WatchConfig configures the scheduled watch mode.
type WatchConfig struct {
	Schedule   string `yaml:"schedule" mapstructure:"schedule"`
	RunOnStart bool   `yaml:"run_on_start" mapstructure:"run_on_start"`
}

// NotifyConfig configures alert delivery sinks.
type NotifyConfig struct {
	Desktop    bool   `yaml:"desktop" mapstructure:"desktop"`
	WebhookURL string `yaml:"webhook_url" mapstructure:"webhook_url"`
}

// JournalConfig configures the check audit trail backend.
type JournalConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("tracker")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("TRACKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("items_file", "items.json")
	v.SetDefault("history_file", "price_history.json")
	v.SetDefault("history.max_points", 0)
	v.SetDefault("fetch.timeout", "15s")
	v.SetDefault("fetch.max_retries", 5)
	v.SetDefault("fetch.initial_backoff", "2s")
	v.SetDefault("fetch.max_backoff", "30s")
	v.SetDefault("fetch.per_host_rps", 0.5)
	v.SetDefault("fetch.burst", 1)
	v.SetDefault("extract.rules_file", "")
	v.SetDefault("cycle.delay_min", "2s")
	v.SetDefault("cycle.delay_max", "5s")
	v.SetDefault("watch.schedule", "@every 30m")
	v.SetDefault("watch.run_on_start", true)
	v.SetDefault("notify.desktop", true)
	v.SetDefault("notify.webhook_url", "")
	v.SetDefault("journal.driver", "sqlite")
	v.SetDefault("journal.database_url", "tracker.db")
	v.SetDefault("server.port", 8099)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks configuration consistency for the given mode
// ("check", "watch" or "serve").
func (c *Config) Validate(mode string) error {
	switch mode {
	case "check", "watch", "serve":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	var problems []string

	if c.ItemsFile == "" {
		problems = append(problems, "items_file is required")
	}
	if c.HistoryFile == "" {
		problems = append(problems, "history_file is required")
	}
	if c.Fetch.MaxRetries < 1 || c.Fetch.MaxRetries > 10 {
		problems = append(problems, "fetch.max_retries must be between 1 and 10")
	}
	if c.Fetch.Timeout <= 0 {
		problems = append(problems, "fetch.timeout must be > 0")
	}
	if c.Cycle.DelayMin < 0 || c.Cycle.DelayMax < c.Cycle.DelayMin {
		problems = append(problems, "cycle.delay_max must be >= cycle.delay_min >= 0")
	}

	switch c.Journal.Driver {
	case "", "none", "sqlite":
	case "postgres":
		if c.Journal.DatabaseURL == "" {
			problems = append(problems, "journal.database_url is required for the postgres driver")
		}
	default:
		problems = append(problems, "journal.driver must be sqlite, postgres or none")
	}

	if mode == "watch" && c.Watch.Schedule == "" {
		problems = append(problems, "watch.schedule is required")
	}
	if mode == "serve" && c.Server.Port <= 0 {
		problems = append(problems, "server.port must be > 0")
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
