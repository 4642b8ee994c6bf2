package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the full runtime configuration, loaded from dmtrace.yaml with
// DMTRACE_-prefixed environment overrides.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	SQLLogDir string          `mapstructure:"sqllog_dir"`
	ChunkSize int             `mapstructure:"chunk_size"`
	Threads   int             `mapstructure:"threads"`
	QueueSize int             `mapstructure:"queue_size"`
	ErrorsOut string          `mapstructure:"errors_out"`
	Exporters ExportersConfig `mapstructure:"exporters"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Stdout     bool   `mapstructure:"stdout"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ExportersConfig holds one optional block per sink. A nil block means the
// sink is not used.
type ExportersConfig struct {
	CSV      *CSVConfig      `mapstructure:"csv"`
	JSON     *JSONConfig     `mapstructure:"json"`
	SQLite   *SQLiteConfig   `mapstructure:"sqlite"`
	Postgres *PostgresConfig `mapstructure:"postgres"`
}

type CSVConfig struct {
	Path   string `mapstructure:"path"`
	Append bool   `mapstructure:"append"`
}

type JSONConfig struct {
	Path   string `mapstructure:"path"`
	Append bool   `mapstructure:"append"`
}

type SQLiteConfig struct {
	Path   string `mapstructure:"path"`
	Table  string `mapstructure:"table"`
	Append bool   `mapstructure:"append"`
}

type PostgresConfig struct {
	URL    string `mapstructure:"url"`
	Table  string `mapstructure:"table"`
	Append bool   `mapstructure:"append"`
}

// Load reads configuration from path, or from dmtrace.yaml in the working
// directory when path is empty. A missing default file is not an error;
// defaults and environment variables still apply.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.stdout", true)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("log.compress", false)
	v.SetDefault("sqllog_dir", ".")
	v.SetDefault("chunk_size", 1000)
	v.SetDefault("threads", 0)
	v.SetDefault("queue_size", 16)
	v.SetDefault("errors_out", "")

	v.SetEnvPrefix("DMTRACE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("dmtrace")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	if c.ChunkSize < 0 {
		return fmt.Errorf("chunk_size must be >= 0, got %d", c.ChunkSize)
	}
	if c.Threads < 0 {
		return fmt.Errorf("threads must be >= 0, got %d", c.Threads)
	}
	if c.QueueSize < 0 {
		return fmt.Errorf("queue_size must be >= 0, got %d", c.QueueSize)
	}
	if c.Exporters.Postgres != nil && c.Exporters.Postgres.URL == "" {
		return fmt.Errorf("exporters.postgres.url is required when the postgres block is set")
	}
	return nil
}
