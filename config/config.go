/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
	"gopkg.in/yaml.v3"

	uerrors "github.com/suparena/ugcexport/errors"
	"github.com/suparena/ugcexport/export"
	"github.com/suparena/ugcexport/source/ddb"
)

// Config is the exporter configuration.
type Config struct {
	LogLevel string         `yaml:"logLevel"`
	LogFile  LogFileConfig  `yaml:"logFile"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Export   ExportConfig   `yaml:"export"`
	DynamoDB DynamoDBConfig `yaml:"dynamodb"`
}

// LogFileConfig holds configuration for log rotation. An empty Filename
// logs to stderr.
type LogFileConfig struct {
	Filename   string `yaml:"filename"`   // Log file path
	MaxSize    int    `yaml:"maxSize"`    // Maximum size in megabytes
	MaxBackups int    `yaml:"maxBackups"` // Maximum number of old log files to retain
	MaxAge     int    `yaml:"maxAge"`     // Maximum number of days to retain old log files
	Compress   bool   `yaml:"compress"`   // Compress old log files
}

// MetricsConfig configures metrics output.
type MetricsConfig struct {
	// Textfile is written in the Prometheus text format after each run
	// when set, for pickup by a node exporter textfile collector.
	Textfile string `yaml:"textfile"`
}

// ExportConfig configures record serialization.
type ExportConfig struct {
	ChunkSize        int      `yaml:"chunkSize"`
	MaxDepth         int      `yaml:"maxDepth"`
	Namespace        string   `yaml:"namespace"`
	ExcludedChildren []string `yaml:"excludedChildren"`
}

// DynamoDBConfig configures the DynamoDB node source.
type DynamoDBConfig struct {
	AccessKey           string        `yaml:"accessKey"`
	SecretKey           string        `yaml:"secretKey"`
	Region              string        `yaml:"region"`
	Table               string        `yaml:"table"`
	PageSize            int32         `yaml:"pageSize"`
	MaxRetries          *int          `yaml:"maxRetries"` // nil for the default, 0 disables retries
	RetryBackoff        time.Duration `yaml:"retryBackoff"`
	MaxNodes            int           `yaml:"maxNodes"`
	TimestampAttributes []string      `yaml:"timestampAttributes"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every unset field with its default.
func ApplyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFile.MaxSize == 0 {
		cfg.LogFile.MaxSize = 10
	}
	if cfg.LogFile.MaxBackups == 0 {
		cfg.LogFile.MaxBackups = 10
	}
	if cfg.LogFile.MaxAge == 0 {
		cfg.LogFile.MaxAge = 30
	}
	if cfg.Export.ChunkSize == 0 {
		cfg.Export.ChunkSize = export.DefaultChunkSize
	}
	if cfg.Export.Namespace == "" {
		cfg.Export.Namespace = export.DefaultNamespace
	}

	defaults := ddb.DefaultOptions()
	if cfg.DynamoDB.PageSize == 0 {
		cfg.DynamoDB.PageSize = defaults.PageSize
	}
	if cfg.DynamoDB.MaxRetries == nil {
		retries := defaults.MaxRetries
		cfg.DynamoDB.MaxRetries = &retries
	}
	if cfg.DynamoDB.RetryBackoff == 0 {
		cfg.DynamoDB.RetryBackoff = defaults.RetryBackoff
	}
}

// Load reads the YAML file at path, then the optional dotenv files (".env"
// when none are named), then applies environment overrides and validates.
// An empty path yields the defaults plus environment overrides.
//
// Dotenv values never replace variables already set in the environment.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}
	ApplyDefaults(cfg)

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, name := range envFiles {
		if err := godotenv.Load(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %q: %w", name, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if val := os.Getenv("AWS_ACCESS_KEY"); val != "" {
		cfg.DynamoDB.AccessKey = val
	}
	if val := os.Getenv("AWS_SECRET_KEY"); val != "" {
		cfg.DynamoDB.SecretKey = val
	}
	if val := os.Getenv("AWS_REGION"); val != "" {
		cfg.DynamoDB.Region = val
	}
	if val := os.Getenv("AWS_DDB_TABLE"); val != "" {
		cfg.DynamoDB.Table = val
	}
	if val := os.Getenv("UGCEXPORT_CHUNK_SIZE"); val != "" {
		size, err := strconv.Atoi(val)
		if err != nil {
			return uerrors.NewValidationError("UGCEXPORT_CHUNK_SIZE", fmt.Sprintf("not an integer: %q", val))
		}
		cfg.Export.ChunkSize = size
	}
	if val := os.Getenv("UGCEXPORT_LOG_LEVEL"); val != "" {
		cfg.LogLevel = val
	}
	if val := os.Getenv("UGCEXPORT_LOG_FILE"); val != "" {
		cfg.LogFile.Filename = val
	}
	if val := os.Getenv("UGCEXPORT_METRICS_TEXTFILE"); val != "" {
		cfg.Metrics.Textfile = val
	}
	return nil
}

// Validate checks the configuration for values the exporter cannot run with.
func (c *Config) Validate() error {
	if err := export.ValidateChunkSize(c.Export.ChunkSize); err != nil {
		return err
	}
	if c.Export.MaxDepth < 0 {
		return uerrors.NewValidationError("maxDepth", "must not be negative")
	}
	if c.Export.Namespace == "" {
		return uerrors.NewValidationError("namespace", "must not be empty")
	}
	if c.LogFile.MaxSize < 0 || c.LogFile.MaxBackups < 0 || c.LogFile.MaxAge < 0 {
		return uerrors.NewValidationError("logFile", "rotation limits must not be negative")
	}
	if c.DynamoDB.PageSize < 0 {
		return uerrors.NewValidationError("pageSize", "must not be negative")
	}
	if c.DynamoDB.MaxRetries != nil && *c.DynamoDB.MaxRetries < 0 {
		return uerrors.NewValidationError("maxRetries", "must not be negative")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return uerrors.NewValidationError("logLevel", err.Error())
	}
	return nil
}

// Level returns the configured log level. Validate has already rejected
// unknown names, so a parse failure falls back to info.
func (c *Config) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// NewLogger creates a logger at the configured level. It writes to a
// rotating log file when one is configured, else to stderr.
func (c *Config) NewLogger(stderr io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(c.Level())
	if c.LogFile.Filename == "" {
		logger.SetOutput(stderr)
		return logger
	}
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(&lumberjack.Logger{
		Filename:   c.LogFile.Filename,
		MaxSize:    c.LogFile.MaxSize,
		MaxBackups: c.LogFile.MaxBackups,
		MaxAge:     c.LogFile.MaxAge,
		Compress:   c.LogFile.Compress,
	})
	return logger
}

// ExportOptions converts the export section into serializer options.
func (c *Config) ExportOptions(logger *logrus.Entry) []export.Option {
	opts := []export.Option{
		export.WithChunkSize(c.Export.ChunkSize),
		export.WithMaxDepth(c.Export.MaxDepth),
		export.WithNamespace(c.Export.Namespace),
	}
	if len(c.Export.ExcludedChildren) > 0 {
		opts = append(opts, export.WithExcludedChildren(c.Export.ExcludedChildren...))
	}
	if logger != nil {
		opts = append(opts, export.WithLogger(logger))
	}
	return opts
}

// SourceOptions converts the dynamodb section into source options.
func (c *Config) SourceOptions(logger *logrus.Entry) []ddb.Option {
	opts := []ddb.Option{
		ddb.WithPageSize(c.DynamoDB.PageSize),
		ddb.WithRetryBackoff(c.DynamoDB.RetryBackoff),
		ddb.WithMaxNodes(c.DynamoDB.MaxNodes),
		ddb.WithTimestampAttributes(c.DynamoDB.TimestampAttributes...),
	}
	if c.DynamoDB.MaxRetries != nil {
		opts = append(opts, ddb.WithMaxRetries(*c.DynamoDB.MaxRetries))
	}
	if logger != nil {
		opts = append(opts, ddb.WithLogger(logger))
	}
	return opts
}
