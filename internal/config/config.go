// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sethvargo/go-envconfig"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"fliprotate/internal/host"
)

// Config holds the host-side paths and integrations.
type Config struct {
	// Library settings
	LibraryDir string `env:"LIBRARY_DIR, default=fliprotated"`
	TempDir    string `env:"TEMP_DIR"`

	// Settings store location; empty resolves under the user config dir.
	SettingsPath string `env:"SETTINGS"`

	// Logging settings
	LogFile  string `env:"LOG_FILE"`
	LogLevel string `env:"LOG_LEVEL, default=info"` // "debug", "info", "warn", "error"

	// Optional S3 settings
	S3Bucket   string `env:"S3_BUCKET"`
	S3Region   string `env:"S3_REGION"`
	S3Prefix   string `env:"S3_PREFIX"`
	S3Endpoint string `env:"S3_ENDPOINT"`

	// Static credentials; when empty the default AWS credential chain applies.
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
}

// EnvPrefix is prepended to every variable.
const EnvPrefix = "FLIPROTATE_"

// Load reads configuration from FLIPROTATE_* environment variables.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	cfg := &Config{}
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   cfg,
		Lookuper: envconfig.PrefixLookuper(EnvPrefix, lookuper),
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if cfg.SettingsPath == "" {
		cfg.SettingsPath = defaultSettingsPath()
	}
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(os.TempDir(), "fliprotate.log")
	}
	return cfg, nil
}

// S3Enabled returns true if a bucket is configured.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != ""
}

func (c *Config) S3() host.S3Config {
	return host.S3Config{
		Bucket:          c.S3Bucket,
		Region:          c.S3Region,
		Prefix:          c.S3Prefix,
		Endpoint:        c.S3Endpoint,
		AccessKeyID:     c.S3AccessKeyID,
		SecretAccessKey: c.S3SecretAccessKey,
	}
}

// NewLogger builds a JSON zap logger writing to LogFile.
func (c *Config) NewLogger(verbose bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	level := parseLogLevel(c.LogLevel)
	if verbose {
		level = zapcore.DebugLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.OutputPaths = []string{c.LogFile}
	zcfg.ErrorOutputPaths = []string{c.LogFile}
	zcfg.Sampling = nil
	return zcfg.Build()
}

func parseLogLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func defaultSettingsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "fliprotate", "settings.json")
}
