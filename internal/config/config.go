// Package config provides configuration loading and validation for the
// chunkpace CLI.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrInvalidMode    = errors.New("invalid chunking mode")
	ErrInvalidPercent = errors.New("chunking percent must be positive")
	ErrInvalidSize    = errors.New("invalid size format")
)

// Chunking mode names accepted in configuration and flags.
const (
	ModeAuto    = "auto"
	ModePercent = "percent"
	ModeBytes   = "bytes"
)

// Default configuration values.
const (
	defaultMode     = ModeAuto
	defaultPercent  = 10.0
	defaultLogLevel = "info"
	defaultLogForm  = "text"
)

// Config holds all configuration for the chunkpace CLI.
type Config struct {
	Chunking ChunkingConfig `mapstructure:"chunking"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ChunkingConfig holds default chunk sizing settings, overridable per
// invocation by flags.
type ChunkingConfig struct {
	// Mode is one of auto, percent or bytes.
	Mode string `mapstructure:"mode"`

	// Percent is the chunk fraction used in percent mode.
	Percent float64 `mapstructure:"percent"`

	// Bytes is the fixed chunk size used in bytes mode, in humanize
	// format (e.g. "4MiB", "250KB").
	Bytes string `mapstructure:"bytes"`

	// IncludeSwap adds free swap capacity to the memory budget.
	IncludeSwap bool `mapstructure:"include_swap"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads configuration from defaults, an optional YAML file and
// CHUNKPACE_* environment variables.
func Load(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("chunkpace")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("/etc/chunkpace")
	}

	viperCfg.SetEnvPrefix("CHUNKPACE")
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validate(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("chunking.mode", defaultMode)
	viperCfg.SetDefault("chunking.percent", defaultPercent)
	viperCfg.SetDefault("chunking.bytes", "")
	viperCfg.SetDefault("chunking.include_swap", false)

	viperCfg.SetDefault("logging.level", defaultLogLevel)
	viperCfg.SetDefault("logging.format", defaultLogForm)
}

func validate(config *Config) error {
	switch config.Chunking.Mode {
	case ModeAuto, ModePercent, ModeBytes:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMode, config.Chunking.Mode)
	}

	if config.Chunking.Percent <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidPercent, config.Chunking.Percent)
	}

	if config.Chunking.Bytes != "" {
		_, err := humanize.ParseBytes(config.Chunking.Bytes)
		if err != nil {
			return fmt.Errorf("%w for chunking.bytes: %s", ErrInvalidSize, config.Chunking.Bytes)
		}
	}

	return nil
}
