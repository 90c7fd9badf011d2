// Package config loads batchguard configuration from an optional YAML file,
// an optional .env file and BATCHGUARD_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/harshithgowdakt/batchguard/internal/logger"
)

// EnvPrefix is prepended to every environment variable key.
const EnvPrefix = "BATCHGUARD"

// Config is the root configuration.
type Config struct {
	Exec    ExecConfig    `mapstructure:"exec"`
	Logging logger.Config `mapstructure:"logging"`
}

// ExecConfig controls fragment execution.
type ExecConfig struct {
	Debug DebugConfig `mapstructure:"debug"`
	// Compression names the codec used for outgoing batch frames.
	Compression string `mapstructure:"compression" validate:"oneof=none lz4 zstd snappy"`
	// Parallelism caps concurrently running fragments; 0 means unbounded.
	Parallelism int `mapstructure:"parallelism" validate:"gte=0"`
}

// DebugConfig holds verification switches that are off in production.
type DebugConfig struct {
	// ValidateIterators wraps every operator output in an iterator validator.
	ValidateIterators bool `mapstructure:"validate_iterators"`
}

// LoaderConfig holds optional file overrides.
type LoaderConfig struct {
	ConfigFile string
	EnvFile    string
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{
		Exec: ExecConfig{Compression: "lz4"},
	}
	cfg.Logging.ApplyDefaults()
	return cfg
}

// Load builds a Config from defaults, the config file, the env file and the
// process environment, in increasing order of precedence.
func Load(lc LoaderConfig) (*Config, error) {
	if lc.EnvFile != "" {
		if err := godotenv.Load(lc.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading env file %s: %w", lc.EnvFile, err)
		}
	}

	v := viper.New()
	def := Default()
	v.SetDefault("exec.debug.validate_iterators", def.Exec.Debug.ValidateIterators)
	v.SetDefault("exec.compression", def.Exec.Compression)
	v.SetDefault("exec.parallelism", def.Exec.Parallelism)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)
	v.SetDefault("logging.output", def.Logging.Output)

	if lc.ConfigFile != "" {
		v.SetConfigFile(lc.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", lc.ConfigFile, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks struct tags and nested sections.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (got: %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return c.Logging.Validate()
}
