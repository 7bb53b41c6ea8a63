// Package config loads the tool configuration: an optional cosimpkg.yaml
// in the working directory (or the file given with --config) overlaid with
// COSIMPKG_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	// DefaultConfigName is the config file looked up in the working directory.
	DefaultConfigName = "cosimpkg"
	// EnvPrefix prefixes the environment variables overriding config keys.
	EnvPrefix = "COSIMPKG"
)

// Config holds the tool settings that are not part of the recipe.
type Config struct {
	// BuildFolder is where generated files and dist/ are written.
	BuildFolder string `mapstructure:"build_folder"`
	// DistFolder is the distribution tree, relative to BuildFolder.
	DistFolder string `mapstructure:"dist_folder"`
	// GeneratorsFolder receives the build-system files, relative to BuildFolder.
	GeneratorsFolder string `mapstructure:"generators_folder"`
	// Patchelf is the rpath patch tool, looked up in the build environment's PATH.
	Patchelf string `mapstructure:"patchelf"`
	// Recipe is an optional recipe file replacing the built-in one.
	Recipe string `mapstructure:"recipe"`
	// Graph is the dependency graph document written by the package manager.
	Graph string `mapstructure:"graph"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level"`
}

var errEmptyField = errors.New("must not be empty")

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		BuildFolder:      "build",
		DistFolder:       "dist",
		GeneratorsFolder: "generators",
		Patchelf:         "patchelf",
		LogLevel:         "info",
	}
}

// Load reads the configuration. If file is empty, cosimpkg.yaml in the
// working directory is used when it exists.
func Load(file string) (*Config, error) {
	v := viper.New()

	defaults := Default()
	v.SetDefault("build_folder", defaults.BuildFolder)
	v.SetDefault("dist_folder", defaults.DistFolder)
	v.SetDefault("generators_folder", defaults.GeneratorsFolder)
	v.SetDefault("patchelf", defaults.Patchelf)
	v.SetDefault("recipe", defaults.Recipe)
	v.SetDefault("graph", defaults.Graph)
	v.SetDefault("log_level", defaults.LogLevel)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the folder and tool settings are set.
func (c *Config) Validate() error {
	for name, val := range map[string]string{
		"build_folder":      c.BuildFolder,
		"dist_folder":       c.DistFolder,
		"generators_folder": c.GeneratorsFolder,
		"patchelf":          c.Patchelf,
	} {
		if strings.TrimSpace(val) == "" {
			return fmt.Errorf("config %s: %w", name, errEmptyField)
		}
	}
	return nil
}
