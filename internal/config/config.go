// Package config loads runtime configuration for the CodeNexus server.
//
// Defaults work out of the box; an optional ~/.codenexus/config.json and
// CODENEXUS_* environment variables override them (env wins).
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/reprintx/code-nexus/internal/nexuserr"
)

// Config holds the server-wide settings.
type Config struct {
	// DataDirName is the per-project metadata directory name.
	DataDirName string `mapstructure:"data_dir_name"`
	// DefaultGraphDepth bounds relation graph traversal when a tool
	// call omits max_depth.
	DefaultGraphDepth int `mapstructure:"default_graph_depth"`
	// MaxSearchResults caps search_files responses.
	MaxSearchResults int `mapstructure:"max_search_results"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DataDirName:       ".codenexus",
		DefaultGraphDepth: 3,
		MaxSearchResults:  50,
		LogLevel:          "info",
	}
}

// Load reads the optional config file and environment overrides on top
// of the defaults. A missing config file is not an error; a malformed
// one is.
func Load() (Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("data_dir_name", def.DataDirName)
	v.SetDefault("default_graph_depth", def.DefaultGraphDepth)
	v.SetDefault("max_search_results", def.MaxSearchResults)
	v.SetDefault("log_level", def.LogLevel)

	v.SetEnvPrefix("CODENEXUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if home, err := os.UserHomeDir(); err == nil {
		v.SetConfigName("config")
		v.SetConfigType("json")
		v.AddConfigPath(filepath.Join(home, ".codenexus"))
		if err := v.ReadInConfig(); err != nil {
			if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
				return Config{}, nexuserr.Wrap(nexuserr.CodeConfigError, err, "reading config file")
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, nexuserr.Wrap(nexuserr.CodeConfigError, err, "parsing configuration")
	}

	if cfg.DataDirName == "" || strings.ContainsAny(cfg.DataDirName, "/\\") {
		return Config{}, nexuserr.New(nexuserr.CodeConfigError, "data_dir_name must be a plain directory name, got %q", cfg.DataDirName)
	}
	if cfg.DefaultGraphDepth < 1 {
		return Config{}, nexuserr.New(nexuserr.CodeConfigError, "default_graph_depth must be at least 1")
	}

	return cfg, nil
}
