package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EncoderConfig is the merged runtime configuration. Precedence, lowest
// to highest: built-in defaults, config file, applied lens, CLI flags.
type EncoderConfig struct {
	IgnorePatterns  []string `mapstructure:"ignore_patterns" yaml:"ignore_patterns"`
	IncludePatterns []string `mapstructure:"include_patterns" yaml:"include_patterns"`

	// Truncate is the global line cap; 0 disables truncation.
	Truncate     int    `mapstructure:"truncate" yaml:"truncate"`
	TruncateMode string `mapstructure:"truncate_mode" yaml:"truncate_mode"`
	// TruncateExclude lists patterns whose files are always kept whole.
	TruncateExclude []string `mapstructure:"truncate_exclude" yaml:"truncate_exclude"`

	SortBy    string `mapstructure:"sort_by" yaml:"sort_by"`
	SortOrder string `mapstructure:"sort_order" yaml:"sort_order"`

	// RespectGitignore honors .gitignore files during the walk.
	RespectGitignore bool `mapstructure:"respect_gitignore" yaml:"respect_gitignore"`

	Lenses map[string]LensConfig `mapstructure:"lenses" yaml:"lenses"`
}

// defaultIgnorePatterns are always active unless overridden in config.
func defaultIgnorePatterns() []string {
	return []string{".git", "target", ".venv", "__pycache__", "*.pyc", "*.swp"}
}

// defaultConfig returns the built-in baseline configuration.
func defaultConfig() *EncoderConfig {
	return &EncoderConfig{
		IgnorePatterns:   defaultIgnorePatterns(),
		Truncate:         0,
		TruncateMode:     truncateModeSimple,
		SortBy:           "name",
		SortOrder:        "asc",
		RespectGitignore: true,
	}
}

// loadConfig builds the runtime config from defaults, an optional
// config file (explicit path, or discovered via viper search paths and
// PMENC_* environment variables) and returns it with any lenses it
// declared.
func loadConfig(cfgFile string) (*EncoderConfig, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "pmenc"))
		}
		v.AddConfigPath(".")
		v.SetConfigName(".pmenc")
		v.SetConfigType("yaml")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("PMENC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	cfg := defaultConfig()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && cfgFile == "" {
			// No config file anywhere on the search path; defaults apply.
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	fmt.Fprintln(os.Stderr, "Using config file:", v.ConfigFileUsed())

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", v.ConfigFileUsed(), err)
	}
	if len(cfg.IgnorePatterns) == 0 {
		cfg.IgnorePatterns = defaultIgnorePatterns()
	}
	return cfg, nil
}

// loadLensFile reads a standalone lens definition file. The file may
// hold either a single lens document or a "lenses:" map of several.
func loadLensFile(path string) (map[string]LensConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lens file %s: %w", path, err)
	}

	var multi struct {
		Lenses map[string]LensConfig `yaml:"lenses"`
	}
	if err := yaml.Unmarshal(data, &multi); err == nil && len(multi.Lenses) > 0 {
		return multi.Lenses, nil
	}

	var single LensConfig
	if err := yaml.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("failed to parse lens file %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return map[string]LensConfig{name: single}, nil
}
