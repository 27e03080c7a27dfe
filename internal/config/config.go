// Package config loads process configuration from the environment and
// an optional gitscope.yaml file. Environment variables win.
//
// Absence of the API key or model identifier is not an error — it
// disables the AI-backed tools while the VCS-only tools keep working.
// A malformed value, on the other hand, is a fatal startup error.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/gitscope/gitscope/internal/validate"
)

const envPrefix = "GITSCOPE"

// Config holds everything the server consumes at startup. Read-only
// after Load.
type Config struct {
	APIKey       string `mapstructure:"api_key"`
	Model        string `mapstructure:"model"`
	BaseURL      string `mapstructure:"base_url"`
	RepoPath     string `mapstructure:"repo_path"`
	OutputDir    string `mapstructure:"output_dir"`
	MaxCommits   int    `mapstructure:"max_commits"`
	Language     string `mapstructure:"language"`
	RateMaxCalls int    `mapstructure:"rate_max_calls"`
	RateWindowMS int    `mapstructure:"rate_window_ms"`
}

// AIConfigured reports whether the completion backend can be built.
func (c *Config) AIConfigured() bool {
	return c.APIKey != "" && c.Model != ""
}

// RateWindow returns the admission window as a duration.
func (c *Config) RateWindow() time.Duration {
	return time.Duration(c.RateWindowMS) * time.Millisecond
}

// Load reads configuration from the working directory and environment.
func Load() (*Config, error) {
	return LoadFrom(".")
}

// LoadFrom reads configuration rooted at dir. Used by tests.
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()

	v.SetDefault("api_key", "")
	v.SetDefault("model", "")
	v.SetDefault("base_url", "https://api.openai.com/v1")
	v.SetDefault("repo_path", ".")
	v.SetDefault("output_dir", "./gitscope-reports")
	v.SetDefault("max_commits", 50)
	v.SetDefault("language", "english")
	v.SetDefault("rate_max_calls", 10)
	v.SetDefault("rate_window_ms", 60000)

	v.SetConfigName("gitscope")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}
	if err := cfg.validateStartup(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validateStartup rejects malformed values. Missing credentials are
// fine; malformed ones are not.
func (c *Config) validateStartup() error {
	if c.APIKey != "" && !validate.IsValidAPIKey(c.APIKey) {
		return errors.New("configuration: api_key is malformed (expected sk- prefixed token)")
	}
	if c.Model != "" && !validate.IsValidModelID(c.Model) {
		return errors.New("configuration: model is malformed")
	}
	if c.RepoPath == "" {
		return errors.New("configuration: repo_path must not be empty")
	}
	if c.OutputDir == "" {
		return errors.New("configuration: output_dir must not be empty")
	}
	if c.MaxCommits < 1 || c.MaxCommits > 1000 {
		return fmt.Errorf("configuration: max_commits %d out of range [1,1000]", c.MaxCommits)
	}
	if c.RateMaxCalls < 1 {
		return fmt.Errorf("configuration: rate_max_calls %d must be positive", c.RateMaxCalls)
	}
	if c.RateWindowMS < 1 {
		return fmt.Errorf("configuration: rate_window_ms %d must be positive", c.RateWindowMS)
	}
	if c.Language == "" {
		c.Language = "english"
	}
	return nil
}
